package configs

import "time"

// Exchange configures the third-party exchange-rate API. The endpoint must
// answer GET with a JSON object holding a "rates" map relative to USD.
type Exchange struct {
	URL     string        `env:"URL" envDefault:"https://api.exchangerate-api.com/v4/latest/USD"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
}
