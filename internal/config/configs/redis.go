package configs

import "time"

// Redis configures the optional exchange-rate cache. An empty Addr disables
// caching entirely.
type Redis struct {
	Addr     string        `env:"ADDRESS"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"10m"`
}

// Enabled reports whether a Redis address was configured.
func (c Redis) Enabled() bool {
	return c.Addr != ""
}
