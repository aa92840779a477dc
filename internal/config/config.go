package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"

	"socialbooster/internal/config/configs"
)

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library. The
// nested structs are tagged with envPrefix so their fields are parsed with
// the given prefix. See the individual types in the configs package for
// default values and options. Use Load to construct a Config.
type Config struct {
	// Env specifies the deployment environment (e.g. prod, dev). It is
	// attached to log records.
	Env string `env:"ENV" envDefault:"prod"`

	// HTTP holds configuration for the HTTP server. Environment variables
	// prefixed with HTTP_ will populate this struct.
	HTTP configs.HTTP `envPrefix:"HTTP_"`

	// Log configures the structured logger. Environment variables prefixed
	// with LOG_ will populate this struct.
	Log configs.Logger `envPrefix:"LOG_"`

	// Psql configures the PostgreSQL connection. Environment variables
	// prefixed with PSQL_ will populate this struct.
	Psql configs.Postgres `envPrefix:"PSQL_"`

	// Exchange configures the exchange-rate API used for budget conversion.
	Exchange configs.Exchange `envPrefix:"EXCHANGE_"`

	// Redis configures the optional rate cache.
	Redis configs.Redis `envPrefix:"REDIS_"`
}

// Load reads configuration from environment variables into a Config and
// validates it. All fields are loaded with their specified defaults when no
// environment variable is provided.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express. All problems are
// reported together.
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Port == 0 {
		errs = append(errs, errors.New("HTTP_PORT must be non-zero"))
	}
	if len(c.HTTP.AllowedHosts) == 0 {
		errs = append(errs, errors.New("HTTP_ALLOWED_HOSTS must not be empty"))
	}
	if c.Psql.Addr.Scheme != "postgres" && c.Psql.Addr.Scheme != "postgresql" {
		errs = append(errs, fmt.Errorf("PSQL_ADDRESS: unsupported scheme %q", c.Psql.Addr.Scheme))
	}
	u, err := url.Parse(c.Exchange.URL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("EXCHANGE_URL: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("EXCHANGE_URL: unsupported scheme %q", u.Scheme))
	case u.Host == "":
		errs = append(errs, errors.New("EXCHANGE_URL: missing host"))
	}
	if c.Exchange.Timeout <= 0 {
		errs = append(errs, errors.New("EXCHANGE_TIMEOUT must be positive"))
	}
	if c.Redis.Enabled() && c.Redis.TTL <= 0 {
		errs = append(errs, errors.New("REDIS_TTL must be positive"))
	}
	return errors.Join(errs...)
}
