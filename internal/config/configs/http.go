package configs

// HTTP defines configuration for the HTTP server and its request filters.
type HTTP struct {
	// Port is the TCP port the HTTP server will listen on. Defaults to 8080.
	Port uint16 `env:"PORT" envDefault:"8080"`
	// AllowedHosts lists the Host header values the server answers to. "*"
	// allows any host; an entry starting with "." also matches subdomains.
	AllowedHosts []string `env:"ALLOWED_HOSTS" envSeparator:"," envDefault:"localhost,127.0.0.1"`
	// CORSOrigins are the browser origins allowed to call the API.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	// CORSAllowAll overrides CORSOrigins and accepts any origin.
	CORSAllowAll bool `env:"CORS_ALLOW_ALL" envDefault:"false"`
}
