package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: Database and Redis configuration
//   - http.go: HTTP server configuration
//   - replan.go: Planner tunables
//   - services.go: External service endpoints
type AppConfig struct {
	// IsDev controls development mode behavior. Set DEV=true for development.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Planner tunables
	Replan ReplanConfig

	// External service endpoints
	Optimizer OptimizerConfig
	Matrix    MatrixConfig
	Locations LocationsConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Replan.Sanitize()
	c.Observability.Sanitize()
}

// Validate checks that required external service settings are present.
func (c *AppConfig) Validate() error {
	if err := c.Optimizer.Validate(); err != nil {
		return err
	}
	if err := c.Matrix.Validate(); err != nil {
		return err
	}
	return c.Locations.Validate()
}
