package config

import "errors"

// OptimizerConfig contains the route optimizer endpoint configuration.
type OptimizerConfig struct {
	// URL is the optimizer base URL. The solve endpoint is URL + "/solve".
	URL string `env:"OPTIMIZER_URL" envDefault:"http://localhost:9090"`

	// Token authenticates solve calls as a bearer token.
	Token string `env:"OPTIMIZER_TOKEN"`

	// BypassAuth skips the Authorization header for local development
	// against an unauthenticated optimizer.
	BypassAuth bool `env:"BYPASS_OPTIMIZER_AUTH" envDefault:"false"`
}

// Validate checks that the optimizer can be reached and authenticated.
func (c OptimizerConfig) Validate() error {
	if c.URL == "" {
		return errors.New("optimizer url is required")
	}
	if !c.BypassAuth && c.Token == "" {
		return errors.New("optimizer token is required unless BYPASS_OPTIMIZER_AUTH is set")
	}
	return nil
}

// MatrixConfig contains the travel-time matrix provider configuration.
type MatrixConfig struct {
	URL    string `env:"DISTANCE_MATRIX_API_URL" envDefault:"http://localhost:9091"`
	APIKey string `env:"DISTANCE_MATRIX_API_KEY"`
}

// Validate checks that the matrix provider endpoint is configured.
func (c MatrixConfig) Validate() error {
	if c.URL == "" {
		return errors.New("distance matrix url is required")
	}
	return nil
}

// LocationsConfig contains the van telematics provider configuration.
type LocationsConfig struct {
	URL    string `env:"LOCATION_API_URL" envDefault:"http://localhost:9092"`
	APIKey string `env:"LOCATION_API_KEY"`
}

// Validate checks that the location provider endpoint is configured.
func (c LocationsConfig) Validate() error {
	if c.URL == "" {
		return errors.New("location api url is required")
	}
	return nil
}
