// Package config loads client configuration from the environment.
// Variables carry the DIGTRACK_ prefix.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds the settings shared by the SDK's environment constructor and
// the CLI.
type Config struct {
	// APIURL is the ticket service base URL, including the API prefix.
	APIURL string `envconfig:"API_URL" default:"http://localhost:8000/api/v1"`

	// SessionFile overrides the default per-user session path.
	SessionFile string `envconfig:"SESSION_FILE" default:""`

	// ExpiringThresholdDays is the inclusive "expiring soon" window.
	ExpiringThresholdDays int `envconfig:"EXPIRING_THRESHOLD_DAYS" default:"5"`

	// HTTPTimeoutSeconds bounds a single HTTP request end to end.
	HTTPTimeoutSeconds int `envconfig:"HTTP_TIMEOUT_SECONDS" default:"30"`

	// ReadRetries is the maximum number of attempts for safe reads.
	ReadRetries int `envconfig:"READ_RETRIES" default:"3"`

	// Debug enables HTTP request/response logging.
	Debug bool `envconfig:"DEBUG" default:"false"`
}

// New loads configuration from DIGTRACK_* environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("digtrack", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
