package config

import (
	"errors"
	"os"
	"time"
)

// Config represents the application configuration
type Config struct {
	// AWS-specific configuration
	AWSRegion         string
	DynamoDBTableName string

	// Environment info
	Environment string

	// Watch polling cadence for document/collection subscriptions
	PollInterval time.Duration

	// Identity configuration
	UserID      string // static user id for CLI/dev use
	AccessToken string // Cognito access token; wins over UserID when set

	// Start in offline mode (no remote transport)
	Offline bool
}

// LoadFromEnv loads the configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}

	cfg.DynamoDBTableName = os.Getenv("DYNAMODB_TABLE_NAME")
	if cfg.DynamoDBTableName == "" {
		return nil, errors.New("DYNAMODB_TABLE_NAME environment variable is required")
	}

	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "dev" // Default to dev environment
	}

	cfg.AWSRegion = os.Getenv("AWS_REGION")
	if cfg.AWSRegion == "" {
		cfg.AWSRegion = "us-west-2"
	}

	cfg.PollInterval = 2 * time.Second
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.New("POLL_INTERVAL must be a valid duration, e.g. 2s")
		}
		cfg.PollInterval = d
	}

	cfg.UserID = os.Getenv("QUILLBOOKS_USER_ID")
	cfg.AccessToken = os.Getenv("QUILLBOOKS_ACCESS_TOKEN")
	cfg.Offline = os.Getenv("QUILLBOOKS_OFFLINE") == "true"

	return cfg, nil
}

// IsProd returns true when running against the production environment
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}
