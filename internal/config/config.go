// Package config provides worker configuration loaded from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const logPrefix = "config:LoadConfig"

// Config holds worker process configuration.
type Config struct {
	// COMMS: connect to the hub's bus at HubURL.
	HubURL     string `envconfig:"HUB_URL" default:"nats://127.0.0.1:4222"`
	HubSubject string `envconfig:"HUB_SUBJECT" default:"hub.inbox"`

	// Worker identity
	WorkerID   string `envconfig:"WORKER_ID" default:"go-worker"`
	WorkerType string `envconfig:"WORKER_TYPE" default:"go"`

	// Connection retry policy (fixed delay, no backoff)
	MaxRetries int           `envconfig:"MAX_RETRIES" default:"10"`
	RetryDelay time.Duration `envconfig:"RETRY_DELAY" default:"2s"`

	// Session tuning
	HeartbeatInterval time.Duration `envconfig:"HEARTBEAT_INTERVAL" default:"30s"`
	RequestTimeout    time.Duration `envconfig:"REQUEST_TIMEOUT" default:"25s"`

	// HTTP health endpoint; 0 disables it
	HTTPPort int `envconfig:"HTTP_PORT" default:"8081"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ValidateForServe checks required config when running the worker.
func (c *Config) ValidateForServe() error {
	if c.WorkerID == "" {
		return fmt.Errorf("%s - WORKER_ID is required", logPrefix)
	}
	if c.HubURL == "" {
		return fmt.Errorf("%s - HUB_URL is required", logPrefix)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("%s - MAX_RETRIES must be positive", logPrefix)
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("%s - RETRY_DELAY must be positive", logPrefix)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s - REQUEST_TIMEOUT must be positive", logPrefix)
	}
	return nil
}
