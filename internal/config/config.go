// Package config loads process configuration from environment variables
// (optionally via a local .env file), the same pattern the teacher service
// uses: github.com/caarlos0/env/v11 struct-tag binding, github.com/joho/godotenv
// for local convenience, a Validate pass, and structured logging of the
// resolved configuration.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds every environment-driven setting the server reads at startup.
//
// Tags:
//
//	env: Environment variable name
//	envDefault: Default value if not set
type Config struct {
	// HTTP surface
	Addr           string `env:"HTTP_ADDR" envDefault:":8080"`
	RemoveBasePath bool   `env:"REMOVE_BASE_PATH" envDefault:"false"`

	// Event bus
	SNSTopicARN string `env:"SNS_TOPIC_ARN"`
	TestSNS     bool   `env:"TEST_SNS" envDefault:"false"`
	NATSURL     string `env:"EVENTBUS_URL" envDefault:"nats://localhost:4222"`

	// Push transport
	PushGatewayURL string        `env:"PUSH_GATEWAY_URL" envDefault:"https://exp.host/--/api/v2/push/send"`
	PushTimeout    time.Duration `env:"PUSH_TIMEOUT" envDefault:"5s"`
	PushRatePerSec float64       `env:"PUSH_RATE_PER_SEC" envDefault:"20"`

	// Reminder worker
	ReminderSweepInterval time.Duration `env:"REMINDER_SWEEP_INTERVAL" envDefault:"6h"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// Load reads configuration from an optional .env file and the process
// environment. Priority: environment variables > .env file > struct
// defaults.
func Load(logger *zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if logger != nil {
			logger.Info().Msg("no .env file found (using environment variables only)")
		}
	} else if logger != nil {
		logger.Info().Msg("loaded configuration from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration invariants that struct tags alone cannot
// express.
func (c *Config) Validate() error {
	if !c.TestSNS && c.SNSTopicARN == "" {
		return fmt.Errorf("SNS_TOPIC_ARN is required unless TEST_SNS=true")
	}
	if c.PushRatePerSec <= 0 {
		return fmt.Errorf("PUSH_RATE_PER_SEC must be > 0, got %.1f", c.PushRatePerSec)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", c.LogLevel)
	}
	validLogFormats := map[string]bool{"json": true, "pretty": true}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, pretty (got: %s)", c.LogFormat)
	}
	return nil
}

// LogConfig emits the resolved configuration as a structured log line, the
// Loki-friendly shape the teacher uses for startup diagnostics.
func (c *Config) LogConfig(logger zerolog.Logger) {
	logger.Info().
		Str("environment", c.Environment).
		Str("addr", c.Addr).
		Bool("remove_base_path", c.RemoveBasePath).
		Bool("test_sns", c.TestSNS).
		Str("eventbus_url", c.NATSURL).
		Str("push_gateway_url", c.PushGatewayURL).
		Dur("push_timeout", c.PushTimeout).
		Float64("push_rate_per_sec", c.PushRatePerSec).
		Dur("reminder_sweep_interval", c.ReminderSweepInterval).
		Str("log_level", c.LogLevel).
		Str("log_format", c.LogFormat).
		Msg("configuration loaded")
}
