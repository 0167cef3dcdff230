// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

// Package config provides layered configuration for the recserve CLI.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Environment variables map to nested keys by prefix and underscore:
//
//	SERVING_HOST                -> serving.host
//	SERVING_PORT                -> serving.port
//	SERVING_TIMEOUT             -> serving.timeout
//	LOGGING_LEVEL               -> logging.level
//
// Thread Safety: Config is immutable after Load() and safe for concurrent
// read access.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all recserve configuration.
type Config struct {
	Serving ServingConfig `koanf:"serving"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServingConfig configures the connection to one serving layer instance.
type ServingConfig struct {
	// Host is the serving layer hostname or IP address.
	Host string `koanf:"host" validate:"required"`

	// Port is the serving layer HTTP port.
	Port int `koanf:"port" validate:"required,min=1,max=65535"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `koanf:"timeout" validate:"min=0"`

	// RequestsPerSecond throttles outgoing requests client-side.
	// Zero disables throttling.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"min=0"`

	// MaxRetries bounds retries on HTTP 429 responses.
	MaxRetries int `koanf:"max_retries" validate:"min=0"`

	// BreakerEnabled wraps the client in a circuit breaker.
	BreakerEnabled bool `koanf:"breaker_enabled"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic disabled"`

	// Format is the output format: json or console.
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Validate checks the configuration via struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
