// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/recserve/config.yaml",
	"/etc/recserve/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix scopes which environment variables are considered.
const envPrefix = "SERVING_"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Serving: ServingConfig{
			Host:              "localhost",
			Port:              8080,
			Timeout:           30 * time.Second,
			RequestsPerSecond: 0, // Unlimited
			MaxRetries:        5,
			BreakerEnabled:    false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML config file (if found)
//  3. Environment variables: highest priority
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// SERVING_HOST -> serving.host, LOGGING_LEVEL is handled via the
	// LOGGING_ prefix below.
	if err := k.Load(env.Provider(envPrefix, ".", servingEnvTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := k.Load(env.Provider("LOGGING_", ".", loggingEnvTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// servingEnvTransform maps SERVING_* environment variables to koanf paths.
//
//	SERVING_HOST                -> serving.host
//	SERVING_REQUESTS_PER_SECOND -> serving.requests_per_second
func servingEnvTransform(key string) string {
	key = strings.TrimPrefix(key, envPrefix)
	return "serving." + strings.ToLower(key)
}

// loggingEnvTransform maps LOGGING_* environment variables to koanf paths.
//
//	LOGGING_LEVEL  -> logging.level
//	LOGGING_FORMAT -> logging.format
func loggingEnvTransform(key string) string {
	key = strings.TrimPrefix(key, "LOGGING_")
	return "logging." + strings.ToLower(key)
}
