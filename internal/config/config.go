package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
// The etl command lets -input/-output flags override the two roots.
type Config struct {
	InputRoot  string
	OutputRoot string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// UserDedup selects which occurrence wins when a user appears more than
	// once in the activity stream: "first" or "last".
	UserDedup string

	// Post-load smoke query: fact rows whose location contains
	// SampleLocation, at most SampleLimit of them.
	SampleLocation string
	SampleLimit    int
}

// Load reads configuration from environment variables, applying defaults
// where unset. Call Validate after any flag overrides.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	sampleLimit, err := parseInt("SAMPLE_LIMIT", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		InputRoot:       os.Getenv("INPUT_ROOT"),
		OutputRoot:      os.Getenv("OUTPUT_ROOT"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		UserDedup:       envOrDefault("USER_DEDUP", "first"),
		SampleLocation:  envOrDefault("SAMPLE_LOCATION", "Washington"),
		SampleLimit:     sampleLimit,
	}

	return cfg, nil
}

// Validate checks that the merged configuration can drive a run.
func (c *Config) Validate() error {
	if c.InputRoot == "" {
		return errors.New("input root is required (INPUT_ROOT or -input)")
	}
	if c.OutputRoot == "" {
		return errors.New("output root is required (OUTPUT_ROOT or -output)")
	}
	if c.UserDedup != "first" && c.UserDedup != "last" {
		return fmt.Errorf("USER_DEDUP must be \"first\" or \"last\", got %q", c.UserDedup)
	}
	if c.SampleLimit <= 0 {
		return errors.New("SAMPLE_LIMIT must be positive")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}
