package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DocumentPath string // backing multi-document YAML file

	Listen        string
	LogFormat     string
	LogLevel      string
	Watch         bool
	WatchDebounce time.Duration
}

// Defaults applied when neither flags nor the server config file set a value.
const (
	DefaultListen        = ":5000"
	DefaultWatchDebounce = 300 * time.Millisecond
)

// NewConfig validates and normalizes a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DocumentPath == "" {
		return nil, errors.New("DocumentPath is a required configuration field and cannot be empty")
	}
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = DefaultWatchDebounce
	}
	return &cfg, nil
}
