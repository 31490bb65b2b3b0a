package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the uploader CLI.
type Config struct {
	BackendURL            string
	CustomerURN           string
	RequestTimeout        time.Duration
	MaxImageDimension     int
	PreprocessConcurrency int
	MaxRetries            int
	LogLevel              string

	// Files are the paths given as positional arguments.
	Files []string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 30 * time.Second
	c.MaxImageDimension = 3000
	c.PreprocessConcurrency = 2
	c.MaxRetries = 2
	c.LogLevel = "info"
}

// LoadConfig builds a Config from os.Args.
func LoadConfig() *Config {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
