// Package config handles configuration for the dev backend: defaults, then
// environment variables (optionally from a .env file), then an optional JSON
// file, then command-line flags.
package config

import (
	"os"
	"time"
)

const (
	DriverS3    = "s3"
	DriverMinio = "minio"
)

// Config holds runtime settings for the dev backend.
//
// Fields:
//   - HTTPAddr: bind address of the HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx); empty keeps attachments in memory.
//   - PresignDriver: "s3" (aws-sdk-go-v2) or "minio" (minio-go).
//   - S3*: credentials and location of the S3-compatible store.
//   - CredentialTTL: lifetime of one presigned POST credential.
//   - AllowedOrigins: CORS origins for browser clients.
type Config struct {
	HTTPAddr       string
	DatabaseDSN    string
	PresignDriver  string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	CredentialTTL  time.Duration
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
}

// LoadDefaults populates Config with development defaults matching a local
// MinIO started with its stock credentials.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.DatabaseDSN = ""
	c.PresignDriver = DriverS3
	c.S3AccessKey = "minioadmin"
	c.S3SecretKey = "minioadmin"
	c.S3Bucket = "attachments"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000"
	c.CredentialTTL = 15 * time.Minute
	c.AllowedOrigins = []string{"*"}
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// LoadConfig builds a Config from defaults, the environment, an optional
// JSON file and os.Args, in that order.
func LoadConfig() *Config {
	return loadConfig(os.Args[1:], os.Getenv)
}

func loadConfig(args []string, getenv func(string) string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, getenv)
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
