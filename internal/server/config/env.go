package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env into the process environment when the file exists.
// Variables already set are not overridden.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("no .env file found, reading from environment")
	}
}

// parseEnv overlays cfg with ATTACHKEEPER_* variables.
func parseEnv(cfg *Config, getenv func(string) string) {
	setString := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&cfg.HTTPAddr, "ATTACHKEEPER_HTTP_ADDR")
	setString(&cfg.DatabaseDSN, "ATTACHKEEPER_DATABASE_DSN")
	setString(&cfg.PresignDriver, "ATTACHKEEPER_PRESIGN_DRIVER")
	setString(&cfg.S3AccessKey, "ATTACHKEEPER_S3_ACCESS_KEY")
	setString(&cfg.S3SecretKey, "ATTACHKEEPER_S3_SECRET_KEY")
	setString(&cfg.S3Bucket, "ATTACHKEEPER_S3_BUCKET")
	setString(&cfg.S3Region, "ATTACHKEEPER_S3_REGION")
	setString(&cfg.S3BaseEndpoint, "ATTACHKEEPER_S3_ENDPOINT")
	setString(&cfg.LogLevel, "ATTACHKEEPER_LOG_LEVEL")
	setString(&cfg.LogFormat, "ATTACHKEEPER_LOG_FORMAT")

	if v := getenv("ATTACHKEEPER_CREDENTIAL_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.CredentialTTL = d
	}
	if v := getenv("ATTACHKEEPER_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
