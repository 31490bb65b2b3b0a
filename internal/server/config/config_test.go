package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, DriverS3, c.PresignDriver)
	assert.Equal(t, "attachments", c.S3Bucket)
	assert.Equal(t, 15*time.Minute, c.CredentialTTL)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Empty(t, c.DatabaseDSN)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"http_addr": ":7000",
		"s3_bucket": "from-json",
		"credential_ttl": "5m",
		"allowed_origins": ["https://app.example"]
	}`), 0o600))

	env := map[string]string{
		"ATTACHKEEPER_HTTP_ADDR":       ":6000",
		"ATTACHKEEPER_S3_BUCKET":       "from-env",
		"ATTACHKEEPER_PRESIGN_DRIVER":  "minio",
		"ATTACHKEEPER_CREDENTIAL_TTL":  "2m",
		"ATTACHKEEPER_ALLOWED_ORIGINS": "https://a.example, https://b.example",
	}
	getenv := func(k string) string { return env[k] }

	cfg := loadConfig([]string{"-c", path, "-b", "from-flag"}, getenv)

	assert.Equal(t, ":7000", cfg.HTTPAddr, "json overrides env")
	assert.Equal(t, "from-flag", cfg.S3Bucket, "flags override json")
	assert.Equal(t, DriverMinio, cfg.PresignDriver, "env overrides defaults")
	assert.Equal(t, 5*time.Minute, cfg.CredentialTTL)
	assert.Equal(t, []string{"https://app.example"}, cfg.AllowedOrigins)
}

func TestParseEnv_Origins(t *testing.T) {
	cfg := &Config{}
	parseEnv(cfg, func(k string) string {
		if k == "ATTACHKEEPER_ALLOWED_ORIGINS" {
			return " https://a.example ,,https://b.example"
		}
		return ""
	})
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestParseEnv_BadTTLPanics(t *testing.T) {
	require.Panics(t, func() {
		parseEnv(&Config{}, func(k string) string {
			if k == "ATTACHKEEPER_CREDENTIAL_TTL" {
				return "soon"
			}
			return ""
		})
	})
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectPanic bool
		check       func(t *testing.T, c *Config)
	}{
		{
			name: "all flags",
			args: []string{"-a", ":9999", "-d", "postgres://x", "-p", "minio", "-t", "3", "-o", "https://x.example"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, ":9999", c.HTTPAddr)
				assert.Equal(t, "postgres://x", c.DatabaseDSN)
				assert.Equal(t, "minio", c.PresignDriver)
				assert.Equal(t, 3*time.Minute, c.CredentialTTL)
				assert.Equal(t, []string{"https://x.example"}, c.AllowedOrigins)
			},
		},
		{name: "bad ttl", args: []string{"-t", "abc"}, expectPanic: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadConfig(nil, noEnv)
			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg, tt.args) })
			tt.check(t, cfg)
		})
	}
}

func TestLoadDotEnv_MissingFileIsNotFatal(t *testing.T) {
	require.NotPanics(t, func() { LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")) })
}

func TestLoadDotEnv_SetsVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ATTACHKEEPER_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("ATTACHKEEPER_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("ATTACHKEEPER_TEST_DOTENV"))

	LoadDotEnv(path)
	assert.Equal(t, "loaded", os.Getenv("ATTACHKEEPER_TEST_DOTENV"))
}
