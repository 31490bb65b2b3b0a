package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/attachkeeper/internal/flagx"
	"github.com/dmitrijs2005/attachkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Zero values leave the
// corresponding defaults in place.
type JsonConfig struct {
	BackendURL            string         `json:"backend_url"`
	CustomerURN           string         `json:"customer_urn"`
	RequestTimeout        timex.Duration `json:"request_timeout"`
	MaxImageDimension     int            `json:"max_image_dimension"`
	PreprocessConcurrency int            `json:"preprocess_concurrency"`
	MaxRetries            *int           `json:"max_retries"`
	LogLevel              string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config, if any. It
// panics on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	path := flagx.JsonConfigFlags(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BackendURL != "" {
		cfg.BackendURL = jc.BackendURL
	}
	if jc.CustomerURN != "" {
		cfg.CustomerURN = jc.CustomerURN
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.MaxImageDimension > 0 {
		cfg.MaxImageDimension = jc.MaxImageDimension
	}
	if jc.PreprocessConcurrency > 0 {
		cfg.PreprocessConcurrency = jc.PreprocessConcurrency
	}
	if jc.MaxRetries != nil {
		cfg.MaxRetries = *jc.MaxRetries
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
