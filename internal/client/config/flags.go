package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/attachkeeper/internal/flagx"
)

var valuedFlags = []string{"-a", "-u", "-t", "-m", "-n", "-r", "-l", "-c", "-config"}

// parseFlags overlays cfg with the flags listed in the package doc and
// collects positional arguments into cfg.Files. It panics on malformed
// values.
func parseFlags(cfg *Config, args []string) {
	filtered := flagx.FilterArgs(args, []string{"-a", "-u", "-t", "-m", "-n", "-r", "-l"})

	fs := flag.NewFlagSet("uploader", flag.ContinueOnError)
	fs.StringVar(&cfg.BackendURL, "a", cfg.BackendURL, "backend base URL")
	fs.StringVar(&cfg.CustomerURN, "u", cfg.CustomerURN, "customer URN")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "backend request timeout (in seconds)")
	fs.IntVar(&cfg.MaxImageDimension, "m", cfg.MaxImageDimension, "max image dimension (in pixels)")
	fs.IntVar(&cfg.PreprocessConcurrency, "n", cfg.PreprocessConcurrency, "images decoded concurrently")
	fs.IntVar(&cfg.MaxRetries, "r", cfg.MaxRetries, "extra upload rounds for failed attachments")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(filtered); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	cfg.Files = flagx.Positional(args, valuedFlags)
}
