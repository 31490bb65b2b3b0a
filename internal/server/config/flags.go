package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/attachkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN, empty for in-memory storage
//	-p string   presign driver: s3 or minio
//	-u string   S3 access key
//	-s string   S3 secret key
//	-b string   S3 bucket
//	-g string   S3 region
//	-e string   S3 endpoint (e.g. "http://127.0.0.1:9000")
//	-t int      credential TTL, minutes
//	-o string   comma-separated CORS origins
//
// It panics on malformed values.
func parseFlags(config *Config, args []string) {
	filtered := flagx.FilterArgs(args, []string{"-a", "-d", "-p", "-u", "-s", "-b", "-g", "-e", "-t", "-o"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.PresignDriver, "p", config.PresignDriver, "presign driver (s3|minio)")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "s", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 endpoint")
	ttl := fs.Int("t", int(config.CredentialTTL.Minutes()), "credential TTL (in minutes)")
	origins := fs.String("o", "", "comma-separated CORS origins")

	if err := fs.Parse(filtered); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.CredentialTTL = time.Duration(*ttl) * time.Minute
		case "o":
			config.AllowedOrigins = splitList(*origins)
		}
	})
}
