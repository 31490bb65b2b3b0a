// Package config loads runtime configuration for the attachment uploader.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL
//	-u string   customer URN the attachments belong to
//	-t int      backend request timeout (seconds)
//	-m int      maximum image width/height before downscaling (pixels)
//	-n int      images decoded concurrently
//	-r int      extra upload rounds for failed attachments
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
//	{
//	  "backend_url": "http://127.0.0.1:8080",
//	  "customer_urn": "urn:banco:customer:CTEE8SXO",
//	  "request_timeout": "30s",
//	  "max_image_dimension": 3000,
//	  "preprocess_concurrency": 2,
//	  "max_retries": 2,
//	  "log_level": "info"
//	}
//
// Arguments that are not flags are the files to upload; see Files.
package config
