// Package config loads runtime configuration for the credhex shell.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-u string   public base URL of the object storage
//	-b string   bucket holding the certificates
//	-t int      per-request timeout (seconds)
//	-l string   log level (debug|info|warn|error)
//
// # JSON schema
//
// Timeouts use timex.Duration, so they can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "public_base_url": "http://127.0.0.1:9000",
//	  "bucket": "certificates",
//	  "request_timeout": "30s",
//	  "log_level": "warn"
//	}
package config
