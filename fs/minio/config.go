// Package minio provides an S3-compatible implementation of core.Backend on
// top of minio-go.
package minio

import (
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
)

// DefaultEndpoint is the AWS S3 endpoint, used when none is configured.
const DefaultEndpoint = "s3.amazonaws.com"

// Config holds MinIO filesystem configuration.
type Config struct {
	// Endpoint is the S3 server host (e.g., "localhost:9000", "s3.amazonaws.com")
	Endpoint string

	// AccessKey is the access key ID for authentication.
	// When empty, credentials are taken from the environment, the AWS
	// credentials file or the instance role, in that order.
	AccessKey string

	// SecretKey is the secret access key for authentication
	SecretKey string

	// UseSSL enables HTTPS connections
	UseSSL bool

	// Region is the bucket region; empty lets the client discover it
	Region string

	// Client is an optional pre-configured MinIO client
	// If provided, Endpoint/AccessKey/SecretKey are ignored
	Client *minio.Client

	// MultipartThreshold is the size at which writes switch from a single
	// buffered PutObject to a streamed multipart upload
	// Default: 5MB
	MultipartThreshold int64

	// Logger receives debug output; nil discards it
	Logger *slog.Logger
}

// validate checks if the configuration is valid.
// Either Client OR Endpoint must be provided; keys must come in pairs.
func (c *Config) validate() error {
	if c.Client != nil {
		return nil
	}

	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required when client is not provided")
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return fmt.Errorf("access key and secret key must be set together")
	}
	if c.MultipartThreshold < 0 {
		return fmt.Errorf("multipart threshold must not be negative")
	}

	return nil
}
