// Package b2 provides functional options for configuring client behavior.
// These options follow the functional options pattern for clean, composable configuration.
package b2

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/md-connect/datican-repo/b2/b2types"
)

// WithRegion sets the B2 region for storage operations.
func WithRegion(region string) b2types.Option {
	return func(c *b2types.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets the S3-compatible endpoint URL.
// For B2 this is https://s3.<region>.backblazeb2.com.
func WithEndpoint(endpoint string) b2types.Option {
	return func(c *b2types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithCredentials sets the B2 application key pair used to authenticate.
// If not specified, the default AWS credential chain is used.
func WithCredentials(keyID, key string) b2types.Option {
	return func(c *b2types.ClientConfig) {
		c.KeyID = keyID
		c.Key = key
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed requests.
// Default is 3 retries. Set to 0 to disable retries.
func WithMaxRetries(maxRetries int) b2types.Option {
	return func(c *b2types.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual storage requests.
// Default is no timeout (0). Values should be positive durations.
func WithTimeout(timeout time.Duration) b2types.Option {
	return func(c *b2types.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithConcurrency sets the number of parallel part transfers during uploads.
// This is the thread hint passed to the transfer manager. Default is 4.
func WithConcurrency(concurrency int) b2types.Option {
	return func(c *b2types.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithPartSize sets the part size for multipart uploads.
// Default is 8MB. Must be at least 5MB for S3-compatible multipart uploads.
func WithPartSize(partSize int64) b2types.Option {
	return func(c *b2types.ClientConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// Some S3-compatible services require this. Default is false.
func WithForcePathStyle(forcePathStyle bool) b2types.Option {
	return func(c *b2types.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) b2types.Option {
	return func(c *b2types.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithCustomHTTPClient allows providing a custom HTTP client.
// This gives full control over HTTP behavior including timeouts and proxies.
func WithCustomHTTPClient(client *http.Client) b2types.Option {
	return func(c *b2types.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithContentType sets the content type for an upload.
// If not specified, the content type is detected from the file contents.
func WithContentType(contentType string) b2types.UploadOption {
	return func(c *b2types.UploadOptionConfig) {
		c.ContentType = contentType
	}
}

// WithMetadata sets user-defined metadata for an upload.
func WithMetadata(metadata map[string]string) b2types.UploadOption {
	return func(c *b2types.UploadOptionConfig) {
		if c.Metadata == nil {
			c.Metadata = make(map[string]string)
		}
		for k, v := range metadata {
			c.Metadata[k] = v
		}
	}
}

// WithProgress sets a progress tracker for an upload.
func WithProgress(tracker b2types.ProgressTracker) b2types.UploadOption {
	return func(c *b2types.UploadOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// WithUploadConcurrency overrides the client-level thread hint for one upload.
func WithUploadConcurrency(concurrency int) b2types.UploadOption {
	return func(c *b2types.UploadOptionConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithMaxKeys caps the number of keys returned per list page.
func WithMaxKeys(maxKeys int32) b2types.ListOption {
	return func(c *b2types.ListOptionConfig) {
		if maxKeys > 0 {
			c.MaxKeys = maxKeys
		}
	}
}

// WithDelimiter groups list results by common prefixes.
func WithDelimiter(delimiter string) b2types.ListOption {
	return func(c *b2types.ListOptionConfig) {
		c.Delimiter = delimiter
	}
}
