// Package b2types provides shared type definitions for the B2 storage module.
package b2types

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// Object represents a stored object with its basic metadata.
type Object struct {
	// Key is the object key (path within the bucket)
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the entity tag for the object
	ETag string
}

// UploadResult contains the outcome of a completed upload.
type UploadResult struct {
	// Key is the object key the data was uploaded to
	Key string

	// Size is the number of bytes uploaded
	Size int64

	// ETag is the entity tag returned by the store
	ETag string

	// Location is the URL of the uploaded object as reported by the store
	Location string

	// Duration is how long the upload took
	Duration time.Duration
}

// ProgressTracker defines the interface for tracking transfer progress.
// Implementations can provide real-time progress updates during uploads.
type ProgressTracker interface {
	// Update is called periodically with the number of bytes transferred so far
	Update(transferred, total int64)

	// Complete is called once when the transfer finishes successfully
	Complete()
}

// ClientConfig holds the configuration for a B2 client.
type ClientConfig struct {
	// Region is the B2 region (e.g., "eu-central-003")
	Region string

	// Endpoint is the S3-compatible endpoint URL
	Endpoint string

	// KeyID is the B2 application key ID
	KeyID string

	// Key is the B2 application key
	Key string

	// MaxRetries is the maximum number of SDK retry attempts
	MaxRetries int

	// Timeout applies to individual HTTP requests; zero means no timeout
	Timeout time.Duration

	// Concurrency is the upload thread hint for multipart transfers
	Concurrency int

	// PartSize is the multipart chunk size in bytes
	PartSize int64

	// ForcePathStyle forces path-style addressing; required by some
	// S3-compatible services
	ForcePathStyle bool

	// CustomAWSConfig overrides the default configuration loading when set
	CustomAWSConfig *aws.Config

	// CustomHTTPClient overrides the SDK HTTP client when set
	CustomHTTPClient *http.Client
}

// Option configures a B2 client.
type Option func(*ClientConfig)

// UploadOptionConfig holds per-upload settings.
type UploadOptionConfig struct {
	// ContentType is the MIME type to store with the object
	ContentType string

	// Metadata contains user-defined metadata to attach to the object
	Metadata map[string]string

	// ProgressTracker receives progress updates when set
	ProgressTracker ProgressTracker

	// Concurrency overrides the client-level thread hint for this upload
	Concurrency int

	// PartSize overrides the client-level part size for this upload
	PartSize int64
}

// UploadOption configures a single upload operation.
type UploadOption func(*UploadOptionConfig)

// ListOptionConfig holds per-list settings.
type ListOptionConfig struct {
	// MaxKeys caps the number of keys returned per page (1-1000)
	MaxKeys int32

	// Delimiter groups results by common prefixes when set
	Delimiter string
}

// ListOption configures a single list operation.
type ListOption func(*ListOptionConfig)
