// Package b2 provides client initialization and configuration.
//
// The Client provides a high-level interface for interacting with a
// Backblaze B2 bucket through its S3-compatible endpoint, supporting
// uploads, listing, existence checks, server-side copies, deletes, and
// presigned download URLs.
package b2

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/md-connect/datican-repo/b2/b2api"
	"github.com/md-connect/datican-repo/b2/b2types"
	"github.com/md-connect/datican-repo/b2/errors"
)

// Client represents a B2 storage client with configurable options.
// It is safe for concurrent use.
type Client struct {
	// api is the underlying S3-compatible client
	api b2api.API

	// presigner generates time-limited signed URLs
	presigner b2api.Presigner

	// config holds the resolved AWS configuration
	config aws.Config

	// clientCfg holds the client-level settings applied at construction
	clientCfg b2types.ClientConfig
}

// New creates a new B2 client with the provided options.
// Credentials are taken from WithCredentials when given, otherwise from
// the default AWS credential chain.
//
// Example:
//
//	client, err := b2.New(
//	    b2.WithRegion("eu-central-003"),
//	    b2.WithEndpoint("https://s3.eu-central-003.backblazeb2.com"),
//	    b2.WithCredentials(keyID, key),
//	)
func New(opts ...b2types.Option) (*Client, error) {
	clientCfg := &b2types.ClientConfig{
		MaxRetries:  3,
		Concurrency: 4, // default upload thread hint
		PartSize:    8 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	if clientCfg.KeyID != "" {
		cfg.Credentials = credentials.NewStaticCredentialsProvider(clientCfg.KeyID, clientCfg.Key, "")
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	switch {
	case clientCfg.CustomHTTPClient != nil:
		httpClient := clientCfg.CustomHTTPClient
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	case clientCfg.Timeout > 0:
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	return &Client{
		api:       s3Client,
		presigner: s3.NewPresignClient(s3Client),
		config:    cfg,
		clientCfg: *clientCfg,
	}, nil
}

// NewWithClient creates a new B2 client with custom API implementations.
// This is primarily used for testing with mocked clients.
func NewWithClient(api b2api.API, presigner b2api.Presigner, opts ...b2types.Option) *Client {
	clientCfg := &b2types.ClientConfig{
		MaxRetries:  3,
		Concurrency: 4,
		PartSize:    8 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(clientCfg)
	}

	return &Client{
		api:       api,
		presigner: presigner,
		config:    aws.Config{},
		clientCfg: *clientCfg,
	}
}
