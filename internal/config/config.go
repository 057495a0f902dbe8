// Package config loads the tool configuration from the environment and an
// optional YAML file.
//
// The environment variable names match the ones the DATICAN deployment
// already uses (B2_APPLICATION_KEY_ID, B2_BUCKET_NAME, ...), so the CLI
// picks up the same settings as the web application containers.
// Environment values override file values.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when neither the environment nor a config file sets a value.
const (
	DefaultBucketName       = "datican-repo"
	DefaultRegion           = "eu-central-003"
	DefaultDatasetsLocation = "datasets"
	DefaultUploadThreads    = 4
	DefaultURLValiditySecs  = 3600
)

// Config holds the resolved tool configuration.
type Config struct {
	// KeyID is the B2 application key ID
	KeyID string

	// Key is the B2 application key
	Key string

	// BucketName is the destination bucket
	BucketName string

	// Region is the B2 region (e.g. "eu-central-003")
	Region string

	// Endpoint is the S3-compatible endpoint URL; derived from Region
	// unless set explicitly
	Endpoint string

	// DatasetsLocation is the fixed key prefix for dataset archives
	DatasetsLocation string

	// Folder is the default dataset folder; usually supplied per
	// invocation with --folder
	Folder string

	// UploadThreads is the thread hint for concurrent part transfers
	UploadThreads int

	// URLValidity is the signed URL validity window
	URLValidity time.Duration
}

// Load reads configuration from the environment and, when configFile is
// non-empty, from a YAML file. The file is optional configuration for
// development setups; production containers configure everything through
// the environment.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("bucket_name", DefaultBucketName)
	v.SetDefault("region", DefaultRegion)
	v.SetDefault("datasets_location", DefaultDatasetsLocation)
	v.SetDefault("upload_threads", DefaultUploadThreads)
	v.SetDefault("url_validity", DefaultURLValiditySecs)

	v.SetEnvPrefix("b2")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		KeyID:            v.GetString("application_key_id"),
		Key:              v.GetString("application_key"),
		BucketName:       v.GetString("bucket_name"),
		Region:           v.GetString("region"),
		Endpoint:         v.GetString("endpoint_url"),
		DatasetsLocation: v.GetString("datasets_location"),
		Folder:           v.GetString("dataset_folder"),
		UploadThreads:    v.GetInt("upload_threads"),
		URLValidity:      time.Duration(v.GetInt("url_validity")) * time.Second,
	}

	if cfg.Endpoint == "" && cfg.Region != "" {
		cfg.Endpoint = fmt.Sprintf("https://s3.%s.backblazeb2.com", cfg.Region)
	}

	return cfg, nil
}

// Validate checks that the configuration is complete enough to reach the
// bucket and that numeric settings are within sane bounds.
func (c *Config) Validate() error {
	if c.KeyID == "" {
		return errors.New("B2_APPLICATION_KEY_ID is required")
	}
	if c.Key == "" {
		return errors.New("B2_APPLICATION_KEY is required")
	}
	if c.BucketName == "" {
		return errors.New("B2_BUCKET_NAME is required")
	}
	if c.UploadThreads < 1 || c.UploadThreads > 64 {
		return fmt.Errorf("upload threads must be between 1 and 64, got %d", c.UploadThreads)
	}
	// Presigned URLs are capped at 7 days by the signing scheme.
	if c.URLValidity <= 0 || c.URLValidity > 7*24*time.Hour {
		return fmt.Errorf("url validity must be between 1s and 168h, got %s", c.URLValidity)
	}
	return nil
}
