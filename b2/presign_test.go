package b2

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	b2errors "github.com/md-connect/datican-repo/b2/errors"
	"github.com/md-connect/datican-repo/b2/internal/testutil"
)

func TestSignedURL(t *testing.T) {
	t.Run("returns presigned URL", func(t *testing.T) {
		var gotInput *s3.GetObjectInput
		var gotExpires time.Duration
		presigner := &testutil.MockPresigner{
			PresignGetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
				gotInput = params
				opts := &s3.PresignOptions{}
				for _, fn := range optFns {
					fn(opts)
				}
				gotExpires = opts.Expires
				return &v4.PresignedHTTPRequest{
					URL: "https://s3.eu-central-003.backblazeb2.com/test-bucket/datasets/demo/scan.tar.gz?X-Amz-Signature=sig",
				}, nil
			},
		}
		client := NewWithClient(&testutil.MockAPI{}, presigner)

		url, err := client.SignedURL(context.Background(), "test-bucket", "datasets/demo/scan.tar.gz", time.Hour)
		require.NoError(t, err)

		require.NotNil(t, gotInput)
		assert.Equal(t, "test-bucket", aws.ToString(gotInput.Bucket))
		assert.Equal(t, "datasets/demo/scan.tar.gz", aws.ToString(gotInput.Key))
		assert.Equal(t, time.Hour, gotExpires)
		assert.Contains(t, url, "X-Amz-Signature")
	})

	t.Run("validation failures", func(t *testing.T) {
		client := NewWithClient(&testutil.MockAPI{}, &testutil.MockPresigner{})

		tests := []struct {
			name     string
			bucket   string
			key      string
			validity time.Duration
		}{
			{"empty bucket", "", "k", time.Hour},
			{"empty key", "test-bucket", "", time.Hour},
			{"zero validity", "test-bucket", "k", 0},
			{"negative validity", "test-bucket", "k", -time.Minute},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := client.SignedURL(context.Background(), tt.bucket, tt.key, tt.validity)
				require.Error(t, err)
				assert.True(t, b2errors.IsInvalidInput(err))
			})
		}
	})

	t.Run("signing error wrapped", func(t *testing.T) {
		presigner := &testutil.MockPresigner{
			PresignGetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
				return nil, errors.New("credentials expired")
			},
		}
		client := NewWithClient(&testutil.MockAPI{}, presigner)

		_, err := client.SignedURL(context.Background(), "test-bucket", "k", time.Hour)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "credentials expired")
	})
}
