package b2

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	b2errors "github.com/md-connect/datican-repo/b2/errors"
	"github.com/md-connect/datican-repo/b2/internal/validation"
)

// SignedURL generates a time-limited, authenticated download URL for an
// object. Anyone holding the URL can read the object until it expires;
// no separate credentials are needed.
//
// Errors:
//   - ErrInvalidInput: If bucket or key is invalid, or validity is not positive
//   - Network errors or SDK errors wrapped in the Error type
//
// Example:
//
//	url, err := client.SignedURL(ctx, "datican-repo", "datasets/brain-mri/scan.tar.gz", time.Hour)
func (c *Client) SignedURL(
	ctx context.Context,
	bucket, key string,
	validity time.Duration,
) (string, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return "", b2errors.NewError("signedURL", b2errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return "", b2errors.NewError("signedURL", b2errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if validity <= 0 {
		return "", b2errors.NewError("signedURL", b2errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("validity must be positive")
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	req, err := c.presigner.PresignGetObject(ctx, input, s3.WithPresignExpires(validity))
	if err != nil {
		return "", b2errors.NewError("signedURL", err).WithBucket(bucket).WithKey(key)
	}

	return req.URL, nil
}
