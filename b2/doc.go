// Package b2 provides a client for Backblaze B2 object storage accessed
// through its S3-compatible endpoint.
//
// The package wraps the AWS SDK for Go v2 with a focused surface: file
// upload with concurrent part transfer, prefix listing, existence checks,
// server-side copy, delete, and presigned download URLs. Inputs are
// validated before any network call, and all failures are wrapped in the
// errors package's Error type with sentinel errors for errors.Is checks.
//
// Basic usage:
//
//	client, err := b2.New(
//	    b2.WithRegion("eu-central-003"),
//	    b2.WithEndpoint("https://s3.eu-central-003.backblazeb2.com"),
//	    b2.WithCredentials(keyID, key),
//	    b2.WithConcurrency(4),
//	)
//	if err != nil {
//	    return err
//	}
//
//	result, err := client.UploadFile(ctx, bucket, "datasets/brain-mri/scan.tar.gz", "/data/scan.tar.gz")
package b2
