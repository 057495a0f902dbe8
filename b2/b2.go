// Package b2 provides the main storage client and core operations.
package b2

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	"github.com/md-connect/datican-repo/b2/b2types"
	b2errors "github.com/md-connect/datican-repo/b2/errors"
	"github.com/md-connect/datican-repo/b2/internal/validation"
)

const (
	// DefaultContentType is the default content type used when content type detection fails
	DefaultContentType = "application/octet-stream"
)

// UploadFile uploads a file from the local filesystem to the bucket at the
// given key. Large files are transferred in concurrent parts; the part count
// in flight is governed by the client's thread hint.
//
// Returns:
//   - *UploadResult: Contains the uploaded object's metadata including ETag and duration
//   - error: Returns an error if the upload fails
//
// Errors:
//   - ErrInvalidInput: If bucket is empty, key is invalid, or path is empty/directory
//   - File system errors if the file cannot be read
//   - Network errors or SDK errors wrapped in the Error type
//
// Example:
//
//	result, err := client.UploadFile(ctx, "datican-repo", "datasets/brain-mri/scan.tar.gz", "/data/scan.tar.gz",
//	    b2.WithProgress(tracker),
//	)
func (c *Client) UploadFile(
	ctx context.Context,
	bucket, key, path string,
	opts ...b2types.UploadOption,
) (*b2types.UploadResult, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, b2errors.NewError("uploadFile", b2errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, b2errors.NewError("uploadFile", b2errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if path == "" {
		return nil, b2errors.NewError("uploadFile", b2errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, b2errors.NewError("uploadFile", err).WithBucket(bucket).WithKey(key)
	}
	if info.IsDir() {
		return nil, b2errors.NewError("uploadFile", b2errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("path points to a directory, not a file")
	}

	cfg := &b2types.UploadOptionConfig{
		ContentType: DefaultContentType,
		Concurrency: c.clientCfg.Concurrency,
		PartSize:    c.clientCfg.PartSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.ContentType == DefaultContentType {
		cfg.ContentType = detectContentType(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, b2errors.NewError("uploadFile", err).WithBucket(bucket).WithKey(key)
	}
	defer file.Close()

	size := info.Size()
	startTime := time.Now()

	var body io.Reader = file
	if cfg.ProgressTracker != nil {
		body = &progressReader{
			reader:  file,
			total:   size,
			tracker: cfg.ProgressTracker,
		}
	}

	uploader := manager.NewUploader(c.api, func(u *manager.Uploader) {
		u.Concurrency = cfg.Concurrency
		u.PartSize = cfg.PartSize
	})

	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(cfg.ContentType),
	}
	if len(cfg.Metadata) > 0 {
		input.Metadata = cfg.Metadata
	}

	out, err := uploader.Upload(ctx, input)
	if err != nil {
		return nil, b2errors.NewError("uploadFile", err).WithBucket(bucket).WithKey(key)
	}

	if cfg.ProgressTracker != nil {
		cfg.ProgressTracker.Update(size, size)
		cfg.ProgressTracker.Complete()
	}

	return &b2types.UploadResult{
		Key:      key,
		Size:     size,
		ETag:     aws.ToString(out.ETag),
		Location: out.Location,
		Duration: time.Since(startTime),
	}, nil
}

// List lists objects in the bucket under the given prefix.
// Pagination is handled internally; all matching objects are returned.
//
// Errors:
//   - ErrInvalidInput: If bucket is empty or invalid
//   - Network errors or SDK errors wrapped in the Error type
func (c *Client) List(
	ctx context.Context,
	bucket, prefix string,
	opts ...b2types.ListOption,
) ([]b2types.Object, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, b2errors.NewError("list", b2errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage(err.Error())
	}

	cfg := &b2types.ListOptionConfig{
		MaxKeys: 1000,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(cfg.MaxKeys),
	}
	if cfg.Delimiter != "" {
		input.Delimiter = aws.String(cfg.Delimiter)
	}

	var objects []b2types.Object

	paginator := s3.NewListObjectsV2Paginator(c.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, b2errors.NewError("list", err).WithBucket(bucket)
		}
		for _, obj := range page.Contents {
			objects = append(objects, b2types.Object{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         aws.ToString(obj.ETag),
			})
		}
	}

	return objects, nil
}

// Exists checks if an object exists using a HEAD request.
// Returns true if the object exists, false if it doesn't exist.
// Returns an error for other types of failures (network issues, permissions, etc.).
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return false, b2errors.NewError("exists", b2errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return false, b2errors.NewError("exists", b2errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	input := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	_, err := c.api.HeadObject(ctx, input)
	if err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "NotFound") || strings.Contains(errMsg, "NoSuchKey") {
			return false, nil
		}
		return false, b2errors.NewError("exists", err).WithBucket(bucket).WithKey(key)
	}

	return true, nil
}

// Copy copies an object from one key to another within the store.
// This is a server-side copy; the object's bytes never transit the client.
func (c *Client) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	if err := validation.ValidateBucketName(srcBucket); err != nil {
		return b2errors.NewError("copy", b2errors.ErrInvalidInput).
			WithBucket(srcBucket).
			WithKey(srcKey).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(srcKey); err != nil {
		return b2errors.NewError("copy", b2errors.ErrInvalidInput).
			WithBucket(srcBucket).
			WithKey(srcKey).
			WithMessage(err.Error())
	}
	if err := validation.ValidateBucketName(dstBucket); err != nil {
		return b2errors.NewError("copy", b2errors.ErrInvalidInput).
			WithBucket(dstBucket).
			WithKey(dstKey).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(dstKey); err != nil {
		return b2errors.NewError("copy", b2errors.ErrInvalidInput).
			WithBucket(dstBucket).
			WithKey(dstKey).
			WithMessage(err.Error())
	}
	if srcBucket == dstBucket && srcKey == dstKey {
		return b2errors.NewError("copy", b2errors.ErrInvalidInput).
			WithBucket(srcBucket).
			WithKey(srcKey).
			WithMessage("cannot copy object to itself")
	}

	input := &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(srcBucket + "/" + srcKey),
	}

	_, err := c.api.CopyObject(ctx, input)
	if err != nil {
		return b2errors.NewError("copy", err).
			WithBucket(dstBucket).
			WithKey(dstKey).
			WithMessage("failed to copy from " + srcBucket + "/" + srcKey)
	}

	return nil
}

// Delete deletes a single object.
// This operation is idempotent; deleting a non-existent object doesn't return an error.
func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return b2errors.NewError("delete", b2errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return b2errors.NewError("delete", b2errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	input := &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	_, err := c.api.DeleteObject(ctx, input)
	if err != nil {
		return b2errors.NewError("delete", err).WithBucket(bucket).WithKey(key)
	}

	return nil
}

// detectContentType determines the content type by sniffing the file's
// leading bytes, falling back to extension-based lookup.
func detectContentType(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return detectContentTypeFromExtension(path)
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	if n > 0 {
		if mt := mimetype.Detect(buf[:n]); mt != nil {
			return mt.String()
		}
	}

	return detectContentTypeFromExtension(path)
}

// detectContentTypeFromExtension detects content type from the file extension
func detectContentTypeFromExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	return DefaultContentType
}

// progressReader reports read progress to a ProgressTracker.
type progressReader struct {
	reader      io.Reader
	total       int64
	transferred int64
	tracker     b2types.ProgressTracker
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.transferred += int64(n)
		r.tracker.Update(r.transferred, r.total)
	}
	return n, err
}
