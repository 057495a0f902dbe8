// Package reconcile implements the upload reconciliation routine for
// dataset archives.
//
// A reconciliation compares desired state (this file should exist in the
// bucket) against observed remote state (an object is already present at
// the computed key) before acting. The destination key is a pure function
// of the configured prefix, the dataset folder, and the file's base name,
// so repeated invocations for the same file always target the same remote
// location. An existing object is never overwritten unless the caller
// explicitly forces the transfer.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/md-connect/datican-repo/b2/b2types"
)

// Sentinel errors for the reconciliation failure modes.
// Callers distinguish them with errors.Is.
var (
	// ErrLocalFileNotFound indicates the local path does not reference a
	// readable regular file. Reported before any network call.
	ErrLocalFileNotFound = errors.New("reconcile: local file not found")

	// ErrExistenceCheck indicates the remote listing itself failed. This is
	// never conflated with "object absent": a failed check aborts the
	// reconciliation rather than risking a duplicate upload decision.
	ErrExistenceCheck = errors.New("reconcile: existence check failed")

	// ErrTransfer indicates the upload call failed. No retry is performed;
	// the caller decides whether to invoke again.
	ErrTransfer = errors.New("reconcile: transfer failed")
)

// DefaultURLValidity is how long a signed download URL stays usable.
const DefaultURLValidity = 3600 * time.Second

// Store is the object-store capability the reconciler consumes.
// The b2.Client satisfies it; tests use an in-memory fake.
type Store interface {
	// List returns the objects in the bucket whose keys start with prefix.
	List(ctx context.Context, bucket, prefix string, opts ...b2types.ListOption) ([]b2types.Object, error)

	// UploadFile transfers the file at path to the given key.
	UploadFile(ctx context.Context, bucket, key, path string, opts ...b2types.UploadOption) (*b2types.UploadResult, error)

	// SignedURL returns a time-limited download URL for the given key.
	SignedURL(ctx context.Context, bucket, key string, validity time.Duration) (string, error)
}

// Config carries the destination settings for a reconciler.
// Bucket, prefix, and folder are explicit values rather than package
// constants so one binary can serve multiple datasets and environments.
type Config struct {
	// Bucket is the destination bucket name
	Bucket string

	// Prefix is the fixed key prefix for dataset archives (e.g. "datasets")
	Prefix string

	// Folder is the dataset folder under the prefix (e.g. "brain-mri")
	Folder string

	// URLValidity is the signed URL validity window; DefaultURLValidity when zero
	URLValidity time.Duration
}

// RemoteKey computes the destination key for a local file path:
// <prefix>/<folder>/<base name>. The result depends only on the
// configuration and the file's base name, never on time or randomness.
func (c Config) RemoteKey(localPath string) string {
	return c.Prefix + "/" + c.Folder + "/" + filepath.Base(localPath)
}

// Status describes the outcome of a reconciliation.
type Status string

const (
	// StatusUploaded means the file was transferred to the remote key
	StatusUploaded Status = "uploaded"

	// StatusSkipped means an object already existed at the key and the
	// transfer was not forced
	StatusSkipped Status = "skipped"
)

// Result is the outcome of a single reconciliation.
type Result struct {
	// Status is the decision taken
	Status Status

	// Key is the computed remote key
	Key string

	// SignedURL is a time-limited download URL; set only when Status is StatusUploaded
	SignedURL string

	// Size is the number of bytes transferred; set only when Status is StatusUploaded
	Size int64

	// Duration is how long the transfer took; set only when Status is StatusUploaded
	Duration time.Duration
}

// Reconciler decides whether a local file needs to be transferred to the
// remote store and performs at most one transfer per invocation.
type Reconciler struct {
	store Store
	cfg   Config
}

// New creates a reconciler for the given store and destination config.
func New(store Store, cfg Config) *Reconciler {
	if cfg.URLValidity <= 0 {
		cfg.URLValidity = DefaultURLValidity
	}
	return &Reconciler{
		store: store,
		cfg:   cfg,
	}
}

// Reconcile uploads the file at localPath to its computed remote key unless
// an object already exists there. With force set, an existing object is
// overwritten. The steps are strictly sequential: precondition check,
// existence check, at most one transfer, at most one signing call.
//
// Error taxonomy:
//   - ErrLocalFileNotFound: localPath is missing or not a regular file;
//     no network call was made
//   - ErrExistenceCheck: the listing call failed; the transfer was not attempted
//   - ErrTransfer: the upload call failed; nothing partial is referenced
func (r *Reconciler) Reconcile(ctx context.Context, localPath string, force bool) (*Result, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLocalFileNotFound, localPath)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrLocalFileNotFound, localPath)
	}

	key := r.cfg.RemoteKey(localPath)

	exists, err := r.exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExistenceCheck, err)
	}

	if exists && !force {
		return &Result{
			Status: StatusSkipped,
			Key:    key,
		}, nil
	}

	uploaded, err := r.store.UploadFile(ctx, r.cfg.Bucket, key, localPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransfer, err)
	}

	url, err := r.store.SignedURL(ctx, r.cfg.Bucket, key, r.cfg.URLValidity)
	if err != nil {
		// The object did upload; surface the key so the caller can still use it.
		return nil, fmt.Errorf("object uploaded to %s but signing the URL failed: %w", key, err)
	}

	return &Result{
		Status:    StatusUploaded,
		Key:       key,
		SignedURL: url,
		Size:      uploaded.Size,
		Duration:  uploaded.Duration,
	}, nil
}

// exists queries the store for the exact key. Listing uses the key itself
// as the prefix and then requires exact equality, so similarly prefixed
// names (scan.tar.gz vs scan.tar.gz.bak) never produce a false skip.
func (r *Reconciler) exists(ctx context.Context, key string) (bool, error) {
	objects, err := r.store.List(ctx, r.cfg.Bucket, key)
	if err != nil {
		return false, err
	}

	for _, obj := range objects {
		if obj.Key == key {
			return true, nil
		}
	}

	return false, nil
}
