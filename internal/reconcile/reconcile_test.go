package reconcile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-connect/datican-repo/b2/b2types"
)

// fakeStore is an in-memory stand-in for the object store. It records
// every call so tests can assert which collaborators were (not) invoked.
type fakeStore struct {
	objects []b2types.Object

	listErr   error
	uploadErr error
	signErr   error

	listCalls   int
	uploadCalls int
	signCalls   int

	uploadedKeys []string
}

func (f *fakeStore) List(
	ctx context.Context,
	bucket, prefix string,
	opts ...b2types.ListOption,
) ([]b2types.Object, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var matched []b2types.Object
	for _, obj := range f.objects {
		if len(obj.Key) >= len(prefix) && obj.Key[:len(prefix)] == prefix {
			matched = append(matched, obj)
		}
	}
	return matched, nil
}

func (f *fakeStore) UploadFile(
	ctx context.Context,
	bucket, key, path string,
	opts ...b2types.UploadOption,
) (*b2types.UploadResult, error) {
	f.uploadCalls++
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploadedKeys = append(f.uploadedKeys, key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &b2types.UploadResult{
		Key:      key,
		Size:     info.Size(),
		Duration: 10 * time.Millisecond,
	}, nil
}

func (f *fakeStore) SignedURL(
	ctx context.Context,
	bucket, key string,
	validity time.Duration,
) (string, error) {
	f.signCalls++
	if f.signErr != nil {
		return "", f.signErr
	}
	return "https://example.test/signed/" + key, nil
}

// writeArchive creates a throwaway local file and returns its path.
func writeArchive(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("archive bytes"), 0o600))
	return path
}

func testConfig() Config {
	return Config{
		Bucket: "datican-repo",
		Prefix: "datasets",
		Folder: "brain-mri",
	}
}

func TestConfig_RemoteKey(t *testing.T) {
	cfg := testConfig()

	key := cfg.RemoteKey("/data/incoming/scan.tar.gz")
	assert.Equal(t, "datasets/brain-mri/scan.tar.gz", key)

	// Pure: identical inputs always yield identical keys.
	assert.Equal(t, key, cfg.RemoteKey("/data/incoming/scan.tar.gz"))

	// Only the base name matters, not the directory.
	assert.Equal(t, key, cfg.RemoteKey("/somewhere/else/scan.tar.gz"))
}

func TestReconciler_UploadsWhenAbsent(t *testing.T) {
	path := writeArchive(t, "scan.tar.gz")
	store := &fakeStore{}
	rec := New(store, testConfig())

	result, err := rec.Reconcile(context.Background(), path, false)
	require.NoError(t, err)

	assert.Equal(t, StatusUploaded, result.Status)
	assert.Equal(t, "datasets/brain-mri/scan.tar.gz", result.Key)
	assert.Equal(t, "https://example.test/signed/datasets/brain-mri/scan.tar.gz", result.SignedURL)
	assert.Equal(t, 1, store.uploadCalls)
	assert.Equal(t, []string{"datasets/brain-mri/scan.tar.gz"}, store.uploadedKeys)
}

func TestReconciler_SkipsWhenPresent(t *testing.T) {
	path := writeArchive(t, "scan.tar.gz")
	store := &fakeStore{
		objects: []b2types.Object{{Key: "datasets/brain-mri/scan.tar.gz"}},
	}
	rec := New(store, testConfig())

	result, err := rec.Reconcile(context.Background(), path, false)
	require.NoError(t, err)

	assert.Equal(t, StatusSkipped, result.Status)
	assert.Equal(t, "datasets/brain-mri/scan.tar.gz", result.Key)
	assert.Empty(t, result.SignedURL)

	// The transfer collaborator must never run on the skip path.
	assert.Zero(t, store.uploadCalls)
	assert.Zero(t, store.signCalls)
}

func TestReconciler_ForceOverwritesExisting(t *testing.T) {
	path := writeArchive(t, "scan.tar.gz")
	store := &fakeStore{
		objects: []b2types.Object{{Key: "datasets/brain-mri/scan.tar.gz"}},
	}
	rec := New(store, testConfig())

	result, err := rec.Reconcile(context.Background(), path, true)
	require.NoError(t, err)

	assert.Equal(t, StatusUploaded, result.Status)
	assert.Equal(t, 1, store.uploadCalls)
	assert.Equal(t, []string{"datasets/brain-mri/scan.tar.gz"}, store.uploadedKeys)
}

func TestReconciler_ForceUploadsWhenAbsentToo(t *testing.T) {
	path := writeArchive(t, "scan.tar.gz")
	store := &fakeStore{}
	rec := New(store, testConfig())

	result, err := rec.Reconcile(context.Background(), path, true)
	require.NoError(t, err)

	assert.Equal(t, StatusUploaded, result.Status)
	assert.Equal(t, 1, store.uploadCalls)
}

func TestReconciler_ExactMatchOnly(t *testing.T) {
	// A similarly prefixed object must not trigger a false skip.
	path := writeArchive(t, "scan.tar.gz")
	store := &fakeStore{
		objects: []b2types.Object{
			{Key: "datasets/brain-mri/scan.tar.gz.bak"},
			{Key: "datasets/brain-mri/scan.tar.gz.part"},
		},
	}
	rec := New(store, testConfig())

	result, err := rec.Reconcile(context.Background(), path, false)
	require.NoError(t, err)

	assert.Equal(t, StatusUploaded, result.Status)
	assert.Equal(t, 1, store.uploadCalls)
}

func TestReconciler_MissingLocalFile(t *testing.T) {
	store := &fakeStore{}
	rec := New(store, testConfig())

	_, err := rec.Reconcile(context.Background(), filepath.Join(t.TempDir(), "nope.tar.gz"), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocalFileNotFound)

	// Precondition failures happen before any network call.
	assert.Zero(t, store.listCalls)
	assert.Zero(t, store.uploadCalls)
	assert.Zero(t, store.signCalls)
}

func TestReconciler_DirectoryIsNotAFile(t *testing.T) {
	store := &fakeStore{}
	rec := New(store, testConfig())

	_, err := rec.Reconcile(context.Background(), t.TempDir(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocalFileNotFound)
	assert.Zero(t, store.listCalls)
}

func TestReconciler_ExistenceCheckFailure(t *testing.T) {
	// A failed listing is not "object absent": the upload must not run.
	path := writeArchive(t, "scan.tar.gz")
	store := &fakeStore{listErr: errors.New("connection reset")}
	rec := New(store, testConfig())

	_, err := rec.Reconcile(context.Background(), path, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExistenceCheck)
	assert.Zero(t, store.uploadCalls)
}

func TestReconciler_TransferFailure(t *testing.T) {
	path := writeArchive(t, "scan.tar.gz")
	store := &fakeStore{uploadErr: errors.New("bucket rejected the write")}
	rec := New(store, testConfig())

	_, err := rec.Reconcile(context.Background(), path, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransfer)

	// Exactly one attempt, no retry.
	assert.Equal(t, 1, store.uploadCalls)
	assert.Zero(t, store.signCalls)
}

func TestReconciler_SigningFailureAfterUpload(t *testing.T) {
	path := writeArchive(t, "scan.tar.gz")
	store := &fakeStore{signErr: errors.New("signing unavailable")}
	rec := New(store, testConfig())

	_, err := rec.Reconcile(context.Background(), path, false)
	require.Error(t, err)

	// The transfer itself succeeded; the error must carry the key.
	assert.Equal(t, 1, store.uploadCalls)
	assert.Contains(t, err.Error(), "datasets/brain-mri/scan.tar.gz")
}

func TestReconciler_DefaultURLValidity(t *testing.T) {
	rec := New(&fakeStore{}, Config{Bucket: "datican-repo", Prefix: "datasets", Folder: "x"})
	assert.Equal(t, DefaultURLValidity, rec.cfg.URLValidity)

	custom := New(&fakeStore{}, Config{
		Bucket:      "datican-repo",
		Prefix:      "datasets",
		Folder:      "x",
		URLValidity: time.Minute,
	})
	assert.Equal(t, time.Minute, custom.cfg.URLValidity)
}
