package relocate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-connect/datican-repo/b2/b2types"
)

type fakeStore struct {
	objects map[string]int64

	copyErr   error
	deleteErr error
	existsErr error

	copies  []string // "src->dst"
	deletes []string
}

func newFakeStore(keys ...string) *fakeStore {
	objects := make(map[string]int64, len(keys))
	for _, k := range keys {
		objects[k] = 1024
	}
	return &fakeStore{objects: objects}
}

func (f *fakeStore) List(
	ctx context.Context,
	bucket, prefix string,
	opts ...b2types.ListOption,
) ([]b2types.Object, error) {
	var out []b2types.Object
	for key, size := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, b2types.Object{Key: key, Size: size})
		}
	}
	return out, nil
}

func (f *fakeStore) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	if f.copyErr != nil {
		return f.copyErr
	}
	f.copies = append(f.copies, srcKey+"->"+dstKey)
	f.objects[dstKey] = f.objects[srcKey]
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, bucket, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.objects[key]
	return ok, nil
}

func testConfig() Config {
	return Config{
		Bucket:       "datican-repo",
		SourcePrefix: "incoming/",
		Prefix:       "datasets",
		Folder:       "brain-mri",
	}
}

func TestRelocator_PlanComputesDestinations(t *testing.T) {
	store := newFakeStore("incoming/scan.tar.gz", "incoming/atlas.nii.gz")
	rel := New(store, testConfig(), nil)

	moves, skipped, err := rel.Plan(context.Background())
	require.NoError(t, err)

	assert.Zero(t, skipped)
	require.Len(t, moves, 2)

	dsts := map[string]string{}
	for _, m := range moves {
		dsts[m.SrcKey] = m.DstKey
	}
	assert.Equal(t, "datasets/brain-mri/scan.tar.gz", dsts["incoming/scan.tar.gz"])
	assert.Equal(t, "datasets/brain-mri/atlas.nii.gz", dsts["incoming/atlas.nii.gz"])
}

func TestRelocator_PlanSkipsObjectsAlreadyInPlace(t *testing.T) {
	cfg := testConfig()
	cfg.SourcePrefix = "datasets/brain-mri/"
	store := newFakeStore("datasets/brain-mri/scan.tar.gz")
	rel := New(store, cfg, nil)

	moves, skipped, err := rel.Plan(context.Background())
	require.NoError(t, err)

	assert.Empty(t, moves)
	assert.Equal(t, 1, skipped)
}

func TestRelocator_PlanNeverOverwritesDestination(t *testing.T) {
	store := newFakeStore(
		"incoming/scan.tar.gz",
		"datasets/brain-mri/scan.tar.gz", // destination already taken
	)
	rel := New(store, testConfig(), nil)

	moves, skipped, err := rel.Plan(context.Background())
	require.NoError(t, err)

	assert.Empty(t, moves)
	assert.Equal(t, 1, skipped)
}

func TestRelocator_DryRunPerformsNothing(t *testing.T) {
	cfg := testConfig()
	cfg.DryRun = true
	cfg.DeleteSource = true
	store := newFakeStore("incoming/scan.tar.gz")
	rel := New(store, cfg, nil)

	moves, skipped, err := rel.Plan(context.Background())
	require.NoError(t, err)

	summary, err := rel.Run(context.Background(), moves, skipped)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Planned)
	assert.Zero(t, summary.Moved)
	assert.Empty(t, store.copies)
	assert.Empty(t, store.deletes)
}

func TestRelocator_RunCopiesVerifiesAndDeletes(t *testing.T) {
	cfg := testConfig()
	cfg.Verify = true
	cfg.DeleteSource = true
	store := newFakeStore("incoming/scan.tar.gz")
	rel := New(store, cfg, nil)

	moves, skipped, err := rel.Plan(context.Background())
	require.NoError(t, err)

	summary, err := rel.Run(context.Background(), moves, skipped)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Moved)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, []string{"incoming/scan.tar.gz->datasets/brain-mri/scan.tar.gz"}, store.copies)
	assert.Equal(t, []string{"incoming/scan.tar.gz"}, store.deletes)
}

func TestRelocator_SourceKeptByDefault(t *testing.T) {
	store := newFakeStore("incoming/scan.tar.gz")
	rel := New(store, testConfig(), nil)

	moves, skipped, err := rel.Plan(context.Background())
	require.NoError(t, err)

	summary, err := rel.Run(context.Background(), moves, skipped)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Moved)
	assert.Empty(t, store.deletes)
	assert.Contains(t, store.objects, "incoming/scan.tar.gz")
}

func TestRelocator_FailedMoveCountedAndRunContinues(t *testing.T) {
	store := newFakeStore("incoming/scan.tar.gz", "incoming/atlas.nii.gz")
	rel := New(store, testConfig(), nil)

	moves, skipped, err := rel.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, moves, 2)

	store.copyErr = errors.New("copy rejected")
	summary, err := rel.Run(context.Background(), moves, skipped)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Failed)
	assert.Zero(t, summary.Moved)
	assert.Empty(t, store.deletes)
}

func TestRelocator_VerifyFailureKeepsSource(t *testing.T) {
	cfg := testConfig()
	cfg.Verify = true
	cfg.DeleteSource = true
	store := newFakeStore("incoming/scan.tar.gz")
	rel := New(store, cfg, nil)

	moves, skipped, err := rel.Plan(context.Background())
	require.NoError(t, err)

	store.existsErr = errors.New("verify unavailable")
	summary, err := rel.Run(context.Background(), moves, skipped)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, store.deletes)
	assert.Contains(t, store.objects, "incoming/scan.tar.gz")
}
