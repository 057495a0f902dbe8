// Package relocate moves previously uploaded objects into the current
// dataset folder layout using server-side copies.
//
// Earlier uploads landed directly under ad-hoc prefixes; the current layout
// is <prefix>/<folder>/<base name>. Relocation never downloads object
// bytes: each move is a server-side copy, an optional verification of the
// destination, and a delete of the source. Any failure leaves the source
// object in place.
package relocate

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/md-connect/datican-repo/b2/b2types"
)

// Store is the object-store capability the relocator consumes.
// The b2.Client satisfies it; tests use an in-memory fake.
type Store interface {
	List(ctx context.Context, bucket, prefix string, opts ...b2types.ListOption) ([]b2types.Object, error)
	Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error
	Delete(ctx context.Context, bucket, key string) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

// Config carries the relocation settings.
type Config struct {
	// Bucket is the bucket holding both source and destination keys
	Bucket string

	// SourcePrefix selects the objects to relocate
	SourcePrefix string

	// Prefix is the fixed destination key prefix (e.g. "datasets")
	Prefix string

	// Folder is the dataset folder under the prefix
	Folder string

	// DryRun plans moves without performing them
	DryRun bool

	// Verify re-checks destination existence after each copy before the
	// source is deleted
	Verify bool

	// DeleteSource removes the source object after a successful copy
	DeleteSource bool
}

// Move is one planned object relocation.
type Move struct {
	// SrcKey is the current key of the object
	SrcKey string

	// DstKey is the key the object will be copied to
	DstKey string

	// Size is the object size in bytes
	Size int64
}

// Summary reports the outcome of a relocation run.
type Summary struct {
	// Planned is the number of moves in the plan
	Planned int

	// Moved is the number of objects successfully relocated
	Moved int

	// Skipped is the number of source objects already at their destination
	Skipped int

	// Failed is the number of moves that errored; their sources were kept
	Failed int

	// Duration is the total run time
	Duration time.Duration
}

// Relocator plans and executes object relocations.
type Relocator struct {
	store Store
	cfg   Config
	log   *zap.Logger
}

// New creates a relocator for the given store and settings.
// A nil logger disables logging.
func New(store Store, cfg Config, log *zap.Logger) *Relocator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Relocator{
		store: store,
		cfg:   cfg,
		log:   log,
	}
}

// Plan lists the source prefix and computes the destination key for each
// object. Objects already at their destination key, and objects whose
// destination already holds an object, are left out of the plan: the
// relocation never overwrites existing data.
func (r *Relocator) Plan(ctx context.Context) ([]Move, int, error) {
	objects, err := r.store.List(ctx, r.cfg.Bucket, r.cfg.SourcePrefix)
	if err != nil {
		return nil, 0, fmt.Errorf("listing source prefix %q: %w", r.cfg.SourcePrefix, err)
	}

	var moves []Move
	skipped := 0

	for _, obj := range objects {
		dst := r.cfg.Prefix + "/" + r.cfg.Folder + "/" + path.Base(obj.Key)
		if obj.Key == dst {
			r.log.Debug("object already in place", zap.String("key", obj.Key))
			skipped++
			continue
		}

		present, err := r.destinationTaken(ctx, dst)
		if err != nil {
			return nil, 0, fmt.Errorf("checking destination %q: %w", dst, err)
		}
		if present {
			r.log.Info("destination already holds an object, skipping",
				zap.String("src", obj.Key),
				zap.String("dst", dst))
			skipped++
			continue
		}

		moves = append(moves, Move{
			SrcKey: obj.Key,
			DstKey: dst,
			Size:   obj.Size,
		})
	}

	return moves, skipped, nil
}

// Run executes a plan sequentially. Each move is copy, optional verify,
// optional delete of the source. A failed move is counted and logged but
// does not stop the run; its source object is always kept.
func (r *Relocator) Run(ctx context.Context, moves []Move, skipped int) (*Summary, error) {
	start := time.Now()
	summary := &Summary{
		Planned: len(moves),
		Skipped: skipped,
	}

	if r.cfg.DryRun {
		for _, m := range moves {
			r.log.Info("would move", zap.String("src", m.SrcKey), zap.String("dst", m.DstKey))
		}
		summary.Duration = time.Since(start)
		return summary, nil
	}

	for _, m := range moves {
		if err := r.relocateOne(ctx, m); err != nil {
			r.log.Error("move failed, source kept",
				zap.String("src", m.SrcKey),
				zap.String("dst", m.DstKey),
				zap.Error(err))
			summary.Failed++
			continue
		}
		r.log.Info("moved", zap.String("src", m.SrcKey), zap.String("dst", m.DstKey))
		summary.Moved++
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

// relocateOne performs one copy-verify-delete sequence.
func (r *Relocator) relocateOne(ctx context.Context, m Move) error {
	if err := r.store.Copy(ctx, r.cfg.Bucket, m.SrcKey, r.cfg.Bucket, m.DstKey); err != nil {
		return fmt.Errorf("copy: %w", err)
	}

	if r.cfg.Verify {
		ok, err := r.store.Exists(ctx, r.cfg.Bucket, m.DstKey)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		if !ok {
			return fmt.Errorf("verify: destination %q missing after copy", m.DstKey)
		}
	}

	if r.cfg.DeleteSource {
		if err := r.store.Delete(ctx, r.cfg.Bucket, m.SrcKey); err != nil {
			return fmt.Errorf("delete source: %w", err)
		}
	}

	return nil
}

// destinationTaken checks for an object at exactly the destination key.
func (r *Relocator) destinationTaken(ctx context.Context, key string) (bool, error) {
	return r.store.Exists(ctx, r.cfg.Bucket, key)
}
