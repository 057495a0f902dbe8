package main

import (
	"context"

	"github.com/cheggaaa/pb/v3"

	"github.com/md-connect/datican-repo/b2"
	"github.com/md-connect/datican-repo/b2/b2types"
)

// uploadStore wraps the b2 client so every upload carries the progress
// tracker. The reconciler only knows the Store seam; presentation stays here.
type uploadStore struct {
	*b2.Client
	tracker b2types.ProgressTracker
}

func (s uploadStore) UploadFile(
	ctx context.Context,
	bucket, key, path string,
	opts ...b2types.UploadOption,
) (*b2types.UploadResult, error) {
	if s.tracker != nil {
		opts = append(opts, b2.WithProgress(s.tracker))
	}
	return s.Client.UploadFile(ctx, bucket, key, path, opts...)
}

// progressBar adapts a terminal progress bar to the ProgressTracker seam.
type progressBar struct {
	bar *pb.ProgressBar
}

func newProgressBar() *progressBar {
	return &progressBar{}
}

func (p *progressBar) Update(transferred, total int64) {
	if p.bar == nil {
		p.bar = pb.Full.Start64(total)
		p.bar.Set(pb.Bytes, true)
	}
	p.bar.SetCurrent(transferred)
}

func (p *progressBar) Complete() {
	if p.bar != nil {
		p.bar.Finish()
	}
}
