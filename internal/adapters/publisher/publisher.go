// Package publisher delivers finished frames to consumers.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/robocloud/internal/domain/cloud"
)

// Publisher accepts a frame. The frame aliases the loop's buffer and is only
// valid for the duration of the call; implementations copy what they keep.
type Publisher interface {
	Publish(ctx context.Context, f *cloud.Frame) error
}

// Latest keeps a copy of the newest frame for pull-style consumers. Its
// buffers are reused across frames.
type Latest struct {
	mu    sync.RWMutex
	frame cloud.Frame
	has   bool
	pc2   cloud.PointCloud2
}

// NewLatest creates an empty Latest.
func NewLatest() *Latest {
	return &Latest{}
}

// Publish copies f and packs its PointCloud2 form.
func (l *Latest) Publish(_ context.Context, f *cloud.Frame) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frame.FrameID = f.FrameID
	l.frame.Stamp = f.Stamp
	l.frame.Seq = f.Seq
	l.frame.Points = append(l.frame.Points[:0], f.Points...)
	l.frame.Tags = append(l.frame.Tags[:0], f.Tags...)
	if _, err := cloud.EncodePointCloud2(&l.frame, &l.pc2); err != nil {
		l.has = false
		return fmt.Errorf("latest: %w", err)
	}
	l.has = true
	return nil
}

// Snapshot returns an independent copy of the newest frame.
func (l *Latest) Snapshot() (*cloud.Frame, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.has {
		return nil, false
	}
	return &cloud.Frame{
		FrameID: l.frame.FrameID,
		Stamp:   l.frame.Stamp,
		Seq:     l.frame.Seq,
		Points:  append([]cloud.Point(nil), l.frame.Points...),
		Tags:    append([]uint32(nil), l.frame.Tags...),
	}, true
}

// PointCloud2 returns an independent copy of the newest frame packed as
// PointCloud2.
func (l *Latest) PointCloud2() (*cloud.PointCloud2, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.has {
		return nil, false
	}
	out := l.pc2
	out.Data = append([]byte(nil), l.pc2.Data...)
	return &out, true
}

// Fanout publishes to every publisher in order and joins their errors.
type Fanout []Publisher

// Publish calls each publisher even if an earlier one failed.
func (f Fanout) Publish(ctx context.Context, fr *cloud.Frame) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, fr); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
