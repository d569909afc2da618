// Package sampler decides which timestamps of a clip get decoded. Policies
// are cheap, restartable iterators so callers can stream frames without ever
// holding a whole clip's samples in memory.
package sampler

import (
	"context"
	"image"
	"iter"
)

// Policy produces sample timestamps for a clip of a given duration.
type Policy interface {
	Timestamps(duration float64) iter.Seq[float64]
}

// FixedCount samples n evenly spaced timestamps, placed at bucket centers so
// the exact boundary frames are never hit.
type FixedCount struct {
	N int
}

func (p FixedCount) Timestamps(duration float64) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for i := 0; i < p.N; i++ {
			ts := duration * (float64(i) + 0.5) / float64(p.N)
			if !yield(ts) {
				return
			}
		}
	}
}

// FixedInterval samples every Interval seconds starting at zero, while the
// timestamp stays below the clip duration.
type FixedInterval struct {
	Interval float64
}

func (p FixedInterval) Timestamps(duration float64) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if p.Interval <= 0 {
			return
		}
		for i := 0; ; i++ {
			ts := float64(i) * p.Interval
			if ts >= duration {
				return
			}
			if !yield(ts) {
				return
			}
		}
	}
}

// FrameSource extracts a decoded image at a timestamp. Implementations are
// best-effort; an error means the sample is absent.
type FrameSource interface {
	ExtractFrameImage(ctx context.Context, path string, timestamp float64) (image.Image, error)
}
