package reframe

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipcast/reframe/internal/track"
)

func newTestPlanner(zoom float64) *Planner {
	opts := DefaultPlanOptions()
	if zoom > 0 {
		opts.Zoom = zoom
	}
	return NewPlanner(zerolog.Nop(), opts)
}

func assertCropBounds(t *testing.T, crop CropRect, srcW, srcH int) {
	t.Helper()
	assert.GreaterOrEqual(t, crop.X, 0)
	assert.LessOrEqual(t, crop.X+crop.W, srcW)
	assert.Equal(t, 0, crop.Y)
	assert.Equal(t, srcH, crop.H, "cropping is purely horizontal")
}

func TestCursorTrackSingleObservation(t *testing.T) {
	p := newTestPlanner(0.5)

	crop, keyframes := p.CursorTrack(1920, 1080, []track.Position{{T: 0, X: 0.75}})

	require.Len(t, keyframes, 1)
	assert.Equal(t, 960, crop.W)
	assert.Equal(t, 960, keyframes[0].X, "x = clamp(1440-480, 0, 960)")
	assert.Equal(t, 960, crop.X)
	assertCropBounds(t, crop, 1920, 1080)
}

func TestCursorTrackKeepsFirstAndLast(t *testing.T) {
	p := newTestPlanner(0.5)

	positions := []track.Position{{T: 0, X: 0.50}, {T: 0.5, X: 0.501}}
	crop, keyframes := p.CursorTrack(1920, 1080, positions)

	// delta is far below 2% of crop width, but first and last survive
	require.Len(t, keyframes, 2)
	assert.Equal(t, 480, keyframes[0].X)
	assert.Equal(t, 482, keyframes[1].X)
	assertCropBounds(t, crop, 1920, 1080)
}

func TestCursorTrackDedupDropsNearStaticRuns(t *testing.T) {
	p := newTestPlanner(0.5)

	positions := []track.Position{
		{T: 0.0, X: 0.500},
		{T: 0.5, X: 0.501}, // travels 2px, below threshold
		{T: 1.0, X: 0.502}, // still below threshold relative to the last kept
		{T: 1.5, X: 0.600},
	}
	_, keyframes := p.CursorTrack(1920, 1080, positions)

	require.Len(t, keyframes, 2)
	assert.InDelta(t, 0.0, keyframes[0].T, 1e-9)
	assert.InDelta(t, 1.5, keyframes[1].T, 1e-9)
}

func TestCursorTrackDedupGapProperty(t *testing.T) {
	p := newTestPlanner(0.5)

	positions := []track.Position{
		{T: 0.0, X: 0.10}, {T: 0.5, X: 0.105}, {T: 1.0, X: 0.30},
		{T: 1.5, X: 0.301}, {T: 2.0, X: 0.55}, {T: 2.5, X: 0.553},
		{T: 3.0, X: 0.80}, {T: 3.5, X: 0.81},
	}
	crop, keyframes := p.CursorTrack(1920, 1080, positions)

	threshold := float64(crop.W) * 0.02
	for i := 1; i < len(keyframes)-1; i++ {
		gap := math.Abs(float64(keyframes[i].X - keyframes[i-1].X))
		assert.Greater(t, gap, threshold, "interior keyframes must travel more than the dedup threshold")
	}
}

func TestCursorTrackKeyframesStrictlyIncreasing(t *testing.T) {
	p := newTestPlanner(0)

	positions := []track.Position{
		{T: 0.0, X: 0.1}, {T: 0.5, X: 0.5}, {T: 1.0, X: 0.9}, {T: 1.5, X: 0.2},
	}
	_, keyframes := p.CursorTrack(1280, 720, positions)

	for i := 1; i < len(keyframes); i++ {
		assert.Greater(t, keyframes[i].T, keyframes[i-1].T)
	}
}

func TestCursorTrackBoundsAtExtremes(t *testing.T) {
	p := newTestPlanner(0)

	positions := []track.Position{{T: 0, X: 0.0}, {T: 0.5, X: 1.0}}
	crop, keyframes := p.CursorTrack(1920, 1080, positions)

	assertCropBounds(t, crop, 1920, 1080)
	for _, kf := range keyframes {
		assert.GreaterOrEqual(t, kf.X, 0)
		assert.LessOrEqual(t, kf.X+crop.W, 1920)
	}
}

func TestCursorTrackStaticFallbackIsPreDedupMean(t *testing.T) {
	p := newTestPlanner(0.5)

	// raw xs: 0 (clamped), 96, 96, 96; mean 72 — the near-static run
	// influences the fallback even though dedup collapses it
	positions := []track.Position{
		{T: 0.0, X: 0.25}, {T: 0.5, X: 0.3}, {T: 1.0, X: 0.3}, {T: 1.5, X: 0.3},
	}
	crop, _ := p.CursorTrack(1920, 1080, positions)

	assert.Equal(t, 72, crop.X)
}

func TestFaceTrackWidthInvariant(t *testing.T) {
	p := newTestPlanner(0)

	cases := []struct {
		srcW, srcH int
	}{
		{1920, 1080},
		{3840, 2160},
		{1280, 720},
		{400, 1080}, // narrower than the 9:16 width
	}
	for _, tc := range cases {
		crop := p.FaceTrack(tc.srcW, tc.srcH, nil)
		want := min(tc.srcW, int(math.Round(float64(tc.srcH)*9.0/16.0)))
		assert.Equal(t, want, crop.W)
		assertCropBounds(t, crop, tc.srcW, tc.srcH)
	}
}

func TestFaceTrackZeroFacesCenters(t *testing.T) {
	p := newTestPlanner(0)

	crop := p.FaceTrack(1920, 1080, nil)

	assert.Equal(t, (1920-crop.W)/2, crop.X, "no faces ever found falls back to pure center")
}

func TestFaceTrackFollowsMeanCenter(t *testing.T) {
	p := newTestPlanner(0)

	faces := []track.FacePosition{
		{T: 1, XCenter: 0.70, YCenter: 0.5},
		{T: 3, XCenter: 0.80, YCenter: 0.5},
	}
	crop := p.FaceTrack(1920, 1080, faces)

	// mean center 0.75 -> 1440px; x = 1440 - 608/2 = 1136
	assert.Equal(t, 1136, crop.X)
	assertCropBounds(t, crop, 1920, 1080)
}

func TestFramedIsCentered(t *testing.T) {
	p := newTestPlanner(0)

	crop := p.Framed(1920, 1080)

	assert.Equal(t, 1056, crop.W, "round(1920*0.55)")
	assert.Equal(t, 432, crop.X)
	assertCropBounds(t, crop, 1920, 1080)
}

func TestCenterFallback(t *testing.T) {
	p := newTestPlanner(0)

	crop := p.Center(1920, 1080)

	assert.Equal(t, 608, crop.W)
	assert.Equal(t, 656, crop.X)
	assertCropBounds(t, crop, 1920, 1080)
}

func TestPlannerIsDeterministic(t *testing.T) {
	p := newTestPlanner(0)

	positions := []track.Position{
		{T: 0.0, X: 0.31}, {T: 0.5, X: 0.62}, {T: 1.0, X: 0.44},
	}
	crop1, kfs1 := p.CursorTrack(1920, 1080, positions)
	crop2, kfs2 := p.CursorTrack(1920, 1080, positions)

	assert.Equal(t, crop1, crop2)
	assert.Equal(t, kfs1, kfs2)
}
