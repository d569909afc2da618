package reframe

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/clipcast/reframe/internal/track"
)

// PlanOptions holds crop geometry policy
type PlanOptions struct {
	// Zoom is the fraction of source width kept visible for screen content.
	// Screen crops are wider than 9:16 because screen content needs more
	// horizontal context than a face.
	Zoom float64
	// DedupFraction is the minimum keyframe travel, as a fraction of crop
	// width, required to keep an interior keyframe.
	DedupFraction float64
}

func DefaultPlanOptions() PlanOptions {
	return PlanOptions{
		Zoom:          0.55,
		DedupFraction: 0.02,
	}
}

// Planner computes crop rectangles and keyframe sequences per strategy
type Planner struct {
	logger zerolog.Logger
	opts   PlanOptions
}

// NewPlanner creates a planner with the given geometry policy
func NewPlanner(logger zerolog.Logger, opts PlanOptions) *Planner {
	return &Planner{
		logger: logger.With().Str("component", "crop-planner").Logger(),
		opts:   opts,
	}
}

// CursorTrack computes the animated screen crop: one raw keyframe per
// smoothed cursor sample, deduplicated, plus a static fallback rectangle for
// renderers that ignore keyframes.
func (p *Planner) CursorTrack(srcW, srcH int, positions []track.Position) (CropRect, []CropKeyframe) {
	cropW := p.screenWidth(srcW)

	raw := make([]CropKeyframe, 0, len(positions))
	xs := make([]float64, 0, len(positions))
	for _, pos := range positions {
		x := clampX(int(math.Round(pos.X*float64(srcW)-float64(cropW)/2)), cropW, srcW)
		raw = append(raw, CropKeyframe{T: pos.T, X: x})
		xs = append(xs, float64(x))
	}

	keyframes := p.dedupKeyframes(raw, cropW)

	// Static fallback: mean over the raw keyframes, so it does not depend
	// on the dedup threshold.
	avgX := (srcW - cropW) / 2
	if len(xs) > 0 {
		avgX = clampX(int(math.Round(stat.Mean(xs, nil))), cropW, srcW)
	}

	p.logger.Debug().
		Int("raw_keyframes", len(raw)).
		Int("kept_keyframes", len(keyframes)).
		Int("crop_w", cropW).
		Msg("cursor-track plan computed")

	return CropRect{X: avgX, Y: 0, W: cropW, H: srcH}, keyframes
}

// dedupKeyframes drops interior keyframes whose travel since the last kept
// keyframe is below the threshold. The first and last keyframes are always
// kept, even if equal.
func (p *Planner) dedupKeyframes(raw []CropKeyframe, cropW int) []CropKeyframe {
	if len(raw) <= 2 {
		return raw
	}

	threshold := float64(cropW) * p.opts.DedupFraction
	kept := []CropKeyframe{raw[0]}
	for _, kf := range raw[1 : len(raw)-1] {
		last := kept[len(kept)-1]
		if math.Abs(float64(kf.X-last.X)) > threshold {
			kept = append(kept, kf)
		}
	}
	return append(kept, raw[len(raw)-1])
}

// FaceTrack computes a true 9:16 crop centered on the mean face position,
// falling back to horizontal center when no faces were ever found.
func (p *Planner) FaceTrack(srcW, srcH int, faces []track.FacePosition) CropRect {
	cropW := p.portraitWidth(srcW, srcH)

	centerX := float64(srcW) / 2
	if len(faces) > 0 {
		xs := make([]float64, len(faces))
		for i, f := range faces {
			xs[i] = f.XCenter
		}
		centerX = stat.Mean(xs, nil) * float64(srcW)
	}

	x := clampX(int(math.Round(centerX-float64(cropW)/2)), cropW, srcW)
	return CropRect{X: x, Y: 0, W: cropW, H: srcH}
}

// Framed is the static screen crop used when cursor tracking is disabled or
// produced too little signal.
func (p *Planner) Framed(srcW, srcH int) CropRect {
	cropW := p.screenWidth(srcW)
	x := clampX(int(math.Round(float64(srcW)/2-float64(cropW)/2)), cropW, srcW)
	return CropRect{X: x, Y: 0, W: cropW, H: srcH}
}

// Center is the ultimate fallback when no positional signal is usable
func (p *Planner) Center(srcW, srcH int) CropRect {
	cropW := p.portraitWidth(srcW, srcH)
	return CropRect{X: (srcW - cropW) / 2, Y: 0, W: cropW, H: srcH}
}

// portraitWidth is the 9:16 crop width at full source height
func (p *Planner) portraitWidth(srcW, srcH int) int {
	w := int(math.Round(float64(srcH) * 9.0 / 16.0))
	return min(w, srcW)
}

// screenWidth is the zoom-fraction crop width for screen content
func (p *Planner) screenWidth(srcW int) int {
	w := int(math.Round(float64(srcW) * p.opts.Zoom))
	return min(w, srcW)
}

func clampX(x, cropW, srcW int) int {
	return max(0, min(x, srcW-cropW))
}
