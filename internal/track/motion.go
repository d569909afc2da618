package track

import (
	"image"

	"github.com/rs/zerolog"

	"github.com/clipcast/reframe/pkg/util"
)

// MotionOptions configures cursor candidate filtering
type MotionOptions struct {
	// DiffThreshold is the per-pixel intensity change (0-255) that marks a
	// pixel as changed between consecutive frames.
	DiffThreshold uint8
	// MinArea/MaxArea bound the changed-region pixel count. The window
	// targets cursor-sized elements and rejects large UI repaints.
	MinArea int
	MaxArea int
	// MinAspect/MaxAspect bound the region width/height ratio.
	MinAspect float64
	MaxAspect float64
}

func DefaultMotionOptions() MotionOptions {
	return MotionOptions{
		DiffThreshold: 25,
		MinArea:       50,
		MaxArea:       5000,
		MinAspect:     0.2,
		MaxAspect:     5.0,
	}
}

// MotionDetector finds cursor-position candidates by frame differencing.
// Detection has no special handling for full-frame scene cuts: a slide
// transition changes regions far larger than the area window, so those
// samples fall through to carry-forward.
type MotionDetector struct {
	logger zerolog.Logger
	opts   MotionOptions
}

// NewMotionDetector creates a detector with the given filter policy
func NewMotionDetector(logger zerolog.Logger, opts MotionOptions) *MotionDetector {
	return &MotionDetector{
		logger: logger.With().Str("component", "motion-detector").Logger(),
		opts:   opts,
	}
}

// InitialX is the normalized position assumed before the first observation.
const InitialX = 0.5

// Step consumes one consecutive frame pair and returns the position at t
// plus the updated last-known accumulator. An absent frame or an empty
// candidate set carries the last known value forward; missing signal means
// "no change", not an error.
func (d *MotionDetector) Step(prev, curr *Gray, t, lastX float64) (Position, float64) {
	if prev == nil || curr == nil || prev.W != curr.W || prev.H != curr.H {
		return Position{T: util.Round2(t), X: util.Round4(lastX)}, lastX
	}

	candidates := d.candidates(prev, curr)
	if len(candidates) == 0 {
		return Position{T: util.Round2(t), X: util.Round4(lastX)}, lastX
	}

	// Temporal coherence: prefer the candidate nearest the last known
	// position. Region order is row-major, so ties resolve the same way on
	// every run.
	best := candidates[0]
	bestDist := abs(best.cx - lastX)
	for _, c := range candidates[1:] {
		if dist := abs(c.cx - lastX); dist < bestDist {
			best = c
			bestDist = dist
		}
	}

	d.logger.Debug().
		Float64("t", t).
		Int("candidates", len(candidates)).
		Float64("x_norm", best.cx).
		Msg("cursor candidate selected")

	return Position{T: util.Round2(t), X: util.Round4(best.cx)}, best.cx
}

// candidate is a changed region that survived the cursor-size filter
type candidate struct {
	cx   float64
	cy   float64
	area int
}

// candidates diffs the pair, thresholds the change mask and extracts
// 4-connected regions whose size and shape look like a moving cursor.
func (d *MotionDetector) candidates(prev, curr *Gray) []candidate {
	w, h := curr.W, curr.H
	mask := make([]bool, w*h)
	for i := range curr.Pix {
		diff := int(curr.Pix[i]) - int(prev.Pix[i])
		if diff < 0 {
			diff = -diff
		}
		mask[i] = diff > int(d.opts.DiffThreshold)
	}

	var out []candidate
	visited := make([]bool, w*h)
	stack := make([]int, 0, 256)

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}

		minX, maxX := start%w, start%w
		minY, maxY := start/w, start/w
		area := 0

		stack = append(stack[:0], start)
		visited[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			area++

			x, y := idx%w, idx/w
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}

			for _, n := range [4]int{idx - 1, idx + 1, idx - w, idx + w} {
				if n < 0 || n >= w*h || visited[n] || !mask[n] {
					continue
				}
				// left/right neighbors must stay on the same row
				if (n == idx-1 || n == idx+1) && n/w != y {
					continue
				}
				visited[n] = true
				stack = append(stack, n)
			}
		}

		bw := maxX - minX + 1
		bh := maxY - minY + 1
		if bh < 1 {
			bh = 1
		}
		ratio := float64(bw) / float64(bh)

		if area > d.opts.MinArea && area < d.opts.MaxArea &&
			ratio > d.opts.MinAspect && ratio < d.opts.MaxAspect {
			out = append(out, candidate{
				cx:   (float64(minX) + float64(bw)/2) / float64(w),
				cy:   (float64(minY) + float64(bh)/2) / float64(h),
				area: area,
			})
		}
	}

	return out
}

// Gray is a decoded frame reduced to 8-bit luminance
type Gray struct {
	Pix []uint8
	W   int
	H   int
}

// ToGray converts a decoded image to luminance
func ToGray(img image.Image) *Gray {
	if img == nil {
		return nil
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pix := make([]uint8, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			pix[y*w+x] = uint8(lum)
		}
	}

	return &Gray{Pix: pix, W: w, H: h}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
