package track

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func blankGray(w, h int) *Gray {
	return &Gray{Pix: make([]uint8, w*h), W: w, H: h}
}

func drawBlock(g *Gray, x, y, w, h int, val uint8) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			g.Pix[yy*g.W+xx] = val
		}
	}
}

func newTestDetector() *MotionDetector {
	return NewMotionDetector(zerolog.Nop(), DefaultMotionOptions())
}

func TestStepDetectsMovingBlock(t *testing.T) {
	d := newTestDetector()

	// a cursor-sized block moves from x=10 to x=30
	prev := blankGray(100, 100)
	drawBlock(prev, 10, 10, 10, 10, 200)
	curr := blankGray(100, 100)
	drawBlock(curr, 30, 10, 10, 10, 200)

	pos, lastX := d.Step(prev, curr, 1.0, InitialX)

	// both vacated and occupied regions are candidates; the new position
	// (cx 0.35) is closer to the 0.5 prior than the old one (cx 0.15)
	assert.InDelta(t, 0.35, pos.X, 1e-9)
	assert.InDelta(t, 0.35, lastX, 1e-9)
	assert.InDelta(t, 1.0, pos.T, 1e-9)
}

func TestStepCarriesForwardWithoutMotion(t *testing.T) {
	d := newTestDetector()

	prev := blankGray(100, 100)
	curr := blankGray(100, 100)

	pos, lastX := d.Step(prev, curr, 2.5, 0.42)

	assert.InDelta(t, 0.42, pos.X, 1e-9)
	assert.InDelta(t, 0.42, lastX, 1e-9)
}

func TestStepCarriesForwardOnAbsentFrame(t *testing.T) {
	d := newTestDetector()

	pos, lastX := d.Step(blankGray(100, 100), nil, 3.0, 0.7)

	assert.InDelta(t, 0.7, pos.X, 1e-9)
	assert.InDelta(t, 0.7, lastX, 1e-9)
}

func TestStepRejectsFullFrameRepaint(t *testing.T) {
	d := newTestDetector()

	// a slide transition changes every pixel; the single huge region falls
	// outside the area window and the position holds
	prev := blankGray(100, 100)
	curr := blankGray(100, 100)
	drawBlock(curr, 0, 0, 100, 100, 200)

	pos, _ := d.Step(prev, curr, 1.5, 0.33)

	assert.InDelta(t, 0.33, pos.X, 1e-9)
}

func TestStepRejectsExtremeAspect(t *testing.T) {
	d := newTestDetector()

	// a thin horizontal strip (scrollbar style) has area in range but a
	// width/height ratio far above the window
	prev := blankGray(200, 100)
	curr := blankGray(200, 100)
	drawBlock(curr, 20, 50, 150, 2, 200)

	pos, _ := d.Step(prev, curr, 1.0, 0.5)

	assert.InDelta(t, 0.5, pos.X, 1e-9)
}

func TestStepIgnoresSubThresholdChange(t *testing.T) {
	d := newTestDetector()

	prev := blankGray(100, 100)
	drawBlock(prev, 40, 40, 10, 10, 100)
	curr := blankGray(100, 100)
	drawBlock(curr, 40, 40, 10, 10, 120) // delta 20 < threshold 25

	pos, _ := d.Step(prev, curr, 1.0, 0.5)

	assert.InDelta(t, 0.5, pos.X, 1e-9)
}

func TestStepPrefersCandidateNearLastPosition(t *testing.T) {
	d := newTestDetector()

	prev := blankGray(100, 100)
	curr := blankGray(100, 100)
	drawBlock(curr, 5, 10, 10, 10, 200)  // cx 0.10
	drawBlock(curr, 75, 10, 10, 10, 200) // cx 0.80

	pos, _ := d.Step(prev, curr, 1.0, 0.9)

	assert.InDelta(t, 0.8, pos.X, 1e-9, "temporal coherence should pick the nearer candidate")
}

func TestStepTieBreakIsDeterministic(t *testing.T) {
	d := newTestDetector()

	prev := blankGray(100, 100)
	curr := blankGray(100, 100)
	drawBlock(curr, 35, 10, 10, 10, 200) // cx 0.40, distance 0.10
	drawBlock(curr, 55, 10, 10, 10, 200) // cx 0.60, distance 0.10

	for i := 0; i < 5; i++ {
		pos, _ := d.Step(prev, curr, 1.0, 0.5)
		assert.InDelta(t, 0.4, pos.X, 1e-9, "equal distances resolve to the first region in row-major order")
	}
}

func TestToGrayLuminance(t *testing.T) {
	g := ToGray(nil)
	assert.Nil(t, g)
}
