package track

import (
	"gonum.org/v1/gonum/floats"

	"github.com/clipcast/reframe/pkg/util"
)

// Smooth applies a symmetric moving average of the given window to the x
// values of a position sequence. The first and last floor(window/2) samples
// are copied verbatim: a centered average is undefined without a full window
// there, and decaying partial averages drag the trajectory toward the edges.
// Sequences shorter than the window are returned unchanged.
func Smooth(positions []Position, window int) []Position {
	if window < 2 || len(positions) < window {
		return positions
	}

	xs := make([]float64, len(positions))
	for i, p := range positions {
		xs[i] = p.X
	}

	half := window / 2
	out := make([]Position, len(positions))
	copy(out, positions)

	for i := half; i+window-half <= len(xs); i++ {
		avg := floats.Sum(xs[i-half:i-half+window]) / float64(window)
		out[i] = Position{T: positions[i].T, X: util.Round4(avg)}
	}

	return out
}
