package track

import (
	"context"
	"image"

	"github.com/rs/zerolog"

	"github.com/clipcast/reframe/pkg/util"
)

// FaceLocator adapts a FaceDetectionProvider to the position pipeline: it
// reduces a frame's detections to the single dominant face center.
type FaceLocator struct {
	logger        zerolog.Logger
	provider      FaceDetectionProvider
	minConfidence float64
}

// NewFaceLocator creates a locator over the given provider
func NewFaceLocator(logger zerolog.Logger, provider FaceDetectionProvider, minConfidence float64) *FaceLocator {
	return &FaceLocator{
		logger:        logger.With().Str("component", "face-locator").Logger(),
		provider:      provider,
		minConfidence: minConfidence,
	}
}

// Locate returns the dominant face center for a frame, or false when the
// frame is absent or contains no usable face. Unlike cursor tracking there
// is no carry-forward: frames without faces contribute nothing.
func (l *FaceLocator) Locate(ctx context.Context, img image.Image, t float64) (FacePosition, bool) {
	if img == nil {
		return FacePosition{}, false
	}

	boxes, err := l.provider.Detect(ctx, img)
	if err != nil {
		l.logger.Warn().Err(err).Float64("t", t).Msg("face detection failed")
		return FacePosition{}, false
	}

	var best Box
	found := false
	for _, b := range boxes {
		if b.Confidence < l.minConfidence {
			continue
		}
		if !found || b.Area() > best.Area() {
			best = b
			found = true
		}
	}

	if !found {
		return FacePosition{}, false
	}

	return FacePosition{
		T:       util.Round2(t),
		XCenter: util.Round4(best.XMin + best.Width/2),
		YCenter: util.Round4(best.YMin + best.Height/2),
	}, true
}

// Close releases provider resources
func (l *FaceLocator) Close() error {
	return l.provider.Close()
}
