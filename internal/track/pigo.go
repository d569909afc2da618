package track

import (
	"context"
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// Pigo quality scores are not probabilities; detections below this are the
// classifier's own noise floor.
const pigoMinQuality = 5.0

// PigoProvider is the default face detection backend, built on the pure-Go
// pigo cascade classifier.
type PigoProvider struct {
	classifier *pigo.Pigo
}

// NewPigoProvider loads a facefinder cascade from disk
func NewPigoProvider(cascadePath string) (*PigoProvider, error) {
	if cascadePath == "" {
		return nil, fmt.Errorf("cascade path is required")
	}

	cascade, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade: %w", err)
	}

	return &PigoProvider{classifier: classifier}, nil
}

// Detect runs the cascade over the frame and returns clustered detections as
// normalized boxes.
func (p *PigoProvider) Detect(ctx context.Context, img image.Image) ([]Box, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := pigo.ImgToNRGBA(img)
	pixels := pigo.RgbToGrayscale(src)
	cols := src.Bounds().Dx()
	rows := src.Bounds().Dy()

	params := pigo.CascadeParams{
		MinSize:     20,
		MaxSize:     rows,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := p.classifier.RunCascade(params, 0.0)
	dets = p.classifier.ClusterDetections(dets, 0.2)

	boxes := make([]Box, 0, len(dets))
	for _, d := range dets {
		if d.Q < pigoMinQuality {
			continue
		}
		size := float64(d.Scale)
		boxes = append(boxes, Box{
			XMin:       (float64(d.Col) - size/2) / float64(cols),
			YMin:       (float64(d.Row) - size/2) / float64(rows),
			Width:      size / float64(cols),
			Height:     size / float64(rows),
			Confidence: float64(d.Q),
		})
	}

	return boxes, nil
}

// Close is a no-op for the pigo provider
func (p *PigoProvider) Close() error {
	return nil
}
