package track

import (
	"context"
	"image"
)

// Position is a normalized horizontal position observed at a timestamp.
type Position struct {
	T float64
	X float64
}

// FacePosition is the normalized center of a detected face at a timestamp.
type FacePosition struct {
	T       float64
	XCenter float64
	YCenter float64
}

// Box is a face bounding box in normalized image coordinates.
type Box struct {
	XMin       float64
	YMin       float64
	Width      float64
	Height     float64
	Confidence float64
}

// Area returns the normalized box area, used to pick the dominant face.
func (b Box) Area() float64 {
	return b.Width * b.Height
}

// FaceDetectionProvider finds faces in a decoded frame
type FaceDetectionProvider interface {
	Detect(ctx context.Context, img image.Image) ([]Box, error)
	Close() error
}
