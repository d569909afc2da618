package reframe

import "fmt"

// Strategy is the algorithm used to compute a clip's crop
type Strategy string

const (
	// StrategyCursorTrack pans the crop window along detected cursor motion
	StrategyCursorTrack Strategy = "cursor-track"
	// StrategyFaceTrack centers the crop on the dominant face
	StrategyFaceTrack Strategy = "face-track"
	// StrategyFramed is a static screen crop at horizontal center
	StrategyFramed Strategy = "framed"
	// StrategyCenter is the ultimate fallback: static 9:16 center crop
	StrategyCenter Strategy = "center"
)

// ContentType classifies the source material; produced upstream
type ContentType string

const (
	ContentTalkingHead ContentType = "talking-head"
	ContentScreen      ContentType = "screen"
	ContentPodcast     ContentType = "podcast"
)

// Valid reports whether the content type is one the planner understands
func (c ContentType) Valid() bool {
	switch c {
	case ContentTalkingHead, ContentScreen, ContentPodcast:
		return true
	}
	return false
}

// FaceDriven reports whether the content type routes through face tracking.
// "podcast" uses the same dominant-face logic as "talking-head"; there is no
// multi-speaker behavior.
func (c ContentType) FaceDriven() bool {
	return c == ContentTalkingHead || c == ContentPodcast
}

// CropRect is a crop window in source pixel coordinates. Cropping is purely
// horizontal: y is always 0 and h the full source height.
type CropRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// CropKeyframe positions the crop window's left edge at a point in time.
// Renderers interpolate between keyframes.
type CropKeyframe struct {
	T float64 `json:"t"`
	X int     `json:"x"`
}

// FacePoint is a raw face observation kept for diagnostics
type FacePoint struct {
	T       float64 `json:"t"`
	XCenter float64 `json:"x_center"`
	YCenter float64 `json:"y_center"`
}

// ClipPlan is the per-clip reframing result consumed by the renderer
type ClipPlan struct {
	Strategy         Strategy       `json:"strategy"`
	SourceResolution string         `json:"source_resolution"`
	Crop             CropRect       `json:"crop"`
	CropKeyframes    []CropKeyframe `json:"crop_keyframes,omitempty"`
	OutputResolution string         `json:"output_resolution"`
	FacePositions    []FacePoint    `json:"face_positions,omitempty"`
	Duration         float64        `json:"duration"`
}

// Resolution formats a WxH pair the way the output document expects
func Resolution(w, h int) string {
	return fmt.Sprintf("%dx%d", w, h)
}
