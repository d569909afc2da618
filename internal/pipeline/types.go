package pipeline

import (
	"context"
	"errors"

	"github.com/clipcast/reframe/internal/ffmpeg"
	"github.com/clipcast/reframe/internal/reframe"
)

// Run-level validation errors; these abort before any clip is processed.
var (
	ErrClipsDirNotFound = errors.New("clips directory not found")
	ErrNoClips          = errors.New("no matching clips found")
	ErrBadContentType   = errors.New("unknown content type")
)

// Options configures a single reframing run
type Options struct {
	ClipsDir    string
	ContentType reframe.ContentType
	// Zoom overrides the configured zoom fraction when > 0
	Zoom float64
	// CursorTrack enables cursor tracking for screen content
	CursorTrack bool
	// Pattern overrides the configured clip glob when non-empty
	Pattern string
}

// MediaProber reads container-level clip metadata
type MediaProber interface {
	ProbeVideo(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
}
