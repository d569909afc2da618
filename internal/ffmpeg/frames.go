package ffmpeg

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"os"

	"github.com/clipcast/reframe/pkg/util"
)

// ExtractFrameImage decodes a single frame at the given timestamp. Extraction
// is best-effort: callers treat an error as an absent sample, not a failure
// of the whole clip.
func (e *Executor) ExtractFrameImage(ctx context.Context, input string, timestamp float64) (image.Image, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}

	tmp, err := util.TempFile(os.TempDir(), "frame_", ".jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp frame file: %w", err)
	}
	framePath := tmp.Name()
	tmp.Close()
	defer util.CleanupFiles(framePath)

	args := []string{
		"-ss", util.FormatSeconds(timestamp),
		"-i", input,
		"-vframes", "1",
		"-q:v", "2", // high quality JPEG
		framePath,
	}

	opts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("frame extraction")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return nil, fmt.Errorf("frame extraction at %.2fs failed: %w", timestamp, err)
	}

	file, err := os.Open(framePath)
	if err != nil {
		return nil, fmt.Errorf("frame at %.2fs was not produced: %w", timestamp, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	return img, nil
}
