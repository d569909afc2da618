package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"

	"github.com/clipcast/reframe/pkg/util"
)

// ProbeError reports unreadable clip metadata. It is fatal for the affected
// clip only; sibling clips keep processing.
type ProbeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ProbeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("probe %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("probe %s: %s", e.Path, e.Reason)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// ProbeVideo extracts metadata from a video file
func (e *Executor) ProbeVideo(ctx context.Context, filePath string) (*VideoInfo, error) {
	if filePath == "" {
		return nil, &ProbeError{Path: filePath, Reason: "file path is required"}
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-select_streams", "v:0",
		filePath,
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &ProbeError{Path: filePath, Reason: "ffprobe failed", Err: err}
	}

	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, &ProbeError{Path: filePath, Reason: "failed to parse ffprobe output", Err: err}
	}

	if len(probe.Streams) == 0 {
		return nil, &ProbeError{Path: filePath, Reason: "no video stream present"}
	}

	stream := probe.Streams[0]

	info := &VideoInfo{
		FilePath: filePath,
		Width:    stream.Width,
		Height:   stream.Height,
	}

	if stream.RFrameRate != "" {
		info.FPS = int(math.Round(util.ParseFrameRate(stream.RFrameRate)))
	}

	// Container duration is authoritative; fall back to the stream's own.
	durStr := probe.Format.Duration
	if durStr == "" {
		durStr = stream.Duration
	}
	dur, err := strconv.ParseFloat(durStr, 64)
	if err != nil || dur < 0 {
		return nil, &ProbeError{Path: filePath, Reason: "duration cannot be parsed", Err: err}
	}
	info.Duration = dur

	if info.Width <= 0 || info.Height <= 0 {
		return nil, &ProbeError{Path: filePath, Reason: "invalid video dimensions"}
	}

	e.logger.Debug().
		Str("file", filePath).
		Int("width", info.Width).
		Int("height", info.Height).
		Int("fps", info.FPS).
		Float64("duration", info.Duration).
		Msg("probed video")

	return info, nil
}
