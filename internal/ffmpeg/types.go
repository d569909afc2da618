package ffmpeg

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath string
	Duration float64 // seconds
	Width    int
	Height   int
	FPS      int
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		Duration   string `json:"duration"`
	} `json:"streams"`
}
