package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	Concurrency int     `yaml:"concurrency"`
	ClipTimeout float64 `yaml:"clip_timeout_sec"`
	ClipPattern string  `yaml:"clip_pattern"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Frame sampling settings
	Sampling SamplingConfig `yaml:"sampling"`

	// Cursor motion detection settings
	Motion MotionConfig `yaml:"motion"`

	// Face detection settings
	Face FaceConfig `yaml:"face"`

	// Crop planning settings
	Reframe ReframeConfig `yaml:"reframe"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	Threads    int    `yaml:"threads"`
}

// SamplingConfig controls how frames are pulled out of each clip.
type SamplingConfig struct {
	// FaceSamples is the number of evenly spaced frames inspected for faces.
	FaceSamples int `yaml:"face_samples"`
	// CursorInterval is the spacing in seconds between cursor-tracking samples.
	CursorInterval float64 `yaml:"cursor_interval_sec"`
}

// MotionConfig holds the cursor candidate filter policy. The area window
// targets cursor-sized moving elements; large UI repaints fall outside it.
type MotionConfig struct {
	DiffThreshold uint8   `yaml:"diff_threshold"`
	MinArea       int     `yaml:"min_area"`
	MaxArea       int     `yaml:"max_area"`
	MinAspect     float64 `yaml:"min_aspect"`
	MaxAspect     float64 `yaml:"max_aspect"`
	SmoothWindow  int     `yaml:"smooth_window"`
}

type FaceConfig struct {
	// CascadePath points at a pigo facefinder cascade. Defaults from the
	// REFRAME_CASCADE_PATH env var. Empty disables face detection and
	// face-driven clips fall back to a center crop.
	CascadePath   string  `yaml:"cascade_path"`
	MinConfidence float64 `yaml:"min_confidence"`
}

type ReframeConfig struct {
	// Zoom is the fraction of source width kept visible for screen content.
	Zoom float64 `yaml:"zoom"`
	// DedupFraction is the minimum keyframe travel, as a fraction of crop
	// width, required to keep an interior keyframe.
	DedupFraction float64 `yaml:"dedup_fraction"`
	CursorTrack   bool    `yaml:"cursor_track"`
	OutputWidth   int     `yaml:"output_width"`
	OutputHeight  int     `yaml:"output_height"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Verify(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Verify checks that configuration values are sensible.
func (c *Config) Verify() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("invalid configuration: concurrency must be >= 1")
	}
	if c.Reframe.Zoom <= 0 || c.Reframe.Zoom > 1 {
		return fmt.Errorf("invalid configuration: zoom must be in (0,1]")
	}
	if c.Reframe.DedupFraction < 0 {
		return fmt.Errorf("invalid configuration: dedup_fraction must be >= 0")
	}
	if c.Sampling.FaceSamples < 1 {
		return fmt.Errorf("invalid configuration: face_samples must be >= 1")
	}
	if c.Sampling.CursorInterval <= 0 {
		return fmt.Errorf("invalid configuration: cursor_interval_sec must be > 0")
	}
	if c.Motion.MinArea >= c.Motion.MaxArea {
		return fmt.Errorf("invalid configuration: min_area must be below max_area")
	}
	if c.Motion.SmoothWindow < 1 {
		return fmt.Errorf("invalid configuration: smooth_window must be >= 1")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Concurrency: runtime.NumCPU(),
		ClipTimeout: 0,
		ClipPattern: "clip_*.mp4",
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			Threads:    0,
		},
		Sampling: SamplingConfig{
			FaceSamples:    5,
			CursorInterval: 0.5,
		},
		Motion: MotionConfig{
			DiffThreshold: 25,
			MinArea:       50,
			MaxArea:       5000,
			MinAspect:     0.2,
			MaxAspect:     5.0,
			SmoothWindow:  5,
		},
		Face: FaceConfig{
			CascadePath:   os.Getenv("REFRAME_CASCADE_PATH"),
			MinConfidence: 0.5,
		},
		Reframe: ReframeConfig{
			Zoom:          0.55,
			DedupFraction: 0.02,
			CursorTrack:   true,
			OutputWidth:   1080,
			OutputHeight:  1920,
		},
	}
}

// Default returns the default configuration.
func Default() *Config {
	return defaultConfig()
}

func findConfigFile() string {
	candidates := []string{
		"./reframe.yaml",
		"./reframe.yml",
		filepath.Join(os.Getenv("HOME"), ".reframe", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
