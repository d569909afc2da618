package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clipcast/reframe/internal/config"
	"github.com/clipcast/reframe/internal/ffmpeg"
	"github.com/clipcast/reframe/internal/reframe"
	"github.com/clipcast/reframe/internal/sampler"
	"github.com/clipcast/reframe/internal/track"
	"github.com/clipcast/reframe/pkg/util"
)

// Pipeline runs one reframing computation per clip on a bounded worker pool.
// Clips share no mutable state, so workers need no coordination beyond the
// report.
type Pipeline struct {
	logger   zerolog.Logger
	cfg      *config.Config
	prober   MediaProber
	source   sampler.FrameSource
	detector *track.MotionDetector
	locator  *track.FaceLocator // nil when no face provider is configured
}

// New creates a pipeline backed by the ffmpeg executor and, when a cascade
// is configured, the pigo face provider.
func New(logger zerolog.Logger, cfg *config.Config) (*Pipeline, error) {
	exec, err := ffmpeg.New(logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	var provider track.FaceDetectionProvider
	if cfg.Face.CascadePath != "" {
		provider, err = track.NewPigoProvider(cfg.Face.CascadePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize face detection: %w", err)
		}
	}

	return NewWithProviders(logger, cfg, exec, exec, provider), nil
}

// NewWithProviders creates a pipeline over explicit capability providers.
// provider may be nil, in which case face-driven clips get a center crop.
func NewWithProviders(logger zerolog.Logger, cfg *config.Config, prober MediaProber, source sampler.FrameSource, provider track.FaceDetectionProvider) *Pipeline {
	p := &Pipeline{
		logger: logger.With().Str("component", "pipeline").Logger(),
		cfg:    cfg,
		prober: prober,
		source: source,
		detector: track.NewMotionDetector(logger, track.MotionOptions{
			DiffThreshold: cfg.Motion.DiffThreshold,
			MinArea:       cfg.Motion.MinArea,
			MaxArea:       cfg.Motion.MaxArea,
			MinAspect:     cfg.Motion.MinAspect,
			MaxAspect:     cfg.Motion.MaxAspect,
		}),
	}

	if provider != nil {
		p.locator = track.NewFaceLocator(logger, provider, cfg.Face.MinConfidence)
	}

	return p
}

// Close releases face provider resources
func (p *Pipeline) Close() error {
	if p.locator != nil {
		return p.locator.Close()
	}
	return nil
}

// Process validates the run, plans every discovered clip and assembles the
// output report. Per-clip failures are recorded in the report; only run-level
// validation returns an error.
func (p *Pipeline) Process(ctx context.Context, opts Options) (*reframe.Report, error) {
	if !opts.ContentType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrBadContentType, opts.ContentType)
	}

	clips, err := p.discoverClips(opts)
	if err != nil {
		return nil, err
	}

	planner := reframe.NewPlanner(p.logger, reframe.PlanOptions{
		Zoom:          p.effectiveZoom(opts),
		DedupFraction: p.cfg.Reframe.DedupFraction,
	})

	p.logger.Info().
		Str("content_type", string(opts.ContentType)).
		Int("clips", len(clips)).
		Int("workers", p.cfg.Concurrency).
		Msg("starting reframe computation")

	start := time.Now()
	report := reframe.NewReport(string(opts.ContentType))

	sem := make(chan struct{}, max(1, p.cfg.Concurrency))
	var wg sync.WaitGroup

	for _, clipPath := range clips {
		wg.Add(1)
		go func(clipPath string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			name := filepath.Base(clipPath)
			plan, err := p.processClip(ctx, clipPath, opts, planner)
			if err != nil {
				p.logger.Warn().Err(err).Str("clip", name).Msg("clip skipped")
				report.AddFailure(name, err)
				return
			}

			p.logger.Info().
				Str("clip", name).
				Str("strategy", string(plan.Strategy)).
				Int("crop_x", plan.Crop.X).
				Int("crop_w", plan.Crop.W).
				Int("keyframes", len(plan.CropKeyframes)).
				Int("faces", len(plan.FacePositions)).
				Msg("clip planned")
			report.AddClip(name, plan)
		}(clipPath)
	}

	wg.Wait()

	report.ComputationTimeSec = util.Round2(time.Since(start).Seconds())

	p.logger.Info().
		Int("planned", report.ClipCount).
		Int("failed", len(report.Failures)).
		Float64("elapsed_sec", report.ComputationTimeSec).
		Msg("reframe computation complete")

	return report, nil
}

// discoverClips lists matching clips in discovery (sorted) order
func (p *Pipeline) discoverClips(opts Options) ([]string, error) {
	if info, err := os.Stat(opts.ClipsDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrClipsDirNotFound, opts.ClipsDir)
	}

	pattern := opts.Pattern
	if pattern == "" {
		pattern = p.cfg.ClipPattern
	}

	clips, err := filepath.Glob(filepath.Join(opts.ClipsDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid clip pattern %q: %w", pattern, err)
	}
	if len(clips) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s", ErrNoClips, pattern, opts.ClipsDir)
	}

	sort.Strings(clips)
	return clips, nil
}

func (p *Pipeline) effectiveZoom(opts Options) float64 {
	if opts.Zoom > 0 {
		return opts.Zoom
	}
	return p.cfg.Reframe.Zoom
}

// processClip runs the per-clip pipeline: probe, sample, track, plan
func (p *Pipeline) processClip(ctx context.Context, clipPath string, opts Options, planner *reframe.Planner) (*reframe.ClipPlan, error) {
	if p.cfg.ClipTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.ClipTimeout*float64(time.Second)))
		defer cancel()
	}

	info, err := p.prober.ProbeVideo(ctx, clipPath)
	if err != nil {
		return nil, err
	}

	plan := &reframe.ClipPlan{
		SourceResolution: reframe.Resolution(info.Width, info.Height),
		OutputResolution: reframe.Resolution(p.cfg.Reframe.OutputWidth, p.cfg.Reframe.OutputHeight),
		Duration:         util.Round2(info.Duration),
	}

	if opts.ContentType.FaceDriven() {
		p.planFace(ctx, info, plan, planner)
	} else {
		p.planScreen(ctx, info, opts, plan, planner)
	}

	return plan, nil
}

// planFace fills in the face-track strategy, or the center fallback when no
// face provider is available.
func (p *Pipeline) planFace(ctx context.Context, info *ffmpeg.VideoInfo, plan *reframe.ClipPlan, planner *reframe.Planner) {
	if p.locator == nil {
		p.logger.Debug().Str("clip", info.FilePath).Msg("no face provider, using center crop")
		plan.Strategy = reframe.StrategyCenter
		plan.Crop = planner.Center(info.Width, info.Height)
		return
	}

	var faces []track.FacePosition
	policy := sampler.FixedCount{N: p.cfg.Sampling.FaceSamples}
	for ts := range policy.Timestamps(info.Duration) {
		img, err := p.source.ExtractFrameImage(ctx, info.FilePath, ts)
		if err != nil {
			p.logger.Debug().Err(err).Float64("t", ts).Msg("sample absent")
			continue
		}
		if face, ok := p.locator.Locate(ctx, img, ts); ok {
			faces = append(faces, face)
		}
	}

	plan.Strategy = reframe.StrategyFaceTrack
	plan.Crop = planner.FaceTrack(info.Width, info.Height, faces)
	plan.FacePositions = toFacePoints(faces)
}

// planScreen fills in cursor-track when enough cursor signal exists,
// otherwise the static framed crop.
func (p *Pipeline) planScreen(ctx context.Context, info *ffmpeg.VideoInfo, opts Options, plan *reframe.ClipPlan, planner *reframe.Planner) {
	if opts.CursorTrack {
		positions := p.trackCursor(ctx, info)
		positions = track.Smooth(positions, p.cfg.Motion.SmoothWindow)

		if len(positions) >= 2 {
			plan.Strategy = reframe.StrategyCursorTrack
			plan.Crop, plan.CropKeyframes = planner.CursorTrack(info.Width, info.Height, positions)
			return
		}
	}

	plan.Strategy = reframe.StrategyFramed
	plan.Crop = planner.Framed(info.Width, info.Height)
}

// trackCursor streams sampled frames through the motion detector, holding at
// most two decoded frames at a time. The last-known position is threaded as
// an explicit accumulator through the fold.
func (p *Pipeline) trackCursor(ctx context.Context, info *ffmpeg.VideoInfo) []track.Position {
	policy := sampler.FixedInterval{Interval: p.cfg.Sampling.CursorInterval}

	var positions []track.Position
	var prev *track.Gray
	var firstT float64
	lastX := track.InitialX
	first := true

	for ts := range policy.Timestamps(info.Duration) {
		var curr *track.Gray
		img, err := p.source.ExtractFrameImage(ctx, info.FilePath, ts)
		if err != nil {
			p.logger.Debug().Err(err).Float64("t", ts).Msg("sample absent")
		} else {
			curr = track.ToGray(img)
		}

		if first {
			prev, firstT, first = curr, ts, false
			continue
		}

		var pos track.Position
		pos, lastX = p.detector.Step(prev, curr, ts, lastX)
		positions = append(positions, pos)
		prev = curr
	}

	// No differencing is possible at the first sample; it takes the value
	// of the second.
	if len(positions) > 0 {
		positions = append([]track.Position{{T: util.Round2(firstT), X: positions[0].X}}, positions...)
	}

	return positions
}

func toFacePoints(faces []track.FacePosition) []reframe.FacePoint {
	points := make([]reframe.FacePoint, len(faces))
	for i, f := range faces {
		points[i] = reframe.FacePoint{T: f.T, XCenter: f.XCenter, YCenter: f.YCenter}
	}
	return points
}
