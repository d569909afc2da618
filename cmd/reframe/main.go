package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/clipcast/reframe/internal/config"
	"github.com/clipcast/reframe/internal/ffmpeg"
	"github.com/clipcast/reframe/internal/logging"
	"github.com/clipcast/reframe/internal/pipeline"
	"github.com/clipcast/reframe/internal/reframe"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "reframe",
	Short:         "reframe - vertical crop planning for landscape clips",
	Long:          "Computes stable, bounds-safe 9:16 crop plans from face or cursor signals for downstream rendering.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./reframe.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(configCmd)
}

var (
	clipsDir      string
	contentType   string
	outputPath    string
	zoom          float64
	noCursorTrack bool
	clipPattern   string
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute crop plans for all clips in a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, err := pipeline.New(log.Logger, cfg)
		if err != nil {
			reframe.WriteRunError(os.Stdout, err)
			return err
		}
		defer pipe.Close()

		opts := pipeline.Options{
			ClipsDir:    clipsDir,
			ContentType: reframe.ContentType(contentType),
			Zoom:        zoom,
			CursorTrack: cfg.Reframe.CursorTrack && !noCursorTrack,
			Pattern:     clipPattern,
		}

		report, err := pipe.Process(cmd.Context(), opts)
		if err != nil {
			reframe.WriteRunError(os.Stdout, err)
			return err
		}

		if err := report.Write(outputPath); err != nil {
			reframe.WriteRunError(os.Stdout, err)
			return err
		}

		log.Info().
			Str("output", outputPath).
			Int("clips", report.ClipCount).
			Int("failures", len(report.Failures)).
			Msg("reframe plan written")

		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [video file]",
	Short: "Print video metadata as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.Threads)
		if err != nil {
			return err
		}

		info, err := exec.ProbeVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return printJSON(map[string]any{
			"width":    info.Width,
			"height":   info.Height,
			"fps":      info.FPS,
			"duration": info.Duration,
		})
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(config.FromContext(cmd.Context()))
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	computeCmd.Flags().StringVar(&clipsDir, "clips-dir", "", "directory with clip files")
	computeCmd.Flags().StringVar(&contentType, "content-type", "", "content type: talking-head, screen or podcast")
	computeCmd.Flags().StringVar(&outputPath, "output", "reframe.json", "output JSON file")
	computeCmd.Flags().Float64Var(&zoom, "zoom", 0, "screen zoom: fraction of source width to show (default from config)")
	computeCmd.Flags().BoolVar(&noCursorTrack, "no-cursor-track", false, "disable cursor tracking for screen content")
	computeCmd.Flags().StringVar(&clipPattern, "pattern", "", "clip glob pattern (default from config)")
	computeCmd.MarkFlagRequired("clips-dir")
	computeCmd.MarkFlagRequired("content-type")

	configCmd.AddCommand(configShowCmd)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
