// burnctl burns styled lyrics into a local video file without the HTTP
// service or the database: probe, build, encode, write.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/seanowww/LyricSync/internal/burn"
	"github.com/seanowww/LyricSync/internal/config"
	"github.com/seanowww/LyricSync/internal/fault"
	"github.com/seanowww/LyricSync/internal/logging"
	"github.com/seanowww/LyricSync/internal/probe"
	"github.com/seanowww/LyricSync/internal/segments"
	"github.com/seanowww/LyricSync/pkg/models"
)

// Exit codes follow the sysexits convention.
const (
	exitOK    = 0
	exitUsage = 64
	exitData  = 65
	exitIO    = 74
)

type burnOptions struct {
	input      string
	segments   string
	style      string
	out        string
	fontsDir   string
	encoderBin string
	probeBin   string
	timeoutS   int
}

func main() {
	// .env keeps local ENCODER_BIN/PROBE_BIN/FONTS_DIR overrides out of
	// the command line.
	_ = godotenv.Load()

	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts := burnOptions{
		encoderBin: envOr("ENCODER_BIN", "ffmpeg"),
		probeBin:   envOr("PROBE_BIN", "ffprobe"),
		fontsDir:   os.Getenv("FONTS_DIR"),
		timeoutS:   180,
	}

	exitCode := exitOK

	root := &cobra.Command{
		Use:           "burnctl",
		Short:         "Burn styled lyrics into a video",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	burnCmd := &cobra.Command{
		Use:   "burn",
		Short: "Render a segments file onto a video and write the MP4",
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = runBurn(cmd.Context(), opts)
			if exitCode != exitOK {
				return fmt.Errorf("burn failed")
			}
			return nil
		},
	}

	burnCmd.Flags().StringVar(&opts.input, "input", "", "source video file (required)")
	burnCmd.Flags().StringVar(&opts.segments, "segments", "", "segments JSON file (required)")
	burnCmd.Flags().StringVar(&opts.style, "style", "", "style JSON file")
	burnCmd.Flags().StringVar(&opts.out, "out", "out.mp4", "output MP4 path")
	burnCmd.Flags().StringVar(&opts.fontsDir, "fonts-dir", opts.fontsDir, "bundled fonts directory")
	burnCmd.Flags().StringVar(&opts.encoderBin, "encoder", opts.encoderBin, "encoder binary")
	burnCmd.Flags().StringVar(&opts.probeBin, "probe", opts.probeBin, "probe binary")
	burnCmd.Flags().IntVar(&opts.timeoutS, "timeout", opts.timeoutS, "encode timeout in seconds")
	burnCmd.MarkFlagRequired("input")
	burnCmd.MarkFlagRequired("segments")

	root.AddCommand(burnCmd)

	if err := root.Execute(); err != nil {
		if exitCode == exitOK {
			// cobra's own errors (unknown flags, missing required ones)
			fmt.Fprintln(os.Stderr, err)
			return exitUsage
		}
		return exitCode
	}
	return exitCode
}

func runBurn(ctx context.Context, opts burnOptions) int {
	log, err := logging.NewConsoleLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIO
	}

	if opts.fontsDir == "" {
		fmt.Fprintln(os.Stderr, "fonts directory required (--fonts-dir or FONTS_DIR)")
		return exitUsage
	}

	segs, err := loadSegments(opts.segments)
	if err != nil {
		fmt.Fprintf(os.Stderr, "segments: %v\n", err)
		return exitData
	}
	if err := segments.Validate(segs); err != nil {
		fmt.Fprintf(os.Stderr, "segments: %v\n", err)
		return exitData
	}

	style := models.DefaultStyle()
	if opts.style != "" {
		style, err = loadStyle(opts.style)
		if err != nil {
			fmt.Fprintf(os.Stderr, "style: %v\n", err)
			return exitData
		}
	}

	if _, err := os.Stat(opts.input); err != nil {
		fmt.Fprintf(os.Stderr, "input: %v\n", err)
		return exitIO
	}

	cfg := config.BurnConfig{
		EncoderBin:  opts.encoderBin,
		ProbeBin:    opts.probeBin,
		Concurrency: 1,
		TimeoutS:    opts.timeoutS,
	}
	prober := probe.New(opts.probeBin, log)
	burner := burn.New(cfg, opts.fontsDir, prober, log)

	data, err := burner.Burn(ctx, opts.input, segments.Sorted(segs), style)
	if err != nil {
		var re *fault.RenderError
		if errors.As(err, &re) {
			fmt.Fprintf(os.Stderr, "%v\n%s\n", re, re.StderrTail)
		} else {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		return exitIO
	}

	if err := os.WriteFile(opts.out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return exitIO
	}

	log.Infof("wrote %s (%d bytes)", opts.out, len(data))
	return exitOK
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadSegments(path string) ([]models.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var segs []models.Segment
	if err := json.Unmarshal(data, &segs); err != nil {
		return nil, err
	}
	return segs, nil
}

func loadStyle(path string) (models.Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Style{}, err
	}
	in, err := models.DecodeStyleInput(data)
	if err != nil {
		return models.Style{}, err
	}
	return models.ResolveStyle(in)
}
