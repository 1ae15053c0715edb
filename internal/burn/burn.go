// Package burn drives the external encoder: it writes the subtitle
// document into a scoped working directory, burns it into the source
// video with fonts resolved from the bundled directory only, and
// guarantees the directory is removed on every exit path.
package burn

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/seanowww/LyricSync/internal/config"
	"github.com/seanowww/LyricSync/internal/fault"
	"github.com/seanowww/LyricSync/internal/logging"
	"github.com/seanowww/LyricSync/internal/metrics"
	"github.com/seanowww/LyricSync/internal/probe"
	"github.com/seanowww/LyricSync/internal/subtitle"
	"github.com/seanowww/LyricSync/internal/tracing"
	"github.com/seanowww/LyricSync/pkg/models"
)

// termGrace is how long the encoder gets between SIGTERM and SIGKILL.
const termGrace = 5 * time.Second

// Burner orchestrates subtitle burns. Invocations are independent and
// run in parallel up to the configured cap; callers above the cap wait
// in FIFO order for an admission slot.
type Burner struct {
	cfg    config.BurnConfig
	fonts  string
	prober *probe.Prober
	log    *logging.Logger
	sem    chan struct{}
}

// New creates a Burner.
func New(cfg config.BurnConfig, fontsDir string, prober *probe.Prober, log *logging.Logger) *Burner {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Burner{
		cfg:    cfg,
		fonts:  fontsDir,
		prober: prober,
		log:    log,
		sem:    make(chan struct{}, concurrency),
	}
}

// Burn renders the segments over the source video and returns the MP4
// bytes. The style must already be resolved and validated.
func (b *Burner) Burn(ctx context.Context, sourcePath string, segs []models.Segment, st models.Style) ([]byte, error) {
	metrics.BurnsWaiting.Inc()
	select {
	case b.sem <- struct{}{}:
		metrics.BurnsWaiting.Dec()
	case <-ctx.Done():
		metrics.BurnsWaiting.Dec()
		return nil, fmt.Errorf("waiting for burn slot: %w", fault.ErrCancelled)
	}
	defer func() { <-b.sem }()

	metrics.BurnsInProgress.Inc()
	defer metrics.BurnsInProgress.Dec()

	started := time.Now()
	out, err := b.run(ctx, sourcePath, segs, st)
	metrics.RecordBurn(burnStatus(err), time.Since(started).Seconds())
	return out, err
}

func (b *Burner) run(ctx context.Context, sourcePath string, segs []models.Segment, st models.Style) ([]byte, error) {
	span, ctx := tracing.StartSpan(ctx, "burn")
	defer tracing.FinishSpan(span)

	workdir, err := os.MkdirTemp("", "lyricburn-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}
	// Unconditional: the artifact is handed back as bytes, nothing in
	// the working directory survives the call.
	defer os.RemoveAll(workdir)

	width, height := b.prober.Dimensions(ctx, sourcePath)
	tracing.SetTag(span, "play_res", fmt.Sprintf("%dx%d", width, height))

	doc, err := subtitle.BuildDocument(segs, st, width, height)
	if err != nil {
		return nil, err
	}

	assPath := filepath.Join(workdir, "subs.ass")
	if err := os.WriteFile(assPath, []byte(doc), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write subtitle file: %w", err)
	}

	outPath := filepath.Join(workdir, "out.mp4")
	args := encoderArgs(sourcePath, assPath, b.fonts, outPath)

	b.log.WithField("source", sourcePath).
		WithField("play_res", fmt.Sprintf("%dx%d", width, height)).
		WithField("events", len(segs)).
		Info("encode start")

	encodeCtx, cancel := context.WithTimeout(ctx, b.cfg.Timeout())
	defer cancel()

	cmd := exec.CommandContext(encodeCtx, b.cfg.EncoderBin, args...)
	tail := newTailWriter(stderrTailCap)
	cmd.Stderr = tail
	// Graceful first: the encoder finalizes its output on SIGTERM; the
	// hard kill lands after the grace window.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = termGrace

	runErr := cmd.Run()
	if runErr != nil {
		tracing.LogError(span, runErr)
		switch {
		case errors.Is(encodeCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
			return nil, fmt.Errorf("encoder exceeded %v: %w", b.cfg.Timeout(), fault.ErrTimeout)
		case ctx.Err() != nil:
			return nil, fmt.Errorf("burn: %w", fault.ErrCancelled)
		default:
			return nil, &fault.RenderError{
				Msg:        fmt.Sprintf("encoder exited: %v", runErr),
				StderrTail: append([]byte(nil), tail.Bytes()...),
			}
		}
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, &fault.RenderError{
			Msg:        "encoder succeeded but produced no output",
			StderrTail: append([]byte(nil), tail.Bytes()...),
		}
	}
	return data, nil
}

// encoderArgs builds the effective encoder command line: burn the ASS
// file with fonts resolved from fontsDir only, H.264 CRF 18 preset
// medium, audio passthrough, MP4 container.
func encoderArgs(sourcePath, assPath, fontsDir, outPath string) []string {
	vf := fmt.Sprintf("subtitles=%s:fontsdir=%s", escapeFilterPath(assPath), escapeFilterPath(fontsDir))
	return []string{
		"-y",
		"-nostdin",
		"-i", sourcePath,
		"-vf", vf,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "18",
		"-c:a", "copy",
		"-movflags", "+faststart",
		"-f", "mp4",
		outPath,
	}
}

// escapeFilterPath escapes a path for use inside a filter graph
// description.
func escapeFilterPath(path string) string {
	escaped := strings.ReplaceAll(path, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, ":", "\\:")
	return escaped
}

func burnStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, fault.ErrTimeout):
		return "timeout"
	case errors.Is(err, fault.ErrCancelled):
		return "cancelled"
	default:
		return "failed"
	}
}
