// Package transcribe adapts the external speech-to-text binary
// (whisper.cpp CLI or compatible). It shells out, reads the JSON the
// tool writes next to its output prefix, and hands back raw segments
// for normalization.
package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/seanowww/LyricSync/internal/config"
	"github.com/seanowww/LyricSync/internal/logging"
	"github.com/seanowww/LyricSync/internal/metrics"
	"github.com/seanowww/LyricSync/pkg/models"
)

// Transcriber runs the external STT binary.
type Transcriber struct {
	bin   string
	model string
	log   *logging.Logger
}

// New creates a Transcriber from configuration.
func New(cfg config.TranscribeConfig, log *logging.Logger) *Transcriber {
	return &Transcriber{bin: cfg.Bin, model: cfg.Model, log: log}
}

// Transcribe runs speech-to-text over the media file and returns the
// raw timed segments. workDir scopes the tool's JSON output; the caller
// owns its lifetime.
func (t *Transcriber) Transcribe(ctx context.Context, mediaPath, workDir string) ([]models.Segment, error) {
	outPrefix := filepath.Join(workDir, "transcript")
	args := []string{
		"-f", mediaPath,
		"-oj",
		"-of", outPrefix,
	}
	if t.model != "" {
		args = append([]string{"-m", t.model}, args...)
	}

	started := time.Now()
	cmd := exec.CommandContext(ctx, t.bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		metrics.RecordTranscription("failed", time.Since(started).Seconds())
		return nil, fmt.Errorf("speech-to-text failed: %w\n%s", err, tail(out))
	}

	data, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		metrics.RecordTranscription("failed", time.Since(started).Seconds())
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	segs, err := ParseTranscript(data)
	if err != nil {
		metrics.RecordTranscription("failed", time.Since(started).Seconds())
		return nil, err
	}

	metrics.RecordTranscription("ok", time.Since(started).Seconds())
	t.log.WithField("media", mediaPath).WithField("segments", len(segs)).Info("transcription complete")
	return segs, nil
}

// ParseTranscript decodes the tool's JSON output. Two shapes are in the
// wild: a "segments" list with float seconds, and whisper.cpp's
// "transcription" list with millisecond offsets.
func ParseTranscript(data []byte) ([]models.Segment, error) {
	var doc struct {
		Segments []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
		} `json:"segments"`
		Transcription []struct {
			Offsets struct {
				From int64 `json:"from"`
				To   int64 `json:"to"`
			} `json:"offsets"`
			Text string `json:"text"`
		} `json:"transcription"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}

	var segs []models.Segment
	switch {
	case len(doc.Segments) > 0:
		for i, s := range doc.Segments {
			segs = append(segs, models.Segment{
				ID:    i,
				Start: s.Start,
				End:   s.End,
				Text:  strings.TrimSpace(s.Text),
			})
		}
	case len(doc.Transcription) > 0:
		for i, s := range doc.Transcription {
			segs = append(segs, models.Segment{
				ID:    i,
				Start: float64(s.Offsets.From) / 1000.0,
				End:   float64(s.Offsets.To) / 1000.0,
				Text:  strings.TrimSpace(s.Text),
			})
		}
	}
	return segs, nil
}

// tail returns the last kilobyte of tool output for diagnostics.
func tail(out []byte) []byte {
	const keep = 1024
	if len(out) <= keep {
		return out
	}
	return out[len(out)-keep:]
}
