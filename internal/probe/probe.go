// Package probe resolves a source video's native width and height via
// the external media probe. The probed pair is used verbatim as the ASS
// PlayRes and as the scale basis the browser preview converts CSS
// pixels with, so preview geometry and burned geometry can never drift.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/seanowww/LyricSync/internal/logging"
	"github.com/seanowww/LyricSync/internal/metrics"
)

// Default dimensions when the probe yields nothing usable.
const (
	FallbackWidth  = 1920
	FallbackHeight = 1080
)

// Prober queries video dimensions via an external binary (ffprobe or
// compatible).
type Prober struct {
	bin string
	log *logging.Logger
}

// New creates a Prober running the given binary.
func New(bin string, log *logging.Logger) *Prober {
	return &Prober{bin: bin, log: log}
}

// Dimensions returns the first video stream's width and height. It
// never fails: if the JSON output is unusable it scans any textual
// output for dimensions, and as a last resort returns 1920x1080. Both
// fallbacks are logged and counted.
func (p *Prober) Dimensions(ctx context.Context, videoPath string) (int, int) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		videoPath,
	}

	cmd := exec.CommandContext(ctx, p.bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr == nil {
		if w, h, ok := parseJSONDimensions(stdout.Bytes()); ok {
			p.log.LogProbeResult(videoPath, w, h, "")
			return w, h
		}
	}

	// Probe output can be malformed or partial; scan whatever came back
	// before giving up.
	combined := append(stdout.Bytes(), stderr.Bytes()...)
	if w, h, ok := parseTextDimensions(combined); ok {
		metrics.RecordProbeFallback("text")
		p.log.LogProbeResult(videoPath, w, h, "text")
		return w, h
	}

	metrics.RecordProbeFallback("default")
	p.log.WithError(runErr).LogProbeResult(videoPath, FallbackWidth, FallbackHeight, "default")
	return FallbackWidth, FallbackHeight
}

// parseJSONDimensions parses ffprobe's -of json stream listing.
func parseJSONDimensions(data []byte) (int, int, bool) {
	var out struct {
		Streams []struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, 0, false
	}
	if len(out.Streams) == 0 {
		return 0, 0, false
	}
	w, h := out.Streams[0].Width, out.Streams[0].Height
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

var (
	widthPattern  = regexp.MustCompile(`width[=:]\s*(\d{2,5})`)
	heightPattern = regexp.MustCompile(`height[=:]\s*(\d{2,5})`)
	pairPattern   = regexp.MustCompile(`(\d{2,5})x(\d{2,5})`)
)

// parseTextDimensions scans free-form probe output for width/height
// assignments or a WxH pair.
func parseTextDimensions(data []byte) (int, int, bool) {
	wm := widthPattern.FindSubmatch(data)
	hm := heightPattern.FindSubmatch(data)
	if wm != nil && hm != nil {
		w, _ := strconv.Atoi(string(wm[1]))
		h, _ := strconv.Atoi(string(hm[1]))
		if w > 0 && h > 0 {
			return w, h, true
		}
	}
	if m := pairPattern.FindSubmatch(data); m != nil {
		w, _ := strconv.Atoi(string(m[1]))
		h, _ := strconv.Atoi(string(m[2]))
		if w > 0 && h > 0 {
			return w, h, true
		}
	}
	return 0, 0, false
}
