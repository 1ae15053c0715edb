package probe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/seanowww/LyricSync/internal/logging"
)

func TestParseJSONDimensions(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantW  int
		wantH  int
		wantOK bool
	}{
		{
			name:   "standard stream listing",
			input:  `{"programs": [], "streams": [{"width": 1920, "height": 1080}]}`,
			wantW:  1920,
			wantH:  1080,
			wantOK: true,
		},
		{
			name:   "vertical video",
			input:  `{"streams": [{"width": 1080, "height": 1920}]}`,
			wantW:  1080,
			wantH:  1920,
			wantOK: true,
		},
		{
			name:   "no streams",
			input:  `{"streams": []}`,
			wantOK: false,
		},
		{
			name:   "zero dimensions",
			input:  `{"streams": [{"width": 0, "height": 0}]}`,
			wantOK: false,
		},
		{
			name:   "not json",
			input:  "width=1280",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, ok := parseJSONDimensions([]byte(tt.input))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (w != tt.wantW || h != tt.wantH) {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestParseTextDimensions(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantW  int
		wantH  int
		wantOK bool
	}{
		{
			name:   "key value pairs",
			input:  "width=1280\nheight=720\n",
			wantW:  1280,
			wantH:  720,
			wantOK: true,
		},
		{
			name:   "stream banner",
			input:  "Stream #0:0: Video: h264, yuv420p, 854x480, 30 fps",
			wantW:  854,
			wantH:  480,
			wantOK: true,
		},
		{
			name:   "nothing usable",
			input:  "No such file or directory",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, ok := parseTextDimensions([]byte(tt.input))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (w != tt.wantW || h != tt.wantH) {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

// fakeProbe writes a shell script that prints canned output, standing in
// for the external probe binary.
func fakeProbe(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake probe script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fakeprobe")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, err := logging.NewDefaultLogger()
	if err != nil {
		t.Fatal(err)
	}
	return log
}

func TestDimensionsFromJSON(t *testing.T) {
	bin := fakeProbe(t, `echo '{"streams":[{"width":640,"height":360}]}'`)
	p := New(bin, testLogger(t))

	w, h := p.Dimensions(context.Background(), "ignored.mp4")
	if w != 640 || h != 360 {
		t.Errorf("got %dx%d, want 640x360", w, h)
	}
}

func TestDimensionsTextFallback(t *testing.T) {
	bin := fakeProbe(t, `echo "width=1280"; echo "height=720"; exit 1`)
	p := New(bin, testLogger(t))

	w, h := p.Dimensions(context.Background(), "ignored.mp4")
	if w != 1280 || h != 720 {
		t.Errorf("got %dx%d, want 1280x720", w, h)
	}
}

func TestDimensionsDefaultFallback(t *testing.T) {
	bin := fakeProbe(t, `exit 1`)
	p := New(bin, testLogger(t))

	w, h := p.Dimensions(context.Background(), "ignored.mp4")
	if w != FallbackWidth || h != FallbackHeight {
		t.Errorf("got %dx%d, want %dx%d", w, h, FallbackWidth, FallbackHeight)
	}
}

func TestDimensionsMissingBinary(t *testing.T) {
	p := New("/nonexistent/probe-bin", testLogger(t))

	w, h := p.Dimensions(context.Background(), "ignored.mp4")
	if w != FallbackWidth || h != FallbackHeight {
		t.Errorf("got %dx%d, want fallback", w, h)
	}
}
