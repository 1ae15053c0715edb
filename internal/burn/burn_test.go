package burn

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/seanowww/LyricSync/internal/config"
	"github.com/seanowww/LyricSync/internal/fault"
	"github.com/seanowww/LyricSync/internal/logging"
	"github.com/seanowww/LyricSync/internal/probe"
	"github.com/seanowww/LyricSync/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTailWriterKeepsTail(t *testing.T) {
	w := newTailWriter(8)

	w.Write([]byte("abc"))
	assert.Equal(t, "abc", string(w.Bytes()))

	w.Write([]byte("defgh"))
	assert.Equal(t, "abcdefgh", string(w.Bytes()))

	w.Write([]byte("XY"))
	assert.Equal(t, "cdefghXY", string(w.Bytes()))
}

func TestTailWriterOversizedWrite(t *testing.T) {
	w := newTailWriter(4)
	n, err := w.Write([]byte("0123456789"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, "6789", string(w.Bytes()))
}

func TestTailWriterManySmallWrites(t *testing.T) {
	w := newTailWriter(16)
	var all bytes.Buffer
	for i := 0; i < 100; i++ {
		chunk := []byte{byte('a' + i%26)}
		w.Write(chunk)
		all.Write(chunk)
	}
	want := all.Bytes()[all.Len()-16:]
	assert.Equal(t, want, w.Bytes())
}

func TestEncoderArgs(t *testing.T) {
	args := encoderArgs("/videos/v1/source.mp4", "/work/subs.ass", "/data/fonts", "/work/out.mp4")

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-i /videos/v1/source.mp4")
	assert.Contains(t, joined, "-c:v libx264")
	assert.Contains(t, joined, "-crf 18")
	assert.Contains(t, joined, "-preset medium")
	assert.Contains(t, joined, "-c:a copy")
	assert.Equal(t, "/work/out.mp4", args[len(args)-1])

	var vf string
	for i, a := range args {
		if a == "-vf" {
			vf = args[i+1]
		}
	}
	assert.Equal(t, `subtitles=/work/subs.ass:fontsdir=/data/fonts`, vf)
}

func TestEscapeFilterPath(t *testing.T) {
	assert.Equal(t, `C\:/temp/subs.ass`, escapeFilterPath(`C:/temp/subs.ass`))
	assert.Equal(t, `a\\b`, escapeFilterPath(`a\b`))
	assert.Equal(t, `/plain/path`, escapeFilterPath(`/plain/path`))
}

// fakeBin writes an executable shell script standing in for the encoder
// or probe.
func fakeBin(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake binaries require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestBurner(t *testing.T, encoderBody string, timeoutS int) *Burner {
	t.Helper()
	log, err := logging.NewDefaultLogger()
	require.NoError(t, err)

	probeBin := fakeBin(t, "fakeprobe", `echo '{"streams":[{"width":640,"height":360}]}'`)
	cfg := config.BurnConfig{
		EncoderBin:  fakeBin(t, "fakeencoder", encoderBody),
		ProbeBin:    probeBin,
		Concurrency: 2,
		TimeoutS:    timeoutS,
	}
	return New(cfg, "/data/fonts", probe.New(probeBin, log), log)
}

func testSegments() []models.Segment {
	return []models.Segment{
		{ID: 0, Start: 0, End: 2.5, Text: "hello"},
		{ID: 1, Start: 2.5, End: 5, Text: "world"},
	}
}

func TestBurnSuccess(t *testing.T) {
	// the fake encoder writes its last argument
	b := newTestBurner(t, `
for out; do :; done
printf 'MP4DATA' > "$out"`, 30)

	data, err := b.Burn(context.Background(), "source.mp4", testSegments(), models.DefaultStyle())
	require.NoError(t, err)
	assert.Equal(t, "MP4DATA", string(data))
}

func TestBurnEncoderFailureCarriesStderrTail(t *testing.T) {
	b := newTestBurner(t, `
echo "boom: no such codec" >&2
exit 1`, 30)

	_, err := b.Burn(context.Background(), "source.mp4", testSegments(), models.DefaultStyle())
	require.Error(t, err)

	var re *fault.RenderError
	require.True(t, errors.As(err, &re), "want RenderError, got %v", err)
	assert.Contains(t, string(re.StderrTail), "no such codec")
}

func TestBurnTimeout(t *testing.T) {
	b := newTestBurner(t, `sleep 30`, 1)

	start := time.Now()
	_, err := b.Burn(context.Background(), "source.mp4", testSegments(), models.DefaultStyle())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrTimeout), "want ErrTimeout, got %v", err)
	assert.Less(t, time.Since(start), 20*time.Second)
}

func TestBurnCancellation(t *testing.T) {
	b := newTestBurner(t, `sleep 30`, 60)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	_, err := b.Burn(ctx, "source.mp4", testSegments(), models.DefaultStyle())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrCancelled), "want ErrCancelled, got %v", err)
}

func TestBurnMissingOutputIsRenderError(t *testing.T) {
	b := newTestBurner(t, `exit 0`, 30)

	_, err := b.Burn(context.Background(), "source.mp4", testSegments(), models.DefaultStyle())
	require.Error(t, err)

	var re *fault.RenderError
	assert.True(t, errors.As(err, &re), "want RenderError, got %v", err)
}

func TestBurnInvalidStyleColour(t *testing.T) {
	st := models.DefaultStyle()
	st.Color = "not-a-color"

	b := newTestBurner(t, `exit 0`, 30)
	_, err := b.Burn(context.Background(), "source.mp4", testSegments(), st)
	assert.True(t, errors.Is(err, fault.ErrInvalidColor), "want ErrInvalidColor, got %v", err)
}

func TestBurnWritesASSWithProbedPlayRes(t *testing.T) {
	// the fake encoder snapshots the subtitle document before exiting
	b := newTestBurner(t, `
for out; do :; done
cp "$(dirname "$out")/subs.ass" "${TMPDIR:-/tmp}/lyricburn_ass_probe"
printf 'x' > "$out"`, 30)

	st := models.DefaultStyle()
	x, y := 320.0, 300.0
	st.PosX = &x
	st.PosY = &y

	_, err := b.Burn(context.Background(), "source.mp4", testSegments(), st)
	require.NoError(t, err)

	probePath := filepath.Join(os.TempDir(), "lyricburn_ass_probe")
	doc, err := os.ReadFile(probePath)
	require.NoError(t, err)
	defer os.Remove(probePath)

	// the fake probe reports 640x360; the document must carry exactly that
	assert.Contains(t, string(doc), "PlayResX: 640\n")
	assert.Contains(t, string(doc), "PlayResY: 360\n")
	assert.Contains(t, string(doc), `{\pos(320,300)}hello`)
	assert.Contains(t, string(doc), "Dialogue: 0,0:00:00.00,0:00:02.50,Default,")
}

func TestBurnWorkdirRemoved(t *testing.T) {
	b := newTestBurner(t, `
for out; do :; done
dirname "$out" > "${TMPDIR:-/tmp}/lyricburn_workdir_probe"
printf 'x' > "$out"`, 30)

	_, err := b.Burn(context.Background(), "source.mp4", testSegments(), models.DefaultStyle())
	require.NoError(t, err)

	probePath := filepath.Join(os.TempDir(), "lyricburn_workdir_probe")
	recorded, err := os.ReadFile(probePath)
	require.NoError(t, err)
	defer os.Remove(probePath)

	workdir := strings.TrimSpace(string(recorded))
	_, statErr := os.Stat(workdir)
	assert.True(t, os.IsNotExist(statErr), "workdir %s should be removed", workdir)
}
