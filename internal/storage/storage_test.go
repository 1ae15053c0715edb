package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/seanowww/LyricSync/internal/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndFindSource(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	path, err := s.SaveSource("vid-1", "clip.MOV", strings.NewReader("videodata"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, filepath.Join("videos", "vid-1", "source.mov")))

	found, err := s.SourcePath("vid-1")
	require.NoError(t, err)
	assert.Equal(t, path, found)

	data, err := os.ReadFile(found)
	require.NoError(t, err)
	assert.Equal(t, "videodata", string(data))
}

func TestSaveSourceRejectsUnknownExtension(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.SaveSource("vid-1", "malware.exe", strings.NewReader("x"))
	assert.True(t, errors.Is(err, fault.ErrInvalid), "got %v", err)
}

func TestSaveSourceDefaultsToMP4(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	path, err := s.SaveSource("vid-2", "noext", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "source.mp4"))
}

func TestSourcePathMissing(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.SourcePath("nope")
	assert.True(t, errors.Is(err, fault.ErrNotFound), "got %v", err)
}

func TestSaveRenderAndRemoveVideo(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.SaveSource("vid-3", "a.mp4", strings.NewReader("src"))
	require.NoError(t, err)

	path, err := s.SaveRender("vid-3", "job-9", []byte("rendered"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rendered", string(data))

	require.NoError(t, s.RemoveVideo("vid-3"))
	_, err = s.SourcePath("vid-3")
	assert.True(t, errors.Is(err, fault.ErrNotFound))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "video/mp4", ContentType("/x/source.mp4"))
	assert.Equal(t, "video/webm", ContentType("/x/source.webm"))
	assert.Equal(t, "application/octet-stream", ContentType("/x/source.bin"))
}
