// Package storage owns the on-disk media layout:
//
//	<data_root>/videos/<uuid>/source.<ext>
//	<data_root>/fonts/{Inter,Arial,Georgia,Helvetica,TimesNewRoman}/*.ttf
//
// The source tree is written once at ingest and read-only afterwards;
// the fonts tree is read-only always.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/seanowww/LyricSync/internal/fault"
)

// allowedExts is the upload extension whitelist.
var allowedExts = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".m4a":  true,
	".mp3":  true,
	".wav":  true,
	".webm": true,
}

// Store provides filesystem operations under the data root.
type Store struct {
	root string
}

// New creates a Store rooted at dataRoot, creating the videos tree if
// needed.
func New(dataRoot string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dataRoot, "videos"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create videos directory: %w", err)
	}
	return &Store{root: dataRoot}, nil
}

// SaveSource streams an uploaded file into the video's directory and
// returns the stored path. The extension is taken from the original
// filename and must be whitelisted.
func (s *Store) SaveSource(videoID, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".mp4"
	}
	if !allowedExts[ext] {
		return "", fault.Invalid("unsupported file type %q", ext)
	}

	dir := filepath.Join(s.root, "videos", videoID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create video directory: %w", err)
	}

	dst := filepath.Join(dir, "source"+ext)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create source file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write source file: %w", err)
	}
	return dst, nil
}

// SourcePath locates a video's source file regardless of extension.
func (s *Store) SourcePath(videoID string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.root, "videos", videoID, "source.*"))
	if err != nil {
		return "", fmt.Errorf("failed to scan video directory: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("source for video %s: %w", videoID, fault.ErrNotFound)
	}
	return matches[0], nil
}

// SaveRender keeps a burned artifact under the video's directory. Used
// by async jobs when no object-storage archive is configured.
func (s *Store) SaveRender(videoID, jobID string, data []byte) (string, error) {
	dir := filepath.Join(s.root, "videos", videoID, "renders")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create renders directory: %w", err)
	}
	path := filepath.Join(dir, jobID+".mp4")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write render: %w", err)
	}
	return path, nil
}

// RemoveVideo deletes a video's directory tree. It checks no credential
// itself; the API's DELETE route calls it after the owner-key check.
func (s *Store) RemoveVideo(videoID string) error {
	return os.RemoveAll(filepath.Join(s.root, "videos", videoID))
}

// ContentType returns the media content type for a stored source path.
func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".m4a":
		return "audio/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
