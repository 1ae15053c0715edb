package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/seanowww/LyricSync/internal/fault"
	"github.com/seanowww/LyricSync/internal/middleware"
	"github.com/seanowww/LyricSync/internal/segments"
	"github.com/seanowww/LyricSync/internal/storage"
	"github.com/seanowww/LyricSync/pkg/models"
)

// Health check endpoint
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := s.repo.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// writeError maps a failure onto its response status. Cancelled
// requests get no body; the client is gone.
func (s *Server) writeError(c *gin.Context, err error) {
	status := fault.HTTPStatus(err)
	if status == fault.StatusClientClosed {
		s.log.WithError(err).Warn("request cancelled by client")
		c.Abort()
		return
	}
	if status >= 500 {
		s.log.ErrorWithErr("request failed", err)
	}
	c.JSON(status, gin.H{"error": fault.Message(err)})
}

// newOwnerKey mints the opaque capability token handed out at ingest.
func newOwnerKey() string {
	b := make([]byte, 24)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// POST /api/transcribe
// Ingest a clip, run speech-to-text, persist the normalized segments.
func (s *Server) handleTranscribe(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer src.Close()

	video := &models.Video{
		ID:       uuid.New().String(),
		OwnerKey: newOwnerKey(),
	}

	path, err := s.store.SaveSource(video.ID, file.Filename, src)
	if err != nil {
		s.writeError(c, err)
		return
	}
	video.Path = path

	if err := s.repo.CreateVideo(c.Request.Context(), video); err != nil {
		s.writeError(c, err)
		return
	}

	workdir, err := os.MkdirTemp("", "transcribe-*")
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer os.RemoveAll(workdir)

	raw, err := s.transcriber.Transcribe(c.Request.Context(), path, workdir)
	if err != nil {
		s.writeError(c, err)
		return
	}

	segs := segments.FromTranscription(raw)
	if err := s.repo.ReplaceSegments(c.Request.Context(), video.ID, segs); err != nil {
		s.writeError(c, err)
		return
	}

	s.log.WithVideoID(video.ID).WithField("segments", len(segs)).Info("transcription ingested")
	c.JSON(http.StatusOK, gin.H{
		"video_id":  video.ID,
		"owner_key": video.OwnerKey,
		"segments":  segs,
	})
}

// GET /api/video/:id
// Stream the source media back to its owner.
func (s *Server) handleGetVideo(c *gin.Context) {
	video, ok := s.ownedVideo(c)
	if !ok {
		return
	}

	path := video.Path
	if path == "" {
		var err error
		path, err = s.store.SourcePath(video.ID)
		if err != nil {
			s.writeError(c, err)
			return
		}
	}

	c.Header("Content-Type", storage.ContentType(path))
	c.File(path)
}

// DELETE /api/video/:id
// Videos are never garbage collected; this is the one explicit removal
// path, and it takes the video's capability token.
func (s *Server) handleDeleteVideo(c *gin.Context) {
	video, ok := s.ownedVideo(c)
	if !ok {
		return
	}

	if err := s.repo.DeleteVideo(c.Request.Context(), video.ID); err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.store.RemoveVideo(video.ID); err != nil {
		s.log.WithVideoID(video.ID).WithError(err).Warn("failed to remove media files")
	}

	c.JSON(http.StatusOK, gin.H{"video_id": video.ID, "deleted": true})
}

// GET /api/video/:id/dimensions
// The probed native size, which is also the ASS PlayRes at burn time.
// The preview divides its CSS pixel coordinates by exactly these values.
func (s *Server) handleGetDimensions(c *gin.Context) {
	video, ok := s.ownedVideo(c)
	if !ok {
		return
	}

	path, err := s.store.SourcePath(video.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	w, h := s.prober.Dimensions(c.Request.Context(), path)
	c.JSON(http.StatusOK, gin.H{
		"video_id": video.ID,
		"width":    w,
		"height":   h,
	})
}

// GET /api/segments/:id
func (s *Server) handleGetSegments(c *gin.Context) {
	video, ok := s.ownedVideo(c)
	if !ok {
		return
	}

	segs, err := s.repo.ListSegments(c.Request.Context(), video.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"video_id": video.ID,
		"segments": segs,
	})
}

type segmentsUpdateRequest struct {
	Segments []models.Segment `json:"segments"`
}

// PUT /api/segments/:id
// Atomic replacement; overlap rejects the write with no mutation.
func (s *Server) handlePutSegments(c *gin.Context) {
	video, ok := s.ownedVideo(c)
	if !ok {
		return
	}

	var req segmentsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.repo.ReplaceSegments(c.Request.Context(), video.ID, req.Segments); err != nil {
		s.writeError(c, err)
		return
	}

	segs, err := s.repo.ListSegments(c.Request.Context(), video.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"video_id": video.ID,
		"segments": segs,
	})
}

type burnRequest struct {
	VideoID  string           `json:"video_id"`
	Segments []models.Segment `json:"segments"`
	Style    json.RawMessage  `json:"style"`
}

// decodeBurnRequest parses the request body and resolves the style with
// defaults and preset shorthands applied. Unknown style fields reject.
func decodeBurnRequest(c *gin.Context) (*burnRequest, models.Style, error) {
	var req burnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, models.Style{}, fault.Invalid("%v", err)
	}
	if req.VideoID == "" {
		return nil, models.Style{}, fault.Invalid("video_id is required")
	}

	style := models.DefaultStyle()
	if len(req.Style) > 0 && string(req.Style) != "null" {
		in, err := models.DecodeStyleInput(req.Style)
		if err != nil {
			return nil, models.Style{}, fault.Invalid("%v", err)
		}
		style, err = models.ResolveStyle(in)
		if err != nil {
			return nil, models.Style{}, fault.Invalid("%v", err)
		}
	}
	return &req, style, nil
}

// POST /api/burn
// Validate and rewrite the segment set, then render and stream the MP4.
func (s *Server) handleBurn(c *gin.Context) {
	req, style, err := decodeBurnRequest(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	ownerKey, _ := middleware.GetOwnerKey(c)
	video, err := s.repo.GetVideoForOwner(c.Request.Context(), req.VideoID, ownerKey)
	if err != nil {
		s.writeError(c, err)
		return
	}

	segs := req.Segments
	if segs != nil {
		if err := s.repo.ReplaceSegments(c.Request.Context(), video.ID, segs); err != nil {
			s.writeError(c, err)
			return
		}
	}
	// Read back the stored, sorted set; the store is authoritative.
	segs, err = s.repo.ListSegments(c.Request.Context(), video.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	sourcePath, err := s.store.SourcePath(video.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	data, err := s.burner.Burn(c.Request.Context(), sourcePath, segs, style)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+video.ID+`_burned.mp4"`)
	c.Data(http.StatusOK, "video/mp4", data)
}

// POST /api/burn/jobs
// Enqueue an asynchronous burn; the style is frozen now, the segment
// set is read when the worker picks the job up.
func (s *Server) handleCreateBurnJob(c *gin.Context) {
	req, style, err := decodeBurnRequest(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	ownerKey, _ := middleware.GetOwnerKey(c)
	video, err := s.repo.GetVideoForOwner(c.Request.Context(), req.VideoID, ownerKey)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if req.Segments != nil {
		if err := s.repo.ReplaceSegments(c.Request.Context(), video.ID, req.Segments); err != nil {
			s.writeError(c, err)
			return
		}
	}

	job := &models.BurnJob{
		VideoID: video.ID,
		Status:  models.BurnJobStatusQueued,
		Style:   style,
	}
	if err := s.repo.CreateBurnJob(c.Request.Context(), job); err != nil {
		s.writeError(c, err)
		return
	}

	if err := s.queue.PublishJob(c.Request.Context(), job); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, job)
}

// GET /api/burn/jobs/:id
func (s *Server) handleGetBurnJob(c *gin.Context) {
	jobID := c.Param("id")

	var job *models.BurnJob
	if s.cache != nil {
		cached, err := s.cache.GetJob(c.Request.Context(), jobID)
		if err != nil {
			s.log.WithError(err).Warn("job cache lookup failed")
		} else {
			job = cached
		}
	}
	if job == nil {
		var err error
		job, err = s.repo.GetBurnJob(c.Request.Context(), jobID)
		if err != nil {
			s.writeError(c, err)
			return
		}
	}

	ownerKey, _ := middleware.GetOwnerKey(c)
	if _, err := s.repo.GetVideoForOwner(c.Request.Context(), job.VideoID, ownerKey); err != nil {
		s.writeError(c, err)
		return
	}

	resp := gin.H{"job": job}
	if job.Status == models.BurnJobStatusCompleted && job.ArtifactKey != "" && s.archive != nil {
		url, err := s.archive.PresignedURL(c.Request.Context(), job.ArtifactKey, time.Hour)
		if err != nil {
			s.log.WithError(err).Warn("presign failed")
		} else {
			resp["download_url"] = url
		}
	}

	c.JSON(http.StatusOK, resp)
}

// ownedVideo resolves the :id route param against the caller's owner
// key, writing the 401/403/404 taxonomy on failure.
func (s *Server) ownedVideo(c *gin.Context) (*models.Video, bool) {
	ownerKey, ok := middleware.GetOwnerKey(c)
	if !ok {
		s.writeError(c, fault.ErrUnauthorized)
		return nil, false
	}

	video, err := s.repo.GetVideoForOwner(c.Request.Context(), c.Param("id"), ownerKey)
	if err != nil {
		s.writeError(c, err)
		return nil, false
	}
	return video, true
}
