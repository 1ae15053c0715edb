package main

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/seanowww/LyricSync/internal/logging"
	"github.com/seanowww/LyricSync/internal/middleware"
	"github.com/seanowww/LyricSync/pkg/models"
)

// repository is the slice of the database layer the handlers use.
type repository interface {
	Health(ctx context.Context) error
	CreateVideo(ctx context.Context, video *models.Video) error
	GetVideoForOwner(ctx context.Context, id, ownerKey string) (*models.Video, error)
	DeleteVideo(ctx context.Context, id string) error
	ListSegments(ctx context.Context, videoID string) ([]models.Segment, error)
	ReplaceSegments(ctx context.Context, videoID string, segs []models.Segment) error
	CreateBurnJob(ctx context.Context, job *models.BurnJob) error
	GetBurnJob(ctx context.Context, id string) (*models.BurnJob, error)
}

type mediaStore interface {
	SaveSource(videoID, filename string, r io.Reader) (string, error)
	SourcePath(videoID string) (string, error)
	RemoveVideo(videoID string) error
}

type burner interface {
	Burn(ctx context.Context, sourcePath string, segs []models.Segment, st models.Style) ([]byte, error)
}

type transcriber interface {
	Transcribe(ctx context.Context, mediaPath, workDir string) ([]models.Segment, error)
}

type prober interface {
	Dimensions(ctx context.Context, videoPath string) (int, int)
}

type jobPublisher interface {
	PublishJob(ctx context.Context, job *models.BurnJob) error
}

type jobCache interface {
	GetJob(ctx context.Context, jobID string) (*models.BurnJob, error)
}

type renderArchive interface {
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Server carries the wired dependencies for the HTTP surface. Queue,
// cache, and archive may be nil; the async-job routes are only mounted
// when a queue is present.
type Server struct {
	repo        repository
	store       mediaStore
	burner      burner
	transcriber transcriber
	prober      prober
	queue       jobPublisher
	cache       jobCache
	archive     renderArchive
	log         *logging.Logger
}

func setupRouter(s *Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(s.log))

	router.GET("/health", s.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := middleware.NewRateLimiter(10, 20)

	api := router.Group("/api")
	{
		api.POST("/transcribe", middleware.RateLimit(limiter), s.handleTranscribe)

		owned := api.Group("", middleware.OwnerKey(), middleware.RateLimit(limiter))
		{
			owned.GET("/video/:id", s.handleGetVideo)
			owned.DELETE("/video/:id", s.handleDeleteVideo)
			owned.GET("/video/:id/dimensions", s.handleGetDimensions)
			owned.GET("/segments/:id", s.handleGetSegments)
			owned.PUT("/segments/:id", s.handlePutSegments)
			owned.POST("/burn", s.handleBurn)

			if s.queue != nil {
				owned.POST("/burn/jobs", s.handleCreateBurnJob)
				owned.GET("/burn/jobs/:id", s.handleGetBurnJob)
			}
		}
	}

	return router
}
