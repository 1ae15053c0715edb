// The worker consumes async burn jobs: it renders with the same burn
// orchestrator the API uses, archives the artifact, and records the
// terminal job state.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seanowww/LyricSync/internal/archive"
	"github.com/seanowww/LyricSync/internal/burn"
	"github.com/seanowww/LyricSync/internal/cache"
	"github.com/seanowww/LyricSync/internal/config"
	"github.com/seanowww/LyricSync/internal/database"
	"github.com/seanowww/LyricSync/internal/fault"
	"github.com/seanowww/LyricSync/internal/logging"
	"github.com/seanowww/LyricSync/internal/probe"
	"github.com/seanowww/LyricSync/internal/queue"
	"github.com/seanowww/LyricSync/internal/storage"
	"github.com/seanowww/LyricSync/pkg/models"
)

const jobCacheTTL = 10 * time.Minute

type worker struct {
	repo    *database.Repository
	store   *storage.Store
	burner  *burn.Burner
	cache   *cache.Cache
	archive *archive.Archive
	log     *logging.Logger
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.NewLogger(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	store, err := storage.New(cfg.Media.DataRoot)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}

	q, err := queue.New(cfg.Queue)
	if err != nil {
		log.Fatalf("failed to connect to queue: %v", err)
	}
	defer q.Close()

	prober := probe.New(cfg.Burn.ProbeBin, log)

	w := &worker{
		repo:   database.NewRepository(db),
		store:  store,
		burner: burn.New(cfg.Burn, cfg.Media.FontsDir, prober, log),
		log:    log,
	}

	if cfg.Archive.Enabled {
		w.archive, err = archive.New(cfg.Archive)
		if err != nil {
			log.Fatalf("failed to initialize render archive: %v", err)
		}
	}

	if jc, err := cache.NewCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.WithError(err).Warn("redis unavailable, job snapshots disabled")
	} else {
		w.cache = jc
		defer jc.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("shutting down worker")
		cancel()
	}()

	log.Info("worker started, waiting for burn jobs")
	if err := q.ConsumeJobs(ctx, func(job *models.BurnJob) error {
		return w.process(ctx, job)
	}); err != nil {
		log.Fatalf("failed to consume jobs: %v", err)
	}

	<-ctx.Done()
	log.Info("worker stopped")
}

// process runs one burn job to a terminal state. A returned error
// requeues the message, so only infrastructure failures propagate;
// render failures are recorded on the job and swallowed.
func (w *worker) process(ctx context.Context, job *models.BurnJob) error {
	log := w.log.WithJobID(job.ID).WithVideoID(job.VideoID)
	log.Info("burn job picked up")

	if err := w.repo.MarkBurnJobStarted(ctx, job.ID); err != nil {
		if errors.Is(err, fault.ErrConflict) {
			log.Warn("job no longer queued, skipping")
			return nil
		}
		return err
	}
	job.Status = models.BurnJobStatusProcessing
	w.snapshot(ctx, job)

	sourcePath, err := w.store.SourcePath(job.VideoID)
	if err != nil {
		return w.fail(ctx, job, err)
	}

	// The stored set is authoritative at execution time, not at
	// enqueue time.
	segs, err := w.repo.ListSegments(ctx, job.VideoID)
	if err != nil {
		return err
	}

	data, err := w.burner.Burn(ctx, sourcePath, segs, job.Style)
	if err != nil {
		if errors.Is(err, fault.ErrCancelled) {
			return w.finish(ctx, job, models.BurnJobStatusCancelled, "worker shutdown", "")
		}
		return w.fail(ctx, job, err)
	}

	var key string
	if w.archive != nil {
		key, err = w.archive.StoreRender(ctx, job.VideoID, job.ID, data)
	} else {
		key, err = w.store.SaveRender(job.VideoID, job.ID, data)
	}
	if err != nil {
		return w.fail(ctx, job, err)
	}

	log.WithField("artifact", key).Info("burn job completed")
	return w.finish(ctx, job, models.BurnJobStatusCompleted, "", key)
}

func (w *worker) fail(ctx context.Context, job *models.BurnJob, cause error) error {
	w.log.WithJobID(job.ID).ErrorWithErr("burn job failed", cause)
	return w.finish(ctx, job, models.BurnJobStatusFailed, fault.Message(cause), "")
}

func (w *worker) finish(ctx context.Context, job *models.BurnJob, status, errMsg, artifactKey string) error {
	// Terminal states must land even when the consume context is being
	// torn down.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := w.repo.FinishBurnJob(ctx, job.ID, status, errMsg, artifactKey); err != nil {
		return err
	}
	job.Status = status
	job.ErrorMsg = errMsg
	job.ArtifactKey = artifactKey
	w.snapshot(ctx, job)
	return nil
}

func (w *worker) snapshot(ctx context.Context, job *models.BurnJob) {
	if w.cache == nil {
		return
	}
	if err := w.cache.SetJob(ctx, job, jobCacheTTL); err != nil {
		w.log.WithError(err).Warn("failed to cache job snapshot")
	}
}
