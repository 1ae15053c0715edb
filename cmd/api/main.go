package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/seanowww/LyricSync/internal/archive"
	"github.com/seanowww/LyricSync/internal/burn"
	"github.com/seanowww/LyricSync/internal/cache"
	"github.com/seanowww/LyricSync/internal/config"
	"github.com/seanowww/LyricSync/internal/database"
	"github.com/seanowww/LyricSync/internal/logging"
	"github.com/seanowww/LyricSync/internal/probe"
	"github.com/seanowww/LyricSync/internal/queue"
	"github.com/seanowww/LyricSync/internal/storage"
	"github.com/seanowww/LyricSync/internal/tracing"
	"github.com/seanowww/LyricSync/internal/transcribe"
)

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

	if cfg.Tracing.Enabled {
		_, closer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			log.Fatalf("failed to initialize tracer: %v", err)
		}
		defer closer.Close()
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	store, err := storage.New(cfg.Media.DataRoot)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}

	prober := probe.New(cfg.Burn.ProbeBin, log)
	burner := burn.New(cfg.Burn, cfg.Media.FontsDir, prober, log)
	transcriber := transcribe.New(cfg.Transcribe, log)

	srv := &Server{
		repo:        repo,
		store:       store,
		burner:      burner,
		transcriber: transcriber,
		prober:      prober,
		log:         log,
	}

	// The async job path degrades gracefully: without a broker the API
	// still serves synchronous burns.
	if q, err := queue.New(cfg.Queue); err != nil {
		log.WithError(err).Warn("queue unavailable, async burn jobs disabled")
	} else {
		srv.queue = q
		defer q.Close()
	}

	if cfg.Archive.Enabled {
		a, err := archive.New(cfg.Archive)
		if err != nil {
			log.Fatalf("failed to initialize render archive: %v", err)
		}
		srv.archive = a
	}

	if jc, err := cache.NewCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.WithError(err).Warn("redis unavailable, job status served from database only")
	} else {
		srv.cache = jc
		defer jc.Close()
	}

	router := setupRouter(srv)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infof("starting API server on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Info("server stopped")
}
