package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/p-n-ai/pai-progress/internal/curriculum"
	"github.com/p-n-ai/pai-progress/internal/exercise"
	"github.com/p-n-ai/pai-progress/internal/httpapi"
	"github.com/p-n-ai/pai-progress/internal/platform/cache"
	"github.com/p-n-ai/pai-progress/internal/platform/config"
	"github.com/p-n-ai/pai-progress/internal/platform/database"
	"github.com/p-n-ai/pai-progress/internal/progress"
)

const connectTimeout = 10 * time.Second

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(os.Stdout, cfg.Log))

	def, err := loadCurriculum(cfg.CurriculumPath)
	if err != nil {
		slog.Error("failed to load curriculum", "path", cfg.CurriculumPath, "error", err)
		os.Exit(1)
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), connectTimeout)
	defer cancelConnect()

	var checks []httpapi.HealthChecker
	engineCfg := progress.EngineConfig{}

	if cfg.Database.URL != "" {
		db, err := database.New(connectCtx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		events := progress.NewPostgresEventLogger(db.Pool)
		if err := events.EnsureSchema(connectCtx); err != nil {
			slog.Error("failed to prepare event log", "error", err)
			os.Exit(1)
		}
		engineCfg.Events = events
		checks = append(checks, db)
		slog.Info("progress event log enabled")
	}

	if cfg.Cache.URL != "" {
		c, err := cache.New(connectCtx, cfg.Cache)
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer c.Close()

		engineCfg.Publisher = progress.NewRedisPublisher(c.Client, c.Channel)
		checks = append(checks, c)
		slog.Info("snapshot publishing enabled", "channel", c.Channel)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	engineCfg.Metrics = progress.NewMetrics(reg)

	engine, err := progress.NewEngine(def, engineCfg)
	if err != nil {
		slog.Error("failed to create progress engine", "error", err)
		os.Exit(1)
	}

	runner := exercise.NewRunner(engine, def, exercise.RunnerConfig{
		Retention:   cfg.Exercise.Retention,
		IdleTimeout: cfg.Exercise.IdleTimeout,
	})

	handler := httpapi.NewHandler(httpapi.Config{
		Engine:     engine,
		Runner:     runner,
		Curriculum: def,
		Checks:     checks,
		Gatherer:   reg,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		slog.Info("server starting",
			"addr", srv.Addr,
			"curriculum", def.ID,
			"session_id", engine.SessionID(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// newLogger builds the process logger from the log settings.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// loadCurriculum returns the built-in curriculum when path is empty.
func loadCurriculum(path string) (curriculum.Definition, error) {
	if path == "" {
		return curriculum.Default(), nil
	}
	def, err := curriculum.Load(path)
	if err != nil {
		return curriculum.Definition{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return def, nil
}
