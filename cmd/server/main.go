// Command server starts the CV evaluator HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpserver "github.com/evaluasi/cv-evaluator/internal/adapter/httpserver"
	"github.com/evaluasi/cv-evaluator/internal/adapter/queue/redisq"
	"github.com/evaluasi/cv-evaluator/internal/adapter/repo/postgres"
	qdrantcli "github.com/evaluasi/cv-evaluator/internal/adapter/vector/qdrant"
	"github.com/evaluasi/cv-evaluator/internal/app"
	"github.com/evaluasi/cv-evaluator/internal/config"
	"github.com/evaluasi/cv-evaluator/internal/observability"
	"github.com/evaluasi/cv-evaluator/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so that /metrics
	// exposes HTTP, AI, and job instrumentation.
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	docRepo := postgres.NewDocumentRepo(pool)
	jobRepo := postgres.NewJobRepo(pool)
	resRepo := postgres.NewResultRepo(pool)

	rdb, err := redisq.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("redis connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	queue := redisq.New(rdb, cfg.QueueMaxAttempts, cfg.QueueRetryDelay)
	defer func() {
		if err := queue.Close(); err != nil {
			slog.Error("failed to close queue client", slog.Any("error", err))
		}
	}()

	qcli := qdrantcli.New(cfg.QdrantURL, cfg.QdrantAPIKey)
	if err := app.EnsureVacancyCollection(ctx, qcli); err != nil {
		slog.Error("qdrant bootstrap failed", slog.Any("error", err))
	}

	uploadSvc := usecase.NewUploadService(docRepo)
	evalSvc := usecase.NewEvaluateService(jobRepo, docRepo, queue)
	resultSvc := usecase.NewResultService(jobRepo, resRepo)

	dbCheck, queueCheck, qdrantCheck := app.BuildReadinessChecks(cfg, pool, queue)

	srv := httpserver.NewServer(cfg, uploadSvc, evalSvc, resultSvc, dbCheck, queueCheck, qdrantCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
