// Package main provides the worker application entry point.
// The worker consumes evaluation jobs from the Redis queue and runs the
// retrieval-augmented scoring pipeline against them.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evaluasi/cv-evaluator/internal/adapter/ai/mock"
	"github.com/evaluasi/cv-evaluator/internal/adapter/ai/openai"
	"github.com/evaluasi/cv-evaluator/internal/adapter/embedding"
	"github.com/evaluasi/cv-evaluator/internal/adapter/queue/redisq"
	"github.com/evaluasi/cv-evaluator/internal/adapter/repo/postgres"
	qdrantcli "github.com/evaluasi/cv-evaluator/internal/adapter/vector/qdrant"
	"github.com/evaluasi/cv-evaluator/internal/app"
	"github.com/evaluasi/cv-evaluator/internal/config"
	"github.com/evaluasi/cv-evaluator/internal/domain"
	"github.com/evaluasi/cv-evaluator/internal/observability"
	"github.com/evaluasi/cv-evaluator/internal/pipeline"
	"github.com/evaluasi/cv-evaluator/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register Prometheus metrics in the worker process and expose them on a
	// dedicated /metrics endpoint so queue depth and job counters are scraped.
	observability.InitMetrics()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":9090", mux); err != nil {
			slog.Error("worker metrics server error", slog.Any("error", err))
		}
	}()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	slog.Info("starting worker", slog.String("env", cfg.AppEnv))

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("database connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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
	vacancies := qdrantcli.NewVacancyIndex(qcli)

	var aicl domain.AIClient
	if cfg.LLMConfigured() {
		aicl = openai.New(cfg)
		slog.Info("ai client initialized", slog.String("backend", "openai"), slog.String("model", cfg.LLMModel))
	} else {
		aicl = mock.New()
		slog.Info("ai client initialized", slog.String("backend", "mock"))
	}

	embedder := embedding.NewGenerator(cfg)
	orch := pipeline.NewOrchestrator(jobRepo, aicl, embedder, vacancies, cfg.LLMTemperature)
	proc := worker.NewProcessor(jobRepo, resRepo, orch)

	workers := redisq.NewWorkerPool(queue, proc.Handle, cfg.WorkerConcurrency)
	workers.Start(ctx)
	slog.Info("worker pool started", slog.Int("concurrency", cfg.WorkerConcurrency))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Stop dequeuing and let in-flight evaluations run to completion.
	workers.Stop()
	slog.Info("worker stopped")
}
