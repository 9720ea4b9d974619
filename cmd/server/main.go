package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"invosplit/internal/config"
	"invosplit/internal/extract"
	"invosplit/internal/handler"
	"invosplit/internal/inference"
	"invosplit/internal/inference/claude"
	"invosplit/internal/inference/gemini"
	"invosplit/internal/inference/openai"
	"invosplit/internal/layout"
	"invosplit/internal/normalize"
	"invosplit/internal/port"
	"invosplit/internal/repository/postgres"
	"invosplit/internal/router"
	"invosplit/internal/service"
	"invosplit/internal/split"
	"invosplit/internal/splitter"
	s3storage "invosplit/internal/storage/s3"
	"invosplit/internal/validate"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	batchRepo := postgres.NewBatchRepo(db)

	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	inferenceClient, err := buildInferenceClient(&cfg.Inference)
	if err != nil {
		return fmt.Errorf("failed to initialize inference client: %w", err)
	}

	layoutClient := layout.NewClient(&cfg.Layout)
	splitterClient := splitter.NewClient(&cfg.Splitter)

	detector := split.NewDetector(inferenceClient, cfg.Pipeline.PageByteBudget)
	orchestrator := extract.NewOrchestrator(layoutClient,
		extract.NewDeterministicSource(),
		extract.NewLookupSource(layoutClient, cfg.Layout.QueryBatchSize),
		extract.NewInferenceSource(inferenceClient),
	)
	guardrail := normalize.Guardrail{
		RatioHigh: cfg.Pipeline.GuardrailRatioHigh,
		RatioLow:  cfg.Pipeline.GuardrailRatioLow,
	}

	batchSvc := service.NewBatchService(
		batchRepo, s3Client, layoutClient, splitterClient,
		detector, orchestrator, guardrail, validate.DefaultEngine(), &cfg.S3,
	)

	batchH := handler.NewBatchHandler(batchSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(batchH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := service.NewProcessQueueWorker(batchRepo, batchSvc, service.ProcessQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workerDone
	return nil
}

// buildInferenceClient wires the provider registry and assembles the
// ordered fallback chain from config.
func buildInferenceClient(cfg *config.InferenceConfig) (port.InferenceClient, error) {
	inference.RegisterProvider("claude", func(c *config.InferenceProviderConfig) (port.InferenceClient, error) {
		return claude.NewClient(c), nil
	})
	inference.RegisterProvider("openai", func(c *config.InferenceProviderConfig) (port.InferenceClient, error) {
		return openai.NewClient(c), nil
	})
	inference.RegisterProvider("gemini", func(c *config.InferenceProviderConfig) (port.InferenceClient, error) {
		return gemini.NewClient(c), nil
	})

	primary, err := inference.NewClient(&cfg.Primary)
	if err != nil {
		return nil, err
	}
	clients := []port.InferenceClient{primary}
	names := []string{cfg.Primary.Provider}

	if secondary := cfg.SecondaryConfig(); secondary != nil {
		client, err := inference.NewClient(secondary)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
		names = append(names, secondary.Provider)
	}

	return inference.NewFallbackClient(clients, names), nil
}
