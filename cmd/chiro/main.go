// Command chiro runs the clinical consultation service: a single REST
// endpoint that accepts a recorded visit, transcribes it, and generates
// the SOAP note, referral letter, and billing codes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OptimalGrowthPartner/Chiro-backend/config"
	"github.com/OptimalGrowthPartner/Chiro-backend/docgen"
	"github.com/OptimalGrowthPartner/Chiro-backend/llm"
	"github.com/OptimalGrowthPartner/Chiro-backend/llm/azopenai"
	"github.com/OptimalGrowthPartner/Chiro-backend/logger"
	"github.com/OptimalGrowthPartner/Chiro-backend/observability"
	"github.com/OptimalGrowthPartner/Chiro-backend/pipeline"
	"github.com/OptimalGrowthPartner/Chiro-backend/server"
	"github.com/OptimalGrowthPartner/Chiro-backend/server/endpoint"
	"github.com/OptimalGrowthPartner/Chiro-backend/speech"
	"github.com/OptimalGrowthPartner/Chiro-backend/storage"
	"github.com/OptimalGrowthPartner/Chiro-backend/util"
	"github.com/OptimalGrowthPartner/Chiro-backend/version"

	// Register storage providers.
	_ "github.com/OptimalGrowthPartner/Chiro-backend/storage/azblob"
	_ "github.com/OptimalGrowthPartner/Chiro-backend/storage/s3"
)

const serviceName = "chiro-backend"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run() error {
	var cfg config.AppConfig
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	log.Info("Starting service", map[string]interface{}{
		"name":        cfg.Name,
		"version":     version.GetShortVersion(),
		"environment": cfg.Environment,
	})
	log.Debug("Upstream backends", map[string]interface{}{
		"storage_provider": cfg.Storage.Provider,
		"speech_base_url":  cfg.Speech.BaseURL,
		"speech_api_key":   util.MaskSecret(cfg.Speech.APIKey, 4),
		"llm_base_url":     cfg.LLM.BaseURL,
		"llm_deployment":   cfg.LLM.Deployment,
		"llm_api_key":      util.MaskSecret(cfg.LLM.APIKey, 4),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownObservability, metrics, err := setupObservability(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownObservability()

	orchestrator, healthChecker, err := buildPipeline(cfg, log, metrics)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(cfg.Name, healthChecker)
	srv.RegisterConsultations(orchestrator)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	log.Info("Listening", map[string]interface{}{"addr": srv.Addr()})

	<-ctx.Done()
	log.Info("Shutdown signal received")

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Stop(stopCtx); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}

	log.Info("Shutdown complete")
	return nil
}

// buildPipeline wires the storage, transcription, and generation clients
// into the request orchestrator, and returns the component health checker
// for the /health endpoint.
func buildPipeline(cfg config.AppConfig, log *logger.Logger, metrics *observability.Metrics) (*pipeline.Orchestrator, endpoint.HealthChecker, error) {
	var providerCfg any
	switch cfg.Storage.Provider {
	case storage.ProviderAzureBlob:
		providerCfg = &cfg.Storage.AzBlob
	case storage.ProviderS3:
		providerCfg = &cfg.Storage.S3
	}
	store, err := storage.New(cfg.Storage.Config, providerCfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("building storage client: %w", err)
	}

	transcriber, err := speech.New(cfg.Speech, log)
	if err != nil {
		return nil, nil, fmt.Errorf("building speech client: %w", err)
	}

	completer, err := llm.NewWithDialect(&azopenai.Dialect{
		Deployment: cfg.LLM.Deployment,
		APIVersion: cfg.LLM.APIVersion,
	}, cfg.LLM.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("building llm adapter: %w", err)
	}
	generator := docgen.New(completer, log)

	orchestrator, err := pipeline.New(cfg.Pipeline, store, transcriber, generator, log, metrics)
	if err != nil {
		return nil, nil, err
	}

	checker := endpoint.Checks(storage.HealthCheck{Store: store}, transcriber)
	return orchestrator, checker, nil
}

// setupObservability initializes the OTLP exporters when enabled. The
// returned func flushes and shuts down both providers.
func setupObservability(ctx context.Context, cfg config.AppConfig) (func(), *observability.Metrics, error) {
	if !cfg.Observability.Enabled {
		return func() {}, nil, nil
	}

	tracerCfg := observability.DefaultTracerConfig(cfg.Name)
	tracerCfg.ServiceVersion = version.GetShortVersion()
	tracerCfg.Environment = cfg.Environment
	tracerCfg.Endpoint = cfg.Observability.Endpoint
	tracerCfg.Insecure = cfg.Observability.Insecure
	tracerCfg.SampleRate = cfg.Observability.SampleRate

	tracerProvider, err := observability.InitTracer(ctx, tracerCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing tracer: %w", err)
	}

	meterCfg := observability.DefaultMeterConfig(cfg.Name)
	meterCfg.ServiceVersion = tracerCfg.ServiceVersion
	meterCfg.Environment = cfg.Environment
	meterCfg.Endpoint = cfg.Observability.Endpoint
	meterCfg.Insecure = cfg.Observability.Insecure

	meterProvider, err := observability.InitMeter(ctx, &meterCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing meter: %w", err)
	}

	metrics, err := observability.NewMetrics(meterProvider.Meter(cfg.Name))
	if err != nil {
		return nil, nil, fmt.Errorf("creating metrics: %w", err)
	}

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			logger.Warn("Meter shutdown failed", map[string]interface{}{"error": err.Error()})
		}
		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.Warn("Tracer shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return shutdown, metrics, nil
}
