package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/callqa/internal/adapters/http/api"
	"github.com/okian/callqa/internal/adapters/http/swagger"
	"github.com/okian/callqa/internal/adapters/llm"
	"github.com/okian/callqa/internal/adapters/stt"
	app "github.com/okian/callqa/internal/app"
	"github.com/okian/callqa/internal/config"
	"github.com/okian/callqa/internal/domain/rubric"
	"github.com/okian/callqa/internal/domain/scoring"
	"github.com/okian/callqa/internal/telemetry"
	"github.com/okian/callqa/pkg/logger"
	"github.com/okian/callqa/pkg/metrics"
)

// HTTP server timeout constants.
const (
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithJSON(cfg.LogFormat == "json")); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Named("main")

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Exporter:     cfg.TraceExporter,
		ServiceName:  "callqa",
		Version:      version,
		OTLPEndpoint: cfg.OTLPEndpoint,
		OTLPInsecure: cfg.OTLPInsecure,
	}, logger.Named("telemetry"))
	if err != nil {
		log.Fatal(ctx, "failed to initialize telemetry", logger.Error(err))
	}

	svc := buildPipeline(ctx, cfg)
	svc.ReportCapabilities(ctx)

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           buildRouter(ctx, cfg, svc),
		ReadTimeout:       cfg.ReadTimeout(),
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error(ctx, "telemetry shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildPipeline wires the transcription and evaluation backends selected in
// cfg. A missing backend is not fatal: the pipeline serves degraded results.
func buildPipeline(ctx context.Context, cfg *config.Config) *app.Service {
	log := logger.Named("wiring")

	transcriber, err := stt.New(stt.Options{
		Backend:  cfg.STTProvider,
		Endpoint: cfg.STTEndpoint,
		APIKey:   cfg.STTAPIKey,
		Model:    cfg.STTModel,
		Command:  cfg.STTCommand,
		Language: cfg.STTLanguage,
		Timeout:  cfg.STTTimeout(),
	})
	if err != nil {
		log.Warn(ctx, "transcription backend unavailable", logger.String("provider", cfg.STTProvider), logger.Error(err))
	}

	generator, err := llm.New(llm.Options{
		Backend:  cfg.EvalProvider,
		Endpoint: cfg.EvalEndpoint,
		APIKey:   cfg.EvalAPIKey,
		Model:    cfg.EvalModel,
		Command:  cfg.EvalCommand,
		Timeout:  cfg.EvalTimeout(),
	})
	if err != nil {
		log.Warn(ctx, "evaluation backend unavailable", logger.String("provider", cfg.EvalProvider), logger.Error(err))
		generator = nil
	}

	engine := scoring.NewEngine(generator, rubric.Canonical(),
		scoring.WithMaxTokens(cfg.EvalMaxTokens),
		scoring.WithTemperature(cfg.EvalTemperature),
	)

	return app.New(transcriber, engine,
		app.WithLogger(logger.Named("pipeline")),
		app.WithProviders(transcriber.Name(), engine.Provider()),
	)
}

// buildRouter registers the API and docs routes.
func buildRouter(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	apiServer := api.NewServer(svc, svc,
		api.WithCORSOrigins(cfg.CORSAllowedOrigins),
		api.WithLogger(logger.Named("http")),
	)
	router := apiServer.Router()
	swagger.Register(ctx, router)
	return router
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
