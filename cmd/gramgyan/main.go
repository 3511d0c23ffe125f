package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/gramgyan/gramgyan/internal/config"
	dbRedis "github.com/gramgyan/gramgyan/internal/db/redis"
	"github.com/gramgyan/gramgyan/internal/domain"
	"github.com/gramgyan/gramgyan/internal/events/kafka"
	logpkg "github.com/gramgyan/gramgyan/internal/logger"
	"github.com/gramgyan/gramgyan/internal/metrics"
	matchrepo "github.com/gramgyan/gramgyan/internal/repository/match"
	reportrepo "github.com/gramgyan/gramgyan/internal/repository/report"
	solutionrepo "github.com/gramgyan/gramgyan/internal/repository/solution"
	chiTransport "github.com/gramgyan/gramgyan/internal/transport/chi"
	"github.com/gramgyan/gramgyan/internal/transport/gemini"
	"github.com/gramgyan/gramgyan/internal/transport/httpfetch"
	openaiProv "github.com/gramgyan/gramgyan/internal/transport/openai"
	advisoryuc "github.com/gramgyan/gramgyan/internal/usecase/advisory"
	embeddinguc "github.com/gramgyan/gramgyan/internal/usecase/embedding"
	healthuc "github.com/gramgyan/gramgyan/internal/usecase/health"
	lookupuc "github.com/gramgyan/gramgyan/internal/usecase/lookup"
	normalizeuc "github.com/gramgyan/gramgyan/internal/usecase/normalize"
	pipelineuc "github.com/gramgyan/gramgyan/internal/usecase/pipeline"
	resolveuc "github.com/gramgyan/gramgyan/internal/usecase/resolve"
	reviewuc "github.com/gramgyan/gramgyan/internal/usecase/review"
	synthesisuc "github.com/gramgyan/gramgyan/internal/usecase/synthesis"
	transcribeuc "github.com/gramgyan/gramgyan/internal/usecase/transcribe"
	"github.com/gramgyan/gramgyan/internal/version"
)

// checkedGenerator is a generation provider that can report its own health.
type checkedGenerator interface {
	domain.Generator
	domain.HealthChecker
}

// checkedEmbedder is an embedding provider that can report its own health.
type checkedEmbedder interface {
	domain.Embedder
	domain.HealthChecker
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting gramgyan API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("generation_provider", cfg.Generation.Provider),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	// Valkey and Redis 8+ share the rueidis store; the driver only matters for logs.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Database.Addrs,
		Password:   cfg.Database.Password,
		Standalone: cfg.Database.Standalone,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register provider and pipeline metrics explicitly (no init())
	metrics.Register()

	generator, err := buildGenerator(cfg.Generation, logger)
	if err != nil {
		logger.Fatal("Failed to create generation provider", zap.Error(err))
	}
	embedder, err := buildEmbedder(cfg.Embedding, logger)
	if err != nil {
		logger.Fatal("Failed to create embedding provider", zap.Error(err))
	}
	logger.Info("Providers created",
		zap.String("generation_model", cfg.Generation.Model),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Repositories
	prefix := cfg.Storage.KeyPrefix
	reports := reportrepo.New(store, prefix, cfg.Embedding.Dimensions).WithHNSW(reportrepo.HNSWConfig{
		M:           cfg.Storage.HNSWM,
		EFConstruct: cfg.Storage.HNSWEFConstruct,
	})
	if err := reports.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure report index", zap.Error(err))
	}
	solutions := solutionrepo.New(store, prefix)
	matches := matchrepo.New(store, reports.IndexName(), prefix+"report:")

	// Use case services
	normalizeSvc := normalizeuc.New(generator)
	embeddingSvc := embeddinguc.New(embedder)
	resolveSvc := resolveuc.New(matches).
		WithThreshold(cfg.Pipeline.SimilarityThreshold).
		WithCount(cfg.Pipeline.MatchCount)
	synthesisSvc := synthesisuc.New(generator)

	pipelineSvc := pipelineuc.New(
		normalizeSvc, embeddingSvc, resolveSvc, synthesisSvc, reports, solutions, logger,
	).WithSearchPolicy(pipelineuc.SearchPolicy(cfg.Pipeline.SearchFailurePolicy))

	var publisher *kafka.Publisher
	if cfg.Events.Enabled() {
		publisher, err = kafka.NewPublisher(kafka.Config{
			Brokers:      cfg.Events.Brokers,
			Topic:        cfg.Events.Topic,
			WriteTimeout: time.Duration(cfg.Events.WriteTimeoutSec) * time.Second,
		})
		if err != nil {
			logger.Fatal("Failed to create event publisher", zap.Error(err))
		}
		pipelineSvc = pipelineSvc.WithEvents(publisher)
		logger.Info("Report events enabled",
			zap.Strings("brokers", cfg.Events.Brokers),
			zap.String("topic", cfg.Events.Topic),
		)
	}

	fetcher := httpfetch.New(
		time.Duration(cfg.Transcription.FetchTimeoutSec)*time.Second,
		cfg.Transcription.MaxAudioBytes,
	).WithPrivateAddrs(cfg.Transcription.AllowPrivateAddrs)
	transcribeSvc := transcribeuc.New(fetcher, generator).WithMIMEType(cfg.Transcription.AudioMIMEType)
	reviewSvc := reviewuc.New(reports)
	lookupSvc := lookupuc.New(reports, solutions)
	advisorySvc := advisoryuc.New(generator, fetcher)
	healthSvc := healthuc.New(store, embedder, generator)

	// Create chi server
	server := chiTransport.NewServer(
		pipelineSvc, transcribeSvc, reviewSvc, lookupSvc, advisorySvc, healthSvc, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedHeaders))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("Error closing event publisher", zap.Error(err))
		}
	}

	logger.Info("Server stopped gracefully")
}

// buildGenerator selects the text generation provider.
func buildGenerator(cfg config.GenerationConfig, logger *zap.Logger) (checkedGenerator, error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	switch cfg.Provider {
	case config.ProviderGemini:
		gen, err := gemini.NewGenerator(&gemini.Config{
			BaseURL: cfg.BaseURL,
			APIKeys: cfg.APIKeys,
			Model:   cfg.Model,
			Timeout: timeout,
			Logger:  logger,
		})
		if err != nil {
			// Return a nil interface, not a typed nil *gemini.Generator.
			return nil, err
		}
		return gen, nil
	case config.ProviderOpenAI:
		return openaiProv.NewGenerator(&openaiProv.Config{
			APIKey:   firstKey(cfg.APIKeys),
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Provider: cfg.Provider,
			Timeout:  timeout,
			Logger:   logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}

// buildEmbedder assembles the embedding chain: provider -> Instrumented.
func buildEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) (checkedEmbedder, error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	var base domain.Embedder
	switch cfg.Provider {
	case config.ProviderGemini:
		emb, err := gemini.NewEmbedder(&gemini.Config{
			BaseURL:    cfg.BaseURL,
			APIKeys:    cfg.APIKeys,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    timeout,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		base = emb
	case config.ProviderOpenAI:
		base = openaiProv.NewEmbedder(&openaiProv.Config{
			APIKey:     firstKey(cfg.APIKeys),
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Timeout:    timeout,
			Logger:     logger,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	return embeddinguc.NewInstrumentedEmbedder(base, cfg.Provider, cfg.Model, logger), nil
}

func firstKey(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
