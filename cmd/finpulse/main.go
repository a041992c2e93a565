package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finpulse/finpulse-api-go/internal/config"
	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/handler"
	"github.com/finpulse/finpulse-api-go/internal/infra/cache"
	"github.com/finpulse/finpulse-api-go/internal/infra/client"
	"github.com/finpulse/finpulse-api-go/internal/infra/observability"
	"github.com/finpulse/finpulse-api-go/internal/infra/resilience"
	"github.com/finpulse/finpulse-api-go/internal/infra/sqlite"
	"github.com/finpulse/finpulse-api-go/internal/infra/supabase"
	"github.com/finpulse/finpulse-api-go/internal/port"
	"github.com/finpulse/finpulse-api-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_supabase", cfg.UseSupabase),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("market_cache_ttl", cfg.MarketCacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "finpulse-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Caches ---
	profileCache := cache.New[*domain.UserProfile](cfg.CacheTTL)
	marketCache := cache.New[*domain.MarketData](cfg.MarketCacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	storeCB := resilience.NewCircuitBreaker("store")
	reportCB := resilience.NewCircuitBreaker("report-generator")
	marketCB := resilience.NewCircuitBreaker("market-data")
	marketBulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Store ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var store port.Store
	if cfg.UseSupabase && cfg.SupabaseURL != "" {
		logger.Info("using Supabase as data backend",
			zap.String("supabase_url", cfg.SupabaseURL),
		)
		store = supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			storeCB,
			resilienceCfg,
			logger,
		)
	} else {
		logger.Info("using local SQLite as data backend",
			zap.String("path", cfg.SQLitePath),
		)
		localStore, err := sqlite.NewStore(cfg.SQLitePath, logger)
		if err != nil {
			logger.Fatal("failed to open local store", zap.Error(err))
		}
		defer localStore.Close()
		store = localStore
	}

	// --- Upstream clients ---
	// The chat gateway streams; a shared whole-request timeout would cut
	// long completions mid-stream, so it gets its own client that only
	// bounds connection setup.
	chatGateway := client.NewChatGatewayClient(client.NewStreamingHTTPClient(cfg.HTTPTimeout), cfg.ChatGatewayURL, cfg.ChatGatewayKey)
	reportClient := client.NewReportClient(httpClient, cfg.ReportAPIURL, reportCB)
	marketClient := client.NewMarketClient(httpClient, cfg.MarketAPIURL, cfg.MarketAPIKey, marketCB, marketBulkhead, resilienceCfg)

	// --- Services ---
	wellnessSvc := service.NewWellness(store, profileCache, metrics, logger)
	coachSvc := service.NewCoach(chatGateway, wellnessSvc, metrics, logger)
	reportsSvc := service.NewReports(reportClient, wellnessSvc, metrics, logger)
	marketSvc := service.NewMarket(marketClient, marketCache, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Wellness: wellnessSvc,
		Coach:    coachSvc,
		Reports:  reportsSvc,
		Market:   marketSvc,
	}, metrics, cfg.JWTSecret, cfg.AllowedOrigins, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // chat responses stream; the write deadline would cut them off
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
