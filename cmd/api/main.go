// Package main is the entry point for the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/nightpulse/internal/api"
	"github.com/onnwee/nightpulse/internal/auth"
	"github.com/onnwee/nightpulse/internal/config"
	"github.com/onnwee/nightpulse/internal/db"
	"github.com/onnwee/nightpulse/internal/event"
	"github.com/onnwee/nightpulse/internal/feed"
	"github.com/onnwee/nightpulse/internal/health"
	"github.com/onnwee/nightpulse/internal/hub"
	"github.com/onnwee/nightpulse/internal/jobs"
	"github.com/onnwee/nightpulse/internal/mapview"
	"github.com/onnwee/nightpulse/internal/middleware"
	"github.com/onnwee/nightpulse/internal/presence"
	"github.com/onnwee/nightpulse/internal/reputation"
	"github.com/onnwee/nightpulse/internal/ticketing"
	"github.com/onnwee/nightpulse/internal/venue"
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configFile := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	if *help {
		fmt.Println("Nightpulse API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configFile)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config error:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "settings", cfg.LogSummary())

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Repositories.
	venues := venue.NewPostgresRepository(database, logger)
	ratings := venue.NewPostgresRatingRepository(database, logger)
	events := event.NewPostgresRepository(database, logger)
	rsvps := event.NewPostgresRSVPRepository(database, logger)
	feedRepo := feed.NewPostgresRepository(database, logger)
	presenceRepo := presence.NewPostgresRepository(database, logger)
	repRepo := reputation.NewPostgresRepository(database, logger)
	chatRepo := hub.NewPostgresChatRepository(database, logger)

	// Domain services.
	presenceLedger := presence.NewLedger(presenceRepo, venues)
	repLedger := reputation.NewLedger(repRepo)
	broadcast := hub.New(logger)
	chat := hub.NewChatService(chatRepo, broadcast)
	engine := feed.NewEngine(feedRepo, api.NewCheckInCityResolver(presenceLedger, venues), cfg.DefaultCity)
	aggregator := mapview.NewAggregator(venues, events, engine, presenceLedger, logger)
	tickets := ticketing.NewClient(cfg.TicketingBaseURL, cfg.TicketingAPIKey, logger)

	jwtService := auth.NewJWTServiceWithRotation(cfg.JWTSecret, cfg.JWTPreviousSecret)

	// Metrics.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := middleware.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		logger.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}
	jobMetrics := jobs.NewMetrics()
	if err := jobMetrics.Register(registry); err != nil {
		logger.Error("failed to register job metrics", "error", err)
		os.Exit(1)
	}

	// Background sweep for abandoned check-ins.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go presence.NewSweeper(presenceRepo, venues, logger, jobMetrics).Run(sweepCtx)

	// Rate limiting backed by Redis when configured, in-memory
	// otherwise. The in-memory store is per-process and only suitable
	// for single-instance deployments.
	checkers := map[string]health.Checker{
		"database": health.NewDBChecker(database),
	}
	var rateLimitStore middleware.RateLimitStore
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opt)
		defer redisClient.Close()
		rateLimitStore = middleware.NewRedisRateLimitStore(redisClient).WithMetrics(metrics)
		checkers["redis"] = health.NewRedisChecker(redisClient)
	} else {
		logger.Warn("REDIS_URL not set, using in-memory rate limiting")
		memStore := middleware.NewInMemoryRateLimitStore()
		go func() {
			for range time.Tick(5 * time.Minute) {
				memStore.Cleanup()
			}
		}()
		rateLimitStore = memStore
	}

	mux := api.NewRouter(api.RouterDeps{
		Venues:         api.NewVenueHandlers(venues, ratings, events, engine),
		CheckIns:       api.NewCheckInHandlers(presenceLedger, venues, repLedger, engine),
		Events:         api.NewEventHandlers(events, rsvps, venues, engine),
		Feed:           api.NewFeedHandlers(engine),
		Map:            api.NewMapHandlers(aggregator),
		Reputation:     api.NewReputationHandlers(repLedger),
		Ticketing:      api.NewTicketingHandlers(tickets),
		Chat:           api.NewChatHandlers(broadcast, chat, venues),
		Health:         api.NewHealthHandlers(checkers),
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		RateLimitStore: rateLimitStore,
	})

	cors := middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	globalLimit := middleware.RateLimiter(rateLimitStore, middleware.DefaultGlobalLimit(), middleware.UserKeyFunc())

	// Middleware chain, outermost first: RequestID -> Logging -> CORS
	// -> Authenticate -> HTTPMetrics -> RateLimiter -> routes.
	var handler http.Handler = mux
	handler = globalLimit(handler)
	handler = middleware.HTTPMetrics(metrics)(handler)
	handler = middleware.Authenticate(jwtService)(handler)
	handler = cors(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
