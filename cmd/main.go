package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/duynhne/pkg/logger/zerolog"

	"github.com/duynhne/yoga-service/config"
	database "github.com/duynhne/yoga-service/internal/core"
	"github.com/duynhne/yoga-service/internal/core/domain"
	"github.com/duynhne/yoga-service/internal/core/repository"
	"github.com/duynhne/yoga-service/internal/core/repository/sqlite"
	logicv1 "github.com/duynhne/yoga-service/internal/logic/v1"
	v1 "github.com/duynhne/yoga-service/internal/web/v1"
	"github.com/duynhne/yoga-service/middleware"
)

// storage bundles the repositories of the configured backend.
type storage struct {
	users    domain.UserRepository
	teachers domain.TeacherRepository
	sessions domain.SessionRepository
	close    func()
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig) (*storage, error) {
	if cfg.Driver == config.DriverSQLite {
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storage{
			users:    store.Users(),
			teachers: store.Teachers(),
			sessions: store.Sessions(),
			close:    func() { _ = store.Close() },
		}, nil
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &storage{
		users:    repository.NewUserRepository(pool),
		teachers: repository.NewTeacherRepository(pool),
		sessions: repository.NewSessionRepository(pool),
		close:    pool.Close,
	}, nil
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Configuration loading failed: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	// Initialize Zerolog with LOG_LEVEL from config
	zerolog.Setup(cfg.Logging.Level)

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("env", cfg.Service.Env).
		Str("port", cfg.Service.Port).
		Str("db_driver", cfg.Database.Driver).
		Msg("Service starting")

	// Initialize OpenTelemetry tracing
	var tp interface{ Shutdown(context.Context) error }
	if cfg.Tracing.Enabled {
		provider, err := middleware.InitTracing(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		} else {
			tp = provider
			log.Info().
				Str("endpoint", cfg.Tracing.Endpoint).
				Float64("sample_rate", cfg.Tracing.SampleRate).
				Msg("Tracing initialized")
		}
	} else {
		log.Info().Msg("Tracing disabled (TRACING_ENABLED=false)")
	}

	// Initialize Pyroscope profiling
	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize profiling")
		} else {
			log.Info().
				Str("endpoint", cfg.Profiling.Endpoint).
				Msg("Profiling initialized")
			defer middleware.StopProfiling()
		}
	} else {
		log.Info().Msg("Profiling disabled (PROFILING_ENABLED=false)")
	}

	// Open the configured storage backend and apply migrations
	store, err := openStorage(context.Background(), cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("Storage ready")

	tokens := logicv1.NewTokenService(cfg.JWT.Secret, cfg.TokenLifetime())
	auth := logicv1.NewAuthService(store.users, tokens)
	handler := v1.NewHandler(
		auth,
		logicv1.NewSessionService(store.sessions, store.users, store.teachers),
		logicv1.NewUserService(store.users),
		logicv1.NewTeacherService(store.teachers),
	)
	gate := middleware.NewGate(tokens, auth)

	if cfg.Service.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	var isShuttingDown atomic.Bool

	// Tracing middleware
	r.Use(middleware.TracingMiddleware())

	// Logging middleware
	r.Use(middleware.LoggingMiddleware())

	// Prometheus middleware
	r.Use(middleware.PrometheusMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness check
	// Returns 503 once shutdown has started, to drain traffic before HTTP shutdown.
	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API (bearer authentication resolved for every route)
	api := r.Group("/api", gate.Middleware())
	handler.RegisterRoutes(api)

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Service.Port).Msg("Starting yoga service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	// Fail readiness first and wait for propagation.
	isShuttingDown.Store(true)
	if drainDelay := cfg.Shutdown.ReadinessDrainDelay; drainDelay > 0 {
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay started")
		time.Sleep(drainDelay)
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay completed")
	}

	// Shutdown context with configurable timeout
	shutdownTimeout := cfg.Shutdown.Timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Dur("timeout", shutdownTimeout).Msg("Shutting down server...")

	// 1. Shutdown HTTP server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		log.Info().Msg("HTTP server shutdown complete")
	}

	// 2. Close database connections
	store.close()
	log.Info().Msg("Storage closed")

	// 3. Shutdown tracer
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Tracer shutdown error")
		} else {
			log.Info().Msg("Tracer shutdown complete")
		}
	}

	log.Info().Msg("Graceful shutdown complete")
}
