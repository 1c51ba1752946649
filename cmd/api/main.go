package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supply-cart/internal/archive"
	"supply-cart/internal/cache"
	"supply-cart/internal/config"
	"supply-cart/internal/database"
	"supply-cart/internal/handler"
	"supply-cart/internal/repository"
	"supply-cart/internal/router"
	"supply-cart/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configFile string
	var migrate bool

	flagSet := pflag.NewFlagSet("supply-cart", pflag.ContinueOnError)
	flagSet.StringVar(&configFile, "config", "", "path to a configuration file (environment variables take precedence)")
	flagSet.BoolVar(&migrate, "migrate", false, "apply database migrations before serving")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger, os.Stdout)
	logger.Info().Msg("starting supply-cart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if migrate {
		if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize read cache
	backend, closeCache, err := newCache(ctx, cfg.Cache, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer closeCache()
	readThrough := cache.NewReadThrough(backend, cfg.Cache.TTL, logger)

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	submissionRepo := repository.NewSubmissionRepository(pool, logger)

	// Initialize services
	authService, err := service.NewAuthService(userRepo, cfg.Auth.AdminUsername, cfg.Auth.BcryptCost, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize auth service: %w", err)
	}
	cartService := service.NewCartService(cartRepo, readThrough, logger)
	submissionService := service.NewSubmissionService(submissionRepo, readThrough, logger)
	historyService := service.NewHistoryService(submissionRepo, readThrough, logger)
	exportService := service.NewExportService(historyService, newArchiveStore(ctx, cfg, logger), logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authService, logger),
		Cart:    handler.NewCartHandler(cartService, submissionService, logger),
		History: handler.NewHistoryHandler(historyService, logger),
		Export:  handler.NewExportHandler(exportService, logger),
	}

	// Initialize router
	mux := router.New(handlers, authService, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newCache builds the configured cache backend and a func releasing it.
func newCache(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger) (cache.Cache, func(), error) {
	if cfg.Backend != "redis" {
		logger.Info().Dur("ttl", cfg.TTL).Msg("using in-process cache")
		return cache.NewMemoryCache(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.TTL).Msg("using redis cache")
	return cache.NewRedisCache(client), func() { client.Close() }, nil
}

// newArchiveStore returns where export archives are kept, or nil when
// neither S3 nor a local directory is configured.
func newArchiveStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) archive.Store {
	var s3Store, dirStore archive.Store

	if cfg.Export.Dir != "" {
		dirStore = archive.NewDirStore(cfg.Export.Dir, logger)
	}

	if cfg.S3.Enabled {
		store, err := archive.NewS3Store(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 archive store, falling back to local directory only")
		} else {
			s3Store = store
		}
	}

	if s3Store == nil && dirStore == nil {
		logger.Info().Msg("export archives are not persisted (S3 disabled, EXPORT_DIR unset)")
		return nil
	}

	return archive.NewFallbackStore(s3Store, dirStore, cfg.S3.Prefix, s3Store != nil, logger)
}
