// Package main is the entry point for the content planner API server.
// It loads configuration, opens the configured storage backend, sets up
// routing, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"contentplanner/internal/cache"
	"contentplanner/internal/config"
	"contentplanner/internal/database"
	"contentplanner/internal/handlers"
	"contentplanner/internal/middleware"
	"contentplanner/internal/router"
	"contentplanner/internal/store"
)

func main() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON elsewhere.
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"db_driver", cfg.DBDriver,
		"cache", cfg.CacheEnabled,
	)

	repo, closer, err := openRepository(cfg)
	if err != nil {
		slog.Error("failed to open storage", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	// Seed demo data (no-op if the table already has rows).
	if cfg.SeedDemoContent {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := database.Seed(ctx, repo)
		cancel()
		if err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Valkey read-through cache (optional).
	var pieceCache *cache.PieceCache
	if cfg.CacheEnabled {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()

		pieceCache = cache.NewPieceCache(valkeyClient, cache.DefaultPieceTTL)
		// Entries may predate a restart against a different database.
		pieceCache.InvalidateAll(context.Background())
	} else {
		slog.Info("piece cache disabled")
	}

	var limiter *middleware.WriteLimiter
	if cfg.WriteRateLimit > 0 {
		limiter = middleware.NewWriteLimiter(cfg.WriteRateLimit, time.Minute)
		defer limiter.Stop()
	}

	content := handlers.NewContent(repo, pieceCache)
	r := router.New(content, cfg.AllowedOrigins, limiter)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-serverErr:
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// openRepository connects the storage backend selected by DB_DRIVER. The
// returned closer releases its connections.
func openRepository(cfg *config.Config) (store.Repository, io.Closer, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store.NewPostgresStore(db), db, nil

	case config.DriverMySQL:
		db, err := database.OpenMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		return store.NewGormStore(db), sqlDB, nil

	case config.DriverMemory:
		slog.Warn("using in-memory storage; data is lost on restart")
		return store.NewMemoryStore(), closerFunc(func() error { return nil }), nil
	}
	return nil, nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
}

// closerFunc adapts a function to io.Closer.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }
