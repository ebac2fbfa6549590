// Package main is the entry point for the inkwell API server.
// It loads configuration, opens the selected store, sets up routing, and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/backend"
	"inkwell/internal/blog"
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/identity"
	"inkwell/internal/middleware"
	"inkwell/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON otherwise.
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreDriver,
	)

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := be.Close(closeCtx); err != nil {
			slog.Error("close store", "error", err)
		}
	}()

	if err := be.Migrate(ctx); err != nil {
		return err
	}

	authority := identity.New(cfg.JWTSecret, cfg.JWTIssuer)

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := be.Seed(ctx); err != nil {
			return err
		}
		if cfg.StoreDriver == config.DriverMemory {
			logDevTokens(ctx, be, authority)
		}
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitWrites > 0 {
		valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
		if err != nil {
			return err
		}
		defer valkeyClient.Close()
		limiter = middleware.NewRateLimiter(valkeyClient, cfg.RateLimitWrites, cfg.RateLimitWindow).TrustProxy(cfg.TrustProxy)
	} else {
		slog.Warn("write rate limiting disabled")
	}

	posts := blog.NewPostService(be.Posts, be.Categories, be.Users, cfg.SearchMaxResults)
	categories := blog.NewCategoryService(be.Categories, be.Posts, be.Users)

	r := router.New(router.Deps{
		Posts:      handlers.NewPosts(posts),
		Categories: handlers.NewCategories(categories),
		Verifier:   authority,
		Users:      be.Users,
		Limiter:    limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// logDevTokens prints bearer tokens for the seeded accounts. The memory
// store starts empty on every run, so there is no other way to obtain one.
func logDevTokens(ctx context.Context, be *backend.Backend, authority *identity.Authority) {
	for _, name := range []string{database.SeedAdminUsername, database.SeedUserUsername} {
		u, err := be.Users.FindByUsername(ctx, name)
		if err != nil || u == nil {
			continue
		}
		token, err := authority.Issue(u, identity.DefaultTTL)
		if err != nil {
			slog.Error("issue development token", "user", name, "error", err)
			continue
		}
		slog.Info("development token", "user", name, "token", token)
	}
}
