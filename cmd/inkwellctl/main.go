// Command inkwellctl is the operator CLI for inkwell: schema migrations,
// development seed data, account creation and bearer token issuance.
package main

import (
	"context"
	"log/slog"
	"os"

	"inkwell/internal/backend"
	"inkwell/internal/config"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := newRootCmd(openConfigured).Execute(); err != nil {
		os.Exit(1)
	}
}

// openConfigured loads configuration from the environment and opens the
// configured store.
func openConfigured(ctx context.Context) (*backend.Backend, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	be, err := backend.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return be, cfg, nil
}
