package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/unera/backend/internal/config"
	"github.com/unera/backend/internal/httpserver"
	"github.com/unera/backend/internal/logging"
)

// Run bootstraps the unera backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve, migrate, or seed")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "migrate":
		return runMigrations(ctx, args[1:])
	case "seed":
		return runSeed(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serve(ctx context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	rt, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
		defer cancel()
		if err := rt.Close(closeCtx); err != nil {
			logger.Error("release dependencies", "error", err)
		}
	}()

	rt.loader.Start(ctx)

	srv := httpserver.New(cfg.AppPort, rt.handler, logger)
	logger.Info("starting http server", "port", cfg.AppPort, "backend", cfg.StateBackend)

	return httpserver.Run(ctx, srv, nil, logger)
}
