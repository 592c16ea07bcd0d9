package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ncheta/ncheta/internal/bootstrap"
	"github.com/ncheta/ncheta/internal/config"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// withContainer builds the components for a single command, refreshes the
// premium flag of the signed-in user and releases everything once fn returns.
func withContainer(ctx context.Context, fn func(ctx context.Context, c *bootstrap.Container) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app := bootstrap.New()
	defer func() {
		if err := app.Shutdown(context.Background()); err != nil {
			slog.Default().Warn("failed to release resources", "error", err)
		}
	}()

	c, err := bootstrap.Build(ctx, cfg, app)
	if err != nil {
		return fmt.Errorf("bootstrap.Build() > %w", err)
	}
	if _, err := c.Subscriptions.Refresh(ctx); err != nil {
		slog.Default().Warn("failed to refresh premium entitlement", "error", err)
	}
	return fn(ctx, c)
}

// userError turns a session message into an error without repeating internal details.
func userError(message string) error {
	return errors.New(message)
}
