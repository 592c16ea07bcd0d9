package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ncheta/ncheta/internal/bootstrap"
	"github.com/ncheta/ncheta/internal/config"
	"github.com/ncheta/ncheta/internal/server"
)

var (
	configFile      string
	practiceIdleTTL time.Duration
)

func main() {
	var debugMode bool
	rootCmd := &cobra.Command{
		Use:           "ncheta-server",
		Short:         "Ncheta HTTP API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(debugMode)
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				slog.Default().Warn("failed to load .env", "error", err)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")
	rootCmd.Flags().DurationVar(&practiceIdleTTL, "practice-idle-ttl", time.Hour, "how long an unused practice session is kept")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	c, err := bootstrap.Build(ctx, cfg, app)
	if err != nil {
		_ = app.Shutdown(context.Background())
		return fmt.Errorf("bootstrap.Build() > %w", err)
	}

	handler := server.NewHandler(ctx, server.Dependencies{
		Repository:      c.Repository,
		Generation:      c.Generation,
		Settings:        c.Settings,
		Auth:            c.Auth,
		Paywall:         c.Subscriptions,
		Premium:         c.Subscriptions,
		Exporter:        c.Exporter,
		Backup:          c.Backup,
		APIKey:          c.APIKey,
		BackupDirectory: cfg.Outputs.BackupDirectory,
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		PracticeIdleTTL: practiceIdleTTL,
	})
	app.AddShutdownHook(func(context.Context) error {
		handler.Close()
		return nil
	})

	srv := server.New(cfg.Server.Port, handler.Router())
	components := append([]func(ctx context.Context) error{srv.Run}, c.Background()...)
	return app.Run(ctx, components...)
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})),
	)
}
