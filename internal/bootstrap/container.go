package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ncheta/ncheta/internal/auth"
	"github.com/ncheta/ncheta/internal/config"
	"github.com/ncheta/ncheta/internal/database"
	"github.com/ncheta/ncheta/internal/datasync"
	"github.com/ncheta/ncheta/internal/export"
	"github.com/ncheta/ncheta/internal/generation/openai"
	"github.com/ncheta/ncheta/internal/observable"
	"github.com/ncheta/ncheta/internal/pdf"
	"github.com/ncheta/ncheta/internal/remote"
	"github.com/ncheta/ncheta/internal/repository"
	"github.com/ncheta/ncheta/internal/scheduler"
	"github.com/ncheta/ncheta/internal/settings"
	"github.com/ncheta/ncheta/internal/store"
	"github.com/ncheta/ncheta/internal/subscription"
	"github.com/ncheta/ncheta/internal/subscription/revenuecat"
)

const jwtSecretFileName = "jwt.secret"

// Container holds every component built from a Config.
type Container struct {
	Config        *config.Config
	Local         *store.SQLiteStore
	Auth          *auth.Service
	Repository    *repository.Repository
	Generation    *openai.Client
	Settings      *settings.FileStore
	APIKey        observable.Observable[string]
	Subscriptions *subscription.Manager
	Exporter      *export.Writer
	Backup        *datasync.Exporter
	// Scheduler is nil when periodic sync is disabled.
	Scheduler *scheduler.Scheduler
}

// Build wires the components. Resources that need releasing are registered as
// shutdown hooks on app.
func Build(ctx context.Context, cfg *config.Config, app *App) (*Container, error) {
	dbDir := filepath.Dir(cfg.Local.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) > %w", dbDir, err)
	}
	db, err := database.OpenLocal(cfg.Local.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("database.OpenLocal() > %w", err)
	}
	app.AddShutdownHook(func(context.Context) error { return db.Close() })
	if err := database.Migrate(ctx, db, database.DialectSQLite); err != nil {
		return nil, fmt.Errorf("database.Migrate() > %w", err)
	}

	local, err := store.NewSQLiteStore(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("store.NewSQLiteStore() > %w", err)
	}

	secret, err := loadJWTSecret(cfg.Auth.JWTSecret, filepath.Join(dbDir, jwtSecretFileName))
	if err != nil {
		return nil, err
	}
	opts := auth.Options{BcryptCost: cfg.Auth.BcryptCost}
	if cfg.Auth.Google.ClientID != "" {
		opts.Google = auth.NewJWKSVerifier(cfg.Auth.Google, false)
	}
	if cfg.Auth.Apple.ClientID != "" {
		opts.Apple = auth.NewJWKSVerifier(cfg.Auth.Apple, true)
	}
	authService, err := auth.NewService(ctx,
		auth.NewUserRepository(db),
		auth.NewTokenIssuer(secret, cfg.Auth.SessionTTL()),
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("auth.NewService() > %w", err)
	}

	remoteStore, closeRemote, err := remote.New(ctx, cfg.Remote)
	if err != nil {
		return nil, fmt.Errorf("remote.New() > %w", err)
	}
	app.AddShutdownHook(func(context.Context) error { return closeRemote() })

	repo := repository.New(local, remoteStore, authService)

	generationClient := openai.NewClient(openai.Config{
		BaseURL:            cfg.Generation.BaseURL,
		Model:              cfg.Generation.Model,
		VisionModel:        cfg.Generation.VisionModel,
		TranscriptionModel: cfg.Generation.TranscriptionModel,
		MaxRetryAttempts:   cfg.Generation.MaxRetryAttempts,
		RequestsPerMinute:  cfg.Generation.RequestsPerMinute,
	})
	app.AddShutdownHook(func(context.Context) error { return generationClient.Close() })

	settingsStore, err := settings.NewFileStore(cfg.Settings.Path)
	if err != nil {
		return nil, fmt.Errorf("settings.NewFileStore() > %w", err)
	}
	fallbackKey := strings.TrimSpace(cfg.Generation.APIKey)
	apiKey := observable.Map(ctx, settingsStore.APIKey(), func(key string) string {
		if key == "" {
			return fallbackKey
		}
		return key
	})

	var subscriptionClient subscription.Client
	if cfg.Subscription.Provider == config.SubscriptionProviderRevenueCat {
		subscriptionClient = revenuecat.NewClient(revenuecat.Config{
			BaseURL:          cfg.Subscription.BaseURL,
			APIKey:           cfg.Subscription.APIKey,
			Platform:         cfg.Subscription.Platform,
			MaxRetryAttempts: cfg.Subscription.MaxRetryAttempts,
		})
	}
	manager := subscription.NewManager(subscriptionClient, authService, cfg.Subscription.Entitlement)

	c := &Container{
		Config:        cfg,
		Local:         local,
		Auth:          authService,
		Repository:    repo,
		Generation:    generationClient,
		Settings:      settingsStore,
		APIKey:        apiKey,
		Subscriptions: manager,
		Exporter: export.NewWriter(repo, cfg.Outputs.TemplatePath, cfg.Outputs.ExportDirectory, pdf.Layout{
			Orientation: cfg.Outputs.PDF.Orientation,
			PaperSize:   cfg.Outputs.PDF.PaperSize,
			Theme:       cfg.Outputs.PDF.Theme,
		}.Options()...),
		Backup: datasync.NewExporter(local),
	}
	if interval := cfg.Sync.Interval(); interval > 0 {
		c.Scheduler = scheduler.New(repo, manager, interval, cfg.Sync.OnStartup)
	}

	slog.Default().Debug("components ready",
		slog.String("remote", cfg.Remote.Backend),
		slog.String("subscriptions", cfg.Subscription.Provider),
		slog.Duration("syncInterval", cfg.Sync.Interval()),
	)
	return c, nil
}

// Background returns the long-running components: the settings file watcher,
// the entitlement follower and the sync scheduler when enabled.
func (c *Container) Background() []func(ctx context.Context) error {
	components := []func(ctx context.Context) error{
		c.Settings.Watch,
		func(ctx context.Context) error {
			return c.Subscriptions.Follow(ctx, c.Auth.User())
		},
	}
	if c.Scheduler != nil {
		components = append(components, c.Scheduler.Run)
	}
	return components
}

// loadJWTSecret returns the configured secret, or the one stored at path,
// creating it on first use.
func loadJWTSecret(configured, path string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if secret := strings.TrimSpace(string(data)); secret != "" {
			return []byte(secret), nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("rand.Read() > %w", err)
	}
	secret := hex.EncodeToString(buf)
	if err := os.WriteFile(path, []byte(secret+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	slog.Default().Info("created session signing secret", slog.String("path", path))
	return []byte(secret), nil
}
