package remote

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ncheta/ncheta/internal/config"
	"github.com/ncheta/ncheta/internal/database"
)

// New returns the remote store selected by cfg and a function that releases it.
// The store is nil when the backend is "none".
func New(ctx context.Context, cfg config.RemoteConfig) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.RemoteBackendNone, "":
		return nil, noop, nil
	case config.RemoteBackendMySQL, config.RemoteBackendPostgres:
		dbCfg := cfg.Database
		dbCfg.Driver = cfg.Backend
		db, err := database.Open(dbCfg)
		if err != nil {
			return nil, noop, fmt.Errorf("database.Open() > %w", err)
		}
		if err := database.Migrate(ctx, db, database.DialectFor(cfg.Backend)); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("database.Migrate() > %w", err)
		}
		slog.Default().Info("remote store ready", "backend", cfg.Backend, "host", dbCfg.Host)
		return NewSQLStore(db), db.Close, nil
	case config.RemoteBackendGCS:
		store, err := NewGCSStore(ctx, cfg.GCS)
		if err != nil {
			return nil, noop, err
		}
		slog.Default().Info("remote store ready", "backend", cfg.Backend, "bucket", cfg.GCS.Bucket)
		return store, store.Close, nil
	case config.RemoteBackendS3:
		store, err := NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, noop, err
		}
		slog.Default().Info("remote store ready", "backend", cfg.Backend, "bucket", cfg.S3.Bucket)
		return store, store.Close, nil
	}
	return nil, noop, fmt.Errorf("unsupported remote backend %q", cfg.Backend)
}
