// Package app opens the backends selected by the configuration and builds
// the core services on top of them.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leca/menudesk/internal/cache"
	"github.com/leca/menudesk/internal/config"
	"github.com/leca/menudesk/internal/database"
	"github.com/leca/menudesk/internal/draft"
	"github.com/leca/menudesk/internal/imageproc"
	"github.com/leca/menudesk/internal/localstore"
	"github.com/leca/menudesk/internal/metrics"
	"github.com/leca/menudesk/internal/notify"
	"github.com/leca/menudesk/internal/session"
	"github.com/leca/menudesk/internal/storage"
	"github.com/leca/menudesk/internal/upload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// App holds the opened backends and the services built on them.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Observer metrics.Observer

	Local    localstore.Store
	Sessions database.SessionStore
	Objects  storage.ObjectStore

	Optimizer *imageproc.Optimizer
	Uploads   *upload.Service
	Drafts    *draft.Store
	Cache     *cache.Store[json.RawMessage]
	Manager   *session.Manager

	closers []func() error
}

// New opens every backend named by cfg. On error, anything already opened
// is closed again.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger, Registry: prometheus.NewRegistry()}
	if err := a.open(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) open(ctx context.Context) error {
	cfg, logger := a.Config, a.Logger

	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	obs, err := metrics.NewPrometheusObserver("menudesk", a.Registry)
	if err != nil {
		return err
	}
	a.Observer = obs

	if a.Local, err = a.openLocal(ctx); err != nil {
		return err
	}
	if a.Sessions, err = a.openSessions(ctx); err != nil {
		return err
	}
	if a.Objects, err = a.openObjects(ctx); err != nil {
		return err
	}

	a.Optimizer = imageproc.New(notify.Logger{Log: logger},
		imageproc.WithObserver(obs),
		imageproc.WithLogger(logger),
	)
	a.Uploads = upload.New(a.Objects, a.Optimizer,
		upload.WithCacheControl(cfg.CacheControl),
		upload.WithObserver(obs),
		upload.WithLogger(logger),
	)
	a.Drafts = draft.New(a.Local, logger)
	a.Cache = cache.New[json.RawMessage](a.Local, logger)
	a.Manager = session.NewManager(a.Local, a.Sessions, obs, logger)
	return nil
}

// Close releases every opened backend.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openLocal(ctx context.Context) (localstore.Store, error) {
	cfg := a.Config
	switch cfg.LocalStore {
	case config.LocalStoreMemory:
		return localstore.NewMemory(), nil
	case config.LocalStoreSQLite:
		db, err := openSQLite(cfg.LocalDBPath)
		if err != nil {
			return nil, fmt.Errorf("open local store: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	case config.LocalStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		return localstore.NewRedis(client, cfg.RedisPrefix), nil
	}
	return nil, fmt.Errorf("unknown local store %q", cfg.LocalStore)
}

func (a *App) openSessions(ctx context.Context) (database.SessionStore, error) {
	cfg := a.Config
	switch cfg.SessionDBDriver {
	case config.SessionDBSQLite:
		db, err := openSQLite(cfg.SessionDBDSN)
		if err != nil {
			return nil, fmt.Errorf("open session database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	case config.SessionDBPostgres:
		pg, err := database.OpenPostgres(ctx, cfg.SessionDBDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		return pg, nil
	}
	return nil, fmt.Errorf("unknown session database driver %q", cfg.SessionDBDriver)
}

func (a *App) openObjects(ctx context.Context) (storage.ObjectStore, error) {
	cfg := a.Config
	switch cfg.ObjectStore {
	case config.ObjectStoreFileSystem:
		if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
		return storage.NewFileSystem(cfg.StoragePath, cfg.PublicBaseURL+"/assets"), nil
	case config.ObjectStoreS3:
		return storage.OpenS3(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
		})
	}
	return nil, fmt.Errorf("unknown object store %q", cfg.ObjectStore)
}

// openSQLite creates the parent directory of file-backed databases.
func openSQLite(dsn string) (*database.SQLiteDB, error) {
	if !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return database.NewSQLiteDB(dsn)
}
