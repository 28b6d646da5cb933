package db

import (
	"context"
	"errors"
	"fmt"

	"moodlog/internal/auth"
	"moodlog/internal/config"
	"moodlog/internal/jobs"
	"moodlog/internal/mood"
)

// Backend bundles the stores for one storage driver.
type Backend struct {
	Moods mood.Store
	Users auth.UserStore
	Jobs  jobs.Repo

	close func(context.Context) error
}

func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// prepare runs schema setup against a freshly opened backend and releases
// the connection when setup fails.
func (b *Backend) prepare(ctx context.Context, setup func(context.Context) error) (*Backend, error) {
	if err := setup(ctx); err != nil {
		if cerr := b.Close(context.Background()); cerr != nil {
			return nil, errors.Join(err, fmt.Errorf("close after failed setup: %w", cerr))
		}
		return nil, err
	}
	return b, nil
}

func NewMemoryBackend() *Backend {
	return &Backend{
		Moods: mood.NewMemStore(),
		Users: auth.NewMemUserStore(),
		Jobs:  jobs.NewMemRepo(),
	}
}

// Open connects the configured driver. When migrate is set the schema and
// indexes are brought up to date first.
func Open(ctx context.Context, cfg config.Config, migrate bool) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return NewMemoryBackend(), nil

	case config.DriverPostgres:
		gdb, err := Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b := &Backend{
			Moods: &mood.PGStore{DB: gdb},
			Users: &auth.PGUserStore{DB: gdb},
			Jobs:  &jobs.PGRepo{DB: gdb},
			close: func(context.Context) error {
				sqlDB, err := gdb.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		}
		if migrate {
			return b.prepare(ctx, func(context.Context) error {
				if err := AutoMigrateAndIndexes(gdb); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				return nil
			})
		}
		return b, nil

	case config.DriverMongo:
		mdb, err := ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		b := &Backend{
			Moods: mood.NewMongoStore(mdb),
			Users: auth.NewMongoUserStore(mdb),
			Jobs:  jobs.NewMongoRepo(mdb),
			close: mdb.Client().Disconnect,
		}
		if migrate {
			return b.prepare(ctx, func(ctx context.Context) error {
				return EnsureMongoIndexes(ctx, mdb)
			})
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
