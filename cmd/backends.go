package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/database/mariadb"
	"github.com/facegate/facegate/internal/database/postgres"
	"github.com/facegate/facegate/internal/embedding"
)

// repositories bundles the storage backend a command runs against.
type repositories struct {
	people database.PersonRepository
	logs   database.LogRepository
	closer io.Closer
}

func (r *repositories) Close() {
	if r.closer != nil {
		_ = r.closer.Close()
	}
}

// openRepositories connects to the configured database driver and runs
// migrations. Postgres is the default; MariaDB is the blob-storage
// alternative for deployments without the pgvector extension.
func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.Database.Driver {
	case "", "postgres":
		if cfg.Database.URL == "" {
			return nil, errors.New("DATABASE_URL environment variable is required")
		}
		pool, err := postgres.NewPool(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to migrate PostgreSQL schema: %w", err)
		}
		fmt.Println("Using PostgreSQL backend")
		return &repositories{
			people: postgres.NewPersonRepository(pool),
			logs:   postgres.NewLogRepository(pool),
			closer: pool,
		}, nil

	case "mariadb":
		pool, err := mariadb.NewPool(cfg.Database.MariaDBDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MariaDB: %w", err)
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to migrate MariaDB schema: %w", err)
		}
		fmt.Println("Using MariaDB backend")
		return &repositories{
			people: mariadb.NewPersonRepository(pool),
			logs:   mariadb.NewLogRepository(pool),
			closer: pool,
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q (want postgres or mariadb)", cfg.Database.Driver)
	}
}

// newExtractor constructs the embedding backend and reports which one won.
func newExtractor(ctx context.Context, cfg *config.Config) (embedding.Extractor, error) {
	extractor, err := embedding.New(ctx, embedding.Config{
		ServiceURL:  cfg.Embedding.URL,
		Dim:         cfg.Embedding.Dim,
		CascadePath: cfg.Fallback.CascadePath,
	})
	if err != nil {
		return nil, err
	}
	fmt.Printf("Embedding backend: %s\n", extractor.Family())
	return extractor, nil
}
