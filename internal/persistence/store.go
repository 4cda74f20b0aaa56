// Package persistence opens the record repository selected by configuration
// and exposes the client, site and technician directory stored alongside the
// reports. It is the only importer of the infra persistence backends.
package persistence

import (
	"context"
	"fmt"
	"io"

	"gasreport/internal/config"
	"gasreport/internal/infra/persistence/memory"
	"gasreport/internal/infra/persistence/postgres"
	"gasreport/internal/infra/persistence/sqlite"
	"gasreport/pkg/domain"
)

// Store is a Repository that owns a connection.
type Store interface {
	domain.Repository
	io.Closer
}

// Open builds the backend selected by cfg.Driver. SQL backends are migrated
// before they are returned.
func Open(ctx context.Context, cfg config.Storage) (Store, error) {
	switch cfg.Driver {
	case config.StorageMemory:
		return memory.NewStore(), nil
	case config.StorageSQLite, "":
		return sqlite.NewStore(ctx, cfg.SQLitePath)
	case config.StoragePostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}
