// Package storage opens the persistence backend named by a URL.
package storage

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Raimguhinov/sleep-monster/internal/storage/memory"
	storagepg "github.com/Raimguhinov/sleep-monster/internal/storage/postgres"
	"github.com/Raimguhinov/sleep-monster/internal/usecase"
	"github.com/Raimguhinov/sleep-monster/pkg/logger"
	"github.com/Raimguhinov/sleep-monster/pkg/postgres"
)

// NewFromURL returns a memory store for memory:// and a migrated PostgreSQL
// store for postgres:// or postgresql://.
func NewFromURL(ctx context.Context, storageURL string, poolMax int, l *logger.Logger) (usecase.Store, error) {
	u, err := url.Parse(storageURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing storage URL: %s", err.Error())
	}

	switch u.Scheme {
	case "memory":
		l.Warn("using in-memory storage, state is lost on restart")
		return memory.New(), nil
	case "postgres", "postgresql":
		var opts []postgres.Option
		if poolMax > 0 {
			opts = append(opts, postgres.MaxPoolSize(poolMax))
		}
		pg, err := postgres.New(ctx, l, storageURL, opts...)
		if err != nil {
			return nil, fmt.Errorf("storage - NewFromURL - postgres.New: %w", err)
		}
		store := storagepg.New(pg, l.Component("storage"))
		if err := store.Migrate(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("storage - NewFromURL - Migrate: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("no storage provider found for %s:// URL", u.Scheme)
	}
}
