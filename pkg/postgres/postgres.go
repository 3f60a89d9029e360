// Package postgres wraps a pgx pool with connect retries, a squirrel
// builder and transaction helpers.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	adapter "github.com/Raimguhinov/sleep-monster/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	_defaultMaxPoolSize  = 1
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
)

// Postgres -.
type Postgres struct {
	maxPoolSize  int
	connAttempts int
	connTimeout  time.Duration

	Builder squirrel.StatementBuilderType
	Pool    *pgxpool.Pool
}

// New -.
func New(ctx context.Context, logger *adapter.Logger, url string, opts ...Option) (*Postgres, error) {
	pg := &Postgres{
		maxPoolSize:  _defaultMaxPoolSize,
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
	}

	// Custom options
	for _, opt := range opts {
		opt(pg)
	}

	pg.Builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("postgres - New - pgxpool.ParseConfig: %w", err)
	}

	poolConfig.MaxConns = int32(pg.maxPoolSize)
	poolConfig.ConnConfig.Tracer = adapter.NewTracer(logger)

	for attempt := 1; ; attempt++ {
		pg.Pool, err = pg.connect(ctx, poolConfig)
		if err == nil {
			break
		}
		if attempt >= pg.connAttempts {
			return nil, fmt.Errorf("postgres - New - %d attempts: %w", attempt, err)
		}

		logger.Warn("postgres is trying to connect",
			slog.Int("attempts_left", pg.connAttempts-attempt),
			adapter.Err(err),
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("postgres - New: %w", ctx.Err())
		case <-time.After(pg.connTimeout):
		}
	}

	logger.Info("postgres connected", slog.Int("max_conns", int(poolConfig.MaxConns)))

	return pg, nil
}

func (p *Postgres) connect(ctx context.Context, poolConfig *pgxpool.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.connTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Close -.
func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}
