package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type Batch struct {
	*pgx.Batch
}

func (p *Postgres) NewBatch() *Batch {
	return &Batch{Batch: &pgx.Batch{}}
}

// SendBatch executes every queued statement and stops at the first failure.
func (p *Postgres) SendBatch(ctx context.Context, b *Batch) error {
	br := p.Pool.SendBatch(ctx, b.Batch)
	defer br.Close()

	for i := range b.Len() {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch statement %d: %w", i, p.ToPgErr(err))
		}
	}
	return nil
}
