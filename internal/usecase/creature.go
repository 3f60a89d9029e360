package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Raimguhinov/sleep-monster/internal/creature"
	"github.com/Raimguhinov/sleep-monster/internal/stats"
)

func (s *Service) Creature(ctx context.Context) (*creature.Creature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadCreature(ctx)
}

// Revive brings the creature back. Unlocked accessories stay.
func (s *Service) Revive(ctx context.Context) (*creature.Creature, error) {
	return s.mutateCreature(ctx, "Revive", func(c *creature.Creature) error {
		s.engine.Revive(c, s.now())
		s.logger.Info("creature revived", slog.String("name", c.Name))
		return nil
	})
}

func (s *Service) Rename(ctx context.Context, name string) (*creature.Creature, error) {
	return s.mutateCreature(ctx, "Rename", func(c *creature.Creature) error {
		return c.Rename(name)
	})
}

func (s *Service) Equip(ctx context.Context, id string) (*creature.Creature, error) {
	return s.mutateCreature(ctx, "Equip", func(c *creature.Creature) error {
		return c.Equip(id)
	})
}

func (s *Service) Unequip(ctx context.Context, slot creature.Slot) (*creature.Creature, error) {
	return s.mutateCreature(ctx, "Unequip", func(c *creature.Creature) error {
		return c.Unequip(slot)
	})
}

func (s *Service) mutateCreature(ctx context.Context, op string, fn func(c *creature.Creature) error) (*creature.Creature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.loadCreature(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.SaveCreature(ctx, c); err != nil {
		return nil, fmt.Errorf("usecase - %s - SaveCreature: %w", op, err)
	}
	s.publish(ctx, c)
	return c, nil
}

// Records returns the wake-up log, newest first.
func (s *Service) Records(ctx context.Context) ([]*creature.WakeUpRecord, error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase - Records - ListRecords: %w", err)
	}
	return records, nil
}

type StatsResult struct {
	stats.Summary
	Year  int                     `json:"year"`
	Month time.Month              `json:"month"`
	Days  map[int]creature.Result `json:"days"`
}

// Stats summarizes the log. A zero year or month means the current one.
func (s *Service) Stats(ctx context.Context, year int, month time.Month) (*StatsResult, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}
	loc := s.scheduler.Location()
	return &StatsResult{
		Summary: stats.Summarize(records, now, loc),
		Year:    year,
		Month:   month,
		Days:    stats.Month(records, year, month, loc),
	}, nil
}
