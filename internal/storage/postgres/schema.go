package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE SCHEMA IF NOT EXISTS monster`,
	`CREATE TABLE IF NOT EXISTS monster.alarm (
		id             uuid PRIMARY KEY,
		hour           int NOT NULL,
		minute         int NOT NULL,
		label          text NOT NULL DEFAULT '',
		enabled        boolean NOT NULL DEFAULT true,
		repeat_days    int[] NOT NULL DEFAULT '{}',
		sound          text NOT NULL,
		snooze_enabled boolean NOT NULL DEFAULT true,
		snooze_count   int NOT NULL DEFAULT 0,
		last_triggered timestamptz,
		created_at     timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS monster.creature (
		id               int PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		name             text NOT NULL,
		hp               int NOT NULL,
		happiness        int NOT NULL,
		streak           int NOT NULL,
		best_streak      int NOT NULL,
		total_wake_ups   int NOT NULL,
		total_missed     int NOT NULL,
		dead             boolean NOT NULL,
		born_at          timestamptz NOT NULL,
		last_interaction timestamptz,
		unlocked         text[] NOT NULL DEFAULT '{}',
		equipped         jsonb NOT NULL DEFAULT '{}',
		stage            int NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS monster.wake_up_record (
		id              uuid PRIMARY KEY,
		alarm_id        uuid NOT NULL,
		created_at      timestamptz NOT NULL,
		scheduled_at    timestamptz NOT NULL,
		dismissed_at    timestamptz,
		snooze_count    int NOT NULL,
		result          text NOT NULL,
		response        text NOT NULL,
		hp_delta        int NOT NULL,
		happiness_delta int NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS wake_up_record_created_at_idx ON monster.wake_up_record (created_at DESC)`,
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	b := s.client.NewBatch()
	for _, stmt := range schema {
		b.Queue(stmt)
	}
	if err := s.client.SendBatch(ctx, b); err != nil {
		return fmt.Errorf("postgres - Migrate - SendBatch: %w", err)
	}
	return nil
}
