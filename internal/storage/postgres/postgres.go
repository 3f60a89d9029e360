// Package postgres persists alarms, the creature and the wake-up log in
// PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Raimguhinov/sleep-monster/internal/alarm"
	"github.com/Raimguhinov/sleep-monster/internal/creature"
	"github.com/Raimguhinov/sleep-monster/internal/usecase"
	"github.com/Raimguhinov/sleep-monster/pkg/logger"
	"github.com/Raimguhinov/sleep-monster/pkg/postgres"
)

const (
	alarmTable    = "monster.alarm"
	creatureTable = "monster.creature"
	recordTable   = "monster.wake_up_record"
)

var (
	alarmColumns = []string{
		"id", "hour", "minute", "label", "enabled", "repeat_days",
		"sound", "snooze_enabled", "snooze_count", "last_triggered",
	}
	creatureColumns = []string{
		"name", "hp", "happiness", "streak", "best_streak", "total_wake_ups",
		"total_missed", "dead", "born_at", "last_interaction", "unlocked", "equipped", "stage",
	}
	recordColumns = []string{
		"id", "alarm_id", "created_at", "scheduled_at", "dismissed_at", "snooze_count",
		"result", "response", "hp_delta", "happiness_delta",
	}
)

type Store struct {
	client *postgres.Postgres
	logger *logger.Logger
}

var _ usecase.Store = (*Store)(nil)

func New(client *postgres.Postgres, l *logger.Logger) *Store {
	return &Store{client: client, logger: l}
}

func (s *Store) ListAlarms(ctx context.Context) ([]*alarm.Alarm, error) {
	s.logger.Debug("postgres.ListAlarms")

	sql, args, err := s.client.Builder.
		Select(alarmColumns...).
		From(alarmTable).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres - ListAlarms - ToSql: %w", err)
	}

	rows, err := s.client.Pool.Query(ctx, sql, args...)
	if err != nil {
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.ListAlarms", logger.Err(err))
		return nil, err
	}
	defer rows.Close()

	var out []*alarm.Alarm
	for rows.Next() {
		a, err := scanAlarm(rows)
		if err != nil {
			err = s.client.ToPgErr(err)
			s.logger.Error("postgres.ListAlarms", logger.Err(err))
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetAlarm(ctx context.Context, id uuid.UUID) (*alarm.Alarm, error) {
	s.logger.Debug("postgres.GetAlarm")

	sql, args, err := s.client.Builder.
		Select(alarmColumns...).
		From(alarmTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres - GetAlarm - ToSql: %w", err)
	}

	a, err := scanAlarm(s.client.Pool.QueryRow(ctx, sql, args...))
	if postgres.IsNoRows(err) {
		return nil, usecase.ErrNotFound
	}
	if err != nil {
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.GetAlarm", logger.Err(err))
		return nil, err
	}
	return a, nil
}

func scanAlarm(row pgx.Row) (*alarm.Alarm, error) {
	var a alarm.Alarm
	err := row.Scan(
		&a.ID, &a.Hour, &a.Minute, &a.Label, &a.Enabled, &a.RepeatDays,
		&a.Sound, &a.SnoozeEnabled, &a.SnoozeCount, &a.LastTriggered,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) SaveAlarm(ctx context.Context, a *alarm.Alarm) error {
	s.logger.Debug("postgres.SaveAlarm")

	sql, args, err := upsertAlarm(s.client.Builder, a)
	if err != nil {
		return fmt.Errorf("postgres - SaveAlarm - upsertAlarm: %w", err)
	}
	if _, err := s.client.Pool.Exec(ctx, sql, args...); err != nil {
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.SaveAlarm", logger.Err(err))
		return err
	}
	return nil
}

func upsertAlarm(b squirrel.StatementBuilderType, a *alarm.Alarm) (string, []any, error) {
	days := a.RepeatDays
	if days == nil {
		days = []int{}
	}
	return b.Insert(alarmTable).
		Columns(alarmColumns...).
		Values(a.ID, a.Hour, a.Minute, a.Label, a.Enabled, days,
			a.Sound, a.SnoozeEnabled, a.SnoozeCount, a.LastTriggered).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			hour = EXCLUDED.hour,
			minute = EXCLUDED.minute,
			label = EXCLUDED.label,
			enabled = EXCLUDED.enabled,
			repeat_days = EXCLUDED.repeat_days,
			sound = EXCLUDED.sound,
			snooze_enabled = EXCLUDED.snooze_enabled,
			snooze_count = EXCLUDED.snooze_count,
			last_triggered = EXCLUDED.last_triggered`).
		ToSql()
}

func (s *Store) DeleteAlarm(ctx context.Context, id uuid.UUID) error {
	s.logger.Debug("postgres.DeleteAlarm")

	sql, args, err := s.client.Builder.
		Delete(alarmTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("postgres - DeleteAlarm - ToSql: %w", err)
	}

	tag, err := s.client.Pool.Exec(ctx, sql, args...)
	if err != nil {
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.DeleteAlarm", logger.Err(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return usecase.ErrNotFound
	}
	return nil
}

func (s *Store) GetCreature(ctx context.Context) (*creature.Creature, error) {
	s.logger.Debug("postgres.GetCreature")

	sql, args, err := s.client.Builder.
		Select(creatureColumns...).
		From(creatureTable).
		Where(squirrel.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres - GetCreature - ToSql: %w", err)
	}

	var (
		c     creature.Creature
		stage int
	)
	err = s.client.Pool.QueryRow(ctx, sql, args...).Scan(
		&c.Name, &c.HP, &c.Happiness, &c.Streak, &c.BestStreak, &c.TotalWakeUps,
		&c.TotalMissed, &c.Dead, &c.BornAt, &c.LastInteraction, &c.Unlocked, &c.Equipped, &stage,
	)
	if postgres.IsNoRows(err) {
		return nil, usecase.ErrNotFound
	}
	if err != nil {
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.GetCreature", logger.Err(err))
		return nil, err
	}
	c.Stage = creature.Stage(stage)
	return &c, nil
}

func (s *Store) SaveCreature(ctx context.Context, c *creature.Creature) error {
	s.logger.Debug("postgres.SaveCreature")

	sql, args, err := upsertCreature(s.client.Builder, c)
	if err != nil {
		return fmt.Errorf("postgres - SaveCreature - upsertCreature: %w", err)
	}
	if _, err := s.client.Pool.Exec(ctx, sql, args...); err != nil {
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.SaveCreature", logger.Err(err))
		return err
	}
	return nil
}

func upsertCreature(b squirrel.StatementBuilderType, c *creature.Creature) (string, []any, error) {
	unlocked := c.Unlocked
	if unlocked == nil {
		unlocked = []string{}
	}
	equipped := maps.Clone(c.Equipped)
	if equipped == nil {
		equipped = map[creature.Slot]string{}
	}
	return b.Insert(creatureTable).
		Columns(append([]string{"id"}, creatureColumns...)...).
		Values(1, c.Name, c.HP, c.Happiness, c.Streak, c.BestStreak, c.TotalWakeUps,
			c.TotalMissed, c.Dead, c.BornAt, c.LastInteraction, unlocked, equipped, int(c.Stage)).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			hp = EXCLUDED.hp,
			happiness = EXCLUDED.happiness,
			streak = EXCLUDED.streak,
			best_streak = EXCLUDED.best_streak,
			total_wake_ups = EXCLUDED.total_wake_ups,
			total_missed = EXCLUDED.total_missed,
			dead = EXCLUDED.dead,
			born_at = EXCLUDED.born_at,
			last_interaction = EXCLUDED.last_interaction,
			unlocked = EXCLUDED.unlocked,
			equipped = EXCLUDED.equipped,
			stage = EXCLUDED.stage`).
		ToSql()
}

func (s *Store) AddRecord(ctx context.Context, r *creature.WakeUpRecord) error {
	s.logger.Debug("postgres.AddRecord")

	sql, args, err := insertRecord(s.client.Builder, r)
	if err != nil {
		return fmt.Errorf("postgres - AddRecord - insertRecord: %w", err)
	}
	if _, err := s.client.Pool.Exec(ctx, sql, args...); err != nil {
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.AddRecord", logger.Err(err))
		return err
	}
	return nil
}

func insertRecord(b squirrel.StatementBuilderType, r *creature.WakeUpRecord) (string, []any, error) {
	return b.Insert(recordTable).
		Columns(recordColumns...).
		Values(r.ID, r.AlarmID, r.CreatedAt, r.ScheduledAt, r.DismissedAt, r.SnoozeCount,
			string(r.Result), string(r.Response), r.HPDelta, r.HappinessDelta).
		ToSql()
}

func (s *Store) ListRecords(ctx context.Context) ([]*creature.WakeUpRecord, error) {
	s.logger.Debug("postgres.ListRecords")

	sql, args, err := s.client.Builder.
		Select(recordColumns...).
		From(recordTable).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres - ListRecords - ToSql: %w", err)
	}

	rows, err := s.client.Pool.Query(ctx, sql, args...)
	if err != nil {
		err = s.client.ToPgErr(err)
		s.logger.Error("postgres.ListRecords", logger.Err(err))
		return nil, err
	}
	defer rows.Close()

	var out []*creature.WakeUpRecord
	for rows.Next() {
		var (
			r                creature.WakeUpRecord
			result, response string
			dismissed        *time.Time
		)
		err := rows.Scan(&r.ID, &r.AlarmID, &r.CreatedAt, &r.ScheduledAt, &dismissed, &r.SnoozeCount,
			&result, &response, &r.HPDelta, &r.HappinessDelta)
		if err != nil {
			err = s.client.ToPgErr(err)
			s.logger.Error("postgres.ListRecords", logger.Err(err))
			return nil, err
		}
		r.DismissedAt = dismissed
		r.Result = creature.Result(result)
		r.Response = creature.Response(response)
		out = append(out, &r)
	}
	return out, rows.Err()
}

// SaveCycle stores alarm, creature and record in a single transaction.
func (s *Store) SaveCycle(ctx context.Context, a *alarm.Alarm, c *creature.Creature, r *creature.WakeUpRecord) error {
	s.logger.Debug("postgres.SaveCycle")

	type stmt struct {
		name  string
		build func() (string, []any, error)
	}
	stmts := []stmt{
		{"creature", func() (string, []any, error) { return upsertCreature(s.client.Builder, c) }},
		{"record", func() (string, []any, error) { return insertRecord(s.client.Builder, r) }},
	}
	if a != nil {
		stmts = append(stmts, stmt{"alarm", func() (string, []any, error) { return upsertAlarm(s.client.Builder, a) }})
	}

	err := s.client.InTx(ctx, func(tx *postgres.Tx) error {
		for _, st := range stmts {
			sql, args, err := st.build()
			if err != nil {
				return fmt.Errorf("postgres - SaveCycle - %s: %w", st.name, err)
			}
			if _, err = tx.Exec(ctx, sql, args...); err != nil {
				err = s.client.ToPgErr(err)
				s.logger.Error("postgres.SaveCycle", slog.String("statement", st.name), logger.Err(err))
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("postgres - SaveCycle: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	s.client.Close()
}
