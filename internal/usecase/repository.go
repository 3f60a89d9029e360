package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Raimguhinov/sleep-monster/internal/alarm"
	"github.com/Raimguhinov/sleep-monster/internal/creature"
)

var ErrNotFound = errors.New("not found")

type AlarmRepository interface {
	ListAlarms(ctx context.Context) ([]*alarm.Alarm, error)
	GetAlarm(ctx context.Context, id uuid.UUID) (*alarm.Alarm, error)
	SaveAlarm(ctx context.Context, a *alarm.Alarm) error
	DeleteAlarm(ctx context.Context, id uuid.UUID) error
}

// CreatureRepository stores the single creature. GetCreature returns
// ErrNotFound until the first save.
type CreatureRepository interface {
	GetCreature(ctx context.Context) (*creature.Creature, error)
	SaveCreature(ctx context.Context, c *creature.Creature) error
}

// RecordRepository is append-only. ListRecords returns newest first.
type RecordRepository interface {
	AddRecord(ctx context.Context, r *creature.WakeUpRecord) error
	ListRecords(ctx context.Context) ([]*creature.WakeUpRecord, error)
}

// Store is everything the service persists. SaveCycle writes the outcome of a
// finished wake cycle in one step: a is nil when the alarm has been deleted
// in the meantime.
type Store interface {
	AlarmRepository
	CreatureRepository
	RecordRepository
	SaveCycle(ctx context.Context, a *alarm.Alarm, c *creature.Creature, r *creature.WakeUpRecord) error
	Close()
}
