// Package memory keeps the whole state in process memory. Values are copied on
// the way in and out so callers never share them with the store.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/Raimguhinov/sleep-monster/internal/alarm"
	"github.com/Raimguhinov/sleep-monster/internal/creature"
	"github.com/Raimguhinov/sleep-monster/internal/usecase"
)

type Store struct {
	mu       sync.RWMutex
	alarms   map[uuid.UUID]*alarm.Alarm
	order    []uuid.UUID
	creature *creature.Creature
	records  []*creature.WakeUpRecord
}

var _ usecase.Store = (*Store)(nil)

func New() *Store {
	return &Store{alarms: make(map[uuid.UUID]*alarm.Alarm)}
}

// ListAlarms returns alarms in creation order.
func (s *Store) ListAlarms(_ context.Context) ([]*alarm.Alarm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*alarm.Alarm, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneAlarm(s.alarms[id]))
	}
	return out, nil
}

func (s *Store) GetAlarm(_ context.Context, id uuid.UUID) (*alarm.Alarm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.alarms[id]
	if !ok {
		return nil, usecase.ErrNotFound
	}
	return cloneAlarm(a), nil
}

func (s *Store) SaveAlarm(_ context.Context, a *alarm.Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putAlarm(a)
	return nil
}

func (s *Store) putAlarm(a *alarm.Alarm) {
	if _, ok := s.alarms[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.alarms[a.ID] = cloneAlarm(a)
}

func (s *Store) DeleteAlarm(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.alarms[id]; !ok {
		return usecase.ErrNotFound
	}
	delete(s.alarms, id)
	s.order = slices.DeleteFunc(s.order, func(v uuid.UUID) bool { return v == id })
	return nil
}

func (s *Store) GetCreature(_ context.Context) (*creature.Creature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.creature == nil {
		return nil, usecase.ErrNotFound
	}
	return cloneCreature(s.creature), nil
}

func (s *Store) SaveCreature(_ context.Context, c *creature.Creature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creature = cloneCreature(c)
	return nil
}

func (s *Store) AddRecord(_ context.Context, r *creature.WakeUpRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addRecord(r)
	return nil
}

func (s *Store) addRecord(r *creature.WakeUpRecord) {
	cp := *r
	s.records = append(s.records, &cp)
}

func (s *Store) ListRecords(_ context.Context) ([]*creature.WakeUpRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*creature.WakeUpRecord, 0, len(s.records))
	for _, r := range s.records {
		cp := *r
		out = append(out, &cp)
	}
	slices.SortStableFunc(out, func(a, b *creature.WakeUpRecord) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return out, nil
}

func (s *Store) SaveCycle(_ context.Context, a *alarm.Alarm, c *creature.Creature, r *creature.WakeUpRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a != nil {
		s.putAlarm(a)
	}
	s.creature = cloneCreature(c)
	s.addRecord(r)
	return nil
}

func (s *Store) Close() {}

func cloneAlarm(a *alarm.Alarm) *alarm.Alarm {
	cp := *a
	cp.RepeatDays = slices.Clone(a.RepeatDays)
	if a.LastTriggered != nil {
		t := *a.LastTriggered
		cp.LastTriggered = &t
	}
	return &cp
}

func cloneCreature(c *creature.Creature) *creature.Creature {
	cp := *c
	cp.Unlocked = slices.Clone(c.Unlocked)
	cp.Equipped = maps.Clone(c.Equipped)
	if c.LastInteraction != nil {
		t := *c.LastInteraction
		cp.LastInteraction = &t
	}
	return &cp
}
