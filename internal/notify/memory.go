// Package notify is an in-process stand-in for the platform notification
// center: it keeps registered triggers, delivers them when they fall due and
// lists what is pending and what has been delivered.
package notify

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Raimguhinov/sleep-monster/internal/alarm"
)

type entry struct {
	trigger alarm.Trigger
	next    time.Time
}

type Memory struct {
	mu        sync.RWMutex
	pending   map[string]*entry
	delivered map[string]alarm.Trigger
	loc       *time.Location
	clock     func() time.Time
}

var _ alarm.Center = (*Memory)(nil)

// NewMemory builds an empty center. clock supplies the registration time used
// to find the first fire instant; nil means time.Now.
func NewMemory(loc *time.Location, clock func() time.Time) *Memory {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Memory{
		pending:   make(map[string]*entry),
		delivered: make(map[string]alarm.Trigger),
		loc:       loc,
		clock:     clock,
	}
}

// Register adds or replaces a trigger. A trigger that can never fire is dropped.
func (m *Memory) Register(_ context.Context, t alarm.Trigger) error {
	next := t.Fire.Next(m.clock(), m.loc)

	m.mu.Lock()
	defer m.mu.Unlock()

	if next.IsZero() {
		delete(m.pending, t.ID)
		return nil
	}
	t.NextFireAt = nil
	t.DeliveredAt = nil
	m.pending[t.ID] = &entry{trigger: t, next: next}
	return nil
}

func (m *Memory) Pending(_ context.Context) ([]alarm.Trigger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]alarm.Trigger, 0, len(m.pending))
	for _, e := range m.pending {
		t := e.trigger
		next := e.next
		t.NextFireAt = &next
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b alarm.Trigger) int {
		if c := a.NextFireAt.Compare(*b.NextFireAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *Memory) Delivered(_ context.Context) ([]alarm.Trigger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]alarm.Trigger, 0, len(m.delivered))
	for _, t := range m.delivered {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b alarm.Trigger) int {
		if c := a.DeliveredAt.Compare(*b.DeliveredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *Memory) RemovePending(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.pending, id)
	}
	return nil
}

func (m *Memory) RemoveDelivered(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.delivered, id)
	}
	return nil
}

// Deliver fires every pending trigger due at now. One-shot triggers leave the
// pending set; weekly ones move to their next instant. Delivered triggers are
// returned in fire order.
func (m *Memory) Deliver(now time.Time) []alarm.Trigger {
	m.mu.Lock()
	defer m.mu.Unlock()

	var fired []alarm.Trigger
	for id, e := range m.pending {
		if e.next.After(now) {
			continue
		}
		t := e.trigger
		at := e.next
		t.DeliveredAt = &at
		m.delivered[id] = t
		fired = append(fired, t)

		// Missed weeks are not replayed: the next instant is taken after now.
		if next := e.trigger.Fire.Next(now, m.loc); !next.IsZero() && e.trigger.Fire.Repeats() {
			e.next = next
			continue
		}
		delete(m.pending, id)
	}

	slices.SortFunc(fired, func(a, b alarm.Trigger) int {
		if c := a.DeliveredAt.Compare(*b.DeliveredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return fired
}
