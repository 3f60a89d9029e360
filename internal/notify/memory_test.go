package notify

import (
	"context"
	"testing"
	"time"

	"github.com/Raimguhinov/sleep-monster/internal/alarm"
	"github.com/Raimguhinov/sleep-monster/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 2024-06-03 06:00 UTC.
var monday = time.Date(2024, 6, 3, 6, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestMemory_DeliverOneShot(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.UTC, fixedClock(monday))

	require.NoError(t, m.Register(ctx, alarm.Trigger{ID: "a", Fire: alarm.Fire{At: monday.Add(time.Hour)}}))
	require.NoError(t, m.Register(ctx, alarm.Trigger{ID: "past", Fire: alarm.Fire{At: monday.Add(-time.Hour)}}))

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1, "a trigger in the past never fires")

	assert.Empty(t, m.Deliver(monday.Add(59*time.Minute)))

	fired := m.Deliver(monday.Add(time.Hour))
	require.Len(t, fired, 1)
	assert.Equal(t, monday.Add(time.Hour), *fired[0].DeliveredAt)

	pending, _ = m.Pending(ctx)
	assert.Empty(t, pending)
	delivered, _ := m.Delivered(ctx)
	assert.Len(t, delivered, 1)

	require.NoError(t, m.RemoveDelivered(ctx, []string{"a", "unknown"}))
	delivered, _ = m.Delivered(ctx)
	assert.Empty(t, delivered)
}

func TestMemory_DeliverWeeklyAdvances(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.UTC, fixedClock(monday))
	w := alarm.NewWeekTime(time.Monday, 7, 0)

	require.NoError(t, m.Register(ctx, alarm.Trigger{ID: "w", Fire: alarm.Fire{Weekly: &w}}))

	fired := m.Deliver(monday.Add(time.Hour))
	require.Len(t, fired, 1)

	pending, _ := m.Pending(ctx)
	require.Len(t, pending, 1)
	assert.Equal(t, monday.Add(time.Hour+7*24*time.Hour), *pending[0].NextFireAt)
}

func TestWorker_TickNotifiesListeners(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.UTC, fixedClock(monday))
	w := NewWorker(m, time.Second, nil, logger.Discard())

	var got []string
	w.Subscribe(func(_ context.Context, tr alarm.Trigger) { got = append(got, tr.ID) })

	require.NoError(t, m.Register(ctx, alarm.Trigger{ID: "b", Fire: alarm.Fire{At: monday.Add(2 * time.Minute)}}))
	require.NoError(t, m.Register(ctx, alarm.Trigger{ID: "a", Fire: alarm.Fire{At: monday.Add(time.Minute)}}))

	w.Tick(ctx, monday.Add(5*time.Minute))
	assert.Equal(t, []string{"a", "b"}, got)
}
