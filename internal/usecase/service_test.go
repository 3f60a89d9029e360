package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raimguhinov/sleep-monster/internal/alarm"
	"github.com/Raimguhinov/sleep-monster/internal/creature"
	"github.com/Raimguhinov/sleep-monster/internal/notify"
	"github.com/Raimguhinov/sleep-monster/internal/storage/memory"
	"github.com/Raimguhinov/sleep-monster/internal/usecase"
	"github.com/Raimguhinov/sleep-monster/internal/widget"
	"github.com/Raimguhinov/sleep-monster/pkg/logger"
)

// Monday morning.
var monday = time.Date(2024, 6, 3, 6, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type published struct {
	mu        sync.Mutex
	summaries []widget.Summary
}

func (p *published) Publish(_ context.Context, s widget.Summary) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.summaries = append(p.summaries, s)
	return nil
}

func (p *published) last() widget.Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summaries[len(p.summaries)-1]
}

type env struct {
	svc    *usecase.Service
	store  *memory.Store
	center *notify.Memory
	clock  *clock
	pub    *published
}

func newEnv(t *testing.T, progression creature.Progression) *env {
	t.Helper()
	c := &clock{now: monday}
	center := notify.NewMemory(time.UTC, c.Now)
	store := memory.New()
	pub := &published{}
	scheduler := alarm.NewScheduler(center, alarm.DefaultSettings(), time.UTC, 2, logger.Discard())
	svc := usecase.NewService(store, scheduler, creature.NewEngine(progression), logger.Discard(),
		usecase.WithClock(c.Now),
		usecase.WithPublisher(pub),
		usecase.WithCreatureName("Mochi"),
	)
	return &env{svc: svc, store: store, center: center, clock: c, pub: pub}
}

// seedCreature stores a creature with the given stats.
func (e *env) seedCreature(t *testing.T, hp, happiness, streak int) {
	t.Helper()
	c := creature.New("Mochi", monday.AddDate(0, -1, 0))
	c.HP, c.Happiness, c.Streak, c.BestStreak = hp, happiness, streak, streak
	last := monday
	c.LastInteraction = &last
	require.NoError(t, e.store.SaveCreature(context.Background(), c))
}

func (e *env) pending(t *testing.T) []alarm.Trigger {
	t.Helper()
	p, err := e.center.Pending(context.Background())
	require.NoError(t, err)
	return p
}

func TestCreateAlarm(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	res, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 7, Minute: 5, Label: "Work"})
	require.NoError(t, err)

	assert.Empty(t, res.Warning)
	assert.Equal(t, 4, res.Triggers)
	assert.Equal(t, "Once", res.Repeat)
	require.NotNil(t, res.NextFire)
	assert.Equal(t, monday.Add(65*time.Minute), *res.NextFire)
	assert.Len(t, e.pending(t), 4)

	// The creature is hatched lazily and the widget learns about the alarm.
	sum := e.pub.last()
	assert.Equal(t, "Mochi", sum.Name)
	assert.Equal(t, "in 1h 05m", sum.NextAlarm)
}

func TestCreateAlarm_Invalid(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	_, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 24})
	assert.ErrorIs(t, err, alarm.ErrInvalid)

	_, err = e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 7, RepeatDays: []int{8}})
	assert.ErrorIs(t, err, alarm.ErrInvalid)

	alarms, err := e.svc.Alarms(ctx)
	require.NoError(t, err)
	assert.Empty(t, alarms)
	assert.Empty(t, e.pending(t))
}

func TestAlarms_SortedByTime(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	for _, hm := range [][2]int{{9, 0}, {6, 45}, {6, 30}} {
		_, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: hm[0], Minute: hm[1]})
		require.NoError(t, err)
	}

	alarms, err := e.svc.Alarms(ctx)
	require.NoError(t, err)
	require.Len(t, alarms, 3)
	assert.Equal(t, "06:30", alarms[0].TimeString())
	assert.Equal(t, "06:45", alarms[1].TimeString())
	assert.Equal(t, "09:00", alarms[2].TimeString())
}

func TestToggleAndDelete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	res, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 7, RepeatDays: []int{2, 4}})
	require.NoError(t, err)
	id := res.Alarm.ID
	assert.Len(t, e.pending(t), 8)

	res, err = e.svc.ToggleAlarm(ctx, id)
	require.NoError(t, err)
	assert.False(t, res.Alarm.Enabled)
	assert.Nil(t, res.NextFire)
	assert.Empty(t, e.pending(t))

	_, err = e.svc.ToggleAlarm(ctx, id)
	require.NoError(t, err)
	assert.Len(t, e.pending(t), 8)

	require.NoError(t, e.svc.DeleteAlarm(ctx, id))
	assert.Empty(t, e.pending(t))

	_, err = e.svc.Alarm(ctx, id)
	assert.ErrorIs(t, err, usecase.ErrNotFound)
	assert.ErrorIs(t, e.svc.DeleteAlarm(ctx, id), usecase.ErrNotFound)
}

func TestUpdateAlarm(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	res, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 7})
	require.NoError(t, err)

	off := false
	res, err = e.svc.UpdateAlarm(ctx, res.Alarm.ID, usecase.AlarmInput{
		Hour: 8, Minute: 15, RepeatDays: []int{1, 7}, Sound: alarm.SoundGentle, SnoozeEnabled: &off,
	})
	require.NoError(t, err)
	assert.Equal(t, "Weekends", res.Repeat)
	assert.Equal(t, alarm.SoundGentle, res.Alarm.Sound)
	assert.False(t, res.Alarm.SnoozeEnabled)
	assert.Len(t, e.pending(t), 8)

	_, err = e.svc.UpdateAlarm(ctx, uuid.New(), usecase.AlarmInput{Hour: 8})
	assert.ErrorIs(t, err, usecase.ErrNotFound)

	_, err = e.svc.UpdateAlarm(ctx, res.Alarm.ID, usecase.AlarmInput{Hour: 8, Sound: "foghorn"})
	assert.ErrorIs(t, err, alarm.ErrInvalid)
}

func TestRespond_DismissOnTime(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	e.seedCreature(t, 60, 50, 2)

	res, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 7})
	require.NoError(t, err)

	at := monday.Add(time.Hour + 30*time.Second)
	e.clock.Set(at)
	e.center.Deliver(at)

	out, err := e.svc.Respond(ctx, res.Alarm.ID, "ALARM_DISMISS", time.Time{})
	require.NoError(t, err)

	assert.Equal(t, alarm.StateDismissed, out.Outcome.State)
	require.NotNil(t, out.Evaluation)
	assert.Equal(t, creature.ResultOnTime, out.Evaluation.Result)
	assert.Equal(t, 65, out.Creature.HP)
	assert.Equal(t, 60, out.Creature.Happiness)
	assert.Equal(t, 3, out.Creature.Streak)
	// Streak 3 unlocks the first head item.
	assert.Contains(t, out.Creature.Unlocked, "nightcap")

	require.NotNil(t, out.Record)
	assert.Equal(t, creature.ResponseDismiss, out.Record.Response)
	assert.Equal(t, monday.Add(time.Hour), out.Record.ScheduledAt)

	// The chain stopped and the one-shot alarm turned itself off.
	assert.Empty(t, e.pending(t))
	delivered, err := e.center.Delivered(ctx)
	require.NoError(t, err)
	assert.Empty(t, delivered)

	stored, err := e.svc.Alarm(ctx, res.Alarm.ID)
	require.NoError(t, err)
	assert.False(t, stored.Alarm.Enabled)
	require.NotNil(t, stored.Alarm.LastTriggered)

	records, err := e.svc.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRespond_SnoozesAreChargedAtDismissal(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	e.seedCreature(t, 60, 50, 0)

	res, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 7})
	require.NoError(t, err)
	id := res.Alarm.ID
	scheduled := monday.Add(time.Hour)

	for i := 1; i <= 2; i++ {
		out, err := e.svc.Respond(ctx, id, "snooze", scheduled.Add(time.Duration(i)*10*time.Second))
		require.NoError(t, err)
		assert.Equal(t, alarm.StateSnoozed, out.Outcome.State)
		require.NotNil(t, out.Outcome.Snooze)
		// No penalty yet.
		assert.Equal(t, 60, out.Creature.HP)
	}

	stored, err := e.svc.Alarm(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Alarm.SnoozeCount)

	out, err := e.svc.Respond(ctx, id, "dismiss", scheduled.Add(4*time.Minute))
	require.NoError(t, err)

	// late: (0, +3) minus two snoozes (10, 20).
	assert.Equal(t, creature.ResultLate, out.Evaluation.Result)
	assert.Equal(t, -10, out.Evaluation.HPDelta)
	assert.Equal(t, -17, out.Evaluation.HappinessDelta)
	assert.Equal(t, 50, out.Creature.HP)
	assert.Equal(t, 2, out.Record.SnoozeCount)

	stored, err = e.svc.Alarm(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, stored.Alarm.SnoozeCount)
}

func TestRespond_SnoozeDisabled(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	off := false
	res, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 7, SnoozeEnabled: &off})
	require.NoError(t, err)

	_, err = e.svc.Respond(ctx, res.Alarm.ID, "ALARM_SNOOZE", monday.Add(time.Hour))
	assert.ErrorIs(t, err, alarm.ErrSnoozeDisabled)
}

func TestRespond_ImplicitDismiss(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	e.seedCreature(t, 60, 50, 0)

	res, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 7, RepeatDays: []int{2, 3, 4, 5, 6}})
	require.NoError(t, err)

	out, err := e.svc.Respond(ctx, res.Alarm.ID, "com.apple.UNNotificationDismissActionIdentifier", monday.Add(time.Hour+20*time.Second))
	require.NoError(t, err)

	assert.Equal(t, alarm.ActionImplicitDismiss, out.Outcome.Action)
	assert.Equal(t, creature.ResponseImplicitDismiss, out.Record.Response)
	assert.Equal(t, creature.ResultOnTime, out.Record.Result)

	// A repeating alarm stays armed for the coming days.
	stored, err := e.svc.Alarm(ctx, res.Alarm.ID)
	require.NoError(t, err)
	assert.True(t, stored.Alarm.Enabled)
	assert.NotEmpty(t, e.pending(t))
}

func TestRespond_AcrossMidnight(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	e.seedCreature(t, 60, 50, 0)

	res, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 23, Minute: 58})
	require.NoError(t, err)

	// Four minutes late, on the next calendar day.
	out, err := e.svc.Respond(ctx, res.Alarm.ID, "dismiss", time.Date(2024, 6, 4, 0, 2, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 3, 23, 58, 0, 0, time.UTC), out.Record.ScheduledAt)
	assert.Equal(t, creature.ResultLate, out.Record.Result)
}

func TestResume_ChargesMissedOnce(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	e.seedCreature(t, 100, 100, 4)

	res, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 7})
	require.NoError(t, err)

	later := monday.Add(time.Hour + 15*time.Minute)
	e.clock.Set(later)
	e.center.Deliver(later)

	out, err := e.svc.Resume(ctx)
	require.NoError(t, err)
	require.Len(t, out.Missed, 1)

	m := out.Missed[0]
	assert.Equal(t, res.Alarm.ID, m.AlarmID)
	assert.Equal(t, monday.Add(time.Hour), m.ScheduledAt)
	assert.Equal(t, creature.ResultMissed, m.Record.Result)
	assert.Equal(t, creature.ResponseNone, m.Record.Response)
	assert.Nil(t, m.Record.DismissedAt)

	assert.Equal(t, 80, out.Creature.HP)
	assert.Equal(t, 70, out.Creature.Happiness)
	assert.Zero(t, out.Creature.Streak)
	assert.Equal(t, 4, out.Creature.BestStreak)
	assert.Equal(t, 1, out.Creature.TotalMissed)

	stored, err := e.svc.Alarm(ctx, res.Alarm.ID)
	require.NoError(t, err)
	assert.False(t, stored.Alarm.Enabled)

	again, err := e.svc.Resume(ctx)
	require.NoError(t, err)
	assert.Empty(t, again.Missed)
	assert.Equal(t, 80, again.Creature.HP)
}

func TestResume_DismissedCycleIsNotMissed(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	e.seedCreature(t, 100, 100, 0)

	res, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 7})
	require.NoError(t, err)

	// Everything went off, sentinel included, before the answer came in.
	later := monday.Add(time.Hour + 11*time.Minute)
	e.clock.Set(later)
	e.center.Deliver(later)
	_, err = e.svc.Respond(ctx, res.Alarm.ID, "dismiss", time.Time{})
	require.NoError(t, err)

	out, err := e.svc.Resume(ctx)
	require.NoError(t, err)
	assert.Empty(t, out.Missed)
	assert.Zero(t, out.Creature.TotalMissed)
}

func TestResume_AlarmSetJustAfterItsTimeIsNotMissed(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	e.seedCreature(t, 80, 80, 4)

	// Monday 05:55 created at 06:00: today's ring is already gone.
	res, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 5, Minute: 55, RepeatDays: []int{2}})
	require.NoError(t, err)

	nextWeek := time.Date(2024, 6, 10, 5, 55, 0, 0, time.UTC)
	for _, tr := range e.pending(t) {
		require.NotNil(t, tr.NextFireAt)
		assert.False(t, tr.NextFireAt.Before(nextWeek), tr.ID)
	}

	later := monday.Add(6 * time.Minute)
	e.clock.Set(later)
	assert.Empty(t, e.center.Deliver(later))

	out, err := e.svc.Resume(ctx)
	require.NoError(t, err)
	assert.Empty(t, out.Missed)
	assert.Equal(t, 80, out.Creature.HP)
	assert.Equal(t, 4, out.Creature.Streak)

	stored, err := e.svc.Alarm(ctx, res.Alarm.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Alarm.LastTriggered)
}

func TestRespond_DismissAfterSnoozedPastSentinel(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	e.seedCreature(t, 80, 80, 4)

	res, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 6, Minute: 30, RepeatDays: []int{2}})
	require.NoError(t, err)
	id := res.Alarm.ID
	scheduled := monday.Add(30 * time.Minute)

	for _, m := range []time.Duration{1, 6} {
		_, err := e.svc.Respond(ctx, id, "snooze", scheduled.Add(m*time.Minute))
		require.NoError(t, err)
	}

	// The sentinel goes off while the user is still snoozing.
	sentinelAt := scheduled.Add(10 * time.Minute)
	e.clock.Set(sentinelAt)
	e.center.Deliver(sentinelAt)
	missed, err := e.svc.Resume(ctx)
	require.NoError(t, err)
	require.Len(t, missed.Missed, 1)
	assert.Equal(t, 60, missed.Creature.HP)

	out, err := e.svc.Respond(ctx, id, "dismiss", scheduled.Add(11*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, alarm.StateDismissed, out.Outcome.State)
	assert.Nil(t, out.Record)
	assert.Nil(t, out.Evaluation)

	records, err := e.svc.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, creature.ResponseNone, records[0].Response)

	c, err := e.svc.Creature(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, c.HP)
	assert.Equal(t, 1, c.TotalMissed)
	assert.Zero(t, c.TotalWakeUps)

	// Nothing of today's cycle is left; next week's occurrence is.
	for _, tr := range e.pending(t) {
		assert.True(t, tr.NextFireAt.After(monday.AddDate(0, 0, 6)), tr.ID)
	}

	// Answering again is just as harmless.
	again, err := e.svc.Respond(ctx, id, "snooze", scheduled.Add(12*time.Minute))
	require.NoError(t, err)
	assert.Nil(t, again.Record)
	assert.Equal(t, alarm.ActionSnooze, again.Outcome.Action)
	stored, err := e.svc.Alarm(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, stored.Alarm.SnoozeCount)
}

func TestResume_DailyDecay(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	e.seedCreature(t, 10, 12, 0)

	e.clock.Set(monday.AddDate(0, 0, 3))
	out, err := e.svc.Resume(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, out.DecayDays)
	assert.Equal(t, 1, out.Creature.HP)
	assert.Zero(t, out.Creature.Happiness)
	assert.False(t, out.Creature.Dead)

	// Decay is charged once per day, not once per resume.
	out, err = e.svc.Resume(ctx)
	require.NoError(t, err)
	assert.Zero(t, out.DecayDays)
	assert.Equal(t, 1, out.Creature.HP)
}

func TestResume_DeathAndRevival(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, creature.EvolutionProgression{})
	e.seedCreature(t, 10, 40, 0)

	_, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 7})
	require.NoError(t, err)

	later := monday.Add(2 * time.Hour)
	e.clock.Set(later)
	e.center.Deliver(later)

	out, err := e.svc.Resume(ctx)
	require.NoError(t, err)
	assert.Zero(t, out.Creature.HP)
	assert.True(t, out.Creature.Dead)
	assert.True(t, e.pub.last().Dead)
	assert.Equal(t, creature.ExpressionDead, e.pub.last().Expression)

	c, err := e.svc.Revive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, c.HP)
	assert.Equal(t, 50, c.Happiness)
	assert.False(t, c.Dead)
	assert.Equal(t, later, c.BornAt)
	assert.Equal(t, creature.StageEgg.String(), e.pub.last().Stage)
}

func TestOnDelivered_SentinelRunsMissedCheck(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	e.seedCreature(t, 100, 100, 0)

	_, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 7})
	require.NoError(t, err)

	later := monday.Add(time.Hour + 10*time.Minute)
	e.clock.Set(later)
	for _, tr := range e.center.Deliver(later) {
		e.svc.OnDelivered(ctx, tr)
	}

	c, err := e.svc.Creature(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.TotalMissed)
	assert.Equal(t, 80, c.HP)
}

func TestRescheduleAll(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	weekly := alarm.New(7, 0, "", []int{2, 3, 4})
	off := alarm.New(8, 0, "", nil)
	off.Enabled = false
	require.NoError(t, e.store.SaveAlarm(ctx, weekly))
	require.NoError(t, e.store.SaveAlarm(ctx, off))

	warnings, err := e.svc.RescheduleAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Len(t, e.pending(t), 12)

	// Running it again replaces rather than duplicates.
	_, err = e.svc.RescheduleAll(ctx)
	require.NoError(t, err)
	assert.Len(t, e.pending(t), 12)
}

type brokenCenter struct{ *notify.Memory }

func (brokenCenter) Register(context.Context, alarm.Trigger) error {
	return errors.New("notifications not permitted")
}

func TestCreateAlarm_RegistrationFailureIsAWarning(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: monday}
	store := memory.New()
	center := brokenCenter{notify.NewMemory(time.UTC, c.Now)}
	scheduler := alarm.NewScheduler(center, alarm.DefaultSettings(), time.UTC, 2, logger.Discard())
	svc := usecase.NewService(store, scheduler, creature.NewEngine(nil), logger.Discard(), usecase.WithClock(c.Now))

	res, err := svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 7})
	require.NoError(t, err)
	assert.Zero(t, res.Triggers)
	assert.Contains(t, res.Warning, "notifications could not be scheduled")

	alarms, err := svc.Alarms(ctx)
	require.NoError(t, err)
	assert.Len(t, alarms, 1)
}

func TestCreatureOperations(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	c, err := e.svc.Creature(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Mochi", c.Name)
	assert.Equal(t, monday, c.BornAt)

	_, err = e.svc.Rename(ctx, "   ")
	assert.ErrorIs(t, err, creature.ErrBlankName)

	c, err = e.svc.Rename(ctx, "Kuma")
	require.NoError(t, err)
	assert.Equal(t, "Kuma", c.Name)

	_, err = e.svc.Equip(ctx, "crown_gold")
	assert.ErrorIs(t, err, creature.ErrNotUnlocked)
	_, err = e.svc.Equip(ctx, "party_hat")
	assert.ErrorIs(t, err, creature.ErrUnknownItem)
	_, err = e.svc.Unequip(ctx, creature.Slot("tail"))
	assert.ErrorIs(t, err, creature.ErrUnknownSlot)

	sum, err := e.svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Kuma", sum.Name)
	assert.Equal(t, "no alarm", sum.NextAlarm)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	e.seedCreature(t, 60, 50, 0)

	res, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 7, RepeatDays: []int{1, 2, 3, 4, 5, 6, 7}})
	require.NoError(t, err)

	for day := 0; day < 3; day++ {
		at := monday.AddDate(0, 0, day).Add(time.Hour + 20*time.Second)
		e.clock.Set(at)
		_, err := e.svc.Respond(ctx, res.Alarm.ID, "dismiss", time.Time{})
		require.NoError(t, err)
	}

	st, err := e.svc.Stats(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2024, st.Year)
	assert.Equal(t, time.June, st.Month)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 3, st.OnTime)
	assert.Equal(t, 3, st.CurrentStreak)
	assert.Equal(t, 3, st.BestStreak)
	assert.InDelta(t, 1.0, st.OnTimeRate, 1e-9)
	assert.Len(t, st.Days, 3)
}

func TestFeed(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	_, err := e.svc.CreateAlarm(ctx, usecase.AlarmInput{Hour: 7, RepeatDays: []int{2}})
	require.NoError(t, err)

	data, tag, err := e.svc.Feed(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, tag)
	assert.Contains(t, string(data), "RRULE:FREQ=WEEKLY;BYDAY=MO")
	assert.Contains(t, string(data), "BEGIN:VALARM")
}
