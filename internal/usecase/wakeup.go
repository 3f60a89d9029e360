package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Raimguhinov/sleep-monster/internal/alarm"
	"github.com/Raimguhinov/sleep-monster/internal/creature"
	"github.com/Raimguhinov/sleep-monster/pkg/logger"
)

// RespondResult tells the client what an answer to a ringing alarm did.
type RespondResult struct {
	Outcome    alarm.Outcome          `json:"outcome"`
	Evaluation *creature.Evaluation   `json:"evaluation,omitempty"`
	Record     *creature.WakeUpRecord `json:"record,omitempty"`
	Creature   *creature.Creature     `json:"creature"`
	Warning    string                 `json:"warning,omitempty"`
}

// Respond handles an answer to a ringing alarm. A zero at means now.
//
// A snooze only bumps the alarm's snooze count; the penalty is charged with
// the dismissal. A dismissal, explicit or implicit, is classified against the
// occurrence being answered and applied to the creature. A cycle that is
// already on record, for instance charged as missed while snoozing, is only
// cleared.
func (s *Service) Respond(ctx context.Context, id uuid.UUID, rawAction string, at time.Time) (*RespondResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !at.IsZero() {
		now = at.In(s.scheduler.Location())
	}

	a, err := s.store.GetAlarm(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase - Respond - GetAlarm: %w", err)
	}
	c, err := s.loadCreature(ctx)
	if err != nil {
		return nil, err
	}

	action := alarm.ParseAction(rawAction)
	res := &RespondResult{Creature: c}
	scheduled := s.occurrence(a, now)

	if closed(a, scheduled) {
		return s.respondClosed(ctx, a, action, now, res)
	}

	out, err := s.scheduler.Respond(ctx, a, action, now)
	res.Outcome = out
	switch {
	case errors.Is(err, alarm.ErrSnoozeDisabled):
		return nil, err
	case err != nil:
		s.logger.Warn("response handled with notification errors",
			slog.String("alarm_id", a.ID.String()),
			slog.String("action", string(action)),
			logger.Err(err),
		)
		res.Warning = err.Error()
		if action == alarm.ActionSnooze {
			// No alert was registered, so the alarm is not snoozed.
			return res, nil
		}
	}

	if action == alarm.ActionSnooze {
		a.SnoozeCount++
		if err := s.store.SaveAlarm(ctx, a); err != nil {
			return nil, fmt.Errorf("usecase - Respond - SaveAlarm: %w", err)
		}
		s.publish(ctx, c)
		return res, nil
	}

	ev := s.engine.Evaluate(now, scheduled, a.SnoozeCount, c)
	s.engine.Apply(ev, c, now)

	response := creature.ResponseDismiss
	if action == alarm.ActionImplicitDismiss {
		response = creature.ResponseImplicitDismiss
	}
	record := creature.NewRecord(a.ID, scheduled, now, a.SnoozeCount, response, ev)
	a.MarkFired(now)

	if err := s.store.SaveCycle(ctx, a, c, record); err != nil {
		return nil, fmt.Errorf("usecase - Respond - SaveCycle: %w", err)
	}

	s.logger.Info("wake-up recorded",
		slog.String("alarm_id", a.ID.String()),
		slog.String("result", string(ev.Result)),
		slog.String("response", string(response)),
		slog.Int("hp_delta", ev.HPDelta),
		slog.Int("happiness_delta", ev.HappinessDelta),
		slog.Int("streak", c.Streak),
	)

	res.Evaluation = &ev
	res.Record = record
	s.publish(ctx, c)
	return res, nil
}

// closed reports whether the cycle scheduled at scheduled was already settled,
// by a dismissal or by a miss charged from its sentinel.
func closed(a *alarm.Alarm, scheduled time.Time) bool {
	return a.LastTriggered != nil && !a.LastTriggered.Before(scheduled)
}

// respondClosed answers a ring whose cycle is already on record. Whatever the
// action, what is left of the cycle is cleared and nothing is charged again.
func (s *Service) respondClosed(ctx context.Context, a *alarm.Alarm, action alarm.Action, now time.Time, res *RespondResult) (*RespondResult, error) {
	out, err := s.scheduler.Respond(ctx, a, alarm.ActionDismiss, now)
	out.Action = action
	res.Outcome = out
	if err != nil {
		s.logger.Warn("late response handled with notification errors",
			slog.String("alarm_id", a.ID.String()),
			logger.Err(err),
		)
		res.Warning = err.Error()
	}
	s.logger.Info("response to a settled cycle ignored",
		slog.String("alarm_id", a.ID.String()),
		slog.String("action", string(action)),
		slog.Time("last_triggered", *a.LastTriggered),
	)
	return res, nil
}

// occurrence is the scheduled time being answered: the alarm time on the day
// of now, or the day before when that is still more than half a day away, so a
// cycle that crosses midnight is measured against the right day.
func (s *Service) occurrence(a *alarm.Alarm, now time.Time) time.Time {
	scheduled := a.ScheduledOn(now, s.scheduler.Location())
	if scheduled.Sub(now) > 12*time.Hour {
		scheduled = scheduled.AddDate(0, 0, -1)
	}
	return scheduled
}

// MissedAlarm is one cycle charged as missed during a resume.
type MissedAlarm struct {
	AlarmID     uuid.UUID              `json:"alarm_id"`
	ScheduledAt time.Time              `json:"scheduled_at"`
	Record      *creature.WakeUpRecord `json:"record"`
}

type ResumeResult struct {
	DecayDays int                `json:"decay_days"`
	Missed    []MissedAlarm      `json:"missed"`
	Creature  *creature.Creature `json:"creature"`
}

// Resume catches up on everything that happened while nobody was looking:
// daily decay since the last interaction, then one penalty per alarm whose
// sentinel went off unanswered. Running it twice charges nothing new.
func (s *Service) Resume(ctx context.Context) (*ResumeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, err := s.loadCreature(ctx)
	if err != nil {
		return nil, err
	}

	res := &ResumeResult{Creature: c, Missed: []MissedAlarm{}}
	res.DecayDays = creature.ApplyDecay(c, now, s.scheduler.Location())
	if err := s.store.SaveCreature(ctx, c); err != nil {
		return nil, fmt.Errorf("usecase - Resume - SaveCreature: %w", err)
	}
	if res.DecayDays > 0 {
		s.logger.Info("daily decay applied", slog.Int("days", res.DecayDays))
	}

	misses, err := s.scheduler.CollectMissed(ctx)
	if err != nil {
		s.publish(ctx, c)
		return nil, fmt.Errorf("usecase - Resume - CollectMissed: %w", err)
	}

	for _, m := range misses {
		missed, err := s.chargeMissed(ctx, c, m, now)
		if err != nil {
			s.publish(ctx, c)
			return nil, err
		}
		if missed != nil {
			res.Missed = append(res.Missed, *missed)
		}
	}

	s.publish(ctx, c)
	return res, nil
}

// chargeMissed applies the missed-alarm penalty for m. It returns nil when the
// cycle was answered after all.
func (s *Service) chargeMissed(ctx context.Context, c *creature.Creature, m alarm.Miss, now time.Time) (*MissedAlarm, error) {
	scheduled := m.FiredAt.Add(-s.scheduler.Settings().SentinelDelay)

	a, err := s.store.GetAlarm(ctx, m.AlarmID)
	switch {
	case errors.Is(err, ErrNotFound):
		a = nil
	case err != nil:
		return nil, fmt.Errorf("usecase - chargeMissed - GetAlarm: %w", err)
	}

	snoozes := 0
	if a != nil {
		if closed(a, scheduled) {
			s.logger.Debug("sentinel for an answered cycle", slog.String("alarm_id", a.ID.String()))
			return nil, nil
		}
		snoozes = a.SnoozeCount
		a.MarkFired(now)
	}

	creature.ApplyMissed(c)
	record := creature.NewMissedRecord(m.AlarmID, scheduled, now, snoozes)
	if err := s.store.SaveCycle(ctx, a, c, record); err != nil {
		return nil, fmt.Errorf("usecase - chargeMissed - SaveCycle: %w", err)
	}

	s.logger.Warn("alarm missed",
		slog.String("alarm_id", m.AlarmID.String()),
		slog.Time("scheduled_at", scheduled),
		slog.Int("hp", c.HP),
		slog.Bool("dead", c.Dead),
	)
	return &MissedAlarm{AlarmID: m.AlarmID, ScheduledAt: scheduled, Record: record}, nil
}

// OnDelivered reacts to triggers going off. A sentinel means an alarm may have
// gone unanswered, so the missed-alarm check runs straight away.
func (s *Service) OnDelivered(ctx context.Context, t alarm.Trigger) {
	switch t.Payload.Category {
	case alarm.CategorySentinel:
		res, err := s.Resume(ctx)
		if err != nil {
			s.logger.Error("missed-alarm check failed", logger.Err(err))
			return
		}
		if len(res.Missed) > 0 {
			s.logger.Info("missed alarms charged", slog.Int("count", len(res.Missed)))
		}
	default:
		s.logger.Info("alarm ringing",
			slog.String("trigger_id", t.ID),
			slog.String("title", t.Payload.Title),
			slog.String("sound", t.Payload.Sound),
		)
	}
}
