package alarm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Raimguhinov/sleep-monster/pkg/logger"
	"github.com/google/uuid"
)

// ErrRegister means a trigger could not be handed to the notification center
// even after retrying.
var ErrRegister = errors.New("trigger registration failed")

// Center is the local notification service. It may be eventually consistent;
// every removal must be a no-op for unknown ids.
type Center interface {
	Register(ctx context.Context, t Trigger) error
	Pending(ctx context.Context) ([]Trigger, error)
	Delivered(ctx context.Context) ([]Trigger, error)
	RemovePending(ctx context.Context, ids []string) error
	RemoveDelivered(ctx context.Context, ids []string) error
}

// Action is the user's answer to a ringing alarm.
type Action string

const (
	ActionDismiss         Action = "dismiss"
	ActionSnooze          Action = "snooze"
	ActionImplicitDismiss Action = "implicit_dismiss"
)

// ParseAction maps a notification action identifier onto an Action. Anything
// unrecognized, a swipe-away included, is an implicit dismiss.
func ParseAction(s string) Action {
	switch s {
	case "dismiss", "ALARM_DISMISS", "default":
		return ActionDismiss
	case "snooze", "ALARM_SNOOZE":
		return ActionSnooze
	default:
		return ActionImplicitDismiss
	}
}

// State of one alarm within the scheduling protocol.
type State string

const (
	StateUnscheduled State = "unscheduled"
	StateScheduled   State = "scheduled"
	StateFired       State = "fired_awaiting_response"
	StateSnoozed     State = "snoozed"
	StateDismissed   State = "dismissed"
)

// Outcome is the result of handling a response.
type Outcome struct {
	Action Action   `json:"action"`
	State  State    `json:"state"`
	Snooze *Trigger `json:"snooze,omitempty"`
}

// Miss is a sentinel that went off with nobody answering.
type Miss struct {
	AlarmID uuid.UUID
	FiredAt time.Time
}

type Scheduler struct {
	center   Center
	settings Settings
	loc      *time.Location
	attempts int
	logger   *logger.Logger
}

func NewScheduler(center Center, settings Settings, loc *time.Location, attempts int, l *logger.Logger) *Scheduler {
	return &Scheduler{
		center:   center,
		settings: settings,
		loc:      locOrLocal(loc),
		attempts: max(attempts, 1),
		logger:   l.Component("alarm/scheduler"),
	}
}

func (s *Scheduler) Settings() Settings {
	return s.settings
}

func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// Schedule replaces every trigger of the alarm with a freshly planned set.
// Calling it twice in a row leaves the same pending set as calling it once.
func (s *Scheduler) Schedule(ctx context.Context, a *Alarm, now time.Time) ([]Trigger, error) {
	return s.scheduleFrom(ctx, a, now)
}

func (s *Scheduler) scheduleFrom(ctx context.Context, a *Alarm, from time.Time) ([]Trigger, error) {
	if err := s.Cancel(ctx, a.ID); err != nil {
		return nil, err
	}

	triggers := Plan(a, from, s.loc, s.settings)
	if len(triggers) == 0 {
		s.logger.Debug("nothing to schedule", slog.String("alarm_id", a.ID.String()))
		return nil, nil
	}

	var errs []error
	registered := make([]Trigger, 0, len(triggers))
	for _, t := range triggers {
		if err := s.register(ctx, t); err != nil {
			errs = append(errs, err)
			continue
		}
		registered = append(registered, t)
	}

	s.logger.Info("alarm scheduled",
		slog.String("alarm_id", a.ID.String()),
		slog.String("time", a.TimeString()),
		slog.String("repeat", a.RepeatText()),
		slog.Int("triggers", len(registered)),
	)

	if len(errs) > 0 {
		return registered, fmt.Errorf("%w: %w", ErrRegister, errors.Join(errs...))
	}
	return registered, nil
}

// register retries a single registration best-effort.
func (s *Scheduler) register(ctx context.Context, t Trigger) error {
	var err error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if err = s.center.Register(ctx, t); err == nil {
			return nil
		}
		s.logger.Warn("trigger registration failed",
			slog.String("trigger_id", t.ID),
			slog.Int("attempt", attempt),
			logger.Err(err),
		)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("register %s: %w", t.ID, err)
}

// Cancel removes every pending and delivered trigger derived from alarmID.
func (s *Scheduler) Cancel(ctx context.Context, alarmID uuid.UUID) error {
	if err := s.cancelPending(ctx, alarmID); err != nil {
		return err
	}
	return s.cancelDelivered(ctx, alarmID)
}

func (s *Scheduler) cancelPending(ctx context.Context, alarmID uuid.UUID) error {
	pending, err := s.center.Pending(ctx)
	if err != nil {
		return fmt.Errorf("alarm - Scheduler - Pending: %w", err)
	}
	ids := matching(pending, alarmID)
	if len(ids) == 0 {
		return nil
	}
	if err = s.center.RemovePending(ctx, ids); err != nil {
		return fmt.Errorf("alarm - Scheduler - RemovePending: %w", err)
	}
	return nil
}

func (s *Scheduler) cancelDelivered(ctx context.Context, alarmID uuid.UUID) error {
	delivered, err := s.center.Delivered(ctx)
	if err != nil {
		return fmt.Errorf("alarm - Scheduler - Delivered: %w", err)
	}
	ids := matching(delivered, alarmID)
	if len(ids) == 0 {
		return nil
	}
	if err = s.center.RemoveDelivered(ctx, ids); err != nil {
		return fmt.Errorf("alarm - Scheduler - RemoveDelivered: %w", err)
	}
	return nil
}

func matching(triggers []Trigger, alarmID uuid.UUID) []string {
	var ids []string
	for _, t := range triggers {
		if BelongsTo(t.ID, alarmID) && !slices.Contains(ids, t.ID) {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Snooze registers one alert at now plus the snooze duration. Counting snoozes
// is up to the caller.
func (s *Scheduler) Snooze(ctx context.Context, a *Alarm, now time.Time) (Trigger, error) {
	if !a.SnoozeEnabled {
		return Trigger{}, ErrSnoozeDisabled
	}
	t := SnoozeTrigger(a, now, s.settings)
	if err := s.register(ctx, t); err != nil {
		return Trigger{}, fmt.Errorf("%w: %w", ErrRegister, err)
	}
	s.logger.Info("alarm snoozed",
		slog.String("alarm_id", a.ID.String()),
		slog.Time("until", t.Fire.At),
	)
	return t, nil
}

// Respond handles the answer to a ringing alarm. Any dismissal clears what is
// left of the cycle so the chain stops and the sentinel never reports a miss;
// a repeating alarm is then planned again starting after the current cycle.
func (s *Scheduler) Respond(ctx context.Context, a *Alarm, action Action, now time.Time) (Outcome, error) {
	if action == ActionSnooze {
		t, err := s.Snooze(ctx, a, now)
		if err != nil {
			return Outcome{Action: action}, err
		}
		return Outcome{Action: action, State: StateSnoozed, Snooze: &t}, nil
	}

	if err := s.Cancel(ctx, a.ID); err != nil {
		return Outcome{Action: action}, err
	}

	out := Outcome{Action: action, State: StateDismissed}
	if a.Enabled && !a.IsOneShot() {
		if _, err := s.scheduleFrom(ctx, a, now.Add(s.settings.CycleLength())); err != nil {
			return out, err
		}
	}
	return out, nil
}

// CollectMissed finds delivered sentinels, returns one Miss per alarm and drops
// the deliveries of those alarms so they are never counted twice. Pending
// registrations are left alone.
func (s *Scheduler) CollectMissed(ctx context.Context) ([]Miss, error) {
	delivered, err := s.center.Delivered(ctx)
	if err != nil {
		return nil, fmt.Errorf("alarm - Scheduler - Delivered: %w", err)
	}

	var (
		misses []Miss
		ids    []string
	)
	seen := make(map[uuid.UUID]int)
	for _, t := range delivered {
		if t.Payload.Category != CategorySentinel {
			continue
		}
		id, err := uuid.Parse(t.Payload.AlarmID)
		if err != nil {
			s.logger.Warn("sentinel without alarm id", slog.String("trigger_id", t.ID))
			ids = append(ids, t.ID)
			continue
		}
		var firedAt time.Time
		if t.DeliveredAt != nil {
			firedAt = *t.DeliveredAt
		}
		if i, ok := seen[id]; ok {
			if firedAt.Before(misses[i].FiredAt) {
				misses[i].FiredAt = firedAt
			}
		} else {
			seen[id] = len(misses)
			misses = append(misses, Miss{AlarmID: id, FiredAt: firedAt})
		}
		ids = append(ids, t.ID)
	}

	// The rest of a missed cycle is stale too.
	for _, t := range delivered {
		if slices.Contains(ids, t.ID) {
			continue
		}
		for id := range seen {
			if BelongsTo(t.ID, id) {
				ids = append(ids, t.ID)
				break
			}
		}
	}

	if len(ids) > 0 {
		if err = s.center.RemoveDelivered(ctx, ids); err != nil {
			return nil, fmt.Errorf("alarm - Scheduler - RemoveDelivered: %w", err)
		}
	}
	return misses, nil
}

// Triggers lists what the center holds.
func (s *Scheduler) Triggers(ctx context.Context) (pending, delivered []Trigger, err error) {
	if pending, err = s.center.Pending(ctx); err != nil {
		return nil, nil, fmt.Errorf("alarm - Scheduler - Pending: %w", err)
	}
	if delivered, err = s.center.Delivered(ctx); err != nil {
		return nil, nil, fmt.Errorf("alarm - Scheduler - Delivered: %w", err)
	}
	return pending, delivered, nil
}

// State derives where an alarm is in the protocol from what the center holds.
func (s *Scheduler) State(ctx context.Context, a *Alarm) (State, error) {
	pending, err := s.center.Pending(ctx)
	if err != nil {
		return "", err
	}
	delivered, err := s.center.Delivered(ctx)
	if err != nil {
		return "", err
	}

	var snoozed, fired, scheduled bool
	for _, t := range pending {
		if !BelongsTo(t.ID, a.ID) {
			continue
		}
		scheduled = true
		if t.Kind == KindSnooze {
			snoozed = true
		}
	}
	for _, t := range delivered {
		if BelongsTo(t.ID, a.ID) && t.Payload.Category == CategoryAlarm {
			fired = true
		}
	}

	switch {
	case snoozed:
		return StateSnoozed, nil
	case fired:
		return StateFired, nil
	case scheduled:
		return StateScheduled, nil
	default:
		return StateUnscheduled, nil
	}
}
