package usecase

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Raimguhinov/sleep-monster/internal/alarm"
	"github.com/Raimguhinov/sleep-monster/internal/feed"
	"github.com/Raimguhinov/sleep-monster/pkg/logger"
)

// AlarmInput is what a client may set on an alarm. Nil pointers keep the
// current value, or the default on create.
type AlarmInput struct {
	Hour          int    `json:"hour"`
	Minute        int    `json:"minute"`
	Label         string `json:"label"`
	RepeatDays    []int  `json:"repeat_days"`
	Sound         string `json:"sound"`
	Enabled       *bool  `json:"enabled"`
	SnoozeEnabled *bool  `json:"snooze_enabled"`
}

func (in AlarmInput) apply(a *alarm.Alarm) {
	a.Hour = in.Hour
	a.Minute = in.Minute
	a.Label = in.Label
	a.RepeatDays = slices.Clone(in.RepeatDays)
	if in.Sound != "" {
		a.Sound = in.Sound
	}
	if in.Enabled != nil {
		a.Enabled = *in.Enabled
	}
	if in.SnoozeEnabled != nil {
		a.SnoozeEnabled = *in.SnoozeEnabled
	}
	a.Normalize()
}

// AlarmResult is an alarm after a change, with the outcome of scheduling it.
// Warning is set when the alarm was saved but its triggers could not all be
// registered.
type AlarmResult struct {
	Alarm    *alarm.Alarm `json:"alarm"`
	Triggers int          `json:"triggers"`
	NextFire *time.Time   `json:"next_fire,omitempty"`
	Repeat   string       `json:"repeat"`
	Warning  string       `json:"warning,omitempty"`
}

// Alarms returns every alarm ordered by time of day.
func (s *Service) Alarms(ctx context.Context) ([]*alarm.Alarm, error) {
	alarms, err := s.store.ListAlarms(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase - Alarms - ListAlarms: %w", err)
	}
	slices.SortStableFunc(alarms, func(a, b *alarm.Alarm) int {
		return cmp.Or(cmp.Compare(a.Hour, b.Hour), cmp.Compare(a.Minute, b.Minute))
	})
	return alarms, nil
}

func (s *Service) Alarm(ctx context.Context, id uuid.UUID) (*AlarmResult, error) {
	a, err := s.store.GetAlarm(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase - Alarm - GetAlarm: %w", err)
	}
	return s.result(a, 0, ""), nil
}

func (s *Service) result(a *alarm.Alarm, triggers int, warning string) *AlarmResult {
	r := &AlarmResult{Alarm: a, Triggers: triggers, Repeat: a.RepeatText(), Warning: warning}
	if a.Enabled {
		if next, ok := a.NextFire(s.now(), s.scheduler.Location()); ok {
			r.NextFire = &next
		}
	}
	return r
}

func (s *Service) CreateAlarm(ctx context.Context, in AlarmInput) (*AlarmResult, error) {
	a := alarm.New(in.Hour, in.Minute, in.Label, in.RepeatDays)
	in.apply(a)
	if err := a.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveAlarm(ctx, a); err != nil {
		return nil, fmt.Errorf("usecase - CreateAlarm - SaveAlarm: %w", err)
	}
	n, warning := s.schedule(ctx, a)
	s.publishCurrent(ctx)
	return s.result(a, n, warning), nil
}

func (s *Service) UpdateAlarm(ctx context.Context, id uuid.UUID, in AlarmInput) (*AlarmResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.store.GetAlarm(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase - UpdateAlarm - GetAlarm: %w", err)
	}
	in.apply(a)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.SaveAlarm(ctx, a); err != nil {
		return nil, fmt.Errorf("usecase - UpdateAlarm - SaveAlarm: %w", err)
	}
	n, warning := s.schedule(ctx, a)
	s.publishCurrent(ctx)
	return s.result(a, n, warning), nil
}

// ToggleAlarm flips the enabled flag and reschedules.
func (s *Service) ToggleAlarm(ctx context.Context, id uuid.UUID) (*AlarmResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.store.GetAlarm(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase - ToggleAlarm - GetAlarm: %w", err)
	}
	a.Enabled = !a.Enabled
	if err := s.store.SaveAlarm(ctx, a); err != nil {
		return nil, fmt.Errorf("usecase - ToggleAlarm - SaveAlarm: %w", err)
	}
	n, warning := s.schedule(ctx, a)
	s.publishCurrent(ctx)
	return s.result(a, n, warning), nil
}

// DeleteAlarm cancels every trigger of the alarm, then forgets it.
func (s *Service) DeleteAlarm(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetAlarm(ctx, id); err != nil {
		return fmt.Errorf("usecase - DeleteAlarm - GetAlarm: %w", err)
	}
	if err := s.scheduler.Cancel(ctx, id); err != nil {
		return fmt.Errorf("usecase - DeleteAlarm - Cancel: %w", err)
	}
	if err := s.store.DeleteAlarm(ctx, id); err != nil {
		return fmt.Errorf("usecase - DeleteAlarm - DeleteAlarm: %w", err)
	}
	s.logger.Info("alarm deleted", slog.String("alarm_id", id.String()))
	s.publishCurrent(ctx)
	return nil
}

// schedule registers the triggers of a saved alarm. Failing to do so never
// loses the alarm: the error comes back as a warning for the caller.
func (s *Service) schedule(ctx context.Context, a *alarm.Alarm) (int, string) {
	triggers, err := s.scheduler.Schedule(ctx, a, s.now())
	if err != nil {
		s.logger.Warn("alarm saved but not fully scheduled",
			slog.String("alarm_id", a.ID.String()),
			logger.Err(err),
		)
		return len(triggers), fmt.Sprintf("alarm saved, but notifications could not be scheduled: %s", err)
	}
	return len(triggers), ""
}

// RescheduleAll replans every alarm, as done at startup. Alarms are handled
// concurrently; failures are collected as warnings, one per alarm.
func (s *Service) RescheduleAll(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alarms, err := s.store.ListAlarms(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase - RescheduleAll - ListAlarms: %w", err)
	}

	warnings := make([]string, len(alarms))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, a := range alarms {
		g.Go(func() error {
			_, warnings[i] = s.schedule(gCtx, a)
			return nil
		})
	}
	_ = g.Wait()

	warnings = slices.DeleteFunc(warnings, func(w string) bool { return w == "" })
	s.logger.Info("alarms rescheduled", slog.Int("alarms", len(alarms)), slog.Int("warnings", len(warnings)))
	s.publishCurrent(ctx)
	return warnings, nil
}

// Feed renders the alarms as iCalendar with its ETag.
func (s *Service) Feed(ctx context.Context) ([]byte, string, error) {
	alarms, err := s.Alarms(ctx)
	if err != nil {
		return nil, "", err
	}
	data, tag, err := feed.Render(alarms, s.now(), s.scheduler.Location(), s.scheduler.Settings())
	if err != nil {
		return nil, "", fmt.Errorf("usecase - Feed - Render: %w", err)
	}
	return data, tag, nil
}

// Triggers lists pending and delivered triggers.
func (s *Service) Triggers(ctx context.Context) (pending, delivered []alarm.Trigger, err error) {
	return s.scheduler.Triggers(ctx)
}

// AlarmList is Alarms with the display fields filled in.
func (s *Service) AlarmList(ctx context.Context) ([]*AlarmResult, error) {
	alarms, err := s.Alarms(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*AlarmResult, 0, len(alarms))
	for _, a := range alarms {
		out = append(out, s.result(a, 0, ""))
	}
	return out, nil
}
