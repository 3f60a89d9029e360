// Package alarm holds the alarm model and the protocol that turns an alarm into
// the set of local triggers needed to make sure it is noticed.
package alarm

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

const (
	SoundDefault   = "default_alarm"
	SoundGentle    = "gentle_alarm"
	SoundEnergetic = "energetic_alarm"
)

// Sounds lists the bundled alarm sounds.
var Sounds = []string{SoundDefault, SoundGentle, SoundEnergetic}

var (
	ErrInvalid        = errors.New("invalid alarm")
	ErrSnoozeDisabled = errors.New("snooze is disabled for this alarm")
)

var validate = validator.New()

// Alarm repeat days use codes 1..7 for Sunday..Saturday. No repeat days means the
// alarm fires once and then disables itself.
type Alarm struct {
	ID            uuid.UUID  `json:"id"`
	Hour          int        `json:"hour"           validate:"gte=0,lte=23"`
	Minute        int        `json:"minute"         validate:"gte=0,lte=59"`
	Label         string     `json:"label"          validate:"max=64"`
	Enabled       bool       `json:"enabled"`
	RepeatDays    []int      `json:"repeat_days"    validate:"unique,dive,gte=1,lte=7"`
	Sound         string     `json:"sound"          validate:"required"`
	SnoozeEnabled bool       `json:"snooze_enabled"`
	SnoozeCount   int        `json:"snooze_count"   validate:"gte=0"`
	LastTriggered *time.Time `json:"last_triggered,omitempty"`
}

// New returns an enabled alarm with default sound and snooze on.
func New(hour, minute int, label string, repeatDays []int) *Alarm {
	a := &Alarm{
		ID:            uuid.New(),
		Hour:          hour,
		Minute:        minute,
		Label:         label,
		Enabled:       true,
		RepeatDays:    slices.Clone(repeatDays),
		Sound:         SoundDefault,
		SnoozeEnabled: true,
	}
	a.Normalize()
	return a
}

// Normalize sorts repeat days and drops duplicates.
func (a *Alarm) Normalize() {
	if a.RepeatDays == nil {
		a.RepeatDays = []int{}
	}
	slices.Sort(a.RepeatDays)
	a.RepeatDays = slices.Compact(a.RepeatDays)
	if a.Sound == "" {
		a.Sound = SoundDefault
	}
}

// Validate rejects out of range fields. It runs at the boundary; the scheduling
// code assumes a validated alarm.
func (a *Alarm) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, err.Error())
	}
	if !slices.Contains(Sounds, a.Sound) {
		return fmt.Errorf("%w: unknown sound %q", ErrInvalid, a.Sound)
	}
	return nil
}

func (a *Alarm) IsOneShot() bool {
	return len(a.RepeatDays) == 0
}

func (a *Alarm) TimeString() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

var dayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Title is the notification headline: the label, or a greeting when unset.
func (a *Alarm) Title() string {
	if a.Label == "" {
		return defaultTitle
	}
	return a.Label
}

// RepeatText collapses well known day sets into a single word.
func (a *Alarm) RepeatText() string {
	days := weekdays(a.RepeatDays)
	switch {
	case len(a.RepeatDays) == 0:
		return "Once"
	case slices.Equal(days, []int{2, 3, 4, 5, 6}):
		return "Weekdays"
	case slices.Equal(days, []int{1, 7}):
		return "Weekends"
	case slices.Equal(days, []int{1, 2, 3, 4, 5, 6, 7}):
		return "Every day"
	}
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, dayNames[d-1])
	}
	return strings.Join(names, " ")
}

// weekdays returns the sorted, distinct, in-range day codes.
func weekdays(codes []int) []int {
	out := make([]int, 0, len(codes))
	for _, c := range codes {
		if c >= 1 && c <= 7 && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}

var rruleDay = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// Rule describes the alarm as a recurrence rule starting on the day of from.
// A one-shot alarm maps to a daily rule; only its first occurrence matters.
func (a *Alarm) Rule(from time.Time) (*rrule.ROption, bool) {
	ro := &rrule.ROption{
		Freq:     rrule.DAILY,
		Byhour:   []int{a.Hour},
		Byminute: []int{a.Minute},
		Bysecond: []int{0},
		Dtstart:  startOfDay(from),
	}
	if a.IsOneShot() {
		return ro, true
	}
	days := weekdays(a.RepeatDays)
	if len(days) == 0 {
		return nil, false
	}
	ro.Freq = rrule.WEEKLY
	for _, d := range days {
		ro.Byweekday = append(ro.Byweekday, rruleDay[time.Weekday(d-1)])
	}
	return ro, true
}

// NextFire returns the first fire time strictly after now in loc. ok is false
// when the repeat set yields no occurrence.
func (a *Alarm) NextFire(now time.Time, loc *time.Location) (time.Time, bool) {
	ro, ok := a.Rule(now.In(locOrLocal(loc)))
	if !ok {
		return time.Time{}, false
	}
	r, err := rrule.NewRRule(*ro)
	if err != nil {
		return time.Time{}, false
	}
	next := r.After(now, false)
	return next, !next.IsZero()
}

// ScheduledOn aligns the alarm time to the calendar day of t.
func (a *Alarm) ScheduledOn(t time.Time, loc *time.Location) time.Time {
	t = t.In(locOrLocal(loc))
	y, m, d := t.Date()
	return time.Date(y, m, d, a.Hour, a.Minute, 0, 0, t.Location())
}

// MarkFired closes a firing cycle: the snooze count resets, the trigger time is
// stamped and a one-shot alarm turns itself off.
func (a *Alarm) MarkFired(now time.Time) {
	a.SnoozeCount = 0
	a.LastTriggered = &now
	if a.IsOneShot() {
		a.Enabled = false
	}
}

// NextAlarmText renders a countdown such as "in 7h 05m".
func NextAlarmText(next time.Time, ok bool, now time.Time) string {
	if !ok || next.Before(now) {
		return "no alarm"
	}
	d := next.Sub(now)
	hours := int(d / time.Hour)
	minutes := int(d%time.Hour) / int(time.Minute)
	if hours > 0 {
		return fmt.Sprintf("in %dh %02dm", hours, minutes)
	}
	return fmt.Sprintf("in %dm", minutes)
}

// Next picks the enabled alarm that fires first.
func Next(alarms []*Alarm, now time.Time, loc *time.Location) (*Alarm, time.Time, bool) {
	var (
		best     *Alarm
		bestTime time.Time
	)
	for _, a := range alarms {
		if !a.Enabled {
			continue
		}
		t, ok := a.NextFire(now, loc)
		if !ok {
			continue
		}
		if best == nil || t.Before(bestTime) {
			best, bestTime = a, t
		}
	}
	return best, bestTime, best != nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func locOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
