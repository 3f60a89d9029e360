package alarm

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind is the role a trigger plays within one alarm occurrence.
type Kind string

const (
	KindPrimary  Kind = "primary"
	KindChain    Kind = "chain"
	KindSentinel Kind = "sentinel"
	KindSnooze   Kind = "snooze"
)

// Prefix is the id prefix for triggers of this kind.
func (k Kind) Prefix() string {
	switch k {
	case KindPrimary:
		return "alarm_"
	case KindChain:
		return "chain_"
	case KindSentinel:
		return "sentinel_"
	case KindSnooze:
		return "snooze_"
	default:
		return string(k) + "_"
	}
}

// Category separates ringing alerts from the silent non-response probe.
type Category string

const (
	CategoryAlarm    Category = "ALARM_CATEGORY"
	CategorySentinel Category = "SENTINEL_CATEGORY"
)

const (
	secondsPerDay  = 24 * 60 * 60
	secondsPerWeek = 7 * secondsPerDay
)

// WeekTime is a point in a repeating week, normalized to whole seconds since
// Sunday 00:00. All carry between seconds, minutes, hours and days is plain
// modular arithmetic on that one number.
type WeekTime int

func NewWeekTime(weekday time.Weekday, hour, minute int) WeekTime {
	return WeekTime(0).Add(time.Duration(int(weekday)*secondsPerDay+hour*3600+minute*60) * time.Second)
}

func (w WeekTime) Add(d time.Duration) WeekTime {
	s := (int(w) + int(d/time.Second)) % secondsPerWeek
	if s < 0 {
		s += secondsPerWeek
	}
	return WeekTime(s)
}

func (w WeekTime) Weekday() time.Weekday { return time.Weekday(int(w) / secondsPerDay) }
func (w WeekTime) Hour() int             { return int(w) % secondsPerDay / 3600 }
func (w WeekTime) Minute() int           { return int(w) % 3600 / 60 }
func (w WeekTime) Second() int           { return int(w) % 60 }

func (w WeekTime) String() string {
	return fmt.Sprintf("%s %02d:%02d:%02d", w.Weekday().String()[:3], w.Hour(), w.Minute(), w.Second())
}

// Next returns the first instant strictly after t that matches w in loc.
func (w WeekTime) Next(t time.Time, loc *time.Location) time.Time {
	t = t.In(locOrLocal(loc))
	day := startOfDay(t)
	ahead := (int(w.Weekday()) - int(day.Weekday()) + 7) % 7
	y, m, d := day.Date()
	c := time.Date(y, m, d+ahead, w.Hour(), w.Minute(), w.Second(), 0, t.Location())
	if !c.After(t) {
		c = time.Date(y, m, d+ahead+7, w.Hour(), w.Minute(), w.Second(), 0, t.Location())
	}
	return c
}

// Fire says when a trigger goes off: either once at an absolute instant or
// every week at a WeekTime, never at or before NotBefore.
type Fire struct {
	At        time.Time `json:"at,omitempty"`
	Weekly    *WeekTime `json:"weekly,omitempty"`
	NotBefore time.Time `json:"not_before,omitempty"`
}

func (f Fire) Repeats() bool {
	return f.Weekly != nil
}

// Next returns the first fire instant strictly after t, or the zero time if the
// trigger will not fire again.
func (f Fire) Next(t time.Time, loc *time.Location) time.Time {
	if f.NotBefore.After(t) {
		t = f.NotBefore
	}
	if f.Weekly != nil {
		return f.Weekly.Next(t, loc)
	}
	if f.At.After(t) {
		return f.At
	}
	return time.Time{}
}

// Payload is what the notification carries back when it is delivered.
type Payload struct {
	Category        Category `json:"category"`
	AlarmID         string   `json:"alarm_id"`
	Sound           string   `json:"sound,omitempty"`
	Title           string   `json:"title"`
	Body            string   `json:"body"`
	ScheduledHour   int      `json:"scheduled_hour"`
	ScheduledMinute int      `json:"scheduled_minute"`
}

type Trigger struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"kind"`
	Fire        Fire       `json:"fire"`
	Payload     Payload    `json:"payload"`
	NextFireAt  *time.Time `json:"next_fire_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// TriggerID builds <prefix><alarmID>[_<weekday>][_<index>]. weekday 0 and a
// negative index are omitted.
func TriggerID(kind Kind, alarmID uuid.UUID, weekday, index int) string {
	var b strings.Builder
	b.WriteString(kind.Prefix())
	b.WriteString(alarmID.String())
	if weekday > 0 {
		b.WriteByte('_')
		b.WriteString(strconv.Itoa(weekday))
	}
	if index >= 0 {
		b.WriteByte('_')
		b.WriteString(strconv.Itoa(index))
	}
	return b.String()
}

// SnoozeID is unique per snooze so repeated snoozes never collide.
func SnoozeID(alarmID uuid.UUID, at time.Time) string {
	return TriggerID(KindSnooze, alarmID, 0, -1) + "_" + strconv.FormatInt(at.UnixNano(), 10)
}

// BelongsTo reports whether id was derived from alarmID.
func BelongsTo(id string, alarmID uuid.UUID) bool {
	return strings.Contains(id, alarmID.String())
}
