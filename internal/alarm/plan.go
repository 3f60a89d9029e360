package alarm

import (
	"time"
)

// Settings holds the fixed intervals of the trigger chain.
type Settings struct {
	ChainCount     int
	ChainInterval  time.Duration
	SentinelDelay  time.Duration
	SnoozeDuration time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		ChainCount:     3,
		ChainInterval:  30 * time.Second,
		SentinelDelay:  10 * time.Minute,
		SnoozeDuration: 5 * time.Minute,
	}
}

// CycleLength is how long one occurrence stays live, from the primary trigger to
// the later of the last chain member and the sentinel.
func (s Settings) CycleLength() time.Duration {
	chain := time.Duration(max(s.ChainCount-1, 0)) * s.ChainInterval
	return max(chain, s.SentinelDelay)
}

const (
	defaultTitle  = "Good morning!"
	alarmBody     = "Your creature is waiting. Get up and look after it!"
	sentinelTitle = "Your creature is worried..."
	sentinelBody  = "Still asleep? Your creature is losing heart!"
	snoozeTitle   = "Snooze is over!"
	snoozeBody    = "Your creature is still waiting... up you get this time!"
)

func alarmPayload(a *Alarm) Payload {
	return Payload{
		Category:        CategoryAlarm,
		AlarmID:         a.ID.String(),
		Sound:           a.Sound,
		Title:           a.Title(),
		Body:            alarmBody,
		ScheduledHour:   a.Hour,
		ScheduledMinute: a.Minute,
	}
}

func sentinelPayload(a *Alarm) Payload {
	return Payload{
		Category:        CategorySentinel,
		AlarmID:         a.ID.String(),
		Title:           sentinelTitle,
		Body:            sentinelBody,
		ScheduledHour:   a.Hour,
		ScheduledMinute: a.Minute,
	}
}

// Plan derives every trigger an alarm needs, none firing at or before from.
// A disabled alarm, or one whose repeat set yields no weekday, gets none.
func Plan(a *Alarm, from time.Time, loc *time.Location, s Settings) []Trigger {
	if !a.Enabled {
		return nil
	}

	if a.IsOneShot() {
		at, ok := a.NextFire(from, loc)
		if !ok {
			return nil
		}
		return occurrence(a, 0, s, func(d time.Duration) Fire {
			return Fire{At: at.Add(d)}
		})
	}

	days := weekdays(a.RepeatDays)
	out := make([]Trigger, 0, len(days)*(s.ChainCount+1))
	for _, code := range days {
		base := NewWeekTime(time.Weekday(code-1), a.Hour, a.Minute)
		// Each member is pushed past from by its own offset so the whole
		// occurrence lands in the same week as its primary.
		out = append(out, occurrence(a, code, s, func(d time.Duration) Fire {
			w := base.Add(d)
			return Fire{Weekly: &w, NotBefore: from.Add(d)}
		})...)
	}
	return out
}

// Offset places one trigger of an occurrence relative to its primary time.
type Offset struct {
	Kind  Kind
	Index int
	After time.Duration
}

// Offsets lists the primary, the chain and the sentinel of one occurrence.
func (s Settings) Offsets() []Offset {
	out := make([]Offset, 0, s.ChainCount+1)
	out = append(out, Offset{Kind: KindPrimary, Index: -1})
	for i := 1; i < s.ChainCount; i++ {
		out = append(out, Offset{Kind: KindChain, Index: i, After: time.Duration(i) * s.ChainInterval})
	}
	return append(out, Offset{Kind: KindSentinel, Index: -1, After: s.SentinelDelay})
}

// occurrence builds the triggers of one occurrence. fire maps an offset from
// the primary time to a Fire.
func occurrence(a *Alarm, weekday int, s Settings, fire func(time.Duration) Fire) []Trigger {
	offsets := s.Offsets()
	out := make([]Trigger, 0, len(offsets))
	for _, o := range offsets {
		payload := alarmPayload(a)
		if o.Kind == KindSentinel {
			payload = sentinelPayload(a)
		}
		out = append(out, Trigger{
			ID:      TriggerID(o.Kind, a.ID, weekday, o.Index),
			Kind:    o.Kind,
			Fire:    fire(o.After),
			Payload: payload,
		})
	}
	return out
}

// SnoozeTrigger is the single one-shot alert that replaces a snoozed ring.
func SnoozeTrigger(a *Alarm, now time.Time, s Settings) Trigger {
	p := alarmPayload(a)
	p.Title = snoozeTitle
	p.Body = snoozeBody
	return Trigger{
		ID:      SnoozeID(a.ID, now),
		Kind:    KindSnooze,
		Fire:    Fire{At: now.Add(s.SnoozeDuration)},
		Payload: p,
	}
}
