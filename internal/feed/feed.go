// Package feed exports alarms as an iCalendar feed so calendar apps can show
// upcoming wake-ups. Every event carries one VALARM per notification trigger.
package feed

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/Raimguhinov/sleep-monster/internal/alarm"
	"github.com/Raimguhinov/sleep-monster/internal/usecase/etag"
)

const (
	ProdID      = "-//sleep-monster//alarms//EN"
	ContentType = "text/calendar; charset=utf-8"
)

// Calendar builds a VCALENDAR with one VEVENT per enabled alarm that still has
// an occurrence after now.
func Calendar(alarms []*alarm.Alarm, now time.Time, loc *time.Location, s alarm.Settings) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProdID)

	for _, a := range alarms {
		if !a.Enabled {
			continue
		}
		start, ok := a.NextFire(now, loc)
		if !ok {
			continue
		}
		cal.Children = append(cal.Children, event(a, start, s))
	}
	return cal
}

// event stamps the VEVENT with its own start rather than the render time, so
// the encoded feed only changes when an alarm or its next occurrence does.
func event(a *alarm.Alarm, start time.Time, s alarm.Settings) *ical.Component {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, a.ID.String())
	ev.Props.SetDateTime(ical.PropDateTimeStamp, start.UTC())
	ev.Props.SetDateTime(ical.PropDateTimeStart, start)
	ev.Props.SetText(ical.PropSummary, a.Title())
	ev.Props.SetText(ical.PropDescription, a.RepeatText())
	ev.Props.SetText(ical.PropCategories, string(alarm.CategoryAlarm))

	if !a.IsOneShot() {
		if ro, ok := a.Rule(start); ok {
			ev.Props.SetRecurrenceRule(&rrule.ROption{
				Freq:      ro.Freq,
				Byweekday: ro.Byweekday,
			})
		}
	}

	for _, o := range s.Offsets() {
		ev.Children = append(ev.Children, valarm(a, o))
	}
	return ev.Component
}

func valarm(a *alarm.Alarm, o alarm.Offset) *ical.Component {
	c := ical.NewComponent(ical.CompAlarm)
	c.Props.SetText(ical.PropAction, "DISPLAY")

	trigger := ical.NewProp(ical.PropTrigger)
	trigger.SetValueType(ical.ValueDuration)
	trigger.Value = duration(o.After)
	c.Props.Set(trigger)

	desc := a.Title()
	if o.Kind == alarm.KindSentinel {
		desc = "Missed wake-up check"
	}
	c.Props.SetText(ical.PropDescription, desc)
	return c
}

// duration formats a non-negative offset as an RFC 5545 dur-time.
func duration(d time.Duration) string {
	if d <= 0 {
		return "PT0S"
	}
	var b strings.Builder
	b.WriteString("PT")
	if h := d / time.Hour; h > 0 {
		fmt.Fprintf(&b, "%dH", h)
		d -= h * time.Hour
	}
	if m := d / time.Minute; m > 0 {
		fmt.Fprintf(&b, "%dM", m)
		d -= m * time.Minute
	}
	if sec := d / time.Second; sec > 0 {
		fmt.Fprintf(&b, "%dS", sec)
	}
	return b.String()
}

// Render encodes the feed and returns it with its ETag.
func Render(alarms []*alarm.Alarm, now time.Time, loc *time.Location, s alarm.Settings) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(Calendar(alarms, now, loc, s)); err != nil {
		return nil, "", fmt.Errorf("feed - Render - Encode: %w", err)
	}
	tag, err := etag.FromData(buf.Bytes())
	if err != nil {
		return nil, "", fmt.Errorf("feed - Render - etag.FromData: %w", err)
	}
	return buf.Bytes(), tag, nil
}
