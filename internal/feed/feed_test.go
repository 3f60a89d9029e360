package feed

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raimguhinov/sleep-monster/internal/alarm"
)

// Monday.
var now = time.Date(2024, 6, 3, 6, 0, 0, 0, time.UTC)

func TestDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                          "PT0S",
		30 * time.Second:           "PT30S",
		time.Minute:                "PT1M",
		10 * time.Minute:           "PT10M",
		time.Hour + 90*time.Second: "PT1H1M30S",
	}
	for in, want := range cases {
		assert.Equal(t, want, duration(in), in.String())
	}
}

func TestRender(t *testing.T) {
	weekdays := alarm.New(7, 30, "Work", []int{2, 3, 4, 5, 6})
	once := alarm.New(9, 0, "", nil)
	off := alarm.New(8, 0, "Off", nil)
	off.Enabled = false

	data, tag, err := Render([]*alarm.Alarm{weekdays, once, off}, now, time.UTC, alarm.DefaultSettings())
	require.NoError(t, err)
	assert.NotEmpty(t, tag)

	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)

	byUID := map[string]ical.Event{}
	for _, ev := range events {
		uid, err := ev.Props.Text(ical.PropUID)
		require.NoError(t, err)
		byUID[uid] = ev
	}

	work := byUID[weekdays.ID.String()]
	start, err := work.DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 3, 7, 30, 0, 0, time.UTC), start)

	ro, err := work.Props.RecurrenceRule()
	require.NoError(t, err)
	require.NotNil(t, ro)
	assert.Len(t, ro.Byweekday, 5)

	require.Len(t, work.Children, 4)
	var triggers []string
	for _, c := range work.Children {
		assert.Equal(t, ical.CompAlarm, c.Name)
		triggers = append(triggers, c.Props.Get(ical.PropTrigger).Value)
	}
	assert.Equal(t, []string{"PT0S", "PT30S", "PT1M", "PT10M"}, triggers)

	single := byUID[once.ID.String()]
	summary, err := single.Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Good morning!", summary)
	assert.Nil(t, single.Props.Get(ical.PropRecurrenceRule))
}

func TestRender_ETagFollowsContent(t *testing.T) {
	a := alarm.New(7, 0, "", []int{1})
	s := alarm.DefaultSettings()

	_, first, err := Render([]*alarm.Alarm{a}, now, time.UTC, s)
	require.NoError(t, err)
	_, again, err := Render([]*alarm.Alarm{a}, now, time.UTC, s)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// Time passing before the next ring leaves the feed untouched.
	_, later, err := Render([]*alarm.Alarm{a}, now.Add(17*time.Minute+3*time.Second), time.UTC, s)
	require.NoError(t, err)
	assert.Equal(t, first, later)

	a.Hour = 8
	_, changed, err := Render([]*alarm.Alarm{a}, now, time.UTC, s)
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)
}
