package stats

import (
	"testing"
	"time"

	"github.com/Raimguhinov/sleep-monster/internal/creature"
	"github.com/stretchr/testify/assert"
)

var base = time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC)

func rec(daysAgo int, r creature.Result) *creature.WakeUpRecord {
	return &creature.WakeUpRecord{CreatedAt: base.AddDate(0, 0, -daysAgo), Result: r}
}

func TestCurrentStreak(t *testing.T) {
	records := []*creature.WakeUpRecord{
		rec(0, creature.ResultOnTime),
		rec(1, creature.ResultLate),
		rec(1, creature.ResultOnTime),
		rec(2, creature.ResultVeryLate),
		rec(3, creature.ResultMissed),
		rec(4, creature.ResultOnTime),
	}
	assert.Equal(t, 3, CurrentStreak(records, base.Add(time.Hour), time.UTC))

	// Nothing today means no current streak.
	assert.Equal(t, 0, CurrentStreak(records[1:], base, time.UTC))
}

func TestBestStreak(t *testing.T) {
	records := []*creature.WakeUpRecord{
		rec(9, creature.ResultOnTime),
		rec(8, creature.ResultOnTime),
		rec(7, creature.ResultOnTime),
		rec(6, creature.ResultMissed),
		rec(5, creature.ResultOnTime),
		rec(3, creature.ResultOnTime),
		rec(2, creature.ResultOnTime),
		rec(2, creature.ResultLate),
	}
	assert.Equal(t, 3, BestStreak(records, time.UTC))
	assert.Equal(t, 0, BestStreak(nil, time.UTC))
}

func TestSummarize(t *testing.T) {
	records := []*creature.WakeUpRecord{
		rec(0, creature.ResultOnTime),
		rec(1, creature.ResultOnTime),
		rec(2, creature.ResultLate),
		rec(3, creature.ResultMissed),
	}
	s := Summarize(records, base, time.UTC)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.OnTime)
	assert.Equal(t, 1, s.Late)
	assert.Equal(t, 1, s.Missed)
	assert.InDelta(t, 0.5, s.OnTimeRate, 1e-9)
	assert.Equal(t, 3, s.CurrentStreak)
	assert.Equal(t, 3, s.BestStreak)
}

func TestMonth(t *testing.T) {
	records := []*creature.WakeUpRecord{
		rec(0, creature.ResultLate),
		{CreatedAt: base.Add(time.Hour), Result: creature.ResultOnTime},
		rec(1, creature.ResultMissed),
		rec(30, creature.ResultOnTime),
	}
	got := Month(records, 2024, time.June, time.UTC)

	assert.Equal(t, map[int]creature.Result{10: creature.ResultOnTime, 9: creature.ResultMissed}, got)
}
