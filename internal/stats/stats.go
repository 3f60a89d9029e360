// Package stats derives wake-up statistics from the record log.
package stats

import (
	"slices"
	"time"

	"github.com/Raimguhinov/sleep-monster/internal/creature"
)

type Summary struct {
	Total         int     `json:"total"`
	OnTime        int     `json:"on_time"`
	Late          int     `json:"late"`
	VeryLate      int     `json:"very_late"`
	Missed        int     `json:"missed"`
	OnTimeRate    float64 `json:"on_time_rate"`
	CurrentStreak int     `json:"current_streak"`
	BestStreak    int     `json:"best_streak"`
}

func Summarize(records []*creature.WakeUpRecord, now time.Time, loc *time.Location) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Result {
		case creature.ResultOnTime:
			s.OnTime++
		case creature.ResultLate:
			s.Late++
		case creature.ResultVeryLate:
			s.VeryLate++
		case creature.ResultMissed:
			s.Missed++
		}
	}
	if s.Total > 0 {
		s.OnTimeRate = float64(s.OnTime) / float64(s.Total)
	}
	s.CurrentStreak = CurrentStreak(records, now, loc)
	s.BestStreak = BestStreak(records, loc)
	return s
}

// CurrentStreak counts consecutive days, ending today, that have at least one
// record that is not a miss.
func CurrentStreak(records []*creature.WakeUpRecord, now time.Time, loc *time.Location) int {
	loc = orLocal(loc)
	days := make([]time.Time, 0, len(records))
	for _, r := range records {
		if r.Result != creature.ResultMissed {
			days = append(days, day(r.CreatedAt, loc))
		}
	}
	slices.SortFunc(days, func(a, b time.Time) int { return b.Compare(a) })

	streak := 0
	expected := day(now, loc)
	for _, d := range days {
		switch {
		case d.Equal(expected):
			streak++
			expected = expected.AddDate(0, 0, -1)
		case d.Before(expected):
			return streak
		}
	}
	return streak
}

// BestStreak is the longest run of consecutive days in the log. A miss ends a
// run; a gap of more than one day starts a new one.
func BestStreak(records []*creature.WakeUpRecord, loc *time.Location) int {
	loc = orLocal(loc)
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b *creature.WakeUpRecord) int { return a.CreatedAt.Compare(b.CreatedAt) })

	var (
		best, current int
		last          *time.Time
	)
	for _, r := range sorted {
		d := day(r.CreatedAt, loc)
		if r.Result == creature.ResultMissed {
			current = 0
			last = &d
			continue
		}

		switch {
		case last == nil:
			current = 1
		case d.Equal(*last):
			current = max(current, 1)
		case d.Equal(last.AddDate(0, 0, 1)):
			current++
		default:
			current = 1
		}
		best = max(best, current)
		last = &d
	}
	return best
}

// Month maps each day of the month to the result of its latest record.
func Month(records []*creature.WakeUpRecord, year int, month time.Month, loc *time.Location) map[int]creature.Result {
	loc = orLocal(loc)
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b *creature.WakeUpRecord) int { return a.CreatedAt.Compare(b.CreatedAt) })

	out := make(map[int]creature.Result)
	for _, r := range sorted {
		y, m, d := r.CreatedAt.In(loc).Date()
		if y == year && m == month {
			out[d] = r.Result
		}
	}
	return out
}

func day(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
