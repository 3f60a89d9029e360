package creature

import "time"

// Result is the timing category of a wake-up. Categories are ordered from best
// to worst.
type Result string

const (
	ResultOnTime   Result = "on_time"
	ResultLate     Result = "late"
	ResultVeryLate Result = "very_late"
	ResultMissed   Result = "missed"
)

const (
	lateAfter     = 60 * time.Second
	veryLateAfter = 300 * time.Second
	missedAfter   = 600 * time.Second
)

// Classify maps the delay between the scheduled and the dismiss time onto a
// Result. Intervals are half-open: exactly 60s is late, exactly 600s is missed.
// A negative delay (dismissed early) is on time.
func Classify(scheduled, dismissed time.Time) Result {
	delay := dismissed.Sub(scheduled)
	switch {
	case delay < lateAfter:
		return ResultOnTime
	case delay < veryLateAfter:
		return ResultLate
	case delay < missedAfter:
		return ResultVeryLate
	default:
		return ResultMissed
	}
}

func (r Result) Text() string {
	switch r {
	case ResultOnTime:
		return "Woke up on time!"
	case ResultLate:
		return "A little late..."
	case ResultVeryLate:
		return "Very late!"
	default:
		return "Overslept..."
	}
}

// BreaksStreak reports whether the result resets the current streak.
func (r Result) BreaksStreak() bool {
	return r == ResultVeryLate || r == ResultMissed
}
