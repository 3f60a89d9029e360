package creature

import "time"

// DailyDecay is the per-day stat loss for an idle creature.
func DailyDecay() (hpDelta, happinessDelta int) {
	return -3, -5
}

// MissedAlarm is the penalty for an alarm nobody answered.
func MissedAlarm() (hpDelta, happinessDelta int) {
	return -20, -30
}

// ElapsedDays counts calendar-day boundaries between from and to in loc.
func ElapsedDays(from, to time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	a := startOfDay(from.In(loc))
	b := startOfDay(to.In(loc))
	if !b.After(a) {
		return 0
	}
	days := 0
	for d := a; d.Before(b); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ApplyDecay charges the daily decay once per calendar day since the last
// interaction and returns the number of days charged. A creature that was never
// interacted with only gets stamped.
func ApplyDecay(c *Creature, now time.Time, loc *time.Location) int {
	if c.LastInteraction == nil {
		c.LastInteraction = &now
		return 0
	}

	days := ElapsedDays(*c.LastInteraction, now, loc)
	if days <= 0 {
		return 0
	}

	hp, happiness := DailyDecay()
	c.HP += hp * days
	c.Happiness += happiness * days
	c.LastInteraction = &now
	c.Clamp()

	return days
}

// ApplyMissed charges a missed alarm: stat penalty, streak reset and one more
// miss on the counter.
func ApplyMissed(c *Creature) {
	hp, happiness := MissedAlarm()
	c.HP += hp
	c.Happiness += happiness
	c.Streak = 0
	c.TotalMissed++
	c.Clamp()
}
