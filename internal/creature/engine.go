package creature

import (
	"fmt"
	"time"
)

const (
	snoozeHPPenalty        = 5
	snoozeHappinessPenalty = 10
)

type delta struct {
	hp, happiness int
}

var baseDeltas = map[Result]delta{
	ResultOnTime:   {hp: 5, happiness: 10},
	ResultLate:     {hp: 0, happiness: 3},
	ResultVeryLate: {hp: -10, happiness: -15},
	ResultMissed:   {hp: -20, happiness: -30},
}

// Unlocks is what a wake-up earned on top of the stat deltas. Which fields are
// filled depends on the progression in use.
type Unlocks struct {
	Accessories []Accessory `json:"accessories,omitempty"`
	Stage       Stage       `json:"stage"`
	Evolved     bool        `json:"evolved"`
}

// Evaluation is the computed, not yet applied, outcome of one wake cycle.
type Evaluation struct {
	Result         Result `json:"result"`
	HPDelta        int    `json:"hp_delta"`
	HappinessDelta int    `json:"happiness_delta"`
	StreakBroken   bool   `json:"streak_broken"`
	Unlocks
}

// Progression decides what a creature earns from streaks.
type Progression interface {
	Kind() string
	// Probe inspects the projected state without touching c.
	Probe(c *Creature, projectedStreak, hpDelta int) Unlocks
	Commit(c *Creature, u Unlocks)
	Reset(c *Creature)
}

const (
	KindAccessory = "accessory"
	KindEvolution = "evolution"
)

// ProgressionFor resolves a configured progression kind.
func ProgressionFor(kind string) (Progression, error) {
	switch kind {
	case KindAccessory, "":
		return AccessoryProgression{}, nil
	case KindEvolution:
		return EvolutionProgression{}, nil
	default:
		return nil, fmt.Errorf("unknown progression %q", kind)
	}
}

// AccessoryProgression unlocks catalog items against the best streak.
type AccessoryProgression struct{}

func (AccessoryProgression) Kind() string { return KindAccessory }

func (AccessoryProgression) Probe(c *Creature, projectedStreak, _ int) Unlocks {
	best := max(c.BestStreak, projectedStreak)
	return Unlocks{Accessories: Unlockable(best, c.Unlocked), Stage: c.Stage}
}

func (AccessoryProgression) Commit(c *Creature, u Unlocks) {
	for _, a := range u.Accessories {
		c.unlock(a.ID)
	}
}

// Reset leaves accessories alone; once earned they are kept.
func (AccessoryProgression) Reset(*Creature) {}

// EvolutionProgression moves the creature through stages gated by streak and hp.
type EvolutionProgression struct{}

func (EvolutionProgression) Kind() string { return KindEvolution }

func (EvolutionProgression) Probe(c *Creature, projectedStreak, hpDelta int) Unlocks {
	hp := clamp(c.HP+hpDelta, 0, MaxHP)
	candidate := StageFor(projectedStreak, hp)
	if candidate > c.Stage {
		return Unlocks{Stage: candidate, Evolved: true}
	}
	return Unlocks{Stage: c.Stage}
}

func (EvolutionProgression) Commit(c *Creature, u Unlocks) {
	if u.Evolved && u.Stage > c.Stage {
		c.Stage = u.Stage
	}
}

func (EvolutionProgression) Reset(c *Creature) {
	c.Stage = StageEgg
}

type Engine struct {
	progression Progression
}

func NewEngine(p Progression) *Engine {
	if p == nil {
		p = AccessoryProgression{}
	}
	return &Engine{progression: p}
}

func (e *Engine) Progression() Progression {
	return e.progression
}

// Evaluate computes the deltas and unlocks for a dismissal. c is not modified.
func (e *Engine) Evaluate(dismissed, scheduled time.Time, snoozeCount int, c *Creature) Evaluation {
	result := Classify(scheduled, dismissed)
	base := baseDeltas[result]

	ev := Evaluation{
		Result:         result,
		HPDelta:        base.hp - snoozeHPPenalty*snoozeCount,
		HappinessDelta: base.happiness - snoozeHappinessPenalty*snoozeCount,
		StreakBroken:   result.BreaksStreak(),
	}

	projected := 0
	if !ev.StreakBroken {
		projected = c.Streak + 1
	}
	ev.Unlocks = e.progression.Probe(c, projected, ev.HPDelta)

	return ev
}

// Apply commits an evaluation to c.
func (e *Engine) Apply(ev Evaluation, c *Creature, now time.Time) {
	c.HP += ev.HPDelta
	c.Happiness += ev.HappinessDelta
	c.Clamp()

	if ev.StreakBroken {
		c.Streak = 0
	} else {
		c.Streak++
	}
	c.BestStreak = max(c.BestStreak, c.Streak)

	e.progression.Commit(c, ev.Unlocks)

	c.TotalWakeUps++
	c.LastInteraction = &now
	c.Clamp()
}

// Revive brings a creature back to a viable baseline in place.
func (e *Engine) Revive(c *Creature, now time.Time) {
	c.HP = 50
	c.Happiness = 50
	c.Streak = 0
	c.Dead = false
	c.BornAt = now
	c.LastInteraction = &now
	e.progression.Reset(c)
}
