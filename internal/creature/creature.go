// Package creature holds the virtual pet, its progression catalogs and the pure
// rules that turn wake-up outcomes into stat changes.
package creature

import (
	"errors"
	"slices"
	"strings"
	"time"
)

const (
	MaxHP        = 100
	MaxHappiness = 100
	DefaultName  = "Nemurin"
)

var (
	ErrNotUnlocked = errors.New("accessory is not unlocked")
	ErrUnknownItem = errors.New("unknown accessory")
	ErrUnknownSlot = errors.New("unknown slot")
	ErrBlankName   = errors.New("name must not be blank")
)

type Creature struct {
	Name            string     `json:"name"`
	HP              int        `json:"hp"`
	Happiness       int        `json:"happiness"`
	Streak          int        `json:"streak"`
	BestStreak      int        `json:"best_streak"`
	TotalWakeUps    int        `json:"total_wake_ups"`
	TotalMissed     int        `json:"total_missed"`
	Dead            bool       `json:"dead"`
	BornAt          time.Time  `json:"born_at"`
	LastInteraction *time.Time `json:"last_interaction,omitempty"`

	Unlocked []string        `json:"unlocked"`
	Equipped map[Slot]string `json:"equipped"`
	Stage    Stage           `json:"stage"`
}

// New returns a creature at full health, born at now.
func New(name string, now time.Time) *Creature {
	if name == "" {
		name = DefaultName
	}
	return &Creature{
		Name:      name,
		HP:        MaxHP,
		Happiness: MaxHappiness,
		BornAt:    now,
		Unlocked:  []string{},
		Equipped:  map[Slot]string{},
		Stage:     StageEgg,
	}
}

// Clamp keeps hp and happiness inside [0,100] and sets the dead flag once hp
// reaches zero. The flag is never cleared here.
func (c *Creature) Clamp() {
	c.HP = clamp(c.HP, 0, MaxHP)
	c.Happiness = clamp(c.Happiness, 0, MaxHappiness)
	if c.HP <= 0 {
		c.Dead = true
	}
}

func clamp(v, lo, hi int) int {
	return min(hi, max(lo, v))
}

func (c *Creature) IsUnlocked(id string) bool {
	return slices.Contains(c.Unlocked, id)
}

// unlock appends id unless it is already present.
func (c *Creature) unlock(id string) {
	if !c.IsUnlocked(id) {
		c.Unlocked = append(c.Unlocked, id)
	}
}

// Equip puts an unlocked accessory into its slot, replacing whatever was there.
func (c *Creature) Equip(id string) error {
	a, ok := FindAccessory(id)
	if !ok {
		return ErrUnknownItem
	}
	if !c.IsUnlocked(id) {
		return ErrNotUnlocked
	}
	if c.Equipped == nil {
		c.Equipped = map[Slot]string{}
	}
	c.Equipped[a.Slot] = a.ID
	return nil
}

func (c *Creature) Unequip(slot Slot) error {
	if !slot.Valid() {
		return ErrUnknownSlot
	}
	delete(c.Equipped, slot)
	return nil
}

// EquippedAccessories returns worn items in slot order.
func (c *Creature) EquippedAccessories() []Accessory {
	var out []Accessory
	for _, s := range Slots {
		if id, ok := c.Equipped[s]; ok {
			if a, found := FindAccessory(id); found {
				out = append(out, a)
			}
		}
	}
	return out
}

func (c *Creature) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrBlankName
	}
	c.Name = name
	return nil
}

// Expression is the mood shown for the creature.
type Expression string

const (
	ExpressionHappy   Expression = "happy"
	ExpressionNeutral Expression = "neutral"
	ExpressionSad     Expression = "sad"
	ExpressionDead    Expression = "dead"
)

func (c *Creature) Expression() Expression {
	switch {
	case c.HP <= 0:
		return ExpressionDead
	case c.Happiness >= 70:
		return ExpressionHappy
	case c.Happiness >= 30:
		return ExpressionNeutral
	default:
		return ExpressionSad
	}
}
