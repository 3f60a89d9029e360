package creature

import "slices"

// Slot is the body position an accessory is worn on. At most one item per slot.
type Slot string

const (
	SlotHead       Slot = "head"
	SlotNeck       Slot = "neck"
	SlotHeld       Slot = "held"
	SlotBack       Slot = "back"
	SlotBackground Slot = "background"
)

// Slots lists every slot in display order.
var Slots = []Slot{SlotHead, SlotNeck, SlotHeld, SlotBack, SlotBackground}

func (s Slot) Valid() bool {
	return slices.Contains(Slots, s)
}

type Accessory struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Slot           Slot   `json:"slot"`
	RequiredStreak int    `json:"required_streak"`
}

// Catalog is the ordered list of unlockable accessories.
var Catalog = []Accessory{
	{ID: "nightcap", Name: "Nightcap", Slot: SlotHead, RequiredStreak: 3},
	{ID: "crown_flower", Name: "Flower crown", Slot: SlotHead, RequiredStreak: 21},
	{ID: "crown_gold", Name: "Golden crown", Slot: SlotHead, RequiredStreak: 60},

	{ID: "scarf_fluffy", Name: "Fluffy scarf", Slot: SlotNeck, RequiredStreak: 7},
	{ID: "pendant_star", Name: "Star pendant", Slot: SlotNeck, RequiredStreak: 14},

	{ID: "pillow_mini", Name: "Mini pillow", Slot: SlotHeld, RequiredStreak: 5},
	{ID: "wand_star", Name: "Star wand", Slot: SlotHeld, RequiredStreak: 10},

	{ID: "wings_angel", Name: "Angel wings", Slot: SlotBack, RequiredStreak: 30},
	{ID: "cape_moon", Name: "Moon cape", Slot: SlotBack, RequiredStreak: 45},

	{ID: "bg_clouds", Name: "Above the clouds", Slot: SlotBackground, RequiredStreak: 7},
	{ID: "bg_flowers", Name: "Flower field", Slot: SlotBackground, RequiredStreak: 21},
	{ID: "bg_starry", Name: "Starry sky", Slot: SlotBackground, RequiredStreak: 45},
	{ID: "bg_rainbow", Name: "Rainbow bridge", Slot: SlotBackground, RequiredStreak: 60},
}

// FindAccessory looks an accessory up by id.
func FindAccessory(id string) (Accessory, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Accessory{}, false
}

// Unlockable returns, in catalog order, every accessory whose threshold is met by
// streak and whose id is not in unlocked.
func Unlockable(streak int, unlocked []string) []Accessory {
	var out []Accessory
	for _, a := range Catalog {
		if a.RequiredStreak <= streak && !slices.Contains(unlocked, a.ID) {
			out = append(out, a)
		}
	}
	return out
}

// Stage is a discrete evolution stage. Stages only move forward until revival.
type Stage int

const (
	StageEgg Stage = iota
	StageBaby
	StageYoung
	StageAdult
	StageMaster
)

type stageRule struct {
	name           string
	requiredStreak int
	// minHP is exclusive; zero means no hp gate.
	minHP int
}

var stageRules = [...]stageRule{
	StageEgg:    {name: "egg"},
	StageBaby:   {name: "baby", requiredStreak: 3},
	StageYoung:  {name: "young", requiredStreak: 7, minHP: 70},
	StageAdult:  {name: "adult", requiredStreak: 21, minHP: 80},
	StageMaster: {name: "master", requiredStreak: 60, minHP: 90},
}

func (s Stage) String() string {
	if s < StageEgg || s > StageMaster {
		return "unknown"
	}
	return stageRules[s].name
}

func (s Stage) RequiredStreak() int { return stageRules[s].requiredStreak }

func (s Stage) RequiredHP() int { return stageRules[s].minHP }

func (s Stage) satisfied(streak, hp int) bool {
	r := stageRules[s]
	if streak < r.requiredStreak {
		return false
	}
	return r.minHP == 0 || hp > r.minHP
}

// StageFor returns the highest stage whose streak and hp gates are both met.
func StageFor(streak, hp int) Stage {
	for s := StageMaster; s > StageEgg; s-- {
		if s.satisfied(streak, hp) {
			return s
		}
	}
	return StageEgg
}
