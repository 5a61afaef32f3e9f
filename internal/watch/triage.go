package watch

import (
	"github.com/talgya/rogue-civ/internal/economy"
	"github.com/talgya/rogue-civ/internal/engine"
)

// Health levels, worst first.
const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
	LevelWatch    = "WATCH"
	LevelHealthy  = "HEALTHY"
)

// ColonyHealth holds derived diagnostic signals computed from a snapshot.
type ColonyHealth struct {
	GrowthsLeft   int     // Growth events the food stock still pays for
	HousesLeft    int     // Houses the wood stock still pays for
	FoodBurnRate  float64 // Food spent per tick over the ledger history
	StalledHouses int     // Spawn-site failures among the recent events
	OpenCapacity  int     // Houses × cap minus persons
	Level         string
	Reasons       []string
}

// Triage computes a ColonyHealth from the snapshot's data. The economy has
// no income, so every signal measures how much runway is left.
func Triage(snap *ColonySnapshot) *ColonyHealth {
	l := snap.Ledger.Ledger
	h := &ColonyHealth{
		GrowthsLeft:  l.Food / economy.GrowthFoodCost,
		HousesLeft:   l.Wood / economy.HouseWoodCost,
		OpenCapacity: snap.Status.Houses*engine.MaxHousePopulation - snap.Status.Persons,
	}

	// History is sorted oldest first.
	if hist := snap.Ledger.History; len(hist) >= 2 {
		first, last := hist[0], hist[len(hist)-1]
		if span := last.Tick - first.Tick; span > 0 {
			h.FoodBurnRate = float64(first.Food-last.Food) / float64(span)
		}
	}

	for _, e := range snap.Events {
		if e.Kind == engine.EventNoSite {
			h.StalledHouses++
		}
	}

	h.Level = LevelHealthy
	switch {
	case h.GrowthsLeft == 0 && h.HousesLeft == 0:
		h.Level = LevelCritical
		h.Reasons = append(h.Reasons, "no food or wood left; the colony cannot grow")
	case h.GrowthsLeft == 0:
		h.Level = LevelWarning
		h.Reasons = append(h.Reasons, "food exhausted; houses will not grow")
	case h.StalledHouses > 0:
		h.Level = LevelWarning
		h.Reasons = append(h.Reasons, "houses cannot find room for new persons")
	case h.HousesLeft == 0:
		h.Level = LevelWatch
		h.Reasons = append(h.Reasons, "wood exhausted; no more houses can be built")
	case h.FoodBurnRate > 0 && float64(l.Food)/h.FoodBurnRate < 100:
		h.Level = LevelWatch
		h.Reasons = append(h.Reasons, "food runs out within 100 ticks at the current rate")
	}

	return h
}
