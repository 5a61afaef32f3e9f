// Package economy provides the colony's resource ledger.
package economy

import "fmt"

// Costs.
const (
	HouseWoodCost  = 10 // Wood spent per house built
	GrowthFoodCost = 10 // Food spent per person a house grows
)

// Ledger holds the colony-wide counters. There is no income: wood and food
// only ever go down.
type Ledger struct {
	Population int `json:"population" db:"population"`
	Wood       int `json:"wood" db:"wood"`
	Food       int `json:"food" db:"food"`
}

// NewLedger creates a ledger with starting stock.
func NewLedger(population, wood, food int) *Ledger {
	return &Ledger{Population: population, Wood: wood, Food: food}
}

// CanAffordHouse returns true if there is wood for a house.
func (l *Ledger) CanAffordHouse() bool {
	return l.Wood >= HouseWoodCost
}

// CanAffordGrowth returns true if there is food for one growth event.
func (l *Ledger) CanAffordGrowth() bool {
	return l.Food >= GrowthFoodCost
}

// SpendWood removes n wood. It changes nothing and returns false if the
// stock is short.
func (l *Ledger) SpendWood(n int) bool {
	if l.Wood < n {
		return false
	}
	l.Wood -= n
	return true
}

// SpendFood removes n food. It changes nothing and returns false if the
// stock is short.
func (l *Ledger) SpendFood(n int) bool {
	if l.Food < n {
		return false
	}
	l.Food -= n
	return true
}

// Snapshot returns a copy of the ledger.
func (l *Ledger) Snapshot() Ledger {
	return *l
}

func (l Ledger) String() string {
	return fmt.Sprintf("pop=%d wood=%d food=%d", l.Population, l.Wood, l.Food)
}
