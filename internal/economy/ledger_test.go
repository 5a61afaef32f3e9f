package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpendWood(t *testing.T) {
	l := NewLedger(1, 25, 0)
	assert.True(t, l.CanAffordHouse())
	assert.True(t, l.SpendWood(HouseWoodCost))
	assert.True(t, l.SpendWood(HouseWoodCost))
	assert.Equal(t, 5, l.Wood)

	assert.False(t, l.CanAffordHouse())
	assert.False(t, l.SpendWood(HouseWoodCost))
	assert.Equal(t, 5, l.Wood, "short spend leaves stock untouched")
}

func TestSpendFood(t *testing.T) {
	l := NewLedger(0, 0, 10)
	assert.True(t, l.CanAffordGrowth())
	assert.True(t, l.SpendFood(GrowthFoodCost))
	assert.Equal(t, 0, l.Food)
	assert.False(t, l.SpendFood(GrowthFoodCost))
	assert.Equal(t, 0, l.Food)
}

func TestSnapshotIsCopy(t *testing.T) {
	l := NewLedger(3, 100, 100)
	snap := l.Snapshot()
	l.SpendWood(10)
	assert.Equal(t, 100, snap.Wood)
	assert.Equal(t, "pop=3 wood=90 food=100", l.String())
}
