package fov

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/rogue-civ/internal/world"
)

func explored(t *testing.T, m *world.Map, x, y int) bool {
	t.Helper()
	tile, err := m.Tile(x, y)
	require.NoError(t, err)
	return tile.Explored
}

func TestOpenFieldRadius(t *testing.T) {
	m := world.NewMap(10, 10)
	tr := NewTracker(3, true)
	require.NoError(t, tr.Compute(m, Source{X: 15, Y: 15}))

	assert.True(t, tr.IsInFov(15, 15), "source tile is always visible")
	assert.True(t, tr.IsInFov(18, 15))
	assert.True(t, tr.IsInFov(12, 15))
	assert.True(t, tr.IsInFov(15, 12))
	assert.True(t, tr.IsInFov(17, 17))
	assert.False(t, tr.IsInFov(19, 15))
	assert.False(t, tr.IsInFov(18, 18))

	assert.True(t, explored(t, m, 18, 15))
	assert.False(t, explored(t, m, 19, 15))
}

func TestWallCastsShadow(t *testing.T) {
	for _, lightWalls := range []bool{true, false} {
		m := world.NewMap(10, 10)
		require.NoError(t, m.SetTerrain(17, 15, world.TerrainHill))

		tr := NewTracker(5, lightWalls)
		require.NoError(t, tr.Compute(m, Source{X: 15, Y: 15}))

		assert.Equal(t, lightWalls, tr.IsInFov(17, 15), "light walls=%v", lightWalls)
		assert.True(t, tr.IsInFov(16, 15))
		assert.False(t, tr.IsInFov(18, 15))
		assert.False(t, tr.IsInFov(19, 15))
		assert.False(t, explored(t, m, 19, 15))
	}
}

func TestWaterDoesNotBlockSight(t *testing.T) {
	m := world.NewMap(10, 10)
	require.NoError(t, m.SetTerrain(17, 15, world.TerrainWater))

	tr := NewTracker(5, false)
	require.NoError(t, tr.Compute(m, Source{X: 15, Y: 15}))
	assert.True(t, tr.IsInFov(17, 15))
	assert.True(t, tr.IsInFov(19, 15))
}

func TestExploredIsMonotonic(t *testing.T) {
	m := world.NewMap(20, 20)
	tr := NewTracker(2, true)

	require.NoError(t, tr.Compute(m, Source{X: 22, Y: 22}))
	require.True(t, explored(t, m, 23, 22))

	require.NoError(t, tr.Compute(m, Source{X: 35, Y: 35}))
	assert.False(t, tr.IsInFov(23, 22), "visibility is per computation")
	assert.True(t, explored(t, m, 23, 22), "explored survives recomputation")
	assert.True(t, explored(t, m, 36, 35))
}

func TestMultipleSources(t *testing.T) {
	m := world.NewMap(20, 20)
	tr := NewTracker(2, true)
	require.NoError(t, tr.Compute(m, Source{X: 22, Y: 22}, Source{X: 35, Y: 35}))

	assert.True(t, tr.IsInFov(23, 22))
	assert.True(t, tr.IsInFov(36, 35))
	assert.False(t, tr.IsInFov(29, 29))
}

func TestZeroRadiusSeesOnlySource(t *testing.T) {
	m := world.NewMap(10, 10)
	tr := NewTracker(0, true)
	require.NoError(t, tr.Compute(m, Source{X: 15, Y: 15}))
	assert.Equal(t, 1, tr.VisibleCount())
	assert.True(t, tr.IsInFov(15, 15))
}

func TestGridEdgeIsOpaque(t *testing.T) {
	m := world.NewMap(4, 4)
	tr := NewTracker(6, true)
	require.NoError(t, tr.Compute(m, Source{X: 1, Y: 1}))
	assert.True(t, tr.IsInFov(0, 0))
	assert.False(t, tr.IsInFov(-1, 0))

	require.NoError(t, tr.Compute(m, Source{X: 10, Y: 11}))
	assert.True(t, tr.IsInFov(11, 11))
	assert.False(t, tr.IsInFov(12, 11))
	assert.False(t, tr.IsInFov(11, 12))
	assert.False(t, tr.IsInFov(0, 12))
}

func TestSourceOutOfBounds(t *testing.T) {
	m := world.NewMap(4, 4)
	tr := NewTracker(3, true)
	err := tr.Compute(m, Source{X: -1, Y: 5})
	assert.ErrorIs(t, err, world.ErrOutOfBounds)
}
