package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/rogue-civ/internal/entities"
	"github.com/talgya/rogue-civ/internal/world"
)

func testConfig(w, h int) Config {
	cfg := DefaultConfig()
	cfg.MapWidth = w
	cfg.MapHeight = h
	cfg.VisionRadius = 4
	cfg.RandomSeed = 42
	return cfg
}

// plainsSim builds a simulation over an all-plains world with the player at
// logical (px, py).
func plainsSim(t *testing.T, cfg Config, px, py int) *Simulation {
	t.Helper()
	m := world.NewMap(cfg.MapWidth, cfg.MapHeight)
	sim := NewSimulation(cfg, m, rand.New(rand.NewSource(cfg.RandomSeed)))
	require.NoError(t, sim.PlacePlayer(px, py))
	return sim
}

func TestBuildScenario(t *testing.T) {
	cfg := testConfig(10, 10)
	cfg.Seed = 1.5
	m := world.Generate(cfg.GenConfig())
	// Known plains tile.
	require.NoError(t, m.SetTerrain(5, 5, world.TerrainPlains))

	sim := NewSimulation(cfg, m, rand.New(rand.NewSource(1)))
	require.NoError(t, sim.PlacePlayer(5, 5))
	pos, err := sim.PlayerPosition()
	require.NoError(t, err)
	assert.Equal(t, entities.Position{X: 15, Y: 15}, pos)

	require.NoError(t, sim.Step(ActionBuild))

	assert.Equal(t, 90, sim.Ledger.Wood)
	for _, p := range [][2]int{{5, 5}, {15, 15}, {25, 25}} {
		tile, err := m.Tile(p[0], p[1])
		require.NoError(t, err)
		assert.False(t, tile.Buildable, "replica %v", p)
		assert.True(t, tile.Blocked, "replica %v", p)
	}

	houses := sim.Store.HousesAt(pos)
	require.Len(t, houses, 1)
	assert.Equal(t, 0, sim.Store.House(houses[0]).Population)
	assert.Equal(t, 1, sim.Stats.Builds)
}

func TestBuildNoOp(t *testing.T) {
	t.Run("not buildable", func(t *testing.T) {
		sim := plainsSim(t, testConfig(10, 10), 3, 3)
		require.NoError(t, sim.Step(ActionBuild))
		require.NoError(t, sim.Step(ActionBuild))

		assert.Equal(t, 90, sim.Ledger.Wood)
		assert.Equal(t, 1, sim.Store.HouseCount())
	})

	t.Run("short on wood", func(t *testing.T) {
		sim := plainsSim(t, testConfig(10, 10), 3, 3)
		sim.Ledger.Wood = 9
		before, err := sim.Map.Tile(13, 13)
		require.NoError(t, err)

		require.NoError(t, sim.Step(ActionBuild))

		after, err := sim.Map.Tile(13, 13)
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Equal(t, 9, sim.Ledger.Wood)
		assert.Zero(t, sim.Store.HouseCount())
		assert.Zero(t, sim.Stats.Builds)
	})
}

func TestPlayerWrapsAround(t *testing.T) {
	tests := []struct {
		name   string
		start  [2]int
		action Action
		want   entities.Position
	}{
		{"left edge", [2]int{0, 5}, ActionMoveLeft, entities.Position{X: 19, Y: 15}},
		{"right edge", [2]int{9, 5}, ActionMoveRight, entities.Position{X: 10, Y: 15}},
		{"top edge", [2]int{5, 0}, ActionMoveUp, entities.Position{X: 15, Y: 19}},
		{"bottom edge", [2]int{5, 9}, ActionMoveDown, entities.Position{X: 15, Y: 10}},
		{"interior", [2]int{5, 5}, ActionMoveRight, entities.Position{X: 16, Y: 15}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := plainsSim(t, testConfig(10, 10), tt.start[0], tt.start[1])
			require.NoError(t, sim.Step(tt.action))
			pos, err := sim.PlayerPosition()
			require.NoError(t, err)
			assert.Equal(t, tt.want, pos)
		})
	}
}

func TestBlockedMoveIsRejected(t *testing.T) {
	sim := plainsSim(t, testConfig(10, 10), 0, 5)
	require.NoError(t, sim.Map.SetTerrain(9, 5, world.TerrainWater))

	require.NoError(t, sim.Step(ActionMoveLeft))

	pos, err := sim.PlayerPosition()
	require.NoError(t, err)
	assert.Equal(t, entities.Position{X: 10, Y: 15}, pos)
	assert.Equal(t, uint64(1), sim.Tick)
}

func TestStepControlActions(t *testing.T) {
	sim := plainsSim(t, testConfig(10, 10), 5, 5)

	assert.NoError(t, sim.Step(ActionFullScreen))
	assert.ErrorIs(t, sim.Step(ActionQuit), ErrQuit)
	assert.Zero(t, sim.Tick)
}

func TestExploredIsMonotonic(t *testing.T) {
	cfg := testConfig(32, 32)
	cfg.RandomSeed = 7
	sim, err := Bootstrap(cfg)
	require.NoError(t, err)

	explored := func() map[[2]int]bool {
		out := make(map[[2]int]bool)
		for y := 0; y < sim.Map.PhysicalHeight(); y++ {
			for x := 0; x < sim.Map.PhysicalWidth(); x++ {
				tile, err := sim.Map.Tile(x, y)
				require.NoError(t, err)
				if tile.Explored {
					out[[2]int{x, y}] = true
				}
			}
		}
		return out
	}

	prev := explored()
	require.NotEmpty(t, prev)

	moves := []Action{ActionMoveRight, ActionMoveRight, ActionMoveDown, ActionMoveLeft, ActionMoveUp, ActionMoveUp}
	for i := 0; i < 20; i++ {
		require.NoError(t, sim.Step(moves[i%len(moves)]))
		cur := explored()
		for p := range prev {
			assert.True(t, cur[p], "tile %v lost explored at step %d", p, i)
		}
		prev = cur
	}
}

func TestVisibilityFollowsPlayer(t *testing.T) {
	sim := plainsSim(t, testConfig(20, 20), 5, 5)
	assert.True(t, sim.FOV.IsInFov(25, 25))
	assert.False(t, sim.FOV.IsInFov(35, 25))

	for i := 0; i < 8; i++ {
		require.NoError(t, sim.Step(ActionMoveRight))
	}
	assert.True(t, sim.FOV.IsInFov(33, 25))
	assert.False(t, sim.FOV.IsInFov(25, 25))
}

func TestBootstrapRejectsBadConfig(t *testing.T) {
	cfg := testConfig(0, 10)
	_, err := Bootstrap(cfg)
	assert.Error(t, err)
}

func TestFrameSprites(t *testing.T) {
	sim := plainsSim(t, testConfig(20, 20), 5, 5)
	require.NoError(t, sim.Step(ActionBuild))

	f, err := sim.Frame(11, 7)
	require.NoError(t, err)
	assert.Equal(t, 11, f.Width)
	assert.Equal(t, 7, f.Height)
	assert.Len(t, f.Cells, 77)

	require.Len(t, f.Sprites, 2)
	assert.Equal(t, entities.HouseDrawable, f.Sprites[0].Drawable)
	assert.Equal(t, entities.PlayerDrawable, f.Sprites[1].Drawable)
	for _, sp := range f.Sprites {
		assert.Equal(t, 5, sp.Col)
		assert.Equal(t, 3, sp.Row)
	}
	assert.True(t, f.At(5, 3).Visible)
}

func TestFrameSpritesAcrossWrapEdge(t *testing.T) {
	cfg := testConfig(10, 10)
	cfg.VisionRadius = 15
	sim := plainsSim(t, cfg, 5, 5)
	// Half a world left of and above the player at (15,15).
	sim.Store.SpawnHouse(entities.Position{X: 10, Y: 15})
	sim.Store.SpawnHouse(entities.Position{X: 15, Y: 10})

	f, err := sim.Frame(10, 10)
	require.NoError(t, err)
	require.Len(t, f.Sprites, 3)

	at := map[[2]int]rune{}
	for _, sp := range f.Sprites {
		at[[2]int{sp.Col, sp.Row}] = sp.Drawable.Glyph
	}
	assert.Equal(t, '1', at[[2]int{0, 5}])
	assert.Equal(t, '1', at[[2]int{5, 0}])
	assert.Equal(t, '@', at[[2]int{5, 5}])
	assert.True(t, f.At(0, 5).Visible)
	assert.Equal(t, 10, f.At(0, 5).X)
}

func TestFrameKeepsSpritesOnExploredTiles(t *testing.T) {
	cfg := testConfig(20, 20)
	cfg.StartFood = 0
	sim := plainsSim(t, cfg, 5, 5)
	require.NoError(t, sim.Step(ActionBuild))
	for i := 0; i < 6; i++ {
		require.NoError(t, sim.Step(ActionMoveRight))
	}
	// Never seen from the player's path.
	sim.Store.SpawnHouse(entities.Position{X: 21, Y: 33})

	pos, err := sim.PlayerPosition()
	require.NoError(t, err)
	require.Equal(t, entities.Position{X: 31, Y: 25}, pos)
	require.False(t, sim.FOV.IsInFov(25, 25))

	f, err := sim.Frame(20, 20)
	require.NoError(t, err)
	require.Len(t, f.Sprites, 2)
	house, player := f.Sprites[0], f.Sprites[1]
	assert.Equal(t, entities.HouseDrawable, house.Drawable)
	assert.Equal(t, 4, house.Col)
	assert.Equal(t, 10, house.Row)
	assert.False(t, f.At(4, 10).Visible)
	assert.True(t, f.At(4, 10).Tile.Explored)
	assert.Equal(t, entities.PlayerDrawable, player.Drawable)
	assert.Equal(t, 10, player.Col)
}

func TestHouseVision(t *testing.T) {
	for _, granted := range []bool{false, true} {
		cfg := testConfig(20, 20)
		cfg.HouseVision = granted
		sim := plainsSim(t, cfg, 5, 5)
		require.NoError(t, sim.Step(ActionBuild))
		for i := 0; i < 6; i++ {
			require.NoError(t, sim.Step(ActionMoveRight))
		}

		assert.Len(t, sim.Store.VisionSources(), map[bool]int{false: 1, true: 2}[granted])
		assert.Equal(t, granted, sim.FOV.IsInFov(22, 25), "house vision %v", granted)
		assert.True(t, sim.FOV.IsInFov(31, 25))
	}
}

func TestSnapshotCopiesState(t *testing.T) {
	sim := plainsSim(t, testConfig(20, 20), 5, 5)
	require.NoError(t, sim.Step(ActionBuild))

	snap, err := sim.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Tick)
	assert.Equal(t, 90, snap.Ledger.Wood)
	assert.Equal(t, entities.Position{X: 25, Y: 25}, snap.Player)
	require.NotEmpty(t, snap.Events)

	sim.Ledger.Wood = 0
	sim.Events[0].Kind = "changed"
	assert.Equal(t, 90, snap.Ledger.Wood)
	assert.Equal(t, EventStart, snap.Events[0].Kind)
}

func TestEventsAreBounded(t *testing.T) {
	sim := plainsSim(t, testConfig(10, 10), 5, 5)
	for i := 0; i < maxEvents+10; i++ {
		sim.record(EventBuild, "event %d", i)
	}
	require.Len(t, sim.Events, maxEvents)
	last := sim.Events[len(sim.Events)-1]
	assert.Equal(t, uint64(maxEvents+11), last.Seq)

	since := EventsSince(sim.Events, last.Seq-2)
	assert.Len(t, since, 2)
	assert.Nil(t, EventsSince(sim.Events, last.Seq))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.MapWidth = 0
	cfg.MaxSpawnAttempts = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "map size")
	assert.Contains(t, err.Error(), "spawn attempts")
}
