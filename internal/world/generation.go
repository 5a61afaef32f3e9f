// World generation using layered simplex noise.
// Samples height, fertility, roughness and detail channels, then classifies
// each logical cell into one terrain type and tiles it nine times.
package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Channel planes. Each channel samples the same 3D noise field on its own z plane.
const (
	fertilityPlane = 1.99928282
	roughnessPlane = 2.5
)

// Classification thresholds.
const (
	noiseScale      = 10.0
	detailDivisor   = 7.5
	lowlandCeiling  = -0.1
	mountainLevel   = 1.1
	hillLevel       = 0.50
	seaLevel        = -0.175
	forestFertility = 0.25
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Width     int     // Logical world width in tiles
	Height    int     // Logical world height in tiles
	Seed      float64 // Selects the height-channel plane; same seed, same world
	NoiseSeed int64   // Permutation seed of the underlying noise field
}

// DefaultGenConfig returns the full-size world configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:  1000,
		Height: 450,
		Seed:   1.5,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Width:  32,
		Height: 32,
		Seed:   1.5,
	}
}

// Generate creates a complete world map. It is pure: identical configs yield
// identical grids.
func Generate(cfg GenConfig) *Map {
	noise := opensimplex.New(cfg.NoiseSeed)
	m := NewMap(cfg.Width, cfg.Height)

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			sx := float64(x) / noiseScale
			sy := float64(y) / noiseScale

			fertility := noise.Eval3(sx, sy, fertilityPlane)
			roughness := noise.Eval3(sx, sy, roughnessPlane)
			height := noise.Eval3(sx, sy, cfg.Seed)
			height += noise.Eval3(float64(x), float64(y), cfg.Seed+1) / detailDivisor

			// Only non-lowland terrain is roughened.
			if height >= lowlandCeiling {
				height += abs(roughness)
			}

			m.setLogical(x, y, NewTile(Classify(height, fertility)))
		}
	}

	return m
}

// Classify derives the terrain type from a cell's height and fertility samples.
func Classify(height, fertility float64) Terrain {
	switch {
	case height >= mountainLevel:
		return TerrainMountain
	case height >= hillLevel:
		return TerrainHill
	case height < seaLevel:
		return TerrainWater
	case fertility >= forestFertility:
		return TerrainForest
	default:
		return TerrainPlains
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// TerrainCounts returns a summary of terrain type distribution over the
// logical world.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			t, _ := m.Tile(x, y)
			counts[t.Terrain]++
		}
	}
	return counts
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainPlains:
		return "Plains"
	case TerrainForest:
		return "Forest"
	case TerrainWater:
		return "Water"
	case TerrainHill:
		return "Hill"
	case TerrainMountain:
		return "Mountain"
	default:
		return "Unknown"
	}
}

// TerrainGlyph returns a single-character symbol for ASCII previews.
func TerrainGlyph(t Terrain) rune {
	switch t {
	case TerrainPlains:
		return '.'
	case TerrainForest:
		return '♣'
	case TerrainWater:
		return '~'
	case TerrainHill:
		return 'n'
	case TerrainMountain:
		return '^'
	default:
		return '?'
	}
}
