// Package world provides the tile grid, terrain classification, and the
// replicated toroidal map the camera samples from.
package world

import "fmt"

// RGB is a 24-bit display color. The core never draws; colors are a hint for
// whatever presents the map.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Dim returns the color with every channel divided by n.
func (c RGB) Dim(n uint8) RGB {
	if n == 0 {
		return c
	}
	return RGB{R: c.R / n, G: c.G / n, B: c.B / n}
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Palette.
var (
	ColorMountain   = RGB{R: 244, G: 251, B: 252}
	ColorHill       = RGB{R: 214, G: 163, B: 110}
	ColorSea        = RGB{R: 127, G: 191, B: 191}
	ColorForest     = RGB{R: 127, G: 191, B: 127}
	ColorPlains     = RGB{R: 161, G: 214, B: 110}
	ColorVillage    = RGB{R: 161, G: 144, B: 110}
	ColorFarm       = RGB{R: 201, G: 184, B: 99}
	ColorUnexplored = RGB{R: 242, G: 227, B: 211}
	ColorWhite      = RGB{R: 255, G: 255, B: 255}
	ColorPerson     = RGB{R: 92, G: 64, B: 51}
)

// Terrain types for map tiles.
type Terrain uint8

const (
	TerrainPlains   Terrain = iota // Open, buildable, most fertile land
	TerrainForest                  // Buildable woodland, poor soil
	TerrainWater                   // Impassable, transparent
	TerrainHill                    // Impassable, blocks sight
	TerrainMountain                // Impassable, blocks sight, barren
)

// Tile is a single cell of the map. Tiles are values; the Map hands out copies.
type Tile struct {
	Terrain    Terrain `json:"terrain"`
	Blocked    bool    `json:"blocked"`
	BlockSight bool    `json:"block_sight"`
	Explored   bool    `json:"explored"`
	Buildable  bool    `json:"buildable"`
	Color      RGB     `json:"color"`
	Fertility  int     `json:"fertility"`
}

// NewTile returns a fresh, unexplored tile of the given terrain.
func NewTile(t Terrain) Tile {
	switch t {
	case TerrainMountain:
		return Tile{Terrain: t, Blocked: true, BlockSight: true, Color: ColorMountain, Fertility: 0}
	case TerrainHill:
		return Tile{Terrain: t, Blocked: true, BlockSight: true, Color: ColorHill, Fertility: 1}
	case TerrainWater:
		return Tile{Terrain: t, Blocked: true, Color: ColorSea, Fertility: 3}
	case TerrainForest:
		return Tile{Terrain: t, Buildable: true, Color: ColorForest, Fertility: 1}
	default:
		return Tile{Terrain: TerrainPlains, Buildable: true, Color: ColorPlains, Fertility: 3}
	}
}

// harvest returns the tile's fertility, turning untouched plains into farmland.
func (t *Tile) harvest() int {
	if t.Color == ColorPlains {
		t.Color = ColorFarm
	}
	return t.Fertility
}

// buildOn marks the tile as occupied by a structure.
func (t *Tile) buildOn() {
	t.Blocked = true
	t.Buildable = false
}
