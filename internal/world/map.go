package world

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned for any coordinate outside the physical grid.
var ErrOutOfBounds = errors.New("coordinate out of bounds")

// BoundsError reports the offending coordinate and the grid it missed.
type BoundsError struct {
	X, Y          int
	Width, Height int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("(%d,%d) outside %dx%d grid", e.X, e.Y, e.Width, e.Height)
}

func (e *BoundsError) Unwrap() error { return ErrOutOfBounds }

// Map holds the tile grid. Width and Height are the logical world size; the
// grid itself is 3W×3H, a 3×3 tiling of the logical world so a camera window
// can cross any wrap edge without special cases.
//
// Every mutator writes all nine replicas of the logical cell, so
// Tile(x+iW, y+jH) == Tile(x, y) for i, j ∈ {0,1,2} for the whole session.
type Map struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	tiles []Tile // row-major, PhysicalWidth() per row
}

// NewMap creates a map of plains tiles with the given logical dimensions.
func NewMap(width, height int) *Map {
	m := &Map{
		Width:  width,
		Height: height,
		tiles:  make([]Tile, 9*width*height),
	}
	plains := NewTile(TerrainPlains)
	for i := range m.tiles {
		m.tiles[i] = plains
	}
	return m
}

// PhysicalWidth is the width of the replicated grid.
func (m *Map) PhysicalWidth() int { return 3 * m.Width }

// PhysicalHeight is the height of the replicated grid.
func (m *Map) PhysicalHeight() int { return 3 * m.Height }

// InBounds returns true if (x, y) addresses the physical grid.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.PhysicalWidth() && y < m.PhysicalHeight()
}

func (m *Map) index(x, y int) (int, error) {
	if !m.InBounds(x, y) {
		return 0, &BoundsError{X: x, Y: y, Width: m.PhysicalWidth(), Height: m.PhysicalHeight()}
	}
	return y*m.PhysicalWidth() + x, nil
}

// Tile returns a copy of the tile at (x, y).
func (m *Map) Tile(x, y int) (Tile, error) {
	i, err := m.index(x, y)
	if err != nil {
		return Tile{}, err
	}
	return m.tiles[i], nil
}

// IsBlocked reports whether movement into (x, y) is impossible.
func (m *Map) IsBlocked(x, y int) (bool, error) {
	t, err := m.Tile(x, y)
	return t.Blocked, err
}

// IsBuildable reports whether a structure may be placed at (x, y).
func (m *Map) IsBuildable(x, y int) (bool, error) {
	t, err := m.Tile(x, y)
	return t.Buildable, err
}

// BlocksVision reports whether (x, y) is opaque.
func (m *Map) BlocksVision(x, y int) (bool, error) {
	t, err := m.Tile(x, y)
	return t.BlockSight, err
}

// SetExplored sets the explored flag. Callers only ever pass true.
func (m *Map) SetExplored(x, y int, explored bool) error {
	return m.mutate(x, y, func(t *Tile) { t.Explored = explored })
}

// Harvest returns the fertility of (x, y); plains become farmland.
func (m *Map) Harvest(x, y int) (int, error) {
	var yield int
	err := m.mutate(x, y, func(t *Tile) { yield = t.harvest() })
	return yield, err
}

// BuildOn marks (x, y) as built: blocked and no longer buildable.
func (m *Map) BuildOn(x, y int) error {
	return m.mutate(x, y, (*Tile).buildOn)
}

// SetTerrain replaces the logical cell behind (x, y) with a fresh tile of
// terrain t.
func (m *Map) SetTerrain(x, y int, t Terrain) error {
	if _, err := m.index(x, y); err != nil {
		return err
	}
	m.setLogical(x, y, NewTile(t))
	return nil
}

// mutate applies fn to every replica of the logical cell behind (x, y).
func (m *Map) mutate(x, y int, fn func(*Tile)) error {
	if _, err := m.index(x, y); err != nil {
		return err
	}
	m.eachReplica(x, y, func(i int) { fn(&m.tiles[i]) })
	return nil
}

// setLogical writes t into all nine replicas of logical cell (x, y).
func (m *Map) setLogical(x, y int, t Tile) {
	m.eachReplica(x, y, func(i int) { m.tiles[i] = t })
}

func (m *Map) eachReplica(x, y int, fn func(i int)) {
	lx := Mod(x, m.Width)
	ly := Mod(y, m.Height)
	pw := m.PhysicalWidth()
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			fn((ly+j*m.Height)*pw + lx + i*m.Width)
		}
	}
}

// TileCount returns the number of logical tiles.
func (m *Map) TileCount() int {
	return m.Width * m.Height
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(%dx%d, physical=%dx%d)", m.Width, m.Height, m.PhysicalWidth(), m.PhysicalHeight())
}
