// Package entities holds the entity-component store: every component type
// has its own typed storage and systems read them through typed filters.
package entities

import "github.com/talgya/rogue-civ/internal/world"

// Position is a canonical coordinate in the center replica of the map.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Drawable is a presentation hint. Higher layers draw on top.
type Drawable struct {
	Glyph rune      `json:"glyph"`
	Color world.RGB `json:"color"`
	Layer int       `json:"layer"`
}

// Vision marks an entity as a source of sight.
type Vision struct {
	GrantsVision bool `json:"grants_vision"`
}

// Player tags the single player-controlled entity.
type Player struct {
	Alive bool `json:"alive"`
}

// House is a dwelling that grows population while food lasts.
type House struct {
	Population          int `json:"population"`
	TicksSinceLastSpawn int `json:"ticks_since_last_spawn"`
}

// Person is a villager who wanders around its home and farms.
type Person struct {
	Home                   Position `json:"home"` // Never changes after spawn
	TicksSinceLastMovement int      `json:"ticks_since_last_movement"`
	TicksSinceLastHarvest  int      `json:"ticks_since_last_harvest"`
}

// Default glyphs.
var (
	PlayerDrawable = Drawable{Glyph: '@', Color: world.ColorWhite, Layer: 2}
	HouseDrawable  = Drawable{Glyph: '1', Color: world.ColorVillage}
	PersonDrawable = Drawable{Glyph: 'o', Color: world.ColorPerson, Layer: 1}
)
