// Simulation ties together all world systems and runs them each tick.
package engine

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/talgya/rogue-civ/internal/economy"
	"github.com/talgya/rogue-civ/internal/entities"
	"github.com/talgya/rogue-civ/internal/entropy"
	"github.com/talgya/rogue-civ/internal/fov"
	"github.com/talgya/rogue-civ/internal/world"
)

// ErrQuit is returned by Step when the player asks to leave.
var ErrQuit = errors.New("quit requested")

// Simulation holds the complete world state and wires systems together.
// It is single-threaded: only the goroutine running the engine touches it.
type Simulation struct {
	Config Config
	Map    *world.Map
	Store  *entities.Store
	FOV    *fov.Tracker
	Ledger *economy.Ledger
	Rand   entropy.Source

	Tick   uint64  // Most recent tick processed
	Events []Event // Recent events, oldest first
	Stats  SimStats

	seq        uint64
	lastPlayer entities.Position
	fovValid   bool
}

// NewSimulation creates a Simulation over an existing map. No player exists
// until PlacePlayer is called.
func NewSimulation(cfg Config, m *world.Map, rng entropy.Source) *Simulation {
	return &Simulation{
		Config: cfg,
		Map:    m,
		Store:  entities.NewStore(),
		FOV:    fov.NewTracker(cfg.VisionRadius, cfg.LightWalls),
		Ledger: economy.NewLedger(cfg.StartPopulation, cfg.StartWood, cfg.StartFood),
		Rand:   rng,
	}
}

// Bootstrap generates the world, finds a start site and places the player.
func Bootstrap(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	rng := entropy.New(cfg.RandomSeed)
	m := world.Generate(cfg.GenConfig())

	x, y, err := world.FindStartSite(m, rng, cfg.MaxStartAttempts)
	if err != nil {
		return nil, fmt.Errorf("placing player: %w", err)
	}

	sim := NewSimulation(cfg, m, rng)
	if err := sim.PlacePlayer(x, y); err != nil {
		return nil, err
	}
	slog.Info("simulation bootstrapped",
		"width", cfg.MapWidth, "height", cfg.MapHeight, "seed", cfg.Seed,
		"player_x", x, "player_y", y)
	return sim, nil
}

// PlacePlayer spawns the player at (x, y), moved into the canonical range,
// and computes the first field of view.
func (s *Simulation) PlacePlayer(x, y int) error {
	x, y = s.Map.Canonical(x, y)
	s.Store.SpawnPlayer(entities.Position{X: x, Y: y})
	s.fovValid = false
	if err := s.refreshVisibility(); err != nil {
		return err
	}
	lx, ly := s.Map.Logical(x, y)
	s.record(EventStart, "player arrived at (%d,%d)", lx, ly)
	s.updateStats()
	return nil
}

// Step runs one tick with the given action: apply input, grow houses, move
// persons, then recompute visibility if the player moved. Quit returns
// ErrQuit and FullScreen is a presentation concern; neither advances the tick.
func (s *Simulation) Step(a Action) error {
	switch a {
	case ActionQuit:
		return ErrQuit
	case ActionFullScreen:
		return nil
	}

	s.Tick++
	if err := s.applyAction(a); err != nil {
		return fmt.Errorf("tick %d: %s: %w", s.Tick, a, err)
	}
	if err := s.runHousing(); err != nil {
		return fmt.Errorf("tick %d: housing: %w", s.Tick, err)
	}
	if err := s.runPersons(); err != nil {
		return fmt.Errorf("tick %d: persons: %w", s.Tick, err)
	}
	if err := s.refreshVisibility(); err != nil {
		return fmt.Errorf("tick %d: visibility: %w", s.Tick, err)
	}
	s.updateStats()
	return nil
}

// refreshVisibility recomputes the field of view for every vision source,
// but only when the player has moved since the last computation.
func (s *Simulation) refreshVisibility() error {
	_, pos, err := s.Store.Player()
	if err != nil {
		return err
	}
	if s.fovValid && *pos == s.lastPlayer {
		return nil
	}

	positions := s.Store.VisionSources()
	sources := make([]fov.Source, len(positions))
	for i, p := range positions {
		sources[i] = fov.Source{X: p.X, Y: p.Y}
	}
	if err := s.FOV.Compute(s.Map, sources...); err != nil {
		return err
	}
	s.lastPlayer = *pos
	s.fovValid = true
	return nil
}

// PlayerPosition returns the player's canonical position.
func (s *Simulation) PlayerPosition() (entities.Position, error) {
	_, pos, err := s.Store.Player()
	if err != nil {
		return entities.Position{}, err
	}
	return *pos, nil
}

// Frame is what a presenter draws for one tick.
type Frame struct {
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	Cells   []world.Cell `json:"-"`
	Sprites []Placed     `json:"sprites"`
}

// Placed is a sprite at viewport coordinates.
type Placed struct {
	Col      int               `json:"col"`
	Row      int               `json:"row"`
	Drawable entities.Drawable `json:"drawable"`
}

// At returns the cell at viewport column col and row row.
func (f *Frame) At(col, row int) world.Cell {
	return f.Cells[row*f.Width+col]
}

// Frame samples a w×h viewport centered on the player along with every
// sprite that falls inside it on an explored tile, lowest layer first.
func (s *Simulation) Frame(w, h int) (*Frame, error) {
	pos, err := s.PlayerPosition()
	if err != nil {
		return nil, err
	}
	cells, w, h, err := s.Map.View(pos.X, pos.Y, w, h, s.FOV.IsInFov)
	if err != nil {
		return nil, err
	}
	f := &Frame{Width: w, Height: h, Cells: cells}

	// Offsets are taken from the top-left corner so the window, which is
	// at most one world wide, covers each logical column exactly once.
	left, top := pos.X-w/2, pos.Y-h/2
	for _, sp := range s.Store.Sprites() {
		col := world.Mod(sp.Position.X-left, s.Map.Width)
		row := world.Mod(sp.Position.Y-top, s.Map.Height)
		if col >= w || row >= h {
			continue
		}
		if c := f.At(col, row); !c.Visible && !c.Tile.Explored {
			continue
		}
		f.Sprites = append(f.Sprites, Placed{Col: col, Row: row, Drawable: sp.Drawable})
	}
	slices.SortStableFunc(f.Sprites, func(a, b Placed) int {
		return cmp.Compare(a.Drawable.Layer, b.Drawable.Layer)
	})
	return f, nil
}

// Snapshot is an immutable summary of the simulation after a tick.
type Snapshot struct {
	Tick   uint64            `json:"tick"`
	Player entities.Position `json:"player"`
	Ledger economy.Ledger    `json:"ledger"`
	Stats  SimStats          `json:"stats"`
	Events []Event           `json:"events"`
	Frame  *Frame            `json:"-"`
}

// Snapshot copies the observable state. The frame uses the configured
// viewport size.
func (s *Simulation) Snapshot() (Snapshot, error) {
	pos, err := s.PlayerPosition()
	if err != nil {
		return Snapshot{}, err
	}
	frame, err := s.Frame(s.Config.ViewWidth, s.Config.ViewHeight)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Tick:   s.Tick,
		Player: pos,
		Ledger: s.Ledger.Snapshot(),
		Stats:  s.Stats,
		Events: slices.Clone(s.Events),
		Frame:  frame,
	}, nil
}
