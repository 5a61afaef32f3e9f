package engine

import (
	"log/slog"

	"github.com/talgya/rogue-civ/internal/economy"
	"github.com/talgya/rogue-civ/internal/entities"
)

// applyAction runs the player action system for one action.
func (s *Simulation) applyAction(a Action) error {
	if dx, dy, ok := a.delta(); ok {
		return s.movePlayer(dx, dy)
	}
	if a == ActionBuild {
		return s.build()
	}
	return nil
}

// movePlayer steps the player by (dx, dy), wrapping around the logical
// world. A blocked destination rejects the move.
func (s *Simulation) movePlayer(dx, dy int) error {
	_, pos, err := s.Store.Player()
	if err != nil {
		return err
	}
	x, y := s.Map.Canonical(pos.X+dx, pos.Y+dy)
	blocked, err := s.Map.IsBlocked(x, y)
	if err != nil {
		return err
	}
	if blocked {
		return nil
	}
	pos.X, pos.Y = x, y
	return nil
}

// build places a house under the player when the tile allows it and there
// is wood. Otherwise nothing changes.
func (s *Simulation) build() error {
	_, pos, err := s.Store.Player()
	if err != nil {
		return err
	}
	at := *pos

	buildable, err := s.Map.IsBuildable(at.X, at.Y)
	if err != nil {
		return err
	}
	if !buildable || !s.Ledger.CanAffordHouse() {
		return nil
	}

	if err := s.Map.BuildOn(at.X, at.Y); err != nil {
		return err
	}
	s.Ledger.SpendWood(economy.HouseWoodCost)
	house := s.Store.SpawnHouse(entities.Position{X: at.X, Y: at.Y})
	if s.Config.HouseVision {
		s.Store.GrantVision(house)
		s.fovValid = false
	}

	s.Stats.Builds++
	lx, ly := s.Map.Logical(at.X, at.Y)
	s.record(EventBuild, "house built at (%d,%d)", lx, ly)
	slog.Debug("house built", "tick", s.Tick, "x", at.X, "y", at.Y, "wood", s.Ledger.Wood)
	return nil
}
