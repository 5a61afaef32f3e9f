package engine

import (
	"errors"
	"log/slog"

	"github.com/talgya/rogue-civ/internal/economy"
	"github.com/talgya/rogue-civ/internal/entities"
	"github.com/talgya/rogue-civ/internal/entropy"
)

// ErrNoSpawnSite means a house found no buildable tile for a new person
// within its attempt budget. Growth is skipped for that tick.
var ErrNoSpawnSite = errors.New("no spawn site near house")

// Housing constants.
const (
	MaxHousePopulation = 5 // A house grows while its population is below this
	spawnReach         = 3 // Persons appear within this many tiles of home
)

type pendingPerson struct {
	pos, home entities.Position
}

// runHousing grows every house that is due, has room and has food. New
// persons are spawned after the iteration finishes.
func (s *Simulation) runHousing() error {
	var (
		pending []pendingPerson
		errs    []error
	)

	s.Store.EachHouse(func(_ entities.Entity, pos *entities.Position, h *entities.House) {
		h.TicksSinceLastSpawn++
		if !due(h.TicksSinceLastSpawn, s.Config.TicksBetweenHouseSpawns) {
			return
		}
		if h.Population >= MaxHousePopulation || !s.Ledger.CanAffordGrowth() {
			return
		}

		site, err := s.findSpawnSite(*pos)
		if errors.Is(err, ErrNoSpawnSite) {
			s.Stats.FailedSiteSearches++
			s.record(EventNoSite, "house at (%d,%d): %v", pos.X, pos.Y, err)
			slog.Warn("growth skipped", "tick", s.Tick, "x", pos.X, "y", pos.Y, "error", err)
			return
		}
		if err != nil {
			errs = append(errs, err)
			return
		}

		h.Population++
		h.TicksSinceLastSpawn = 0
		s.Ledger.SpendFood(economy.GrowthFoodCost)
		s.Ledger.Population++
		pending = append(pending, pendingPerson{pos: site, home: *pos})
	})
	if err := errors.Join(errs...); err != nil {
		return err
	}

	for _, p := range pending {
		s.Store.SpawnPerson(p.pos, p.home)
		s.Stats.Growths++
		s.record(EventGrowth, "person born at (%d,%d)", p.pos.X, p.pos.Y)
		slog.Debug("house grew", "tick", s.Tick, "x", p.home.X, "y", p.home.Y, "food", s.Ledger.Food)
	}
	return nil
}

// findSpawnSite draws random offsets around home until it hits a buildable
// tile or runs out of attempts.
func (s *Simulation) findSpawnSite(home entities.Position) (entities.Position, error) {
	for attempt := 0; attempt < s.Config.MaxSpawnAttempts; attempt++ {
		dx := entropy.Range(s.Rand, -spawnReach, spawnReach+1)
		dy := entropy.Range(s.Rand, -spawnReach, spawnReach+1)
		x, y := s.Map.Canonical(home.X+dx, home.Y+dy)
		ok, err := s.Map.IsBuildable(x, y)
		if err != nil {
			return entities.Position{}, err
		}
		if ok {
			return entities.Position{X: x, Y: y}, nil
		}
	}
	return entities.Position{}, ErrNoSpawnSite
}

// due reports whether a timer at elapsed ticks has reached interval.
func due(elapsed, interval int) bool {
	return interval <= 1 || elapsed >= interval
}
