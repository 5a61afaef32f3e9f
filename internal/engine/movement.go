package engine

import (
	"errors"

	"github.com/talgya/rogue-civ/internal/entities"
	"github.com/talgya/rogue-civ/internal/entropy"
	"github.com/talgya/rogue-civ/internal/world"
)

// Persons drift freely within this distance of home on each axis.
const homeLeash = 5

// runPersons moves and harvests every person that is due.
func (s *Simulation) runPersons() error {
	var errs []error
	s.Store.EachPerson(func(_ entities.Entity, pos *entities.Position, p *entities.Person) {
		p.TicksSinceLastMovement++
		if due(p.TicksSinceLastMovement, s.Config.TicksBetweenPersonActions) {
			s.wander(pos, p.Home)
			p.TicksSinceLastMovement = 0
		}

		p.TicksSinceLastHarvest++
		if due(p.TicksSinceLastHarvest, s.Config.TicksBetweenHarvests) {
			yield, err := s.Map.Harvest(pos.X, pos.Y)
			if err != nil {
				errs = append(errs, err)
				return
			}
			s.Stats.Harvested += yield
			p.TicksSinceLastHarvest = 0
		}
	})
	return errors.Join(errs...)
}

// wander takes one random step, biased back toward home once the person is
// more than homeLeash tiles away on an axis. Terrain is not checked.
func (s *Simulation) wander(pos *entities.Position, home entities.Position) {
	dx := s.stepToward(home.X, pos.X, s.Map.Width)
	dy := s.stepToward(home.Y, pos.Y, s.Map.Height)
	pos.X, pos.Y = s.Map.Canonical(pos.X+dx, pos.Y+dy)
}

func (s *Simulation) stepToward(home, at, size int) int {
	lo, hi := -1, 2
	switch off := world.WrapDelta(home, at, size); {
	case off < -homeLeash:
		lo = 0
	case off > homeLeash:
		hi = 1
	}
	return entropy.Range(s.Rand, lo, hi)
}
