package engine

import "fmt"

// Event kinds.
const (
	EventStart  = "start"
	EventBuild  = "build"
	EventGrowth = "growth"
	EventNoSite = "no_site"
)

// maxEvents bounds the in-memory event history.
const maxEvents = 256

// Event is a notable occurrence in the world.
type Event struct {
	Seq         uint64 `json:"seq" db:"seq"`
	Tick        uint64 `json:"tick" db:"tick"`
	Kind        string `json:"kind" db:"kind"`
	Description string `json:"description" db:"description"`
}

// SimStats tracks aggregate world statistics.
type SimStats struct {
	Houses             int `json:"houses"`
	Persons            int `json:"persons"`
	Builds             int `json:"builds"`
	Growths            int `json:"growths"`
	Harvested          int `json:"harvested"`
	FailedSiteSearches int `json:"failed_site_searches"`
	VisibleTiles       int `json:"visible_tiles"`
}

func (s *Simulation) record(kind, format string, args ...any) {
	s.seq++
	s.Events = append(s.Events, Event{
		Seq:         s.seq,
		Tick:        s.Tick,
		Kind:        kind,
		Description: fmt.Sprintf(format, args...),
	})
	// Trim old events to prevent unbounded growth.
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
}

// EventsSince returns the events with a sequence number above seq. events
// must be ordered by sequence, as Simulation.Events is.
func EventsSince(events []Event, seq uint64) []Event {
	for i, e := range events {
		if e.Seq > seq {
			return append([]Event(nil), events[i:]...)
		}
	}
	return nil
}

func (s *Simulation) updateStats() {
	s.Stats.Houses = s.Store.HouseCount()
	s.Stats.Persons = s.Store.PersonCount()
	s.Stats.VisibleTiles = s.FOV.VisibleCount()
}
