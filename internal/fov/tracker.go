// Package fov computes field of view with recursive shadow casting and
// records every lit tile as explored.
package fov

import "log/slog"

// Grid is what the tracker needs from a map.
type Grid interface {
	PhysicalWidth() int
	PhysicalHeight() int
	BlocksVision(x, y int) (bool, error)
	SetExplored(x, y int, explored bool) error
}

// Source is a position that grants vision.
type Source struct {
	X, Y int
}

// Octant transforms; column i maps (dx, dy) into octant i.
var multipliers = [4][8]int{
	{1, 0, 0, -1, -1, 0, 0, 1},
	{0, 1, -1, 0, 0, -1, 1, 0},
	{0, 1, 1, 0, 0, -1, -1, 0},
	{1, 0, 0, 1, -1, 0, 0, -1},
}

// Tracker holds the visible set of the most recent computation. The set is
// only meaningful for the tick it was computed in; explored state lives on
// the map.
type Tracker struct {
	Radius     int
	LightWalls bool // Opaque tiles are themselves visible when lit

	width   int
	height  int
	visible map[int]struct{}
}

// NewTracker creates a tracker with the given radius.
func NewTracker(radius int, lightWalls bool) *Tracker {
	return &Tracker{
		Radius:     radius,
		LightWalls: lightWalls,
		visible:    make(map[int]struct{}),
	}
}

// Compute replaces the visible set with what the sources can see on g and
// marks every visible tile explored. It never un-explores anything.
func (t *Tracker) Compute(g Grid, sources ...Source) error {
	clear(t.visible)
	t.width, t.height = g.PhysicalWidth(), g.PhysicalHeight()

	for _, src := range sources {
		if err := t.mark(g, src.X, src.Y); err != nil {
			return err
		}
		if t.Radius <= 0 {
			continue
		}
		for oct := 0; oct < 8; oct++ {
			err := t.castLight(g, src.X, src.Y, 1, 1.0, 0.0,
				multipliers[0][oct], multipliers[1][oct],
				multipliers[2][oct], multipliers[3][oct])
			if err != nil {
				return err
			}
		}
	}

	slog.Debug("fov computed", "sources", len(sources), "visible", len(t.visible))
	return nil
}

// IsInFov reports whether (x, y) was visible in the last computation.
func (t *Tracker) IsInFov(x, y int) bool {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return false
	}
	_, ok := t.visible[y*t.width+x]
	return ok
}

// VisibleCount returns the size of the current visible set.
func (t *Tracker) VisibleCount() int {
	return len(t.visible)
}

func (t *Tracker) mark(g Grid, x, y int) error {
	idx := y*t.width + x
	if _, ok := t.visible[idx]; ok {
		return nil
	}
	if err := g.SetExplored(x, y, true); err != nil {
		return err
	}
	t.visible[idx] = struct{}{}
	return nil
}

func (t *Tracker) castLight(g Grid, cx, cy, row int, start, end float64, xx, xy, yx, yy int) error {
	if start < end {
		return nil
	}

	radiusSq := t.Radius * t.Radius
	w, h := g.PhysicalWidth(), g.PhysicalHeight()

	for j := row; j <= t.Radius; j++ {
		dy := -j
		blocked := false
		newStart := start

		for dx := -j; dx <= 0; dx++ {
			lSlope := (float64(dx) - 0.5) / (float64(dy) + 0.5)
			rSlope := (float64(dx) + 0.5) / (float64(dy) - 0.5)

			if start < rSlope {
				continue
			}
			if end > lSlope {
				break
			}

			x := cx + dx*xx + dy*xy
			y := cy + dx*yx + dy*yy

			// Off the grid counts as opaque.
			opaque := true
			inside := x >= 0 && y >= 0 && x < w && y < h
			if inside {
				var err error
				if opaque, err = g.BlocksVision(x, y); err != nil {
					return err
				}
				if dx*dx+dy*dy <= radiusSq && (!opaque || t.LightWalls) {
					if err := t.mark(g, x, y); err != nil {
						return err
					}
				}
			}

			if blocked {
				if opaque {
					newStart = rSlope
					continue
				}
				blocked = false
				start = newStart
			} else if opaque && j < t.Radius {
				blocked = true
				if err := t.castLight(g, cx, cy, j+1, start, lSlope, xx, xy, yx, yy); err != nil {
					return err
				}
				newStart = rSlope
			}
		}

		if blocked {
			break
		}
	}
	return nil
}
