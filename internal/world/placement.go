// Start placement: finds a canonical land cell for the player to begin on.
package world

import "errors"

// ErrNoStartSite is returned when no start site was found within the attempt budget.
var ErrNoStartSite = errors.New("no start site found")

// Rand is the slice of math/rand the placement search needs.
type Rand interface {
	Intn(n int) int
}

// probeOffsets are the cells checked around a candidate start site.
var probeOffsets = [4][2]int{{-1, -1}, {-1, 0}, {0, -1}, {0, 0}}

// FindStartSite picks random logical cells until one is surrounded by land,
// returning its canonical coordinate.
func FindStartSite(m *Map, rng Rand, maxAttempts int) (int, int, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		x, y := m.Canonical(rng.Intn(m.Width), rng.Intn(m.Height))
		ok, err := SurroundedByLand(m, x, y)
		if err != nil {
			return 0, 0, err
		}
		if ok {
			return x, y, nil
		}
	}
	return 0, 0, ErrNoStartSite
}

// SurroundedByLand returns true if every probe tile around (x, y) is unblocked.
func SurroundedByLand(m *Map, x, y int) (bool, error) {
	for _, off := range probeOffsets {
		blocked, err := m.IsBlocked(x+off[0], y+off[1])
		if err != nil {
			return false, err
		}
		if blocked {
			return false, nil
		}
	}
	return true, nil
}
