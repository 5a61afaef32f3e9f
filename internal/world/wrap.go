package world

// Mod is the Euclidean remainder: the result is always in [0, n).
func Mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// WrapDelta returns the shortest signed offset from a to b on a ring of size n.
// Results fall in (-n/2, n/2].
func WrapDelta(a, b, n int) int {
	d := Mod(b-a, n)
	if d > n/2 {
		d -= n
	}
	return d
}

// Canonical maps any coordinate onto the center replica, [W,2W) × [H,2H).
// A step past either edge of the logical range lands on the opposite edge.
func (m *Map) Canonical(x, y int) (int, int) {
	return m.Width + Mod(x, m.Width), m.Height + Mod(y, m.Height)
}

// IsCanonical returns true if (x, y) lies in the center replica.
func (m *Map) IsCanonical(x, y int) bool {
	return x >= m.Width && x < 2*m.Width && y >= m.Height && y < 2*m.Height
}

// Logical converts a canonical coordinate to its [0,W) × [0,H) form.
func (m *Map) Logical(x, y int) (int, int) {
	return Mod(x, m.Width), Mod(y, m.Height)
}
