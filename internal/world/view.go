package world

// Cell is one sampled position of a viewport.
type Cell struct {
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Tile    Tile `json:"tile"`
	Visible bool `json:"visible"`
}

// Color is what the cell should look like: full color when visible, dimmed
// once explored, parchment otherwise.
func (c Cell) Color() RGB {
	switch {
	case c.Visible:
		return c.Tile.Color
	case c.Tile.Explored:
		return c.Tile.Color.Dim(3)
	default:
		return ColorUnexplored
	}
}

// View samples a w×h window of the physical grid centered on (cx, cy) and
// returns it row-major. The window is capped at the logical world size, which
// keeps it inside the replicas for any canonical center. visible may be nil.
func (m *Map) View(cx, cy, w, h int, visible func(x, y int) bool) ([]Cell, int, int, error) {
	if w > m.Width {
		w = m.Width
	}
	if h > m.Height {
		h = m.Height
	}
	left := cx - w/2
	top := cy - h/2

	cells := make([]Cell, 0, w*h)
	for y := top; y < top+h; y++ {
		for x := left; x < left+w; x++ {
			t, err := m.Tile(x, y)
			if err != nil {
				return nil, 0, 0, err
			}
			c := Cell{X: x, Y: y, Tile: t}
			if visible != nil {
				c.Visible = visible(x, y)
			}
			cells = append(cells, c)
		}
	}
	return cells, w, h, nil
}
