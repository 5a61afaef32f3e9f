// Package terminal draws the world in a terminal and turns key presses into
// engine actions.
package terminal

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"

	"github.com/talgya/rogue-civ/internal/engine"
	"github.com/talgya/rogue-civ/internal/world"
)

// hudHeight is the number of status rows below the map.
const hudHeight = 2

// Screen is the terminal presenter and input source.
type Screen struct {
	screen tcell.Screen

	mu         sync.Mutex
	pending    []engine.Action
	fullScreen bool
	done       chan struct{}
}

// New initializes the terminal.
func New() (*Screen, error) {
	ts, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := ts.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return Wrap(ts), nil
}

// Wrap takes over an initialized tcell screen and starts reading its events.
func Wrap(ts tcell.Screen) *Screen {
	s := &Screen{screen: ts, done: make(chan struct{})}
	ts.HideCursor()
	go s.readEvents()
	return s
}

// Close restores the terminal.
func (s *Screen) Close() {
	s.screen.Fini()
	<-s.done
}

func (s *Screen) readEvents() {
	defer close(s.done)
	for {
		switch ev := s.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if a, ok := ActionForKey(ev.Key(), ev.Rune(), ev.Modifiers()); ok {
				s.mu.Lock()
				s.pending = append(s.pending, a)
				s.mu.Unlock()
			}
		case *tcell.EventResize:
			s.screen.Sync()
		}
	}
}

// Poll returns the actions typed since the last call. It never blocks.
func (s *Screen) Poll() []engine.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

// ToggleFullScreen hides or shows the status rows.
func (s *Screen) ToggleFullScreen() {
	s.mu.Lock()
	s.fullScreen = !s.fullScreen
	s.mu.Unlock()
	slog.Debug("fullscreen toggled")
}

func (s *Screen) isFullScreen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fullScreen
}

// Present draws the viewport around the player and the status rows.
func (s *Screen) Present(sim *engine.Simulation) error {
	w, h := s.screen.Size()
	mapH := h
	if !s.isFullScreen() {
		mapH -= hudHeight
	}
	s.screen.Clear()
	if w <= 0 || mapH <= 0 {
		s.screen.Show()
		return nil
	}

	f, err := sim.Frame(w, mapH)
	if err != nil {
		return err
	}
	offX := (w - f.Width) / 2
	offY := (mapH - f.Height) / 2

	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			c := f.At(col, row)
			s.screen.SetContent(offX+col, offY+row, ' ', nil, tcell.StyleDefault.Background(color(c.Color())))
		}
	}
	for _, sp := range f.Sprites {
		bg := color(f.At(sp.Col, sp.Row).Color())
		style := tcell.StyleDefault.Foreground(color(sp.Drawable.Color)).Background(bg)
		s.screen.SetContent(offX+sp.Col, offY+sp.Row, sp.Drawable.Glyph, nil, style)
	}

	if !s.isFullScreen() {
		s.drawText(0, mapH, statusLine(sim), tcell.StyleDefault.Bold(true))
		s.drawText(0, mapH+1, lastEvent(sim), tcell.StyleDefault.Foreground(tcell.ColorGray))
	}
	s.screen.Show()
	return nil
}

func (s *Screen) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func statusLine(sim *engine.Simulation) string {
	l := sim.Ledger
	return fmt.Sprintf("tick %s  pop %s  wood %s  food %s  houses %d  persons %d  harvested %s",
		humanize.Comma(int64(sim.Tick)),
		humanize.Comma(int64(l.Population)),
		humanize.Comma(int64(l.Wood)),
		humanize.Comma(int64(l.Food)),
		sim.Stats.Houses, sim.Stats.Persons,
		humanize.Comma(int64(sim.Stats.Harvested)))
}

func lastEvent(sim *engine.Simulation) string {
	if len(sim.Events) == 0 {
		return ""
	}
	return sim.Events[len(sim.Events)-1].Description
}

func color(c world.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
