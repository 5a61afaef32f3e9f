package terminal

import (
	"math/rand"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/rogue-civ/internal/engine"
	"github.com/talgya/rogue-civ/internal/world"
)

func TestActionForKey(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		mod  tcell.ModMask
		want engine.Action
		ok   bool
	}{
		{tcell.KeyUp, 0, tcell.ModNone, engine.ActionMoveUp, true},
		{tcell.KeyDown, 0, tcell.ModNone, engine.ActionMoveDown, true},
		{tcell.KeyLeft, 0, tcell.ModNone, engine.ActionMoveLeft, true},
		{tcell.KeyRight, 0, tcell.ModNone, engine.ActionMoveRight, true},
		{tcell.KeyRune, 'h', tcell.ModNone, engine.ActionMoveLeft, true},
		{tcell.KeyRune, ' ', tcell.ModNone, engine.ActionBuild, true},
		{tcell.KeyRune, 'b', tcell.ModNone, engine.ActionBuild, true},
		{tcell.KeyEnter, 0, tcell.ModAlt, engine.ActionFullScreen, true},
		{tcell.KeyEnter, 0, tcell.ModNone, 0, false},
		{tcell.KeyEscape, 0, tcell.ModNone, engine.ActionQuit, true},
		{tcell.KeyCtrlC, 0, tcell.ModCtrl, engine.ActionQuit, true},
		{tcell.KeyRune, 'z', tcell.ModNone, 0, false},
		{tcell.KeyTab, 0, tcell.ModNone, 0, false},
	}
	for _, tt := range tests {
		got, ok := ActionForKey(tt.key, tt.r, tt.mod)
		assert.Equal(t, tt.ok, ok, "key %v rune %q", tt.key, tt.r)
		if tt.ok {
			assert.Equal(t, tt.want, got, "key %v rune %q", tt.key, tt.r)
		}
	}
}

func newScreen(t *testing.T, w, h int) (*Screen, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, sim.Init())
	sim.SetSize(w, h)
	s := Wrap(sim)
	t.Cleanup(s.Close)
	return s, sim
}

func TestPollCollectsKeys(t *testing.T) {
	s, ts := newScreen(t, 20, 10)
	ts.InjectKey(tcell.KeyRight, 0, tcell.ModNone)
	ts.InjectKey(tcell.KeyRune, 'b', tcell.ModNone)
	ts.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)

	var got []engine.Action
	require.Eventually(t, func() bool {
		got = append(got, s.Poll()...)
		return len(got) >= 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []engine.Action{engine.ActionMoveRight, engine.ActionBuild}, got)
	assert.Empty(t, s.Poll())
}

func TestPresentDrawsPlayerAndStatus(t *testing.T) {
	s, ts := newScreen(t, 21, 9)

	cfg := engine.DefaultConfig()
	cfg.MapWidth, cfg.MapHeight = 30, 30
	cfg.VisionRadius = 3
	sim := engine.NewSimulation(cfg, world.NewMap(30, 30), rand.New(rand.NewSource(1)))
	require.NoError(t, sim.PlacePlayer(4, 4))

	require.NoError(t, s.Present(sim))
	cells, w, _ := ts.GetContents()
	// Map rows are 9-2=7; the player sits at the center.
	center := cells[3*w+10]
	require.NotEmpty(t, center.Runes)
	assert.Equal(t, '@', center.Runes[0])

	status := ""
	for col := 0; col < w; col++ {
		if r := cells[7*w+col].Runes; len(r) > 0 {
			status += string(r[0])
		}
	}
	assert.Contains(t, status, "tick 0")

	s.ToggleFullScreen()
	require.NoError(t, s.Present(sim))
	cells, w, _ = ts.GetContents()
	// Without the status rows the map is 9 rows tall.
	assert.Equal(t, '@', cells[4*w+10].Runes[0])
}
