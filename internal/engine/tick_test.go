package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedInput struct {
	mu      sync.Mutex
	batches [][]Action
}

func (s *scriptedInput) Poll() []Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batches) == 0 {
		return nil
	}
	next := s.batches[0]
	s.batches = s.batches[1:]
	return next
}

type recordingPresenter struct {
	presents int
	toggles  int
	ticks    []uint64
}

func (p *recordingPresenter) Present(sim *Simulation) error {
	p.presents++
	p.ticks = append(p.ticks, sim.Tick)
	return nil
}

func (p *recordingPresenter) ToggleFullScreen() { p.toggles++ }

func TestEngineRunsUntilQuit(t *testing.T) {
	sim := plainsSim(t, testConfig(10, 10), 5, 5)
	in := &scriptedInput{batches: [][]Action{
		{ActionMoveRight, ActionFullScreen},
		nil,
		{ActionBuild, ActionQuit, ActionMoveRight},
	}}
	out := &recordingPresenter{}

	e := NewEngine(sim, in, out)
	e.Interval = time.Millisecond
	var hooked []uint64
	e.OnTick = func(s *Simulation) { hooked = append(hooked, s.Tick) }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))

	assert.Equal(t, uint64(2), sim.Tick)
	assert.Equal(t, []uint64{1, 2}, hooked)
	assert.Equal(t, []uint64{0, 1, 2}, out.ticks)
	assert.Equal(t, 1, out.toggles)
	assert.Equal(t, 90, sim.Ledger.Wood)

	pos, err := sim.PlayerPosition()
	require.NoError(t, err)
	assert.Equal(t, 16, pos.X)
}

func TestEngineStopsOnCancel(t *testing.T) {
	sim := plainsSim(t, testConfig(10, 10), 5, 5)
	e := NewEngine(sim, &scriptedInput{}, nil)
	e.Interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop")
	}
	assert.Zero(t, sim.Tick)
}

func TestNewEngineInterval(t *testing.T) {
	cfg := testConfig(10, 10)
	cfg.FPS = 20
	sim := plainsSim(t, cfg, 5, 5)
	e := NewEngine(sim, &scriptedInput{}, nil)
	assert.Equal(t, 50*time.Millisecond, e.Interval)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "move_left", ActionMoveLeft.String())
	assert.Equal(t, "quit", ActionQuit.String())
	assert.Equal(t, "unknown", Action(99).String())
	assert.True(t, ActionBuild.Simulated())
	assert.False(t, ActionFullScreen.Simulated())
}
