// Package engine provides the tick-based simulation loop.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// InputSource supplies the actions gathered since the last poll. It must not
// block.
type InputSource interface {
	Poll() []Action
}

// Presenter draws the simulation. It is called once at start and after every
// tick.
type Presenter interface {
	Present(sim *Simulation) error
	ToggleFullScreen()
}

// Engine drives the simulation forward. Each frame it polls input and runs
// at most one tick; actions beyond the first wait for later frames.
type Engine struct {
	Sim      *Simulation
	Input    InputSource
	Output   Presenter     // May be nil for headless runs
	Interval time.Duration // Poll interval

	// OnTick runs after every tick, before the frame is presented.
	OnTick func(sim *Simulation)

	queue []Action
}

// NewEngine creates an engine polling at the simulation's configured rate.
func NewEngine(sim *Simulation, in InputSource, out Presenter) *Engine {
	fps := sim.Config.FPS
	if fps <= 0 {
		fps = 60
	}
	return &Engine{
		Sim:      sim,
		Input:    in,
		Output:   out,
		Interval: time.Second / time.Duration(fps),
	}
}

// Run starts the simulation loop. It blocks until the player quits, ctx is
// cancelled, or a tick fails.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("simulation engine started", "tick", e.Sim.Tick, "interval", e.Interval)
	if err := e.present(); err != nil {
		return err
	}

	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation engine stopped", "tick", e.Sim.Tick, "reason", ctx.Err())
			return nil
		case <-ticker.C:
		}

		err := e.frame()
		if errors.Is(err, ErrQuit) {
			slog.Info("simulation engine stopped", "tick", e.Sim.Tick, "reason", "quit")
			return nil
		}
		if err != nil {
			slog.Error("simulation engine failed", "tick", e.Sim.Tick, "error", err)
			return err
		}
	}
}

// frame polls input and consumes one queued action.
func (e *Engine) frame() error {
	e.queue = append(e.queue, e.Input.Poll()...)
	if len(e.queue) == 0 {
		return nil
	}
	a := e.queue[0]
	e.queue = e.queue[1:]

	if !a.Simulated() {
		return e.control(a)
	}

	if err := e.Sim.Step(a); err != nil {
		return err
	}
	if e.OnTick != nil {
		e.OnTick(e.Sim)
	}
	return e.present()
}

// control handles actions that never reach the simulation.
func (e *Engine) control(a Action) error {
	switch a {
	case ActionQuit:
		return ErrQuit
	case ActionFullScreen:
		if e.Output != nil {
			e.Output.ToggleFullScreen()
		}
	}
	return nil
}

func (e *Engine) present() error {
	if e.Output == nil {
		return nil
	}
	return e.Output.Present(e.Sim)
}
