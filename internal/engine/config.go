package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/rogue-civ/internal/world"
)

// Config holds every tunable of a session.
type Config struct {
	MapWidth  int     // Logical world width
	MapHeight int     // Logical world height
	Seed      float64 // Terrain seed
	NoiseSeed int64   // Noise permutation seed
	// RandomSeed drives every stochastic system. 0 picks one from crypto/rand.
	RandomSeed int64

	VisionRadius int
	LightWalls   bool
	HouseVision  bool // Houses see with the player's radius

	TicksBetweenPersonActions int
	TicksBetweenHouseSpawns   int
	TicksBetweenHarvests      int

	StartWood       int
	StartFood       int
	StartPopulation int

	MaxSpawnAttempts int // Housing site search budget per house per tick
	MaxStartAttempts int // Player start site search budget

	ViewWidth  int // Viewport published to observers
	ViewHeight int
	FPS        int // Input polls per second
}

// DefaultConfig returns the standard session configuration.
func DefaultConfig() Config {
	gen := world.DefaultGenConfig()
	return Config{
		MapWidth:                  gen.Width,
		MapHeight:                 gen.Height,
		Seed:                      gen.Seed,
		VisionRadius:              15,
		LightWalls:                true,
		TicksBetweenPersonActions: 1,
		TicksBetweenHouseSpawns:   5,
		TicksBetweenHarvests:      5,
		StartWood:                 100,
		StartFood:                 100,
		StartPopulation:           1,
		MaxSpawnAttempts:          64,
		MaxStartAttempts:          10000,
		ViewWidth:                 60,
		ViewHeight:                24,
		FPS:                       60,
	}
}

// GenConfig returns the terrain generation parameters.
func (c Config) GenConfig() world.GenConfig {
	return world.GenConfig{
		Width:     c.MapWidth,
		Height:    c.MapHeight,
		Seed:      c.Seed,
		NoiseSeed: c.NoiseSeed,
	}
}

// Validate checks the configuration for values no session can run with.
func (c Config) Validate() error {
	var errs []error
	if c.MapWidth <= 0 || c.MapHeight <= 0 {
		errs = append(errs, fmt.Errorf("map size %dx%d must be positive", c.MapWidth, c.MapHeight))
	}
	if c.VisionRadius < 0 {
		errs = append(errs, fmt.Errorf("vision radius %d is negative", c.VisionRadius))
	}
	if c.MaxSpawnAttempts <= 0 {
		errs = append(errs, fmt.Errorf("spawn attempts %d must be positive", c.MaxSpawnAttempts))
	}
	if c.MaxStartAttempts <= 0 {
		errs = append(errs, fmt.Errorf("start attempts %d must be positive", c.MaxStartAttempts))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps %d must be positive", c.FPS))
	}
	if c.StartWood < 0 || c.StartFood < 0 || c.StartPopulation < 0 {
		errs = append(errs, errors.New("starting resources must not be negative"))
	}
	return errors.Join(errs...)
}
