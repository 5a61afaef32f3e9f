// Command worldsim runs the interactive colony simulation in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/rogue-civ/internal/api"
	"github.com/talgya/rogue-civ/internal/engine"
	"github.com/talgya/rogue-civ/internal/persistence"
	"github.com/talgya/rogue-civ/internal/terminal"
)

func main() {
	cfg := engine.DefaultConfig()
	flag.IntVar(&cfg.MapWidth, "width", cfg.MapWidth, "logical world width")
	flag.IntVar(&cfg.MapHeight, "height", cfg.MapHeight, "logical world height")
	flag.Float64Var(&cfg.Seed, "seed", cfg.Seed, "terrain seed")
	flag.Int64Var(&cfg.NoiseSeed, "noise-seed", cfg.NoiseSeed, "noise permutation seed")
	flag.Int64Var(&cfg.RandomSeed, "random-seed", cfg.RandomSeed, "seed for spawning and wandering (0 = random)")
	flag.IntVar(&cfg.VisionRadius, "vision", cfg.VisionRadius, "player vision radius")
	flag.BoolVar(&cfg.LightWalls, "light-walls", cfg.LightWalls, "show lit walls")
	flag.BoolVar(&cfg.HouseVision, "house-vision", cfg.HouseVision, "houses reveal their surroundings")
	flag.IntVar(&cfg.TicksBetweenPersonActions, "person-interval", cfg.TicksBetweenPersonActions, "ticks between person moves")
	flag.IntVar(&cfg.TicksBetweenHouseSpawns, "house-interval", cfg.TicksBetweenHouseSpawns, "ticks between house growth")
	flag.IntVar(&cfg.TicksBetweenHarvests, "harvest-interval", cfg.TicksBetweenHarvests, "ticks between harvests")
	flag.IntVar(&cfg.StartWood, "wood", cfg.StartWood, "starting wood")
	flag.IntVar(&cfg.StartFood, "food", cfg.StartFood, "starting food")
	flag.IntVar(&cfg.StartPopulation, "population", cfg.StartPopulation, "starting population")
	flag.IntVar(&cfg.FPS, "fps", cfg.FPS, "input polls per second")
	journalPath := flag.String("journal", envOrDefault("ROGUECIV_JOURNAL", "data/rogue-civ.db"), "session journal path (empty disables)")
	apiPort := flag.Int("port", envIntOrDefault("ROGUECIV_PORT", 8080), "observer API port (0 disables)")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	logFile := flag.String("log-file", "rogue-civ.log", "log destination")
	flag.Parse()

	closeLog, err := setupLogging(*logFile, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, *journalPath, *apiPort); err != nil {
		slog.Error("worldsim failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg engine.Config, journalPath string, apiPort int) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── World ─────────────────────────────────────────────────────────
	slog.Info("generating world...", "width", cfg.MapWidth, "height", cfg.MapHeight, "seed", cfg.Seed)
	sim, err := engine.Bootstrap(cfg)
	if err != nil {
		return err
	}

	// ── Journal ───────────────────────────────────────────────────────
	var db *persistence.DB
	if journalPath != "" {
		if err := os.MkdirAll(filepath.Dir(journalPath), 0o755); err != nil {
			return fmt.Errorf("journal dir: %w", err)
		}
		db, err = persistence.Open(journalPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if _, err := db.BeginSession(cfg); err != nil {
			return err
		}
		slog.Info("journal opened", "path", journalPath)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	var srv *api.Server
	if apiPort > 0 {
		srv = api.NewServer(apiPort, db)
		srv.Start(ctx)
	}

	publish := func(sim *engine.Simulation) {
		snap, err := sim.Snapshot()
		if err != nil {
			slog.Error("snapshot failed", "tick", sim.Tick, "error", err)
			return
		}
		if db != nil {
			if err := db.RecordTick(snap); err != nil {
				slog.Error("journal write failed", "tick", sim.Tick, "error", err)
			}
		}
		if srv != nil {
			srv.Publish(snap)
		}
	}
	publish(sim)

	// ── Terminal ──────────────────────────────────────────────────────
	screen, err := terminal.New()
	if err != nil {
		return err
	}

	eng := engine.NewEngine(sim, screen, screen)
	eng.OnTick = publish
	runErr := eng.Run(ctx)
	screen.Close()
	if runErr != nil {
		return runErr
	}

	fmt.Printf("Colony ended after %s ticks: %d houses, %d persons, %s harvested. %s\n",
		humanize.Comma(int64(sim.Tick)), sim.Stats.Houses, sim.Stats.Persons,
		humanize.Comma(int64(sim.Stats.Harvested)), sim.Ledger)
	return nil
}

// setupLogging sends slog output to path so it does not corrupt the screen.
func setupLogging(path, level string) (func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var out io.Writer = io.Discard
	closer := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closer = func() { f.Close() }
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl})))
	return closer, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
