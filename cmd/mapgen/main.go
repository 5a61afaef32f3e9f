// Command mapgen generates a world headlessly and prints its terrain
// distribution and an ASCII preview.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/talgya/rogue-civ/internal/persistence"
	"github.com/talgya/rogue-civ/internal/world"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := world.DefaultGenConfig()
	flag.IntVar(&cfg.Width, "width", cfg.Width, "logical world width")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "logical world height")
	flag.Float64Var(&cfg.Seed, "seed", cfg.Seed, "terrain seed")
	flag.Int64Var(&cfg.NoiseSeed, "noise-seed", cfg.NoiseSeed, "noise permutation seed")
	preview := flag.Int("preview", 80, "preview width in columns (0 disables)")
	journalPath := flag.String("journal", "", "record terrain counts in this journal")
	flag.Parse()

	if cfg.Width <= 0 || cfg.Height <= 0 {
		slog.Error("world size must be positive", "width", cfg.Width, "height", cfg.Height)
		os.Exit(1)
	}

	m := world.Generate(cfg)
	counts := world.TerrainCounts(m)

	terrains := make([]world.Terrain, 0, len(counts))
	for t := range counts {
		terrains = append(terrains, t)
	}
	slices.Sort(terrains)

	named := make(map[string]int, len(counts))
	total := m.TileCount()
	for _, t := range terrains {
		c := counts[t]
		named[world.TerrainName(t)] = c
		slog.Info("terrain",
			"type", world.TerrainName(t),
			"count", humanize.Comma(int64(c)),
			"share", fmt.Sprintf("%.1f%%", 100*float64(c)/float64(total)))
	}
	slog.Info("world generated", "map", m.String(), "tiles", humanize.Comma(int64(total)))

	if *journalPath != "" {
		if err := record(*journalPath, cfg, named); err != nil {
			slog.Error("journal write failed", "error", err)
			os.Exit(1)
		}
	}

	if *preview > 0 {
		printPreview(m, *preview)
	}
}

func record(path string, cfg world.GenConfig, counts map[string]int) error {
	db, err := persistence.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	key := fmt.Sprintf("terrain:%dx%d:%g:%d", cfg.Width, cfg.Height, cfg.Seed, cfg.NoiseSeed)
	prev, err := db.GetMeta(key)
	switch {
	case err == nil:
		slog.Info("replacing recorded terrain", "key", key, "previous", prev)
	case !errors.Is(err, persistence.ErrNoMeta):
		return err
	}
	if err := db.SaveMetaJSON(key, counts); err != nil {
		return err
	}
	slog.Info("terrain recorded", "path", path, "key", key)
	return nil
}

// printPreview downsamples the logical map so it fits in cols columns.
func printPreview(m *world.Map, cols int) {
	step := max(1, (m.Width+cols-1)/cols)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	// Terminal cells are roughly twice as tall as wide.
	for y := 0; y < m.Height; y += 2 * step {
		for x := 0; x < m.Width; x += step {
			t, err := m.Tile(x, y)
			if err != nil {
				slog.Error("preview", "error", err)
				return
			}
			out.WriteRune(world.TerrainGlyph(t.Terrain))
		}
		out.WriteByte('\n')
	}
}
