// Command watch monitors a running world through its observer API and logs
// the colony's health every interval.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/rogue-civ/internal/watch"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment.
	apiURL := envOrDefault("ROGUECIV_API_URL", "http://localhost:8080")
	intervalSec := envIntOrDefault("ROGUECIV_WATCH_INTERVAL", 30)
	interval := time.Duration(intervalSec) * time.Second

	slog.Info("colony watch starting", "api_url", apiURL, "interval", interval)

	observer := watch.NewObserver(apiURL)

	slog.Info("waiting for world API...")
	waitForAPI(observer)

	runCycle(observer)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			runCycle(observer)
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			fmt.Println("Watch stopped.")
			return
		}
	}
}

// runCycle executes one observe → triage cycle.
func runCycle(observer *watch.Observer) {
	snap, err := observer.Observe()
	if err != nil {
		slog.Error("observation failed", "error", err)
		return
	}
	l := snap.Ledger.Ledger
	slog.Info("observation complete",
		"tick", humanize.Comma(int64(snap.Status.Tick)),
		"population", l.Population,
		"houses", snap.Status.Houses,
		"persons", snap.Status.Persons,
		"wood", l.Wood,
		"food", l.Food,
	)

	h := watch.Triage(snap)
	attrs := []any{
		"level", h.Level,
		"growths_left", h.GrowthsLeft,
		"houses_left", h.HousesLeft,
		"food_per_tick", fmt.Sprintf("%.2f", h.FoodBurnRate),
		"open_capacity", h.OpenCapacity,
	}
	for _, r := range h.Reasons {
		attrs = append(attrs, "reason", r)
	}
	switch h.Level {
	case watch.LevelCritical, watch.LevelWarning:
		slog.Warn("colony health", attrs...)
	default:
		slog.Info("colony health", attrs...)
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds. Exits after 5 minutes if the API never becomes ready.
func waitForAPI(observer *watch.Observer) {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for !observer.Ready() {
		if time.Now().After(deadline) {
			slog.Error("world API did not become ready within 5 minutes")
			os.Exit(1)
		}
		slog.Info("world API not ready, retrying...", "backoff", backoff)
		time.Sleep(backoff)
		backoff = min(backoff*2, maxBackoff)
	}
	slog.Info("world API is ready")
}
