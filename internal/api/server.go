// Package api provides the read-only HTTP API for observing a running world.
// The engine publishes a snapshot after every tick; handlers only ever read
// the latest published snapshot.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/talgya/rogue-civ/internal/engine"
	"github.com/talgya/rogue-civ/internal/persistence"
	"github.com/talgya/rogue-civ/internal/world"
)

// maxEventLimit caps how many events one request returns.
const maxEventLimit = 500

// Server serves the world state over HTTP.
type Server struct {
	Port    int
	Journal *persistence.DB // Optional; enables ledger history

	mu      sync.RWMutex
	snap    *engine.Snapshot
	lastSeq uint64
	started time.Time
	hub     *hub
	limiter *RateLimiter
}

// NewServer creates a server with nothing published yet.
func NewServer(port int, journal *persistence.DB) *Server {
	return &Server{
		Port:    port,
		Journal: journal,
		started: time.Now(),
		hub:     newHub(),
		limiter: NewRateLimiter(120, time.Minute),
	}
}

// Publish replaces the current snapshot and pushes a tick summary to every
// stream subscriber. It is safe to call from the engine goroutine while
// handlers run.
func (s *Server) Publish(snap engine.Snapshot) {
	s.mu.Lock()
	prev := s.lastSeq
	s.snap = &snap
	if n := len(snap.Events); n > 0 {
		s.lastSeq = snap.Events[n-1].Seq
	}
	s.mu.Unlock()

	s.hub.broadcast(newTickSummary(snap, prev))
}

func (s *Server) current() (*engine.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.snap != nil
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/ledger", s.handleLedger)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/sessions", s.handleSessions)
	mux.HandleFunc("GET /api/v1/view", RateLimitMiddleware(s.limiter, s.handleView))
	mux.HandleFunc("GET /api/v1/stream", RateLimitMiddleware(s.limiter, s.handleStream))
	return mux
}

// Start begins serving the HTTP API in a goroutine. The server shuts down
// when ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.closeAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP server shutdown", "error", err)
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current()
	if !ok {
		http.Error(w, "simulation not started", http.StatusServiceUnavailable)
		return
	}
	status := map[string]any{
		"name":        "rogue-civ",
		"tick":        snap.Tick,
		"uptime":      time.Since(s.started).Round(time.Second).String(),
		"player":      snap.Player,
		"population":  snap.Ledger.Population,
		"houses":      snap.Stats.Houses,
		"persons":     snap.Stats.Persons,
		"subscribers": s.hub.count(),
		"stats":       snap.Stats,
	}
	if s.Journal != nil {
		status["session"] = s.Journal.SessionID()
	}
	writeJSON(w, status)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current()
	if !ok {
		http.Error(w, "simulation not started", http.StatusServiceUnavailable)
		return
	}
	resp := map[string]any{
		"tick":   snap.Tick,
		"ledger": snap.Ledger,
	}
	if s.Journal != nil && r.URL.Query().Get("history") == "true" {
		history, err := s.Journal.LedgerHistory()
		if err != nil {
			slog.Error("ledger history", "error", err)
			http.Error(w, "journal unavailable", http.StatusInternalServerError)
			return
		}
		resp["history"] = history
	}
	writeJSON(w, resp)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current()
	if !ok {
		http.Error(w, "simulation not started", http.StatusServiceUnavailable)
		return
	}
	q := r.URL.Query()
	limit := 50
	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= maxEventLimit {
			limit = n
		}
	}

	events := snap.Events
	if s.Journal != nil && q.Get("history") == "true" {
		recent, err := s.Journal.RecentEvents(maxEventLimit)
		if err != nil {
			slog.Error("event history", "error", err)
			http.Error(w, "journal unavailable", http.StatusInternalServerError)
			return
		}
		slices.Reverse(recent)
		events = recent
	}
	if v := q.Get("since"); v != "" {
		seq, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "since must be an event sequence number", http.StatusBadRequest)
			return
		}
		events = engine.EventsSince(events, seq)
	}
	if kind := q.Get("kind"); kind != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Kind == kind {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	if events == nil {
		events = []engine.Event{}
	}
	writeJSON(w, events[start:])
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		http.Error(w, "journal disabled", http.StatusNotFound)
		return
	}
	sessions, err := s.Journal.Sessions()
	if err != nil {
		slog.Error("list sessions", "error", err)
		http.Error(w, "journal unavailable", http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []persistence.Session{}
	}
	writeJSON(w, map[string]any{
		"current":  s.Journal.SessionID(),
		"sessions": sessions,
	})
}

// viewCell is one tile of the published viewport.
type viewCell struct {
	Glyph    string `json:"glyph"`
	Color    string `json:"color"`
	Visible  bool   `json:"visible"`
	Explored bool   `json:"explored"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current()
	if !ok || snap.Frame == nil {
		http.Error(w, "simulation not started", http.StatusServiceUnavailable)
		return
	}
	f := snap.Frame
	width := queryInt(r, "w", f.Width, 1, f.Width)
	height := queryInt(r, "h", f.Height, 1, f.Height)
	left := f.Width/2 - width/2
	top := f.Height/2 - height/2

	rows := make([][]viewCell, height)
	for row := range rows {
		rows[row] = make([]viewCell, width)
		for col := range rows[row] {
			c := f.At(left+col, top+row)
			glyph := " "
			if c.Visible || c.Tile.Explored {
				glyph = string(world.TerrainGlyph(c.Tile.Terrain))
			}
			rows[row][col] = viewCell{
				Glyph:    glyph,
				Color:    c.Color().String(),
				Visible:  c.Visible,
				Explored: c.Tile.Explored,
			}
		}
	}
	for _, sp := range f.Sprites {
		col, row := sp.Col-left, sp.Row-top
		if col < 0 || row < 0 || col >= width || row >= height {
			continue
		}
		rows[row][col].Glyph = string(sp.Drawable.Glyph)
		rows[row][col].Color = sp.Drawable.Color.String()
	}

	writeJSON(w, map[string]any{
		"tick":   snap.Tick,
		"width":  width,
		"height": height,
		"rows":   rows,
	})
}

// queryInt reads an integer parameter clamped to [lo, hi].
func queryInt(r *http.Request, key string, def, lo, hi int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return max(lo, min(n, hi))
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
