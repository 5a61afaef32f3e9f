// Package persistence keeps an append-only journal of play sessions in
// SQLite: what happened and how the ledger moved. The journal is never read
// back into a running simulation.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/rogue-civ/internal/economy"
	"github.com/talgya/rogue-civ/internal/engine"
)

var (
	// ErrNoSession is returned when recording before BeginSession.
	ErrNoSession = errors.New("no session started")
	// ErrNoMeta is returned by GetMeta for an unknown key.
	ErrNoMeta = errors.New("no such metadata key")
)

// DB wraps a SQLite connection holding the journal.
type DB struct {
	conn    *sqlx.DB
	session string
	lastSeq uint64 // Highest event sequence already written this session
}

// Session is one recorded run.
type Session struct {
	ID         string  `db:"id" json:"id"`
	StartedAt  int64   `db:"started_at" json:"started_at"` // Unix seconds
	Width      int     `db:"width" json:"width"`
	Height     int     `db:"height" json:"height"`
	Seed       float64 `db:"seed" json:"seed"`
	NoiseSeed  int64   `db:"noise_seed" json:"noise_seed"`
	RandomSeed int64   `db:"random_seed" json:"random_seed"`
}

// LedgerPoint is the ledger as it stood after a tick.
type LedgerPoint struct {
	Tick uint64 `db:"tick" json:"tick"`
	economy.Ledger
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		seed REAL NOT NULL,
		noise_seed INTEGER NOT NULL,
		random_seed INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ledger_snapshots (
		session_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		population INTEGER NOT NULL,
		wood INTEGER NOT NULL,
		food INTEGER NOT NULL,
		PRIMARY KEY (session_id, tick)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, seq);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// BeginSession registers a new run and makes it the target of later writes.
func (db *DB) BeginSession(cfg engine.Config) (string, error) {
	s := Session{
		ID:         uuid.NewString(),
		StartedAt:  time.Now().Unix(),
		Width:      cfg.MapWidth,
		Height:     cfg.MapHeight,
		Seed:       cfg.Seed,
		NoiseSeed:  cfg.NoiseSeed,
		RandomSeed: cfg.RandomSeed,
	}
	_, err := db.conn.NamedExec(`INSERT INTO sessions
		(id, started_at, width, height, seed, noise_seed, random_seed)
		VALUES (:id, :started_at, :width, :height, :seed, :noise_seed, :random_seed)`, s)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}

	db.session = s.ID
	db.lastSeq = 0
	slog.Info("journal session started", "session", s.ID)
	return s.ID, nil
}

// SessionID returns the current session, or "" before BeginSession.
func (db *DB) SessionID() string {
	return db.session
}

// RecordTick appends the snapshot's unseen events and its ledger.
func (db *DB) RecordTick(snap engine.Snapshot) error {
	if db.session == "" {
		return ErrNoSession
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	lastSeq := db.lastSeq
	for _, e := range engine.EventsSince(snap.Events, lastSeq) {
		_, err := tx.Exec(
			"INSERT INTO events (session_id, seq, tick, kind, description) VALUES (?, ?, ?, ?, ?)",
			db.session, e.Seq, e.Tick, e.Kind, e.Description,
		)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", e.Seq, err)
		}
		lastSeq = e.Seq
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO ledger_snapshots
		(session_id, tick, population, wood, food) VALUES (?, ?, ?, ?, ?)`,
		db.session, snap.Tick, snap.Ledger.Population, snap.Ledger.Wood, snap.Ledger.Food,
	)
	if err != nil {
		return fmt.Errorf("insert ledger at tick %d: %w", snap.Tick, err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	db.lastSeq = lastSeq
	return nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// SaveMetaJSON stores v as JSON under key.
func (db *DB) SaveMetaJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return db.SaveMeta(key, string(data))
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", key, ErrNoMeta)
	}
	return value, err
}

// RecentEvents returns the most recent N events of the current session,
// newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT seq, tick, kind, description FROM events WHERE session_id = ? ORDER BY seq DESC LIMIT ?",
		db.session, limit,
	)
	return events, err
}

// LedgerHistory returns the current session's ledger over time, oldest first.
func (db *DB) LedgerHistory() ([]LedgerPoint, error) {
	var points []LedgerPoint
	err := db.conn.Select(&points,
		"SELECT tick, population, wood, food FROM ledger_snapshots WHERE session_id = ? ORDER BY tick",
		db.session,
	)
	return points, err
}

// Sessions lists every recorded session, newest first.
func (db *DB) Sessions() ([]Session, error) {
	var sessions []Session
	err := db.conn.Select(&sessions, "SELECT * FROM sessions ORDER BY started_at DESC, id")
	return sessions, err
}
