// Package watch implements a headless colony monitor. It observes a running
// world through the observer API and classifies the colony's health.
package watch

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/rogue-civ/internal/economy"
	"github.com/talgya/rogue-civ/internal/engine"
	"github.com/talgya/rogue-civ/internal/persistence"
)

// ColonySnapshot holds all data collected during an observation cycle.
type ColonySnapshot struct {
	Status  ColonyStatus   `json:"status"`
	Ledger  LedgerData     `json:"ledger"`
	Events  []engine.Event `json:"events"`
	Fetched time.Time      `json:"fetched"`
}

// ColonyStatus mirrors GET /api/v1/status.
type ColonyStatus struct {
	Name        string          `json:"name"`
	Tick        uint64          `json:"tick"`
	Uptime      string          `json:"uptime"`
	Population  int             `json:"population"`
	Houses      int             `json:"houses"`
	Persons     int             `json:"persons"`
	Subscribers int             `json:"subscribers"`
	Stats       engine.SimStats `json:"stats"`
}

// LedgerData mirrors GET /api/v1/ledger?history=true.
type LedgerData struct {
	Tick    uint64                    `json:"tick"`
	Ledger  economy.Ledger            `json:"ledger"`
	History []persistence.LedgerPoint `json:"history"`
}

// Observer fetches colony state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Observe fetches status, ledger and recent events.
func (o *Observer) Observe() (*ColonySnapshot, error) {
	snap := &ColonySnapshot{Fetched: time.Now()}

	if err := o.fetchJSON("/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON("/api/v1/ledger?history=true", &snap.Ledger); err != nil {
		return nil, fmt.Errorf("fetch ledger: %w", err)
	}
	if err := o.fetchJSON("/api/v1/events?limit=50", &snap.Events); err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}

	return snap, nil
}

// Ready reports whether the API answers its status endpoint.
func (o *Observer) Ready() bool {
	resp, err := o.HTTPClient.Get(o.BaseURL + "/api/v1/status")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(path string, target any) error {
	resp, err := o.HTTPClient.Get(o.BaseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
