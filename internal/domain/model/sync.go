package model

import "time"

// SyncProgress is the persisted state of one product sync run. A single
// incomplete record per shop doubles as the mutual-exclusion token: starting
// while one exists resumes it instead of running in parallel.
type SyncProgress struct {
	Total         int       `json:"total"`
	Processed     int       `json:"processed"`
	Created       int       `json:"created"`
	Updated       int       `json:"updated"`
	Errors        int       `json:"errors"`
	ErrorMessages []string  `json:"error_messages,omitempty"`
	Completed     bool      `json:"completed"`
	ForceResync   bool      `json:"force_resync"`
	StartedAt     time.Time `json:"started_at"`
	// LastProcessed is the liveness heartbeat, bumped at every checkpoint.
	LastProcessed time.Time `json:"last_processed"`
	// Products is the catalog snapshot fetched once at run start and reused
	// by every batch, so resuming never re-pages the upstream list.
	Products []Product `json:"products"`
}

// Remaining returns the slice of not-yet-processed products.
func (p *SyncProgress) Remaining() []Product {
	if p.Processed >= len(p.Products) {
		return nil
	}
	return p.Products[p.Processed:]
}

// Stalled reports whether the heartbeat is older than threshold. Informational
// only: a stalled run is still resumable and the next checkpoint clears it.
func (p *SyncProgress) Stalled(now time.Time, threshold time.Duration) bool {
	if p.Completed {
		return false
	}
	return now.Sub(p.LastProcessed) > threshold
}

// SyncCompletion is the transient summary kept around after a run finishes,
// with a lifecycle independent from the progress record.
type SyncCompletion struct {
	Time    time.Time `json:"time"`
	Created int       `json:"created"`
	Updated int       `json:"updated"`
	Errors  int       `json:"errors"`
	Total   int       `json:"total"`
}

// Outcome classifies how one product was handled within a batch.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeError   Outcome = "error"
)
