package report

import (
	"time"

	"foildb/internal/titles"
)

// Run states surfaced in progress snapshots.
const (
	StatePlanning   = "planning"
	StateExecuting  = "executing"
	StateFinalizing = "finalizing"
	StateDone       = "done"
)

// Counters tracks per-item outcomes for one synchronization run.
type Counters struct {
	Total       int `json:"total"`
	Processed   int `json:"processed"`
	OK          int `json:"ok"`
	Failed      int `json:"failed"`
	NewRows     int `json:"new_rows"`
	UpdatedRows int `json:"updated_rows"`
	Removed     int `json:"removed"`
	Unchanged   int `json:"unchanged"`
}

// Progress is the periodically overwritten snapshot of a running stage.
// Observers may poll it mid-run; the terminal write converges it with the
// summary.
type Progress struct {
	Stage      string    `json:"stage"`
	RunID      string    `json:"run_id,omitempty"`
	State      string    `json:"state"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Counters   Counters  `json:"counters"`
	RatePerSec float64   `json:"rate_per_sec"`
	ETASeconds float64   `json:"eta_seconds"`
}

// StoreSnapshot captures row store totals at completion.
type StoreSnapshot struct {
	Rows         int64 `json:"rows"`
	PayloadBytes int64 `json:"payload_bytes"`
	FileBytes    int64 `json:"file_bytes"`
}

// TitlesOutcome embeds the rebuild decision and diff report in a titles
// stage summary.
type TitlesOutcome struct {
	Locale  string                 `json:"locale"`
	Rebuild titles.RebuildDecision `json:"rebuild"`
	Diff    titles.DiffCounts      `json:"diff"`
}

// Summary is the terminal record of a completed run, written once.
type Summary struct {
	Stage           string         `json:"stage"`
	RunID           string         `json:"run_id,omitempty"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      time.Time      `json:"finished_at"`
	DurationSeconds float64        `json:"duration_seconds"`
	Counters        Counters       `json:"counters"`
	Store           *StoreSnapshot `json:"store,omitempty"`
	Titles          *TitlesOutcome `json:"titles,omitempty"`
}
