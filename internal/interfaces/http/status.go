// Package http serves the run-status endpoint of a training process.  The
// server is read-only: it reports progress for dashboards and liveness
// probes but never mutates training state.
package http

import (
	"sync"
	"time"
)

// Run states reported by the status endpoint.
const (
	StateIdle      = "idle"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// Status is a point-in-time snapshot of a training run.
type Status struct {
	RunID          string    `json:"run_id"`
	State          string    `json:"state"`
	Epoch          int       `json:"epoch"`
	MaxEpochs      int       `json:"max_epochs"`
	MeanReturn     float64   `json:"mean_return"`
	BestReturn     float64   `json:"best_return"`
	BestEpoch      int       `json:"best_epoch"`
	TotalGenerated int       `json:"total_generated"`
	StartedAt      time.Time `json:"started_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// Tracker holds the current run status.  The training loop writes it, the
// HTTP server reads it.
type Tracker struct {
	mu     sync.RWMutex
	status Status
}

// NewTracker returns a Tracker in the idle state.
func NewTracker() *Tracker {
	return &Tracker{status: Status{State: StateIdle, BestEpoch: -1}}
}

// Start marks the run as running.
func (t *Tracker) Start(runID string, maxEpochs int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now().UTC()
	t.status = Status{
		RunID:     runID,
		State:     StateRunning,
		MaxEpochs: maxEpochs,
		BestEpoch: -1,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// RecordEpoch publishes one epoch's progress.
func (t *Tracker) RecordEpoch(epoch int, meanReturn float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Epoch = epoch
	t.status.MeanReturn = meanReturn
	t.status.UpdatedAt = time.Now().UTC()
}

// RecordBest publishes a new run-global best return.
func (t *Tracker) RecordBest(epoch int, ret float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.BestEpoch = epoch
	t.status.BestReturn = ret
	t.status.UpdatedAt = time.Now().UTC()
}

// RecordGenerated publishes the cumulative accepted-molecule count.
func (t *Tracker) RecordGenerated(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.TotalGenerated = total
	t.status.UpdatedAt = time.Now().UTC()
}

// Finish marks the run completed or failed.
func (t *Tracker) Finish(failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if failed {
		t.status.State = StateFailed
	} else {
		t.status.State = StateCompleted
	}
	t.status.UpdatedAt = time.Now().UTC()
}

// Snapshot returns a copy of the current status.
func (t *Tracker) Snapshot() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

//Personal.AI order the ending
