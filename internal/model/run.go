package model

import "time"

// RunKind names the type of work a run tracks.
type RunKind string

const (
	RunKindHarvest RunKind = "harvest"
	RunKindEnrich  RunKind = "enrich"
)

// RunStatus represents the current state of a tracked run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is the task-status record for one harvest or enrichment request.
type Run struct {
	ID        string    `json:"id"`
	Kind      RunKind   `json:"kind"`
	Status    RunStatus `json:"status"`
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Progress returns the completion percentage of the run.
func (r Run) Progress() int { return Percent(r.Completed, r.Total) }
