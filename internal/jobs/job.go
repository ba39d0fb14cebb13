// Package jobs tracks reading order jobs through their lifecycle and runs
// them with bounded concurrency.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/histpath/readingorder/model"
)

var (
	// ErrNotFound is returned for an unknown or expired job ID.
	ErrNotFound = errors.New("job not found")

	// ErrInvalidTransition is returned when a job would leave a terminal
	// state or skip processing.
	ErrInvalidTransition = errors.New("invalid job state transition")
)

// State is the lifecycle state of a job.
type State string

const (
	StateQueued     State = "queued"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransition reports whether a job may move from s to next.
func (s State) CanTransition(next State) bool {
	switch s {
	case StateQueued:
		return next == StateProcessing || next == StateFailed
	case StateProcessing:
		return next.Terminal()
	default:
		return false
	}
}

// Job is the record kept for one submitted document.
type Job struct {
	ID        string         `json:"job_id"`
	State     State          `json:"status"`
	Source    string         `json:"source,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Error     string         `json:"error,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
	Results   []model.Result `json:"results,omitempty"`
}

// Store persists jobs keyed by ID.
type Store interface {
	// Create registers a new queued job.
	Create(ctx context.Context, source string) (Job, error)

	// Get returns the job or ErrNotFound.
	Get(ctx context.Context, id string) (Job, error)

	// Update replaces a stored job. It returns ErrNotFound if the job does
	// not exist.
	Update(ctx context.Context, job Job) error
}
