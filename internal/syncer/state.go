package syncer

import (
	"sync/atomic"
	"time"

	"github.com/roach88/todoist-to-sqlite/internal/todoist"
)

// State is the position of a Run in its state machine.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateUpserting
	StateDone
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateUpserting:
		return "upserting"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Progress is a monotonic count of items processed.
//
// It only ever increases, so a display can poll it while the run is in
// flight. It is not used for correctness.
//
// Thread-safety: Progress is safe for concurrent use (atomic operations).
type Progress struct {
	n atomic.Int64
}

// Add advances the counter by n items and returns the new total.
// Non-positive n leaves the counter unchanged.
func (p *Progress) Add(n int) int64 {
	if n <= 0 {
		return p.n.Load()
	}
	return p.n.Add(int64(n))
}

// Load returns the current total without changing it.
func (p *Progress) Load() int64 {
	return p.n.Load()
}

// Run is one pass over one collection. It is never persisted.
type Run struct {
	ID         string
	Collection string
	State      State
	Cursor     todoist.Cursor
	Pages      int
	Progress   Progress
	Started    time.Time
	Finished   time.Time
	Err        error
}

// Processed returns the number of items written so far.
func (r *Run) Processed() int64 {
	return r.Progress.Load()
}

// Duration returns how long the run took, or has taken so far.
func (r *Run) Duration() time.Duration {
	if r.Finished.IsZero() {
		return time.Since(r.Started)
	}
	return r.Finished.Sub(r.Started)
}
