package syncer

import (
	"errors"
	"fmt"
)

// RunError reports a collection sync that stopped before its terminal page.
//
// Synced is the number of items committed before the failure; those rows
// remain in the store.
type RunError struct {
	Collection string
	RunID      string
	Synced     int64
	Err        error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	return fmt.Sprintf("sync %s: %d items synced before failure: %v", e.Collection, e.Synced, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// SyncedBeforeFailure returns the committed item count carried by err,
// or 0 if err is not a *RunError.
func SyncedBeforeFailure(err error) int64 {
	var re *RunError
	if errors.As(err, &re) {
		return re.Synced
	}
	return 0
}
