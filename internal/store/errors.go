package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no row has the requested key.
var ErrNotFound = errors.New("row not found")

// ErrorCode categorizes store write failures.
type ErrorCode string

const (
	// ErrCodeSchema indicates the database rejected a DDL or DML statement,
	// or a record needs a column the table lacks and schema growth is off.
	ErrCodeSchema ErrorCode = "SCHEMA_ERROR"

	// ErrCodeMissingKey indicates a record has no value for the primary key.
	ErrCodeMissingKey ErrorCode = "MISSING_KEY"
)

// Error is returned when the store rejects a write.
// The enclosing transaction is rolled back, so no part of the batch is applied.
type Error struct {
	Code  ErrorCode
	Table string
	Op    string // "create", "alter", "upsert", "commit"
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s: %s %s: %v", e.Code, e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsSchemaError returns true if the error is a store write failure of any code.
// Uses errors.As to handle wrapped errors.
func IsSchemaError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
