package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by single-row lookups that matched nothing. Callers
// treat it as an expected outcome, not a query failure.
var ErrNotFound = errors.New("not found")

// ConnectionError reports a database handle that could not be established
// after the bounded retry loop was exhausted.
type ConnectionError struct {
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database connection failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError carries the statement that failed so a log line is enough to
// diagnose without replaying the request.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("database query failed: %v | sql: %s", e.Err, e.Query)
}

func (e *QueryError) Unwrap() error { return e.Err }
