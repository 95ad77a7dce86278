package statestore

import "fmt"

// PersistenceReadError reports a stored document that could not be decoded.
// The store recovers by starting from an empty state; the error is only
// logged.
type PersistenceReadError struct {
	Key string
	Err error
}

func (e *PersistenceReadError) Error() string {
	return fmt.Sprintf("read persisted state %q: %v", e.Key, e.Err)
}

func (e *PersistenceReadError) Unwrap() error { return e.Err }

// ErrorKind classifies the failure for the boundary layer.
func (e *PersistenceReadError) ErrorKind() string { return "persistence" }
