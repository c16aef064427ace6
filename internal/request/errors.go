package request

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// StateError reports a lifecycle transition attempted from an invalid
// state. The attempted mutation is never applied.
type StateError struct {
	Entity  string // "request" or "quote"
	ID      string
	Current string
	Attempt string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %s is %s, cannot %s", e.Entity, e.ID, e.Current, e.Attempt)
}

// IsState reports whether err is a lifecycle precondition failure.
func IsState(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}
