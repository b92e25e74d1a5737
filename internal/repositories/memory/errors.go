package memory

import "fmt"

// Error implements repositories.RepositoryError for the in-memory repositories.
type Error struct {
	op       string
	message  string
	notFound bool
	conflict bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.op, e.message)
}

// IsNotFound reports whether the error represents a missing record.
func (e *Error) IsNotFound() bool {
	return e != nil && e.notFound
}

// IsConflict reports whether the error represents a conflicting update.
func (e *Error) IsConflict() bool {
	return e != nil && e.conflict
}

// IsUnavailable reports whether the error represents a transient outage.
func (e *Error) IsUnavailable() bool {
	return false
}

func notFoundError(op, message string) *Error {
	return &Error{op: op, message: message, notFound: true}
}

func invalidError(op, message string) *Error {
	return &Error{op: op, message: message, conflict: true}
}
