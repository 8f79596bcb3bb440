package tree

import (
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when no article is stored at the requested path.
	ErrNotFound = errors.New("tree: no article at this path")
	// ErrInvalidPath is returned when a path cannot be normalized.
	ErrInvalidPath = errors.New("tree: invalid path")
)

// An UnavailableError is returned when the store could not serve a query.
// The caller may retry the operation.
type UnavailableError struct {
	Op   string
	Path string
	Err  error
}

func (e *UnavailableError) Error() string {
	return "tree: " + e.Op + " " + e.Path + ": store unavailable: " + e.Err.Error()
}

// Unwrap returns the store error.
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Cause returns the store error.
func (e *UnavailableError) Cause() error {
	return e.Err
}

// IsUnavailable returns true if err is or wraps an UnavailableError.
func IsUnavailable(err error) bool {
	var uerr *UnavailableError
	return errors.As(err, &uerr)
}
