package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrKeyUnresolved means a parent item was created but its key could
	// not be recovered from the response or the recency listing. The
	// item may exist remotely; re-creating would risk a duplicate, so
	// the document is abandoned and retried on the next run.
	ErrKeyUnresolved = errors.New("created item key could not be resolved")

	// ErrNotConfirmed means the live-run confirmation gate did not
	// return an explicit yes.
	ErrNotConfirmed = errors.New("live run not confirmed")
)

// ParentError reports a failed parent resolution for one document.
type ParentError struct {
	Title string
	Err   error
}

func (e *ParentError) Error() string {
	return fmt.Sprintf("resolve parent for %q: %v", e.Title, e.Err)
}

func (e *ParentError) Unwrap() error {
	return e.Err
}
