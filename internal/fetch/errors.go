package fetch

import (
	"context"
	"errors"
	"fmt"
)

// Error is a recoverable failure for one endpoint or page: transport error,
// timeout, or non-2xx status. Callers try the next candidate or stop
// paginating; it only surfaces when nothing at all was obtained.
type Error struct {
	URL    string
	Status int // zero when no response was received
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline.
func (e *Error) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}

// ErrNoMirror is returned when every candidate endpoint failed its probe.
var ErrNoMirror = errors.New("no working mirror")
