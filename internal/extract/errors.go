package extract

import "errors"

var (
	ErrNoTables  = errors.New("no tables found on the page")
	ErrNoLinks   = errors.New("no links found on the page")
	ErrNoImages  = errors.New("no images found on the page")
	ErrNoMatches = errors.New("no elements found matching selector")
)

// Error is a structural extraction that produced zero matches. It wraps one
// of the package sentinels.
type Error struct {
	URL    string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.URL != "" {
		msg += " (" + e.URL + ")"
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }
