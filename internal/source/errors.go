package source

import "fmt"

// ValidationError reports a malformed descriptor or option. It is returned
// before any network call and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnsupportedCombinationError reports options that cannot be used together,
// such as the custom selector method without a selector.
type UnsupportedCombinationError struct {
	Detail string
}

func (e *UnsupportedCombinationError) Error() string {
	return "unsupported option combination: " + e.Detail
}
