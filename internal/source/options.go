package source

import (
	"fmt"
	"time"
)

// DateRange is the coarse recency window a caller picks.
type DateRange string

const (
	LastDay   DateRange = "Last 24 hours"
	LastWeek  DateRange = "Last week"
	LastMonth DateRange = "Last month"
	AllTime   DateRange = "All time"
)

// Cutoff resolves the range against now. All time yields the zero instant,
// which disables date filtering.
func (r DateRange) Cutoff(now time.Time) time.Time {
	switch r {
	case LastDay:
		return now.Add(-24 * time.Hour)
	case LastWeek:
		return now.Add(-7 * 24 * time.Hour)
	case LastMonth:
		return now.Add(-30 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}

// Valid reports whether r is one of the known ranges. Empty means all time.
func (r DateRange) Valid() bool {
	switch r {
	case LastDay, LastWeek, LastMonth, AllTime, "":
		return true
	}
	return false
}

// DefaultUserAgent is sent when the caller does not override it.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Options is the fetch options bundle passed into each call.
type Options struct {
	UserAgent string
	// Delay is inserted between consecutive requests of one call.
	Delay   time.Duration
	Timeout time.Duration
	// MaxPages bounds pagination and link traversal.
	MaxPages int
	// Limit bounds the number of items returned by platform sources.
	Limit     int
	DateRange DateRange

	IncludeMetadata bool
	IncludeReplies  bool

	// Selector is required by the custom selector method.
	Selector string
}

// Defaults mirror the interactive tool's initial form values.
func Defaults() Options {
	return Options{
		UserAgent:       DefaultUserAgent,
		Delay:           time.Second,
		Timeout:         30 * time.Second,
		MaxPages:        1,
		Limit:           100,
		DateRange:       LastWeek,
		IncludeMetadata: true,
		IncludeReplies:  true,
	}
}

// WithDefaults fills zero fields from Defaults. Negative values are left
// for Validate to reject.
func (o Options) WithDefaults() Options {
	d := Defaults()
	if o.UserAgent == "" {
		o.UserAgent = d.UserAgent
	}
	if o.Timeout == 0 {
		o.Timeout = d.Timeout
	}
	if o.MaxPages == 0 {
		o.MaxPages = d.MaxPages
	}
	if o.Limit == 0 {
		o.Limit = d.Limit
	}
	if o.DateRange == "" {
		o.DateRange = AllTime
	}
	return o
}

// Validate rejects values no caller could have meant.
func (o Options) Validate() error {
	if !o.DateRange.Valid() {
		return &ValidationError{Field: "date_range", Reason: fmt.Sprintf("unknown date range: %s", o.DateRange)}
	}
	if o.MaxPages < 0 || o.Limit < 0 {
		return &ValidationError{Field: "limits", Reason: "negative limits are not allowed"}
	}
	if o.Delay < 0 || o.Timeout < 0 {
		return &ValidationError{Field: "durations", Reason: "negative durations are not allowed"}
	}
	return nil
}
