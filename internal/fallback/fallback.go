// Package fallback builds the single-row placeholder tables returned when a
// platform cannot be reached or yields nothing. A placeholder row has its
// own schema (message, solution, step1..N, code_example, extras) that never
// overlaps a successful result.
package fallback

import (
	"strconv"

	"github.com/hyperifyio/dataminer/internal/result"
)

// Remedy is a failure explanation plus named remediation steps.
type Remedy struct {
	Message     string
	Limitation  string
	Solution    string
	Steps       []string
	CodeExample string
	// Extra fields appended after the code example, in order.
	Extra []result.Field
}

// Row lays the remedy out as a placeholder row. Steps are numbered from 1
// under step1, step2, ...
func (r Remedy) Row() result.Row {
	row := result.Row{{Key: "message", Value: r.Message}}
	if r.Limitation != "" {
		row = append(row, result.Field{Key: "limitation", Value: r.Limitation})
	}
	if r.Solution != "" {
		row = append(row, result.Field{Key: "solution", Value: r.Solution})
	}
	for i, s := range r.Steps {
		row = append(row, result.Field{Key: "step" + strconv.Itoa(i+1), Value: strconv.Itoa(i+1) + ". " + s})
	}
	if r.CodeExample != "" {
		row = append(row, result.Field{Key: "code_example", Value: r.CodeExample})
	}
	return append(row, r.Extra...)
}

// Result wraps the remedy as a placeholder result with the given reason.
func (r Remedy) Result(reason string) result.Result {
	return result.OfPlaceholder(reason, r.Row())
}

// Empty is the placeholder for a platform that answered but had nothing
// matching the criteria, e.g. Empty("tweets").
func Empty(noun string) result.Result {
	return result.OfPlaceholder(result.ReasonEmpty, result.Row{
		{Key: "message", Value: "No " + noun + " found for the given criteria"},
	})
}
