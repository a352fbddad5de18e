// Package result defines the value every extraction call returns: a tagged
// union of a row table, a text blob, a scalar string, or a placeholder row
// standing in for "no usable data".
package result

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the variants of Result.
type Kind uint8

const (
	KindTable Kind = iota + 1
	KindText
	KindScalar
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindText:
		return "text"
	case KindScalar:
		return "scalar"
	case KindPlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Placeholder reasons. A placeholder never carries usable data; the reason
// tells the caller why.
const (
	ReasonUnreachable = "unreachable"
	ReasonEmpty       = "empty"
	ReasonRestricted  = "restricted"
)

// ContentColumn is the column used when a text or scalar value is viewed as
// a table, and for selector matches that do not form rows.
const ContentColumn = "content"

// Result is the outcome of one extraction call. Exactly one of Table or Text
// is meaningful, selected by Kind. Placeholders hold their single row in
// Table and the cause in Reason.
type Result struct {
	Kind   Kind
	Table  Table
	Text   string
	Reason string
}

func OfTable(t Table) Result { return Result{Kind: KindTable, Table: t} }

func OfText(s string) Result { return Result{Kind: KindText, Text: s} }

func OfScalar(s string) Result { return Result{Kind: KindScalar, Text: s} }

// OfPlaceholder wraps a single descriptive row.
func OfPlaceholder(reason string, row Row) Result {
	return Result{Kind: KindPlaceholder, Table: FromRows([]Row{row}), Reason: reason}
}

// IsPlaceholder reports whether r stands in for missing data.
func (r Result) IsPlaceholder() bool { return r.Kind == KindPlaceholder }

// Message returns the placeholder's human readable explanation.
func (r Result) Message() string {
	if r.Kind != KindPlaceholder || len(r.Table.Rows) == 0 {
		return ""
	}
	return r.Table.Rows[0].String("message")
}

// AsTable views any variant as a table. Text and scalar values become a
// single row with a content column.
func (r Result) AsTable() Table {
	switch r.Kind {
	case KindTable, KindPlaceholder:
		return r.Table
	default:
		return FromRows([]Row{{{Key: ContentColumn, Value: r.Text}}})
	}
}

type wireResult struct {
	Kind    string   `json:"kind"`
	Reason  string   `json:"reason,omitempty"`
	Columns []string `json:"columns,omitempty"`
	Rows    []Row    `json:"rows,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// MarshalJSON encodes the discriminant explicitly so HTTP and file consumers
// never have to infer the variant from the payload shape.
func (r Result) MarshalJSON() ([]byte, error) {
	w := wireResult{Kind: r.Kind.String(), Reason: r.Reason}
	switch r.Kind {
	case KindTable, KindPlaceholder:
		w.Columns = r.Table.Columns
		w.Rows = r.Table.Rows
	default:
		w.Text = r.Text
	}
	return json.Marshal(w)
}
