// Package normalize merges partial extraction results into one table,
// applies date cutoffs and limits, and collapses repeated placeholders.
// Every function is pure: the same input always yields the same output in
// the same order.
package normalize

import (
	"github.com/hyperifyio/dataminer/internal/result"
)

// ProvenanceColumn records which fragment a merged row came from.
const ProvenanceColumn = "table_num"

// Merge concatenates row sets. When more than one set is given, every row is
// prefixed with its zero-based set index under ProvenanceColumn. Empty sets
// still consume an index so numbering matches the order fragments were
// found.
func Merge(parts [][]result.Row) result.Table {
	nonEmpty := 0
	for _, p := range parts {
		if len(p) > 0 {
			nonEmpty++
		}
	}
	if len(parts) == 1 {
		return result.FromRows(cloneRows(parts[0]))
	}
	rows := make([]result.Row, 0, 64)
	for i, p := range parts {
		for _, r := range p {
			rows = append(rows, r.Prepend(ProvenanceColumn, i))
		}
	}
	if nonEmpty == 0 {
		return result.Table{}
	}
	return result.FromRows(rows)
}

func cloneRows(in []result.Row) []result.Row {
	out := make([]result.Row, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// Combine folds several results of one call into one. Real tables win over
// placeholders and are merged with provenance; when every part is a
// placeholder, placeholders with the same message collapse into the first.
func Combine(parts []result.Result) result.Result {
	var tables [][]result.Row
	var placeholders []result.Result
	var text *result.Result
	for i := range parts {
		p := parts[i]
		switch p.Kind {
		case result.KindPlaceholder:
			placeholders = append(placeholders, p)
		case result.KindTable:
			tables = append(tables, p.Table.Rows)
		case result.KindText, result.KindScalar:
			if text == nil {
				text = &p
			}
			tables = append(tables, p.AsTable().Rows)
		}
	}
	switch {
	case len(tables) == 1 && text != nil:
		return *text
	case len(tables) > 0:
		return result.OfTable(Merge(tables))
	case len(placeholders) > 0:
		return CollapsePlaceholders(placeholders)[0]
	}
	return result.OfPlaceholder(result.ReasonEmpty, result.Row{{Key: "message", Value: "No data was returned"}})
}

// CollapsePlaceholders drops placeholders whose message repeats an earlier
// one, keeping encounter order.
func CollapsePlaceholders(in []result.Result) []result.Result {
	seen := map[string]struct{}{}
	out := make([]result.Result, 0, len(in))
	for _, r := range in {
		if r.IsPlaceholder() {
			key := r.Reason + "\x00" + r.Message()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}
