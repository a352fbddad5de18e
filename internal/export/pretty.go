package export

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hyperifyio/dataminer/internal/result"
)

// Pretty renders the table with rounded box drawing for terminals.
func Pretty(w io.Writer, r result.Result) error {
	t := r.AsTable()
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	header := make(table.Row, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	tw.AppendHeader(header)
	for _, row := range t.Rows {
		vals := cells(t.Columns, row)
		tr := make(table.Row, len(vals))
		for i, v := range vals {
			tr[i] = v
		}
		tw.AppendRow(tr)
	}
	tw.SetStyle(table.StyleRounded)
	tw.Render()
	return nil
}
