package export

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/hyperifyio/dataminer/internal/result"
)

// CSV writes a header line followed by one record per row.
func CSV(w io.Writer, r result.Result) error {
	t := r.AsTable()
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(cells(t.Columns, row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSON writes the rows as an indented array of records. Every record carries
// every column, with null where a row lacks a value.
func JSON(w io.Writer, r result.Result) error {
	t := r.AsTable()
	records := make([]result.Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(result.Row, 0, len(t.Columns))
		for _, c := range t.Columns {
			v, _ := row.Get(c)
			rec = append(rec, result.Field{Key: c, Value: v})
		}
		records = append(records, rec)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
