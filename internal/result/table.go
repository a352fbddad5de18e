package result

// Table is an ordered sequence of rows with a best-effort common column set.
// A row may lack some columns; missing values are absent, not zero-filled.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// FromRows builds a table whose columns are the union of row keys in first
// encounter order.
func FromRows(rows []Row) Table {
	return Table{Columns: ColumnsOf(rows), Rows: rows}
}

// ColumnsOf returns the union of keys across rows in first encounter order.
func ColumnsOf(rows []Row) []string {
	seen := map[string]struct{}{}
	cols := make([]string, 0, 8)
	for _, r := range rows {
		for _, f := range r {
			if _, ok := seen[f.Key]; ok {
				continue
			}
			seen[f.Key] = struct{}{}
			cols = append(cols, f.Key)
		}
	}
	return cols
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// HasColumn reports whether name is one of the table's columns.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone copies rows so callers can Set fields without touching t.
func (t Table) Clone() Table {
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Clone()
	}
	cols := append([]string(nil), t.Columns...)
	return Table{Columns: cols, Rows: rows}
}
