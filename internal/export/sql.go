package export

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hyperifyio/dataminer/internal/result"
)

var unsafeIdent = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Identifier replaces every character outside [A-Za-z0-9_] with '_'.
func Identifier(s string) string {
	if s == "" {
		return "_"
	}
	return unsafeIdent.ReplaceAllString(s, "_")
}

// Identifiers sanitizes cols and suffixes _1, _2, ... to names that would
// otherwise repeat. SQL identifiers compare case-insensitively, so "Price"
// and "price" count as the same name.
func Identifiers(cols []string) []string {
	taken := make(map[string]bool, len(cols))
	for _, c := range cols {
		taken[strings.ToLower(Identifier(c))] = false
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		id := Identifier(c)
		if used, ok := taken[strings.ToLower(id)]; ok && used {
			base := id
			for n := 1; ; n++ {
				id = base + "_" + strconv.Itoa(n)
				if _, exists := taken[strings.ToLower(id)]; !exists {
					break
				}
			}
		}
		taken[strings.ToLower(id)] = true
		out[i] = id
	}
	return out
}

// columnType picks a SQL type from the values present in a column. Mixed or
// textual columns are TEXT.
func columnType(t result.Table, col string) string {
	kind := ""
	for _, row := range t.Rows {
		v, ok := row.Get(col)
		if !ok || v == nil {
			continue
		}
		var k string
		switch v.(type) {
		case int, int64:
			k = "INTEGER"
		case float64:
			k = "REAL"
		case bool:
			k = "BOOLEAN"
		case time.Time:
			k = "TIMESTAMP"
		default:
			return "TEXT"
		}
		if kind == "" {
			kind = k
		} else if kind != k {
			if (kind == "INTEGER" && k == "REAL") || (kind == "REAL" && k == "INTEGER") {
				kind = "REAL"
				continue
			}
			return "TEXT"
		}
	}
	if kind == "" {
		return "TEXT"
	}
	return kind
}

// literal renders v as a SQL literal. Strings are single-quoted with embedded
// quotes doubled.
func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	}
	return "'" + strings.ReplaceAll(cell(v), "'", "''") + "'"
}

// SQL writes a CREATE TABLE statement and one INSERT per row.
func SQL(w io.Writer, r result.Result, opts Options) error {
	opts = opts.withDefaults()
	t := r.AsTable()
	name := Identifier(opts.TableName)
	idents := Identifiers(t.Columns)

	var b strings.Builder
	b.WriteString("-- SQL Export from DataMiner\n")
	fmt.Fprintf(&b, "-- Generated on %s\n\n", opts.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", name)
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = "    " + idents[i] + " " + columnType(t, c)
	}
	b.WriteString(strings.Join(defs, ",\n"))
	b.WriteString("\n);\n\n")
	fmt.Fprintf(&b, "-- Insert data into %s\n", name)
	cols := strings.Join(idents, ", ")
	for _, row := range t.Rows {
		vals := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			v, _ := row.Get(c)
			vals[i] = literal(v)
		}
		fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s);\n", name, cols, strings.Join(vals, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
