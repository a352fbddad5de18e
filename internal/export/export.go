// Package export renders a result in the file formats users download:
// delimited text, JSON records, a styled HTML page, SQL statements, an SQLite
// database, PDF, Markdown, and a terminal table.
//
// Every format works on the tabular view of a result. Text and scalar
// results export as a single content column.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/dataminer/internal/result"
)

// Format names an output encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatSQL      Format = "sql"
	FormatSQLite   Format = "sqlite"
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "markdown"
	FormatPretty   Format = "table"
)

// Formats lists every supported format in the order shown to users.
var Formats = []Format{FormatCSV, FormatJSON, FormatHTML, FormatSQL, FormatSQLite, FormatPDF, FormatMarkdown, FormatPretty}

// ParseFormat accepts a format name case-insensitively. "md" is an alias for
// markdown and "db" for sqlite.
func ParseFormat(s string) (Format, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "md":
		return FormatMarkdown, nil
	case "db":
		return FormatSQLite, nil
	}
	for _, f := range Formats {
		if string(f) == v {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Extension is the conventional file suffix for f.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatSQLite:
		return ".db"
	case FormatPretty:
		return ".txt"
	default:
		return "." + string(f)
	}
}

// DefaultTableName is used by the SQL formats when Options.TableName is empty.
const DefaultTableName = "scraped_data"

// Options tunes the formats that embed a title, a table name, or a timestamp.
type Options struct {
	Title     string
	TableName string
	// Now stamps generated documents. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Title) == "" {
		o.Title = "Exported Data"
	}
	if strings.TrimSpace(o.TableName) == "" {
		o.TableName = DefaultTableName
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Write encodes r to w in format f.
func Write(ctx context.Context, w io.Writer, r result.Result, f Format, opts Options) error {
	opts = opts.withDefaults()
	var err error
	switch f {
	case FormatCSV:
		err = CSV(w, r)
	case FormatJSON:
		err = JSON(w, r)
	case FormatHTML:
		err = HTML(w, r, opts)
	case FormatSQL:
		err = SQL(w, r, opts)
	case FormatSQLite:
		err = sqliteTo(ctx, w, r, opts.TableName)
	case FormatPDF:
		err = PDF(w, r, opts)
	case FormatMarkdown:
		err = Markdown(w, r, opts)
	case FormatPretty:
		err = Pretty(w, r)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", f, err)
	}
	log.Debug().Str("format", string(f)).Str("kind", r.Kind.String()).Msg("exported")
	return nil
}

// cell renders one value for the text formats. Nested lists and rows are
// written as JSON, times as RFC3339, absent values as "".
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// cells returns row values aligned to columns.
func cells(cols []string, row result.Row) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		if v, ok := row.Get(c); ok {
			out[i] = cell(v)
		}
	}
	return out
}
