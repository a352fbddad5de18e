package export

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hyperifyio/dataminer/internal/result"
)

// SQLite creates (or appends to) table in the database file at path.
func SQLite(ctx context.Context, path string, r result.Result, table string) error {
	if strings.TrimSpace(table) == "" {
		table = DefaultTableName
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	t := r.AsTable()
	name := quoteIdent(Identifier(table))
	defs := make([]string, len(t.Columns))
	idents := Identifiers(t.Columns)
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		idents[i] = quoteIdent(idents[i])
		defs[i] = idents[i] + " " + columnType(t, c)
		marks[i] = "?"
	}
	if len(defs) == 0 {
		return fmt.Errorf("table has no columns")
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", name, strings.Join(idents, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, row := range t.Rows {
		args := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			v, _ := row.Get(c)
			args[i] = sqlValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
	}
	return tx.Commit()
}

// sqliteTo builds the database in a scratch file and streams it to w.
func sqliteTo(ctx context.Context, w io.Writer, r result.Result, table string) error {
	dir, err := os.MkdirTemp("", "dataminer-export-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "export.db")
	if err := SQLite(ctx, path, r, table); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func quoteIdent(s string) string { return `"` + s + `"` }

func sqlValue(v any) any {
	switch x := v.(type) {
	case nil, string, int, int64, float64, bool:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	}
	return cell(v)
}
