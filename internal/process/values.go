package process

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hyperifyio/dataminer/internal/result"
)

// missing reports whether v counts as an absent value: nil, an empty or
// blank string, or NaN.
func missing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case float64:
		return math.IsNaN(t)
	}
	return false
}

// number reads v as a float. Numeric strings count, so table cells scraped
// as text still sort and compare as numbers.
func number(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, !math.IsNaN(t)
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}

// text renders a cell the way exports and string filters see it.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case []string, []result.Row, map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

// numericColumn reports whether every present value of col is a number and
// at least one value is present.
func numericColumn(t result.Table, col string) bool {
	seen := false
	for _, r := range t.Rows {
		v, ok := r.Get(col)
		if !ok || missing(v) {
			continue
		}
		if _, ok := number(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// columnValues returns the present numeric values of col.
func columnValues(t result.Table, col string) []float64 {
	var out []float64
	for _, r := range t.Rows {
		v, ok := r.Get(col)
		if !ok || missing(v) {
			continue
		}
		if f, ok := number(v); ok {
			out = append(out, f)
		}
	}
	return out
}
