// Package process cleans and reshapes a result table. Every operation returns
// a new result and leaves its input untouched; non-table results pass
// through unchanged.
package process

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/dataminer/internal/normalize"
	"github.com/hyperifyio/dataminer/internal/result"
)

// FillMethod selects how FillMissing picks a replacement value.
type FillMethod string

const (
	FillMean     FillMethod = "Mean"
	FillMedian   FillMethod = "Median"
	FillMode     FillMethod = "Mode"
	FillForward  FillMethod = "Forward Fill"
	FillBackward FillMethod = "Backward Fill"
	FillCustom   FillMethod = "Custom Value"
)

// TargetType is a column type for ConvertType.
type TargetType string

const (
	TypeString   TargetType = "String"
	TypeInteger  TargetType = "Integer"
	TypeFloat    TargetType = "Float"
	TypeBoolean  TargetType = "Boolean"
	TypeDateTime TargetType = "DateTime"
)

// FilterOp is a row predicate for Filter.
type FilterOp string

const (
	OpContains    FilterOp = "Contains"
	OpEquals      FilterOp = "Equals"
	OpGreaterThan FilterOp = "Greater Than"
	OpLessThan    FilterOp = "Less Than"
)

func table(r result.Result, op string) (result.Table, bool) {
	if r.Kind != result.KindTable {
		log.Warn().Str("op", op).Str("kind", r.Kind.String()).Msg("data is not a table, skipping")
		return result.Table{}, false
	}
	return r.Table.Clone(), true
}

func tableWithColumn(r result.Result, op, column string) (result.Table, bool) {
	t, ok := table(r, op)
	if !ok {
		return t, false
	}
	if !t.HasColumn(column) {
		log.Warn().Str("op", op).Str("column", column).Msg("column not found in data")
		return t, false
	}
	return t, true
}

// RemoveDuplicates drops rows whose values equal an earlier row's across all
// columns. An absent field equals nil.
func RemoveDuplicates(r result.Result) result.Result {
	t, ok := table(r, "remove_duplicates")
	if !ok {
		return r
	}
	seen := map[string]struct{}{}
	rows := t.Rows[:0:0]
	for _, row := range t.Rows {
		key := rowKey(t.Columns, row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, row)
	}
	log.Info().Int("removed", len(t.Rows)-len(rows)).Msg("removed duplicate rows")
	t.Rows = rows
	return result.OfTable(t)
}

func rowKey(cols []string, row result.Row) string {
	vals := make([]any, len(cols))
	for i, c := range cols {
		v, _ := row.Get(c)
		vals[i] = v
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return text(vals)
	}
	return string(b)
}

// RemoveEmptyRows drops rows in which every value is missing.
func RemoveEmptyRows(r result.Result) result.Result {
	t, ok := table(r, "remove_empty_rows")
	if !ok {
		return r
	}
	rows := t.Rows[:0:0]
	for _, row := range t.Rows {
		empty := true
		for _, f := range row {
			if !missing(f.Value) {
				empty = false
				break
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	log.Info().Int("removed", len(t.Rows)-len(rows)).Msg("removed empty rows")
	t.Rows = rows
	return result.OfTable(t)
}

// FillMissing replaces missing values. Mean and Median touch numeric columns
// only; Mode, the directional fills and Custom Value touch every column. A
// custom value is stored as a number in numeric columns when it parses.
func FillMissing(r result.Result, method FillMethod, custom string) result.Result {
	t, ok := table(r, "fill_missing")
	if !ok {
		return r
	}
	for _, col := range t.Columns {
		numeric := numericColumn(t, col)
		switch method {
		case FillMean:
			if vals := columnValues(t, col); numeric && len(vals) > 0 {
				fillWith(t, col, mean(vals))
			}
		case FillMedian:
			if vals := columnValues(t, col); numeric && len(vals) > 0 {
				fillWith(t, col, median(vals))
			}
		case FillMode:
			if v, ok := mode(t, col); ok {
				fillWith(t, col, v)
			}
		case FillForward:
			fillDirectional(t, col, false)
		case FillBackward:
			fillDirectional(t, col, true)
		case FillCustom:
			if custom == "" {
				continue
			}
			var v any = custom
			if f, err := strconv.ParseFloat(custom, 64); err == nil && numeric {
				v = f
			}
			fillWith(t, col, v)
		default:
			log.Warn().Str("method", string(method)).Msg("unknown fill method")
			return r
		}
	}
	log.Info().Str("method", string(method)).Msg("filled missing values")
	return result.OfTable(t)
}

func fillWith(t result.Table, col string, v any) {
	for i := range t.Rows {
		cur, _ := t.Rows[i].Get(col)
		if missing(cur) {
			t.Rows[i].Set(col, v)
		}
	}
}

func fillDirectional(t result.Table, col string, backward bool) {
	n := len(t.Rows)
	var last any
	have := false
	for k := 0; k < n; k++ {
		i := k
		if backward {
			i = n - 1 - k
		}
		cur, _ := t.Rows[i].Get(col)
		if !missing(cur) {
			last, have = cur, true
			continue
		}
		if have {
			t.Rows[i].Set(col, last)
		}
	}
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func median(vals []float64) float64 {
	s := append([]float64(nil), vals...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// mode picks the most frequent present value; ties go to the value seen
// first.
func mode(t result.Table, col string) (any, bool) {
	counts := map[string]int{}
	first := map[string]any{}
	var order []string
	for _, row := range t.Rows {
		v, ok := row.Get(col)
		if !ok || missing(v) {
			continue
		}
		k := text(v)
		if _, seen := first[k]; !seen {
			first[k] = v
			order = append(order, k)
		}
		counts[k]++
	}
	if len(order) == 0 {
		return nil, false
	}
	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return first[best], true
}

var (
	trueWords  = map[string]bool{"true": true, "yes": true, "y": true, "1": true, "on": true, "t": true}
	falseWords = map[string]bool{"false": true, "no": true, "n": true, "0": true, "off": true, "f": true}
)

// ConvertType rewrites one column. Integer turns unparseable values into 0,
// Float and DateTime turn them into nil.
func ConvertType(r result.Result, column string, to TargetType) result.Result {
	t, ok := tableWithColumn(r, "convert_type", column)
	if !ok {
		return r
	}
	for i := range t.Rows {
		v, present := t.Rows[i].Get(column)
		if !present && to != TypeInteger {
			continue
		}
		var out any
		switch to {
		case TypeString:
			out = text(v)
		case TypeInteger:
			f, _ := number(v)
			out = int64(f)
		case TypeFloat:
			if f, ok := number(v); ok {
				out = f
			}
		case TypeBoolean:
			out = toBool(v)
		case TypeDateTime:
			if ts, ok := normalize.ParseTime(v); ok {
				out = ts
			}
		default:
			log.Warn().Str("type", string(to)).Msg("unknown target type")
			return r
		}
		t.Rows[i].Set(column, out)
	}
	log.Info().Str("column", column).Str("type", string(to)).Msg("converted column")
	return result.OfTable(t)
}

func toBool(v any) any {
	if missing(v) {
		return nil
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		s := strings.ToLower(strings.TrimSpace(b))
		if trueWords[s] {
			return true
		}
		if falseWords[s] {
			return false
		}
		return s != ""
	}
	if f, ok := number(v); ok {
		return f != 0
	}
	return true
}

// Filter keeps rows matching op against value. Contains is a
// case-insensitive substring test; Greater Than and Less Than coerce the
// column to numbers and drop rows that do not parse.
func Filter(r result.Result, column string, op FilterOp, value string) result.Result {
	t, ok := tableWithColumn(r, "filter", column)
	if !ok {
		return r
	}
	var pred func(v any) bool
	want, numOK := number(value)
	switch op {
	case OpContains:
		needle := strings.ToLower(value)
		pred = func(v any) bool { return !missing(v) && strings.Contains(strings.ToLower(text(v)), needle) }
	case OpEquals:
		if numOK && numericColumn(t, column) {
			pred = func(v any) bool {
				f, ok := number(v)
				return ok && f == want
			}
		} else {
			pred = func(v any) bool { return text(v) == value }
		}
	case OpGreaterThan, OpLessThan:
		if !numOK {
			log.Warn().Str("value", value).Str("op", string(op)).Msg("cannot compare with a non-numeric value")
			return result.OfTable(t)
		}
		greater := op == OpGreaterThan
		pred = func(v any) bool {
			f, ok := number(v)
			if !ok {
				return false
			}
			if greater {
				return f > want
			}
			return f < want
		}
	default:
		log.Warn().Str("op", string(op)).Msg("unknown filter")
		return r
	}
	rows := t.Rows[:0:0]
	for _, row := range t.Rows {
		v, _ := row.Get(column)
		if pred(v) {
			rows = append(rows, row)
		}
	}
	log.Info().Str("column", column).Str("op", string(op)).Int("before", len(t.Rows)).Int("after", len(rows)).Msg("filtered data")
	t.Rows = rows
	return result.OfTable(t)
}
