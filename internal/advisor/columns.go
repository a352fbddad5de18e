package advisor

import (
	"strconv"
	"strings"
	"time"

	"github.com/hyperifyio/dataminer/internal/normalize"
	"github.com/hyperifyio/dataminer/internal/result"
)

// profile classifies the columns of a table and counts what is missing.
type profile struct {
	Rows        int
	Numeric     []string
	Datetime    []string
	Categorical []string
	Missing     map[string]int
	Duplicates  int
}

func profileOf(t result.Table) profile {
	p := profile{Rows: len(t.Rows), Missing: map[string]int{}}
	for _, c := range t.Columns {
		numeric, dated, present := true, true, 0
		for _, row := range t.Rows {
			v, ok := row.Get(c)
			if !ok || blank(v) {
				p.Missing[c]++
				continue
			}
			present++
			if !isNumber(v) {
				numeric = false
			}
			if !isDate(v) {
				dated = false
			}
		}
		switch {
		case present == 0:
			p.Categorical = append(p.Categorical, c)
		case numeric:
			p.Numeric = append(p.Numeric, c)
		case dated:
			p.Datetime = append(p.Datetime, c)
		default:
			p.Categorical = append(p.Categorical, c)
		}
	}
	seen := map[string]bool{}
	for _, row := range t.Rows {
		b, _ := row.MarshalJSON()
		if seen[string(b)] {
			p.Duplicates++
		}
		seen[string(b)] = true
	}
	return p
}

func blank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func isNumber(v any) bool {
	switch x := v.(type) {
	case int, int64, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(x), ",", ""), 64)
		return err == nil
	}
	return false
}

// isDate accepts time values and strings in the formats the normalizer
// understands. Bare numbers are left to isNumber.
func isDate(v any) bool {
	switch x := v.(type) {
	case time.Time:
		return true
	case string:
		if isNumber(x) {
			return false
		}
		_, ok := normalize.ParseTime(x)
		return ok
	}
	return false
}
