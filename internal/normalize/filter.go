package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hyperifyio/dataminer/internal/result"
)

// TimeLayout is how extracted timestamps are stored in rows.
const TimeLayout = "2006-01-02 15:04:05"

var layouts = []string{
	TimeLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"Jan 2, 2006 · 3:04 PM MST",
	"2006-01-02",
}

// Filter keeps rows whose timeKey value is at or after cutoff, in encounter
// order, and stops once limit rows are kept. Rows without a parseable
// timestamp are kept. A zero cutoff disables date filtering; limit <= 0
// disables the cap. The input slice is not modified.
func Filter(rows []result.Row, timeKey string, cutoff time.Time, limit int) []result.Row {
	out := make([]result.Row, 0, len(rows))
	for _, r := range rows {
		if limit > 0 && len(out) >= limit {
			break
		}
		if !Keep(r, timeKey, cutoff) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Keep reports whether a single row passes the cutoff.
func Keep(r result.Row, timeKey string, cutoff time.Time) bool {
	if cutoff.IsZero() || timeKey == "" {
		return true
	}
	v, ok := r.Get(timeKey)
	if !ok {
		return true
	}
	ts, ok := ParseTime(v)
	if !ok {
		return true
	}
	return !ts.Before(cutoff)
}

// ParseTime understands the timestamp shapes the platforms return: unix
// seconds as numbers or numeric strings, RFC3339, the stored TimeLayout and
// the Nitter display format.
func ParseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case int:
		return time.Unix(int64(t), 0).UTC(), true
	case int64:
		return time.Unix(t, 0).UTC(), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return time.Time{}, false
		}
		sec, frac := math.Modf(t)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return ParseTime(f)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(n, 0).UTC(), true
		}
		for _, l := range layouts {
			if ts, err := time.Parse(l, s); err == nil {
				return ts.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// FormatTime renders t in TimeLayout, UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
