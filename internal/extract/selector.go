package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/hyperifyio/dataminer/internal/result"
)

// CompileSelector parses a CSS selector. Invalid selectors are reported
// instead of silently matching nothing.
func CompileSelector(sel string) (cascadia.Selector, error) {
	return cascadia.Compile(sel)
}

// Select applies a CSS selector and picks the result shape:
//
//   - when every match has the same tag and at least one child element, one
//     row per match keyed by descendant tag name; a tag repeated under one
//     match becomes a []string value;
//   - otherwise the collapsed text of each match, as a scalar when there is
//     exactly one match and as a content column when there are more.
//
// Zero matches is an *Error wrapping ErrNoMatches.
func Select(doc *goquery.Document, sel cascadia.Selector, raw string) (result.Result, error) {
	matches := doc.FindMatcher(sel)
	if matches.Length() == 0 {
		return result.Result{}, &Error{Err: ErrNoMatches, Detail: raw}
	}
	if structured(matches) {
		rows := make([]result.Row, 0, matches.Length())
		matches.Each(func(_ int, m *goquery.Selection) {
			rows = append(rows, childRow(m))
		})
		return result.OfTable(result.FromRows(rows)), nil
	}

	texts := matches.Map(func(_ int, m *goquery.Selection) string { return cleanText(m.Text()) })
	if len(texts) == 1 {
		return result.OfScalar(texts[0]), nil
	}
	rows := make([]result.Row, len(texts))
	for i, t := range texts {
		rows[i] = result.Row{{Key: result.ContentColumn, Value: t}}
	}
	return result.OfTable(result.FromRows(rows)), nil
}

func structured(matches *goquery.Selection) bool {
	name := goquery.NodeName(matches.First())
	ok := true
	matches.EachWithBreak(func(_ int, m *goquery.Selection) bool {
		if goquery.NodeName(m) != name || m.Find("*").Length() == 0 {
			ok = false
		}
		return ok
	})
	return ok
}

// childRow walks every descendant element of m in document order.
func childRow(m *goquery.Selection) result.Row {
	var row result.Row
	m.Find("*").Each(func(_ int, c *goquery.Selection) {
		key := goquery.NodeName(c)
		val := cleanText(c.Text())
		prev, ok := row.Get(key)
		switch {
		case !ok:
			row = append(row, result.Field{Key: key, Value: val})
		default:
			switch p := prev.(type) {
			case []string:
				row.Set(key, append(p, val))
			case string:
				row.Set(key, []string{p, val})
			}
		}
	})
	return row
}
