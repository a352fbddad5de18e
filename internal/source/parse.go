package source

import (
	"fmt"
	"strings"
)

var methodAliases = map[string]Method{
	"full":     MethodFullContent,
	"content":  MethodFullContent,
	"text":     MethodTextOnly,
	"tables":   MethodTables,
	"table":    MethodTables,
	"links":    MethodLinks,
	"images":   MethodImages,
	"selector": MethodSelector,
	"css":      MethodSelector,
}

var platformAliases = map[string]Platform{
	"twitter":    PlatformTwitter,
	"x":          PlatformTwitter,
	"reddit":     PlatformReddit,
	"youtube":    PlatformYouTube,
	"instagram":  PlatformInstagram,
	"hackernews": PlatformHN,
	"hn":         PlatformHN,
}

var rangeAliases = map[string]DateRange{
	"day":   LastDay,
	"24h":   LastDay,
	"week":  LastWeek,
	"month": LastMonth,
	"all":   AllTime,
}

// ParseMethod accepts a display name or a short alias such as "tables".
func ParseMethod(s string) (Method, error) {
	v := strings.TrimSpace(s)
	for _, m := range Methods {
		if strings.EqualFold(string(m), v) {
			return m, nil
		}
	}
	if m, ok := methodAliases[strings.ToLower(v)]; ok {
		return m, nil
	}
	return "", &ValidationError{Field: "method", Reason: fmt.Sprintf("unknown scraping method: %s", s)}
}

// ParsePlatform accepts a display name or a short alias such as "hn".
func ParsePlatform(s string) (Platform, error) {
	v := strings.TrimSpace(s)
	for _, p := range Platforms {
		if strings.EqualFold(string(p), v) {
			return p, nil
		}
	}
	if p, ok := platformAliases[strings.ToLower(v)]; ok {
		return p, nil
	}
	return "", &ValidationError{Field: "platform", Reason: fmt.Sprintf("unsupported platform: %s", s)}
}

// ParseQueryKind matches s against the kinds p accepts, ignoring case and
// treating '-' and '_' as spaces.
func ParseQueryKind(p Platform, s string) (string, error) {
	v := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s))
	for _, k := range QueryKinds[p] {
		if strings.EqualFold(k, v) {
			return k, nil
		}
	}
	if p == PlatformYouTube {
		return QueryKinds[p][0], nil
	}
	return "", &ValidationError{Field: "query_kind", Reason: fmt.Sprintf("unsupported %s query type: %s", p, s)}
}

// ParseDateRange accepts a range name or an alias such as "week". Empty
// means all time.
func ParseDateRange(s string) (DateRange, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return AllTime, nil
	}
	for _, r := range []DateRange{LastDay, LastWeek, LastMonth, AllTime} {
		if strings.EqualFold(string(r), v) {
			return r, nil
		}
	}
	if r, ok := rangeAliases[strings.ToLower(v)]; ok {
		return r, nil
	}
	return "", &ValidationError{Field: "date_range", Reason: fmt.Sprintf("unknown date range: %s", s)}
}
