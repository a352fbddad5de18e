// Package source describes what to fetch and how: the source descriptor,
// the extraction method, and the fetch options bundle. Validation happens
// here, before any network call.
package source

import (
	"fmt"
	"net/url"
	"strings"
)

// Method names a web extraction strategy.
type Method string

const (
	MethodFullContent Method = "Full Page Content"
	MethodTextOnly    Method = "Text Only"
	MethodTables      Method = "Tables"
	MethodLinks       Method = "Links"
	MethodImages      Method = "Images"
	MethodSelector    Method = "Custom CSS Selector"
)

// Methods lists the web methods in display order.
var Methods = []Method{MethodFullContent, MethodTextOnly, MethodTables, MethodLinks, MethodImages, MethodSelector}

// Platform names a social source.
type Platform string

const (
	PlatformTwitter   Platform = "Twitter/X"
	PlatformReddit    Platform = "Reddit"
	PlatformYouTube   Platform = "YouTube Comments"
	PlatformInstagram Platform = "Instagram (Public)"
	PlatformHN        Platform = "HackerNews"
)

// Platforms lists the supported social platforms.
var Platforms = []Platform{PlatformTwitter, PlatformReddit, PlatformYouTube, PlatformInstagram, PlatformHN}

// QueryKinds maps each platform to the query kinds it accepts. YouTube takes
// a video URL and ignores the kind.
var QueryKinds = map[Platform][]string{
	PlatformTwitter:   {"Username", "Hashtag", "Keyword"},
	PlatformReddit:    {"Subreddit", "User", "Search Term"},
	PlatformYouTube:   {"Video URL"},
	PlatformInstagram: {"Username", "Hashtag"},
	PlatformHN:        {"Top Stories", "New Stories", "Ask HN", "Show HN"},
}

// Descriptor identifies what to fetch: either a URL or a platform query.
type Descriptor struct {
	URL string

	Platform  Platform
	QueryKind string
	Query     string
}

// IsSocial reports whether d targets a platform rather than a URL.
func (d Descriptor) IsSocial() bool { return d.Platform != "" }

// Web builds a URL descriptor.
func Web(rawURL string) Descriptor { return Descriptor{URL: rawURL} }

// Social builds a platform descriptor.
func Social(p Platform, kind, query string) Descriptor {
	return Descriptor{Platform: p, QueryKind: kind, Query: query}
}

// NormalizeURL prefixes a missing scheme with https and rejects URLs without
// a host.
func NormalizeURL(raw string) (*url.URL, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, &ValidationError{Field: "url", Reason: "empty"}
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, &ValidationError{Field: "url", Reason: err.Error()}
	}
	if u.Host == "" {
		return nil, &ValidationError{Field: "url", Reason: "missing host"}
	}
	return u, nil
}

// ValidateWeb checks a URL descriptor and method combination.
func ValidateWeb(d Descriptor, m Method, opts Options) (*url.URL, error) {
	if d.IsSocial() {
		return nil, &ValidationError{Field: "source", Reason: "platform descriptor used for web extraction"}
	}
	u, err := NormalizeURL(d.URL)
	if err != nil {
		return nil, err
	}
	if !knownMethod(m) {
		return nil, &ValidationError{Field: "method", Reason: fmt.Sprintf("unknown scraping method: %s", m)}
	}
	if m == MethodSelector && strings.TrimSpace(opts.Selector) == "" {
		return nil, &UnsupportedCombinationError{Detail: "CSS selector is required for custom extraction"}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// ValidateSocial checks a platform descriptor.
func ValidateSocial(d Descriptor, opts Options) error {
	kinds, ok := QueryKinds[d.Platform]
	if !ok {
		return &ValidationError{Field: "platform", Reason: fmt.Sprintf("unsupported platform: %s", d.Platform)}
	}
	if d.Platform != PlatformYouTube {
		found := false
		for _, k := range kinds {
			if k == d.QueryKind {
				found = true
				break
			}
		}
		if !found {
			return &ValidationError{Field: "query_kind", Reason: fmt.Sprintf("unsupported %s query type: %s", d.Platform, d.QueryKind)}
		}
	}
	// HackerNews lists are browsable without a query; the query only filters.
	if d.Platform != PlatformHN && strings.TrimSpace(d.Query) == "" {
		return &ValidationError{Field: "query", Reason: "empty"}
	}
	return opts.Validate()
}

func knownMethod(m Method) bool {
	for _, k := range Methods {
		if k == m {
			return true
		}
	}
	return false
}
