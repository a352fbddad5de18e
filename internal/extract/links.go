package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/dataminer/internal/result"
)

// Link is one hyperlink found on a page.
type Link struct {
	URL        string
	Text       string
	SourcePage string
}

// Row renders the link with an absent anchor text as nil.
func (l Link) Row() result.Row {
	var text any
	if l.Text != "" {
		text = l.Text
	}
	return result.Row{
		{Key: "url", Value: l.URL},
		{Key: "text", Value: text},
		{Key: "source_page", Value: l.SourcePage},
	}
}

// SameHostLinks resolves every <a href> on page against the page URL and
// keeps those whose host equals host. Links to other hosts, fragment-only
// links and non-HTTP schemes are dropped.
func SameHostLinks(doc *goquery.Document, page *url.URL, host string) []Link {
	var out []Link
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.HasPrefix(strings.TrimSpace(href), "#") {
			return
		}
		abs := resolve(page, href)
		if abs == nil || !strings.EqualFold(abs.Host, host) {
			return
		}
		out = append(out, Link{URL: abs.String(), Text: cleanText(a.Text()), SourcePage: page.String()})
	})
	return out
}

// NextPage finds a "next page" anchor: text Next or next, class next, or
// rel=next, in that order. It returns "" when the page has none.
func NextPage(doc *goquery.Document, page *url.URL) string {
	var href string
	matchers := []func(*goquery.Selection) bool{
		func(a *goquery.Selection) bool { return strings.TrimSpace(a.Text()) == "Next" },
		func(a *goquery.Selection) bool { return strings.TrimSpace(a.Text()) == "next" },
		func(a *goquery.Selection) bool { return a.HasClass("next") },
		func(a *goquery.Selection) bool { return hasToken(a, "rel", "next") },
	}
	anchors := doc.Find("a")
	for _, match := range matchers {
		found := anchors.FilterFunction(func(_ int, a *goquery.Selection) bool { return match(a) }).First()
		if found.Length() == 0 {
			continue
		}
		href, _ = found.Attr("href")
		break
	}
	if strings.TrimSpace(href) == "" {
		return ""
	}
	if abs := resolve(page, href); abs != nil {
		return abs.String()
	}
	return ""
}

func hasToken(s *goquery.Selection, attr, token string) bool {
	v, ok := s.Attr(attr)
	if !ok {
		return false
	}
	for _, f := range strings.Fields(v) {
		if strings.EqualFold(f, token) {
			return true
		}
	}
	return false
}

// resolve joins href onto base and keeps only http(s) results.
func resolve(base *url.URL, href string) *url.URL {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return nil
	}
	return abs
}
