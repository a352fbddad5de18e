package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/dataminer/internal/result"
)

// UnknownDimension is reported when an image declares no width or height.
const UnknownDimension = "Unknown"

// Images lists every <img> with a src, resolved against page.
func Images(doc *goquery.Document, page *url.URL) []result.Row {
	var out []result.Row
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if strings.TrimSpace(src) == "" {
			return
		}
		full := src
		if abs := resolveAny(page, src); abs != "" {
			full = abs
		}
		alt, _ := img.Attr("alt")
		out = append(out, result.Row{
			{Key: "url", Value: full},
			{Key: "alt_text", Value: alt},
			{Key: "width", Value: attrOr(img, "width", UnknownDimension)},
			{Key: "height", Value: attrOr(img, "height", UnknownDimension)},
		})
	})
	return out
}

func attrOr(s *goquery.Selection, name, def string) string {
	if v, ok := s.Attr(name); ok {
		return v
	}
	return def
}

// resolveAny resolves without a scheme filter; data: URIs pass through.
func resolveAny(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
