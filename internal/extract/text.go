package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// TextStrategy is one named way of turning a page into plain text. An empty
// result means the strategy did not apply and the next one should run.
type TextStrategy struct {
	Name    string
	Extract func(doc *goquery.Document, raw []byte) string
}

// TextStrategies is the ordered fallback chain used by the text only method:
// article-style boilerplate removal first, then every visible text node.
var TextStrategies = []TextStrategy{
	{Name: "readable", Extract: func(_ *goquery.Document, raw []byte) string { return Readable(raw).Text }},
	{Name: "visible", Extract: func(doc *goquery.Document, _ []byte) string { return VisibleText(doc) }},
}

// Text runs strategies in order and returns the first non-empty text along
// with the name of the strategy that produced it.
func Text(doc *goquery.Document, raw []byte, strategies []TextStrategy) (string, string) {
	for _, s := range strategies {
		if t := strings.TrimSpace(s.Extract(doc, raw)); t != "" {
			return t, s.Name
		}
	}
	return "", ""
}

// VisibleText drops script and style elements and joins every remaining
// text fragment on its own line, with whitespace runs collapsed. It does not
// modify doc.
func VisibleText(doc *goquery.Document) string {
	if doc == nil || len(doc.Nodes) == 0 {
		return ""
	}
	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			// Double spaces separate phrases inside one text node.
			for _, line := range strings.Split(n.Data, "\n") {
				for _, phrase := range strings.Split(line, "  ") {
					if p := strings.Join(strings.Fields(phrase), " "); p != "" {
						lines = append(lines, p)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return strings.Join(lines, "\n")
}
