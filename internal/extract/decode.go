package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Decode converts a fetched body to UTF-8 using the Content-Type header and
// any <meta charset> in the first kilobyte.
func Decode(body []byte, contentType string) []byte {
	if utf8.Valid(body) {
		return body
	}
	enc, _, _ := charset.DetermineEncoding(body, contentType)
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return out
}

// Parse decodes body and builds a goquery document.
func Parse(body []byte, contentType string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(Decode(body, contentType)))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Page is a parsed fragment together with its decoded bytes, which the
// readable text strategy parses on its own.
type Page struct {
	Doc *goquery.Document
	Raw []byte
}

// NewPage decodes and parses body once.
func NewPage(body []byte, contentType string) (*Page, error) {
	raw := Decode(body, contentType)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Page{Doc: doc, Raw: raw}, nil
}

// cleanText trims and collapses whitespace in s.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
