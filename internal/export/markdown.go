package export

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/hyperifyio/dataminer/internal/result"
)

func newConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
}

func htmlToMarkdown(s string) (string, error) {
	return newConverter().ConvertString(s)
}

// isHTML sniffs whether a text result is markup, as full page content is.
func isHTML(s string) bool {
	return strings.HasPrefix(http.DetectContentType([]byte(s)), "text/html")
}

// Markdown writes a level one title followed by the data: tables become
// Markdown tables, HTML text is converted, and plain text is written as is.
func Markdown(w io.Writer, r result.Result, opts Options) error {
	opts = opts.withDefaults()
	var body string
	switch {
	case r.Kind == result.KindText && isHTML(r.Text):
		md, err := htmlToMarkdown(r.Text)
		if err != nil {
			return fmt.Errorf("convert html: %w", err)
		}
		body = md
	case r.Kind == result.KindText || r.Kind == result.KindScalar:
		body = r.Text
	default:
		var buf bytes.Buffer
		if err := htmlTable(&buf, r); err != nil {
			return err
		}
		md, err := htmlToMarkdown(buf.String())
		if err != nil {
			return fmt.Errorf("convert table: %w", err)
		}
		body = md
	}
	_, err := fmt.Fprintf(w, "# %s\n\n%s\n", opts.Title, strings.TrimSpace(body))
	return err
}
