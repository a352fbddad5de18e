package export

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/dataminer/internal/result"
)

var mdLink = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`) // [text](url)

// maxPDFCell bounds the characters drawn in one table cell.
const maxPDFCell = 60

// PDF renders tables as a grid and text results as paragraphs, with Markdown
// links in text turned into clickable PDF links.
func PDF(w io.Writer, r result.Result, opts Options) error {
	opts = opts.withDefaults()
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.AddPage()
	pdf.CellFormat(0, 8, tr(opts.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, "Generated on "+opts.Now().Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	switch r.Kind {
	case result.KindText, result.KindScalar:
		text := r.Text
		if isHTML(text) {
			md, err := htmlToMarkdown(text)
			if err == nil {
				text = md
			}
		}
		pdf.SetFont("Helvetica", "", 11)
		writeMarkdownLines(pdf, tr, text)
	default:
		writeGrid(pdf, tr, r.AsTable())
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func writeGrid(pdf *gofpdf.Fpdf, tr func(string) string, t result.Table) {
	if len(t.Columns) == 0 {
		return
	}
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(t.Columns))

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(242, 242, 242)
	for _, c := range t.Columns {
		pdf.CellFormat(colW, 7, tr(clip(c, maxPDFCell)), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 8)
	for _, row := range t.Rows {
		for _, v := range cells(t.Columns, row) {
			pdf.CellFormat(colW, 6, tr(clip(v, maxPDFCell)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func clip(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}

// writeMarkdownLines lays out Markdown line by line: headings are bold,
// blank lines add spacing, and links become PDF links.
func writeMarkdownLines(pdf *gofpdf.Fpdf, tr func(string) string, markdown string) {
	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			pdf.Ln(5)
			continue
		}
		if strings.HasPrefix(s, "#") {
			level := len(s) - len(strings.TrimLeft(s, "#"))
			text := strings.TrimSpace(s[level:])
			if text == "" {
				continue
			}
			size := 14.0
			if level >= 2 {
				size = 12.0
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			continue
		}
		parts := mdLink.FindAllStringSubmatchIndex(s, -1)
		if len(parts) == 0 {
			pdf.MultiCell(0, 5, tr(s), "", "L", false)
			continue
		}
		pos := 0
		for _, m := range parts {
			if m[0] > pos {
				pdf.Write(5, tr(s[pos:m[0]]))
			}
			text, url := s[m[2]:m[3]], s[m[4]:m[5]]
			if strings.HasPrefix(url, "#") {
				pdf.Write(5, tr(text))
			} else {
				pdf.WriteLinkString(5, tr(text), url)
			}
			pos = m[1]
		}
		if pos < len(s) {
			pdf.Write(5, tr(s[pos:]))
		}
		pdf.Ln(6)
	}
}
