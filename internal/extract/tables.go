package extract

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/dataminer/internal/result"
)

// Tables parses every <table> in doc into its own row set. Nested tables are
// parsed on their own and do not contribute cells to their parent.
func Tables(doc *goquery.Document) [][]result.Row {
	var out [][]result.Row
	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		if rows := parseTable(tbl); len(rows) > 0 {
			out = append(out, rows)
		}
	})
	return out
}

// parseTable uses the first row as the header when it holds <th> cells or
// sits in <thead>. Tables without a header row get positional column names;
// short rows leave trailing columns absent.
func parseTable(tbl *goquery.Selection) []result.Row {
	var grid [][]cell
	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Closest("table").Get(0) != tbl.Get(0) {
			return
		}
		var cells []cell
		tr.Children().Each(func(_ int, c *goquery.Selection) {
			if !c.Is("td, th") {
				return
			}
			header := c.Is("th") || c.ParentsFiltered("thead").Length() > 0
			cells = append(cells, cell{text: cleanText(c.Text()), header: header, span: colspan(c)})
		})
		if len(cells) > 0 {
			grid = append(grid, cells)
		}
	})
	if len(grid) == 0 {
		return nil
	}

	headerIdx := -1
	if anyHeader(grid[0]) {
		headerIdx = 0
	}

	var header []string
	if headerIdx >= 0 {
		header = uniqueNames(expand(grid[headerIdx]))
	}
	rows := make([]result.Row, 0, len(grid))
	for i, r := range grid {
		if i <= headerIdx {
			continue
		}
		values := expand(r)
		row := make(result.Row, 0, len(values))
		for j, v := range values {
			row = append(row, result.Field{Key: columnName(header, j), Value: v})
		}
		rows = append(rows, row)
	}
	return rows
}

type cell struct {
	text   string
	header bool
	span   int
}

func colspan(s *goquery.Selection) int {
	v, ok := s.Attr("colspan")
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	if n > 1000 {
		n = 1000
	}
	return n
}

// expand repeats colspan cells so every row lines up with the header.
func expand(cells []cell) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		for i := 0; i < c.span; i++ {
			out = append(out, c.text)
		}
	}
	return out
}

func anyHeader(cells []cell) bool {
	for _, c := range cells {
		if c.header {
			return true
		}
	}
	return false
}

func columnName(header []string, i int) string {
	if i < len(header) && header[i] != "" {
		return header[i]
	}
	return strconv.Itoa(i)
}

// uniqueNames suffixes repeated header labels with .1, .2 ...
func uniqueNames(in []string) []string {
	seen := map[string]int{}
	out := make([]string, len(in))
	for i, h := range in {
		n := seen[h]
		seen[h] = n + 1
		if n > 0 && h != "" {
			out[i] = h + "." + strconv.Itoa(n)
			continue
		}
		out[i] = h
	}
	return out
}
