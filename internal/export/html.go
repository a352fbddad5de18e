package export

import (
	"html/template"
	"io"

	"github.com/hyperifyio/dataminer/internal/result"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
table { border-collapse: collapse; width: 100%; margin-bottom: 20px; }
th, td { text-align: left; padding: 8px; border: 1px solid #ddd; }
th { background-color: #f2f2f2; font-weight: bold; }
tr:nth-child(even) { background-color: #f9f9f9; }
.container { max-width: 1200px; margin: 0 auto; }
h1 { color: #333; }
.footer { margin-top: 20px; color: #777; font-size: 0.8em; }
</style>
</head>
<body>
<div class="container">
<h1>{{.Title}}</h1>
<p>Generated on {{.Generated}}</p>
{{template "table" .}}
<div class="footer"><p>Created with DataMiner</p></div>
</div>
</body>
</html>
`))

var tableTemplate = template.Must(pageTemplate.New("table").Parse(`<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>`))

type htmlView struct {
	Title     string
	Generated string
	Columns   []string
	Rows      [][]string
}

func viewOf(r result.Result, opts Options) htmlView {
	t := r.AsTable()
	v := htmlView{Title: opts.Title, Generated: opts.Now().Format("2006-01-02 15:04:05"), Columns: t.Columns}
	for _, row := range t.Rows {
		v.Rows = append(v.Rows, cells(t.Columns, row))
	}
	return v
}

// HTML writes a standalone styled page holding the table. Cell text is
// escaped.
func HTML(w io.Writer, r result.Result, opts Options) error {
	return pageTemplate.ExecuteTemplate(w, "page", viewOf(r, opts.withDefaults()))
}

// htmlTable writes only the <table> element.
func htmlTable(w io.Writer, r result.Result) error {
	return tableTemplate.Execute(w, viewOf(r, Options{}.withDefaults()))
}
