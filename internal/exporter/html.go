package exporter

import (
	"html/template"
	"io"
	"time"

	"sales-dashboard/internal/models"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"cell":    FormatCell,
	"number":  FormatNumber,
	"percent": FormatPercent,
	"opt":     FormatOptional,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; font-size: 11px; margin: 24px; }
h1 { font-size: 18px; }
h2 { font-size: 14px; margin-top: 24px; page-break-after: avoid; }
table { border-collapse: collapse; width: 100%; page-break-inside: auto; }
th, td { border: 1px solid #ccc; padding: 3px 6px; text-align: right; }
th:first-child, td:first-child { text-align: left; }
th { background: #dce6f1; }
.kpis td { text-align: left; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Generated {{.Generated.Format "2006-01-02 15:04"}} · {{.KPI.Records}} records</p>
<table class="kpis">
<tr><td>Total Revenue</td><td>{{number .KPI.TotalRevenue}}</td></tr>
<tr><td>Average Revenue</td><td>{{opt .KPI.AvgRevenue}}</td></tr>
<tr><td>Total Profit</td><td>{{number .KPI.TotalProfit}}</td></tr>
<tr><td>Average Margin</td><td>{{percent .KPI.AvgMargin}}</td></tr>
<tr><td>Growth MoM</td><td>{{percent .KPI.GrowthMoM}}</td></tr>
</table>
{{range .Tables}}
<h2>{{.Name}}</h2>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{cell .}}</td>{{end}}</tr>
{{else}}<tr><td colspan="{{len .Headers}}">No data</td></tr>
{{end}}</tbody>
</table>
{{end}}
</body>
</html>`))

type reportData struct {
	Title     string
	Generated time.Time
	KPI       models.KPISet
	Tables    []models.Table
}

// WriteHTML renders a printable report of kpis and tables.
func WriteHTML(w io.Writer, title string, kpis models.KPISet, tables []models.Table) error {
	return reportTemplate.Execute(w, reportData{
		Title:     title,
		Generated: time.Now(),
		KPI:       kpis,
		Tables:    tables,
	})
}
