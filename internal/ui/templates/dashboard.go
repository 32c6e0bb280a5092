// Package templates renders the dashboard page and the fragments patched into
// it over SSE.
package templates

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"sales-dashboard/internal/exporter"
	"sales-dashboard/internal/models"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"

var funcs = template.FuncMap{
	"number":  exporter.FormatNumber,
	"percent": exporter.FormatPercent,
	"opt":     exporter.FormatOptional,
}

var pageTemplates = template.Must(template.New("page").Funcs(funcs).Parse(`
{{define "kpis"}}<div id="kpi-cards" class="kpi-grid">
<div class="kpi-card"><span class="kpi-label">Total Revenue</span><span class="kpi-value">{{number .TotalRevenue}}</span></div>
<div class="kpi-card"><span class="kpi-label">Average Revenue</span><span class="kpi-value">{{opt .AvgRevenue}}</span></div>
<div class="kpi-card"><span class="kpi-label">Total Profit</span><span class="kpi-value">{{number .TotalProfit}}</span></div>
<div class="kpi-card"><span class="kpi-label">Average Margin</span><span class="kpi-value">{{percent .AvgMargin}}</span></div>
<div class="kpi-card"><span class="kpi-label">Growth MoM</span><span class="kpi-value">{{percent .GrowthMoM}}</span></div>
<div class="kpi-card"><span class="kpi-label">Records</span><span class="kpi-value">{{.Records}}</span></div>
</div>{{end}}

{{define "summary"}}<table class="modern-table">
<thead><tr><th>{{.Label}}</th><th>Sales</th><th>Profit</th></tr></thead>
<tbody>
{{range .Table.Rows}}<tr><td>{{.Key}}</td><td>{{number .Sales}}</td><td><strong>{{number .Profit}}</strong></td></tr>
{{else}}<tr><td colspan="3">No data for the current filters</td></tr>
{{end}}</tbody>
</table>{{end}}

{{define "products"}}<div id="products-table" class="split">
<div><h3>Top {{.N}} products by profit</h3>{{template "summary" .Top}}</div>
<div><h3>Bottom {{.N}} products by profit</h3>{{template "summary" .Bottom}}</div>
</div>{{end}}

{{define "status"}}<div id="dataset-status" class="status">{{.Records}} records{{if .Source}} from <code>{{.Source}}</code>{{end}}{{if .Dropped}} · {{.Dropped}} rows dropped{{end}}</div>{{end}}

{{define "dashboard"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<script type="module" src="` + datastarScript + `"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f7fa; color: #1f2933; }
header { padding: 16px 24px; background: #1f3a5f; color: #fff; }
main { padding: 24px; display: grid; gap: 24px; }
.filters { display: flex; flex-wrap: wrap; gap: 16px; align-items: end; }
.filters label { display: flex; flex-direction: column; font-size: 12px; gap: 4px; }
.kpi-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 12px; }
.kpi-card { background: #fff; border-radius: 8px; padding: 12px; display: flex; flex-direction: column; }
.kpi-label { font-size: 12px; color: #52606d; }
.kpi-value { font-size: 20px; font-weight: 600; }
.split { display: grid; grid-template-columns: 1fr 1fr; gap: 16px; }
.modern-table { width: 100%; border-collapse: collapse; background: #fff; }
.modern-table th, .modern-table td { padding: 6px 10px; border-bottom: 1px solid #e4e7eb; text-align: right; }
.modern-table th:first-child, .modern-table td:first-child { text-align: left; }
.charts { display: grid; grid-template-columns: repeat(auto-fit, minmax(420px, 1fr)); gap: 16px; }
.chart { background: #fff; border-radius: 8px; padding: 12px; min-height: 280px; }
</style>
</head>
<body data-signals="{from: '{{.From}}', to: '{{.To}}', regions: [], customerTypes: [], topN: {{.TopN}}, _monthlyData: [], _quarterlyData: [], _regionsData: [], _customerTypesData: [], _topProducts: [], _bottomProducts: [], _heatmapData: {}, _histogramData: [], _trendData: {}}">
<header><h1>{{.Title}}</h1>{{template "status" .Status}}</header>
<main>
<form class="filters" data-on-change="@get('/sse/refresh')">
<label>From<input type="date" data-bind-from min="{{.From}}" max="{{.To}}"></label>
<label>To<input type="date" data-bind-to min="{{.From}}" max="{{.To}}"></label>
<label>Region<select multiple data-bind-regions>{{range .Options.Regions}}<option value="{{.}}">{{.}}</option>{{end}}</select></label>
<label>Customer type<select multiple data-bind-customer-types>{{range .Options.CustomerTypes}}<option value="{{.}}">{{.}}</option>{{end}}</select></label>
<label>Top N<input type="number" min="1" max="1000" data-bind-top-n></label>
<a href="/api/export/workbook" data-attr-href="'/api/export/workbook?' + new URLSearchParams([['from', $from], ['to', $to], ...$regions.map(v => ['region', v]), ...$customerTypes.map(v => ['customer_type', v])])">Download workbook</a>
<a href="/api/export/pdf" data-attr-href="'/api/export/pdf?' + new URLSearchParams([['from', $from], ['to', $to], ...$regions.map(v => ['region', v]), ...$customerTypes.map(v => ['customer_type', v])])">Download PDF</a>
</form>
<section data-on-load="@get('/sse/refresh')">{{template "kpis" .KPI}}</section>
<section class="charts" data-effect="window.renderCharts && window.renderCharts({monthly: $_monthlyData, quarterly: $_quarterlyData, regions: $_regionsData, customerTypes: $_customerTypesData, heatmap: $_heatmapData, histogram: $_histogramData, trend: $_trendData})">
<div class="chart" id="chart-monthly"></div>
<div class="chart" id="chart-quarterly"></div>
<div class="chart" id="chart-regions"></div>
<div class="chart" id="chart-customer-types"></div>
<div class="chart" id="chart-heatmap"></div>
<div class="chart" id="chart-histogram"></div>
<div class="chart" id="chart-trend"></div>
</section>
<section><div id="products-table"></div></section>
</main>
<script>
function bars(id, title, labels, values) {
  const el = document.getElementById(id);
  if (!el) return;
  const max = Math.max(1, ...values.map(Math.abs));
  const w = 100 / Math.max(1, values.length);
  const rects = values.map((v, i) =>
    '<rect x="' + (i * w) + '%" y="' + (100 - Math.abs(v) / max * 100) + '%" width="' + (w * 0.8) + '%" height="' + (Math.abs(v) / max * 100) + '%" fill="' + (v < 0 ? '#c0392b' : '#3e7cb1') + '"><title>' + labels[i] + ': ' + v.toFixed(2) + '</title></rect>').join('');
  el.innerHTML = '<h3>' + title + '</h3><svg width="100%" height="220" preserveAspectRatio="none">' + rects + '</svg>';
}
window.renderCharts = function (d) {
  const rows = (t) => (t && t.rows) || [];
  bars('chart-monthly', 'Monthly sales', rows(d.monthly).map(r => r.key), rows(d.monthly).map(r => r.sales_amount));
  bars('chart-quarterly', 'Quarterly sales', rows(d.quarterly).map(r => r.key), rows(d.quarterly).map(r => r.sales_amount));
  bars('chart-regions', 'Sales by region', rows(d.regions).map(r => r.key), rows(d.regions).map(r => r.sales_amount));
  bars('chart-customer-types', 'Sales by customer type', rows(d.customerTypes).map(r => r.key), rows(d.customerTypes).map(r => r.sales_amount));
  const hm = (d.heatmap && d.heatmap.rows) || [];
  bars('chart-heatmap', 'Profit by product', hm.map(r => r.key), hm.map(r => r.values.reduce((a, b) => a + b, 0)));
  const bins = (d.histogram && d.histogram.bins) || [];
  bars('chart-histogram', 'Margin distribution', bins.map(b => b.lower.toFixed(2)), bins.map(b => b.count));
  const tr = d.trend || {};
  bars('chart-trend', 'Revenue trend', (tr.months || []), (tr.fitted || tr.actual || []));
};
</script>
</body>
</html>{{end}}
`))

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return pageTemplates.ExecuteTemplate(w, name, data)
	})
}

// Status summarises where the current dataset came from.
type Status struct {
	Records int
	Source  string
	Dropped int
}

// Page is everything the dashboard needs for its first paint.
type Page struct {
	Title   string
	Options models.FilterOptions
	KPI     models.KPISet
	Status  Status
	TopN    int
}

type pageData struct {
	Page
	From string
	To   string
}

func Dashboard(p Page) templ.Component {
	data := pageData{Page: p}
	if !p.Options.DateMin.IsZero() {
		data.From = p.Options.DateMin.Format("2006-01-02")
		data.To = p.Options.DateMax.Format("2006-01-02")
	}
	return render("dashboard", data)
}

func KPICards(kpis models.KPISet) templ.Component {
	return render("kpis", kpis)
}

type summaryData struct {
	Label string
	Table models.SummaryTable
}

type productsData struct {
	N      int
	Top    summaryData
	Bottom summaryData
}

// ProductsTable renders the top and bottom products side by side.
func ProductsTable(n int, top, bottom models.SummaryTable) templ.Component {
	return render("products", productsData{
		N:      n,
		Top:    summaryData{Label: "Product", Table: top},
		Bottom: summaryData{Label: "Product", Table: bottom},
	})
}

func DatasetStatus(s Status) templ.Component {
	return render("status", s)
}
