package main

import (
	"fmt"
	"html/template"

	"github.com/pivolan/stay_dashboard/domain/models"
	"github.com/pivolan/stay_dashboard/pipeline"
)

var templateFuncs = template.FuncMap{
	"mean":      FormatMean,
	"thousands": FormatCount,
	"percent": func(m models.Metrics) string {
		return fmt.Sprintf("%.1f%%", m.Percent)
	},
	"stay": pipeline.FormatStay,
	"contains": func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	},
	"hasColumn": func(cols []pipeline.Column, c pipeline.Column) bool {
		for _, v := range cols {
			if v == c {
				return true
			}
		}
		return false
	},
	"longStayThreshold": func() string { return pipeline.FormatStay(pipeline.LongStayThreshold) },
}

const dashboardTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 0; display: flex; }
aside { width: 280px; padding: 16px; background: #f4f6f8; min-height: 100vh; }
main { flex: 1; padding: 16px; }
h1 { color: {{.ThemeColor}}; }
.metrics { display: flex; gap: 24px; }
.metric { border-left: 4px solid {{.ThemeColor}}; padding: 4px 12px; }
.metric b { display: block; font-size: 1.6em; }
.banner { padding: 12px; margin-bottom: 12px; border-radius: 4px; }
.error { background: #fdecea; color: #611a15; }
.notice { background: #fff4e5; color: #663c00; }
iframe { border: 0; width: 100%; height: 560px; }
table { border-collapse: collapse; font-size: 0.9em; }
td, th { border: 1px solid #ddd; padding: 2px 6px; }
</style>
</head>
<body>
<aside>
<h3>Filters</h3>
<form method="get" action="/">
<input type="hidden" name="f" value="1">
{{- with .State}}
<label>Length of Stay ({{stay .MinBound}} to {{stay .MaxBound}})</label><br>
<input type="number" step="any" name="min" value="{{stay .Criteria.MinStay}}">
<input type="number" step="any" name="max" value="{{stay .Criteria.MaxStay}}"><br><br>
<label>Age Group</label><br>
<select name="age" multiple size="6">
{{- range .AllAgeGroups}}
<option value="{{.}}"{{if contains $.State.Criteria.AgeGroups .}} selected{{end}}>{{.}}</option>
{{- end}}
</select><br><br>
<label>Columns to Export</label><br>
<select name="col" multiple size="8">
{{- range .AvailableColumns}}
<option value="{{.}}"{{if hasColumn $.State.Columns .}} selected{{end}}>{{.Header}}</option>
{{- end}}
</select><br><br>
{{end}}
<button type="submit">Apply</button>
</form>
<form method="post" action="/refresh"><button type="submit">Reload data</button></form>
<form method="post" action="/upload" enctype="multipart/form-data">
<input type="file" name="file"><button type="submit">Upload</button>
</form>
<p><small>Source: {{.Source}}
{{- with .State}}<br>Loaded {{.Dataset.LoadedAt.Format "2006-01-02 15:04:05"}}, {{thousands .Dataset.Len}} records{{end}}</small></p>
</aside>
<main>
<h1>{{.Title}}</h1>
{{if .Error}}<div class="banner error">{{.Error}}</div>{{end}}
{{if not .Error}}{{with .State}}
{{if .Notice}}<div class="banner notice">{{.Notice}}</div>{{end}}
<div class="metrics">
<div class="metric">Avg Stay<b>{{mean .Metrics}}</b></div>
<div class="metric">Long Stays (&gt;{{longStayThreshold}}d)<b>{{thousands .Metrics.LongStays}}</b></div>
<div class="metric">Total Records<b>{{thousands .Metrics.Total}}</b></div>
<div class="metric">% of Total Data<b>{{percent .Metrics}}</b></div>
</div>
{{if not .Notice}}
<h2>Stay Distribution</h2>
<iframe src="/charts/stay?{{$.Query}}"></iframe>
<h2>Stay by Admission Type</h2>
<iframe src="/charts/admission?{{$.Query}}"></iframe>
{{end}}
<h2>Filtered Records</h2>
<p><a href="/export.csv?{{$.Query}}">Download CSV</a> | <a href="/export.xlsx?{{$.Query}}">Download XLSX</a></p>
<table>
<tr>{{range $.Headers}}<th>{{.}}</th>{{end}}</tr>
{{- range $.Preview}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</table>
{{end}}{{end}}
</main>
</body>
</html>
`
