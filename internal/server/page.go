package server

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"html/template"
	"strings"

	"cpuchart/internal/chart"
	"cpuchart/internal/report"

	"github.com/go-echarts/go-echarts/v2/render"
)

const pageTitle = "CSV Data Visualizer"

// selectProcessFuncs make clicks on a bar or a legend entry select that process
var selectProcessFuncs = []string{
	render.EchartsInstancePlaceholder + `.on('click', function (params) { console.log('Chart clicked:', params); post('/select/process', { name: params.seriesName }); });`,
	render.EchartsInstancePlaceholder + `.on('legendselectchanged', function (params) { console.log('Clicked bar:', params); post('/select/process', { name: params.name }); });`,
}

var resizeFunc = `window.addEventListener('resize', function () { ` + render.EchartsInstancePlaceholder + `.resize(); });`

type pageData struct {
	Title       string
	Uploads     int
	HasData     bool
	Columns     []string
	Set         chart.Set
	Overall     template.HTML
	ProcessPies []template.HTML
	InstanceBar template.HTML
	InstancePie template.HTML
	MaxUploadMB int64
	Where       string
}

// renderCharts fills the page's chart markup from its chart set
func (p *pageData) renderCharts() error {
	snippet := func(d *chart.Descriptor) (template.HTML, error) {
		if d == nil {
			return "", nil
		}
		jsFuncs := []string{resizeFunc}
		if d.Click == chart.ClickSelectProcess {
			jsFuncs = append(jsFuncs, selectProcessFuncs...)
		}
		s, err := report.ChartSnippet(*d, jsFuncs...)
		if err != nil {
			return "", err
		}
		return template.HTML(s.Element + escapeScriptBody(s.Script)), nil // #nosec G203
	}
	var err error
	if p.Overall, err = snippet(p.Set.Overall); err != nil {
		return err
	}
	for i := range p.Set.ProcessPies {
		pie, err := snippet(&p.Set.ProcessPies[i])
		if err != nil {
			return err
		}
		p.ProcessPies = append(p.ProcessPies, pie)
	}
	if p.InstanceBar, err = snippet(p.Set.InstanceBar); err != nil {
		return err
	}
	p.InstancePie, err = snippet(p.Set.InstancePie)
	return err
}

// escapeScriptBody keeps names from the data, which go-echarts writes without HTML escaping,
// from closing the script element early
func escapeScriptBody(script string) string {
	end := strings.LastIndex(script, "</script>")
	if end < 0 {
		return script
	}
	return strings.ReplaceAll(script[:end], "</", `<\/`) + script[end:]
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js"></script>
<script>
function post(url, fields) {
    fetch(url, { method: 'POST', body: new URLSearchParams(fields) }).then(r => {
        if (r.ok) { location.reload(); } else { r.text().then(t => console.error(url, r.status, t)); }
    });
}
</script>
<style>
body { font-family: sans-serif; margin: 2.5rem 5rem; color: #222; }
h1 { text-align: center; }
.card { border: 1px solid #ddd; border-radius: 8px; padding: 1.5rem; }
.pies { display: flex; flex-wrap: wrap; }
.pies .container { width: 50%; }
.instances { margin: 1rem 0; }
.instances label { margin-right: 1rem; }
.note { color: #666; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="card">
  <form action="/upload" method="post" enctype="multipart/form-data">
    <input type="file" name="file" accept=".csv" onchange="this.form.submit()">
    <noscript><button type="submit">Upload CSV</button></noscript>
    <span class="note">up to {{.MaxUploadMB}} MB{{if .Where}}, rows filtered by <code>{{.Where}}</code>{{end}}</span>
  </form>
  {{- if not .HasData}}
  <p class="note">{{if .Uploads}}No data found.{{else}}Upload a CSV file to see the charts.{{end}}</p>
  {{- else}}
  {{.Overall}}
  {{- if .ProcessPies}}
  <div class="pies">
    {{- range .ProcessPies}}
    {{.}}
    {{- end}}
  </div>
  {{- end}}
  <div class="instances">
    {{- range .Set.Instances}}
    <label><input type="radio" name="instance" value="{{.}}"{{if $.Set.Selection.IsInstance .}} checked{{end}} onchange="post('/select/instance', {id: this.value})">{{.}}</label>
    {{- end}}
  </div>
  {{.InstanceBar}}
  {{.InstancePie}}
  {{- end}}
</div>
</body>
</html>
`
