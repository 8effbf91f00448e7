package reporting

import (
	"fmt"
	"html/template"
	"os"
	"sort"
	"time"

	"github.com/rhyru9/osgit/core"
)

// SubdomainRow is one subdomain of the report with the files it was seen in
type SubdomainRow struct {
	Name    string
	Sources []string
}

// HTMLReport renders a discovery run as a standalone HTML page
type HTMLReport struct {
	Title     string
	Target    string
	Extended  bool
	StartTime time.Time
	EndTime   time.Time
	Findings  []core.Finding
	Stats     ScanStats

	Rows []SubdomainRow
}

// Group folds findings into one sorted row per subdomain, sources deduplicated
func (r *HTMLReport) Group() {
	sources := make(map[string][]string)
	for _, f := range r.Findings {
		if _, ok := sources[f.Subdomain]; !ok {
			sources[f.Subdomain] = nil
		}
		if f.Source != "" {
			sources[f.Subdomain] = append(sources[f.Subdomain], f.Source)
		}
	}

	r.Rows = make([]SubdomainRow, 0, len(sources))
	for name, src := range sources {
		r.Rows = append(r.Rows, SubdomainRow{Name: name, Sources: core.SortedUnique(src)})
	}
	sort.Slice(r.Rows, func(i, j int) bool { return r.Rows[i].Name < r.Rows[j].Name })
}

// Generate writes the report to outputPath
func (r *HTMLReport) Generate(outputPath string) error {
	if r.Title == "" {
		r.Title = "osgit discovery report"
	}
	r.Group()

	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, r); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
body{background:#0d1117;color:#c9d1d9;font-family:system-ui,sans-serif;padding:20px}
.header{background:#161b22;padding:24px;border-radius:10px;margin-bottom:20px;border:1px solid #30363d}
.header h1{color:#3fb950;font-size:26px;margin-bottom:6px}
.header p{color:#8b949e;font-size:14px}
.stats{display:grid;grid-template-columns:repeat(auto-fit,minmax(160px,1fr));gap:14px;margin-bottom:20px}
.card{background:#161b22;border:1px solid #30363d;border-radius:8px;padding:16px;text-align:center}
.card .value{font-size:28px;font-weight:700;color:#3fb950}
.card .label{font-size:12px;color:#8b949e;margin-top:4px}
.section{background:#161b22;border:1px solid #30363d;border-radius:8px;padding:20px}
.section h2{color:#3fb950;margin-bottom:14px;font-size:19px}
table{width:100%;border-collapse:collapse}
th{text-align:left;padding:9px;border-bottom:2px solid #30363d;color:#8b949e;font-size:12px;text-transform:uppercase}
td{padding:9px;border-bottom:1px solid #21262d;font-size:14px;vertical-align:top}
td a{color:#58a6ff;word-break:break-all;display:block}
.footer{text-align:center;color:#484f58;font-size:12px;margin-top:20px}
</style>
</head>
<body>
<div class="header">
<h1>{{.Title}}</h1>
<p>Target: {{.Target}}{{if .Extended}} (extended){{end}} | Duration: {{.EndTime.Sub .StartTime}} | Generated: {{.EndTime.Format "2006-01-02 15:04:05 UTC"}}</p>
</div>
<div class="stats">
<div class="card"><div class="value">{{len .Rows}}</div><div class="label">Subdomains</div></div>
<div class="card"><div class="value">{{.Stats.Pages}}</div><div class="label">Search Pages</div></div>
<div class="card"><div class="value">{{.Stats.Hits}}</div><div class="label">Code Hits</div></div>
<div class="card"><div class="value">{{.Stats.FilesFetched}}</div><div class="label">Files Fetched</div></div>
<div class="card"><div class="value">{{.Stats.FetchErrors}}</div><div class="label">Fetch Errors</div></div>
<div class="card"><div class="value">{{.Stats.RateLimitWaits}}</div><div class="label">Rate Limit Waits</div></div>
</div>
<div class="section">
<h2>Subdomains</h2>
<table>
<thead><tr><th>Subdomain</th><th>Found in</th></tr></thead>
<tbody>
{{range .Rows}}
<tr>
<td>{{.Name}}</td>
<td>{{range .Sources}}<a href="{{.}}">{{.}}</a>{{else}}-{{end}}</td>
</tr>
{{end}}
</tbody>
</table>
</div>
<div class="footer">Generated by osgit</div>
</body>
</html>`
