package output

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/nikolliervin/code-unc/internal/model"
)

var severityColor = map[model.Severity]string{
	model.SeverityCritical: "#dc2626",
	model.SeverityHigh:     "#ea580c",
	model.SeverityMedium:   "#ca8a04",
	model.SeverityLow:      "#2563eb",
	model.SeverityInfo:     "#6b7280",
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Code Review {{ .ID }}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 900px; margin: 2rem auto; padding: 0 1rem; color: #1f2937; }
h1 { border-bottom: 2px solid #e5e7eb; padding-bottom: .5rem; }
.meta { color: #6b7280; font-size: .9rem; }
.metrics { display: flex; gap: 1rem; flex-wrap: wrap; margin: 1rem 0; }
.metric { background: #f9fafb; border: 1px solid #e5e7eb; border-radius: 6px; padding: .6rem 1rem; }
.metric .value { font-size: 1.4rem; font-weight: 700; }
.issue { border: 1px solid #e5e7eb; border-left: 4px solid var(--sev); border-radius: 6px; padding: .8rem 1rem; margin: .8rem 0; }
.issue h3 { margin: 0 0 .3rem; }
.sev { display: inline-block; color: #fff; background: var(--sev); border-radius: 4px; padding: .1rem .5rem; font-size: .75rem; text-transform: uppercase; }
.loc { font-family: monospace; color: #374151; }
pre { background: #f3f4f6; border-radius: 6px; padding: .6rem; overflow-x: auto; }
.recs li { margin: .3rem 0; }
</style>
</head>
<body>
<h1>Code Review Report</h1>
<p class="meta">
{{ .CreatedAt }} · {{ .Provider }} ({{ .Model }}) · <code>{{ .Source }}</code> → <code>{{ .Target }}</code> · focus: {{ .Focus }}
</p>
{{ if .Summary }}<h2>Summary</h2><p>{{ .Summary }}</p>{{ end }}
<div class="metrics">
<div class="metric"><div class="value">{{ .Score }}</div>quality score</div>
<div class="metric"><div class="value">{{ .Files }}</div>files</div>
<div class="metric"><div class="value">{{ .Total }}</div>issues</div>
<div class="metric"><div class="value">{{ .Blocking }}</div>blocking</div>
</div>
<h2>Issues</h2>
{{ if not .Issues }}<p>No issues found.</p>{{ end }}
{{ range .Issues }}
<div class="issue" style="--sev: {{ .Color }}">
<h3>{{ .Title }}</h3>
<p><span class="sev">{{ .Severity }}</span> · {{ .Category }} · <span class="loc">{{ .Location }}</span>{{ if .Inferred }} <em>(inferred)</em>{{ end }}</p>
{{ if .Description }}<p>{{ .Description }}</p>{{ end }}
{{ if .Snippet }}<pre>{{ .Snippet }}</pre>{{ end }}
{{ if .Fix }}<p><strong>Suggested fix:</strong></p><pre>{{ .Fix }}</pre>{{ end }}
</div>
{{ end }}
{{ if .Recommendations }}
<h2>Recommendations</h2>
<ul class="recs">{{ range .Recommendations }}<li>{{ . }}</li>{{ end }}</ul>
{{ end }}
</body>
</html>
`

var htmlTmpl = template.Must(template.New("report").Parse(htmlPage))

type htmlIssue struct {
	Title       string
	Description string
	Severity    string
	Category    string
	Location    string
	Inferred    bool
	Snippet     string
	Fix         string
	Color       template.CSS
}

// RenderHTML writes a standalone styled HTML report. All model-supplied
// text passes through html/template escaping.
func RenderHTML(w io.Writer, res *model.ReviewResult) error {
	issues := make([]htmlIssue, 0, len(res.Issues))
	for _, is := range sortIssues(res.Issues) {
		issues = append(issues, htmlIssue{
			Title:       is.Title,
			Description: is.Description,
			Severity:    string(is.Severity),
			Category:    string(is.Category),
			Location:    is.FormatLocation(),
			Inferred:    is.Location.Inferred,
			Snippet:     strings.TrimRight(is.CodeSnippet, "\n"),
			Fix:         strings.TrimRight(is.SuggestedFix, "\n"),
			Color:       template.CSS(severityColor[is.Severity]),
		})
	}

	return htmlTmpl.Execute(w, map[string]any{
		"ID":              res.ID,
		"CreatedAt":       res.CreatedAt.Format("2006-01-02 15:04 MST"),
		"Provider":        res.Provider,
		"Model":           res.Model,
		"Source":          res.Request.Source,
		"Target":          res.Request.Target,
		"Focus":           string(res.Request.Focus),
		"Summary":         res.Summary,
		"Score":           fmt.Sprintf("%.1f", res.Metrics.Score()),
		"Files":           res.Metrics.FilesReviewed,
		"Total":           res.Metrics.TotalIssues(),
		"Blocking":        res.Metrics.BlockingIssues(),
		"Issues":          issues,
		"Recommendations": res.Recommendations,
	})
}
