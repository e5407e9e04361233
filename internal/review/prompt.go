package review

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/nikolliervin/code-unc/internal/diff"
	"github.com/nikolliervin/code-unc/internal/model"
)

// MaxContextBytes bounds the diff payload sent to a provider. Files past
// the budget are summarized rather than included.
const MaxContextBytes = 60000

// schemaBlock describes the JSON shape the normalizer's strict stage
// expects. It is advisory to the provider, not enforced.
const schemaBlock = `Respond with valid JSON only, in exactly this shape:

{
  "summary": "Brief overview of code quality and main findings",
  "issues": [
    {
      "id": "unique_issue_id",
      "title": "Brief issue title",
      "description": "Detailed explanation",
      "severity": "critical|high|medium|low|info",
      "category": "security|performance|maintainability|readability|style|bugs|design|testing|documentation|complexity",
      "location": {
        "file_path": "path/to/file",
        "line_start": 42,
        "line_end": 45
      },
      "code_snippet": "problematic code",
      "suggested_fix": "corrected code",
      "confidence": 0.95
    }
  ],
  "recommendations": ["General recommendation 1"],
  "metrics": {
    "files_reviewed": 1,
    "critical_issues": 0,
    "high_issues": 1,
    "medium_issues": 2,
    "low_issues": 1,
    "info_issues": 1
  }
}`

var focusTemplates = map[model.Focus]string{
	model.FocusGeneral: `You are an expert code reviewer. Analyze the provided changes for
correctness, clarity, and maintainability. Report genuine problems with
actionable fixes; do not pad the review with trivia.`,

	model.FocusSecurity: `You are a security-focused code reviewer. Analyze the provided changes
for vulnerabilities: injection, broken authentication or authorization,
secrets in code, unsafe deserialization, path traversal, SSRF, and the
rest of the OWASP Top 10. Flag any credential or API key committed in
the diff as critical.`,

	model.FocusPerformance: `You are a performance-focused code reviewer. Analyze the provided
changes for algorithmic complexity regressions, N+1 queries, unbounded
allocations, missing caching opportunities, and blocking calls on hot
paths.`,

	model.FocusStyle: `You are a code reviewer focused on style and readability. Analyze the
provided changes for naming, structure, dead code, and consistency with
the surrounding codebase. Keep severities low unless readability is
seriously harmed.`,

	model.FocusBugs: `You are a code reviewer hunting for defects. Analyze the provided
changes for logic errors, off-by-one mistakes, nil/null dereferences,
unhandled errors, race conditions, and broken edge cases.`,

	model.FocusMaintainability: `You are a code reviewer focused on long-term maintainability. Analyze
the provided changes for duplication, tight coupling, missing
abstractions, and code that will be hard to change safely.`,

	model.FocusTesting: `You are a code reviewer focused on test quality. Analyze the provided
changes for missing test coverage, brittle assertions, untested error
paths, and tests that do not exercise the behavior they claim to.`,
}

const contextTemplate = `{{ .System }}

{{ .Schema }}

=== CHANGE SUMMARY ===
Source: {{ .Source }}
Target: {{ .Target }}
Files changed: {{ .FileCount }}
Lines added: {{ .Added }}
Lines deleted: {{ .Deleted }}

=== FILE CHANGES ===
{{ .Context }}`

var promptTmpl = template.Must(template.New("prompt").Parse(contextTemplate))

// SystemPrompt returns the focus-area instruction block.
func SystemPrompt(focus model.Focus) string {
	if t, ok := focusTemplates[focus]; ok {
		return t
	}
	return focusTemplates[model.FocusGeneral]
}

// BuildPrompt renders the full user prompt for a review: focus
// instructions, expected schema, and the diff context under a byte
// budget.
func BuildPrompt(req model.Request, ds *diff.DiffSet) (string, error) {
	files, added, deleted := ds.Stats()

	var b strings.Builder
	if err := promptTmpl.Execute(&b, map[string]any{
		"System":    SystemPrompt(req.Focus),
		"Schema":    schemaBlock,
		"Source":    req.Source,
		"Target":    req.Target,
		"FileCount": files,
		"Added":     added,
		"Deleted":   deleted,
		"Context":   DiffContext(ds, MaxContextBytes),
	}); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return b.String(), nil
}

// DiffContext formats the diff for the model, truncating once the byte
// budget is exhausted.
func DiffContext(ds *diff.DiffSet, budget int) string {
	var b strings.Builder
	for i, f := range ds.Files {
		var fb strings.Builder
		fmt.Fprintf(&fb, "\n--- %s ---", f.Path())
		switch {
		case f.IsNew:
			fb.WriteString(" (added)")
		case f.IsDeleted:
			fb.WriteString(" (deleted)")
		case f.IsRenamed:
			fb.WriteString(" (renamed)")
		}
		fmt.Fprintf(&fb, "\nStats: +%d -%d\n", f.AddedLines, f.DeletedLines)

		for _, frag := range f.Fragments {
			fmt.Fprintf(&fb, "@@ -%d,%d +%d,%d @@\n",
				frag.OldPosition, frag.OldLines, frag.NewPosition, frag.NewLines)
			for _, line := range frag.Lines {
				fb.WriteString(line.Op.String())
				fb.WriteString(line.Line)
				if !strings.HasSuffix(line.Line, "\n") {
					fb.WriteByte('\n')
				}
			}
		}

		if b.Len()+fb.Len() > budget {
			fmt.Fprintf(&b, "\n... (%d remaining files truncated due to size)\n", len(ds.Files)-i)
			break
		}
		b.WriteString(fb.String())
	}
	return b.String()
}
