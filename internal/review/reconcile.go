package review

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nikolliervin/code-unc/internal/diff"
	"github.com/nikolliervin/code-unc/internal/model"
)

// InferencePolicy holds the line-guessing constants. The offsets are a
// tunable policy, not a guarantee of correctness; they are exported so
// tests and callers can pin them.
type InferencePolicy struct {
	SecretBaseLine int
	SecretSpacing  int

	SyntaxBaseLine int
	SyntaxSpacing  int

	UnusedBaseLine int
	UnusedSpacing  int

	DefaultBaseLine int
	DefaultSpacing  int

	// Snippet-search hits outside [MinSnippetLine, MaxSnippetLine] are
	// treated as noise and discarded.
	MinSnippetLine int
	MaxSnippetLine int

	// InferredConfidence caps the confidence of issues whose location
	// had to be guessed, so consumers can tell them apart.
	InferredConfidence float64
}

// DefaultInferencePolicy returns the stock offsets.
func DefaultInferencePolicy() InferencePolicy {
	return InferencePolicy{
		SecretBaseLine:     15,
		SecretSpacing:      1,
		SyntaxBaseLine:     10,
		SyntaxSpacing:      3,
		UnusedBaseLine:     8,
		UnusedSpacing:      2,
		DefaultBaseLine:    5,
		DefaultSpacing:     4,
		MinSnippetLine:     2,
		MaxSnippetLine:     200,
		InferredConfidence: 0.4,
	}
}

// Source file extensions recognized when scanning issue text for
// filename mentions.
var fileMentionRe = regexp.MustCompile(`[\w./-]+\.(?:go|py|js|jsx|ts|tsx|java|rb|rs|c|cc|cpp|h|hpp|cs|php|swift|kt|kts|scala|sh|bash|sql|yaml|yml|toml|json|html|css|scss|md|vue|svelte)\b`)

var lineMentionRe = regexp.MustCompile(`(?i)\bline\s+(\d+)`)

var (
	secretWordsRe = regexp.MustCompile(`(?i)password|secret|credential|api.?key|token|private.?key`)
	syntaxWordsRe = regexp.MustCompile(`(?i)syntax|parse error|parsing|malformed|invalid syntax`)
	unusedWordsRe = regexp.MustCompile(`(?i)\bunused\b|never used|dead code|unreferenced`)
)

// Reconciler assigns a plausible file and line to issues whose location
// the provider omitted or got wrong. It reads only the diff's file list
// and the issue's own text; it performs no I/O.
type Reconciler struct {
	ds     *diff.DiffSet
	policy InferencePolicy
}

// NewReconciler builds a reconciler over the given diff.
func NewReconciler(ds *diff.DiffSet, policy InferencePolicy) *Reconciler {
	return &Reconciler{ds: ds, policy: policy}
}

// Reconcile fixes up locations in place. Issues that already carry a
// valid in-diff location are left untouched, which makes the operation
// idempotent. The ordinal used for line spacing counts only the issues
// that needed inference, so output is deterministic for a given input.
func (r *Reconciler) Reconcile(issues []model.Issue) {
	if len(r.ds.Files) == 0 {
		return
	}
	ordinal := 0
	for i := range issues {
		is := &issues[i]
		if is.Location.Valid() && r.ds.HasPath(is.Location.FilePath) {
			continue
		}
		r.infer(is, ordinal)
		ordinal++
	}
}

func (r *Reconciler) infer(is *model.Issue, ordinal int) {
	if !r.ds.HasPath(is.Location.FilePath) {
		is.Location.FilePath = r.inferFile(is)
		// A guessed file invalidates any line that came with the old path.
		is.Location.LineEnd = 0
		is.Location.ColumnStart = 0
		is.Location.ColumnEnd = 0
		if is.Location.LineStart < 1 {
			is.Location.LineStart = 0
		}
	}
	if is.Location.LineStart < 1 {
		is.Location.LineStart = r.inferLine(is, ordinal)
		is.Location.LineEnd = 0
	}
	is.Location.Inferred = true
	if is.Confidence > r.policy.InferredConfidence {
		is.Confidence = r.policy.InferredConfidence
	}
}

// inferFile picks a diff file for the issue: filename mention first,
// then basename containment, then the first file in diff order. Ties at
// any tier resolve to the first match in diff order.
func (r *Reconciler) inferFile(is *model.Issue) string {
	text := is.Title + "\n" + is.Description + "\n" + is.CodeSnippet

	for _, mention := range fileMentionRe.FindAllString(text, -1) {
		base := mention[strings.LastIndexByte(mention, '/')+1:]
		var match string
		count := 0
		for _, f := range r.ds.Files {
			if f.Basename() == base {
				count++
				if match == "" {
					match = f.Path()
				}
			}
		}
		if count == 1 {
			return match
		}
	}

	lower := strings.ToLower(text)
	for _, f := range r.ds.Files {
		stem := f.Basename()
		if dot := strings.LastIndexByte(stem, '.'); dot > 0 {
			stem = stem[:dot]
		}
		if len(stem) >= 2 && strings.Contains(lower, strings.ToLower(stem)) {
			return f.Path()
		}
	}

	return r.ds.Files[0].Path()
}

// inferLine guesses a line number: an explicit "line N" mention wins,
// then the category/title offset formula, then a snippet search over the
// raw diff bounded to a sane window.
func (r *Reconciler) inferLine(is *model.Issue, ordinal int) int {
	if m := lineMentionRe.FindStringSubmatch(is.Description); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
			return n
		}
	}
	if m := lineMentionRe.FindStringSubmatch(is.Title); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
			return n
		}
	}

	keyed := is.Title + " " + string(is.Category)
	switch {
	case secretWordsRe.MatchString(keyed):
		return r.policy.SecretBaseLine + ordinal*r.policy.SecretSpacing
	case syntaxWordsRe.MatchString(keyed):
		return r.policy.SyntaxBaseLine + ordinal*r.policy.SyntaxSpacing
	case unusedWordsRe.MatchString(keyed):
		return r.policy.UnusedBaseLine + ordinal*r.policy.UnusedSpacing
	}

	if line, ok := r.snippetLine(is.Title); ok {
		return line
	}
	return r.policy.DefaultBaseLine + ordinal*r.policy.DefaultSpacing
}

// snippetLine searches the concatenated diff text for a term derived
// from the title and converts the byte offset into a 1-based line
// number. Hits outside the policy window are rejected.
func (r *Reconciler) snippetLine(title string) (int, bool) {
	term := searchTerm(title)
	if term == "" {
		return 0, false
	}
	idx := strings.Index(r.ds.Raw, term)
	if idx < 0 {
		return 0, false
	}
	line := 1 + strings.Count(r.ds.Raw[:idx], "\n")
	if line < r.policy.MinSnippetLine || line > r.policy.MaxSnippetLine {
		return 0, false
	}
	return line, true
}

// searchTerm derives a literal search string from an issue title: a
// quoted fragment if one exists, otherwise the longest word of at least
// four characters.
func searchTerm(title string) string {
	for _, q := range []byte{'\'', '"', '`'} {
		start := strings.IndexByte(title, q)
		if start < 0 {
			continue
		}
		end := strings.IndexByte(title[start+1:], q)
		if end > 0 {
			return title[start+1 : start+1+end]
		}
	}
	longest := ""
	for _, w := range strings.Fields(title) {
		w = strings.Trim(w, ".,:;()[]{}")
		if len(w) > len(longest) {
			longest = w
		}
	}
	if len(longest) < 4 {
		return ""
	}
	return longest
}
