// Package diff handles parsing git diffs into structured representations.
package diff

import (
	"fmt"
	"os"
	"os/exec"
	"path"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// LineRange is an inclusive range of line numbers in the new file.
type LineRange struct {
	Start int
	End   int
}

// File represents a single file in a diff with its parsed fragments.
type File struct {
	OldPath   string
	NewPath   string
	IsNew     bool
	IsDeleted bool
	IsRenamed bool
	IsBinary  bool

	Fragments     []*gitdiff.TextFragment
	ChangedRanges []LineRange // new-file coordinates, in order
	AddedLines    int
	DeletedLines  int
}

// Path returns the file's review path: the new path, or the old path for
// deletions.
func (f *File) Path() string {
	if f.NewPath != "" {
		return f.NewPath
	}
	return f.OldPath
}

// Basename returns the last path element of the review path.
func (f *File) Basename() string {
	return path.Base(f.Path())
}

// Name returns the display name for the file.
func (f *File) Name() string {
	if f.IsRenamed {
		return fmt.Sprintf("%s -> %s", f.OldPath, f.NewPath)
	}
	return f.Path()
}

// DiffSet holds the parsed diff for all files.
type DiffSet struct {
	Files []*File
	Raw   string // the raw unified diff text
}

// Stats returns aggregate statistics.
func (ds *DiffSet) Stats() (files, added, deleted int) {
	files = len(ds.Files)
	for _, f := range ds.Files {
		added += f.AddedLines
		deleted += f.DeletedLines
	}
	return
}

// Paths returns the review path of every file, in diff order.
func (ds *DiffSet) Paths() []string {
	out := make([]string, len(ds.Files))
	for i, f := range ds.Files {
		out[i] = f.Path()
	}
	return out
}

// HasPath reports whether any file in the set matches p by new or old path.
func (ds *DiffSet) HasPath(p string) bool {
	for _, f := range ds.Files {
		if f.NewPath == p || f.OldPath == p {
			return true
		}
	}
	return false
}

// Parse reads a unified diff string and returns a DiffSet.
func Parse(raw string) (*DiffSet, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	ds := &DiffSet{Raw: raw}
	for _, f := range parsed {
		df := &File{
			OldPath:   f.OldName,
			NewPath:   f.NewName,
			IsNew:     f.IsNew,
			IsDeleted: f.IsDelete,
			IsRenamed: f.IsRename,
			IsBinary:  f.IsBinary,
		}

		for _, frag := range f.TextFragments {
			df.Fragments = append(df.Fragments, frag)
			start, end := 0, 0
			lineNum := int(frag.NewPosition)
			for _, line := range frag.Lines {
				switch line.Op {
				case gitdiff.OpAdd:
					df.AddedLines++
					if start == 0 {
						start = lineNum
					}
					end = lineNum
					lineNum++
				case gitdiff.OpDelete:
					df.DeletedLines++
				case gitdiff.OpContext:
					if start != 0 {
						df.ChangedRanges = append(df.ChangedRanges, LineRange{Start: start, End: end})
						start, end = 0, 0
					}
					lineNum++
				}
			}
			if start != 0 {
				df.ChangedRanges = append(df.ChangedRanges, LineRange{Start: start, End: end})
			}
		}

		ds.Files = append(ds.Files, df)
	}

	return ds, nil
}

// Filter returns a copy of ds containing only files that pass the
// include/exclude glob patterns, capped at maxFiles. Binary files are
// always dropped; they cannot be reviewed.
func Filter(ds *DiffSet, include, exclude []string, maxFiles int) *DiffSet {
	out := &DiffSet{Raw: ds.Raw}
	for _, f := range ds.Files {
		if maxFiles > 0 && len(out.Files) >= maxFiles {
			break
		}
		if f.IsBinary {
			continue
		}
		p := f.Path()
		if len(include) > 0 && !matchAny(include, p) {
			continue
		}
		if matchAny(exclude, p) {
			continue
		}
		out.Files = append(out.Files, f)
	}
	return out
}

// matchAny matches p against shell-style patterns. A pattern is tried
// against the full path, its basename, and as a suffix so that "*.py"
// and "vendor/*" both behave the way users expect.
func matchAny(patterns []string, p string) bool {
	base := path.Base(p)
	for _, pat := range patterns {
		if ok, _ := path.Match(pat, p); ok {
			return true
		}
		if ok, _ := path.Match(pat, base); ok {
			return true
		}
		if strings.HasSuffix(p, strings.TrimPrefix(pat, "*")) {
			return true
		}
	}
	return false
}

// GitDiff runs `git diff` with the given arguments and returns the raw output.
func GitDiff(repoDir string, args ...string) (string, error) {
	cmdArgs := append([]string{"diff"}, args...)
	cmd := exec.Command("git", cmdArgs...)
	cmd.Dir = repoDir
	cmd.Stderr = os.Stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git diff: %w", err)
	}

	return string(out), nil
}

// GitDiffRefs returns the diff of source against target (target...source).
func GitDiffRefs(repoDir, source, target string, contextLines int) (string, error) {
	return GitDiff(repoDir, fmt.Sprintf("-U%d", contextLines), fmt.Sprintf("%s...%s", target, source))
}

// GitDiffWorktree returns the diff of the working tree against the given ref.
func GitDiffWorktree(repoDir, ref string, contextLines int) (string, error) {
	return GitDiff(repoDir, fmt.Sprintf("-U%d", contextLines), ref)
}

// RepoRoot locates the enclosing git repository root.
func RepoRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// CurrentBranch returns the checked-out branch name.
func CurrentBranch(repoDir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = repoDir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
