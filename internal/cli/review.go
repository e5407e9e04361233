package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikolliervin/code-unc/internal/config"
	"github.com/nikolliervin/code-unc/internal/diff"
	"github.com/nikolliervin/code-unc/internal/model"
	"github.com/nikolliervin/code-unc/internal/output"
	"github.com/nikolliervin/code-unc/internal/providers"
	"github.com/nikolliervin/code-unc/internal/redact"
	"github.com/nikolliervin/code-unc/internal/review"
	"github.com/nikolliervin/code-unc/internal/store"
	"github.com/nikolliervin/code-unc/internal/tui"
)

var reviewCmd = &cobra.Command{
	Use:     "review [-]",
	Aliases: []string{"run-review"},
	Short:   "Review changes with an AI model",
	Long: `Review the diff between two refs with an AI model and print a
structured report.

Examples:
  unc review                            # current branch vs main
  unc review --target develop           # current branch vs develop
  unc review --focus security           # security-focused review
  unc review -w                         # uncommitted changes vs main
  git diff | unc review -               # pipe any diff
  unc review --format markdown -o r.md  # write a Markdown report`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	f := reviewCmd.Flags()
	f.StringP("source", "s", "", "source branch or ref (default: current branch)")
	f.StringP("target", "t", "main", "target branch or ref")
	f.StringSlice("focus", nil, "review focus (repeatable; the first value wins): general, security, performance, style, bugs, maintainability, testing")
	f.StringSlice("include", nil, "glob patterns of files to include")
	f.StringSlice("exclude", nil, "glob patterns of files to exclude")
	f.Int("max-files", 0, "maximum number of files to review")
	f.String("provider", "", "model provider: "+strings.Join(providers.Names(), ", "))
	f.String("model", "", "model name")
	f.StringP("format", "f", "", "output format: rich, json, markdown, html")
	f.StringP("output", "o", "", "write the report to a file instead of stdout")
	f.BoolP("worktree", "w", false, "review uncommitted working tree changes against the target ref")
	f.Bool("no-cache", false, "bypass the result cache")
	f.Bool("no-save", false, "do not record the review in history")
	f.Bool("browse", false, "browse issues interactively after the review")
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	req, err := buildRequest(cmd, cfg)
	if err != nil {
		return err
	}

	raw, err := loadDiff(cmd, args, &req)
	if err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		fmt.Println("No changes to review.")
		return nil
	}

	if cfg.Review.RedactSecrets {
		raw = redact.Secrets(raw)
	}

	ds, err := diff.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing diff: %w", err)
	}
	ds = diff.Filter(ds, req.IncludePatterns, req.ExcludePatterns, req.MaxFiles)
	dropSensitive(ds, cfg.Review.SensitivePatterns)
	if len(ds.Files) == 0 {
		fmt.Println("No changes to review.")
		return nil
	}

	client, err := providers.New(providers.Settings{
		Provider:   req.Provider,
		Model:      req.Model,
		APIKey:     cfg.Provider.APIKey,
		BaseURL:    cfg.Provider.BaseURL,
		Timeout:    cfg.Provider.Timeout,
		MaxRetries: cfg.Provider.MaxRetries,
		RetryDelay: cfg.Provider.RetryDelay,
	})
	if err != nil {
		return err
	}

	noCache, _ := cmd.Flags().GetBool("no-cache")
	noSave, _ := cmd.Flags().GetBool("no-save")

	var st *store.Store
	if (cfg.Cache.Enabled && !noCache) || !noSave {
		st, err = openStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: database unavailable, continuing without it: %v\n", err)
			st = nil
		} else {
			defer st.Close()
		}
	}

	engine := review.NewEngine(client, nil)
	engine.MaxTokens = cfg.Provider.MaxTokens
	engine.Temperature = cfg.Provider.Temperature
	if st != nil && cfg.Cache.Enabled && !noCache {
		engine.Cache = st.Cache(cfg.Cache.TTL)
	}

	res, err := engine.Run(cmd.Context(), req, ds)
	if err != nil {
		if providers.IsAuthError(err) {
			return fmt.Errorf("%w (set the provider API key, see 'unc config show')", err)
		}
		return err
	}

	if st != nil && !noSave {
		if err := st.History().Save(res); err != nil {
			fmt.Fprintf(os.Stderr, "warning: saving review history: %v\n", err)
		}
	}

	if err := writeReport(cmd, cfg, res); err != nil {
		return err
	}

	if browse, _ := cmd.Flags().GetBool("browse"); browse {
		return tui.Run(res)
	}
	return nil
}

// buildRequest folds flags over config defaults into a review request.
func buildRequest(cmd *cobra.Command, cfg *config.Config) (model.Request, error) {
	focusStr := firstFocus(cmd)
	if focusStr == "" {
		focusStr = cfg.Review.Focus
	}
	focus, ok := model.ParseFocus(focusStr)
	if !ok {
		return model.Request{}, fmt.Errorf("unknown focus: %s", focusStr)
	}

	include, _ := cmd.Flags().GetStringSlice("include")
	if len(include) == 0 {
		include = cfg.Review.IncludePatterns
	}
	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	if len(exclude) == 0 {
		exclude = cfg.Review.ExcludePatterns
	}
	maxFiles, _ := cmd.Flags().GetInt("max-files")
	if maxFiles <= 0 {
		maxFiles = cfg.Review.MaxFiles
	}

	provider, _ := cmd.Flags().GetString("provider")
	if provider == "" {
		provider = cfg.Provider.Name
	}
	modelName, _ := cmd.Flags().GetString("model")
	if modelName == "" {
		modelName = cfg.Provider.Model
	}

	source, _ := cmd.Flags().GetString("source")
	target, _ := cmd.Flags().GetString("target")

	return model.Request{
		Source:          source,
		Target:          target,
		Focus:           focus,
		IncludePatterns: include,
		ExcludePatterns: exclude,
		MaxFiles:        maxFiles,
		Provider:        provider,
		Model:           modelName,
	}, nil
}

// dropSensitive removes files whose paths match the configured
// sensitive patterns, so their content is never sent to a provider.
func dropSensitive(ds *diff.DiffSet, patterns []string) {
	if len(patterns) == 0 {
		return
	}
	kept := ds.Files[:0]
	for _, f := range ds.Files {
		if !redact.SensitivePath(f.Name(), patterns) {
			kept = append(kept, f)
		}
	}
	ds.Files = kept
}

// firstFocus reads the focus flag, which is repeatable on review but a
// plain string on the github command; the first value wins.
func firstFocus(cmd *cobra.Command) string {
	if vals, err := cmd.Flags().GetStringSlice("focus"); err == nil && len(vals) > 0 {
		return vals[0]
	}
	if v, err := cmd.Flags().GetString("focus"); err == nil {
		return v
	}
	return ""
}

// loadDiff reads the diff from stdin ("-") or runs git against the
// request's refs, filling in the source branch when unset.
func loadDiff(cmd *cobra.Command, args []string, req *model.Request) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading diff from stdin: %w", err)
		}
		if req.Source == "" {
			req.Source = "stdin"
		}
		return string(data), nil
	}

	repoDir, err := diff.RepoRoot()
	if err != nil {
		return "", fmt.Errorf("not inside a git repository (pipe a diff with 'unc review -')")
	}
	if worktree, _ := cmd.Flags().GetBool("worktree"); worktree {
		if req.Source == "" {
			req.Source = "worktree"
		}
		return diff.GitDiffWorktree(repoDir, req.Target, 3)
	}
	if req.Source == "" {
		branch, err := diff.CurrentBranch(repoDir)
		if err != nil {
			return "", fmt.Errorf("resolving current branch: %w", err)
		}
		req.Source = branch
	}
	return diff.GitDiffRefs(repoDir, req.Source, req.Target, 3)
}

// writeReport renders the result to stdout or the requested file.
func writeReport(cmd *cobra.Command, cfg *config.Config, res *model.ReviewResult) error {
	formatStr, _ := cmd.Flags().GetString("format")
	if formatStr == "" {
		formatStr = cfg.Output.Format
	}
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		return output.Render(cmd.OutOrStdout(), res, format)
	}
	if info, err := os.Stat(outPath); err == nil && info.IsDir() {
		outPath = filepath.Join(outPath, "review-"+res.ID[:8]+output.Extension(format))
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()
	if err := output.Render(f, res, format); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Report written to %s\n", outPath)
	return nil
}
