package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikolliervin/code-unc/internal/config"
	"github.com/nikolliervin/code-unc/internal/diff"
	"github.com/nikolliervin/code-unc/internal/github"
	"github.com/nikolliervin/code-unc/internal/model"
	"github.com/nikolliervin/code-unc/internal/output"
	"github.com/nikolliervin/code-unc/internal/providers"
	"github.com/nikolliervin/code-unc/internal/redact"
	"github.com/nikolliervin/code-unc/internal/review"
)

var githubCmd = &cobra.Command{
	Use:   "github",
	Short: "GitHub pull request integration",
}

var githubPRCmd = &cobra.Command{
	Use:   "pr <number>",
	Short: "Review a pull request",
	Long: `Fetch a pull request's diff, review it, and print the report.
With --post, the review is also posted back to the PR: issues with a
reliable location become inline comments, the rest go into the review
body.

Requires GITHUB_TOKEN. The repository is detected from the origin
remote unless --owner and --repo are given.`,
	Args: cobra.ExactArgs(1),
	RunE: runGitHubPR,
}

func init() {
	f := githubPRCmd.Flags()
	f.String("owner", "", "repository owner (default: detect from origin)")
	f.String("repo", "", "repository name (default: detect from origin)")
	f.String("focus", "", "review focus")
	f.String("provider", "", "model provider")
	f.String("model", "", "model name")
	f.StringP("format", "f", "", "output format: rich, json, markdown, html")
	f.Bool("post", false, "post the review back to the pull request")
	githubCmd.AddCommand(githubPRCmd)
}

func runGitHubPR(cmd *cobra.Command, args []string) error {
	number, err := strconv.Atoi(args[0])
	if err != nil || number < 1 {
		return fmt.Errorf("invalid PR number: %s", args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	owner, _ := cmd.Flags().GetString("owner")
	repo, _ := cmd.Flags().GetString("repo")
	if owner == "" || repo == "" {
		owner, repo, err = github.DetectRepo()
		if err != nil {
			return err
		}
	}

	gh, err := github.NewClient(cfg.GitHub.BaseURL)
	if err != nil {
		return err
	}

	raw, err := gh.GetPRDiff(cmd.Context(), owner, repo, number)
	if err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		fmt.Println("PR has no changes to review.")
		return nil
	}
	if cfg.Review.RedactSecrets {
		raw = redact.Secrets(raw)
	}

	ds, err := diff.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing PR diff: %w", err)
	}
	ds = diff.Filter(ds, cfg.Review.IncludePatterns, cfg.Review.ExcludePatterns, cfg.Review.MaxFiles)
	dropSensitive(ds, cfg.Review.SensitivePatterns)
	if len(ds.Files) == 0 {
		fmt.Println("PR has no changes to review.")
		return nil
	}

	req, err := buildRequest(cmd, cfg)
	if err != nil {
		return err
	}
	req.Source = fmt.Sprintf("%s/%s#%d", owner, repo, number)
	req.Target = "base"

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

	engine := review.NewEngine(client, nil)
	engine.MaxTokens = cfg.Provider.MaxTokens
	engine.Temperature = cfg.Provider.Temperature

	res, err := engine.Run(cmd.Context(), req, ds)
	if err != nil {
		if providers.IsAuthError(err) {
			return fmt.Errorf("%w (set the provider API key, see 'unc config show')", err)
		}
		return err
	}

	if err := printPRReport(cmd, cfg, res); err != nil {
		return err
	}

	if post, _ := cmd.Flags().GetBool("post"); post {
		diffFiles := make(map[string]bool)
		for _, p := range ds.Paths() {
			diffFiles[p] = true
		}
		if err := gh.PostReview(cmd.Context(), owner, repo, number, github.BuildReview(res, diffFiles)); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Review posted to %s/%s#%d\n", owner, repo, number)
	}
	return nil
}

func printPRReport(cmd *cobra.Command, cfg *config.Config, res *model.ReviewResult) error {
	formatStr, _ := cmd.Flags().GetString("format")
	if formatStr == "" {
		formatStr = cfg.Output.Format
	}
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	return output.Render(cmd.OutOrStdout(), res, format)
}
