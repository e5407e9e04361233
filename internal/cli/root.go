// Package cli implements the unc command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikolliervin/code-unc/internal/config"
	"github.com/nikolliervin/code-unc/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "unc",
	Short: "AI-backed code review for git diffs",
	Long: `unc reviews git diffs with an AI model and reports structured,
located issues. It tolerates malformed model output, caches results,
and keeps a local review history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(
		reviewCmd,
		historyCmd,
		configCmd,
		cacheCmd,
		githubCmd,
		serveCmd,
		versionCmd,
	)
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// openStore opens the SQLite database at the configured path.
func openStore(cfg *config.Config) (*store.Store, error) {
	path, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}
