package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikolliervin/code-unc/internal/config"
	"github.com/nikolliervin/code-unc/internal/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved reviews",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent reviews",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved review",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved review",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all saved reviews",
	RunE:  runHistoryClear,
}

func init() {
	historyListCmd.Flags().IntP("limit", "n", 20, "number of reviews to list")
	historyShowCmd.Flags().StringP("format", "f", "rich", "output format: rich, json, markdown, html")
	historyClearCmd.Flags().Duration("older-than", 0, "only delete reviews older than this (e.g. 720h)")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyClearCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := st.History().List(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No saved reviews.")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-12s  %-16s  %-10s  %-24s  %6s  %8s  %5s\n",
		"ID", "DATE", "PROVIDER", "BRANCHES", "ISSUES", "BLOCKING", "SCORE")
	for _, e := range entries {
		branches := e.Source + "→" + e.Target
		if len(branches) > 24 {
			branches = branches[:23] + "…"
		}
		fmt.Fprintf(w, "%-12s  %-16s  %-10s  %-24s  %6d  %8d  %5.1f\n",
			e.ID[:12], e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.Provider, branches, e.IssueCount, e.Blocking, e.Score)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := st.History().Get(args[0])
	if err != nil {
		return err
	}

	formatStr, _ := cmd.Flags().GetString("format")
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	return output.Render(cmd.OutOrStdout(), res, format)
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.History().Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted review %s\n", args[0])
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	olderThan, _ := cmd.Flags().GetDuration("older-than")
	var n int64
	if olderThan > 0 {
		n, err = st.History().Prune(olderThan)
	} else {
		n, err = st.History().Clear()
	}
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d review(s)\n", n)
	return nil
}
