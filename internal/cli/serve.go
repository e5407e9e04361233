package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikolliervin/code-unc/internal/api"
	"github.com/nikolliervin/code-unc/internal/config"
	"github.com/nikolliervin/code-unc/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the unc review engine.

Endpoints:
  GET  /health            — Health check
  POST /api/parse         — Parse a diff into structured files
  POST /api/normalize     — Normalize raw model output into issues
  GET  /api/history       — List saved reviews
  GET  /api/history/{id}  — Load a saved review
  GET  /api/ws            — WebSocket for interactive sessions`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "127.0.0.1", "address to listen on")
	serveCmd.Flags().IntP("port", "p", 6142, "port to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var history *store.History
	st, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: database unavailable, history routes disabled: %v\n", err)
	} else {
		defer st.Close()
		history = st.History()
	}

	addr, _ := cmd.Flags().GetString("addr")
	port, _ := cmd.Flags().GetInt("port")

	srv := api.New(fmt.Sprintf("%s:%d", addr, port), history)
	return srv.ListenAndServe()
}
