package main

import (
	"os"

	"github.com/nikolliervin/code-unc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
