package main

import (
	"os"

	"github.com/spf13/cobra"

	"mensajio/internal/interfaces/cli/migrate"
	"mensajio/internal/interfaces/cli/sweep"
	"mensajio/internal/interfaces/cli/worker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mensajio",
		Short: "Mensajio billing core",
		Long:  `Mensajio tracks per-account message quotas, settles plan payments, and runs the periodic billing sweeps.`,
	}

	rootCmd.AddCommand(
		worker.NewCommand(),
		migrate.NewCommand(),
		sweep.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
