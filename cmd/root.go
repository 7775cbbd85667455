package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ionspid/taxassign/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "taxassign",
	Short: "Taxonomic assignment from pairwise alignment hits",
	Long:  "Reads tabular alignment hits, resolves subject lineages, and assigns a taxonomy per query using one of five interchangeable strategies.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
