package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ionspid/taxassign/internal/lineage"
)

var (
	taxdbInput string
	taxdbReset bool
)

var taxdbCmd = &cobra.Command{
	Use:   "taxdb",
	Short: "Manage the taxonomy lineage database",
}

var taxdbLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a taxonomy mapping file into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := loadMapping(taxdbInput)
		if err != nil {
			return err
		}

		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Migrate(cmd.Context()); err != nil {
			return err
		}
		if taxdbReset {
			if err := store.Reset(cmd.Context()); err != nil {
				return err
			}
		}

		n, err := store.Load(cmd.Context(), src.Entries())
		if err != nil {
			return err
		}

		zap.L().Info("taxdb: load complete",
			zap.String("input", taxdbInput),
			zap.String("driver", cfg.Taxdb.Driver),
			zap.Int64("loaded", n),
		)
		return nil
	},
}

var taxdbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show taxonomy database status",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Migrate(cmd.Context()); err != nil {
			return err
		}
		n, err := store.Count(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "driver:   %s\nsubjects: %d\n", cfg.Taxdb.Driver, n)
		return nil
	},
}

// openStore opens the configured taxonomy database backend.
func openStore(ctx context.Context) (lineage.Store, error) {
	if err := cfg.Validate("taxdb"); err != nil {
		return nil, err
	}
	switch cfg.Taxdb.Driver {
	case "postgres":
		return lineage.NewPostgres(ctx, cfg.Taxdb.DatabaseURL)
	default:
		return lineage.NewSQLite(cfg.Taxdb.Path)
	}
}

func loadMapping(path string) (*lineage.MapSource, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return lineage.LoadXLSX(path)
	}
	return lineage.LoadCSV(path)
}

func init() {
	taxdbLoadCmd.Flags().StringVarP(&taxdbInput, "input", "i", "", "taxonomy mapping file (CSV, TSV, or XLSX)")
	taxdbLoadCmd.Flags().BoolVar(&taxdbReset, "reset", false, "clear existing mappings first")
	taxdbLoadCmd.MarkFlagRequired("input")

	taxdbCmd.AddCommand(taxdbLoadCmd)
	taxdbCmd.AddCommand(taxdbStatusCmd)
	rootCmd.AddCommand(taxdbCmd)
}
