package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ionspid/taxassign/internal/hits"
)

var (
	filterInput        string
	filterOutput       string
	filterMinIdentity  float64
	filterMinLength    int
	filterMaxEValue    float64
	filterMinBitScore  float64
	filterBestHitOnly  bool
	filterKeepSelfHits bool
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter a hit file by quality thresholds",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, warnings, err := hits.ReadFile(filterInput)
		if err != nil {
			return err
		}

		opts := hits.FilterOptions{
			RemoveSelfHits:  !filterKeepSelfHits,
			KeepBestHitOnly: filterBestHitOnly,
		}
		f := cmd.Flags()
		if f.Changed("min-identity") {
			opts.MinIdentity = &filterMinIdentity
		} else {
			opts.MinIdentity = &cfg.Filter.MinIdentity
		}
		if f.Changed("min-length") {
			opts.MinLength = &filterMinLength
		} else {
			opts.MinLength = &cfg.Filter.MinLength
		}
		if f.Changed("max-evalue") {
			opts.MaxEValue = &filterMaxEValue
		}
		if f.Changed("min-bit-score") {
			opts.MinBitScore = &filterMinBitScore
		}
		if !f.Changed("best-hit-only") {
			opts.KeepBestHitOnly = cfg.Filter.KeepBestHit
		}
		if !f.Changed("keep-self-hits") {
			opts.RemoveSelfHits = cfg.Filter.RemoveSelfHits
		}

		kept, err := hits.Filter(records, opts)
		if err != nil {
			return err
		}

		if err := hits.WriteFile(filterOutput, kept); err != nil {
			return err
		}

		zap.L().Info("filter: complete",
			zap.String("input", filterInput),
			zap.String("output", filterOutput),
			zap.Int("hits_in", len(records)),
			zap.Int("hits_kept", len(kept)),
			zap.Int("parse_warnings", warnings),
		)
		return nil
	},
}

func init() {
	filterCmd.Flags().StringVarP(&filterInput, "input", "i", "", "hit file (TSV, CSV, or BLAST outfmt 6)")
	filterCmd.Flags().StringVarP(&filterOutput, "output", "o", "filtered.tsv", "output path")
	filterCmd.Flags().Float64Var(&filterMinIdentity, "min-identity", 0, "minimum percent identity (default from config)")
	filterCmd.Flags().IntVar(&filterMinLength, "min-length", 0, "minimum alignment length (default from config)")
	filterCmd.Flags().Float64Var(&filterMaxEValue, "max-evalue", 0, "maximum e-value (unset disables)")
	filterCmd.Flags().Float64Var(&filterMinBitScore, "min-bit-score", 0, "minimum bit score (unset disables)")
	filterCmd.Flags().BoolVar(&filterBestHitOnly, "best-hit-only", false, "keep only the best hit per query")
	filterCmd.Flags().BoolVar(&filterKeepSelfHits, "keep-self-hits", false, "keep hits where query and subject IDs match")
	filterCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(filterCmd)
}
