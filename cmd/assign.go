package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ionspid/taxassign/internal/config"
	"github.com/ionspid/taxassign/internal/hits"
	"github.com/ionspid/taxassign/internal/lineage"
	"github.com/ionspid/taxassign/internal/model"
	"github.com/ionspid/taxassign/internal/pipeline"
	"github.com/ionspid/taxassign/internal/result"
)

var (
	assignInput       string
	assignOutput      string
	assignFormat      string
	assignMethod      string
	assignTool        string
	assignTaxonomy    string
	assignUseDB       bool
	assignProfiles    string
	assignProfile     string
	assignWorkers     int
	assignMinIdentity float64
	assignMinCoverage float64
	assignMaxEValue   float64
	assignMinBitScore float64
	assignTopHits     int
	assignConsensus   float64
	assignWeightShare float64
	assignSummary     bool
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign a taxonomy to each query in a hit file",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := resolveAssignParams(cmd)
		if err != nil {
			return err
		}

		records, warnings, err := hits.ReadFile(assignInput)
		if err != nil {
			return err
		}
		params.ParseWarnings = warnings

		src, err := openAssignSource(cmd.Context())
		if err != nil {
			return err
		}
		if src != nil {
			defer src.Close()
		}

		out, err := pipeline.Run(cmd.Context(), records, src, params)
		if err != nil {
			return err
		}

		format := result.DetectFormat(assignOutput)
		if assignFormat != "" {
			if format, err = result.ParseFormat(assignFormat); err != nil {
				return err
			}
		}
		if err := result.Export(out.Set, assignOutput, format); err != nil {
			return err
		}

		if assignSummary {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out.Summary)
		}
		return nil
	},
}

// resolveAssignParams layers parameters: config defaults, then the
// selected profile, then explicitly set flags.
func resolveAssignParams(cmd *cobra.Command) (pipeline.Params, error) {
	methodName := cfg.Assign.Method
	thresholds := cfg.Assign.Thresholds()
	workers := cfg.Assign.Workers
	tool := cfg.Assign.Tool

	if assignProfiles != "" {
		set, err := config.LoadProfiles(assignProfiles, cfg.Assign)
		if err != nil {
			return pipeline.Params{}, err
		}
		if assignProfile == "" {
			return pipeline.Params{}, &model.ValidationError{Field: "profile", Reason: "required when --profiles is set"}
		}
		p, err := set.Get(assignProfile)
		if err != nil {
			return pipeline.Params{}, err
		}
		methodName = p.Method
		thresholds = p.Thresholds
		workers = p.Workers
	}

	if assignMethod != "" {
		methodName = assignMethod
	}
	if assignTool != "" {
		tool = assignTool
	}
	if assignWorkers > 0 {
		workers = assignWorkers
	}

	f := cmd.Flags()
	if f.Changed("min-identity") {
		thresholds.MinIdentity = assignMinIdentity
	}
	if f.Changed("min-coverage") {
		thresholds.MinCoverage = assignMinCoverage
	}
	if f.Changed("max-evalue") {
		thresholds.MaxEValue = assignMaxEValue
	}
	if f.Changed("min-bit-score") {
		thresholds.MinBitScore = assignMinBitScore
	}
	if f.Changed("top-hits") {
		thresholds.TopHits = assignTopHits
	}
	if f.Changed("consensus-fraction") {
		thresholds.ConsensusFraction = assignConsensus
	}
	if f.Changed("min-weight-share") {
		thresholds.MinWeightShare = assignWeightShare
	}

	method, err := model.ParseMethod(methodName)
	if err != nil {
		return pipeline.Params{}, err
	}

	return pipeline.Params{
		Method:     method,
		Tool:       tool,
		Thresholds: thresholds,
		Workers:    workers,
	}, nil
}

// openAssignSource picks the lineage source: an explicit mapping file
// wins, then the configured taxonomy database, then none.
func openAssignSource(ctx context.Context) (lineage.Source, error) {
	if assignTaxonomy != "" {
		if strings.EqualFold(filepath.Ext(assignTaxonomy), ".xlsx") {
			return lineage.LoadXLSX(assignTaxonomy)
		}
		return lineage.LoadCSV(assignTaxonomy)
	}
	if assignUseDB {
		return openStore(ctx)
	}
	zap.L().Warn("assign: no taxonomy mapping given, subjects resolve to synthetic lineages")
	return nil, nil
}

func init() {
	assignCmd.Flags().StringVarP(&assignInput, "input", "i", "", "hit file (TSV, CSV, or BLAST outfmt 6)")
	assignCmd.Flags().StringVarP(&assignOutput, "output", "o", "assignments.tsv", "output path (format inferred from extension)")
	assignCmd.Flags().StringVar(&assignFormat, "output-format", "", "override output format: csv, tsv, json, xlsx")
	assignCmd.Flags().StringVarP(&assignMethod, "method", "m", "", "assignment method (default from config)")
	assignCmd.Flags().StringVar(&assignTool, "tool", "", "search tool that produced the hits")
	assignCmd.Flags().StringVarP(&assignTaxonomy, "taxonomy", "t", "", "taxonomy mapping file (CSV, TSV, or XLSX)")
	assignCmd.Flags().BoolVar(&assignUseDB, "use-db", false, "resolve lineages from the configured taxonomy database")
	assignCmd.Flags().StringVar(&assignProfiles, "profiles", "", "YAML file with named parameter profiles")
	assignCmd.Flags().StringVar(&assignProfile, "profile", "", "profile name to apply")
	assignCmd.Flags().IntVarP(&assignWorkers, "workers", "w", 0, "parallel workers (default from config)")
	assignCmd.Flags().Float64Var(&assignMinIdentity, "min-identity", 0, "minimum percent identity")
	assignCmd.Flags().Float64Var(&assignMinCoverage, "min-coverage", 0, "minimum query coverage")
	assignCmd.Flags().Float64Var(&assignMaxEValue, "max-evalue", 0, "maximum e-value")
	assignCmd.Flags().Float64Var(&assignMinBitScore, "min-bit-score", 0, "minimum bit score")
	assignCmd.Flags().IntVar(&assignTopHits, "top-hits", 0, "hits considered by the lca method")
	assignCmd.Flags().Float64Var(&assignConsensus, "consensus-fraction", 0, "agreement required by the consensus method")
	assignCmd.Flags().Float64Var(&assignWeightShare, "min-weight-share", 0, "weight share required by the weighted method")
	assignCmd.Flags().BoolVar(&assignSummary, "summary", false, "print the run summary as JSON to stdout")
	assignCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(assignCmd)
}
