package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ionspid/taxassign/internal/lineage"
	"github.com/ionspid/taxassign/internal/server"
)

var (
	servePort  int
	serveUseDB bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP assignment API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		var src lineage.Source
		if serveUseDB {
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Migrate(ctx); err != nil {
				return err
			}
			src = store
		} else {
			zap.L().Warn("serve: no taxonomy database attached, requests must carry inline lineages")
		}

		return server.New(*cfg, src).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveUseDB, "use-db", false, "resolve lineages from the configured taxonomy database")
	rootCmd.AddCommand(serveCmd)
}
