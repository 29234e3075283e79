package main

import (
	"fmt"

	"github.com/canfieldjuan/graphgate/internal/graphiti"
	"github.com/spf13/cobra"
)

var buildIndicesCmd = &cobra.Command{
	Use:   "build-indices",
	Short: "Create the graph database indices the client relies on",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		client, release, err := graphiti.NewFactory(cfg, log).Open(cmd.Context())
		if err != nil {
			return err
		}
		defer release()

		if err := client.BuildIndices(cmd.Context()); err != nil {
			return fmt.Errorf("failed to build indices: %w", err)
		}
		log.Info("indices built", "uri", cfg.Neo4j.URI)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildIndicesCmd)
}
