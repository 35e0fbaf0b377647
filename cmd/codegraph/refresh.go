package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/codegraph/host"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Clear the hash store and current branch's snapshot, then reanalyze (host operation: force_full_refresh)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		h, _ := host.New(cfg, workspaceRoot)
		h.SetLogger(newLogger())

		result := h.ForceFullRefresh()
		fmt.Printf("refreshed %s: %d nodes, %d edges\n", workspaceRoot, len(result.Graph.Nodes), len(result.Graph.Edges))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
