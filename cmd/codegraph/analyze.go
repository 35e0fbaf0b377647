package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/codegraph/host"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full analysis cycle and persist the graph (host operation: analyze)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		h, diagnostic := host.New(cfg, workspaceRoot)
		h.SetLogger(newLogger())
		if diagnostic != nil {
			fmt.Printf("warning: %s: %s\n", diagnostic.Kind, diagnostic.Message)
		}

		result := h.Analyze()
		fmt.Printf("analyzed %s: %d nodes, %d edges\n", workspaceRoot, len(result.Graph.Nodes), len(result.Graph.Edges))
		for _, w := range result.Warnings {
			fmt.Println("warning:", w)
		}
		for _, d := range result.Diagnostics {
			fmt.Printf("diagnostic [%s] %s: %s\n", d.Kind, d.File, d.Message)
		}
		return nil
	},
}

var analyzeFileCmd = &cobra.Command{
	Use:   "analyze-file [path]",
	Short: "Parse a single file without touching the live graph (host operation: analyze_file)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		h, _ := host.New(cfg, workspaceRoot)
		h.SetLogger(newLogger())

		nodes, diagnostic := h.AnalyzeFile(args[0])
		if diagnostic != nil {
			return fmt.Errorf("%s: %s", diagnostic.Kind, diagnostic.Message)
		}
		for _, n := range nodes {
			fmt.Printf("%s\t%s\t%s\n", n.Kind, n.Label, n.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(analyzeFileCmd)
}
