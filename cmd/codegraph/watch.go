package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/viant/codegraph/branch"
	"github.com/viant/codegraph/host"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run an initial analysis, then react to file and source-control changes (host operation: on_change_event)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		h, diagnostic := host.New(cfg, workspaceRoot)
		h.SetLogger(newLogger())
		if diagnostic != nil {
			fmt.Printf("warning: %s: %s\n", diagnostic.Kind, diagnostic.Message)
		}

		result := h.Analyze()
		fmt.Printf("initial analysis: %d nodes, %d edges\n", len(result.Graph.Nodes), len(result.Graph.Edges))

		watcher, err := branch.NewWatcher(h.BranchManager())
		if err != nil {
			return err
		}

		unsubscribe := h.OnChangeEvent(func(evt branch.Event) {
			fmt.Printf("event: %s branch=%s\n", evt.Type, evt.Branch)
		})
		defer unsubscribe()

		go watcher.Start()
		defer watcher.Stop()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		for {
			select {
			case evt, ok := <-watcher.Events():
				if !ok {
					return nil
				}
				h.Dispatch(evt)
				handleEvent(h, evt)
			case <-sigCh:
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// handleEvent selects an update strategy for evt (spec §4.7's table) and
// drives the corresponding host operation.
func handleEvent(h *host.Host, evt branch.Event) {
	strategy := branch.SelectStrategy(evt, len(evt.ChangedFiles), h.Config())

	switch strategy {
	case branch.StrategyNoUpdate:
		return

	case branch.StrategyBranchCache:
		if evt.PreviousBranch != "" {
			if err := h.SaveBranchSnapshot(evt.PreviousBranch, evt.Commit); err != nil {
				fmt.Println("snapshot save failed:", err)
			}
		}
		ok, err := h.RestoreBranchSnapshot(evt.Branch)
		if err != nil {
			fmt.Println("snapshot restore failed:", err)
			return
		}
		if !ok {
			runFullRefresh(h)
			return
		}
		reconcileAfterRestore(h)

	case branch.StrategyFullRefresh:
		runFullRefresh(h)

	case branch.StrategyIncremental:
		runIncremental(h)
	}
}

func runFullRefresh(h *host.Host) {
	result := h.Analyze()
	fmt.Printf("full refresh: %d nodes, %d edges\n", len(result.Graph.Nodes), len(result.Graph.Edges))
}

func runIncremental(h *host.Host) {
	files, err := h.CurrentFiles()
	if err != nil {
		fmt.Println("enumerate failed:", err)
		return
	}
	delta, err := h.PendingChanges(files)
	if err != nil {
		fmt.Println("pending_changes failed:", err)
		return
	}
	res := h.ApplyIncremental(delta)
	if !res.Success {
		fmt.Println("apply_incremental failed:", res.Message)
		return
	}
	fmt.Printf("incremental update: +%d ~%d -%d nodes (%dms)\n",
		res.Counts.NodesAdded, res.Counts.NodesModified, res.Counts.NodesRemoved, res.Ms)
}

// reconcileAfterRestore runs the incremental reconciliation spec §4.7
// prescribes after a branch-cache restore: on-disk state may have drifted
// since the snapshot was taken, so C6 catches it up rather than trusting
// the snapshot verbatim.
func reconcileAfterRestore(h *host.Host) {
	runIncremental(h)
}
