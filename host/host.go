// Package host wires the seven analysis components into the operations
// table spec §6 asks the embedding editor to drive: analyze, analyze_file,
// initialize_updater, pending_changes, apply_incremental,
// force_full_refresh, and on_change_event. It is the single place that
// knows how C4-C7 compose; cmd/codegraph is a thin cobra/viper shell over
// it.
//
// Grounded on DESIGN NOTES' "build a DAG of dependencies at startup" and
// "explicit ownership by the host" directives: there is exactly one Host
// per workspace, constructed with its collaborators, and no
// package-level singleton anywhere in this tree.
package host

import (
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/viant/codegraph/assembler"
	"github.com/viant/codegraph/branch"
	"github.com/viant/codegraph/config"
	"github.com/viant/codegraph/diag"
	"github.com/viant/codegraph/graph"
	"github.com/viant/codegraph/hashcache"
	"github.com/viant/codegraph/updater"
)

// ApplyResult is apply_incremental's documented non-throwing return shape
// (spec §6: "{success, counts, ms, message}").
type ApplyResult struct {
	Success bool
	Counts  updater.Result
	Ms      int64
	Message string
}

// Host owns one workspace's live graph and every collaborator that reads
// or mutates it. The live graph is swapped atomically at the end of each
// cycle (spec §5): readers call Graph() for an immutable snapshot handle
// between cycles rather than reaching into a mutating structure.
type Host struct {
	root string
	cfg  *config.Config

	asm       *assembler.Assembler
	store     *hashcache.Store
	upd       *updater.Updater
	branchMgr *branch.Manager
	logger    *zap.SugaredLogger

	mu    sync.RWMutex
	graph *graph.Graph

	handlersMu sync.Mutex
	handlers   map[int]func(branch.Event)
	nextHandle int
}

// New builds a Host over root, opening (or gracefully skipping) its git
// repository for C7 and loading any existing hash-store cache for C5.
// Logging defaults to a no-op sink across every collaborator; callers that
// want structured output (cmd/codegraph) call SetLogger.
func New(cfg *config.Config, root string) (*Host, *diag.Diagnostic) {
	registry := assembler.DefaultRegistry()
	cachePath := filepath.Join(root, cfg.CacheDirName, "cache", "file_hashes.json")
	store := hashcache.Load(cachePath)

	branchMgr, d := branch.New(cfg, root)

	h := &Host{
		root:      root,
		cfg:       cfg,
		asm:       assembler.New(cfg, registry),
		store:     store,
		upd:       updater.New(registry, store),
		branchMgr: branchMgr,
		logger:    zap.NewNop().Sugar(),
		graph:     graph.New(),
		handlers:  map[int]func(branch.Event){},
	}
	return h, d
}

// SetLogger installs logger on the Host and every collaborator it
// currently owns (C4/C6/C7). Passing nil restores the no-op sink
// everywhere. ForceFullRefresh and RestoreBranchSnapshot rebuild the
// updater internally and reapply h.logger to it, so the sink survives
// both without another SetLogger call.
func (h *Host) SetLogger(logger *zap.SugaredLogger) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	h.logger = logger
	h.asm.SetLogger(logger)
	h.upd.SetLogger(logger)
	h.branchMgr.SetLogger(logger)
}

// Graph returns the currently published graph. Safe for concurrent
// readers while a cycle runs, since the field is only ever replaced
// wholesale under h.mu, never mutated after publication.
func (h *Host) Graph() *graph.Graph {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.graph
}

// Analyze runs a full analysis cycle (host operation `analyze`). When the
// assembler's guard rejects the cycle, its empty sentinel is returned and
// the live graph, hash store and artifacts are left as they were.
func (h *Host) Analyze() assembler.Result {
	result := h.asm.Analyze(h.root)
	if len(result.Diagnostics) == 1 && result.Diagnostics[0].Kind == diag.GuardReject {
		return result
	}

	h.mu.Lock()
	h.graph = result.Graph
	h.mu.Unlock()

	_ = h.store.SeedFromGraph(result.Graph, h.root)
	_ = h.store.Save()
	_ = PersistArtifacts(h.root, h.cfg.CacheDirName, result.Graph)
	return result
}

// AnalyzeFile parses a single file without touching the live graph (host
// operation `analyze_file`).
func (h *Host) AnalyzeFile(path string) ([]*graph.Node, *diag.Diagnostic) {
	return h.asm.AnalyzeFile(path)
}

// InitializeUpdater seeds the hash store from an existing graph (supplied
// by the host when resuming a prior session) and, if provided, publishes
// it as the live graph (host operation `initialize_updater`).
func (h *Host) InitializeUpdater(existingGraph *graph.Graph) {
	if existingGraph == nil {
		return
	}
	h.mu.Lock()
	h.graph = existingGraph
	h.mu.Unlock()
	_ = h.store.SeedFromGraph(existingGraph, h.root)
}

// PendingChanges reports what changed on disk since the hash store was
// last updated (host operation `pending_changes`).
func (h *Host) PendingChanges(currentFiles []string) (hashcache.Delta, error) {
	return h.upd.PendingChanges(h.Graph(), h.root, currentFiles)
}

// CurrentFiles recomputes the workspace's current include/exclude-filtered
// file list the same way a full analysis cycle would, for callers (the
// watch loop) that need a fresh list to pass PendingChanges.
func (h *Host) CurrentFiles() ([]string, error) {
	return assembler.EnumerateFiles(h.root, h.cfg)
}

// ApplyIncremental applies delta to a copy of the live graph, publishes
// the copy as the new live graph, and persists the refreshed hash store
// (host operation `apply_incremental`). It never
// returns a Go error: faults are reported through ApplyResult.Success per
// spec §7's "apply_incremental ... never raises".
func (h *Host) ApplyIncremental(delta hashcache.Delta) ApplyResult {
	start := time.Now()

	h.mu.Lock()
	g := h.graph.Clone()
	counts := h.upd.Apply(g, delta)
	h.graph = g
	h.mu.Unlock()

	if err := h.store.Save(); err != nil {
		return ApplyResult{Success: false, Counts: counts, Ms: time.Since(start).Milliseconds(), Message: err.Error()}
	}
	if err := PersistArtifacts(h.root, h.cfg.CacheDirName, g); err != nil {
		return ApplyResult{Success: false, Counts: counts, Ms: time.Since(start).Milliseconds(), Message: err.Error()}
	}
	return ApplyResult{Success: true, Counts: counts, Ms: time.Since(start).Milliseconds()}
}

// ForceFullRefresh clears the hash store and any branch snapshot for the
// current branch, then reruns a full analysis (host operation
// `force_full_refresh`).
func (h *Host) ForceFullRefresh() assembler.Result {
	h.store = hashcache.New(h.store.Path())
	if h.branchMgr.IsRepo() {
		if state, err := h.branchMgr.CurrentGitState(); err == nil && state.Branch != "" {
			_ = h.branchMgr.ClearSnapshot(state.Branch)
		}
	}
	h.upd = updater.New(assembler.DefaultRegistry(), h.store)
	h.upd.SetLogger(h.logger)
	return h.Analyze()
}

// SaveBranchSnapshot persists the live graph and hash store as branchName's
// snapshot, driven by the watch loop on a branch-switch event before it
// adopts the destination branch's state (spec §4.7 "on switching away from
// a branch, save its current graph and digest map").
func (h *Host) SaveBranchSnapshot(branchName, commit string) error {
	h.mu.RLock()
	g := h.graph
	h.mu.RUnlock()
	return h.branchMgr.SaveSnapshot(branchName, commit, g, h.store)
}

// RestoreBranchSnapshot loads branchName's snapshot if one exists,
// publishing it as the live graph and reseeding the hash store and updater
// from its recorded digest map (host-side half of strategy
// StrategyBranchCache).
func (h *Host) RestoreBranchSnapshot(branchName string) (bool, error) {
	g, store, ok, err := h.branchMgr.RestoreSnapshot(branchName)
	if err != nil || !ok {
		return ok, err
	}
	h.mu.Lock()
	h.graph = g
	h.mu.Unlock()
	h.store = store
	h.upd = updater.New(assembler.DefaultRegistry(), store)
	h.upd.SetLogger(h.logger)
	return true, nil
}

// OnChangeEvent registers handler to be invoked whenever a branch.Watcher
// this Host drives publishes an event, and returns an unsubscribe
// function (host operation `on_change_event`).
func (h *Host) OnChangeEvent(handler func(branch.Event)) func() {
	h.handlersMu.Lock()
	id := h.nextHandle
	h.nextHandle++
	h.handlers[id] = handler
	h.handlersMu.Unlock()

	return func() {
		h.handlersMu.Lock()
		delete(h.handlers, id)
		h.handlersMu.Unlock()
	}
}

// Dispatch fans evt out to every registered handler. Called by the
// watch-loop driver (cmd/codegraph) as events arrive off a branch.Watcher.
func (h *Host) Dispatch(evt branch.Event) {
	h.handlersMu.Lock()
	handlers := make([]func(branch.Event), 0, len(h.handlers))
	for _, fn := range h.handlers {
		handlers = append(handlers, fn)
	}
	h.handlersMu.Unlock()

	for _, fn := range handlers {
		fn(evt)
	}
}

// BranchManager exposes C7 directly for callers (e.g. the watch command)
// that need snapshot save/restore or strategy selection around an event
// Dispatch already delivered.
func (h *Host) BranchManager() *branch.Manager {
	return h.branchMgr
}

// Config returns the workspace's configuration.
func (h *Host) Config() *config.Config {
	return h.cfg
}

// Root returns the workspace root this Host was built for.
func (h *Host) Root() string {
	return h.root
}
