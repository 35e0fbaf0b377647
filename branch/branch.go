// Package branch implements the branch-aware manager (C7): it watches
// source-control state (the current branch and head commit) together with
// the workspace's source files, classifies what changed into one of a
// small set of event types, and caches one graph snapshot per branch so a
// branch switch can restore state instead of paying for a full reanalysis.
//
// Grounded on the fsnotify recursive-watch-plus-debounce idiom from the
// pack's own ast watcher (other_examples' processor/ast watcher.go: a
// pending-path map drained on a ticker) generalized to watch both the
// repository's head pointer and the workspace's source tree, and on
// hashcache's version-tagged JSON envelope / atomic-write idiom for the
// branch-state index persisted here.
package branch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/viant/codegraph/config"
	"github.com/viant/codegraph/diag"
	"github.com/viant/codegraph/graph"
	"github.com/viant/codegraph/hashcache"
)

// EventType classifies a change observed by the manager (spec §4.7's event
// table), plus stash-apply, which the strategy table names separately but
// which never changes HEAD's ref and so is signalled by the host rather
// than discovered from git state (see SelectStrategy).
type EventType string

const (
	EventBranchSwitch         EventType = "branch-switch"
	EventCommit               EventType = "commit"
	EventFileChange           EventType = "file-change"
	EventMergeRebaseCherryPick EventType = "merge-rebase-cherry-pick"
	EventStashApply           EventType = "stash-apply"
)

// Strategy is the update strategy an Event resolves to.
type Strategy string

const (
	StrategyIncremental  Strategy = "incremental"
	StrategyFullRefresh  Strategy = "full-refresh"
	StrategyBranchCache  Strategy = "branch-cache"
	StrategyNoUpdate     Strategy = "no-update"
)

// Event is one classified, debounced change notification.
type Event struct {
	Type                 EventType
	Branch               string
	PreviousBranch       string
	Commit               string
	ChangedFiles         []string
	HasSnapshotForBranch bool
}

// SelectStrategy maps an event to an update strategy per spec §4.7's
// table. affectedFileCount is the number of files the event touched
// (ignored for branch-switch and merge/rebase/cherry-pick, which always
// resolve structurally).
func SelectStrategy(evt Event, affectedFileCount int, cfg *config.Config) Strategy {
	switch evt.Type {
	case EventBranchSwitch:
		if evt.HasSnapshotForBranch {
			return StrategyBranchCache
		}
		return StrategyFullRefresh
	case EventMergeRebaseCherryPick:
		return StrategyFullRefresh
	case EventStashApply:
		if affectedFileCount <= cfg.StashRefreshThreshold {
			return StrategyIncremental
		}
		return StrategyFullRefresh
	case EventCommit, EventFileChange:
		if affectedFileCount <= cfg.FullRefreshFileThreshold {
			return StrategyIncremental
		}
		return StrategyFullRefresh
	default:
		return StrategyNoUpdate
	}
}

// BranchState is the per-branch record kept in the state index (spec
// §4.7's "{branch, last commit, timestamp, per-file digest map, node
// count, edge count, snapshot path}").
type BranchState struct {
	Branch       string            `json:"branch"`
	LastCommit   string            `json:"lastCommit"`
	Timestamp    time.Time         `json:"timestamp"`
	FileDigests  map[string]uint64 `json:"fileDigests"`
	NodeCount    int               `json:"nodeCount"`
	EdgeCount    int               `json:"edgeCount"`
	SnapshotPath string            `json:"snapshotPath"`
}

type stateIndexDocument struct {
	Version     int                    `json:"version"`
	LastUpdated time.Time              `json:"lastUpdated"`
	States      map[string]BranchState `json:"states"`
}

const stateIndexVersion = 1

// sanitizePattern matches every character spec §6 requires replaced in a
// branch-cache file name.
var sanitizePattern = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeBranchName replaces every character forbidden in a file name
// with "_", per spec §6's filename sanitization rule.
func SanitizeBranchName(branch string) string {
	return sanitizePattern.ReplaceAllString(branch, "_")
}

// Manager owns one workspace's branch cache: the state index and the
// per-branch snapshot files beneath <root>/<cache-dir>/branch_cache/.
type Manager struct {
	root     string
	cacheDir string
	cfg      *config.Config

	repo   *git.Repository
	isRepo bool

	stateIndexPath string
	states         map[string]BranchState

	logger *zap.SugaredLogger
}

// New opens the workspace's git repository, if any, and loads its branch
// state index. A non-repository workspace is not an error (spec §7
// NonRepo): Manager degrades to isRepo=false, every git-state query
// returns zero values, and no snapshot is ever offered. Logging defaults
// to a no-op sink; callers that want event-classification visibility call
// SetLogger.
func New(cfg *config.Config, root string) (*Manager, *diag.Diagnostic) {
	branchCacheDir := filepath.Join(root, cfg.CacheDirName, "branch_cache")
	m := &Manager{
		root:           root,
		cacheDir:       branchCacheDir,
		cfg:            cfg,
		stateIndexPath: filepath.Join(branchCacheDir, "branch_states.json"),
		states:         map[string]BranchState{},
		logger:         zap.NewNop().Sugar(),
	}

	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		d := diag.New(diag.NonRepo, root, err.Error())
		return m, &d
	}
	m.repo = repo
	m.isRepo = true
	m.loadStateIndex()
	return m, nil
}

// SetLogger swaps the Manager's logging sink. Passing nil restores the
// no-op sink.
func (m *Manager) SetLogger(logger *zap.SugaredLogger) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	m.logger = logger
}

// IsRepo reports whether root was inside a git repository at New time.
func (m *Manager) IsRepo() bool {
	return m.isRepo
}

func (m *Manager) loadStateIndex() {
	data, err := os.ReadFile(m.stateIndexPath)
	if err != nil {
		return
	}
	var doc stateIndexDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return
	}
	if doc.Version != stateIndexVersion {
		return // CacheVersionMismatch: reinitialize to empty
	}
	if doc.States != nil {
		m.states = doc.States
	}
}

func (m *Manager) saveStateIndex() error {
	if err := os.MkdirAll(m.cacheDir, 0o755); err != nil {
		return err
	}
	doc := stateIndexDocument{Version: stateIndexVersion, LastUpdated: time.Now(), States: m.states}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := m.stateIndexPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, m.stateIndexPath)
}

// SnapshotPath returns the deterministic path a branch's graph snapshot is
// stored at.
func (m *Manager) SnapshotPath(branch string) string {
	return filepath.Join(m.cacheDir, "graph_"+SanitizeBranchName(branch)+".json")
}

// HasSnapshot reports whether a snapshot is recorded for branch.
func (m *Manager) HasSnapshot(branch string) bool {
	_, ok := m.states[branch]
	return ok
}

// ClearSnapshot removes any recorded snapshot for branch, both its entry in
// the state index and its on-disk graph file, tolerating the no-snapshot
// case (host operation `force_full_refresh` drops whatever snapshot the
// current branch had so the next switch back rebuilds instead of loading
// stale state).
func (m *Manager) ClearSnapshot(branch string) error {
	state, ok := m.states[branch]
	if !ok {
		return nil
	}
	delete(m.states, branch)
	if err := os.Remove(state.SnapshotPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return m.saveStateIndex()
}

// SaveSnapshot serializes g to branch's snapshot file and records its
// BranchState in the index (spec §4.7 "on switching away from a branch").
// store supplies the per-file digest map recorded alongside the snapshot.
func (m *Manager) SaveSnapshot(branch, commit string, g *graph.Graph, store *hashcache.Store) error {
	m.logger.Debugw("saving branch snapshot", "branch", branch, "commit", commit, "nodes", len(g.Nodes))
	path := m.SnapshotPath(branch)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	digests := make(map[string]uint64, len(g.Files()))
	for _, file := range g.Files() {
		if entry, ok := store.Entry(file); ok {
			digests[file] = entry.Digest
		}
	}

	m.states[branch] = BranchState{
		Branch:       branch,
		LastCommit:   commit,
		Timestamp:    time.Now(),
		FileDigests:  digests,
		NodeCount:    len(g.Nodes),
		EdgeCount:    len(g.Edges),
		SnapshotPath: path,
	}
	return m.saveStateIndex()
}

// RestoreSnapshot loads branch's snapshot graph and reseeds a hash store
// with the digest map recorded alongside it, so C6 can reconcile on-disk
// changes since the snapshot was taken (spec §4.7 "load the snapshot,
// restore per-file digests into C5, then let C6 reconcile").
func (m *Manager) RestoreSnapshot(branch string) (*graph.Graph, *hashcache.Store, bool, error) {
	state, ok := m.states[branch]
	if !ok {
		m.logger.Debugw("no snapshot for branch", "branch", branch)
		return nil, nil, false, nil
	}
	m.logger.Debugw("restoring branch snapshot", "branch", branch, "lastCommit", state.LastCommit)
	data, err := os.ReadFile(state.SnapshotPath)
	if err != nil {
		return nil, nil, false, err
	}
	var doc struct {
		Nodes    []*graph.Node  `json:"nodes"`
		Edges    []*graph.Edge  `json:"edges"`
		Metadata graph.Metadata `json:"metadata"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, false, err
	}
	// Rebuild through the exported node/edge API rather than unmarshaling
	// straight into a *graph.Graph: Graph's lookup indexes are unexported
	// and only AddNode/AddEdge keep them consistent.
	g := graph.New()
	for _, n := range doc.Nodes {
		g.AddNode(n)
	}
	for _, e := range doc.Edges {
		g.AddEdge(*e)
	}
	g.Metadata = doc.Metadata
	g.Sort()

	store := hashcache.New(filepath.Join(m.root, m.cfg.CacheDirName, "cache", "file_hashes.json"))
	nodeIDsByFile := make(map[string][]string)
	for _, n := range g.Nodes {
		nodeIDsByFile[n.File] = append(nodeIDsByFile[n.File], n.ID)
	}
	for file, digest := range state.FileDigests {
		ids := nodeIDsByFile[file]
		sort.Strings(ids)
		info, statErr := os.Stat(file)
		entry := hashcache.Entry{AbsolutePath: file, Digest: digest, NodeIDs: ids}
		if statErr == nil {
			entry.ModTime = info.ModTime().UnixNano()
			entry.Size = info.Size()
		}
		store.Put(entry)
	}
	return g, store, true, nil
}

// gitState is the pair of observables a change event is classified from.
type gitState struct {
	Branch string
	Commit string
}

// CurrentGitState reads the repository's current branch name and head
// commit hash. Called with isRepo false it returns the zero state.
func (m *Manager) CurrentGitState() (gitState, error) {
	if !m.isRepo {
		return gitState{}, nil
	}
	head, err := m.repo.Head()
	if err != nil {
		return gitState{}, err
	}
	return gitState{Branch: head.Name().Short(), Commit: head.Hash().String()}, nil
}

// lastReflogVerb reads the most recent entry of .git/logs/HEAD directly
// (go-git exposes no portable reflog reader) and extracts its action verb
// ("checkout", "commit", "merge", "rebase", "cherry-pick", ...), used to
// detect a merge/rebase/cherry-pick in progress per spec §4.7's "reflog
// indicates multi-ref update".
func (m *Manager) lastReflogVerb() string {
	if !m.isRepo {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(m.root, ".git", "logs", "HEAD"))
	if err != nil {
		return ""
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 0 {
		return ""
	}
	return reflogVerb(lines[len(lines)-1])
}

var reflogVerbPattern = regexp.MustCompile(`^[a-zA-Z-]+`)

func reflogVerb(line string) string {
	tab := strings.IndexByte(line, '\t')
	if tab < 0 {
		return ""
	}
	message := line[tab+1:]
	return strings.ToLower(reflogVerbPattern.FindString(message))
}

var multiRefVerbs = map[string]bool{"merge": true, "rebase": true, "cherry-pick": true}

// Classify compares the previously observed and currently observed git
// state and returns the matching event (spec §4.7's classification
// table). For a branch switch it also sets HasSnapshotForBranch from
// HasSnapshot(curr.Branch); other event types leave it false.
func (m *Manager) Classify(prev gitState, curr gitState) Event {
	var evt Event
	switch {
	case multiRefVerbs[m.lastReflogVerb()]:
		evt = Event{Type: EventMergeRebaseCherryPick, Branch: curr.Branch, PreviousBranch: prev.Branch, Commit: curr.Commit}
	case curr.Branch != prev.Branch:
		evt = Event{Type: EventBranchSwitch, Branch: curr.Branch, PreviousBranch: prev.Branch, Commit: curr.Commit}
		evt.HasSnapshotForBranch = m.HasSnapshot(curr.Branch)
	case curr.Commit != prev.Commit:
		evt = Event{Type: EventCommit, Branch: curr.Branch, PreviousBranch: prev.Branch, Commit: curr.Commit}
	default:
		evt = Event{Type: EventFileChange, Branch: curr.Branch, PreviousBranch: prev.Branch, Commit: curr.Commit}
	}
	m.logger.Debugw("classified git state change", "type", evt.Type, "branch", evt.Branch, "previousBranch", evt.PreviousBranch)
	return evt
}
