package branch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher dispatches file-system and source-control events on a single
// event loop (spec §5): fsnotify watches never run parsers, they only
// accumulate a pending-changes set and emit a debounced Event once things
// settle. Grounded on the pack's own fsnotify watcher (other_examples'
// ast watcher.go: recursive Add over directories, a pending map drained by
// a ticker), adapted to also poll git head/ref state on every tick so a
// branch switch or commit is classified alongside ordinary file changes.
type Watcher struct {
	manager *Manager
	fsw     *fsnotify.Watcher

	includeExtensions map[string]bool
	excludeGlobs      []string

	mu      sync.Mutex
	pending map[string]bool
	last    gitState

	events chan Event
	done   chan struct{}
}

// NewWatcher builds a Watcher over manager's workspace, watching the
// extensions and excludes manager's config declares plus the repository's
// head pointer and refs directory when manager.IsRepo().
func NewWatcher(manager *Manager) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	include := make(map[string]bool, len(manager.cfg.IncludeExtensions))
	for _, ext := range manager.cfg.IncludeExtensions {
		include[ext] = true
	}

	w := &Watcher{
		manager:           manager,
		fsw:               fsw,
		includeExtensions: include,
		excludeGlobs:      manager.cfg.ExcludeGlobs,
		pending:           map[string]bool{},
		events:            make(chan Event, 64),
		done:              make(chan struct{}),
	}

	if err := w.addWatchesRecursive(manager.root); err != nil {
		fsw.Close()
		return nil, err
	}
	if manager.IsRepo() {
		gitDir := filepath.Join(manager.root, ".git")
		_ = fsw.Add(gitDir)
		_ = fsw.Add(filepath.Join(gitDir, "refs", "heads"))
		w.last, _ = manager.CurrentGitState()
	}
	return w, nil
}

// Events returns the channel debounced, classified events are published
// on.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start runs the watch loop until Stop is called. It is meant to be
// invoked in its own goroutine by the host.
func (w *Watcher) Start() {
	fileTicker := time.NewTicker(w.manager.cfg.FileWatchDebounce())
	scmTicker := time.NewTicker(w.manager.cfg.SCMDebounce())
	defer fileTicker.Stop()
	defer scmTicker.Stop()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		case <-fileTicker.C:
			w.flushFileChanges()
		case <-scmTicker.C:
			w.flushGitState()
		}
	}
}

// Stop terminates the watch loop and releases the underlying fsnotify
// handle.
func (w *Watcher) Stop() {
	close(w.done)
	close(w.events)
	w.fsw.Close()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && isExcluded(path, w.excludeGlobs) {
			return filepath.SkipDir
		}
		_ = w.fsw.Add(path)
		return nil
	})
}

func isExcluded(path string, globs []string) bool {
	base := filepath.Base(path)
	for _, glob := range globs {
		name := strings.Trim(glob, "*/")
		if base == name {
			return true
		}
	}
	return false
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if strings.Contains(event.Name, string(filepath.Separator)+".git"+string(filepath.Separator)) ||
		strings.HasSuffix(event.Name, string(filepath.Separator)+".git") {
		return // routed through flushGitState instead
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !isExcluded(event.Name, w.excludeGlobs) {
				_ = w.fsw.Add(event.Name)
			}
			return
		}
	}

	if !w.includeExtensions[filepath.Ext(event.Name)] {
		return
	}
	if isExcluded(event.Name, w.excludeGlobs) {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = true
	w.mu.Unlock()
}

func (w *Watcher) flushFileChanges() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	files := make([]string, 0, len(w.pending))
	for f := range w.pending {
		files = append(files, f)
	}
	w.pending = map[string]bool{}
	w.mu.Unlock()

	curr, err := w.manager.CurrentGitState()
	if err != nil {
		curr = w.last
	}
	evt := w.manager.Classify(w.last, curr)
	evt.ChangedFiles = files
	w.last = curr
	w.publish(evt)
}

func (w *Watcher) flushGitState() {
	curr, err := w.manager.CurrentGitState()
	if err != nil || curr == w.last {
		return
	}
	evt := w.manager.Classify(w.last, curr)
	w.last = curr
	w.publish(evt)
}

func (w *Watcher) publish(evt Event) {
	select {
	case w.events <- evt:
	default:
		// Channel full: the host is falling behind. Dropping here is safe
		// because the next poll observes the same (or newer) git/file state.
	}
}
