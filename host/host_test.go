package host_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"

	"github.com/viant/codegraph/branch"
	"github.com/viant/codegraph/config"
	"github.com/viant/codegraph/graph"
	"github.com/viant/codegraph/host"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func nodeByLabel(g *graph.Graph, kind graph.Kind, label string) *graph.Node {
	for _, n := range g.Nodes {
		if n.Kind == kind && n.Label == label {
			return n
		}
	}
	return nil
}

// TestHost_Analyze_PersistsArtifacts runs a full cycle over a tiny workspace
// and checks both the published graph and every artifact spec §6 names.
func TestHost_Analyze_PersistsArtifacts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "App.java"), "package com.example;\n\n@SpringBootApplication\npublic class App {\n}\n")

	h, d := host.New(config.Default(), root)
	assert.NotNil(t, d)
	assert.Equal(t, "non-repo", string(d.Kind))

	result := h.Analyze()
	assert.NotNil(t, nodeByLabel(result.Graph, graph.KindClass, "App"))
	assert.Same(t, result.Graph, h.Graph())

	base := filepath.Join(root, ".codegraph")
	for _, rel := range []string{
		filepath.Join("graph", "graph.json"),
		"metadata.json",
		"search.json",
		"docs.json",
		filepath.Join("cache", "cache_metadata.json"),
	} {
		_, err := os.Stat(filepath.Join(base, rel))
		assert.NoError(t, err, rel)
	}

	var meta struct {
		TotalNodes int `json:"totalNodes"`
	}
	data, err := os.ReadFile(filepath.Join(base, "metadata.json"))
	assert.NoError(t, err)
	assert.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, len(result.Graph.Nodes), meta.TotalNodes)

	var cacheMeta struct {
		TotalFiles int `json:"totalFiles"`
	}
	data, err = os.ReadFile(filepath.Join(base, "cache", "cache_metadata.json"))
	assert.NoError(t, err)
	assert.NoError(t, json.Unmarshal(data, &cacheMeta))
	assert.Equal(t, 1, cacheMeta.TotalFiles)

	entries, err := os.ReadDir(filepath.Join(base, "nodes"))
	assert.NoError(t, err)
	assert.Equal(t, len(result.Graph.Nodes), len(entries))
}

// TestDetectTechnologies_MatchesMarkerFiles checks the build/package-tool
// marker vocabulary independent of a full Analyze cycle.
func TestDetectTechnologies_MatchesMarkerFiles(t *testing.T) {
	root := t.TempDir()
	assert.Empty(t, host.DetectTechnologies(root))

	writeFile(t, filepath.Join(root, "pom.xml"), "<project/>")
	writeFile(t, filepath.Join(root, "package.json"), "{}")
	assert.Equal(t, []string{"maven", "npm"}, host.DetectTechnologies(root))
}

// TestHost_PendingChanges_ApplyIncremental_RoundTrip exercises the
// pending_changes/apply_incremental pair a watch-loop driver would call
// after an initial Analyze.
func TestHost_PendingChanges_ApplyIncremental_RoundTrip(t *testing.T) {
	root := t.TempDir()
	appPath := filepath.Join(root, "App.java")
	writeFile(t, appPath, "package com.example;\n\n@SpringBootApplication\npublic class App {\n}\n")

	h, _ := host.New(config.Default(), root)
	h.Analyze()

	repoPath := filepath.Join(root, "UserRepository.java")
	writeFile(t, repoPath, "package com.example;\n\n@Repository\npublic class UserRepository {\n}\n")

	delta, err := h.PendingChanges([]string{appPath, repoPath})
	assert.NoError(t, err)
	assert.Equal(t, []string{repoPath}, delta.Added)

	res := h.ApplyIncremental(delta)
	assert.True(t, res.Success)
	assert.Greater(t, res.Counts.NodesAdded, 0)
	assert.NotNil(t, nodeByLabel(h.Graph(), graph.KindClass, "UserRepository"))
}

// TestHost_ForceFullRefresh_ClearsHashStore checks that a file deleted
// between Analyze and ForceFullRefresh is gone from the rebuilt graph, and
// that a subsequent PendingChanges against the same files reports nothing
// outstanding (the store was genuinely rebuilt, not left stale).
func TestHost_ForceFullRefresh_ClearsHashStore(t *testing.T) {
	root := t.TempDir()
	appPath := filepath.Join(root, "App.java")
	servicePath := filepath.Join(root, "UserService.java")
	writeFile(t, appPath, "package com.example;\n\n@SpringBootApplication\npublic class App {\n}\n")
	writeFile(t, servicePath, "package com.example;\n\n@Service\npublic class UserService {\n}\n")

	// ForceFullRefresh runs right after Analyze, so the minimum spacing
	// between cycles is turned off; otherwise the guard rejects it.
	cfg := config.Default()
	cfg.MinAnalysisIntervalMS = 0
	h, _ := host.New(cfg, root)
	h.Analyze()
	assert.NotNil(t, nodeByLabel(h.Graph(), graph.KindClass, "UserService"))

	assert.NoError(t, os.Remove(servicePath))
	result := h.ForceFullRefresh()
	assert.Nil(t, nodeByLabel(result.Graph, graph.KindClass, "UserService"))

	delta, err := h.PendingChanges([]string{appPath})
	assert.NoError(t, err)
	assert.Empty(t, delta.Added)
	assert.Empty(t, delta.Modified)
	assert.Empty(t, delta.Deleted)
}

// TestHost_OnChangeEvent_DispatchAndUnsubscribe covers handler registration,
// delivery, and unsubscription.
func TestHost_OnChangeEvent_DispatchAndUnsubscribe(t *testing.T) {
	root := t.TempDir()
	h, _ := host.New(config.Default(), root)

	var received []branch.Event
	unsubscribe := h.OnChangeEvent(func(evt branch.Event) {
		received = append(received, evt)
	})

	h.Dispatch(branch.Event{Type: branch.EventCommit})
	assert.Equal(t, 1, len(received))

	unsubscribe()
	h.Dispatch(branch.Event{Type: branch.EventCommit})
	assert.Equal(t, 1, len(received))
}

// TestHost_SaveAndRestoreBranchSnapshot exercises the watch loop's
// StrategyBranchCache path: saving the live graph under one branch name
// and restoring it adopts that graph and its hash-store digests.
func TestHost_SaveAndRestoreBranchSnapshot(t *testing.T) {
	root := t.TempDir()
	appPath := filepath.Join(root, "App.java")
	writeFile(t, appPath, "package com.example;\n\n@SpringBootApplication\npublic class App {\n}\n")

	repo, err := git.PlainInit(root, false)
	assert.NoError(t, err)
	wt, err := repo.Worktree()
	assert.NoError(t, err)
	_, err = wt.Add("App.java")
	assert.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	assert.NoError(t, err)

	h, d := host.New(config.Default(), root)
	assert.Nil(t, d)
	h.Analyze()

	assert.NoError(t, h.SaveBranchSnapshot("main", "deadbeef"))

	ok, err := h.RestoreBranchSnapshot("main")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, nodeByLabel(h.Graph(), graph.KindClass, "App"))

	ok, err = h.RestoreBranchSnapshot("does-not-exist")
	assert.NoError(t, err)
	assert.False(t, ok)
}
