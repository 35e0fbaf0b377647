package updater_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/codegraph/assembler"
	"github.com/viant/codegraph/config"
	"github.com/viant/codegraph/graph"
	"github.com/viant/codegraph/hashcache"
	"github.com/viant/codegraph/updater"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func nodeByLabelKind(g *graph.Graph, kind graph.Kind, label string) *graph.Node {
	for _, n := range g.Nodes {
		if n.Kind == kind && n.Label == label {
			return n
		}
	}
	return nil
}

// TestUpdater_Apply_AddedModifiedDeleted runs a full assembler cycle, then
// applies an incremental delta covering all three change kinds, and checks
// the live graph reflects exactly the change without a full reassembly.
func TestUpdater_Apply_AddedModifiedDeleted(t *testing.T) {
	root := t.TempDir()
	appPath := filepath.Join(root, "App.java")
	servicePath := filepath.Join(root, "UserService.java")
	writeFile(t, appPath, "package com.example;\n\n@SpringBootApplication\npublic class App {\n}\n")
	writeFile(t, servicePath, "package com.example;\n\n@Service\npublic class UserService {\n}\n")

	g := assembler.New(config.Default(), assembler.DefaultRegistry()).Analyze(root).Graph
	assert.NotNil(t, nodeByLabelKind(g, graph.KindClass, "UserService"))

	cachePath := filepath.Join(root, ".codegraph", "cache", "file_hashes.json")
	store := hashcache.New(cachePath)
	assert.NoError(t, store.SeedFromGraph(g, root))

	// Delete UserService.java, modify App.java (add a method, same class
	// start line so its node id is stable), add UserRepository.java.
	assert.NoError(t, os.Remove(servicePath))
	writeFile(t, appPath, "package com.example;\n\n@SpringBootApplication\npublic class App {\n  public void run() {}\n}\n")
	repositoryPath := filepath.Join(root, "UserRepository.java")
	writeFile(t, repositoryPath, "package com.example;\n\n@Repository\npublic class UserRepository {\n}\n")

	u := updater.New(assembler.DefaultRegistry(), store)
	delta, err := u.PendingChanges(g, root, []string{appPath, repositoryPath})
	assert.NoError(t, err)
	assert.Equal(t, []string{repositoryPath}, delta.Added)
	assert.Equal(t, []string{appPath}, delta.Modified)
	assert.Equal(t, []string{servicePath}, delta.Deleted)

	result := u.Apply(g, delta)
	assert.Greater(t, result.NodesAdded, 0)
	assert.Greater(t, result.NodesModified, 0)

	assert.Nil(t, nodeByLabelKind(g, graph.KindClass, "UserService"))

	repoClass := nodeByLabelKind(g, graph.KindClass, "UserRepository")
	assert.NotNil(t, repoClass)
	assert.Equal(t, graph.LayerRepository, repoClass.Layer)

	appClass := nodeByLabelKind(g, graph.KindClass, "App")
	assert.NotNil(t, appClass)
	assert.NotNil(t, nodeByLabelKind(g, graph.KindMethod, "run"))

	for _, e := range g.Edges {
		assert.NotContains(t, e.From, servicePath)
		assert.NotContains(t, e.To, servicePath)
	}
}

// TestUpdater_PendingChanges_CatchesFileMissingFromEmptyStore covers the
// case where a file is tracked in the live graph but the hash store has no
// entry for it at all (e.g. a fresh process that loaded a persisted graph
// without its cache). PendingChanges must still report it deleted once it
// is gone from disk, even though Store.Detect alone cannot see it.
func TestUpdater_PendingChanges_CatchesFileMissingFromEmptyStore(t *testing.T) {
	root := t.TempDir()
	orphan := filepath.Join(root, "Orphan.java")

	g := graph.New()
	g.AddNode(&graph.Node{ID: orphan + ":module:Orphan", Label: "Orphan", Kind: graph.KindModule, File: orphan})

	store := hashcache.New(filepath.Join(root, ".codegraph", "cache", "file_hashes.json"))
	u := updater.New(assembler.DefaultRegistry(), store)

	delta, err := u.PendingChanges(g, root, nil)
	assert.NoError(t, err)
	assert.Equal(t, []string{orphan}, delta.Deleted)
}
