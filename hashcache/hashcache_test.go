package hashcache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/viant/codegraph/graph"
	"github.com/viant/codegraph/hashcache"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestStore_Detect_AddedModifiedDeletedUnchanged(t *testing.T) {
	root := t.TempDir()
	keep := filepath.Join(root, "keep.py")
	change := filepath.Join(root, "change.py")
	gone := filepath.Join(root, "gone.py")
	writeFile(t, keep, "x = 1\n")
	writeFile(t, change, "x = 1\n")
	writeFile(t, gone, "x = 1\n")

	s := hashcache.New(filepath.Join(root, ".codegraph", "cache", "file_hashes.json"))
	delta, err := s.Detect(root, []string{keep, change, gone})
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{keep, change, gone}, delta.Added)
	assert.Empty(t, delta.Modified)
	assert.Empty(t, delta.Deleted)
	assert.Empty(t, delta.Unchanged)

	for _, e := range []string{keep, change, gone} {
		info, statErr := os.Stat(e)
		assert.NoError(t, statErr)
		content, readErr := os.ReadFile(e)
		assert.NoError(t, readErr)
		digest, digestErr := hashcache.Digest(content)
		assert.NoError(t, digestErr)
		s.Put(hashcache.Entry{AbsolutePath: e, RelativePath: filepath.Base(e), Digest: digest, ModTime: info.ModTime().UnixNano(), Size: info.Size()})
	}

	// Force an observable mtime change: rewrite `change` with different
	// content and bump its mtime so the cheap mtime/size check alone cannot
	// classify it.
	time.Sleep(2 * time.Millisecond)
	writeFile(t, change, "x = 2\n")
	future := time.Now().Add(time.Hour)
	assert.NoError(t, os.Chtimes(change, future, future))

	delta, err = s.Detect(root, []string{keep, change})
	assert.NoError(t, err)
	assert.Empty(t, delta.Added)
	assert.Equal(t, []string{change}, delta.Modified)
	assert.Equal(t, []string{keep}, delta.Unchanged)
	assert.Equal(t, []string{gone}, delta.Deleted)
}

func TestStore_SaveLoad_RoundTrip(t *testing.T) {
	root := t.TempDir()
	cachePath := filepath.Join(root, ".codegraph", "cache", "file_hashes.json")

	s := hashcache.New(cachePath)
	s.Put(hashcache.Entry{AbsolutePath: "/a.py", RelativePath: "a.py", Digest: 42, ModTime: 1, Size: 3, NodeIDs: []string{"/a.py:module:a.py"}})
	assert.NoError(t, s.Save())

	loaded := hashcache.Load(cachePath)
	entry, ok := loaded.Entry("/a.py")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), entry.Digest)
	assert.Equal(t, []string{"/a.py:module:a.py"}, entry.NodeIDs)
}

func TestStore_Load_MissingFileResetsToEmpty(t *testing.T) {
	root := t.TempDir()
	s := hashcache.Load(filepath.Join(root, "nope", "file_hashes.json"))
	_, ok := s.Entry("/anything")
	assert.False(t, ok)
}

func TestStore_Load_VersionMismatchResetsToEmpty(t *testing.T) {
	root := t.TempDir()
	cachePath := filepath.Join(root, "file_hashes.json")
	writeFile(t, cachePath, `{"version":999,"hashAlgorithm":"highwayhash-64","entries":{"/a.py":{"absolutePath":"/a.py","digest":1}}}`)

	s := hashcache.Load(cachePath)
	_, ok := s.Entry("/a.py")
	assert.False(t, ok)
}

func TestStore_SeedFromGraph_SkipsDetectionOfUnchangedFiles(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "seed.py")
	writeFile(t, file, "x = 1\n")

	g := graph.New()
	g.AddNode(&graph.Node{ID: file + ":module:seed.py", Label: "seed.py", Kind: graph.KindModule, File: file})

	s := hashcache.New(filepath.Join(root, ".codegraph", "cache", "file_hashes.json"))
	assert.NoError(t, s.SeedFromGraph(g, root))

	delta, err := s.Detect(root, []string{file})
	assert.NoError(t, err)
	assert.Empty(t, delta.Added)
	assert.Equal(t, []string{file}, delta.Unchanged)
}
