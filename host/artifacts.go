package host

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/viant/codegraph/graph"
)

// sanitizeFileNamePattern matches every character spec §6 requires
// replaced in a generated cache file name (the same rule branch-cache
// snapshot names follow).
var sanitizeFileNamePattern = regexp.MustCompile(`[<>:"/\\|?*]`)

// metadataDocument is spec §6's metadata.json shape.
type metadataDocument struct {
	ProjectName  string   `json:"projectName"`
	GeneratedAt  string   `json:"generatedAt"`
	TotalNodes   int      `json:"totalNodes"`
	TotalEdges   int      `json:"totalEdges"`
	EntryPoints  []string `json:"entryPoints,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Patterns     []string `json:"patterns,omitempty"`
}

// searchEntry is one element of search.json's flat index.
type searchEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
	File  string `json:"file"`
	Layer string `json:"layer,omitempty"`
}

// PersistArtifacts writes every artifact spec §6 names under
// <root>/<cache-dir>/ for g: the canonical graph, per-node detail files,
// run metadata, a flat search index, and a docs mapping. docs.json is
// written with an empty annotation object per node id — AI summaries and
// descriptions are produced by the external assistant this core hands the
// graph to, not by the core itself (spec's out-of-scope "MCP-style
// settings manipulator").
func PersistArtifacts(root, cacheDirName string, g *graph.Graph) error {
	base := filepath.Join(root, cacheDirName)

	if err := writeJSON(filepath.Join(base, "graph", "graph.json"), g); err != nil {
		return err
	}

	var entryPoints []string
	var search []searchEntry
	docs := make(map[string]struct{})
	patternSet := make(map[string]bool)
	for _, n := range g.Nodes {
		if n.IsPrimaryEntry {
			entryPoints = append(entryPoints, n.ID)
		}
		search = append(search, searchEntry{ID: n.ID, Label: n.Label, Kind: string(n.Kind), File: n.File, Layer: string(n.Layer)})
		docs[n.ID] = struct{}{}
		if n.Layer != "" {
			patternSet[string(n.Layer)] = true
		}
		if err := writeJSON(filepath.Join(base, "nodes", sanitizeNodeID(n.ID)+".json"), n); err != nil {
			return err
		}
	}
	sort.Strings(entryPoints)
	sort.Slice(search, func(i, j int) bool { return search[i].ID < search[j].ID })

	patterns := make([]string, 0, len(patternSet))
	for p := range patternSet {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	technologies := append([]string{}, g.Metadata.DetectedLanguages...)
	technologies = append(technologies, DetectTechnologies(root)...)
	sort.Strings(technologies)

	meta := metadataDocument{
		ProjectName:  filepath.Base(root),
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
		TotalNodes:   len(g.Nodes),
		TotalEdges:   len(g.Edges),
		EntryPoints:  entryPoints,
		Technologies: technologies,
		Patterns:     patterns,
	}
	if err := writeJSON(filepath.Join(base, "metadata.json"), meta); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(base, "search.json"), search); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(base, "docs.json"), docs); err != nil {
		return err
	}

	return writeCacheMetadata(base, root, g)
}

// cacheMetadataDocument is spec §6's cache/cache_metadata.json shape.
type cacheMetadataDocument struct {
	Version       int    `json:"version"`
	CreatedAt     string `json:"createdAt"`
	LastUpdated   string `json:"lastUpdated"`
	WorkspaceRoot string `json:"workspaceRoot"`
	TotalFiles    int    `json:"totalFiles"`
}

const cacheMetadataVersion = 1

// writeCacheMetadata persists cache/cache_metadata.json, preserving
// createdAt across runs (first write sets it; later writes only touch
// lastUpdated and totalFiles) the same way hashcache.Store preserves
// accumulated entries across Save calls rather than starting fresh.
func writeCacheMetadata(base, root string, g *graph.Graph) error {
	path := filepath.Join(base, "cache", "cache_metadata.json")
	now := time.Now().UTC().Format(time.RFC3339)

	doc := cacheMetadataDocument{Version: cacheMetadataVersion, CreatedAt: now, LastUpdated: now, WorkspaceRoot: root, TotalFiles: len(g.Files())}
	if existing, err := os.ReadFile(path); err == nil {
		var prior cacheMetadataDocument
		if json.Unmarshal(existing, &prior) == nil && prior.CreatedAt != "" {
			doc.CreatedAt = prior.CreatedAt
		}
	}
	return writeJSON(path, doc)
}

// sanitizeNodeID mirrors spec §6's filename sanitization rule so a
// per-node detail file name never escapes the nodes/ directory.
func sanitizeNodeID(id string) string {
	return sanitizeFileNamePattern.ReplaceAllString(id, "_")
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
