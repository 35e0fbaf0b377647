package graph

import (
	"sort"
	"time"
)

// Metadata summarizes a graph at the time it was assembled.
type Metadata struct {
	TotalFiles        int       `json:"totalFiles"`
	TotalNodes        int       `json:"totalNodes"`
	TotalEdges        int       `json:"totalEdges"`
	DetectedLanguages []string  `json:"detectedLanguages"`
	RootPath          string    `json:"rootPath"`
	AnalyzedAt        time.Time `json:"analyzedAt"`
}

// Graph is the unified set of nodes and edges produced by an analysis cycle
// or mutated in place by the incremental updater.
//
// Graph is not safe for concurrent mutation; callers coordinate single-writer
// access (see assembler.Assembler and updater.Updater).
type Graph struct {
	Nodes    []*Node  `json:"nodes"`
	Edges    []*Edge  `json:"edges"`
	Metadata Metadata `json:"metadata"`

	byID      map[string]*Node
	byFile    map[string][]*Node
	edgeIndex map[string]struct{}
}

// New returns an empty, ready-to-use graph.
func New() *Graph {
	return &Graph{
		byID:      make(map[string]*Node),
		byFile:    make(map[string][]*Node),
		edgeIndex: make(map[string]struct{}),
	}
}

// reindex rebuilds the lookup tables. Called after bulk mutation or
// deserialization, where byID/byFile/edgeIndex are nil.
func (g *Graph) reindex() {
	g.byID = make(map[string]*Node, len(g.Nodes))
	g.byFile = make(map[string][]*Node, len(g.Nodes))
	g.edgeIndex = make(map[string]struct{}, len(g.Edges))
	for _, n := range g.Nodes {
		g.byID[n.ID] = n
		g.byFile[n.File] = append(g.byFile[n.File], n)
	}
	for _, e := range g.Edges {
		g.edgeIndex[e.key()] = struct{}{}
	}
}

func (g *Graph) ensureIndex() {
	if g.byID == nil {
		g.reindex()
	}
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (*Node, bool) {
	g.ensureIndex()
	n, ok := g.byID[id]
	return n, ok
}

// NodesInFile returns the nodes whose File equals path.
func (g *Graph) NodesInFile(path string) []*Node {
	g.ensureIndex()
	return g.byFile[path]
}

// HasEdge reports whether an identical edge already exists.
func (g *Graph) HasEdge(e Edge) bool {
	g.ensureIndex()
	_, ok := g.edgeIndex[e.key()]
	return ok
}

// AddNode appends a node, indexing it. Duplicate ids are rejected (the
// caller is expected to check existence first where that matters, e.g. the
// updater's "non-duplicate by id" rule).
func (g *Graph) AddNode(n *Node) {
	g.ensureIndex()
	if _, exists := g.byID[n.ID]; exists {
		return
	}
	g.Nodes = append(g.Nodes, n)
	g.byID[n.ID] = n
	g.byFile[n.File] = append(g.byFile[n.File], n)
}

// AddEdge appends an edge if an identical one is not already present.
func (g *Graph) AddEdge(e Edge) bool {
	g.ensureIndex()
	if _, exists := g.edgeIndex[e.key()]; exists {
		return false
	}
	g.Edges = append(g.Edges, &e)
	g.edgeIndex[e.key()] = struct{}{}
	return true
}

// Reparent rebinds child's Parent to newParentID, removing the old
// contains edge (if any) and adding the new one. Used by layer synthesis
// (assembler step 6), which overwrites a node's file-containment parent
// with its architectural-layer parent.
func (g *Graph) Reparent(child *Node, newParentID string) {
	g.ensureIndex()
	if child.Parent != "" {
		oldKey := Edge{Kind: EdgeContains, From: child.Parent, To: child.ID}.key()
		delete(g.edgeIndex, oldKey)
		kept := g.Edges[:0:0]
		for _, e := range g.Edges {
			if e.Kind == EdgeContains && e.From == child.Parent && e.To == child.ID {
				continue
			}
			kept = append(kept, e)
		}
		g.Edges = kept
	}
	child.Parent = newParentID
	g.AddEdge(Edge{From: newParentID, To: child.ID, Kind: EdgeContains})
}

// RemoveFile deletes every node whose File equals path and every edge with
// either endpoint among those nodes. It returns the removed node ids.
func (g *Graph) RemoveFile(path string) []string {
	g.ensureIndex()
	removed := make(map[string]struct{})
	keptNodes := g.Nodes[:0:0]
	for _, n := range g.Nodes {
		if n.File == path {
			removed[n.ID] = struct{}{}
			continue
		}
		keptNodes = append(keptNodes, n)
	}
	g.Nodes = keptNodes

	keptEdges := g.Edges[:0:0]
	for _, e := range g.Edges {
		_, fromRemoved := removed[e.From]
		_, toRemoved := removed[e.To]
		if fromRemoved || toRemoved {
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	g.Edges = keptEdges

	ids := make([]string, 0, len(removed))
	for id := range removed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	g.reindex()
	return ids
}

// RemoveNodes deletes the given node ids and any edge touching them.
func (g *Graph) RemoveNodes(ids []string) {
	if len(ids) == 0 {
		return
	}
	g.ensureIndex()
	doomed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}
	keptNodes := g.Nodes[:0:0]
	for _, n := range g.Nodes {
		if _, ok := doomed[n.ID]; ok {
			continue
		}
		keptNodes = append(keptNodes, n)
	}
	g.Nodes = keptNodes

	keptEdges := g.Edges[:0:0]
	for _, e := range g.Edges {
		_, fromDoomed := doomed[e.From]
		_, toDoomed := doomed[e.To]
		if fromDoomed || toDoomed {
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	g.Edges = keptEdges
	g.reindex()
}

// Files returns the distinct set of file paths currently represented in the
// graph's nodes.
func (g *Graph) Files() []string {
	g.ensureIndex()
	seen := make(map[string]struct{}, len(g.byFile))
	files := make([]string, 0, len(g.byFile))
	for _, n := range g.Nodes {
		if _, ok := seen[n.File]; ok {
			continue
		}
		seen[n.File] = struct{}{}
		files = append(files, n.File)
	}
	return files
}

// Sort orders nodes and edges deterministically (by id / from,to,kind) so
// that two structurally-identical graphs serialize byte-for-byte identically
// (P1).
func (g *Graph) Sort() {
	sort.SliceStable(g.Nodes, func(i, j int) bool { return g.Nodes[i].ID < g.Nodes[j].ID })
	sort.SliceStable(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Kind < b.Kind
	})
}

// RefreshMetadata recomputes the derived counters/fields of Metadata.
func (g *Graph) RefreshMetadata(root string, analyzedAt time.Time) {
	langs := make(map[string]struct{})
	for _, n := range g.Nodes {
		if n.Language != "" {
			langs[n.Language] = struct{}{}
		}
	}
	detected := make([]string, 0, len(langs))
	for l := range langs {
		detected = append(detected, l)
	}
	sort.Strings(detected)

	g.Metadata = Metadata{
		TotalFiles:        len(g.Files()),
		TotalNodes:        len(g.Nodes),
		TotalEdges:        len(g.Edges),
		DetectedLanguages: detected,
		RootPath:          root,
		AnalyzedAt:        analyzedAt,
	}
}

// Clone returns a deep copy of the graph, safe to snapshot or hand to a
// reader while a writer continues mutating the original.
func (g *Graph) Clone() *Graph {
	clone := New()
	clone.Nodes = make([]*Node, len(g.Nodes))
	for i, n := range g.Nodes {
		clone.Nodes[i] = n.Clone()
	}
	clone.Edges = make([]*Edge, len(g.Edges))
	for i, e := range g.Edges {
		edge := *e
		clone.Edges[i] = &edge
	}
	clone.Metadata = g.Metadata
	clone.reindex()
	return clone
}
