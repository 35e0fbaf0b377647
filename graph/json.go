package graph

import "encoding/json"

// Emitter renders a Graph to bytes. Implementations must be deterministic
// (P1: two analyses of identical workspace contents produce byte-identical
// graph JSON).
type Emitter interface {
	Emit(g *Graph) ([]byte, error)
}

// CanonicalEmitter serializes a graph as indented JSON with nodes and edges
// sorted into a stable order before marshaling.
type CanonicalEmitter struct{}

// Emit sorts a copy of the graph and marshals it with stable key order.
// encoding/json already emits struct fields in declaration order, so the
// Node/Edge/Metadata field order fixes key order; Sort fixes slice order.
func (CanonicalEmitter) Emit(g *Graph) ([]byte, error) {
	sorted := g.Clone()
	sorted.Sort()
	return json.MarshalIndent(sorted, "", "  ")
}
