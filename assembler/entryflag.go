package assembler

import (
	"github.com/viant/codegraph/entrypoint"
	"github.com/viant/codegraph/graph"
)

// applicationLayers are the layer tags that mark a node as the root of a
// framework's dependency hierarchy (jvm's @SpringBootApplication/@Application,
// async-web's module-scope app = FastAPI()/Flask() assignment).
var applicationLayers = map[graph.Layer]bool{
	graph.LayerApplication: true,
	graph.LayerApp:         true,
}

// flagEntries implements spec §4.4 step 5: every top-level node belonging
// to a detected entry file is marked IsEntry (falling back to the file's
// first node when it has no top-level node). IsPrimaryEntry is then
// assigned in one authoritative pass, after first clearing it everywhere:
// a parser may have set it speculatively per file (e.g. scripting.Parser
// flags any file with a main guard, independent of which one the
// workspace's single primary turns out to be), so P6 ("at most one node
// has is_primary_entry") can only hold if this function, not the parser,
// has the final word. Any node anywhere in the workspace carrying a
// framework "application" layer tag wins over entrypoint.Detector's
// filename-based primaryPath — an explicit annotation is a stronger
// signal than filename convention (the same precedence spec §4.3 already
// applies at the file level, re-applied here at the node level). Without
// such a node, only the first top-level node of primaryPath (its module
// node) is flagged primary.
func flagEntries(g *graph.Graph, entries []entrypoint.Entry, primaryPath string) {
	entryFiles := make(map[string]bool, len(entries))
	for _, e := range entries {
		entryFiles[e.Path] = true
	}

	for file := range entryFiles {
		nodes := g.NodesInFile(file)
		flagged := false
		for _, n := range nodes {
			if !isTopLevel(n) {
				continue
			}
			n.IsEntry = true
			flagged = true
		}
		if !flagged && len(nodes) > 0 {
			nodes[0].IsEntry = true
		}
	}

	for _, n := range g.Nodes {
		n.IsPrimaryEntry = false
	}

	var annotated *graph.Node
	for _, n := range g.Nodes {
		if isTopLevel(n) && applicationLayers[n.Layer] {
			annotated = n
			break
		}
	}
	if annotated != nil {
		annotated.IsPrimaryEntry = true
		annotated.IsEntry = true
		return
	}

	if primaryPath == "" {
		return
	}
	primaryNodes := g.NodesInFile(primaryPath)
	flagged := false
	for _, n := range primaryNodes {
		if !isTopLevel(n) {
			continue
		}
		n.IsPrimaryEntry = true
		flagged = true
		break
	}
	if !flagged && len(primaryNodes) > 0 {
		primaryNodes[0].IsPrimaryEntry = true
	}
}

// isTopLevel reports whether n is a module, class, interface, component or
// function. Only the kind is checked: a class or function nested inside
// another class or function also qualifies.
func isTopLevel(n *graph.Node) bool {
	switch n.Kind {
	case graph.KindModule, graph.KindClass, graph.KindInterface, graph.KindComponent, graph.KindFunction:
		return true
	default:
		return false
	}
}
