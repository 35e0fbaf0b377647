package assembler

import "github.com/viant/codegraph/graph"

// synthesizeJVMHierarchy implements spec §4.4 step 6's JVM rule:
// application → controller → service → repository → entity, virtual
// "Main" root synthesized when no application class exists but a lower
// layer does, absent layers skipped so the next-higher present layer binds
// directly to the next-lower present one, and first-wins parent assignment
// within a transition: every child in the lower bucket binds to the first
// node of the next-higher present bucket (spec §8 scenarios S1, S2 are
// this rule's ground truth).
func synthesizeJVMHierarchy(g *graph.Graph) {
	order := []graph.Layer{graph.LayerApplication, graph.LayerController, graph.LayerService, graph.LayerRepository, graph.LayerEntity}
	synthesizeLinearHierarchy(g, order, "Main", "java")
}

// synthesizeAsyncWebHierarchy implements the async-web rule: app → router
// → endpoint → service → repository → model, virtual "App" root
// synthesized when no app node exists but lower layers do (spec §8
// scenario S3).
func synthesizeAsyncWebHierarchy(g *graph.Graph) {
	order := []graph.Layer{graph.LayerApp, graph.LayerRouter, graph.LayerEndpoint, graph.LayerService, graph.LayerRepository, graph.LayerModel}
	synthesizeLinearHierarchy(g, order, "App", "python")
}

// synthesizeLinearHierarchy buckets every top-level node whose Language is
// language by its Layer tag, across order's layers from highest to lowest
// (nodes of other languages are left alone, so the JVM and async-web
// passes never take each other's service/repository nodes), and
// binds each bucket's nodes to the first node of the nearest non-empty
// higher bucket. A virtual module node labelled virtualRootLabel is
// synthesized as the root only when the highest-present bucket is not
// order[0] (i.e. no true root layer exists) and at least one lower layer is
// present.
func synthesizeLinearHierarchy(g *graph.Graph, order []graph.Layer, virtualRootLabel, language string) {
	buckets := make([][]*graph.Node, len(order))
	for _, n := range g.Nodes {
		if !isTopLevel(n) || n.Layer == "" || n.Language != language {
			continue
		}
		for i, layer := range order {
			if n.Layer == layer {
				buckets[i] = append(buckets[i], n)
				break
			}
		}
	}

	anyPresent := false
	for _, b := range buckets {
		if len(b) > 0 {
			anyPresent = true
			break
		}
	}
	if !anyPresent {
		return
	}

	if len(buckets[0]) == 0 {
		hasLower := false
		for i := 1; i < len(buckets); i++ {
			if len(buckets[i]) > 0 {
				hasLower = true
				break
			}
		}
		if hasLower {
			root := virtualModuleNode(g, virtualRootLabel, language)
			buckets[0] = []*graph.Node{root}
		}
	}

	var upper []*graph.Node
	for i := 0; i < len(order); i++ {
		current := buckets[i]
		if len(current) == 0 {
			continue
		}
		if upper != nil {
			bindFirstWins(g, upper, current)
		}
		upper = current
	}
}

// bindFirstWins rebinds every node in lower to upper[0], the first node of
// the next-higher present layer (spec §4.4 step 6, "first-wins"). This
// overwrites whatever contains-parent the parser originally assigned (every
// top-level class's parser-time parent is its own file's module node) — a
// single node has one Parent field, and the architectural-layer parent
// spec §8's S1/S2 scenarios describe takes precedence over file
// containment once a layer hierarchy applies.
func bindFirstWins(g *graph.Graph, upper, lower []*graph.Node) {
	root := upper[0]
	for _, child := range lower {
		if child.ID == root.ID {
			continue
		}
		g.Reparent(child, root.ID)
	}
}

// virtualModuleNode synthesizes a deterministic root module node (spec's
// "synthesize a virtual module node labelled Main/App"), adding it to the
// graph once per hierarchy pass. The id is rooted at a reserved pseudo-file
// so it can never collide with a real file's module node.
func virtualModuleNode(g *graph.Graph, label, language string) *graph.Node {
	pseudoFile := "<virtual>/" + label
	id := graph.TopLevelID(pseudoFile, graph.KindModule, label, 0)
	if existing, ok := g.Node(id); ok {
		return existing
	}
	n := &graph.Node{
		ID:             id,
		Label:          label,
		Kind:           graph.KindModule,
		Language:       language,
		File:           pseudoFile,
		IsEntry:        true,
		IsPrimaryEntry: true,
	}
	g.AddNode(n)
	return n
}

// synthesizeBrowserBootstrap implements the browser-component bootstrap and
// framework-annotated-browser rules of spec §4.4 step 6: starting at the
// primary entry's module, BFS over the file-dependency map built during the
// import edge pass, attaching each newly-visited file's module node under
// its caller with a contains edge labelled "imports" (spec §8 scenario S4).
// Framework-annotated classes (component/directive/pipe/service/guard) are
// already parented to their own file's module node by parser/browser
// itself, so attaching the module under its importer is sufficient to
// complete the entry → module → {component, directive, pipe, service,
// guard} chain the spec describes.
func synthesizeBrowserBootstrap(g *graph.Graph, fileDeps map[string][]string, primaryPath string) {
	if primaryPath == "" {
		return
	}
	root := moduleOf(g, primaryPath)
	if root == nil {
		return
	}

	visited := map[string]bool{primaryPath: true}
	queue := []string{primaryPath}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		currentModule := moduleOf(g, current)
		if currentModule == nil {
			continue
		}
		for _, dep := range fileDeps[current] {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			queue = append(queue, dep)

			depModule := moduleOf(g, dep)
			if depModule == nil || depModule.Parent != "" {
				continue
			}
			depModule.Parent = currentModule.ID
			g.AddEdge(graph.Edge{From: currentModule.ID, To: depModule.ID, Kind: graph.EdgeContains, Label: "imports"})
		}
	}
}
