package assembler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/codegraph/assembler"
	"github.com/viant/codegraph/config"
	"github.com/viant/codegraph/graph"
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

func nodeByFile(g *graph.Graph, kind graph.Kind, file string) *graph.Node {
	for _, n := range g.NodesInFile(file) {
		if n.Kind == kind {
			return n
		}
	}
	return nil
}

func newAssembler() *assembler.Assembler {
	return assembler.New(config.Default(), assembler.DefaultRegistry())
}

// S1: framework application, no controllers.
func TestAssembler_Analyze_ApplicationNoControllers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "App.java"), "package com.example;\n\n@SpringBootApplication\npublic class App {\n}\n")
	writeFile(t, filepath.Join(root, "UserService.java"), "package com.example;\n\n@Service\npublic class UserService {\n}\n")

	result := newAssembler().Analyze(root)
	g := result.Graph

	app := nodeByLabelKind(g, graph.KindClass, "App")
	service := nodeByLabelKind(g, graph.KindClass, "UserService")
	assert.NotNil(t, app)
	assert.NotNil(t, service)

	assert.Equal(t, app.ID, service.Parent)
	assert.True(t, g.HasEdge(graph.Edge{From: app.ID, To: service.ID, Kind: graph.EdgeContains}))
	assert.True(t, app.IsPrimaryEntry)
	assert.False(t, service.IsPrimaryEntry)
}

// S2: virtual root synthesis.
func TestAssembler_Analyze_VirtualRootSynthesis(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "UserController.java"), "package com.example;\n\n@Controller\npublic class UserController {\n}\n")
	writeFile(t, filepath.Join(root, "UserService.java"), "package com.example;\n\n@Service\npublic class UserService {\n}\n")
	writeFile(t, filepath.Join(root, "UserRepository.java"), "package com.example;\n\n@Repository\npublic class UserRepository {\n}\n")

	result := newAssembler().Analyze(root)
	g := result.Graph

	main := nodeByLabelKind(g, graph.KindModule, "Main")
	controller := nodeByLabelKind(g, graph.KindClass, "UserController")
	service := nodeByLabelKind(g, graph.KindClass, "UserService")
	repository := nodeByLabelKind(g, graph.KindClass, "UserRepository")

	assert.NotNil(t, main)
	assert.True(t, main.IsPrimaryEntry)
	assert.Equal(t, main.ID, controller.Parent)
	assert.Equal(t, controller.ID, service.Parent)
	assert.Equal(t, service.ID, repository.Parent)
}

// S3: async-web app with router and endpoint.
func TestAssembler_Analyze_AsyncWebAppRouterEndpoint(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.py"), "from fastapi import FastAPI\n\napp = FastAPI()\n")
	writeFile(t, filepath.Join(root, "routers", "users.py"), "from fastapi import APIRouter\n\nrouter = APIRouter()\n\n\n@router.get(\"/\")\ndef list_users():\n    return []\n")

	result := newAssembler().Analyze(root)
	g := result.Graph

	appModule := nodeByFile(g, graph.KindModule, filepath.Join(root, "main.py"))
	routerModule := nodeByFile(g, graph.KindModule, filepath.Join(root, "routers", "users.py"))
	endpoint := nodeByLabelKind(g, graph.KindFunction, "list_users")

	assert.NotNil(t, appModule)
	assert.NotNil(t, routerModule)
	assert.NotNil(t, endpoint)

	assert.Equal(t, graph.LayerApp, appModule.Layer)
	assert.True(t, appModule.IsPrimaryEntry)
	assert.Equal(t, graph.LayerRouter, routerModule.Layer)
	assert.Equal(t, appModule.ID, routerModule.Parent)
	assert.Equal(t, graph.LayerEndpoint, endpoint.Layer)
	assert.Equal(t, routerModule.ID, endpoint.Parent)
}

// Two plain scripting files each carry their own main guard and neither
// assigns app = FastAPI()/Flask(), so parser/scripting flags both of their
// modules IsPrimaryEntry independently. flagEntries must still leave
// exactly one node with IsPrimaryEntry set across the whole graph (P6).
func TestAssembler_Analyze_MultipleMainGuardsYieldOnePrimary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "worker_a.py"), "def run():\n    pass\n\nif __name__ == \"__main__\":\n    run()\n")
	writeFile(t, filepath.Join(root, "worker_b.py"), "def run():\n    pass\n\nif __name__ == \"__main__\":\n    run()\n")

	result := newAssembler().Analyze(root)
	g := result.Graph

	moduleA := nodeByFile(g, graph.KindModule, filepath.Join(root, "worker_a.py"))
	moduleB := nodeByFile(g, graph.KindModule, filepath.Join(root, "worker_b.py"))
	assert.NotNil(t, moduleA)
	assert.NotNil(t, moduleB)
	assert.True(t, moduleA.IsEntry)
	assert.True(t, moduleB.IsEntry)

	primaryCount := 0
	for _, n := range g.Nodes {
		if n.IsPrimaryEntry {
			primaryCount++
		}
	}
	assert.Equal(t, 1, primaryCount)
}

// S4: browser bootstrap BFS, with a revisit suppressed.
func TestAssembler_Analyze_BrowserBootstrapBFS(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.js"), "import App from './App';\n\ncreateRoot(document.getElementById('root')).render(App());\n")
	writeFile(t, filepath.Join(root, "App.js"), "import Header from './Header';\n\nexport default function App() {\n  return <Header />;\n}\n")
	writeFile(t, filepath.Join(root, "Header.js"), "import App from './App';\n\nexport default function Header() {\n  return <h1>Header</h1>;\n}\n")

	result := newAssembler().Analyze(root)
	g := result.Graph

	indexModule := nodeByFile(g, graph.KindModule, filepath.Join(root, "index.js"))
	appModule := nodeByFile(g, graph.KindModule, filepath.Join(root, "App.js"))
	headerModule := nodeByFile(g, graph.KindModule, filepath.Join(root, "Header.js"))

	assert.NotNil(t, indexModule)
	assert.NotNil(t, appModule)
	assert.NotNil(t, headerModule)

	assert.Equal(t, indexModule.ID, appModule.Parent)
	assert.Equal(t, appModule.ID, headerModule.Parent)
	assert.True(t, g.HasEdge(graph.Edge{From: indexModule.ID, To: appModule.ID, Kind: graph.EdgeContains}))
	assert.True(t, g.HasEdge(graph.Edge{From: appModule.ID, To: headerModule.ID, Kind: graph.EdgeContains}))

	// Header -> App back-reference must not add a second contains edge nor
	// reparent App away from index.
	assert.False(t, g.HasEdge(graph.Edge{From: headerModule.ID, To: appModule.ID, Kind: graph.EdgeContains}))
}

// Guard: a second concurrent-looking call too soon after the first returns
// an empty sentinel rather than mutating anything.
func TestAssembler_Analyze_GuardRejectsTooSoon(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "App.java"), "package com.example;\n\npublic class App {\n  public static void main(String[] args) {}\n}\n")

	a := newAssembler()
	first := a.Analyze(root)
	assert.Empty(t, first.Diagnostics)

	second := a.Analyze(root)
	assert.NotEmpty(t, second.Diagnostics)
	assert.Equal(t, "guard-reject", string(second.Diagnostics[0].Kind))
	assert.Empty(t, second.Graph.Nodes)
}
