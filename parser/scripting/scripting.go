// Package scripting implements the dynamically-typed scripting parser
// family (spec §4.1): an indentation-driven, language-AST-free state
// machine rather than a grammar-backed walk. No teacher or pack example
// parses Python, so this is grounded directly on the specification's
// algorithm description, written in the same "pure function of bytes"
// shape as parser/jvm and parser/browser (a fileBuilder accumulating
// graph.Node/graph.Edge, one module node per file as the top-level
// per-file anchor).
package scripting

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/viant/codegraph/diag"
	"github.com/viant/codegraph/graph"
	"github.com/viant/codegraph/parser"
)

// Parser extracts structural nodes from .py source files by walking lines
// and tracking a stack of (kind, indent) frames; it never invokes a real
// Python grammar.
type Parser struct{}

// New returns a ready-to-use scripting parser.
func New() *Parser {
	return &Parser{}
}

var (
	classPattern      = regexp.MustCompile(`^class\s+([A-Za-z_]\w*)\s*(\(([^)]*)\))?\s*:`)
	defPattern        = regexp.MustCompile(`^(async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	importPattern     = regexp.MustCompile(`^(?:import\s+([\w.]+)|from\s+([\w.]+)\s+import\s+)`)
	mainGuardPattern  = regexp.MustCompile(`^if\s+__name__\s*==\s*['"]__main__['"]\s*:`)
	appAssignPattern  = regexp.MustCompile(`^app\s*=\s*(FastAPI|Flask)\s*\(`)
	routerAssignPattern = regexp.MustCompile(`^\w+\s*=\s*APIRouter\s*\(`)
	knownEntryBase    = map[string]bool{
		"main": true, "app": true, "application": true, "run": true,
		"server": true, "manage": true, "wsgi": true, "asgi": true,
		"__main__": true, "cli": true,
	}
)

// frame is an open class/function scope being tracked while lines are
// walked.
type frame struct {
	node    *graph.Node
	indent  int
	isClass bool
}

// Parse implements parser.Parser.
func (p *Parser) Parse(path string, content []byte, isEntryHint bool) (parser.Result, *diag.Diagnostic) {
	f := &fileBuilder{path: path}
	f.run(content)
	return f.result, nil
}

type fileBuilder struct {
	path              string
	module            *graph.Node
	stack             []frame
	result            parser.Result
	imports           []string
	pendingDecorators []string
	hasMainGuard      bool
	hasAppAssign      bool
	hasRouterAssign   bool
}

func (f *fileBuilder) addEdge(from, to string, kind graph.EdgeKind) {
	f.result.Edges = append(f.result.Edges, &graph.Edge{From: from, To: to, Kind: kind})
}

func (f *fileBuilder) addNode(n *graph.Node, parent string) {
	n.Parent = parent
	f.result.Nodes = append(f.result.Nodes, n)
	if parent != "" {
		f.addEdge(parent, n.ID, graph.EdgeContains)
	}
}

func (f *fileBuilder) parentID() string {
	if len(f.stack) == 0 {
		return f.module.ID
	}
	return f.stack[len(f.stack)-1].node.ID
}

func (f *fileBuilder) run(content []byte) {
	lines := strings.Split(string(content), "\n")

	label := filepath.Base(f.path)
	f.module = &graph.Node{
		ID:        graph.TopLevelID(f.path, graph.KindModule, label, 0),
		Label:     label,
		Kind:      graph.KindModule,
		Language:  "python",
		File:      f.path,
		StartLine: 1,
		EndLine:   len(lines),
	}
	f.result.Nodes = append(f.result.Nodes, f.module)

	i := 0
	for i < len(lines) {
		raw := lines[i]
		trimmed := strings.TrimSpace(raw)

		if trimmed == "" {
			i++
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			i++
			continue
		}

		indent := leadingIndent(raw)
		f.closeFrames(i, indent)

		switch {
		case strings.HasPrefix(trimmed, "@"):
			f.pendingDecorators = append(f.pendingDecorators, trimmed)
			i++
			continue

		case classPattern.MatchString(trimmed):
			i = f.openClass(lines, i, indent)
			continue

		case defPattern.MatchString(trimmed):
			i = f.openFunction(lines, i, indent)
			continue

		case importPattern.MatchString(trimmed):
			f.recordImport(trimmed, i+1)
			i++
			continue

		case mainGuardPattern.MatchString(trimmed):
			f.hasMainGuard = true
			i++
			continue

		case indent == 0 && appAssignPattern.MatchString(trimmed):
			f.hasAppAssign = true
			i++
			continue

		case indent == 0 && routerAssignPattern.MatchString(trimmed):
			f.hasRouterAssign = true
			i++
			continue

		default:
			f.pendingDecorators = nil
			i++
		}
	}

	f.closeFrames(len(lines), -1)
	f.classifyLayers()
	f.flagEntry()
}

// closeFrames pops every open frame whose indent is >= indent (a block ends
// at the first non-blank, non-comment line whose indent is <= the frame's
// indent; passing -1 forces everything closed at EOF), stamping each
// closed node's EndLine with the last line number that belonged to it.
func (f *fileBuilder) closeFrames(lineIdx, indent int) {
	for len(f.stack) > 0 && (indent == -1 || indent <= f.stack[len(f.stack)-1].indent) {
		top := f.stack[len(f.stack)-1]
		if lineIdx > 0 {
			top.node.EndLine = lineIdx
		}
		f.stack = f.stack[:len(f.stack)-1]
	}
}

func leadingIndent(line string) int {
	n := 0
	for _, r := range line {
		if r == ' ' {
			n++
		} else if r == '\t' {
			n += 8
		} else {
			break
		}
	}
	return n
}

// recordImport tracks the module literal for framework-family detection
// (C2 also resolves the literal to a file; here it is only used to pick a
// layer rule table) and emits an import node.
func (f *fileBuilder) recordImport(line string, lineNo int) {
	m := importPattern.FindStringSubmatch(line)
	literal := m[1]
	if literal == "" {
		literal = m[2]
	}
	if literal == "" {
		return
	}
	f.imports = append(f.imports, literal)

	n := &graph.Node{
		ID:        graph.ChildID(f.module.ID, graph.KindImport, literal, lineNo),
		Label:     literal,
		Kind:      graph.KindImport,
		Language:  "python",
		File:      f.path,
		StartLine: lineNo,
		EndLine:   lineNo,
	}
	f.addNode(n, f.module.ID)
}

// flagEntry implements §4.1's entry-point flagging: filename membership,
// main guard, or a module-scope app = FastAPI(/Flask( assignment.
func (f *fileBuilder) flagEntry() {
	base := strings.TrimSuffix(filepath.Base(f.path), filepath.Ext(f.path))
	if knownEntryBase[base] || f.hasMainGuard || f.hasAppAssign {
		f.module.IsEntry = true
	}
	if f.hasAppAssign {
		f.module.Layer = graph.LayerApp
	} else if f.hasRouterAssign {
		f.module.Layer = graph.LayerRouter
	}
	if f.module.Layer == graph.LayerApp || f.hasMainGuard {
		f.module.IsPrimaryEntry = true
	}
}
