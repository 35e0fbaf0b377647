package scripting

import (
	"regexp"
	"strings"

	"github.com/viant/codegraph/graph"
)

// family identifies which web-framework rule table governs layer
// classification for a file, chosen from its import set (spec §4.1).
type family int

const (
	familyGeneric family = iota
	familyAsyncWeb
	familyMVCWeb
	familyLightweightWeb
)

func detectFamily(imports []string) family {
	for _, imp := range imports {
		switch {
		case strings.HasPrefix(imp, "fastapi"), strings.HasPrefix(imp, "starlette"):
			return familyAsyncWeb
		case strings.HasPrefix(imp, "django"):
			return familyMVCWeb
		case strings.HasPrefix(imp, "flask"):
			return familyLightweightWeb
		}
	}
	return familyGeneric
}

var endpointDecoratorPattern = regexp.MustCompile(`@\w+\.(get|post|put|delete|patch|route)\s*\(`)

// classifyLayers walks every class/function/method node collected from the
// file and assigns a Layer using the detected framework family's rule
// table, falling back to the generic heuristic when no family-specific rule
// matches.
func (f *fileBuilder) classifyLayers() {
	fam := detectFamily(f.imports)
	for _, n := range f.result.Nodes {
		if n.Kind != graph.KindClass && n.Kind != graph.KindFunction && n.Kind != graph.KindMethod {
			continue
		}
		if layer, ok := classifyByFamily(fam, n); ok {
			n.Layer = layer
			continue
		}
		if layer, ok := classifyGeneric(n); ok {
			n.Layer = layer
		}
	}
}

func classifyByFamily(fam family, n *graph.Node) (graph.Layer, bool) {
	switch fam {
	case familyAsyncWeb:
		return classifyAsyncWeb(n)
	case familyMVCWeb:
		return classifyMVCWeb(n)
	case familyLightweightWeb:
		return classifyLightweightWeb(n)
	default:
		return "", false
	}
}

// classifyAsyncWeb implements the {app, router, endpoint, dependency,
// schema, model} rule table for FastAPI/Starlette-style files.
func classifyAsyncWeb(n *graph.Node) (graph.Layer, bool) {
	if n.Kind == graph.KindFunction || n.Kind == graph.KindMethod {
		if hasDecoratorMatching(n, endpointDecoratorPattern) {
			return graph.LayerEndpoint, true
		}
		if hasDecoratorName(n, "Depends") {
			return graph.LayerDependency, true
		}
	}
	if n.Kind == graph.KindClass {
		if baseClassContains(n, "BaseModel") {
			return graph.LayerSchema, true
		}
		if baseClassContains(n, "APIRouter") {
			return graph.LayerRouter, true
		}
	}
	return "", false
}

// classifyMVCWeb implements the {view, viewset, serializer, model, form,
// admin, middleware, command, test} rule table for Django-style files,
// driven primarily by base class.
func classifyMVCWeb(n *graph.Node) (graph.Layer, bool) {
	if n.Kind != graph.KindClass {
		if strings.HasPrefix(strings.ToLower(n.Label), "test_") {
			return graph.LayerTest, true
		}
		return "", false
	}
	switch {
	case baseClassSuffix(n, "ViewSet"):
		return graph.LayerViewSet, true
	case baseClassSuffix(n, "View"):
		return graph.LayerView, true
	case baseClassSuffix(n, "Serializer"):
		return graph.LayerSerializer, true
	case baseClassContains(n, "Model"):
		return graph.LayerModel, true
	case baseClassSuffix(n, "Form"):
		return graph.LayerForm, true
	case baseClassSuffix(n, "Admin"):
		return graph.LayerAdmin, true
	case baseClassContains(n, "Middleware"):
		return graph.LayerMiddleware, true
	case baseClassSuffix(n, "Command"):
		return graph.LayerCommand, true
	case baseClassContains(n, "TestCase"):
		return graph.LayerTest, true
	}
	return "", false
}

// classifyLightweightWeb implements the {app, blueprint, route, view,
// model} rule table for Flask-style files.
func classifyLightweightWeb(n *graph.Node) (graph.Layer, bool) {
	if n.Kind == graph.KindFunction || n.Kind == graph.KindMethod {
		if hasDecoratorMatching(n, endpointDecoratorPattern) {
			return graph.LayerRoute, true
		}
	}
	if n.Kind == graph.KindClass {
		if baseClassContains(n, "Blueprint") {
			return graph.LayerBlueprint, true
		}
		if baseClassContains(n, "Model") {
			return graph.LayerModel, true
		}
		if baseClassSuffix(n, "View") {
			return graph.LayerView, true
		}
	}
	return "", false
}

// classifyGeneric is the framework-agnostic fallback heuristic: decorator
// shape, base class name, and declared-name substrings.
func classifyGeneric(n *graph.Node) (graph.Layer, bool) {
	if hasDecoratorMatching(n, endpointDecoratorPattern) {
		return graph.LayerEndpoint, true
	}
	if baseClassContains(n, "Model") {
		return graph.LayerModel, true
	}
	lower := strings.ToLower(n.Label)
	switch {
	case strings.Contains(lower, "service"):
		return graph.LayerService, true
	case strings.Contains(lower, "repository"):
		return graph.LayerRepository, true
	case strings.Contains(lower, "controller"):
		return graph.LayerController, true
	case strings.HasPrefix(lower, "test_"), strings.HasPrefix(n.Label, "Test"):
		return graph.LayerTest, true
	}
	return "", false
}

func hasDecoratorMatching(n *graph.Node, pattern *regexp.Regexp) bool {
	if n.Attributes == nil {
		return false
	}
	for _, d := range n.Attributes.Decorators {
		if pattern.MatchString(d) {
			return true
		}
	}
	return false
}

func hasDecoratorName(n *graph.Node, name string) bool {
	if n.Attributes == nil {
		return false
	}
	for _, d := range n.Attributes.Decorators {
		if strings.Contains(d, name) {
			return true
		}
	}
	return false
}

func baseClassContains(n *graph.Node, substr string) bool {
	if n.Attributes == nil {
		return false
	}
	for _, b := range n.Attributes.BaseClasses {
		if strings.Contains(b, substr) {
			return true
		}
	}
	return false
}

func baseClassSuffix(n *graph.Node, suffix string) bool {
	if n.Attributes == nil {
		return false
	}
	for _, b := range n.Attributes.BaseClasses {
		if strings.HasSuffix(b, suffix) {
			return true
		}
	}
	return false
}
