package jvm

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/viant/codegraph/graph"
)

// applicationAnnotationPattern backs the secondary regex fallback scan
// (spec §4.1): some application-root annotations (Spring Boot's
// @SpringBootApplication, a bare @Application marker) are worth tagging
// even if the AST walk above, for whatever reason, didn't already find and
// classify them as a modifiers-child annotation node.
var applicationAnnotationPattern = regexp.MustCompile(`@(SpringBootApplication|Application)\b`)

// layerByAnnotation is the closed mapping from a recognized framework
// annotation's simple name to the architectural layer it denotes (spec
// §4.1, "Recognises common framework annotations").
var layerByAnnotation = map[string]graph.Layer{
	"SpringBootApplication": graph.LayerApplication,
	"Application":           graph.LayerApplication,
	"Controller":            graph.LayerController,
	"RestController":        graph.LayerController,
	"Service":               graph.LayerService,
	"Repository":            graph.LayerRepository,
	"Entity":                graph.LayerEntity,
	"Component":             graph.LayerComponent,
}

// extractAnnotationsAndDoc separates a declaration's leading Javadoc from
// its annotations, mirroring inspector/java's extractDocumentation: leading
// comments starting with `@` are annotations, everything else is
// documentation; annotation nodes under a `modifiers` child are annotations
// regardless of leading-comment detection.
func extractAnnotationsAndDoc(node *sitter.Node, source []byte) (decorators []string, docstring string) {
	var comments []string

	cursor := sitter.NewTreeCursor(node)
	if cursor.GoToFirstChild() {
		for {
			current := cursor.CurrentNode()
			if current.Type() == "comment" {
				text := cleanCommentMarkers(strings.TrimSpace(current.Content(source)))
				if strings.HasPrefix(text, "@") {
					decorators = append(decorators, text)
				} else if text != "" {
					comments = append(comments, text)
				}
			}
			if !cursor.GoToNextSibling() {
				break
			}
		}
	}

	if node.NamedChildCount() > 0 && node.NamedChild(0).Type() == "modifiers" {
		modifiers := node.NamedChild(0)
		for i := uint32(0); i < modifiers.NamedChildCount(); i++ {
			child := modifiers.NamedChild(int(i))
			if child.Type() == "marker_annotation" || child.Type() == "annotation" {
				decorators = append(decorators, child.Content(source))
			}
		}
	}

	return decorators, strings.Join(comments, "\n")
}

func cleanCommentMarkers(comment string) string {
	if strings.HasPrefix(comment, "/*") && strings.HasSuffix(comment, "*/") {
		comment = comment[2 : len(comment)-2]
	}
	if strings.HasPrefix(comment, "//") {
		comment = comment[2:]
	}
	lines := strings.Split(comment, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		lines[i] = strings.TrimSpace(strings.TrimPrefix(line, "*"))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// classifyLayer maps a type's annotations to an architectural layer,
// preferring the first recognized annotation, and reports whether the type
// was tagged application (used to promote it to the primary entry, per
// §4.4 step 5).
func classifyLayer(decorators []string) (graph.Layer, bool) {
	for _, d := range decorators {
		name := annotationSimpleName(d)
		if layer, ok := layerByAnnotation[name]; ok {
			return layer, layer == graph.LayerApplication
		}
	}
	return "", false
}

// annotationSimpleName strips the leading `@`, any argument list, and any
// package qualification from a raw annotation token, e.g.
// "@org.springframework.stereotype.Service" -> "Service",
// "@RequestMapping(\"/api\")" -> "RequestMapping".
func annotationSimpleName(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "@")
	if idx := strings.IndexByte(s, '('); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.LastIndexByte(s, '.'); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.TrimSpace(s)
}
