package browser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/viant/codegraph/graph"
)

// layerByDecorator maps a framework decorator's simple name to the layer it
// denotes in the "framework-annotated" browser variant (spec §4.1).
var layerByDecorator = map[string]graph.Layer{
	"Component":    graph.LayerComponent,
	"NgModule":     graph.LayerModuleNg,
	"Injectable":   graph.LayerService,
	"Directive":    graph.LayerDirective,
	"Pipe":         graph.LayerPipe,
	"CanActivate":  graph.LayerGuard,
}

// addFunctionLevel handles a top-level function_declaration: either a
// function component (if it recursively returns JSX) or a plain function.
func (f *fileBuilder) addFunctionLevel(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(f.source)
	startLine := int(node.StartPoint().Row) + 1

	kind := graph.KindFunction
	if returnsJSX(node, f.source) {
		kind = graph.KindComponent
	}

	n := &graph.Node{
		ID:        graph.ChildID(f.moduleID, kind, name, startLine),
		Label:     name,
		Kind:      kind,
		Language:  "javascript",
		File:      f.path,
		Parent:    f.moduleID,
		StartLine: startLine,
		EndLine:   int(node.EndPoint().Row) + 1,
		Attributes: &graph.Attributes{
			Parameters: jsParameters(node.ChildByFieldName("parameters"), f.source),
			IsAsync:    hasAsyncKeyword(node, f.source),
		},
	}
	f.addNode(n)
}

// addDeclarationLevel handles a top-level lexical/var declaration, picking
// out arrow-form function/component declarators (`const X = () => ...`).
func (f *fileBuilder) addDeclarationLevel(node *sitter.Node) {
	for i := uint32(0); i < node.NamedChildCount(); i++ {
		declarator := node.NamedChild(int(i))
		if declarator.Type() != "variable_declarator" {
			continue
		}
		nameNode := declarator.ChildByFieldName("name")
		valueNode := declarator.ChildByFieldName("value")
		if nameNode == nil || nameNode.Type() != "identifier" || valueNode == nil {
			continue
		}
		if valueNode.Type() != "arrow_function" && valueNode.Type() != "function" {
			continue
		}

		name := nameNode.Content(f.source)
		startLine := int(declarator.StartPoint().Row) + 1

		kind := graph.KindFunction
		if returnsJSX(valueNode, f.source) {
			kind = graph.KindComponent
		}

		n := &graph.Node{
			ID:        graph.ChildID(f.moduleID, kind, name, startLine),
			Label:     name,
			Kind:      kind,
			Language:  "javascript",
			File:      f.path,
			Parent:    f.moduleID,
			StartLine: startLine,
			EndLine:   int(declarator.EndPoint().Row) + 1,
			Attributes: &graph.Attributes{
				Parameters: jsParameters(valueNode.ChildByFieldName("parameters"), f.source),
				IsAsync:    hasAsyncKeyword(valueNode, f.source),
			},
		}
		f.addNode(n)
	}
}

// addClassLevel handles a top-level class_declaration: a framework-annotated
// class (decorator present, e.g. @Component/@NgModule/...), a class
// component (superclass name ends in "Component"), or a plain class.
func (f *fileBuilder) addClassLevel(node *sitter.Node, decorators []string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(f.source)
	startLine := int(node.StartPoint().Row) + 1

	layer, isFrameworkAnnotated := classifyDecoratorLayer(decorators)
	isComponentSubclass := strings.HasSuffix(superclassName(node, f.source), "Component")

	kind := graph.KindClass
	if isFrameworkAnnotated {
		if layer == graph.LayerComponent {
			kind = graph.KindComponent
		}
	} else if isComponentSubclass {
		kind = graph.KindComponent
	}

	var baseClasses []string
	if sc := superclassName(node, f.source); sc != "" {
		baseClasses = []string{sc}
	}

	id := graph.ChildID(f.moduleID, kind, name, startLine)
	classNode := &graph.Node{
		ID:        id,
		Label:     name,
		Kind:      kind,
		Language:  "javascript",
		File:      f.path,
		Parent:    f.moduleID,
		StartLine: startLine,
		EndLine:   int(node.EndPoint().Row) + 1,
		Layer:     layer,
		Attributes: &graph.Attributes{
			BaseClasses: baseClasses,
			Decorators:  decorators,
		},
	}
	f.addNode(classNode)

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := uint32(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(int(i))
		switch member.Type() {
		case "method_definition":
			f.addMethodMember(member, id)
		case "public_field_definition", "field_definition":
			f.addFieldMember(member, id)
		}
	}
}

func (f *fileBuilder) addMethodMember(node *sitter.Node, classID string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(f.source)
	if name == "constructor" {
		return
	}
	startLine := int(node.StartPoint().Row) + 1

	n := &graph.Node{
		ID:        graph.ChildID(classID, graph.KindMethod, name, startLine),
		Label:     name,
		Kind:      graph.KindMethod,
		Language:  "javascript",
		File:      f.path,
		Parent:    classID,
		StartLine: startLine,
		EndLine:   int(node.EndPoint().Row) + 1,
		Attributes: &graph.Attributes{
			Parameters: jsParameters(node.ChildByFieldName("parameters"), f.source),
			IsAsync:    hasAsyncKeyword(node, f.source),
			IsStatic:   hasStaticKeyword(node, f.source),
		},
	}
	f.addNode(n)
}

func (f *fileBuilder) addFieldMember(node *sitter.Node, classID string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(f.source)
	startLine := int(node.StartPoint().Row) + 1
	decorators := decoratorsBefore(f.source, node)

	n := &graph.Node{
		ID:        graph.ChildID(classID, graph.KindField, name, startLine),
		Label:     name,
		Kind:      graph.KindField,
		Language:  "javascript",
		File:      f.path,
		Parent:    classID,
		StartLine: startLine,
		EndLine:   int(node.EndPoint().Row) + 1,
		Attributes: &graph.Attributes{
			Decorators: decorators,
			IsStatic:   hasStaticKeyword(node, f.source),
		},
	}
	f.addNode(n)
}

func classifyDecoratorLayer(decorators []string) (graph.Layer, bool) {
	for _, d := range decorators {
		if layer, ok := layerByDecorator[decoratorSimpleName(d)]; ok {
			return layer, true
		}
	}
	return "", false
}

func decoratorSimpleName(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "@")
	if idx := strings.IndexByte(s, '('); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func superclassName(node *sitter.Node, source []byte) string {
	heritage := node.ChildByFieldName("superclass")
	if heritage == nil {
		return ""
	}
	return heritage.Content(source)
}

// returnsJSX reports whether node's body recursively contains a JSX
// element, anywhere beneath a return statement (function components return
// JSX rather than merely mentioning it).
func returnsJSX(node *sitter.Node, source []byte) bool {
	body := node.ChildByFieldName("body")
	if body == nil {
		return false
	}
	return containsReturnedJSX(body)
}

func containsReturnedJSX(node *sitter.Node) bool {
	switch node.Type() {
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return true
	case "return_statement":
		for i := uint32(0); i < node.NamedChildCount(); i++ {
			if containsJSXAnywhere(node.NamedChild(int(i))) {
				return true
			}
		}
		return false
	}
	for i := uint32(0); i < node.NamedChildCount(); i++ {
		if containsReturnedJSX(node.NamedChild(int(i))) {
			return true
		}
	}
	return false
}

func containsJSXAnywhere(node *sitter.Node) bool {
	if node.Type() == "jsx_element" || node.Type() == "jsx_self_closing_element" || node.Type() == "jsx_fragment" {
		return true
	}
	for i := uint32(0); i < node.NamedChildCount(); i++ {
		if containsJSXAnywhere(node.NamedChild(int(i))) {
			return true
		}
	}
	return false
}

func jsParameters(paramsNode *sitter.Node, source []byte) []graph.Parameter {
	if paramsNode == nil {
		return nil
	}
	var out []graph.Parameter
	for i := uint32(0); i < paramsNode.NamedChildCount(); i++ {
		p := paramsNode.NamedChild(int(i))
		switch p.Type() {
		case "identifier":
			out = append(out, graph.Parameter{Name: p.Content(source)})
		case "object_pattern":
			for j := uint32(0); j < p.NamedChildCount(); j++ {
				prop := p.NamedChild(int(j))
				if prop.Type() == "shorthand_property_identifier" || prop.Type() == "identifier" {
					out = append(out, graph.Parameter{Name: prop.Content(source)})
				}
			}
		case "assignment_pattern":
			left := p.ChildByFieldName("left")
			right := p.ChildByFieldName("right")
			if left != nil {
				param := graph.Parameter{Name: left.Content(source), Optional: true}
				if right != nil {
					param.Default = right.Content(source)
				}
				out = append(out, param)
			}
		case "rest_pattern":
			if p.NamedChildCount() > 0 {
				out = append(out, graph.Parameter{Name: p.NamedChild(0).Content(source), IsVariadic: true})
			}
		}
	}
	return out
}

func hasAsyncKeyword(node *sitter.Node, source []byte) bool {
	return nodeHasLeadingKeyword(node, source, "async")
}

func hasStaticKeyword(node *sitter.Node, source []byte) bool {
	return nodeHasLeadingKeyword(node, source, "static")
}

// nodeHasLeadingKeyword checks whether one of node's non-named children
// (tree-sitter keeps keyword tokens like `async`/`static` as anonymous
// children) has the given literal text.
func nodeHasLeadingKeyword(node *sitter.Node, source []byte, keyword string) bool {
	for i := uint32(0); i < node.ChildCount(); i++ {
		child := node.Child(int(i))
		if !child.IsNamed() && child.Content(source) == keyword {
			return true
		}
	}
	return false
}
