package jvm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/codegraph/graph"
	"github.com/viant/codegraph/parser/jvm"
)

func nodeByLabel(nodes []*graph.Node, label string) *graph.Node {
	for _, n := range nodes {
		if n.Label == label {
			return n
		}
	}
	return nil
}

func TestParser_Parse_Controller(t *testing.T) {
	source := `package com.example.api;

import java.util.List;
import com.example.service.WidgetService;

@RestController
public class WidgetController {
    @Autowired
    private WidgetService service;

    public List<String> listWidgets() {
        return service.names();
    }
}
`
	p := jvm.New()
	result, diag := p.Parse("com/example/api/WidgetController.java", []byte(source), false)
	assert.Nil(t, diag)

	module := nodeByLabel(result.Nodes, "com.example.api")
	assert.NotNil(t, module)
	assert.Equal(t, graph.KindModule, module.Kind)

	controller := nodeByLabel(result.Nodes, "WidgetController")
	assert.NotNil(t, controller)
	assert.Equal(t, graph.KindClass, controller.Kind)
	assert.Equal(t, graph.LayerController, controller.Layer)
	assert.Equal(t, module.ID, controller.Parent)
	assert.Contains(t, controller.Attributes.Decorators, "@RestController")

	service := nodeByLabel(result.Nodes, "service")
	assert.NotNil(t, service)
	assert.Equal(t, graph.KindField, service.Kind)
	assert.Equal(t, controller.ID, service.Parent)

	method := nodeByLabel(result.Nodes, "listWidgets")
	assert.NotNil(t, method)
	assert.Equal(t, graph.KindMethod, method.Kind)
	assert.Equal(t, "public", method.Attributes.Visibility)
	assert.Equal(t, controller.ID, method.Parent)

	imp := nodeByLabel(result.Nodes, "com.example.service.WidgetService")
	assert.NotNil(t, imp)
	assert.Equal(t, graph.KindImport, imp.Kind)

	var containsController bool
	for _, e := range result.Edges {
		if e.From == module.ID && e.To == controller.ID && e.Kind == graph.EdgeContains {
			containsController = true
		}
	}
	assert.True(t, containsController)
}

func TestParser_Parse_SpringBootApplicationFallback(t *testing.T) {
	source := `package com.example;

// @SpringBootApplication
public class App {
    public static void main(String[] args) {
    }
}
`
	p := jvm.New()
	result, diag := p.Parse("com/example/App.java", []byte(source), false)
	assert.Nil(t, diag)

	module := nodeByLabel(result.Nodes, "com.example")
	assert.NotNil(t, module)
	assert.Equal(t, graph.LayerApplication, module.Layer)
}

func TestParser_Parse_MalformedSourceYieldsBareModule(t *testing.T) {
	p := jvm.New()
	result, diag := p.Parse("broken/NotQuiteJava.java", []byte("!!! not java"), true)
	assert.Nil(t, diag)
	assert.Len(t, result.Nodes, 1)
	assert.Equal(t, graph.KindModule, result.Nodes[0].Kind)
}
