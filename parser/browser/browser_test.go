package browser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/codegraph/graph"
	"github.com/viant/codegraph/parser/browser"
)

func nodeByLabel(nodes []*graph.Node, label string) *graph.Node {
	for _, n := range nodes {
		if n.Label == label {
			return n
		}
	}
	return nil
}

func nodeByKindAndLabel(nodes []*graph.Node, kind graph.Kind, label string) *graph.Node {
	for _, n := range nodes {
		if n.Kind == kind && n.Label == label {
			return n
		}
	}
	return nil
}

func TestParser_Parse_FunctionComponent(t *testing.T) {
	source := `import React from 'react';

export function Greeting({ name }) {
  return <div>Hello {name}</div>;
}
`
	p := browser.New()
	result, diag := p.Parse("src/Greeting.jsx", []byte(source), false)
	assert.Nil(t, diag)

	component := nodeByLabel(result.Nodes, "Greeting")
	assert.NotNil(t, component)
	assert.Equal(t, graph.KindComponent, component.Kind)
	assert.NotNil(t, component.Attributes)
	assert.Equal(t, "name", component.Attributes.Parameters[0].Name)

	export := nodeByKindAndLabel(result.Nodes, graph.KindExport, "Greeting")
	assert.NotNil(t, export)

	imp := nodeByLabel(result.Nodes, "react")
	assert.NotNil(t, imp)
	assert.Equal(t, graph.KindImport, imp.Kind)
}

func TestParser_Parse_ArrowComponent(t *testing.T) {
	source := `const Counter = () => {
  return <span>0</span>;
};
`
	p := browser.New()
	result, diag := p.Parse("src/Counter.jsx", []byte(source), false)
	assert.Nil(t, diag)

	component := nodeByLabel(result.Nodes, "Counter")
	assert.NotNil(t, component)
	assert.Equal(t, graph.KindComponent, component.Kind)
}

func TestParser_Parse_ClassComponent(t *testing.T) {
	source := `class Panel extends React.Component {
  render() {
    return <div />;
  }
}
`
	p := browser.New()
	result, diag := p.Parse("src/Panel.jsx", []byte(source), false)
	assert.Nil(t, diag)

	component := nodeByLabel(result.Nodes, "Panel")
	assert.NotNil(t, component)
	assert.Equal(t, graph.KindComponent, component.Kind)

	render := nodeByLabel(result.Nodes, "render")
	assert.NotNil(t, render)
	assert.Equal(t, graph.KindMethod, render.Kind)
	assert.Equal(t, component.ID, render.Parent)
}

func TestParser_Parse_FrameworkAnnotatedVariant(t *testing.T) {
	source := `
@Injectable()
class WidgetService {
  fetchAll() {
    return [];
  }
}
`
	p := browser.New()
	result, diag := p.Parse("src/widget.service.ts", []byte(source), false)
	assert.Nil(t, diag)

	service := nodeByLabel(result.Nodes, "WidgetService")
	assert.NotNil(t, service)
	assert.Equal(t, graph.KindClass, service.Kind)
	assert.Equal(t, graph.LayerService, service.Layer)
	assert.Contains(t, service.Attributes.Decorators, "@Injectable()")
}

func TestParser_Parse_EntryHintBootstrapFallback(t *testing.T) {
	source := `ReactDOM.render(<App />, document.getElementById('root'));`
	p := browser.New()
	result, diag := p.Parse("src/index.js", []byte(source), true)
	assert.Nil(t, diag)
	assert.Len(t, result.Nodes, 1)
	assert.Equal(t, graph.KindModule, result.Nodes[0].Kind)
	assert.True(t, result.Nodes[0].IsEntry)
}
