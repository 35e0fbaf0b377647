package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/codegraph/graph"
	"github.com/viant/codegraph/parser/scripting"
)

func nodeByLabel(nodes []*graph.Node, label string) *graph.Node {
	for _, n := range nodes {
		if n.Label == label {
			return n
		}
	}
	return nil
}

func nodeByKind(nodes []*graph.Node, kind graph.Kind, label string) *graph.Node {
	for _, n := range nodes {
		if n.Kind == kind && n.Label == label {
			return n
		}
	}
	return nil
}

func TestParser_Parse_AsyncWebEndpoint(t *testing.T) {
	source := `from fastapi import FastAPI

app = FastAPI()


class Widget(BaseModel):
    name: str
    count: int = 0


@app.get("/widgets")
async def list_widgets(limit: int = 10):
    """Return all widgets."""
    return []
`
	p := scripting.New()
	result, d := p.Parse("app/main.py", []byte(source), true)
	assert.Nil(t, d)

	module := nodeByKind(result.Nodes, graph.KindModule, "main.py")
	assert.NotNil(t, module)
	assert.True(t, module.IsEntry)
	assert.Equal(t, graph.LayerApp, module.Layer)
	assert.True(t, module.IsPrimaryEntry)

	widget := nodeByLabel(result.Nodes, "Widget")
	assert.NotNil(t, widget)
	assert.Equal(t, graph.KindClass, widget.Kind)
	assert.Equal(t, graph.LayerSchema, widget.Layer)
	assert.Contains(t, widget.Attributes.BaseClasses, "BaseModel")

	endpoint := nodeByLabel(result.Nodes, "list_widgets")
	assert.NotNil(t, endpoint)
	assert.Equal(t, graph.KindFunction, endpoint.Kind)
	assert.Equal(t, graph.LayerEndpoint, endpoint.Layer)
	assert.True(t, endpoint.Attributes.IsAsync)
	assert.Equal(t, "Return all widgets.", endpoint.Attributes.Docstring)
	assert.Len(t, endpoint.Attributes.Parameters, 1)
	assert.Equal(t, "limit", endpoint.Attributes.Parameters[0].Name)
	assert.Equal(t, "10", endpoint.Attributes.Parameters[0].Default)

	imp := nodeByLabel(result.Nodes, "fastapi")
	assert.NotNil(t, imp)
	assert.Equal(t, graph.KindImport, imp.Kind)
}

func TestParser_Parse_RouterAssignmentTagsModule(t *testing.T) {
	source := `from fastapi import APIRouter

router = APIRouter()


@router.get("/")
def list_users():
    return []
`
	p := scripting.New()
	result, d := p.Parse("routers/users.py", []byte(source), false)
	assert.Nil(t, d)

	module := nodeByKind(result.Nodes, graph.KindModule, "users.py")
	assert.NotNil(t, module)
	assert.Equal(t, graph.LayerRouter, module.Layer)
	assert.False(t, module.IsPrimaryEntry)

	endpoint := nodeByLabel(result.Nodes, "list_users")
	assert.NotNil(t, endpoint)
	assert.Equal(t, graph.LayerEndpoint, endpoint.Layer)
}

func TestParser_Parse_ClassWithMethodNesting(t *testing.T) {
	source := `class Repository:
    def save(self, item):
        return item

    def find(self, id):
        return None
`
	p := scripting.New()
	result, d := p.Parse("storage/repo.py", []byte(source), false)
	assert.Nil(t, d)

	repo := nodeByLabel(result.Nodes, "Repository")
	assert.NotNil(t, repo)
	assert.Equal(t, graph.LayerRepository, repo.Layer)

	save := nodeByLabel(result.Nodes, "save")
	assert.NotNil(t, save)
	assert.Equal(t, graph.KindMethod, save.Kind)
	assert.Equal(t, repo.ID, save.Parent)
	assert.Len(t, save.Attributes.Parameters, 1)
	assert.Equal(t, "item", save.Attributes.Parameters[0].Name)

	find := nodeByLabel(result.Nodes, "find")
	assert.NotNil(t, find)
	assert.Equal(t, repo.ID, find.Parent)
}

func TestParser_Parse_MainGuardFlagsEntry(t *testing.T) {
	source := `def bootstrap():
    pass


if __name__ == "__main__":
    bootstrap()
`
	p := scripting.New()
	result, d := p.Parse("tools/run_job.py", []byte(source), false)
	assert.Nil(t, d)

	module := nodeByKind(result.Nodes, graph.KindModule, "run_job.py")
	assert.NotNil(t, module)
	assert.True(t, module.IsEntry)
	assert.True(t, module.IsPrimaryEntry)
}
