package graph

// Kind is the closed set of structural entities a parser can emit.
type Kind string

const (
	KindModule    Kind = "module"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindComponent Kind = "component"
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindField     Kind = "field"
	KindImport    Kind = "import"
	KindExport    Kind = "export"
)

// Layer is an architectural tag orthogonal to Kind, drawn from a
// per-framework vocabulary (application, controller, service, ...).
type Layer string

const (
	LayerApplication Layer = "application"
	LayerController  Layer = "controller"
	LayerService     Layer = "service"
	LayerRepository  Layer = "repository"
	LayerEntity      Layer = "entity"
	LayerComponent   Layer = "component"

	LayerApp        Layer = "app"
	LayerRouter     Layer = "router"
	LayerEndpoint   Layer = "endpoint"
	LayerDependency Layer = "dependency"
	LayerSchema     Layer = "schema"
	LayerModel      Layer = "model"

	LayerView       Layer = "view"
	LayerViewSet    Layer = "viewset"
	LayerSerializer Layer = "serializer"
	LayerForm       Layer = "form"
	LayerAdmin      Layer = "admin"
	LayerMiddleware Layer = "middleware"
	LayerCommand    Layer = "command"
	LayerTest       Layer = "test"

	LayerBlueprint Layer = "blueprint"
	LayerRoute     Layer = "route"

	LayerModuleNg  Layer = "module"
	LayerDirective Layer = "directive"
	LayerPipe      Layer = "pipe"
	LayerGuard     Layer = "guard"
)

// Parameter describes a function/method parameter.
type Parameter struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Optional   bool   `json:"optional,omitempty"`
	Default    string `json:"default,omitempty"`
	IsVariadic bool   `json:"isVariadic,omitempty"`
}

// Attributes carries the optional, kind-dependent metadata a node may have.
type Attributes struct {
	Parameters  []Parameter `json:"parameters,omitempty"`
	ReturnType  string      `json:"returnType,omitempty"`
	IsAsync     bool        `json:"isAsync,omitempty"`
	IsStatic    bool        `json:"isStatic,omitempty"`
	Visibility  string      `json:"visibility,omitempty"`
	Decorators  []string    `json:"decorators,omitempty"`
	BaseClasses []string    `json:"baseClasses,omitempty"`
	Docstring   string      `json:"docstring,omitempty"`
	Description string      `json:"description,omitempty"`
}

// Node is a stable, addressable structural entity extracted from a file.
type Node struct {
	ID             string      `json:"id"`
	Label          string      `json:"label"`
	Kind           Kind        `json:"kind"`
	Language       string      `json:"language"`
	File           string      `json:"file"`
	StartLine      int         `json:"startLine"`
	EndLine        int         `json:"endLine"`
	Parent         string      `json:"parent,omitempty"`
	Attributes     *Attributes `json:"attributes,omitempty"`
	Layer          Layer       `json:"layer,omitempty"`
	IsEntry        bool        `json:"isEntry,omitempty"`
	IsPrimaryEntry bool        `json:"isPrimaryEntry,omitempty"`
}

// Clone returns a deep-enough copy safe for independent mutation of the
// flags the assembler reassigns during a cycle (layer/entry flags).
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := *n
	if n.Attributes != nil {
		attrs := *n.Attributes
		attrs.Parameters = append([]Parameter(nil), n.Attributes.Parameters...)
		attrs.Decorators = append([]string(nil), n.Attributes.Decorators...)
		attrs.BaseClasses = append([]string(nil), n.Attributes.BaseClasses...)
		clone.Attributes = &attrs
	}
	return &clone
}
