package assembler

import (
	"github.com/viant/codegraph/parser"
	"github.com/viant/codegraph/parser/browser"
	"github.com/viant/codegraph/parser/jvm"
	"github.com/viant/codegraph/parser/scripting"
)

// DefaultRegistry wires the three C1 parser families to the extensions
// spec §4.1 assigns them. Shared by the assembler's own tests and by
// cmd/codegraph, so there is exactly one place that knows the
// extension-to-family mapping.
func DefaultRegistry() *parser.Registry {
	jvmParser := jvm.New()
	browserParser := browser.New()
	scriptingParser := scripting.New()

	return parser.NewRegistry(map[string]parser.Parser{
		".java": jvmParser,
		".js":   browserParser,
		".jsx":  browserParser,
		".ts":   browserParser,
		".tsx":  browserParser,
		".py":   scriptingParser,
	})
}
