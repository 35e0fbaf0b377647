package scripting

import (
	"strings"

	"github.com/viant/codegraph/graph"
)

// parseParameters parses a Python parameter list's raw text (already
// extracted between the def's parens) into graph.Parameter values, handling
// `name`, `name: T`, `name = default`, `name: T = default`, and skipping
// `self`, `cls`, and `*args`/`**kwargs` placeholders.
func parseParameters(raw string) []graph.Parameter {
	parts := splitArgList(raw)
	var out []graph.Parameter
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == "self" || part == "cls" {
			continue
		}
		if strings.HasPrefix(part, "*") {
			continue
		}

		name := part
		var typ, def string
		if idx := strings.Index(name, "="); idx >= 0 {
			def = strings.TrimSpace(name[idx+1:])
			name = strings.TrimSpace(name[:idx])
		}
		if idx := strings.Index(name, ":"); idx >= 0 {
			typ = strings.TrimSpace(name[idx+1:])
			name = strings.TrimSpace(name[:idx])
		}
		if name == "" {
			continue
		}
		out = append(out, graph.Parameter{
			Name:     name,
			Type:     typ,
			Optional: def != "",
			Default:  def,
		})
	}
	return out
}
