package scripting

import (
	"regexp"
	"strings"

	"github.com/viant/codegraph/graph"
)

var docstringOpenPattern = regexp.MustCompile(`^(?:[a-zA-Z]?)("""|''')`)

// openClass parses a `class Name(Base1, Base2):` header — possibly spanning
// multiple lines when the base-class list contains a line break — pushes a
// class frame, and consumes any accumulated decorators. Returns the index of
// the next unconsumed line.
func (f *fileBuilder) openClass(lines []string, i, indent int) int {
	header, next := joinUntilBalanced(lines, i)
	m := classPattern.FindStringSubmatch(strings.TrimSpace(header))
	if m == nil {
		f.pendingDecorators = nil
		return next
	}
	name := m[1]
	bases := splitArgList(m[3])

	parent := f.parentID()
	id := graph.ChildID(parent, graph.KindClass, name, i+1)
	n := &graph.Node{
		ID:        id,
		Label:     name,
		Kind:      graph.KindClass,
		Language:  "python",
		File:      f.path,
		StartLine: i + 1,
		EndLine:   i + 1,
		Attributes: &graph.Attributes{
			BaseClasses: bases,
			Decorators:  f.pendingDecorators,
			Docstring:   firstDocstring(lines, next),
		},
	}
	f.addNode(n, parent)
	f.pendingDecorators = nil
	f.stack = append(f.stack, frame{node: n, indent: indent, isClass: true})
	return next
}

// openFunction parses a `def name(params) -> Ret:` header — possibly
// spanning multiple lines until paren depth returns to zero — pushes a
// function or method frame (method when the enclosing frame is a class),
// and consumes any accumulated decorators.
func (f *fileBuilder) openFunction(lines []string, i, indent int) int {
	header, next := joinUntilBalanced(lines, i)
	trimmed := strings.TrimSpace(header)
	m := defPattern.FindStringSubmatch(trimmed)
	if m == nil {
		f.pendingDecorators = nil
		return next
	}
	isAsync := m[1] != ""
	name := m[2]

	openParen := strings.Index(trimmed, "(")
	paramsText, returnType := splitSignature(trimmed, openParen)

	kind := graph.KindFunction
	parentIsClass := len(f.stack) > 0 && f.stack[len(f.stack)-1].isClass
	if parentIsClass {
		kind = graph.KindMethod
	}

	parent := f.parentID()
	id := graph.ChildID(parent, kind, name, i+1)
	n := &graph.Node{
		ID:        id,
		Label:     name,
		Kind:      kind,
		Language:  "python",
		File:      f.path,
		StartLine: i + 1,
		EndLine:   i + 1,
		Attributes: &graph.Attributes{
			Parameters: parseParameters(paramsText),
			ReturnType: returnType,
			IsAsync:    isAsync,
			Decorators: f.pendingDecorators,
			Docstring:  firstDocstring(lines, next),
		},
	}
	f.addNode(n, parent)
	f.pendingDecorators = nil
	f.stack = append(f.stack, frame{node: n, indent: indent, isClass: false})
	return next
}

// joinUntilBalanced joins lines starting at i until parenthesis depth
// returns to zero and the joined text ends with a colon (handling
// multi-line signatures and base-class lists). Returns the joined text and
// the index of the first line after the header.
func joinUntilBalanced(lines []string, i int) (string, int) {
	var b strings.Builder
	depth := 0
	j := i
	for j < len(lines) {
		line := lines[j]
		b.WriteString(line)
		b.WriteByte(' ')
		for _, r := range line {
			switch r {
			case '(':
				depth++
			case ')':
				depth--
			}
		}
		j++
		if depth <= 0 && strings.HasSuffix(strings.TrimSpace(line), ":") {
			break
		}
		if depth <= 0 && strings.Contains(line, ":") {
			break
		}
	}
	return b.String(), j
}

// splitSignature splits a `def name(params) -> Ret:` line into its
// parameter text and return-type text.
func splitSignature(line string, openParen int) (params, returnType string) {
	if openParen < 0 {
		return "", ""
	}
	depth := 0
	closeParen := -1
	for idx := openParen; idx < len(line); idx++ {
		switch line[idx] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				closeParen = idx
			}
		}
		if closeParen >= 0 {
			break
		}
	}
	if closeParen < 0 {
		return strings.TrimSpace(line[openParen+1:]), ""
	}
	params = line[openParen+1 : closeParen]

	rest := line[closeParen+1:]
	rest = strings.TrimSuffix(strings.TrimSpace(rest), ":")
	if strings.HasPrefix(rest, "->") {
		returnType = strings.TrimSpace(strings.TrimPrefix(rest, "->"))
	}
	return params, returnType
}

// splitArgList splits a comma-separated base-class list at top-level commas
// (ignoring commas nested inside brackets, e.g. generic bases).
func splitArgList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				if part := strings.TrimSpace(s[start:i]); part != "" {
					out = append(out, part)
				}
				start = i + 1
			}
		}
	}
	if part := strings.TrimSpace(s[start:]); part != "" {
		out = append(out, part)
	}
	return out
}

// firstDocstring returns the contents of the first triple-quoted string
// literal opening a block, if the first non-blank line after the header is
// one.
func firstDocstring(lines []string, from int) string {
	for i := from; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		m := docstringOpenPattern.FindStringSubmatch(trimmed)
		if m == nil {
			return ""
		}
		quote := m[1]
		body := strings.TrimPrefix(trimmed, m[0])
		if idx := strings.Index(body, quote); idx >= 0 {
			return strings.TrimSpace(body[:idx])
		}
		var b strings.Builder
		b.WriteString(body)
		for j := i + 1; j < len(lines); j++ {
			if idx := strings.Index(lines[j], quote); idx >= 0 {
				b.WriteString("\n")
				b.WriteString(lines[j][:idx])
				break
			}
			b.WriteString("\n")
			b.WriteString(lines[j])
		}
		return strings.TrimSpace(b.String())
	}
	return ""
}
