// Package parser defines the common contract every language family
// implements (spec §4.1): a pure function from file bytes to the nodes and
// intra-file edges it contains, isolated from the failures of any other
// file. There is no shared AST walker or base type between families — a
// parser is "a pure function bytes -> (nodes, edges, diagnostics)"
// (DESIGN NOTES), implemented independently per family.
package parser

import (
	"path/filepath"
	"strings"

	"github.com/viant/codegraph/diag"
	"github.com/viant/codegraph/graph"
)

// Result is what a single parser invocation produces for one file.
type Result struct {
	Nodes []*graph.Node
	Edges []*graph.Edge
}

// Parser extracts structural nodes and parent-child edges from one file.
// It must never panic: when the parse itself fails it returns an empty
// Result and a non-nil Diagnostic, never a Go error that would abort a
// whole cycle. Syntax errors that a family's parser tolerates produce no
// Diagnostic; the Result then holds whatever could still be extracted.
type Parser interface {
	// Parse returns the nodes/edges found in content. isEntryHint signals
	// that the caller already believes this file is a workspace entry point
	// (e.g. it matched a canonical entry filename); the browser family uses
	// it to flag the module node IsEntry when the file holds nothing but a
	// root-render call, and the other families ignore it.
	Parse(path string, content []byte, isEntryHint bool) (Result, *diag.Diagnostic)
}

// Family identifies which of the three supported language families a
// parser belongs to.
type Family string

const (
	FamilyJVM       Family = "jvm"
	FamilyBrowser   Family = "browser"
	FamilyScripting Family = "scripting"
)

// Registry dispatches to the right Parser for a file extension.
type Registry struct {
	byExt map[string]Parser
}

// NewRegistry builds a registry from an extension -> Parser map.
func NewRegistry(byExt map[string]Parser) *Registry {
	clone := make(map[string]Parser, len(byExt))
	for k, v := range byExt {
		clone[strings.ToLower(k)] = v
	}
	return &Registry{byExt: clone}
}

// Lookup returns the parser registered for path's extension, if any.
func (r *Registry) Lookup(path string) (Parser, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := r.byExt[ext]
	return p, ok
}

// Extensions lists every extension this registry recognizes.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}

// Parse dispatches path to its registered parser. It returns (nil result,
// false) for an unrecognized extension rather than an error, matching
// analyze_file's documented "empty on unknown extension" failure mode.
func (r *Registry) Parse(path string, content []byte, isEntryHint bool) (Result, *diag.Diagnostic, bool) {
	p, ok := r.Lookup(path)
	if !ok {
		return Result{}, nil, false
	}
	res, d := p.Parse(path, content, isEntryHint)
	return res, d, true
}
