package graph

import "strconv"

// Identifier formation. The scheme is `<file>:<kind>:<name>[:<line>]` for
// top-level entities; nested identifiers concatenate the parent id with a
// `$` separator so every node id encodes its ownership chain (spec §3,
// "Identifier scheme"). The exact separator is an Open Question the spec
// leaves to the implementation provided ids stay a pure function of file,
// kind, name and (for functions) start line — see DESIGN.md.

// TopLevelID builds the id of a node with no parent.
func TopLevelID(file string, kind Kind, name string, startLine int) string {
	id := file + ":" + string(kind) + ":" + name
	if needsLine(kind) {
		id += ":" + strconv.Itoa(startLine)
	}
	return id
}

// ChildID builds the id of a node owned by parentID.
func ChildID(parentID string, kind Kind, name string, startLine int) string {
	id := parentID + "$" + string(kind) + ":" + name
	if needsLine(kind) {
		id += ":" + strconv.Itoa(startLine)
	}
	return id
}

// needsLine reports whether a kind's name alone is not reliably unique
// within its owner (functions/methods can be overloaded or locally
// redeclared; fields, classes, modules are not).
func needsLine(kind Kind) bool {
	switch kind {
	case KindFunction, KindMethod:
		return true
	default:
		return false
	}
}
