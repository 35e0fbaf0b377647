// Package resolver turns an import literal found in a source file into an
// absolute path elsewhere in the workspace (spec §4.2). It mirrors the
// teacher's directory-walk idioms (inspector/repository/detector.go's
// upward os.Stat probing, inspector/golang/imports.go's candidate-root
// search over GOROOT/GOPATH/module cache) but walks forward into a
// workspace instead of outward to a system root.
package resolver

import (
	"os"
	"path/filepath"
	"strings"
)

// Extensions lists a language's canonical source-file extensions, tried in
// order when probing a relative/aliased import literal.
type Extensions []string

// Resolver resolves import literals against a workspace root.
type Resolver struct {
	root           string
	extensions     map[string]Extensions // keyed by file's own language extension, e.g. ".js"
	jvmRoots       []string              // fixed JVM source roots tried after dot-to-slash conversion
	stdlibPrefixes []string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithExtensions registers the candidate extension list tried for files
// whose own extension is key (e.g. ".jsx" files pull in ".js"/".jsx"/".ts"
// siblings).
func WithExtensions(key string, exts Extensions) Option {
	return func(r *Resolver) { r.extensions[key] = exts }
}

// WithJVMSourceRoots overrides the fixed list of source roots tried for
// JVM package imports (default: "src/main/java", "src/test/java", "src").
func WithJVMSourceRoots(roots []string) Option {
	return func(r *Resolver) { r.jvmRoots = roots }
}

// New returns a Resolver rooted at workspace root.
func New(root string, opts ...Option) *Resolver {
	r := &Resolver{
		root:       root,
		extensions: map[string]Extensions{},
		jvmRoots:   []string{"src/main/java", "src/test/java", "src"},
		stdlibPrefixes: []string{
			"java.", "javax.", "jakarta.",
			"org.springframework.", "org.junit.", "org.slf4j.",
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if len(r.extensions) == 0 {
		r.extensions[".js"] = Extensions{".js", ".jsx", ".ts", ".tsx"}
		r.extensions[".jsx"] = r.extensions[".js"]
		r.extensions[".ts"] = r.extensions[".js"]
		r.extensions[".tsx"] = r.extensions[".js"]
		r.extensions[".py"] = Extensions{".py"}
	}
	return r
}

// Resolve resolves literal, imported from sourceFile, to an absolute path
// in the workspace. It returns ok=false when the literal is external,
// wildcard, or otherwise unresolvable.
func (r *Resolver) Resolve(sourceFile, literal string) (resolved string, ok bool) {
	switch {
	case literal == "*" || strings.HasSuffix(literal, ".*"):
		return "", false

	case strings.HasPrefix(literal, "@/"):
		return r.resolveCandidate(filepath.Join(r.root, "src", strings.TrimPrefix(literal, "@/")), sourceFile)

	case strings.HasPrefix(literal, ".") || strings.HasPrefix(literal, "/"):
		base := literal
		if !filepath.IsAbs(literal) {
			base = filepath.Join(filepath.Dir(sourceFile), literal)
		}
		return r.resolveCandidate(base, sourceFile)

	case isJVMPackageLiteral(literal):
		return r.resolveJVMPackage(literal)

	default:
		return "", false
	}
}

// resolveCandidate tries literal as a file path directly, then with each
// candidate extension appended, then as a directory with an index file.
func (r *Resolver) resolveCandidate(base, sourceFile string) (string, bool) {
	if fileExists(base) {
		return base, true
	}

	exts := r.extensions[filepath.Ext(sourceFile)]
	for _, ext := range exts {
		if candidate := base + ext; fileExists(candidate) {
			return candidate, true
		}
	}
	for _, ext := range exts {
		if candidate := filepath.Join(base, "index"+ext); fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// isJVMPackageLiteral reports whether literal looks like a dotted JVM
// package/class reference rather than a relative path.
func isJVMPackageLiteral(literal string) bool {
	return strings.Contains(literal, ".") && !strings.ContainsAny(literal, "/\\")
}

// resolveJVMPackage converts a dotted package.Class literal into a source
// path under one of the fixed JVM source roots, falling back to a
// workspace-wide filename search when no root matches.
func (r *Resolver) resolveJVMPackage(literal string) (string, bool) {
	for _, prefix := range r.stdlibPrefixes {
		if strings.HasPrefix(literal, prefix) {
			return "", false
		}
	}

	relPath := strings.ReplaceAll(literal, ".", string(filepath.Separator)) + ".java"
	for _, srcRoot := range r.jvmRoots {
		candidate := filepath.Join(r.root, srcRoot, relPath)
		if fileExists(candidate) {
			return candidate, true
		}
	}

	className := literal
	if idx := strings.LastIndex(literal, "."); idx >= 0 {
		className = literal[idx+1:]
	}
	return r.findByFileName(className + ".java")
}

// findByFileName walks the workspace and returns the first file whose base
// name matches, mirroring the teacher's filepath.Walk directory-scan idiom
// (inspector/java/inspector.go's InspectPackage).
func (r *Resolver) findByFileName(name string) (string, bool) {
	var found string
	_ = filepath.Walk(r.root, func(path string, info os.FileInfo, err error) error {
		if err != nil || found != "" {
			return nil
		}
		if info.IsDir() {
			if isExcludedDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Base(path) == name {
			found = path
		}
		return nil
	})
	if found == "" {
		return "", false
	}
	return found, true
}

func isExcludedDir(name string) bool {
	switch name {
	case "node_modules", ".git", "target", "build", "dist", "__pycache__", ".venv", "vendor":
		return true
	default:
		return false
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
