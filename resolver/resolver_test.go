package resolver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/codegraph/resolver"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolver_RelativeLiteral(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "utils.js"), "export const x = 1;")
	writeFile(t, filepath.Join(root, "src", "app.js"), "import './utils';")

	r := resolver.New(root)
	resolved, ok := r.Resolve(filepath.Join(root, "src", "app.js"), "./utils")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(root, "src", "utils.js"), resolved)
}

func TestResolver_IndexFolderFallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "widgets", "index.js"), "export default {};")
	writeFile(t, filepath.Join(root, "src", "app.js"), "import './widgets';")

	r := resolver.New(root)
	resolved, ok := r.Resolve(filepath.Join(root, "src", "app.js"), "./widgets")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(root, "src", "widgets", "index.js"), resolved)
}

func TestResolver_AliasedLiteral(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "lib", "format.ts"), "export {};")
	writeFile(t, filepath.Join(root, "src", "app.ts"), "import '@/lib/format';")

	r := resolver.New(root)
	resolved, ok := r.Resolve(filepath.Join(root, "src", "app.ts"), "@/lib/format")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(root, "src", "lib", "format.ts"), resolved)
}

func TestResolver_ExternalLiteralYieldsNone(t *testing.T) {
	root := t.TempDir()
	r := resolver.New(root)
	_, ok := r.Resolve(filepath.Join(root, "src", "app.js"), "react")
	assert.False(t, ok)
}

func TestResolver_WildcardYieldsNone(t *testing.T) {
	root := t.TempDir()
	r := resolver.New(root)
	_, ok := r.Resolve(filepath.Join(root, "App.java"), "*")
	assert.False(t, ok)
}

func TestResolver_JVMPackageBySourceRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "main", "java", "com", "example", "service", "WidgetService.java"), "package com.example.service;")
	writeFile(t, filepath.Join(root, "src", "main", "java", "com", "example", "api", "WidgetController.java"), "package com.example.api;")

	r := resolver.New(root)
	resolved, ok := r.Resolve(
		filepath.Join(root, "src", "main", "java", "com", "example", "api", "WidgetController.java"),
		"com.example.service.WidgetService",
	)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(root, "src", "main", "java", "com", "example", "service", "WidgetService.java"), resolved)
}

func TestResolver_JVMStdlibPrefixYieldsNone(t *testing.T) {
	root := t.TempDir()
	r := resolver.New(root)
	_, ok := r.Resolve(filepath.Join(root, "App.java"), "java.util.List")
	assert.False(t, ok)
}

func TestResolver_JVMWorkspaceWideFallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "legacy", "tools", "Helper.java"), "package com.legacy.tools;")

	r := resolver.New(root)
	resolved, ok := r.Resolve(filepath.Join(root, "App.java"), "com.legacy.tools.Helper")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(root, "legacy", "tools", "Helper.java"), resolved)
}
