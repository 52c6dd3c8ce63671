package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSchema(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompileWritesGeneratedSource(t *testing.T) {
	dir := t.TempDir()
	root := writeSchema(t, dir, "root.phenix", "struct point {\n\tx: i32,\n\ty: i32,\n}\n")

	out := filepath.Join(dir, "out")
	c := New(Options{
		RootPath:    root,
		OutputDir:   out,
		ImportPath:  "example.com/geo",
		RootPackage: "geo",
	})

	result, err := c.Compile()
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "types.go", result.Files[0])

	generated, err := os.ReadFile(filepath.Join(out, "types.go"))
	require.NoError(t, err)
	assert.Contains(t, string(generated), "type Point struct {")
	assert.Contains(t, string(generated), "package geo")
}

func TestCompileSurfacesUnresolvedFieldDiagnostic(t *testing.T) {
	dir := t.TempDir()
	root := writeSchema(t, dir, "root.phenix", "struct widget {\n\tcount: doesnotexist,\n}\n")

	out := filepath.Join(dir, "out")
	c := New(Options{RootPath: root, OutputDir: out, ImportPath: "example.com/app", RootPackage: "app"})

	result, err := c.Compile()
	require.NoError(t, err)
	require.NotEmpty(t, result.Diagnostics)
	assert.Contains(t, result.Diagnostics[0].Message, "widget")
}

func TestWatchRunsOnceWithNoWatcher(t *testing.T) {
	dir := t.TempDir()
	root := writeSchema(t, dir, "root.phenix", "struct point {\n\tx: i32,\n}\n")

	out := filepath.Join(dir, "out")
	c := New(Options{RootPath: root, OutputDir: out, ImportPath: "example.com/geo", RootPackage: "geo"})

	calls := 0
	err := c.Watch(NoWatcher{}, func(Result, error) { calls++ })
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
