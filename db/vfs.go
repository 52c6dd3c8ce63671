package db

import (
	"os"
	"path/filepath"
)

// OSFileSystem reads schema files from the local filesystem.
type OSFileSystem struct{}

// ReadFile implements FileSystem.
func (OSFileSystem) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MapFileSystem is an in-memory FileSystem, used by tests.
type MapFileSystem map[string]string

// ReadFile implements FileSystem.
func (m MapFileSystem) ReadFile(path string) (string, error) {
	text, ok := m[path]
	if !ok {
		return "", os.ErrNotExist
	}
	return text, nil
}

// resolveImportPath resolves an import statement's path string relative to
// the directory of the file containing it, mirroring original_source's
// Importer::import_path in database/ir.rs.
func resolveImportPath(importingFile, importPath string) string {
	dir := filepath.Dir(importingFile)
	return filepath.Join(dir, importPath)
}
