package utils

import (
	"path/filepath"

	"github.com/nilp0inter/grace/internal/config"
)

// ResolveImportPath resolves an import path relative to a base directory if
// it is relative. Absolute paths come back unchanged.
func ResolveImportPath(baseDir, importPath string) string {
	if filepath.IsAbs(importPath) {
		return importPath
	}
	if baseDir != "" && baseDir != "." {
		return filepath.Join(baseDir, importPath)
	}
	return filepath.Clean(importPath)
}

// GetModuleDir returns the directory context for a path: the containing
// directory for a source file, the path itself otherwise.
func GetModuleDir(path string) string {
	if config.HasSourceExt(path) {
		return filepath.Dir(path)
	}
	return path
}
