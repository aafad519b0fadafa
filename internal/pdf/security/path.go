// Package security keeps every file the server touches inside one directory.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator provides security validation for file paths
type PathValidator struct {
	configuredDirectory string
}

// NewPathValidator creates a new path validator for the given directory
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if configuredDirectory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	absDir, err := filepath.Abs(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	return &PathValidator{configuredDirectory: absDir}, nil
}

// GetConfiguredDirectory returns the configured directory path
func (v *PathValidator) GetConfiguredDirectory() string {
	return v.configuredDirectory
}

// ResolvePath strips NUL bytes, anchors relative paths at the configured
// directory and returns the absolute path if it stays inside that directory.
func (v *PathValidator) ResolvePath(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.configuredDirectory, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	isWithin, err := v.IsPathWithinDirectory(absPath)
	if err != nil {
		return "", fmt.Errorf("path validation failed: %w", err)
	}
	if !isWithin {
		return "", fmt.Errorf("path is outside configured directory: %s", path)
	}

	return absPath, nil
}

// ValidatePath checks if a path is within the configured directory
func (v *PathValidator) ValidatePath(path string) error {
	_, err := v.ResolvePath(path)
	return err
}

// ResolveOutputPath validates the destination of a filled form. The file must
// have a .pdf extension, its directory must already exist inside the
// configured directory, and it may only replace an existing file (including
// the input) when allowOverwrite is set.
func (v *PathValidator) ResolveOutputPath(path, inputPath string, allowOverwrite bool) (string, error) {
	absPath, err := v.ResolvePath(path)
	if err != nil {
		return "", err
	}

	if !strings.EqualFold(filepath.Ext(absPath), ".pdf") {
		return "", fmt.Errorf("output file must have a .pdf extension: %s", path)
	}

	info, err := os.Stat(filepath.Dir(absPath))
	if err != nil {
		return "", fmt.Errorf("output directory is not accessible: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("output parent is not a directory: %s", filepath.Dir(absPath))
	}

	if allowOverwrite {
		return absPath, nil
	}

	if inputPath != "" && filepath.Clean(absPath) == filepath.Clean(inputPath) {
		return "", fmt.Errorf("output path must differ from the input path: %s", path)
	}
	if _, err := os.Lstat(absPath); err == nil {
		return "", fmt.Errorf("output file already exists: %s", path)
	}

	return absPath, nil
}

// IsPathWithinDirectory checks if a path is within the configured directory.
// Symlinks are resolved for the path itself, or for its parent when the path
// does not exist yet.
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(v.configuredDirectory)

	realDir := cleanDir
	if resolved, err := filepath.EvalSymlinks(cleanDir); err == nil {
		realDir = resolved
	}

	realPath := cleanPath
	if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
		realPath = resolved
	} else if resolvedParent, err := filepath.EvalSymlinks(filepath.Dir(cleanPath)); err == nil {
		realPath = filepath.Join(resolvedParent, filepath.Base(cleanPath))
	}

	pathOk := within(cleanPath, cleanDir) || within(cleanPath, realDir)
	realPathOk := within(realPath, cleanDir) || within(realPath, realDir)

	return pathOk && realPathOk, nil
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	dirWithSep := dir
	if !strings.HasSuffix(dirWithSep, string(filepath.Separator)) {
		dirWithSep += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dirWithSep)
}
