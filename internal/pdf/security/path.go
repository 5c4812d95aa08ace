// Package security confines the files MCP tools read and write to one
// directory
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrOutsideDirectory = errors.New("path is outside the configured directory")
	ErrNotPDF           = errors.New("path does not name a .pdf file")
)

// PathValidator resolves tool paths against a root directory and rejects
// any that escape it, including through symlinks
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator rooted at dir. The directory does not
// have to exist yet.
func NewPathValidator(dir string) (*PathValidator, error) {
	if dir == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}
	return &PathValidator{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute configured directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve returns the absolute form of path. Relative paths are taken from
// the root.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	abs := filepath.Clean(path)

	if !v.contains(abs) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}
	resolved, err := realPath(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	realRoot, err := realPath(v.root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve configured directory: %w", err)
	}
	if !within(resolved, realRoot) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}
	return abs, nil
}

// ResolveInput resolves path and checks it names an existing PDF file
func (v *PathValidator) ResolveInput(path string) (string, error) {
	abs, err := v.Resolve(path)
	if err != nil {
		return "", err
	}
	if !isPDFName(abs) {
		return "", fmt.Errorf("%w: %s", ErrNotPDF, path)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return abs, nil
}

// ResolveOutput resolves path and checks a PDF can be created there: its
// directory must exist and the path itself must not be a directory
func (v *PathValidator) ResolveOutput(path string) (string, error) {
	abs, err := v.Resolve(path)
	if err != nil {
		return "", err
	}
	if !isPDFName(abs) {
		return "", fmt.Errorf("%w: %s", ErrNotPDF, path)
	}
	parent, err := os.Stat(filepath.Dir(abs))
	if err != nil {
		return "", fmt.Errorf("cannot access output directory: %w", err)
	}
	if !parent.IsDir() {
		return "", fmt.Errorf("output directory is not a directory: %s", filepath.Dir(abs))
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return abs, nil
}

func (v *PathValidator) contains(abs string) bool {
	return within(abs, v.root)
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}

// realPath evaluates symlinks in the longest existing prefix of path and
// appends the rest unchanged
func realPath(path string) (string, error) {
	existing := path
	var rest []string
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return path, nil
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}
	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{resolved}, rest...)...), nil
}

func isPDFName(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
