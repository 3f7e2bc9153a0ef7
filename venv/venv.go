// Package venv resolves and activates project-scoped Python virtual
// environments without mutating the calling process's own environment.
package venv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrNotFound indicates no environment exists at the expected path.
	ErrNotFound = errors.New("virtual environment not found")
	// ErrCorrupt indicates a directory exists but lacks the expected
	// virtualenv layout (pyvenv.cfg plus a bin directory).
	ErrCorrupt = errors.New("virtual environment is corrupt")
	// ErrToolMissing indicates a tool is not installed in the environment.
	ErrToolMissing = errors.New("tool not found in virtual environment")
)

// Env represents a resolved virtual environment.
type Env struct {
	// Root is the absolute path to the environment directory.
	Root string
	// Bin is the absolute path to the environment's executable directory.
	Bin string
}

// binDirName returns the platform-specific executable directory name.
func binDirName() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}

// Resolve validates the virtual environment at relPath beneath projectDir.
// It distinguishes a missing environment from a structurally corrupt one so
// callers can report activation failures deterministically.
func Resolve(projectDir, relPath string) (*Env, error) {
	root := relPath
	if !filepath.IsAbs(root) {
		root = filepath.Join(projectDir, relPath)
	}

	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
	}
	if err != nil {
		return nil, fmt.Errorf("statting virtual environment %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrCorrupt, root)
	}

	// pyvenv.cfg is written by both venv and virtualenv and marks the root.
	if _, err := os.Stat(filepath.Join(root, "pyvenv.cfg")); err != nil {
		return nil, fmt.Errorf("%w: %s has no pyvenv.cfg", ErrCorrupt, root)
	}

	bin := filepath.Join(root, binDirName())
	if info, err := os.Stat(bin); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s has no %s directory", ErrCorrupt, root, binDirName())
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path for %s: %w", root, err)
	}

	return &Env{
		Root: abs,
		Bin:  filepath.Join(abs, binDirName()),
	}, nil
}

// Environ reproduces what `source bin/activate` does to a shell, applied to
// a copy of the current process environment: the bin directory is prepended
// to PATH, VIRTUAL_ENV points at the root, and PYTHONHOME is dropped.
func (e *Env) Environ() []string {
	base := os.Environ()
	out := make([]string, 0, len(base)+2)
	pathSet := false

	for _, kv := range base {
		key, value := kv, ""
		if i := strings.IndexByte(kv, '='); i >= 0 {
			key, value = kv[:i], kv[i+1:]
		}
		// Windows spells the variables Path and PythonHome; match keys
		// case-insensitively but keep their original spelling.
		switch {
		case strings.EqualFold(key, "PYTHONHOME"):
			// Activation unsets PYTHONHOME so the venv interpreter wins.
			continue
		case strings.EqualFold(key, "PATH"):
			out = append(out, key+"="+e.Bin+string(os.PathListSeparator)+value)
			pathSet = true
		case strings.EqualFold(key, "VIRTUAL_ENV"):
			continue
		default:
			out = append(out, kv)
		}
	}

	if !pathSet {
		out = append(out, "PATH="+e.Bin)
	}
	out = append(out, "VIRTUAL_ENV="+e.Root)

	return out
}

// Look resolves a tool strictly inside the environment. Tools installed
// system-wide are deliberately not considered: the gate runs with the
// project's pinned tooling or not at all.
func (e *Env) Look(tool string) (string, error) {
	candidates := []string{tool}
	if runtime.GOOS == "windows" {
		candidates = []string{tool + ".exe", tool + ".cmd", tool}
	}

	for _, name := range candidates {
		path := filepath.Join(e.Bin, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if runtime.GOOS != "windows" && info.Mode()&0111 == 0 {
			continue
		}
		return path, nil
	}

	return "", fmt.Errorf("%w: %s (looked in %s)", ErrToolMissing, tool, e.Bin)
}
