package domain

import "path/filepath"

// WorkingDir tracks the directory the next command runs in. Commands execute
// in discrete subprocesses, so this value, not the process directory, is the
// authoritative notion of "where we are".
type WorkingDir struct {
	path string
}

// NewWorkingDir starts tracking at path.
func NewWorkingDir(path string) *WorkingDir {
	return &WorkingDir{path: filepath.Clean(path)}
}

// Path returns the tracked directory.
func (w *WorkingDir) Path() string {
	return w.path
}

// Set moves the tracker to path. Callers validate the path first.
func (w *WorkingDir) Set(path string) {
	w.path = filepath.Clean(path)
}

// Resolve returns target as an absolute path, relative paths being joined
// onto the tracked directory.
func (w *WorkingDir) Resolve(target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(w.path, target)
}
