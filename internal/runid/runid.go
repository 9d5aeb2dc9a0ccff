// Package runid issues sequential run identifiers with explicit file
// persistence. The generator is injected where a run identifier is needed so
// there is no hidden global counter state.
package runid

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Generator produces unique run identifiers.
type Generator interface {
	Next() (string, error)
}

// FileCounter persists an incrementing counter in a plain text file and
// formats identifiers as run001, run002, ...
type FileCounter struct {
	path string
}

// NewFileCounter returns a generator backed by the given counter file. The
// parent directory is created on first use.
func NewFileCounter(path string) *FileCounter {
	return &FileCounter{path: path}
}

// Next increments and persists the counter, returning the new identifier.
func (f *FileCounter) Next() (string, error) {
	prev := 0
	if b, err := os.ReadFile(f.path); err == nil {
		prev, err = strconv.Atoi(strings.TrimSpace(string(b)))
		if err != nil {
			return "", fmt.Errorf("run counter %s is corrupt: %w", f.path, err)
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}

	next := prev + 1
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(f.path, []byte(strconv.Itoa(next)), 0o644); err != nil {
		return "", err
	}
	return fmt.Sprintf("run%03d", next), nil
}
