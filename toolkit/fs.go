package toolkit

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxListEntries caps recursive listings.
const maxListEntries = 2000

// ReadResult is the outcome of a file read.
type ReadResult struct {
	Status
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
}

// WriteResult is the outcome of a file write.
type WriteResult struct {
	Status
	Path  string `json:"path"`
	Bytes int    `json:"bytes,omitempty"`
}

// ListResult is the outcome of a recursive listing.
type ListResult struct {
	Status
	Base  string   `json:"base"`
	Items []string `json:"items,omitempty"`
}

// Store provides file operations confined under an allowed root.
// Relative paths resolve against the base directory; absolute paths stand on
// their own. Either way the resolved path must sit under the allowed root or
// the operation fails before any I/O happens.
type Store struct {
	base string
	root string
}

// NewStore creates a Store with base as the default write root and
// allowedRoot as the widest permitted ancestor. An empty allowedRoot
// confines operations to the base directory itself.
func NewStore(base, allowedRoot string) (*Store, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("store: resolve base: %w", err)
	}
	if err := os.MkdirAll(absBase, 0o755); err != nil {
		return nil, fmt.Errorf("store: create base: %w", err)
	}

	root := allowedRoot
	if root == "" {
		root = absBase
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("store: resolve allowed root: %w", err)
	}
	return &Store{base: absBase, root: absRoot}, nil
}

// Base returns the default write root.
func (s *Store) Base() string { return s.base }

// resolve canonicalizes path and enforces the allowed root.
func (s *Store) resolve(path string) (string, error) {
	p := path
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.base, p)
	}
	p = filepath.Clean(p)

	if p != s.root && !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes allowed root %q", path, s.root)
	}
	return p, nil
}

// Read returns UTF-8 text tail-truncated to keep model context small.
func (s *Store) Read(path string) ReadResult {
	full, err := s.resolve(path)
	if err != nil {
		return ReadResult{Status: Failure(err.Error()), Path: path}
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return ReadResult{Status: Failure(err.Error()), Path: path}
	}
	return ReadResult{
		Status:  Status{OK: true},
		Path:    full,
		Content: TailLimit(string(data), MaxReadChars),
	}
}

// Write creates parent directories as needed and writes UTF-8 text.
func (s *Store) Write(path, content string) WriteResult {
	full, err := s.resolve(path)
	if err != nil {
		return WriteResult{Status: Failure(err.Error()), Path: path}
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return WriteResult{Status: Failure(err.Error()), Path: path}
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return WriteResult{Status: Failure(err.Error()), Path: path}
	}
	return WriteResult{Status: Status{OK: true}, Path: full, Bytes: len(content)}
}

// List walks the tree under path (the base directory when empty), returning
// base-relative entries, optionally filtered by glob patterns matched against
// entry names, capped at maxListEntries.
func (s *Store) List(path string, patterns []string) ListResult {
	target := s.base
	if path != "" {
		full, err := s.resolve(path)
		if err != nil {
			return ListResult{Status: Failure(err.Error()), Base: path}
		}
		target = full
	}

	var items []string
	err := filepath.WalkDir(target, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == target {
			return nil
		}
		if len(patterns) == 0 || matchAny(d.Name(), patterns) {
			rel, relErr := filepath.Rel(s.base, p)
			if relErr != nil {
				rel = p
			}
			items = append(items, rel)
			if len(items) >= maxListEntries {
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return ListResult{Status: Failure(err.Error()), Base: target}
	}
	return ListResult{Status: Status{OK: true}, Base: target, Items: items}
}

func matchAny(name string, patterns []string) bool {
	for _, pat := range patterns {
		if ok, _ := filepath.Match(pat, name); ok {
			return true
		}
	}
	return false
}
