package localfs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Source exposes a directory tree of raw course files. Paths returned by List
// are slash-separated and relative to the base, which is what breadcrumb
// derivation expects.
type Source struct {
	basePath string
	supports func(relPath string) bool
}

func New(basePath string, supports func(relPath string) bool) (*Source, error) {
	if basePath == "" {
		basePath = "./data/raw"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create course files dir: %w", err)
	}
	return &Source{basePath: basePath, supports: supports}, nil
}

func (s *Source) List(_ context.Context) ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if s.supports == nil || s.supports(rel) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk course files: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Source) Open(_ context.Context, relPath string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.basePath, filepath.FromSlash(relPath)))
	if err != nil {
		return nil, fmt.Errorf("open course file: %w", err)
	}
	return f, nil
}
