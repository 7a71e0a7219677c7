// Package extractor turns raw course files into plain text for chunking.
// One extractor per file format; CSV and XLSX yield one text per data row so
// tables like grade-weight breakdowns stay retrievable as units.
package extractor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

type extractFunc func(relPath string, r io.Reader) ([]string, error)

type Registry struct {
	byExt map[string]extractFunc
}

func NewRegistry() *Registry {
	return &Registry{
		byExt: map[string]extractFunc{
			".md":   extractPlaintext,
			".txt":  extractPlaintext,
			".pdf":  extractPDF,
			".csv":  extractCSV,
			".xlsx": extractXLSX,
		},
	}
}

func (reg *Registry) Supports(relPath string) bool {
	_, ok := reg.byExt[normalizeExt(relPath)]
	return ok
}

func (reg *Registry) Extract(_ context.Context, relPath string, r io.Reader) ([]string, error) {
	ext := normalizeExt(relPath)
	fn, ok := reg.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type %q: %s", ext, relPath)
	}
	texts, err := fn(relPath, r)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", relPath, err)
	}

	out := texts[:0]
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// Format returns the format tag stored on Document records ("md", "pdf", ...).
func Format(relPath string) string {
	return strings.TrimPrefix(normalizeExt(relPath), ".")
}

func normalizeExt(relPath string) string {
	return strings.ToLower(filepath.Ext(relPath))
}
