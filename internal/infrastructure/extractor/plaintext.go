package extractor

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

func extractPlaintext(relPath string, r io.Reader) ([]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("not valid utf-8: %s", relPath)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, nil
	}
	return []string{text}, nil
}
