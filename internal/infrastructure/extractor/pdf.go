package extractor

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls text page by page, keeping page markers so slide-deck
// boundaries survive chunking. Image-only pages are skipped; OCR is out of
// scope.
func extractPDF(relPath string, r io.Reader) ([]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	var parts []string
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// One unreadable page should not sink the whole document.
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[PAGE %d]\n%s", pageNum, pageText))
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("no extractable text in pdf: %s", relPath)
	}
	return []string{strings.Join(parts, "\n\n")}, nil
}
