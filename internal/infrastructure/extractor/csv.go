package extractor

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// extractCSV flattens each data row to "column: value" lines and returns one
// text per row, so a row of a grade-weight table becomes its own document.
func extractCSV(_ string, r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var texts []string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if text := flattenRow(header, record); text != "" {
			texts = append(texts, text)
		}
	}
	return texts, nil
}

func flattenRow(header, record []string) string {
	var lines []string
	for i, val := range record {
		val = strings.TrimSpace(val)
		if val == "" {
			continue
		}
		col := fmt.Sprintf("column_%d", i+1)
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			col = strings.TrimSpace(header[i])
		}
		lines = append(lines, col+": "+val)
	}
	return strings.Join(lines, "\n")
}
