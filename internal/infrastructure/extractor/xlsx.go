package extractor

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// extractXLSX treats the first row of each sheet as a header and flattens the
// remaining rows the same way as CSV. Sheet names are prepended so schedule
// tabs keep their context.
func extractXLSX(_ string, r io.Reader) ([]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer wb.Close()

	var texts []string
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}
		header := rows[0]
		for _, record := range rows[1:] {
			if text := flattenRow(header, record); text != "" {
				texts = append(texts, "sheet: "+sheet+"\n"+text)
			}
		}
	}
	return texts, nil
}
