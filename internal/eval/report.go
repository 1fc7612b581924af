package eval

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WriteReport renders the comparison rows as an XLSX workbook. The matching
// lines column is a reading convenience, not a score.
func WriteReport(path string, rows []Row) error {
	f := excelize.NewFile()
	const sheet = "Evaluation"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defIdx, _ := f.GetSheetIndex("Sheet1"); defIdx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{"Identifier", "Generated", "Ground Truth", "Matching Lines"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, r := range rows {
		values := []any{
			r.Identifier,
			strings.TrimSpace(r.Generated),
			r.GroundTruth,
			matchingLines(r.Generated, r.GroundTruth),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}

// matchingLines counts generated lines that appear verbatim in the ground
// truth, whitespace-trimmed.
func matchingLines(generated, truth string) int {
	want := make(map[string]int)
	for _, line := range strings.Split(truth, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			want[line]++
		}
	}
	n := 0
	for _, line := range strings.Split(generated, "\n") {
		line = strings.TrimSpace(line)
		if want[line] > 0 {
			want[line]--
			n++
		}
	}
	return n
}
