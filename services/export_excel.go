package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateExcel creates an Excel file from the given ExportData and returns
// the file contents as a byte slice.
func GenerateExcel(data ExportData, sheetName string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Sheet names are limited to 31 chars.
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Quote"
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	// Column A holds the row index, quote columns start at B.
	lastColNum := len(data.Headers) + 1
	lastCol, err := excelize.ColumnNumberToName(lastColNum)
	if err != nil {
		return nil, fmt.Errorf("last column name: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", "A", 6); err != nil {
		return nil, fmt.Errorf("set col width A: %w", err)
	}
	if lastColNum > 1 {
		if err := f.SetColWidth(sheetName, "B", lastCol, 18); err != nil {
			return nil, fmt.Errorf("set col widths: %w", err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#EEEEEE"}, Pattern: 1},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create section style: %w", err)
	}

	itemStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create item style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// ── Header Rows (1-3) ───────────────────────────────────────────────

	if err := mergeRow(f, sheetName, "A", lastCol, 1); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(data.Title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	if data.ClientName != "" {
		if err := mergeRow(f, sheetName, "A", lastCol, 2); err != nil {
			return nil, fmt.Errorf("merge client: %w", err)
		}
		f.SetCellValue(sheetName, "A2", "Client: "+sanitizeExcelCell(data.ClientName))
		f.SetCellStyle(sheetName, "A2", lastCol+"2", subtitleStyle)
	}

	if err := mergeRow(f, sheetName, "A", lastCol, 3); err != nil {
		return nil, fmt.Errorf("merge date: %w", err)
	}
	f.SetCellValue(sheetName, "A3", "Date: "+data.CreatedDate)
	f.SetCellStyle(sheetName, "A3", lastCol+"3", subtitleStyle)

	// ── Row 5: Column Headers ───────────────────────────────────────────

	f.SetCellValue(sheetName, "A5", "#")
	for i, h := range data.Headers {
		cell, err := excelize.CoordinatesToCellName(i+2, 5)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		f.SetCellValue(sheetName, cell, sanitizeExcelCell(h))
	}
	f.SetCellStyle(sheetName, "A5", lastCol+"5", headerStyle)

	// ── Data Rows (starting row 6) ──────────────────────────────────────

	row := 6
	for _, r := range data.Rows {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "A"+rowStr, r.Index)

		if r.Section {
			if lastColNum > 2 {
				if err := mergeRow(f, sheetName, "B", lastCol, row); err != nil {
					return nil, fmt.Errorf("merge section: %w", err)
				}
			}
			if len(r.Cells) > 0 {
				f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(r.Cells[0]))
			}
			f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, sectionStyle)
			row++
			continue
		}

		for i, v := range r.Cells {
			cell, err := excelize.CoordinatesToCellName(i+2, row)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			f.SetCellValue(sheetName, cell, sanitizeExcelCell(v))
		}
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, itemStyle)
		row++
	}

	// ── Summary Rows ────────────────────────────────────────────────────

	row++
	labelCol, valueCol := "A", "B"
	if lastColNum > 2 {
		labelCol, err = excelize.ColumnNumberToName(lastColNum - 1)
		if err != nil {
			return nil, fmt.Errorf("label column: %w", err)
		}
		valueCol = lastCol
	}

	writeSummary := func(label, value string) {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, labelCol+rowStr, sanitizeExcelCell(label))
		f.SetCellStyle(sheetName, labelCol+rowStr, labelCol+rowStr, summaryLabelStyle)
		f.SetCellValue(sheetName, valueCol+rowStr, value)
		f.SetCellStyle(sheetName, valueCol+rowStr, valueCol+rowStr, summaryValueStyle)
		row++
	}

	for _, a := range data.Aggregates {
		writeSummary(a.Label+":", a.Value)
	}
	writeSummary("Grand Total:", data.GrandTotal)
	writeSummary("Collaborators:", data.CollabSum)
	writeSummary("Net Total:", data.NetTotal)
	if data.FormulaError != "" {
		writeSummary("Formula warning:", sanitizeExcelCell(data.FormulaError))
	}

	// ── Write to buffer ─────────────────────────────────────────────────

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// mergeRow merges from..to on one row. A single-cell span is left alone.
func mergeRow(f *excelize.File, sheet, from, to string, row int) error {
	if from == to {
		return nil
	}
	return f.MergeCell(sheet, fmt.Sprintf("%s%d", from, row), fmt.Sprintf("%s%d", to, row))
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
