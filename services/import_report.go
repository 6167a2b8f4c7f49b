package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportIssue is a single cell-level problem found in a pasted table.
type ImportIssue struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
}

// ImportCheck is returned after dry-running an import against a quote.
type ImportCheck struct {
	TotalRows int           `json:"total_rows"`
	ValidRows int           `json:"valid_rows"`
	IssueRows int           `json:"issue_rows"`
	Issues    []ImportIssue `json:"issues"`
}

// CheckImport reports the cells ApplyImport would silently coerce: values in
// number columns that do not parse, and fields that fill no column.
// Row numbers are 1-based and count the header row.
func CheckImport(quote Quote, sectionIndex int, rows [][]string) (ImportCheck, error) {
	if sectionIndex < 0 || sectionIndex >= len(quote.Sections) {
		return ImportCheck{}, fmt.Errorf("%w: index %d", ErrSectionNotFound, sectionIndex)
	}

	var columns []Column
	var targets []int
	if sectionIndex == 0 {
		res, err := ImportRows(rows)
		if err != nil {
			return ImportCheck{}, err
		}
		// ImportRows prepends the reserved columns the header did not name.
		columns = res.Columns[len(res.Columns)-len(rows[0]):]
		for j := range columns {
			targets = append(targets, j)
		}
	} else {
		if len(rows) < 2 {
			return ImportCheck{}, fmt.Errorf("table must contain a header row and at least one data row")
		}
		columns = quote.Columns
		targets = sectionTargets(rows, columns)
	}

	check := ImportCheck{TotalRows: len(rows) - 1}
	for i, row := range rows[1:] {
		rowNum := i + 2
		var issues []ImportIssue

		for j, cell := range row {
			if j >= len(targets) || targets[j] < 0 {
				if strings.TrimSpace(cell) != "" {
					issues = append(issues, ImportIssue{
						Row:     rowNum,
						Column:  fmt.Sprintf("Column %d", j+1),
						Message: "no matching column; value dropped",
					})
				}
				continue
			}
			c := columns[targets[j]]
			if c.ValueType != ValueNumber || strings.TrimSpace(cell) == "" {
				continue
			}
			if _, ok := parseNumber(cell); !ok {
				issues = append(issues, ImportIssue{
					Row:     rowNum,
					Column:  c.Name,
					Message: fmt.Sprintf("%q is not a number; imported as 0", cell),
				})
			}
		}

		if len(issues) > 0 {
			check.IssueRows++
			check.Issues = append(check.Issues, issues...)
		} else {
			check.ValidRows++
		}
	}
	return check, nil
}

// GenerateImportReport creates a downloadable .xlsx file from import issues.
func GenerateImportReport(issues []ImportIssue) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Issues"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Column")
	f.SetCellValue(sheet, "C1", "Issue")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range issues {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, sanitizeExcelCell(e.Column))
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write import report: %w", err)
	}
	return buf.Bytes(), nil
}
