package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrSectionNotFound = errors.New("section not found")

// ImportResult is the schema and items built from a pasted table.
type ImportResult struct {
	Columns []Column `json:"columns"`
	Items   []Item   `json:"items"`
}

var (
	descriptionHeaderRe = regexp.MustCompile(`(?i)^(description|desc\.?|item|designation|désignation|libellé|label)$`)
	priceHeaderRe       = regexp.MustCompile(`(?i)^(unit\s*price|price|rate|prix|prix\s+unitaire|pu)$`)
	quantityHeaderRe    = regexp.MustCompile(`(?i)^(qty|qte|qté|quantity|quantite|quantité)\.?$`)
)

// ImportPastedTable builds a column schema and items from tabular text whose
// first row is the header.
func ImportPastedTable(text string) (ImportResult, error) {
	rows, err := ParseTable(text)
	if err != nil {
		return ImportResult{}, err
	}
	return ImportRows(rows)
}

// ImportWorkbook is ImportPastedTable for the first sheet of an .xlsx file.
func ImportWorkbook(r io.Reader) (ImportResult, error) {
	rows, err := ReadWorkbookRows(r)
	if err != nil {
		return ImportResult{}, err
	}
	return ImportRows(rows)
}

// ParseTable splits pasted text into rows and fields. Tab separates fields
// when the header holds one, else ';' when present, else ','. Blank lines are
// skipped.
func ParseTable(text string) ([][]string, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("table must contain a header row and at least one data row")
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	reader.Comma = detectSeparator(lines[0])
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse table: %w", err)
	}
	return rows, nil
}

// ReadWorkbookRows returns the non-empty rows of the first sheet.
func ReadWorkbookRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	all, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	var rows [][]string
	for _, row := range all {
		if !blankRow(row) {
			rows = append(rows, row)
		}
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows, nil
}

func detectSeparator(header string) rune {
	switch {
	case strings.Contains(header, "\t"):
		return '\t'
	case strings.Contains(header, ";"):
		return ';'
	}
	return ','
}

// ImportRows infers the schema from rows[0] and the values below it.
func ImportRows(rows [][]string) (ImportResult, error) {
	if len(rows) < 2 {
		return ImportResult{}, fmt.Errorf("table must contain a header row and at least one data row")
	}
	header, data := rows[0], rows[1:]

	used := make(map[string]bool)
	columns := make([]Column, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		id := classifyHeader(name)
		if id == "" || used[id] {
			id = NewColumnID()
			for used[id] {
				id = NewColumnID()
			}
		}
		used[id] = true
		if name == "" {
			name = fmt.Sprintf("Column %d", i+1)
		}

		col := Column{ID: id, Name: name, ValueType: ValueText}
		switch {
		case id == ColumnDescription:
		case id == ColumnUnitPrice:
			col.ValueType = ValueNumber
			col.Calculation = &Calculation{Type: CalcSum}
		case allNumeric(data, i):
			col.ValueType = ValueNumber
		}
		columns[i] = col
	}

	var items []Item
	for _, row := range data {
		items = append(items, itemFromRow(row, columns))
	}

	// Reserved columns the header did not name go first, in default order.
	var missing []Column
	for _, d := range DefaultColumns() {
		if !used[d.ID] {
			missing = append(missing, d)
		}
	}
	columns = append(missing, columns...)

	for i := range items {
		for _, c := range columns {
			if _, ok := items[i].CustomFields[c.ID]; !ok && !c.IsReserved() {
				items[i].CustomFields[c.ID] = DefaultValue(c.ValueType)
			}
		}
	}
	return ImportResult{Columns: columns, Items: items}, nil
}

// ApplyImport pastes rows into the section at sectionIndex. The first
// section takes the imported schema; later sections reuse the schema already
// in place, mapping fields to columns by header, then by position.
func ApplyImport(quote Quote, sectionIndex int, rows [][]string) (Quote, error) {
	if sectionIndex < 0 || sectionIndex >= len(quote.Sections) {
		return quote, fmt.Errorf("%w: index %d", ErrSectionNotFound, sectionIndex)
	}

	out := quote.Clone()
	if sectionIndex == 0 {
		res, err := ImportRows(rows)
		if err != nil {
			return quote, err
		}
		out.Columns = res.Columns
		out.Sections[0].Items = res.Items
		return Normalize(out), nil
	}

	if len(rows) < 2 {
		return quote, fmt.Errorf("table must contain a header row and at least one data row")
	}
	targets := sectionTargets(rows, out.Columns)
	var items []Item
	for _, row := range rows[1:] {
		aligned := make([]string, len(out.Columns))
		for j, cell := range row {
			if j < len(targets) && targets[j] >= 0 {
				aligned[targets[j]] = cell
			}
		}
		items = append(items, itemFromRow(aligned, out.Columns))
	}
	out.Sections[sectionIndex].Items = items
	return Normalize(out), nil
}

// sectionTargets maps each field of a table pasted into a later section to
// the index of the schema column it fills, or -1 when the field is dropped.
//
// Header cells are matched first, by the reserved column they name or by
// variable name. An unmatched field takes the column at its own position,
// unless a header already claimed it. Positions skip the leading reserved
// columns a first-section import prepends when the table is narrower than
// the schema.
func sectionTargets(rows [][]string, columns []Column) []int {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	header := make([]string, width)
	copy(header, rows[0])

	targets := make([]int, width)
	claimed := make([]bool, len(columns))
	for j, h := range header {
		targets[j] = -1
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		id, vname := classifyHeader(name), VariableName(name)
		for ci, c := range columns {
			if claimed[ci] {
				continue
			}
			if (id != "" && c.ID == id) || (vname != "" && c.VariableName() == vname) {
				targets[j], claimed[ci] = ci, true
				break
			}
		}
	}

	var layout []int
	skip := len(columns) - width
	for ci, c := range columns {
		if skip > 0 && c.IsReserved() {
			skip--
			continue
		}
		skip = 0
		layout = append(layout, ci)
	}

	for j := range targets {
		if targets[j] < 0 && j < len(layout) && !claimed[layout[j]] {
			targets[j] = layout[j]
		}
	}
	return targets
}

func itemFromRow(row []string, columns []Column) Item {
	it := Item{ID: NewItemID(), CustomFields: make(map[string]any)}
	for i, c := range columns {
		cell := ""
		if i < len(row) {
			cell = strings.TrimSpace(row[i])
		}
		switch c.ID {
		case ColumnDescription:
			it.Description = cell
			continue
		case ColumnUnitPrice:
			it.UnitPrice, _ = parseNumber(cell)
			continue
		}
		switch c.ValueType {
		case ValueNumber:
			v, _ := parseNumber(cell)
			it.CustomFields[c.ID] = v
		case ValueDate:
			it.CustomFields[c.ID] = convertValue(cell, ValueDate)
		default:
			it.CustomFields[c.ID] = cell
		}
	}
	return it
}

func classifyHeader(name string) string {
	switch {
	case descriptionHeaderRe.MatchString(name):
		return ColumnDescription
	case priceHeaderRe.MatchString(name):
		return ColumnUnitPrice
	case quantityHeaderRe.MatchString(name):
		return ColumnQuantity
	}
	return ""
}

// allNumeric reports whether every data row's value at col parses as a float.
func allNumeric(data [][]string, col int) bool {
	if len(data) == 0 {
		return false
	}
	for _, row := range data {
		if col >= len(row) {
			return false
		}
		if _, ok := parseNumber(row[col]); !ok {
			return false
		}
	}
	return true
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v != finiteOrZero(v) {
		return 0, false
	}
	return v, true
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
