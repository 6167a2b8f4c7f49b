package services

import "fmt"

// ExportRow is one line of an exported quote: either a section heading or an
// item with one formatted cell per column.
type ExportRow struct {
	Section bool
	Index   string // "1", "1.2"
	Cells   []string
}

// ExportAggregate is one line of the calculation results block.
type ExportAggregate struct {
	Label string // "Qty (Sum)"
	Value string
	Error string
}

// ExportData holds everything needed to render a quote to a file.
type ExportData struct {
	Title        string
	ClientName   string
	CreatedDate  string
	Headers      []string
	Numeric      []bool
	Rows         []ExportRow
	Aggregates   []ExportAggregate
	PriceSum     string
	CollabSum    string
	GrandTotal   string
	NetTotal     string
	FormulaError string
}

// BuildExportData lays out a quote and its summary as formatted text.
// Number cells show their effective (row formula) values.
func BuildExportData(title, clientName, createdDate string, quote Quote, summary QuoteSummary, symbol string) ExportData {
	data := ExportData{
		Title:        title,
		ClientName:   clientName,
		CreatedDate:  createdDate,
		PriceSum:     FormatAmount(summary.Totals.PriceSum, symbol),
		CollabSum:    FormatAmount(summary.Totals.CollabSum, symbol),
		GrandTotal:   FormatAmount(summary.Totals.GrandTotal, symbol),
		NetTotal:     FormatAmount(summary.Totals.NetTotal, symbol),
		FormulaError: summary.Totals.Error,
	}

	for _, c := range quote.Columns {
		data.Headers = append(data.Headers, c.Name)
		data.Numeric = append(data.Numeric, c.ValueType == ValueNumber)
	}

	for si, s := range quote.Sections {
		data.Rows = append(data.Rows, ExportRow{
			Section: true,
			Index:   fmt.Sprintf("%d", si+1),
			Cells:   []string{s.Name},
		})
		for ii, it := range s.Items {
			row := ExportRow{Index: fmt.Sprintf("%d.%d", si+1, ii+1)}
			for _, c := range quote.Columns {
				row.Cells = append(row.Cells, exportCell(it, c, summary, symbol))
			}
			data.Rows = append(data.Rows, row)
		}
	}

	for _, a := range summary.Aggregates {
		data.Aggregates = append(data.Aggregates, ExportAggregate{
			Label: fmt.Sprintf("%s (%s)", a.Name, a.CalculationLabel),
			Value: a.Display(symbol),
			Error: a.Error,
		})
	}
	return data
}

func exportCell(it Item, c Column, summary QuoteSummary, symbol string) string {
	switch c.ID {
	case ColumnDescription:
		return it.Description
	case ColumnUnitPrice:
		return FormatAmount(summary.Cells[it.ID][c.ID], symbol)
	}
	switch c.ValueType {
	case ValueNumber:
		return FormatQuantity(summary.Cells[it.ID][c.ID])
	case ValueDate:
		if v, ok := it.CustomFields[c.ID].(string); ok {
			return v
		}
		return ""
	}
	if v, ok := it.CustomFields[c.ID]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}
