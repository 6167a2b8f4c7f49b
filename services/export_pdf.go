package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Grid widths of the PDF table. The row index takes one unit, the
// description column four and every other column two.
const (
	pdfIndexWidth       = 1
	pdfDescriptionWidth = 4
	pdfColumnWidth      = 2
)

// pdfLayout maps the quote's columns onto the maroto grid.
type pdfLayout struct {
	widths []int
	total  int
}

func newPDFLayout(data ExportData) pdfLayout {
	l := pdfLayout{total: pdfIndexWidth}
	desc := descriptionIndex(data)
	for i := range data.Headers {
		w := pdfColumnWidth
		if i == desc {
			w = pdfDescriptionWidth
		}
		l.widths = append(l.widths, w)
		l.total += w
	}
	return l
}

// descriptionIndex is the position of the first text column, which holds
// the item description in every quote schema.
func descriptionIndex(data ExportData) int {
	for i, numeric := range data.Numeric {
		if !numeric {
			return i
		}
	}
	return -1
}

// GeneratePDF creates a PDF document from quote export data using maroto/v2.
// It returns the raw PDF bytes or an error.
func GeneratePDF(data ExportData) ([]byte, error) {
	layout := newPDFLayout(data)

	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithMaxGridSize(layout.total).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, data, layout)
	addTableHeader(m, data, layout)
	for _, r := range data.Rows {
		addTableRow(m, data, layout, r)
	}
	addSummary(m, data, layout)
	addFooter(m, data, layout)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// addHeader adds the title, client and date to the PDF.
func addHeader(m core.Maroto, data ExportData, l pdfLayout) {
	m.AddRows(
		row.New(12).Add(
			col.New(l.total).Add(
				text.New(data.Title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	left := l.total / 2
	grey := &props.Color{Red: 80, Green: 80, Blue: 80}
	m.AddRows(
		row.New(8).Add(
			col.New(left).Add(
				text.New(fmt.Sprintf("Client: %s", data.ClientName), props.Text{
					Size:  9,
					Align: align.Left,
					Color: grey,
				}),
			),
			col.New(l.total-left).Add(
				text.New(fmt.Sprintf("Date: %s", data.CreatedDate), props.Text{
					Size:  9,
					Align: align.Right,
					Color: grey,
				}),
			),
		),
	)

	m.AddRows(row.New(4))
}

// addTableHeader adds one header cell per quote column.
func addTableHeader(m core.Maroto, data ExportData, l pdfLayout) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerCell := props.Cell{BackgroundColor: headerBg}

	cols := []core.Col{col.New(pdfIndexWidth).Add(text.New("#", headerText)).WithStyle(&headerCell)}
	for i, h := range data.Headers {
		style := headerText
		if !data.Numeric[i] {
			style.Align = align.Left
		}
		cols = append(cols, col.New(l.widths[i]).Add(text.New(h, style)).WithStyle(&headerCell))
	}
	m.AddRows(row.New(8).Add(cols...))
}

// addTableRow adds a section heading or an item row.
func addTableRow(m core.Maroto, data ExportData, l pdfLayout, r ExportRow) {
	if r.Section {
		bg := &props.Color{Red: 235, Green: 235, Blue: 235}
		cell := &props.Cell{BackgroundColor: bg}
		name := ""
		if len(r.Cells) > 0 {
			name = r.Cells[0]
		}
		bold := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left}
		indexText := bold
		indexText.Align = align.Center
		m.AddRows(
			row.New(7).Add(
				col.New(pdfIndexWidth).Add(text.New(r.Index, indexText)).WithStyle(cell),
				col.New(l.total-pdfIndexWidth).Add(text.New(name, bold)).WithStyle(cell),
			),
		)
		return
	}

	baseText := props.Text{Size: 7, Align: align.Center}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	cols := []core.Col{col.New(pdfIndexWidth).Add(text.New(r.Index, baseText))}
	for i := range data.Headers {
		v := ""
		if i < len(r.Cells) {
			v = r.Cells[i]
		}
		style := leftText
		if data.Numeric[i] {
			style = rightText
		}
		cols = append(cols, col.New(l.widths[i]).Add(text.New(v, style)))
	}
	m.AddRows(row.New(7).Add(cols...))
}

// addSummary adds the calculation results and the totals block.
func addSummary(m core.Maroto, data ExportData, l pdfLayout) {
	m.AddRows(row.New(6))

	summaryBg := &props.Color{Red: 240, Green: 240, Blue: 240}
	summaryCell := &props.Cell{BackgroundColor: summaryBg}

	labelStyle := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}
	valueStyle := labelStyle

	valueWidth := l.total / 3
	if valueWidth < 1 {
		valueWidth = 1
	}
	labelWidth := l.total - valueWidth

	addLine := func(label, value string) {
		m.AddRows(
			row.New(8).Add(
				col.New(labelWidth).Add(text.New(label, labelStyle)).WithStyle(summaryCell),
				col.New(valueWidth).Add(text.New(value, valueStyle)).WithStyle(summaryCell),
			),
		)
	}

	for _, a := range data.Aggregates {
		addLine(a.Label, a.Value)
	}
	addLine("Grand Total", data.GrandTotal)
	addLine("Collaborators", data.CollabSum)
	addLine("Net Total", data.NetTotal)

	if data.FormulaError != "" {
		m.AddRows(
			row.New(8).Add(
				col.New(l.total).Add(
					text.New(data.FormulaError, props.Text{
						Size:  8,
						Style: fontstyle.Italic,
						Align: align.Right,
						Color: &props.Color{Red: 180, Green: 30, Blue: 30},
					}),
				),
			),
		)
	}
}

// addFooter adds the generated-date line at the bottom.
func addFooter(m core.Maroto, data ExportData, l pdfLayout) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(l.total).Add(
				text.New(
					fmt.Sprintf("Generated on %s", data.CreatedDate),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}
