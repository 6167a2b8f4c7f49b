package services

import "bytes"

// bytesReader wraps a byte slice in a bytes.Reader for use with excelize.OpenReader.
func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

// quoteWithQty returns a quote with a "Qty" number column (sum) and one item
// per price/qty pair in a single section.
func quoteWithQty(pairs ...[2]float64) Quote {
	q := Quote{Columns: append(DefaultColumns(), Column{
		ID:          "colQty",
		Name:        "Qty",
		ValueType:   ValueNumber,
		Calculation: &Calculation{Type: CalcSum},
	})}
	sec := Section{ID: "sec1", Name: "Main"}
	for i, p := range pairs {
		sec.Items = append(sec.Items, Item{
			ID:           "item" + string(rune('a'+i)),
			Description:  "Line",
			UnitPrice:    p[0],
			CustomFields: map[string]any{"colQty": p[1]},
		})
	}
	q.Sections = []Section{sec}
	return q
}

// pricedQuote returns a quote with the default schema and one item per price.
func pricedQuote(prices ...float64) Quote {
	q := Quote{Columns: DefaultColumns()}
	sec := Section{ID: "sec1", Name: "Main"}
	for i, p := range prices {
		sec.Items = append(sec.Items, Item{
			ID:           "item" + string(rune('a'+i)),
			UnitPrice:    p,
			CustomFields: map[string]any{},
		})
	}
	q.Sections = []Section{sec}
	return q
}
