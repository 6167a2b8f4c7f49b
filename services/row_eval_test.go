package services

import (
	"math"
	"testing"
)

func rowColumns() []Column {
	return append(DefaultColumns(),
		Column{ID: "colQty", Name: "Qty", ValueType: ValueNumber},
		Column{ID: "colHours", Name: "Hours", ValueType: ValueNumber},
		Column{ID: "colNote", Name: "Note", ValueType: ValueText},
	)
}

func TestEvaluateCell_RawValues(t *testing.T) {
	cols := rowColumns()
	it := Item{
		ID:          "item1",
		Description: "Design",
		UnitPrice:   120.5,
		CustomFields: map[string]any{
			"colQty":   float64(3),
			"colHours": "7.5",
			"colNote":  "n/a",
		},
	}

	tests := []struct {
		name   string
		column Column
		want   float64
	}{
		{"unit price", cols[1], 120.5},
		{"number field", cols[2], 3},
		{"numeric string", cols[3], 7.5},
		{"text is zero", cols[4], 0},
		{"description is zero", cols[0], 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateCell(it, tt.column, cols); got != tt.want {
				t.Errorf("EvaluateCell() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateCell_RowFormula(t *testing.T) {
	cols := rowColumns()
	cols[1].RowFormula = "colQty * colHours"
	it := Item{
		ID:           "item1",
		UnitPrice:    999,
		CustomFields: map[string]any{"colQty": float64(2), "colHours": float64(4)},
	}

	if got := EvaluateCell(it, cols[1], cols); got != 8 {
		t.Errorf("EvaluateCell() = %v, want 8", got)
	}
}

func TestEvaluateCell_NegativeOperand(t *testing.T) {
	cols := rowColumns()
	cols[2].RowFormula = "unitPrice * colHours"
	it := Item{ID: "item1", UnitPrice: 10, CustomFields: map[string]any{"colHours": float64(-2)}}

	if got := EvaluateCell(it, cols[2], cols); got != -20 {
		t.Errorf("EvaluateCell() = %v, want -20", got)
	}
}

func TestEvaluateCell_InvalidFormulaIsZero(t *testing.T) {
	cols := rowColumns()
	tests := []struct {
		name    string
		formula string
	}{
		{"syntax error", "colQty *"},
		{"unknown column", "colMissing * 2"},
		{"text column", "colNote + 1"},
		{"division by zero", "colQty / 0"},
		{"self reference", "colHours + 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := cols[3]
			col.RowFormula = tt.formula
			it := Item{ID: "item1", CustomFields: map[string]any{"colQty": float64(2), "colHours": float64(3)}}

			got, err := EvaluateCellErr(it, col, cols)
			if err == nil {
				t.Fatalf("EvaluateCellErr() expected error for %q", tt.formula)
			}
			if got != 0 {
				t.Errorf("EvaluateCellErr() = %v, want 0", got)
			}
			if v := EvaluateCell(it, col, cols); v != 0 {
				t.Errorf("EvaluateCell() = %v, want 0", v)
			}
		})
	}
}

func TestEvaluateCell_NotTransitive(t *testing.T) {
	cols := rowColumns()
	cols[2].RowFormula = "colHours * 10" // Qty
	cols[3].RowFormula = "colQty + 1"    // Hours
	it := Item{ID: "item1", CustomFields: map[string]any{"colQty": float64(2), "colHours": float64(3)}}

	// Each formula sees the other column's stored value only.
	if got := EvaluateCell(it, cols[2], cols); got != 30 {
		t.Errorf("Qty = %v, want 30", got)
	}
	if got := EvaluateCell(it, cols[3], cols); got != 3 {
		t.Errorf("Hours = %v, want 3", got)
	}
}

func TestEvaluateCell_FormulaIgnoredOnTextColumn(t *testing.T) {
	cols := rowColumns()
	cols[4].RowFormula = "colQty * 2"
	it := Item{ID: "item1", CustomFields: map[string]any{"colQty": float64(2), "colNote": "12"}}

	if got := EvaluateCell(it, cols[4], cols); got != 12 {
		t.Errorf("EvaluateCell() = %v, want 12", got)
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 2.5, 2.5},
		{"int", 4, 4},
		{"string", " 12.25 ", 12.25},
		{"empty string", "", 0},
		{"garbage", "abc", 0},
		{"bool true", true, 1},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"inf string", "Inf", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToNumber(tt.in); got != tt.want {
				t.Errorf("ToNumber(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
