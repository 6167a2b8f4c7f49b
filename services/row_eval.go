package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// EvaluateCell returns the effective numeric value of column for item. A
// row formula that fails to evaluate yields 0: a single cell has no room for
// an error, and one bad cell must not block the table.
func EvaluateCell(item Item, column Column, allColumns []Column) float64 {
	v, _ := EvaluateCellErr(item, column, allColumns)
	return v
}

// EvaluateCellErr is EvaluateCell with the row formula failure exposed. The
// returned value is 0 whenever err is non-nil.
func EvaluateCellErr(item Item, column Column, allColumns []Column) (float64, error) {
	if !column.HasRowFormula() {
		return RawNumber(item, column.ID), nil
	}

	// Variables are bound to raw stored values only. A referenced column's
	// own row formula is not applied, so formula chains cannot recurse.
	values := make(map[string]string, len(allColumns))
	for _, c := range allColumns {
		if c.ID == column.ID || c.ValueType != ValueNumber {
			continue
		}
		values[c.ID] = FormatOperand(RawNumber(item, c.ID))
	}

	expr := SubstituteIdentifiers(column.RowFormula, func(name string) (string, bool) {
		v, ok := values[name]
		return v, ok
	})
	v, err := EvaluateExpression(expr)
	if err != nil {
		return 0, fmt.Errorf("row formula %q on column %s: %w", column.RowFormula, column.ID, err)
	}
	return v, nil
}

// RawNumber returns the stored value of columnID for item, coerced to a
// number. Anything that does not coerce to a finite number is 0.
func RawNumber(item Item, columnID string) float64 {
	switch columnID {
	case ColumnUnitPrice:
		return finiteOrZero(item.UnitPrice)
	case ColumnDescription:
		return ToNumber(item.Description)
	}
	return ToNumber(item.CustomFields[columnID])
}

// ToNumber coerces a raw cell value to float64, defaulting to 0.
func ToNumber(v any) float64 {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return finiteOrZero(f)
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
