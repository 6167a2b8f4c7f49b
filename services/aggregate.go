package services

import (
	"fmt"
	"strings"
)

// Display markers for aggregate results without a number.
const (
	EmptyMarker = "—"
	ErrorMarker = "#ERROR"
)

// AggregateResult is one row of the calculation results list: the summary of
// a single number column.
type AggregateResult struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	CalculationLabel string          `json:"calculationLabel"`
	Type             CalculationType `json:"type"`
	Result           float64         `json:"result"`
	Empty            bool            `json:"empty,omitempty"`
	Error            string          `json:"error,omitempty"`
}

// HasValue reports whether the result is a usable number.
func (r AggregateResult) HasValue() bool {
	return !r.Empty && r.Error == ""
}

// Display renders the result for a summary panel, using symbol as the
// currency prefix.
func (r AggregateResult) Display(symbol string) string {
	switch {
	case r.Error != "":
		return ErrorMarker
	case r.Empty:
		return EmptyMarker
	}
	return FormatAmount(r.Result, symbol)
}

// ColumnValues returns the effective values of column for every item, in
// section-then-item order.
func ColumnValues(column Column, quote Quote) []float64 {
	var values []float64
	for _, s := range quote.Sections {
		for _, it := range s.Items {
			values = append(values, EvaluateCell(it, column, quote.Columns))
		}
	}
	return values
}

// ColumnSum is the sum of the column's effective values.
func ColumnSum(column Column, quote Quote) float64 {
	return sumOf(ColumnValues(column, quote))
}

// Aggregate reduces a number column to its summary value. Columns that are
// not numeric or have no calculation produce a CalcNone result.
func Aggregate(column Column, quote Quote) AggregateResult {
	kind := column.CalculationType()
	res := AggregateResult{
		ID:               column.ID,
		Name:             column.Name,
		CalculationLabel: kind.Label(),
		Type:             kind,
	}

	switch kind {
	case CalcNone:
		return res
	case CalcCustom:
		formula := ""
		if column.Calculation != nil {
			formula = column.Calculation.Formula
		}
		v, err := evaluateCustomAggregate(formula, quote)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Result = v
		return res
	}

	values := ColumnValues(column, quote)
	switch kind {
	case CalcSum:
		res.Result = sumOf(values)
	case CalcAverage:
		if len(values) > 0 {
			res.Result = sumOf(values) / float64(len(values))
		}
	case CalcMin, CalcMax:
		if len(values) == 0 {
			res.Empty = true
			return res
		}
		ext := values[0]
		for _, v := range values[1:] {
			if (kind == CalcMin && v < ext) || (kind == CalcMax && v > ext) {
				ext = v
			}
		}
		res.Result = ext
	default:
		res.Error = fmt.Sprintf("unknown calculation %q", kind)
	}
	return res
}

// Aggregates returns the results of every number column with a calculation,
// in schema order.
func Aggregates(quote Quote) []AggregateResult {
	var out []AggregateResult
	for _, c := range quote.Columns {
		if c.CalculationType() == CalcNone {
			continue
		}
		out = append(out, Aggregate(c, quote))
	}
	return out
}

// evaluateCustomAggregate substitutes each referenced column id with the sum
// of that column, then evaluates the formula.
func evaluateCustomAggregate(formula string, quote Quote) (float64, error) {
	if strings.TrimSpace(formula) == "" {
		return 0, fmt.Errorf("custom calculation has no formula")
	}

	sums := make(map[string]string)
	for _, name := range Identifiers(formula) {
		if !isColumnReference(name) {
			continue
		}
		c, ok := quote.ColumnByID(name)
		if !ok || c.ValueType != ValueNumber {
			continue
		}
		sums[name] = FormatOperand(ColumnSum(c, quote))
	}

	expr := SubstituteIdentifiers(formula, func(name string) (string, bool) {
		v, ok := sums[name]
		return v, ok
	})
	v, err := EvaluateExpression(expr)
	if err != nil {
		if unknown := unresolvedColumns(formula, sums); len(unknown) > 0 {
			return 0, fmt.Errorf("custom formula %q: unknown column %s", formula, strings.Join(unknown, ", "))
		}
		return 0, fmt.Errorf("custom formula %q: %w", formula, err)
	}
	return v, nil
}

func isColumnReference(name string) bool {
	return strings.HasPrefix(name, ColumnIDPrefix) || name == ColumnUnitPrice
}

func unresolvedColumns(formula string, resolved map[string]string) []string {
	var out []string
	for _, name := range Identifiers(formula) {
		if _, ok := resolved[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

func sumOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}
