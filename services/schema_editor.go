package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrReservedColumn = errors.New("reserved column cannot be changed")
	ErrColumnNotFound = errors.New("column not found")
	ErrInvalidColumn  = errors.New("invalid column definition")
	ErrMoveOutOfRange = errors.New("column cannot move in that direction")
)

// Direction is a left/right move of a column in display order.
type Direction int

const (
	MoveLeft  Direction = -1
	MoveRight Direction = 1
)

// ParseDirection maps "left"/"right" to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return MoveLeft, nil
	case "right":
		return MoveRight, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// ColumnDef is the user input for a new column.
type ColumnDef struct {
	Name        string
	ValueType   ValueType
	Calculation *Calculation
	RowFormula  string
}

// dateLayout is the stored form of date cells.
const dateLayout = "2006-01-02"

// AddColumn appends a column with a fresh id and backfills a default value
// into every item.
func AddColumn(quote Quote, def ColumnDef) (Quote, Column, error) {
	col := Column{
		ID:          NewColumnID(),
		Name:        strings.TrimSpace(def.Name),
		ValueType:   def.ValueType,
		Calculation: def.Calculation,
		RowFormula:  strings.TrimSpace(def.RowFormula),
	}
	if err := validateColumn(col); err != nil {
		return quote, Column{}, err
	}
	col = sanitizeColumn(col)

	out := quote.Clone()
	for out.columnIndex(col.ID) >= 0 {
		col.ID = NewColumnID()
	}
	out.Columns = append(out.Columns, col)
	forEachItem(&out, func(it *Item) {
		it.CustomFields[col.ID] = DefaultValue(col.ValueType)
	})
	return out, col, nil
}

// EditColumn replaces the definition of an existing column. The unit price
// column only accepts a new row formula; the description column is fixed.
func EditColumn(quote Quote, col Column) (Quote, error) {
	i := quote.columnIndex(col.ID)
	if i < 0 {
		return quote, fmt.Errorf("%w: %s", ErrColumnNotFound, col.ID)
	}

	out := quote.Clone()
	switch col.ID {
	case ColumnDescription:
		return quote, fmt.Errorf("%w: %s", ErrReservedColumn, col.ID)
	case ColumnUnitPrice:
		out.Columns[i].RowFormula = strings.TrimSpace(col.RowFormula)
		return out, nil
	}

	col.Name = strings.TrimSpace(col.Name)
	col.RowFormula = strings.TrimSpace(col.RowFormula)
	if err := validateColumn(col); err != nil {
		return quote, err
	}
	col = sanitizeColumn(col)

	prev := out.Columns[i]
	out.Columns[i] = col
	if prev.ValueType != col.ValueType {
		forEachItem(&out, func(it *Item) {
			it.CustomFields[col.ID] = convertValue(it.CustomFields[col.ID], col.ValueType)
		})
	}
	return out, nil
}

// DeleteColumn removes a column from the schema and its key from every item.
func DeleteColumn(quote Quote, id string) (Quote, error) {
	if IsReservedColumn(id) {
		return quote, fmt.Errorf("%w: %s", ErrReservedColumn, id)
	}
	i := quote.columnIndex(id)
	if i < 0 {
		return quote, fmt.Errorf("%w: %s", ErrColumnNotFound, id)
	}

	out := quote.Clone()
	out.Columns = append(out.Columns[:i], out.Columns[i+1:]...)
	forEachItem(&out, func(it *Item) {
		delete(it.CustomFields, id)
	})
	return out, nil
}

// MoveColumn swaps the column at index with its neighbour in direction.
// Stored values are untouched.
func MoveColumn(quote Quote, index int, dir Direction) (Quote, error) {
	if dir != MoveLeft && dir != MoveRight {
		return quote, fmt.Errorf("%w: invalid direction %d", ErrMoveOutOfRange, dir)
	}
	target := index + int(dir)
	if index < 0 || index >= len(quote.Columns) || target < 0 || target >= len(quote.Columns) {
		return quote, fmt.Errorf("%w: index %d", ErrMoveOutOfRange, index)
	}

	out := quote.Clone()
	out.Columns[index], out.Columns[target] = out.Columns[target], out.Columns[index]
	return out, nil
}

// Normalize restores the schema invariants on a quote loaded from storage:
// both reserved columns exist with their fixed definitions, and every item
// carries a value for every non-reserved column and nothing else.
func Normalize(quote Quote) Quote {
	out := quote.Clone()

	defaults := DefaultColumns()
	for i := len(defaults) - 1; i >= 0; i-- {
		d := defaults[i]
		j := out.columnIndex(d.ID)
		if j < 0 {
			out.Columns = append([]Column{d}, out.Columns...)
			continue
		}
		// Reserved columns keep their type; the price column keeps its row formula.
		fixed := d
		fixed.Name = out.Columns[j].Name
		if fixed.Name == "" {
			fixed.Name = d.Name
		}
		if d.ID == ColumnUnitPrice {
			fixed.RowFormula = out.Columns[j].RowFormula
		}
		out.Columns[j] = fixed
	}

	known := make(map[string]Column, len(out.Columns))
	for _, c := range out.Columns {
		if !c.IsReserved() {
			known[c.ID] = c
		}
	}
	forEachItem(&out, func(it *Item) {
		for id := range it.CustomFields {
			if _, ok := known[id]; !ok {
				delete(it.CustomFields, id)
			}
		}
		for id, c := range known {
			if _, ok := it.CustomFields[id]; !ok {
				it.CustomFields[id] = DefaultValue(c.ValueType)
			}
		}
	})
	return out
}

func validateColumn(c Column) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidColumn)
	}
	if !c.ValueType.Valid() {
		return fmt.Errorf("%w: unknown value type %q", ErrInvalidColumn, c.ValueType)
	}
	if c.Calculation != nil && c.Calculation.Type != "" && !c.Calculation.Type.Valid() {
		return fmt.Errorf("%w: unknown calculation %q", ErrInvalidColumn, c.Calculation.Type)
	}
	return nil
}

// sanitizeColumn drops the number-only settings from non-number columns.
func sanitizeColumn(c Column) Column {
	if c.ValueType != ValueNumber {
		c.Calculation = nil
		c.RowFormula = ""
		return c
	}
	if c.Calculation != nil {
		calc := *c.Calculation
		if calc.Type != CalcCustom {
			calc.Formula = ""
		}
		c.Calculation = &calc
	}
	return c
}

func convertValue(v any, to ValueType) any {
	switch to {
	case ValueNumber:
		return ToNumber(v)
	case ValueText:
		switch x := v.(type) {
		case nil:
			return ""
		case string:
			return x
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64)
		}
		return fmt.Sprint(v)
	case ValueDate:
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if _, err := time.Parse(dateLayout, s); err == nil {
				return s
			}
		}
		return nil
	}
	return v
}

func forEachItem(q *Quote, fn func(it *Item)) {
	for si := range q.Sections {
		for ii := range q.Sections[si].Items {
			it := &q.Sections[si].Items[ii]
			if it.CustomFields == nil {
				it.CustomFields = make(map[string]any)
			}
			fn(it)
		}
	}
}
