package services

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValueType is the kind of value a column holds.
type ValueType string

const (
	ValueText   ValueType = "text"
	ValueNumber ValueType = "number"
	ValueDate   ValueType = "date"
)

// Valid reports whether t is one of the known value types.
func (t ValueType) Valid() bool {
	switch t {
	case ValueText, ValueNumber, ValueDate:
		return true
	}
	return false
}

// CalculationType selects how a number column is summarised.
type CalculationType string

const (
	CalcNone    CalculationType = "none"
	CalcSum     CalculationType = "sum"
	CalcAverage CalculationType = "average"
	CalcMin     CalculationType = "min"
	CalcMax     CalculationType = "max"
	CalcCustom  CalculationType = "custom"
)

// Valid reports whether t is one of the known calculation types.
func (t CalculationType) Valid() bool {
	switch t {
	case CalcNone, CalcSum, CalcAverage, CalcMin, CalcMax, CalcCustom:
		return true
	}
	return false
}

// Label is the human readable name shown next to an aggregate result.
func (t CalculationType) Label() string {
	switch t {
	case CalcSum:
		return "Sum"
	case CalcAverage:
		return "Average"
	case CalcMin:
		return "Min"
	case CalcMax:
		return "Max"
	case CalcCustom:
		return "Custom"
	}
	return ""
}

// Calculation is the aggregate spec of a number column. Formula is only used
// when Type is CalcCustom.
type Calculation struct {
	Type    CalculationType `json:"type"`
	Formula string          `json:"formula,omitempty"`
}

// Reserved column ids. Both columns are always present in a quote schema.
const (
	ColumnDescription = "description"
	ColumnUnitPrice   = "unitPrice"
)

// ColumnIDPrefix starts every generated column id. Custom aggregate formulas
// recognise column references by this prefix.
const ColumnIDPrefix = "col"

// ColumnQuantity is the fixed id given to imported quantity columns.
const ColumnQuantity = ColumnIDPrefix + "Quantity"

// Column is one typed field applied uniformly across all items of a quote.
type Column struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	ValueType   ValueType    `json:"valueType"`
	Calculation *Calculation `json:"calculation,omitempty"`
	RowFormula  string       `json:"rowFormula,omitempty"`
}

// IsReserved reports whether the column is one of the two fixed columns.
func (c Column) IsReserved() bool {
	return IsReservedColumn(c.ID)
}

// CalculationType returns the column's calculation kind, CalcNone when unset
// or when the column is not numeric.
func (c Column) CalculationType() CalculationType {
	if c.ValueType != ValueNumber || c.Calculation == nil || c.Calculation.Type == "" {
		return CalcNone
	}
	return c.Calculation.Type
}

// HasRowFormula reports whether the column derives its cells from a formula.
func (c Column) HasRowFormula() bool {
	return c.ValueType == ValueNumber && strings.TrimSpace(c.RowFormula) != ""
}

// VariableName is the name under which the column's aggregate is exposed to
// the grand total formula: the display name with all whitespace removed.
func (c Column) VariableName() string {
	return VariableName(c.Name)
}

func (c Column) clone() Column {
	out := c
	if c.Calculation != nil {
		calc := *c.Calculation
		out.Calculation = &calc
	}
	return out
}

// IsReservedColumn reports whether id names a reserved column.
func IsReservedColumn(id string) bool {
	return id == ColumnDescription || id == ColumnUnitPrice
}

// VariableName strips all whitespace from a display name.
func VariableName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
}

// Item is one priced line of a quote section.
type Item struct {
	ID           string         `json:"id"`
	Description  string         `json:"description"`
	UnitPrice    float64        `json:"unitPrice"`
	CustomFields map[string]any `json:"customFields"`
}

func (it Item) clone() Item {
	out := it
	out.CustomFields = make(map[string]any, len(it.CustomFields))
	for k, v := range it.CustomFields {
		out.CustomFields[k] = v
	}
	return out
}

// Section is a named, ordered group of items.
type Section struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Quote is the unit the engine computes over.
type Quote struct {
	Columns           []Column  `json:"columns"`
	Sections          []Section `json:"sections"`
	GrandTotalFormula string    `json:"grandTotalFormula,omitempty"`
}

// Clone returns a deep copy so transforms never share maps or slices with
// their input.
func (q Quote) Clone() Quote {
	out := Quote{GrandTotalFormula: q.GrandTotalFormula}
	if q.Columns != nil {
		out.Columns = make([]Column, len(q.Columns))
		for i, c := range q.Columns {
			out.Columns[i] = c.clone()
		}
	}
	if q.Sections != nil {
		out.Sections = make([]Section, len(q.Sections))
		for i, s := range q.Sections {
			cs := Section{ID: s.ID, Name: s.Name}
			if s.Items != nil {
				cs.Items = make([]Item, len(s.Items))
				for j, it := range s.Items {
					cs.Items[j] = it.clone()
				}
			}
			out.Sections[i] = cs
		}
	}
	return out
}

// ColumnByID returns the column with the given id.
func (q Quote) ColumnByID(id string) (Column, bool) {
	i := q.columnIndex(id)
	if i < 0 {
		return Column{}, false
	}
	return q.Columns[i], true
}

func (q Quote) columnIndex(id string) int {
	for i, c := range q.Columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// AllItems returns every item in section-then-item order.
func (q Quote) AllItems() []Item {
	var items []Item
	for _, s := range q.Sections {
		items = append(items, s.Items...)
	}
	return items
}

// DefaultColumns returns the reserved columns every new quote starts with.
func DefaultColumns() []Column {
	return []Column{
		{ID: ColumnDescription, Name: "Description", ValueType: ValueText},
		{
			ID:          ColumnUnitPrice,
			Name:        "Unit Price",
			ValueType:   ValueNumber,
			Calculation: &Calculation{Type: CalcSum},
		},
	}
}

// NewQuote returns a quote with the default schema and one section holding
// one empty item.
func NewQuote(sectionName string) Quote {
	q := Quote{Columns: DefaultColumns()}
	q.Sections = []Section{{
		ID:    NewSectionID(),
		Name:  sectionName,
		Items: []Item{NewItem(q.Columns)},
	}}
	return q
}

// NewItem returns an item with a default value for every non-reserved column.
func NewItem(columns []Column) Item {
	it := Item{ID: NewItemID(), CustomFields: make(map[string]any)}
	for _, c := range columns {
		if !c.IsReserved() {
			it.CustomFields[c.ID] = DefaultValue(c.ValueType)
		}
	}
	return it
}

// DefaultValue is the backfill value for a column of type t.
func DefaultValue(t ValueType) any {
	switch t {
	case ValueNumber:
		return float64(0)
	case ValueText:
		return ""
	}
	return nil
}

// NewColumnID returns a fresh column id carrying ColumnIDPrefix.
func NewColumnID() string {
	return ColumnIDPrefix + shortUUID()
}

// NewItemID returns a fresh item id.
func NewItemID() string {
	return "item" + shortUUID()
}

// NewSectionID returns a fresh section id.
func NewSectionID() string {
	return "sec" + shortUUID()
}

func shortUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
