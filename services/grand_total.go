package services

import (
	"fmt"
	"regexp"
	"strings"
)

// Historical names of the two whole-quote sums. They are substituted before
// per-column variables, so they win over a column with the same name.
var (
	PriceAliases  = []string{"Price", "PriceSum", "TotalPrice", "UnitPriceSum"}
	CollabAliases = []string{"Collab", "CollabSum", "CollabPrice", "CollaboratorsSum"}
)

// Variable sources.
const (
	SourceLegacy = "legacy"
	SourceColumn = "column"
)

var (
	placeholderRe = regexp.MustCompile(`\{([^{}]*)\}`)
	adjacentRe    = regexp.MustCompile(`\}\s*\{`)
)

// Variable is one name a grand total formula may reference as {Name}.
type Variable struct {
	Name     string  `json:"name"`
	Source   string  `json:"source"`
	ColumnID string  `json:"columnId,omitempty"`
	Value    float64 `json:"value"`
	HasValue bool    `json:"hasValue"`
}

// Totals is the output of the grand total resolver.
type Totals struct {
	GrandTotal float64  `json:"grandTotal"`
	NetTotal   float64  `json:"netTotal"`
	PriceSum   float64  `json:"priceSum"`
	CollabSum  float64  `json:"collabSum"`
	Error      string   `json:"error,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Resolver evaluates grand total formulas. With Strict set, a formula that
// references a variable name shared by several sources is rejected instead
// of resolving to the last one defined.
type Resolver struct {
	Strict bool
}

// ResolveGrandTotal evaluates formula against quote with the default
// last-write-wins resolver. collab may be nil.
func ResolveGrandTotal(formula string, quote Quote, collab *Quote) Totals {
	return Resolver{}.Resolve(formula, quote, collab)
}

// Resolve computes the quote's aggregates and evaluates formula over them.
func (r Resolver) Resolve(formula string, quote Quote, collab *Quote) Totals {
	return r.ResolveWith(formula, quote, collab, Aggregates(quote))
}

// ResolveWith evaluates formula using precomputed aggregate results.
func (r Resolver) ResolveWith(formula string, quote Quote, collab *Quote, aggregates []AggregateResult) Totals {
	t := Totals{
		PriceSum:  PriceSum(quote),
		CollabSum: CollabSum(collab),
	}
	table := buildVariableTable(t.PriceSum, t.CollabSum, aggregates)
	t.Warnings = table.warnings

	t.GrandTotal = t.PriceSum
	if strings.TrimSpace(formula) != "" {
		v, err := r.evaluate(formula, table)
		if err != nil {
			t.Error = err.Error()
		} else {
			t.GrandTotal = v
		}
	}
	t.NetTotal = t.GrandTotal - t.CollabSum
	return t
}

// PriceSum is the sum of the unit price column, honoring its row formula.
func PriceSum(quote Quote) float64 {
	col, ok := quote.ColumnByID(ColumnUnitPrice)
	if !ok {
		col = Column{ID: ColumnUnitPrice, ValueType: ValueNumber}
	}
	return ColumnSum(col, quote)
}

// CollabSum is the plain sum of unit prices across a collaborator quote.
func CollabSum(collab *Quote) float64 {
	if collab == nil {
		return 0
	}
	var sum float64
	for _, it := range collab.AllItems() {
		sum += finiteOrZero(it.UnitPrice)
	}
	return sum
}

// NormalizeFormula inserts the implicit '+' between adjacent placeholders,
// so "{A}{B}" reads as "{A}+{B}".
func NormalizeFormula(formula string) string {
	return adjacentRe.ReplaceAllString(formula, "}+{")
}

type variableTable struct {
	legacy     map[string]Variable
	columns    map[string]Variable
	ordered    []Variable
	collisions map[string]bool
	warnings   []string
}

func buildVariableTable(priceSum, collabSum float64, aggregates []AggregateResult) variableTable {
	t := variableTable{
		legacy:     make(map[string]Variable),
		columns:    make(map[string]Variable),
		collisions: make(map[string]bool),
	}
	for _, name := range PriceAliases {
		v := Variable{Name: name, Source: SourceLegacy, Value: priceSum, HasValue: true}
		t.legacy[name] = v
		t.ordered = append(t.ordered, v)
	}
	for _, name := range CollabAliases {
		v := Variable{Name: name, Source: SourceLegacy, Value: collabSum, HasValue: true}
		t.legacy[name] = v
		t.ordered = append(t.ordered, v)
	}

	for _, a := range aggregates {
		name := VariableName(a.Name)
		if name == "" {
			continue
		}
		v := Variable{Name: name, Source: SourceColumn, ColumnID: a.ID, Value: a.Result, HasValue: a.HasValue()}

		if _, ok := t.legacy[name]; ok {
			t.collisions[name] = true
			t.warnings = append(t.warnings, fmt.Sprintf("column %q is shadowed by the built-in variable {%s}", a.Name, name))
			continue
		}
		if prev, ok := t.columns[name]; ok {
			t.collisions[name] = true
			t.warnings = append(t.warnings, fmt.Sprintf("variable {%s} is defined by columns %s and %s; using %s", name, prev.ColumnID, a.ID, a.ID))
			for i := range t.ordered {
				if t.ordered[i].Source == SourceColumn && t.ordered[i].Name == name {
					t.ordered[i] = v
				}
			}
		} else {
			t.ordered = append(t.ordered, v)
		}
		t.columns[name] = v
	}
	return t
}

func (r Resolver) evaluate(formula string, table variableTable) (float64, error) {
	expr := NormalizeFormula(formula)

	var problems []string
	for _, pass := range []map[string]Variable{table.legacy, table.columns} {
		expr = placeholderRe.ReplaceAllStringFunc(expr, func(ph string) string {
			name := VariableName(ph[1 : len(ph)-1])
			v, ok := pass[name]
			if !ok {
				return ph
			}
			if r.Strict && table.collisions[name] {
				problems = append(problems, fmt.Sprintf("variable {%s} is ambiguous", name))
				return ph
			}
			if !v.HasValue {
				problems = append(problems, fmt.Sprintf("variable {%s} has no numeric value", name))
				return ph
			}
			return FormatOperand(v.Value)
		})
	}
	if len(problems) > 0 {
		return 0, fmt.Errorf("invalid grand total formula: %s", strings.Join(problems, "; "))
	}

	if left := placeholderRe.FindAllString(expr, -1); len(left) > 0 {
		return 0, fmt.Errorf("invalid grand total formula: unknown variable %s", strings.Join(left, ", "))
	}

	v, err := EvaluateExpression(expr)
	if err != nil {
		return 0, fmt.Errorf("invalid grand total formula: %w", err)
	}
	return v, nil
}

// Variables lists the names available to the grand total formula of quote,
// legacy aliases first.
func Variables(quote Quote, collab *Quote) []Variable {
	return buildVariableTable(PriceSum(quote), CollabSum(collab), Aggregates(quote)).ordered
}
