package services

// QuoteSummary is everything a consumer renders from one quote state.
type QuoteSummary struct {
	// Cells holds the effective value of every number column, keyed by
	// item id then column id.
	Cells      map[string]map[string]float64 `json:"cells"`
	Aggregates []AggregateResult             `json:"aggregates"`
	Totals     Totals                        `json:"totals"`
	Variables  []Variable                    `json:"variables"`
}

// RecomputeOptions tunes the grand total resolution.
type RecomputeOptions struct {
	StrictVariableNames bool
}

// Recompute derives the full summary of quote. It reads quote and collab
// only; calling it twice on the same state yields identical results.
func Recompute(quote Quote, collab *Quote, opts RecomputeOptions) QuoteSummary {
	s := QuoteSummary{Cells: make(map[string]map[string]float64)}

	for _, it := range quote.AllItems() {
		row := make(map[string]float64)
		for _, c := range quote.Columns {
			if c.ValueType != ValueNumber {
				continue
			}
			row[c.ID] = EvaluateCell(it, c, quote.Columns)
		}
		s.Cells[it.ID] = row
	}

	s.Aggregates = Aggregates(quote)
	resolver := Resolver{Strict: opts.StrictVariableNames}
	s.Totals = resolver.ResolveWith(quote.GrandTotalFormula, quote, collab, s.Aggregates)

	priceSum, collabSum := s.Totals.PriceSum, s.Totals.CollabSum
	s.Variables = buildVariableTable(priceSum, collabSum, s.Aggregates).ordered
	return s
}
