package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// ── Definition structs ───────────────────────────────────────────────────

type itemDef struct {
	description string
	unitPrice   float64
	hours       float64
	rate        float64
}

type sectionDef struct {
	name  string
	items []itemDef
}

// Seed column ids are fixed so the demo formulas can reference them.
const (
	seedHoursID = "colHours"
	seedRateID  = "colRate"
)

func seedColumns() []services.Column {
	cols := services.DefaultColumns()
	cols[1].RowFormula = seedHoursID + " * " + seedRateID
	return append(cols,
		services.Column{
			ID:          seedHoursID,
			Name:        "Hours",
			ValueType:   services.ValueNumber,
			Calculation: &services.Calculation{Type: services.CalcSum},
		},
		services.Column{
			ID:          seedRateID,
			Name:        "Rate",
			ValueType:   services.ValueNumber,
			Calculation: &services.Calculation{Type: services.CalcAverage},
		},
	)
}

var seedSections = []sectionDef{
	{
		name: "Discovery",
		items: []itemDef{
			{description: "Stakeholder interviews", hours: 6, rate: 90},
			{description: "Requirements workshop", hours: 4, rate: 90},
		},
	},
	{
		name: "Build",
		items: []itemDef{
			{description: "Design system", hours: 16, rate: 85},
			{description: "Frontend implementation", hours: 40, rate: 80},
			{description: "Payment integration", hours: 12, rate: 95},
		},
	},
}

var seedCollabItems = []itemDef{
	{description: "Copywriting (freelance)", unitPrice: 600},
	{description: "Illustrations (freelance)", unitPrice: 450},
}

// Seed inserts a demo quote with a collaborator quote when the quotes
// collection is empty. Safe to call on every startup.
func Seed(app *pocketbase.PocketBase) error {
	// ── idempotency: skip if quotes already exist ────────────────────
	quotesCol, err := app.FindCollectionByNameOrId("quotes")
	if err != nil {
		return fmt.Errorf("seed: could not find quotes collection: %w", err)
	}
	existing, err := app.FindAllRecords(quotesCol)
	if err != nil {
		return fmt.Errorf("seed: could not query quotes: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: quotes collection is empty – inserting seed data …")

	cols := seedColumns()
	q := services.Quote{Columns: cols, GrandTotalFormula: "{Price} * 1.2"}
	for _, sd := range seedSections {
		sec := services.Section{ID: services.NewSectionID(), Name: sd.name}
		for _, d := range sd.items {
			it := services.NewItem(cols)
			it.Description = d.description
			it.CustomFields[seedHoursID] = d.hours
			it.CustomFields[seedRateID] = d.rate
			sec.Items = append(sec.Items, it)
		}
		q.Sections = append(q.Sections, sec)
	}

	record := core.NewRecord(quotesCol)
	record.Set("title", "Website Redesign")
	record.Set("client_name", "Northwind Traders")
	SetQuoteFields(record, q)
	if err := app.Save(record); err != nil {
		return fmt.Errorf("seed: save quote: %w", err)
	}

	collab := services.Quote{Columns: services.DefaultColumns()}
	sec := services.Section{ID: services.NewSectionID(), Name: "Collaborators"}
	for _, d := range seedCollabItems {
		it := services.NewItem(collab.Columns)
		it.Description = d.description
		it.UnitPrice = d.unitPrice
		sec.Items = append(sec.Items, it)
	}
	collab.Sections = []services.Section{sec}

	if _, err := SaveCollab(app, record.Id, "Studio partners", collab); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	log.Printf("seed: inserted quote %q (id=%s)\n", record.GetString("title"), record.Id)
	return nil
}
