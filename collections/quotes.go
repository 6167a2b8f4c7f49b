package collections

import (
	"fmt"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// QuoteFromRecord decodes the stored schema, sections and formula of a
// quotes (or collaborator_quotes) record.
func QuoteFromRecord(record *core.Record) (services.Quote, error) {
	var q services.Quote
	if err := decodeJSONField(record, "columns", &q.Columns); err != nil {
		return q, err
	}
	if err := decodeJSONField(record, "sections", &q.Sections); err != nil {
		return q, err
	}
	q.GrandTotalFormula = record.GetString("grand_total_formula")
	return q, nil
}

// decodeJSONField leaves dst untouched when the field was never set.
func decodeJSONField(record *core.Record, key string, dst any) error {
	raw := strings.TrimSpace(record.GetString(key))
	if raw == "" || raw == "null" {
		return nil
	}
	if err := record.UnmarshalJSONField(key, dst); err != nil {
		return fmt.Errorf("decode %s of %s: %w", key, record.Id, err)
	}
	return nil
}

// SetQuoteFields writes q onto record without saving it.
func SetQuoteFields(record *core.Record, q services.Quote) {
	record.Set("columns", q.Columns)
	record.Set("sections", q.Sections)
	if record.Collection().Fields.GetByName("grand_total_formula") != nil {
		record.Set("grand_total_formula", q.GrandTotalFormula)
	}
}

// LoadQuote fetches a quote record and decodes it.
func LoadQuote(app *pocketbase.PocketBase, id string) (*core.Record, services.Quote, error) {
	record, err := app.FindRecordById("quotes", id)
	if err != nil {
		return nil, services.Quote{}, fmt.Errorf("find quote %s: %w", id, err)
	}
	q, err := QuoteFromRecord(record)
	if err != nil {
		return nil, services.Quote{}, err
	}
	return record, q, nil
}

// SaveQuote stores q on record.
func SaveQuote(app *pocketbase.PocketBase, record *core.Record, q services.Quote) error {
	SetQuoteFields(record, q)
	if err := app.Save(record); err != nil {
		return fmt.Errorf("save quote %s: %w", record.Id, err)
	}
	return nil
}

// CreateQuote inserts a new quote holding services.NewQuote's default schema.
func CreateQuote(app *pocketbase.PocketBase, title, clientName string) (*core.Record, error) {
	col, err := app.FindCollectionByNameOrId("quotes")
	if err != nil {
		return nil, fmt.Errorf("find quotes collection: %w", err)
	}

	record := core.NewRecord(col)
	record.Set("title", title)
	record.Set("client_name", clientName)
	SetQuoteFields(record, services.NewQuote("Section 1"))

	if err := app.Save(record); err != nil {
		return nil, fmt.Errorf("save quote: %w", err)
	}
	return record, nil
}

// LoadCollab returns the collaborator quote attached to quoteID, or nil when
// there is none.
func LoadCollab(app *pocketbase.PocketBase, quoteID string) (*core.Record, *services.Quote, error) {
	records, err := app.FindRecordsByFilter(
		"collaborator_quotes",
		"quote = {:quoteId}",
		"-updated",
		1,
		0,
		map[string]any{"quoteId": quoteID},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("find collaborator quote of %s: %w", quoteID, err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	q, err := QuoteFromRecord(records[0])
	if err != nil {
		return nil, nil, err
	}
	return records[0], &q, nil
}

// SaveCollab replaces the collaborator quote attached to quoteID.
func SaveCollab(app *pocketbase.PocketBase, quoteID, collaborator string, q services.Quote) (*core.Record, error) {
	record, _, err := LoadCollab(app, quoteID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		col, err := app.FindCollectionByNameOrId("collaborator_quotes")
		if err != nil {
			return nil, fmt.Errorf("find collaborator_quotes collection: %w", err)
		}
		record = core.NewRecord(col)
		record.Set("quote", quoteID)
	}
	record.Set("collaborator", collaborator)
	SetQuoteFields(record, q)

	if err := app.Save(record); err != nil {
		return nil, fmt.Errorf("save collaborator quote: %w", err)
	}
	return record, nil
}
