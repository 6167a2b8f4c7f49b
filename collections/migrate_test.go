package collections_test

import (
	"testing"

	"quotedesk/collections"
	"quotedesk/services"
	"quotedesk/testhelpers"

	"github.com/pocketbase/pocketbase/core"
)

func TestMigrateQuoteSchemas_Backfills(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	col, _ := app.FindCollectionByNameOrId("quotes")
	record := core.NewRecord(col)
	record.Set("title", "Legacy")
	record.Set("columns", []map[string]any{
		{"id": "colQty", "name": "Qty", "valueType": "number"},
	})
	record.Set("sections", []map[string]any{
		{"id": "sec1", "name": "Main", "items": []map[string]any{
			{"id": "item1", "unitPrice": 10, "customFields": map[string]any{"colOld": "x"}},
		}},
	})
	if err := app.Save(record); err != nil {
		t.Fatalf("save legacy quote: %v", err)
	}

	if err := collections.MigrateQuoteSchemas(app); err != nil {
		t.Fatalf("MigrateQuoteSchemas() error: %v", err)
	}

	_, q, err := collections.LoadQuote(app, record.Id)
	if err != nil {
		t.Fatalf("LoadQuote() error: %v", err)
	}
	if _, ok := q.ColumnByID(services.ColumnDescription); !ok {
		t.Error("description column not restored")
	}
	if _, ok := q.ColumnByID(services.ColumnUnitPrice); !ok {
		t.Error("unit price column not restored")
	}
	fields := q.Sections[0].Items[0].CustomFields
	if _, ok := fields["colOld"]; ok {
		t.Error("stale key not dropped")
	}
	if v, ok := fields["colQty"]; !ok || v != float64(0) {
		t.Errorf("colQty = %#v, want backfilled 0", v)
	}
}

func TestMigrateQuoteSchemas_EmptySections(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	col, _ := app.FindCollectionByNameOrId("quotes")
	record := core.NewRecord(col)
	record.Set("title", "Bare")
	if err := app.Save(record); err != nil {
		t.Fatalf("save quote: %v", err)
	}

	if err := collections.MigrateQuoteSchemas(app); err != nil {
		t.Fatalf("MigrateQuoteSchemas() error: %v", err)
	}

	_, q, err := collections.LoadQuote(app, record.Id)
	if err != nil {
		t.Fatalf("LoadQuote() error: %v", err)
	}
	if len(q.Sections) != 1 || len(q.Columns) != 2 {
		t.Errorf("quote = %+v", q)
	}
}

func TestMigrateQuoteSchemas_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	created := testhelpers.CreateTestQuote(t, app, "Clean", 100, 250)
	record, err := app.FindRecordById("quotes", created.Id)
	if err != nil {
		t.Fatalf("find quote: %v", err)
	}
	before := record.GetDateTime("updated").String()

	if err := collections.MigrateQuoteSchemas(app); err != nil {
		t.Fatalf("first run error: %v", err)
	}
	if err := collections.MigrateQuoteSchemas(app); err != nil {
		t.Fatalf("second run error: %v", err)
	}

	after, err := app.FindRecordById("quotes", record.Id)
	if err != nil {
		t.Fatalf("find quote: %v", err)
	}
	if after.GetDateTime("updated").String() != before {
		t.Error("an already normalized quote was rewritten")
	}
}

func TestMigrateQuoteSchemas_NoQuotes(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if err := collections.MigrateQuoteSchemas(app); err != nil {
		t.Fatalf("MigrateQuoteSchemas() error on empty db: %v", err)
	}
}
