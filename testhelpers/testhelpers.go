// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/collections"
	"quotedesk/services"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// PricedQuote builds a quote with the default schema and one section holding
// one item per price.
func PricedQuote(prices ...float64) services.Quote {
	q := services.Quote{Columns: services.DefaultColumns()}
	sec := services.Section{ID: services.NewSectionID(), Name: "Section 1"}
	for i, p := range prices {
		it := services.NewItem(q.Columns)
		it.Description = fmt.Sprintf("Item %d", i+1)
		it.UnitPrice = p
		sec.Items = append(sec.Items, it)
	}
	q.Sections = []services.Section{sec}
	return q
}

// CreateTestQuote creates a quote record whose single section holds one item
// per price, and returns it.
func CreateTestQuote(t *testing.T, app *pocketbase.PocketBase, title string, prices ...float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quotes")
	if err != nil {
		t.Fatalf("failed to find quotes collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("title", title)
	record.Set("client_name", "Test Client")
	collections.SetQuoteFields(record, PricedQuote(prices...))

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quote: %v", err)
	}

	return record
}

// CreateTestCollabQuote attaches a collaborator quote with the given prices
// to quoteID and returns it.
func CreateTestCollabQuote(t *testing.T, app *pocketbase.PocketBase, quoteID string, prices ...float64) *core.Record {
	t.Helper()

	record, err := collections.SaveCollab(app, quoteID, "Test Collaborator", PricedQuote(prices...))
	if err != nil {
		t.Fatalf("failed to save test collaborator quote: %v", err)
	}
	return record
}

// LoadTestQuote reads back a stored quote.
func LoadTestQuote(t *testing.T, app *pocketbase.PocketBase, id string) services.Quote {
	t.Helper()

	_, q, err := collections.LoadQuote(app, id)
	if err != nil {
		t.Fatalf("failed to load quote %s: %v", id, err)
	}
	return q
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHXRedirect checks that the response has an HX-Redirect header with the expected URL.
func AssertHXRedirect(t *testing.T, headerVal, expectedURL string) {
	t.Helper()

	if headerVal != expectedURL {
		t.Errorf("expected HX-Redirect %q, got %q", expectedURL, headerVal)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
