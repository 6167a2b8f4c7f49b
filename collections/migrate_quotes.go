package collections

import (
	"fmt"
	"log"
	"reflect"

	"github.com/pocketbase/pocketbase"

	"quotedesk/services"
)

// MigrateQuoteSchemas normalizes every stored quote and collaborator quote:
// missing reserved columns are restored, item values are backfilled for every
// column and keys of deleted columns are dropped. Records already in shape
// are left untouched. Safe to call on every startup.
func MigrateQuoteSchemas(app *pocketbase.PocketBase) error {
	total := 0
	for _, name := range []string{"quotes", "collaborator_quotes"} {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			return fmt.Errorf("migrate: could not find %s collection: %w", name, err)
		}
		records, err := app.FindAllRecords(col)
		if err != nil {
			return fmt.Errorf("migrate: could not query %s: %w", name, err)
		}

		for _, record := range records {
			q, err := QuoteFromRecord(record)
			if err != nil {
				log.Printf("migrate: skipping %s %s: %v\n", name, record.Id, err)
				continue
			}
			if len(q.Sections) == 0 {
				q.Sections = []services.Section{{ID: services.NewSectionID(), Name: "Section 1"}}
			}
			normalized := services.Normalize(q)
			if reflect.DeepEqual(normalized, q) {
				continue
			}

			SetQuoteFields(record, normalized)
			if err := app.Save(record); err != nil {
				log.Printf("migrate: failed to save %s %s: %v\n", name, record.Id, err)
				continue
			}
			total++
		}
	}

	if total > 0 {
		log.Printf("migrate: normalized %d stored quote(s)\n", total)
	}
	return nil
}
