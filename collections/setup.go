package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the quotes and collaborator_quotes
// collections exist. A quote's schema and sections are stored as JSON.
func Setup(app *pocketbase.PocketBase) {
	quotes := ensureCollection(app, "quotes", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_name", Required: false})
		c.Fields.Add(&core.JSONField{Name: "columns", MaxSize: 1 << 20})
		c.Fields.Add(&core.JSONField{Name: "sections", MaxSize: 8 << 20})
		c.Fields.Add(&core.TextField{Name: "grand_total_formula", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "collaborator_quotes", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "quote",
			Required:      true,
			CollectionId:  quotes.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "collaborator", Required: false})
		c.Fields.Add(&core.JSONField{Name: "columns", MaxSize: 1 << 20})
		c.Fields.Add(&core.JSONField{Name: "sections", MaxSize: 8 << 20})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
