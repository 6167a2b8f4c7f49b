package main

import (
	"log"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/cli"
	"quotedesk/collections"
	"quotedesk/config"
	"quotedesk/handlers"
)

func main() {
	cfg, err := config.Load(os.Getenv("QUOTEDESK_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := pocketbase.New()
	app.RootCmd.AddCommand(cli.NewSummarizeCommand(cfg))

	// Create collections, normalize stored quotes and seed the demo on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.MigrateQuoteSchemas(app); err != nil {
			log.Printf("Warning: quote schema migration failed: %v", err)
		}
		if cfg.SeedDemo {
			if err := collections.Seed(app); err != nil {
				log.Printf("Warning: seed data failed: %v", err)
			}
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.BindFunc(handlers.SettingsMiddleware(handlers.SettingsFromConfig(cfg)))

		// ── Stateless ────────────────────────────────────────────
		se.Router.GET("/quotes/options", handlers.HandleColumnOptions())
		se.Router.POST("/quotes/recompute", handlers.HandleRecompute())

		// ── Quote CRUD ───────────────────────────────────────────
		se.Router.POST("/quotes", handlers.HandleQuoteSave(app))
		se.Router.GET("/quotes/{id}", handlers.HandleQuoteView(app))
		se.Router.DELETE("/quotes/{id}", handlers.HandleQuoteDelete(app))
		se.Router.GET("/quotes/{id}/summary", handlers.HandleQuoteSummary(app))
		se.Router.GET("/quotes/{id}/variables", handlers.HandleVariables(app))

		// ── Grand total ──────────────────────────────────────────
		se.Router.POST("/quotes/{id}/grand-total", handlers.HandleGrandTotal(app))

		// ── Column schema ────────────────────────────────────────
		se.Router.POST("/quotes/{id}/columns", handlers.HandleColumnAdd(app))
		se.Router.POST("/quotes/{id}/columns/{columnId}", handlers.HandleColumnEdit(app))
		se.Router.DELETE("/quotes/{id}/columns/{columnId}", handlers.HandleColumnDelete(app))
		se.Router.POST("/quotes/{id}/columns/{columnId}/move", handlers.HandleColumnMove(app))

		// ── Table import ─────────────────────────────────────────
		se.Router.POST("/quotes/{id}/sections/{index}/import", handlers.HandleSectionImport(app))
		se.Router.POST("/quotes/{id}/sections/{index}/import/check", handlers.HandleSectionImportCheck(app))
		se.Router.POST("/quotes/{id}/collab", handlers.HandleCollabImport(app))

		// ── Export ───────────────────────────────────────────────
		se.Router.GET("/quotes/{id}/export/excel", handlers.HandleQuoteExportExcel(app))
		se.Router.GET("/quotes/{id}/export/pdf", handlers.HandleQuoteExportPDF(app))

		se.Router.GET("/{$}", func(e *core.RequestEvent) error {
			return e.JSON(http.StatusOK, map[string]string{"service": "quotedesk"})
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
