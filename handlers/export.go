package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// buildExportData loads a quote and its collaborator quote and lays them out
// for export.
func buildExportData(app *pocketbase.PocketBase, quoteID string, settings Settings) (services.ExportData, error) {
	s, err := loadQuoteState(app, quoteID)
	if err != nil {
		return services.ExportData{}, fmt.Errorf("quote not found: %w", err)
	}

	createdDate := services.EmptyMarker
	if dt := s.record.GetDateTime("created"); !dt.IsZero() {
		createdDate = dt.Time().Format("02 Jan 2006")
	}

	return services.BuildExportData(
		s.record.GetString("title"),
		s.record.GetString("client_name"),
		createdDate,
		s.quote,
		s.summary(settings),
		settings.CurrencySymbol,
	), nil
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

func exportFilename(title, ext string) string {
	return fmt.Sprintf("Quote_%s_%d.%s", sanitizeFilename(title), time.Now().Year(), ext)
}

// HandleQuoteExportExcel returns a handler that downloads a quote as .xlsx.
// Route: GET /quotes/{id}/export/excel
func HandleQuoteExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")
		if quoteID == "" {
			return e.String(http.StatusBadRequest, "Missing quote ID")
		}

		settings := GetSettings(e.Request)
		data, err := buildExportData(app, quoteID, settings)
		if err != nil {
			log.Printf("export_excel: %v", err)
			return e.String(http.StatusNotFound, "Quote not found")
		}

		xlsxBytes, err := services.GenerateExcel(data, settings.ExportSheetName)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(data.Title, "xlsx")))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleQuoteExportPDF returns a handler that downloads a quote as PDF.
// Route: GET /quotes/{id}/export/pdf
func HandleQuoteExportPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")
		if quoteID == "" {
			return e.String(http.StatusBadRequest, "Missing quote ID")
		}

		data, err := buildExportData(app, quoteID, GetSettings(e.Request))
		if err != nil {
			log.Printf("export_pdf: %v", err)
			return e.String(http.StatusNotFound, "Quote not found")
		}

		pdfBytes, err := services.GeneratePDF(data)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(data.Title, "pdf")))
		e.Response.Write(pdfBytes)
		return nil
	}
}
