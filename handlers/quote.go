package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/collections"
	"quotedesk/services"
)

// quoteState is one loaded quote with its collaborator quote, if any.
type quoteState struct {
	record *core.Record
	quote  services.Quote
	collab *services.Quote
}

// quoteResponse is the JSON body returned by every quote mutation.
type quoteResponse struct {
	ID       string                `json:"id"`
	Title    string                `json:"title"`
	Client   string                `json:"clientName"`
	Quote    services.Quote        `json:"quote"`
	Collab   *services.Quote       `json:"collab,omitempty"`
	Summary  services.QuoteSummary `json:"summary"`
	Warnings []string              `json:"warnings,omitempty"`
}

func loadQuoteState(app *pocketbase.PocketBase, id string) (quoteState, error) {
	record, q, err := collections.LoadQuote(app, id)
	if err != nil {
		return quoteState{}, err
	}
	_, collab, err := collections.LoadCollab(app, id)
	if err != nil {
		return quoteState{}, err
	}
	return quoteState{record: record, quote: q, collab: collab}, nil
}

func (s quoteState) summary(settings Settings) services.QuoteSummary {
	return services.Recompute(s.quote, s.collab, services.RecomputeOptions{
		StrictVariableNames: settings.StrictVariableNames,
	})
}

// respondQuote recomputes the summary of s and writes it as JSON.
func respondQuote(e *core.RequestEvent, s quoteState) error {
	return respondQuoteWith(e, s, s.summary(GetSettings(e.Request)))
}

// respondQuoteWith writes s with an already computed summary.
func respondQuoteWith(e *core.RequestEvent, s quoteState, summary services.QuoteSummary) error {
	return e.JSON(http.StatusOK, quoteResponse{
		ID:       s.record.Id,
		Title:    s.record.GetString("title"),
		Client:   s.record.GetString("client_name"),
		Quote:    s.quote,
		Collab:   s.collab,
		Summary:  summary,
		Warnings: summary.Totals.Warnings,
	})
}

// saveQuoteState persists a transformed quote and answers with the fresh
// summary. A formula that falls back to the price sum raises a warning toast.
func saveQuoteState(app *pocketbase.PocketBase, e *core.RequestEvent, s quoteState, handler, message string) error {
	if err := collections.SaveQuote(app, s.record, s.quote); err != nil {
		log.Printf("%s: %v", handler, err)
		return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}

	summary := s.summary(GetSettings(e.Request))
	if summary.Totals.Error != "" {
		SetToast(e, ToastWarning, fmt.Sprintf("%s. Grand total falls back to the price sum: %s", message, summary.Totals.Error))
	} else {
		SetToast(e, ToastSuccess, message)
	}
	return respondQuoteWith(e, s, summary)
}

// HandleQuoteSave creates a quote with the default schema and one section.
// Route: POST /quotes
func HandleQuoteSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		title := strings.TrimSpace(e.Request.FormValue("title"))
		clientName := strings.TrimSpace(e.Request.FormValue("client_name"))
		if title == "" {
			return ErrorToast(e, http.StatusBadRequest, "Quote title is required")
		}

		record, err := collections.CreateQuote(app, title, clientName)
		if err != nil {
			log.Printf("quote_create: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, ToastSuccess, "Quote created successfully")

		target := "/quotes/" + record.Id
		if e.Request.Header.Get("HX-Request") == "true" {
			e.Response.Header().Set("HX-Redirect", target)
			return e.String(http.StatusOK, "")
		}
		return e.Redirect(http.StatusFound, target)
	}
}

// HandleQuoteView returns a quote, its collaborator quote and the summary.
// Route: GET /quotes/{id}
func HandleQuoteView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return e.String(http.StatusBadRequest, "Missing quote ID")
		}

		s, err := loadQuoteState(app, id)
		if err != nil {
			log.Printf("quote_view: %v", err)
			return e.String(http.StatusNotFound, "Quote not found")
		}
		return respondQuote(e, s)
	}
}

// HandleQuoteDelete removes a quote. Its collaborator quote goes with it.
// Route: DELETE /quotes/{id}
func HandleQuoteDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		record, err := app.FindRecordById("quotes", id)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Quote not found")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("quote_delete: could not delete %s: %v", id, err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to delete quote")
		}

		SetToast(e, ToastSuccess, "Quote deleted")
		return e.NoContent(http.StatusNoContent)
	}
}
