package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// maxRecomputeBody caps the JSON body of a stateless recompute.
const maxRecomputeBody = 8 << 20

// recomputeRequest is the body of POST /quotes/recompute.
type recomputeRequest struct {
	Quote  services.Quote  `json:"quote"`
	Collab *services.Quote `json:"collab"`
}

// HandleRecompute derives the summary of a quote sent in the request body
// without touching storage.
// Route: POST /quotes/recompute
func HandleRecompute() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body recomputeRequest
		dec := json.NewDecoder(http.MaxBytesReader(e.Response, e.Request.Body, maxRecomputeBody))
		if err := dec.Decode(&body); err != nil {
			log.Printf("recompute: invalid body: %v", err)
			return e.String(http.StatusBadRequest, "Invalid quote JSON")
		}

		settings := GetSettings(e.Request)
		quote := services.Normalize(body.Quote)
		summary := services.Recompute(quote, body.Collab, services.RecomputeOptions{
			StrictVariableNames: settings.StrictVariableNames,
		})
		return e.JSON(http.StatusOK, summary)
	}
}

// HandleGrandTotal stores a new grand total formula and returns the totals.
// An invalid formula is still saved; the totals fall back to the price sum.
// Route: POST /quotes/{id}/grand-total
func HandleGrandTotal(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		s, err := loadQuoteState(app, id)
		if err != nil {
			log.Printf("grand_total: %v", err)
			return ErrorToast(e, http.StatusNotFound, "Quote not found")
		}

		s.quote.GrandTotalFormula = strings.TrimSpace(e.Request.FormValue("formula"))
		return saveQuoteState(app, e, s, "grand_total", "Grand total formula saved")
	}
}

// HandleVariables lists the names a grand total formula may reference.
// Route: GET /quotes/{id}/variables
func HandleVariables(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s, err := loadQuoteState(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("variables: %v", err)
			return e.String(http.StatusNotFound, "Quote not found")
		}
		return e.JSON(http.StatusOK, services.Variables(s.quote, s.collab))
	}
}
