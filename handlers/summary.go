package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// SummaryPanelData feeds the summary panel fragment.
type SummaryPanelData struct {
	QuoteID  string
	Symbol   string
	Summary  services.QuoteSummary
	Formula  string
	Warnings []string
}

// SummaryPanel renders the calculation results, the three totals and the
// variables a grand total formula may reference.
func SummaryPanel(data SummaryPanelData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &panelWriter{w: w}
		totals := data.Summary.Totals

		p.printf(`<div id="quote-summary" class="summary-panel" data-quote-id="%s">`, templ.EscapeString(data.QuoteID))

		p.printf(`<table class="summary-aggregates"><tbody>`)
		if len(data.Summary.Aggregates) == 0 {
			p.printf(`<tr><td colspan="2" class="summary-empty">No calculations defined</td></tr>`)
		}
		for _, a := range data.Summary.Aggregates {
			class := "summary-value"
			if a.Error != "" {
				class += " summary-error"
			}
			p.printf(`<tr><th>%s (%s)</th><td class="%s" title="%s">%s</td></tr>`,
				templ.EscapeString(a.Name),
				templ.EscapeString(a.CalculationLabel),
				class,
				templ.EscapeString(a.Error),
				templ.EscapeString(a.Display(data.Symbol)))
		}
		p.printf(`</tbody></table>`)

		p.printf(`<dl class="summary-totals">`)
		p.printf(`<dt>Grand Total</dt><dd id="grand-total">%s</dd>`, templ.EscapeString(services.FormatAmount(totals.GrandTotal, data.Symbol)))
		p.printf(`<dt>Collaborators</dt><dd id="collab-total">%s</dd>`, templ.EscapeString(services.FormatAmount(totals.CollabSum, data.Symbol)))
		p.printf(`<dt>Net Total</dt><dd id="net-total">%s</dd>`, templ.EscapeString(services.FormatAmount(totals.NetTotal, data.Symbol)))
		p.printf(`</dl>`)

		if totals.Error != "" {
			p.printf(`<p class="summary-formula-error">%s</p>`, templ.EscapeString(totals.Error))
		}
		for _, warn := range data.Warnings {
			p.printf(`<p class="summary-warning">%s</p>`, templ.EscapeString(warn))
		}

		p.printf(`<ul class="summary-variables">`)
		for _, v := range data.Summary.Variables {
			value := services.EmptyMarker
			if v.HasValue {
				value = services.FormatAmount(v.Value, data.Symbol)
			}
			p.printf(`<li><code>{%s}</code> %s</li>`, templ.EscapeString(v.Name), templ.EscapeString(value))
		}
		p.printf(`</ul>`)

		if data.Formula != "" {
			p.printf(`<p class="summary-formula">Formula: <code>%s</code></p>`, templ.EscapeString(data.Formula))
		}
		p.printf(`</div>`)
		return p.err
	})
}

// panelWriter keeps the first write error so the component body stays flat.
type panelWriter struct {
	w   io.Writer
	err error
}

func (p *panelWriter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// HandleQuoteSummary renders the summary panel fragment of a stored quote.
// Route: GET /quotes/{id}/summary
func HandleQuoteSummary(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		s, err := loadQuoteState(app, id)
		if err != nil {
			log.Printf("quote_summary: %v", err)
			return ErrorToast(e, http.StatusNotFound, "Quote not found")
		}

		settings := GetSettings(e.Request)
		summary := s.summary(settings)
		data := SummaryPanelData{
			QuoteID:  s.record.Id,
			Symbol:   settings.CurrencySymbol,
			Summary:  summary,
			Formula:  s.quote.GrandTotalFormula,
			Warnings: summary.Totals.Warnings,
		}

		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		return SummaryPanel(data).Render(e.Request.Context(), e.Response)
	}
}
