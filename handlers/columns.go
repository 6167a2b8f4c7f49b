package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// columnDefFromForm reads the column editor form fields.
func columnDefFromForm(r *http.Request) services.ColumnDef {
	def := services.ColumnDef{
		Name:       strings.TrimSpace(r.FormValue("name")),
		ValueType:  services.ValueType(strings.TrimSpace(r.FormValue("value_type"))),
		RowFormula: strings.TrimSpace(r.FormValue("row_formula")),
	}
	if def.ValueType == "" {
		def.ValueType = services.ValueText
	}
	if calc := strings.TrimSpace(r.FormValue("calculation")); calc != "" && calc != string(services.CalcNone) {
		def.Calculation = &services.Calculation{
			Type:    services.CalculationType(calc),
			Formula: strings.TrimSpace(r.FormValue("calculation_formula")),
		}
	}
	return def
}

// schemaErrorStatus maps schema editor errors onto HTTP statuses.
func schemaErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrColumnNotFound), errors.Is(err, services.ErrSectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrReservedColumn):
		return http.StatusForbidden
	case errors.Is(err, services.ErrMoveOutOfRange):
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

// HandleColumnAdd appends a column to a quote's schema.
// Route: POST /quotes/{id}/columns
func HandleColumnAdd(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		s, err := loadQuoteState(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("column_add: %v", err)
			return ErrorToast(e, http.StatusNotFound, "Quote not found")
		}

		updated, col, err := services.AddColumn(s.quote, columnDefFromForm(e.Request))
		if err != nil {
			return ErrorToast(e, schemaErrorStatus(err), err.Error())
		}
		s.quote = updated
		return saveQuoteState(app, e, s, "column_add", fmt.Sprintf("Column %q added", col.Name))
	}
}

// HandleColumnEdit replaces a column definition.
// Route: POST /quotes/{id}/columns/{columnId}
func HandleColumnEdit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		s, err := loadQuoteState(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("column_edit: %v", err)
			return ErrorToast(e, http.StatusNotFound, "Quote not found")
		}

		def := columnDefFromForm(e.Request)
		col := services.Column{
			ID:          e.Request.PathValue("columnId"),
			Name:        def.Name,
			ValueType:   def.ValueType,
			Calculation: def.Calculation,
			RowFormula:  def.RowFormula,
		}
		updated, err := services.EditColumn(s.quote, col)
		if err != nil {
			return ErrorToast(e, schemaErrorStatus(err), err.Error())
		}
		s.quote = updated
		return saveQuoteState(app, e, s, "column_edit", "Column updated")
	}
}

// HandleColumnDelete removes a column and its values.
// Route: DELETE /quotes/{id}/columns/{columnId}
func HandleColumnDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s, err := loadQuoteState(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("column_delete: %v", err)
			return ErrorToast(e, http.StatusNotFound, "Quote not found")
		}

		updated, err := services.DeleteColumn(s.quote, e.Request.PathValue("columnId"))
		if err != nil {
			return ErrorToast(e, schemaErrorStatus(err), err.Error())
		}
		s.quote = updated
		return saveQuoteState(app, e, s, "column_delete", "Column deleted")
	}
}

// HandleColumnMove shifts a column one place left or right.
// Route: POST /quotes/{id}/columns/{columnId}/move
func HandleColumnMove(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}
		dir, err := services.ParseDirection(e.Request.FormValue("direction"))
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Direction must be left or right")
		}

		s, err := loadQuoteState(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("column_move: %v", err)
			return ErrorToast(e, http.StatusNotFound, "Quote not found")
		}

		columnID := e.Request.PathValue("columnId")
		index := -1
		for i, c := range s.quote.Columns {
			if c.ID == columnID {
				index = i
				break
			}
		}
		if index < 0 {
			return ErrorToast(e, http.StatusNotFound, "Column not found")
		}

		updated, err := services.MoveColumn(s.quote, index, dir)
		if err != nil {
			return ErrorToast(e, schemaErrorStatus(err), err.Error())
		}
		s.quote = updated
		return saveQuoteState(app, e, s, "column_move", "Column moved")
	}
}
