package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/collections"
	"quotedesk/services"
)

// maxUploadSize caps pasted tables and uploaded files.
const maxUploadSize = 10 << 20

var errNoTable = errors.New("paste a table or select a file to upload")

// readImportRows returns the rows of the pasted "table" field or of the
// uploaded "file" (.xlsx read as a workbook, anything else as text).
func readImportRows(r *http.Request) ([][]string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return nil, fmt.Errorf("file too large or invalid form data: %w", err)
		}
		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()
			if strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
				return services.ReadWorkbookRows(file)
			}
			raw, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
			if err != nil {
				return nil, fmt.Errorf("read upload: %w", err)
			}
			return services.ParseTable(string(raw))
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form data: %w", err)
	}

	text := r.FormValue("table")
	if strings.TrimSpace(text) == "" {
		return nil, errNoTable
	}
	return services.ParseTable(text)
}

func sectionIndex(r *http.Request) (int, error) {
	idx, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", services.ErrSectionNotFound, r.PathValue("index"))
	}
	return idx, nil
}

// HandleSectionImport pastes a table into one section. Pasting into the
// first section also replaces the column schema.
// Route: POST /quotes/{id}/sections/{index}/import
func HandleSectionImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		idx, err := sectionIndex(e.Request)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Section not found")
		}

		s, err := loadQuoteState(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("section_import: %v", err)
			return ErrorToast(e, http.StatusNotFound, "Quote not found")
		}

		rows, err := readImportRows(e.Request)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}

		updated, err := services.ApplyImport(s.quote, idx, rows)
		if err != nil {
			return ErrorToast(e, schemaErrorStatus(err), err.Error())
		}
		s.quote = updated
		return saveQuoteState(app, e, s, "section_import",
			fmt.Sprintf("%d items imported", len(s.quote.Sections[idx].Items)))
	}
}

// HandleSectionImportCheck dry-runs an import and lists the cells that would
// be coerced. With format=xlsx the issues are downloaded as a workbook.
// Route: POST /quotes/{id}/sections/{index}/import/check
func HandleSectionImportCheck(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		idx, err := sectionIndex(e.Request)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Section not found")
		}

		s, err := loadQuoteState(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("import_check: %v", err)
			return ErrorToast(e, http.StatusNotFound, "Quote not found")
		}

		rows, err := readImportRows(e.Request)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}

		check, err := services.CheckImport(s.quote, idx, rows)
		if err != nil {
			return ErrorToast(e, schemaErrorStatus(err), err.Error())
		}

		if e.Request.FormValue("format") != "xlsx" {
			return e.JSON(http.StatusOK, check)
		}

		xlsxBytes, err := services.GenerateImportReport(check.Issues)
		if err != nil {
			log.Printf("import_check: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		filename := fmt.Sprintf("Import_Issues_%s.xlsx", time.Now().Format("2006-01-02"))
		e.Response.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleCollabImport replaces the collaborator quote with a pasted table.
// Route: POST /quotes/{id}/collab
func HandleCollabImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if _, err := app.FindRecordById("quotes", id); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Quote not found")
		}

		rows, err := readImportRows(e.Request)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}

		res, err := services.ImportRows(rows)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}

		collaborator := strings.TrimSpace(e.Request.FormValue("collaborator"))
		if collaborator == "" {
			collaborator = "Collaborator"
		}
		collab := services.Quote{
			Columns: res.Columns,
			Sections: []services.Section{{
				ID:    services.NewSectionID(),
				Name:  collaborator,
				Items: res.Items,
			}},
		}
		if _, err := collections.SaveCollab(app, id, collaborator, services.Normalize(collab)); err != nil {
			log.Printf("collab_import: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		s, err := loadQuoteState(app, id)
		if err != nil {
			log.Printf("collab_import: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		SetToast(e, ToastSuccess, fmt.Sprintf("%d collaborator items imported", len(res.Items)))
		return respondQuote(e, s)
	}
}
