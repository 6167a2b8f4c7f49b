package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"quotedesk/collections"
	"quotedesk/testhelpers"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces to hyphens", "Website Redesign", "Website-Redesign"},
		{"slashes to hyphens", "Q1/Q2", "Q1-Q2"},
		{"backslashes", "a\\b", "a-b"},
		{"colons", "Phase:1", "Phase-1"},
		{"quotes dropped", `The "Big" One`, "The-Big-One"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFilename(tt.input); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildExportData(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	record := testhelpers.CreateTestQuote(t, app, "Export Quote", 1200, 34.5)
	testhelpers.CreateTestCollabQuote(t, app, record.Id, 200)

	data, err := buildExportData(app, record.Id, Settings{CurrencySymbol: "€"})
	if err != nil {
		t.Fatalf("buildExportData error: %v", err)
	}
	if data.Title != "Export Quote" || data.ClientName != "Test Client" {
		t.Errorf("title / client = %q / %q", data.Title, data.ClientName)
	}
	// One section heading plus two items.
	if len(data.Rows) != 3 || !data.Rows[0].Section {
		t.Fatalf("rows = %+v", data.Rows)
	}
	if data.GrandTotal != "€1,234.50" {
		t.Errorf("grand total = %q, want €1,234.50", data.GrandTotal)
	}
	if data.CollabSum != "€200.00" || data.NetTotal != "€1,034.50" {
		t.Errorf("collab / net = %q / %q", data.CollabSum, data.NetTotal)
	}
}

func TestBuildExportData_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if _, err := buildExportData(app, "nonexistent", DefaultSettings()); err == nil {
		t.Error("expected error for missing quote")
	}
}

func TestHandleQuoteExportExcel(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	record := testhelpers.CreateTestQuote(t, app, "Excel Quote", 100, 200)

	_, q, _ := collections.LoadQuote(app, record.Id)
	q.GrandTotalFormula = "{Price} * 2"
	if err := collections.SaveQuote(app, record, q); err != nil {
		t.Fatal(err)
	}

	req := newFormRequest(http.MethodGet, "/quotes/"+record.Id+"/export/excel", nil, map[string]string{"id": record.Id})
	req = withSettings(req, Settings{CurrencySymbol: "$", ExportSheetName: "Devis"})
	rec := httptest.NewRecorder()

	if err := HandleQuoteExportExcel(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Quote_Excel-Quote_") || !strings.HasSuffix(cd, `.xlsx"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("export is not a workbook: %v", err)
	}
	defer f.Close()

	if name := f.GetSheetName(0); name != "Devis" {
		t.Errorf("sheet name = %q, want Devis", name)
	}
	rows, err := f.GetRows("Devis")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	var flat strings.Builder
	for _, r := range rows {
		flat.WriteString(strings.Join(r, "|"))
		flat.WriteString("\n")
	}
	testhelpers.AssertHTMLContains(t, flat.String(), "Excel Quote", "Grand Total:|$600.00", "Net Total:|$600.00")
}

func TestHandleQuoteExportPDF(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	record := testhelpers.CreateTestQuote(t, app, "PDF Quote", 75)

	req := newFormRequest(http.MethodGet, "/quotes/"+record.Id+"/export/pdf", nil, map[string]string{"id": record.Id})
	rec := httptest.NewRecorder()

	if err := HandleQuoteExportPDF(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF document")
	}
}

func TestHandleQuoteExport_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	for name, handler := range map[string]func(*testing.T) int{
		"excel": func(t *testing.T) int {
			req := newFormRequest(http.MethodGet, "/quotes/x/export/excel", nil, map[string]string{"id": "x"})
			rec := httptest.NewRecorder()
			HandleQuoteExportExcel(app)(newTestRequestEvent(app, req, rec))
			return rec.Code
		},
		"pdf": func(t *testing.T) int {
			req := newFormRequest(http.MethodGet, "/quotes/x/export/pdf", nil, map[string]string{"id": "x"})
			rec := httptest.NewRecorder()
			HandleQuoteExportPDF(app)(newTestRequestEvent(app, req, rec))
			return rec.Code
		},
	} {
		t.Run(name, func(t *testing.T) {
			if code := handler(t); code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", code)
			}
		})
	}
}
