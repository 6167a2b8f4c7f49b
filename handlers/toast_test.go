package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pocketbase/pocketbase/core"
)

func newToastEvent() (*core.RequestEvent, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	return e, rec
}

func parseTrigger(t *testing.T, header string) map[string]json.RawMessage {
	t.Helper()
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(header), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v (%q)", err, header)
	}
	return parsed
}

func parseToast(t *testing.T, raw json.RawMessage) map[string]string {
	t.Helper()
	var toast map[string]string
	if err := json.Unmarshal(raw, &toast); err != nil {
		t.Fatalf("showToast is not valid JSON: %v", err)
	}
	return toast
}

func TestSetToast(t *testing.T) {
	tests := []struct {
		name      string
		toastType string
		message   string
	}{
		{"success", ToastSuccess, "Column added"},
		{"warning", ToastWarning, "Grand total falls back to the price sum"},
		{"error", ToastError, "Quote not found"},
		{"info", ToastInfo, "Nothing to import"},
		{"quotes in message", ToastInfo, `Column "Qty" added`},
		{"markup in message", ToastInfo, `<script>alert("x")</script>`},
		{"unicode", ToastSuccess, "Saved ✔ — 1,234.50 €"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, rec := newToastEvent()
			SetToast(e, tt.toastType, tt.message)

			parsed := parseTrigger(t, rec.Header().Get("HX-Trigger"))
			toast := parseToast(t, parsed["showToast"])
			if toast["type"] != tt.toastType {
				t.Errorf("type = %q, want %q", toast["type"], tt.toastType)
			}
			if toast["message"] != tt.message {
				t.Errorf("message = %q, want %q", toast["message"], tt.message)
			}
		})
	}
}

func TestSetToast_KeepsOtherTriggers(t *testing.T) {
	e, rec := newToastEvent()
	rec.Header().Set("HX-Trigger", `{"quoteChanged":{"id":"abc"}}`)

	SetToast(e, ToastSuccess, "Saved")

	parsed := parseTrigger(t, rec.Header().Get("HX-Trigger"))
	if _, ok := parsed["quoteChanged"]; !ok {
		t.Error("expected quoteChanged trigger to be preserved")
	}
	if got := parseToast(t, parsed["showToast"])["message"]; got != "Saved" {
		t.Errorf("message = %q, want Saved", got)
	}
}

func TestSetToast_ReplacesInvalidTrigger(t *testing.T) {
	e, rec := newToastEvent()
	rec.Header().Set("HX-Trigger", "quoteChanged")

	SetToast(e, ToastError, "Overwritten")

	parsed := parseTrigger(t, rec.Header().Get("HX-Trigger"))
	if len(parsed) != 1 {
		t.Errorf("expected only showToast, got %d keys", len(parsed))
	}
}

func TestSetToast_LastToastWins(t *testing.T) {
	e, rec := newToastEvent()
	SetToast(e, ToastSuccess, "first")
	SetToast(e, ToastWarning, "second")

	parsed := parseTrigger(t, rec.Header().Get("HX-Trigger"))
	toast := parseToast(t, parsed["showToast"])
	if toast["message"] != "second" || toast["type"] != ToastWarning {
		t.Errorf("toast = %v, want the second warning", toast)
	}
}

func TestSetToast_FlashCookie(t *testing.T) {
	e, rec := newToastEvent()
	SetToast(e, ToastSuccess, "Quote created")

	var flash *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "flash_toast" {
			flash = c
		}
	}
	if flash == nil {
		t.Fatal("expected flash_toast cookie")
	}
	raw, err := url.QueryUnescape(flash.Value)
	if err != nil {
		t.Fatalf("cookie value not query-escaped: %v", err)
	}
	var toast map[string]string
	if err := json.Unmarshal([]byte(raw), &toast); err != nil {
		t.Fatalf("cookie value is not JSON: %v", err)
	}
	if toast["message"] != "Quote created" {
		t.Errorf("cookie message = %q", toast["message"])
	}
	if flash.MaxAge != 10 {
		t.Errorf("MaxAge = %d, want 10", flash.MaxAge)
	}
}

func TestErrorToast(t *testing.T) {
	e, rec := newToastEvent()

	if err := ErrorToast(e, http.StatusNotFound, "Quote not found"); err != nil {
		t.Fatalf("ErrorToast returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Errorf("HX-Reswap = %q, want none", rec.Header().Get("HX-Reswap"))
	}
	if rec.Body.String() != "Quote not found" {
		t.Errorf("body = %q", rec.Body.String())
	}
	toast := parseToast(t, parseTrigger(t, rec.Header().Get("HX-Trigger"))["showToast"])
	if toast["type"] != ToastError {
		t.Errorf("type = %q, want error", toast["type"])
	}
}
