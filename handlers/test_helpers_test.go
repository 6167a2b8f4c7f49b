package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/collections"
	"quotedesk/services"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// newFormRequest builds a form POST with the given path values set.
func newFormRequest(method, target string, form url.Values, pathValues map[string]string) *http.Request {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	return req
}

// withSettings attaches s to the request as SettingsMiddleware would.
func withSettings(req *http.Request, s Settings) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), SettingsKey, s))
}

// decodeQuoteResponse reads a JSON quote response.
func decodeQuoteResponse(t *testing.T, rec *httptest.ResponseRecorder) quoteResponse {
	t.Helper()
	var resp quoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not a quote JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

// saveQuote overwrites the stored state of quote id.
func saveQuote(t *testing.T, app *pocketbase.PocketBase, id string, q services.Quote) {
	t.Helper()
	record, _, err := collections.LoadQuote(app, id)
	if err != nil {
		t.Fatalf("load quote %s: %v", id, err)
	}
	if err := collections.SaveQuote(app, record, q); err != nil {
		t.Fatalf("save quote %s: %v", id, err)
	}
}
