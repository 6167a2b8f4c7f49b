package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"
)

// Toast types understood by the client.
const (
	ToastSuccess = "success"
	ToastWarning = "warning"
	ToastError   = "error"
	ToastInfo    = "info"
)

// SetToast adds a showToast event to the HX-Trigger response header, keeping
// any events already set, and mirrors it in a short-lived flash cookie for
// plain redirects.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	toast := map[string]string{"message": message, "type": toastType}

	triggers := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &triggers); err != nil {
			log.Printf("toast: existing HX-Trigger is not valid JSON, overwriting: %v", err)
			triggers = map[string]any{}
		}
	}
	triggers["showToast"] = toast

	data, err := json.Marshal(triggers)
	if err != nil {
		log.Printf("toast: failed to marshal HX-Trigger JSON: %v", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))

	cookieVal, err := json.Marshal(toast)
	if err != nil {
		return
	}
	http.SetCookie(e.Response, &http.Cookie{
		Name:     "flash_toast",
		Value:    url.QueryEscape(string(cookieVal)),
		Path:     "/",
		MaxAge:   10,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
}

// ErrorToast fires an error toast and answers with statusCode. HX-Reswap:
// none keeps HTMX from swapping the message into the page.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, ToastError, message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}
