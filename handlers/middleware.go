package handlers

import (
	"context"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/config"
)

type contextKey string

const SettingsKey contextKey = "settings"

// Settings is the slice of the app configuration handlers need per request.
type Settings struct {
	CurrencySymbol      string
	StrictVariableNames bool
	ExportSheetName     string
}

// DefaultSettings mirrors the config defaults.
func DefaultSettings() Settings {
	return Settings{CurrencySymbol: "$", ExportSheetName: "Quote"}
}

// SettingsFromConfig copies the request-relevant fields out of cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	s := DefaultSettings()
	if cfg == nil {
		return s
	}
	s.CurrencySymbol = cfg.CurrencySymbol
	s.StrictVariableNames = cfg.StrictVariableNames
	if cfg.ExportSheetName != "" {
		s.ExportSheetName = cfg.ExportSheetName
	}
	return s
}

// GetSettings extracts the settings from the request context, falling back
// to DefaultSettings when the middleware did not run.
func GetSettings(r *http.Request) Settings {
	if val, ok := r.Context().Value(SettingsKey).(Settings); ok {
		return val
	}
	return DefaultSettings()
}

// SettingsMiddleware stores s in every request context so handlers format
// amounts and resolve formulas the same way.
func SettingsMiddleware(s Settings) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctx := context.WithValue(e.Request.Context(), SettingsKey, s)
		e.Request = e.Request.WithContext(ctx)
		return e.Next()
	}
}
