package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// option is one choice of a column editor dropdown.
type option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// columnOptions lists the dropdown choices of the column editor.
type columnOptions struct {
	ValueTypes   []option `json:"valueTypes"`
	Calculations []option `json:"calculations"`
	Directions   []option `json:"directions"`
}

func buildColumnOptions() columnOptions {
	var opts columnOptions
	for _, v := range services.ValueTypeOptions {
		opts.ValueTypes = append(opts.ValueTypes, option{Value: string(v), Label: titleCase(string(v))})
	}
	for _, c := range services.CalculationOptions {
		label := c.Label()
		if label == "" {
			label = "None"
		}
		opts.Calculations = append(opts.Calculations, option{Value: string(c), Label: label})
	}
	for _, d := range services.MoveOptions {
		opts.Directions = append(opts.Directions, option{Value: d, Label: titleCase(d)})
	}
	return opts
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// HandleColumnOptions returns the choices offered by the column editor.
// Route: GET /quotes/options
func HandleColumnOptions() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return e.JSON(http.StatusOK, buildColumnOptions())
	}
}
