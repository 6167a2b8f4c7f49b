package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotedesk/config"
	"quotedesk/services"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeQuote(t *testing.T, dir, name string, q services.Quote) string {
	t.Helper()
	raw, err := json.Marshal(q)
	require.NoError(t, err)
	return writeFile(t, dir, name, string(raw))
}

func pricedQuote(prices ...float64) services.Quote {
	q := services.NewQuote("Main")
	q.Sections[0].Items = nil
	for _, p := range prices {
		it := services.NewItem(q.Columns)
		it.Description = "Work"
		it.UnitPrice = p
		q.Sections[0].Items = append(q.Sections[0].Items, it)
	}
	return q
}

func runCmd(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd := NewSummarizeCommand(cfg)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSummarize_QuoteFileTable(t *testing.T) {
	dir := t.TempDir()
	q := pricedQuote(1000, 250.5)
	q.GrandTotalFormula = "{Price} * 2"
	path := writeQuote(t, dir, "quote.json", q)

	out, err := runCmd(t, &config.Config{CurrencySymbol: "$"}, path)
	require.NoError(t, err)

	assert.Contains(t, out, "Grand Total")
	assert.Contains(t, out, "$2,501.00")
	assert.Contains(t, out, "Unit Price (Sum)")
	assert.Contains(t, out, "$1,250.50")
	assert.NotContains(t, out, "warning:")
}

func TestSummarize_TableAndCollabJSON(t *testing.T) {
	dir := t.TempDir()
	table := writeFile(t, dir, "items.tsv", "Description\tQty\tUnit Price\nDesign\t2\t600\nBuild\t1\t900\n")
	collab := writeFile(t, dir, "partner.csv", "Description,Price\nCopywriting,300\n")

	out, err := runCmd(t, nil, "--table", table, "--collab", collab, "--formula", "{Price} - {Collab}", "--format", "json")
	require.NoError(t, err)

	var summary services.QuoteSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 1500.0, summary.Totals.PriceSum)
	assert.Equal(t, 300.0, summary.Totals.CollabSum)
	assert.Equal(t, 1200.0, summary.Totals.GrandTotal)
	assert.Equal(t, 900.0, summary.Totals.NetTotal)
	assert.Empty(t, summary.Totals.Error)
}

func TestSummarize_FormulaWarning(t *testing.T) {
	dir := t.TempDir()
	path := writeQuote(t, dir, "quote.json", pricedQuote(40))

	out, err := runCmd(t, nil, path, "--formula", "{Missing} + 1")
	require.NoError(t, err)
	assert.Contains(t, out, "warning: invalid grand total formula")
	assert.Contains(t, out, "$40.00")
}

func TestSummarize_StrictFromConfig(t *testing.T) {
	dir := t.TempDir()
	q := pricedQuote(10)
	for _, id := range []string{"colA", "colB"} {
		q.Columns = append(q.Columns, services.Column{
			ID: id, Name: "Fee", ValueType: services.ValueNumber,
			Calculation: &services.Calculation{Type: services.CalcSum},
		})
	}
	q.GrandTotalFormula = "{Fee}"
	path := writeQuote(t, dir, "quote.json", q)

	out, err := runCmd(t, &config.Config{CurrencySymbol: "$", StrictVariableNames: true}, path, "--format", "json")
	require.NoError(t, err)
	var summary services.QuoteSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Contains(t, summary.Totals.Error, "ambiguous")

	out, err = runCmd(t, &config.Config{CurrencySymbol: "$", StrictVariableNames: true}, path, "--format", "json", "--strict=false")
	require.NoError(t, err)
	summary = services.QuoteSummary{}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Empty(t, summary.Totals.Error)
	assert.NotEmpty(t, summary.Totals.Warnings)
}

func TestSummarize_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", "{nope")
	path := writeQuote(t, dir, "quote.json", pricedQuote(1))

	tests := []struct {
		name string
		args []string
	}{
		{"no input", nil},
		{"missing file", []string{filepath.Join(dir, "absent.json")}},
		{"invalid json", []string{bad}},
		{"unknown format", []string{path, "--format", "yaml"}},
		{"too many args", []string{path, path}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, nil, tt.args...)
			assert.Error(t, err)
		})
	}
}
