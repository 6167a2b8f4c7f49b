// Package cli holds the quotedesk subcommands attached to the PocketBase
// root command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"quotedesk/config"
	"quotedesk/services"
)

// SummarizeOptions holds options for the summarize command.
type SummarizeOptions struct {
	Collab  string
	Table   string
	Formula string
	Format  string
	Strict  bool
}

// NewSummarizeCommand creates the summarize command.
func NewSummarizeCommand(cfg *config.Config) *cobra.Command {
	opts := &SummarizeOptions{}
	if cfg != nil {
		opts.Strict = cfg.StrictVariableNames
	}

	cmd := &cobra.Command{
		Use:   "summarize [quote.json]",
		Short: "Print the calculated totals of a quote",
		Long: `Recompute a quote offline and print its items, calculation results and
totals. The quote is read from a JSON file, from a pasted table (--table),
or both: the table then replaces the first section and the column schema.`,
		Example: `  # Totals of a stored quote export
  quotedesk summarize quote.json

  # Quick estimate from a spreadsheet paste with a 20% markup
  quotedesk summarize --table items.tsv --formula "{Price} * 1.2"

  # Subtract a collaborator quote, JSON output
  quotedesk summarize quote.json --collab partner.json --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := "$"
			if cfg != nil {
				symbol = cfg.CurrencySymbol
			}
			return runSummarize(cmd.OutOrStdout(), args, opts, symbol)
		},
	}

	cmd.Flags().StringVarP(&opts.Collab, "collab", "c", "", "Collaborator quote (JSON or table file)")
	cmd.Flags().StringVarP(&opts.Table, "table", "t", "", "Table file (tab, ';' or ',' separated, or .xlsx)")
	cmd.Flags().StringVar(&opts.Formula, "formula", "", "Grand total formula, e.g. \"{Price} * 1.2\"")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json")
	cmd.Flags().BoolVar(&opts.Strict, "strict", opts.Strict, "Reject formulas that use a variable name defined twice")

	return cmd
}

func runSummarize(w io.Writer, args []string, opts *SummarizeOptions, symbol string) error {
	if len(args) == 0 && opts.Table == "" {
		return fmt.Errorf("a quote file or --table is required")
	}

	quote := services.NewQuote("Section 1")
	if len(args) == 1 {
		q, err := readQuoteFile(args[0])
		if err != nil {
			return err
		}
		quote = q
	}
	if opts.Table != "" {
		rows, err := readTableFile(opts.Table)
		if err != nil {
			return err
		}
		if len(quote.Sections) == 0 {
			quote.Sections = []services.Section{{ID: services.NewSectionID(), Name: "Section 1"}}
		}
		quote, err = services.ApplyImport(quote, 0, rows)
		if err != nil {
			return fmt.Errorf("import %s: %w", opts.Table, err)
		}
	}
	if opts.Formula != "" {
		quote.GrandTotalFormula = opts.Formula
	}
	quote = services.Normalize(quote)

	var collab *services.Quote
	if opts.Collab != "" {
		c, err := readCollabFile(opts.Collab)
		if err != nil {
			return err
		}
		collab = &c
	}

	summary := services.Recompute(quote, collab, services.RecomputeOptions{StrictVariableNames: opts.Strict})

	switch opts.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case "table", "":
		renderSummary(w, quote, summary, symbol)
		return nil
	}
	return fmt.Errorf("unknown format %q", opts.Format)
}

func readQuoteFile(path string) (services.Quote, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return services.Quote{}, fmt.Errorf("read quote: %w", err)
	}
	var q services.Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		return services.Quote{}, fmt.Errorf("decode quote %s: %w", path, err)
	}
	return q, nil
}

func readTableFile(path string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open table: %w", err)
		}
		defer f.Close()
		return services.ReadWorkbookRows(f)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return services.ParseTable(string(raw))
}

// readCollabFile accepts a JSON quote or any table file.
func readCollabFile(path string) (services.Quote, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return readQuoteFile(path)
	}
	rows, err := readTableFile(path)
	if err != nil {
		return services.Quote{}, err
	}
	res, err := services.ImportRows(rows)
	if err != nil {
		return services.Quote{}, fmt.Errorf("import collaborator %s: %w", path, err)
	}
	return services.Quote{
		Columns:  res.Columns,
		Sections: []services.Section{{ID: services.NewSectionID(), Name: "Collaborator", Items: res.Items}},
	}, nil
}

func renderSummary(w io.Writer, quote services.Quote, summary services.QuoteSummary, symbol string) {
	items := table.NewWriter()
	items.SetOutputMirror(w)
	items.SetStyle(table.StyleLight)

	header := table.Row{"#"}
	var configs []table.ColumnConfig
	for i, c := range quote.Columns {
		header = append(header, c.Name)
		if c.ValueType == services.ValueNumber {
			configs = append(configs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight})
		}
	}
	items.AppendHeader(header)
	items.SetColumnConfigs(configs)

	for si, s := range quote.Sections {
		items.AppendRow(table.Row{fmt.Sprintf("%d", si+1), s.Name})
		for ii, it := range s.Items {
			row := table.Row{fmt.Sprintf("%d.%d", si+1, ii+1)}
			for _, c := range quote.Columns {
				row = append(row, cellText(it, c, summary, symbol))
			}
			items.AppendRow(row)
		}
	}
	items.Render()

	totals := table.NewWriter()
	totals.SetOutputMirror(w)
	totals.SetStyle(table.StyleLight)
	totals.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	for _, a := range summary.Aggregates {
		totals.AppendRow(table.Row{fmt.Sprintf("%s (%s)", a.Name, a.CalculationLabel), a.Display(symbol)})
	}
	totals.AppendSeparator()
	totals.AppendRow(table.Row{"Grand Total", services.FormatAmount(summary.Totals.GrandTotal, symbol)})
	totals.AppendRow(table.Row{"Collaborators", services.FormatAmount(summary.Totals.CollabSum, symbol)})
	totals.AppendRow(table.Row{"Net Total", services.FormatAmount(summary.Totals.NetTotal, symbol)})
	totals.Render()

	if summary.Totals.Error != "" {
		_, _ = fmt.Fprintf(w, "warning: %s\n", summary.Totals.Error)
	}
	for _, warn := range summary.Totals.Warnings {
		_, _ = fmt.Fprintf(w, "note: %s\n", warn)
	}
}

func cellText(it services.Item, c services.Column, summary services.QuoteSummary, symbol string) string {
	switch {
	case c.ID == services.ColumnDescription:
		return it.Description
	case c.ID == services.ColumnUnitPrice:
		return services.FormatAmount(summary.Cells[it.ID][c.ID], symbol)
	case c.ValueType == services.ValueNumber:
		return services.FormatQuantity(summary.Cells[it.ID][c.ID])
	}
	if v := it.CustomFields[c.ID]; v != nil {
		return fmt.Sprint(v)
	}
	return ""
}
