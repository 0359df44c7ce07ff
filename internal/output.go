package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// shortIDLen is how much of a record ID the raw table shows. Any unique
// prefix is accepted by --toggle-row.
const shortIDLen = 8

// OutputOptions controls what is rendered
type OutputOptions struct {
	Currency Currency
	Selected []string // bucket keys picked for the selected average
}

// Report is everything one invocation prints
type Report struct {
	Config        Config
	Sources       []Source
	Headers       []string
	Totals        GroupedTotals
	Averages      Averages
	ExcludedItems []ExcludedItem
	RawRows       []RawRow // nil when the raw view is not requested
	Warnings      []RowWarning
	Coverage      Coverage
	AutoExcluded  []string
}

// BuildReport collects the read views of a session
func BuildReport(s *Session, selected []string, raw *RawFilter) Report {
	r := Report{
		Config:        s.Config(),
		Sources:       s.Sources(),
		Headers:       s.Headers(),
		Totals:        s.Totals(),
		Averages:      s.Averages(selected),
		ExcludedItems: s.ExcludedItems(),
		Coverage:      s.Coverage(),
	}
	if raw != nil {
		r.RawRows = s.RawRows(*raw)
	}
	return r
}

// JSONOutput is the root JSON output object
type JSONOutput struct {
	Settings      JSONSettings       `json:"settings"`
	Sources       []Source           `json:"sources"`
	Totals        []JSONPeriodTotal  `json:"totals"`
	Summary       JSONSummary        `json:"summary"`
	ExcludedItems []JSONExcludedItem `json:"excluded_items"`
	RawRows       []JSONRawRow       `json:"raw_rows,omitempty"`
	Warnings      []string           `json:"warnings,omitempty"`
	AutoExcluded  []string           `json:"auto_excluded,omitempty"`
}

type JSONSettings struct {
	GroupBy              string   `json:"group_by"`
	ExcludeLargeAmount   bool     `json:"exclude_large_amount"`
	LargeAmountThreshold float64  `json:"large_amount_threshold"`
	CustomExcludedItems  []string `json:"custom_excluded_items"`
	ExcludedRows         []string `json:"excluded_rows"`
}

// JSONPeriodTotal carries the total as a string: encoding/json cannot
// represent NaN.
type JSONPeriodTotal struct {
	Period   string `json:"period"`
	Total    string `json:"total"`
	Selected bool   `json:"selected,omitempty"`
}

type JSONSummary struct {
	Periods         int    `json:"periods"`
	TotalAverage    string `json:"total_average"`
	SelectedAverage string `json:"selected_average"`
	SelectedCount   int    `json:"selected_count"`
	Currency        string `json:"currency,omitempty"`
	FirstDate       string `json:"first_date,omitempty"`
	LastDate        string `json:"last_date,omitempty"`
	Records         int    `json:"records"`
}

type JSONExcludedItem struct {
	Key        string `json:"key"`
	Kind       string `json:"kind,omitempty"`
	Excluded   bool   `json:"custom_excluded"`
	Toggleable bool   `json:"toggleable"`
}

type JSONRawRow struct {
	ID           string            `json:"id"`
	Source       string            `json:"source"`
	Date         string            `json:"date"`
	Amount       float64           `json:"amount"`
	ItemKey      string            `json:"item_key"`
	RowExcluded  bool              `json:"row_excluded"`
	ItemExcluded bool              `json:"item_excluded"`
	Columns      map[string]string `json:"columns"`
}

// PrintJSON outputs the report in JSON format
func PrintJSON(w io.Writer, r Report, opts OutputOptions) error {
	selected := selectedSet(opts.Selected)

	rows := make([]string, 0)
	for _, id := range r.Config.ExcludedRows() {
		rows = append(rows, id.String())
	}
	out := JSONOutput{
		Settings: JSONSettings{
			GroupBy:              string(r.Config.GroupBy()),
			ExcludeLargeAmount:   r.Config.LargeAmount().Enabled,
			LargeAmountThreshold: r.Config.LargeAmount().Threshold,
			CustomExcludedItems:  nonNil(r.Config.CustomExcludedItems()),
			ExcludedRows:         rows,
		},
		Sources:       nonNil(r.Sources),
		Totals:        make([]JSONPeriodTotal, 0, r.Totals.Len()),
		ExcludedItems: make([]JSONExcludedItem, 0, len(r.ExcludedItems)),
		AutoExcluded:  r.AutoExcluded,
		Summary: JSONSummary{
			Periods:         r.Totals.Len(),
			TotalAverage:    formatPlain(r.Averages.Total),
			SelectedAverage: formatPlain(r.Averages.Selected),
			SelectedCount:   r.Averages.SelectedCount,
			Currency:        opts.Currency.Code,
			Records:         r.Coverage.Records,
		},
	}
	if r.Coverage.Records > 0 {
		out.Summary.FirstDate = r.Coverage.Range.Start.Format("2006-01-02")
		out.Summary.LastDate = r.Coverage.Range.End.Format("2006-01-02")
	}
	for _, e := range r.Totals.Entries() {
		out.Totals = append(out.Totals, JSONPeriodTotal{Period: e.Key, Total: formatPlain(e.Total), Selected: selected[e.Key]})
	}
	for _, item := range r.ExcludedItems {
		out.ExcludedItems = append(out.ExcludedItems, JSONExcludedItem{
			Key:        item.Key,
			Kind:       string(item.Kind),
			Excluded:   item.CustomExcluded,
			Toggleable: item.Toggleable,
		})
	}
	for _, row := range r.RawRows {
		rec := row.Record
		out.RawRows = append(out.RawRows, JSONRawRow{
			ID:           rec.ID.String(),
			Source:       rec.SourceID,
			Date:         rec.Date.Format("2006-01-02"),
			Amount:       rec.Amount,
			ItemKey:      rec.ItemKey,
			RowExcluded:  row.RowExcluded,
			ItemExcluded: row.ItemExcluded,
			Columns:      rec.Row,
		})
	}
	for _, warning := range r.Warnings {
		out.Warnings = append(out.Warnings, warning.String())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// PrintSummary prints the settings and data coverage lines
func PrintSummary(w io.Writer, r Report) {
	cfg := r.Config
	large := "off"
	if cfg.LargeAmount().Enabled {
		large = fmt.Sprintf("> %s", formatPlain(cfg.LargeAmount().Threshold))
	}
	fmt.Fprintf(w, "Grouped by %s, excluding large amounts: %s, custom exclusions: %d, excluded rows: %d\n",
		cfg.GroupBy(), large, len(cfg.CustomExcludedItems()), len(cfg.ExcludedRows()))

	if r.Coverage.Records == 0 {
		fmt.Fprintln(w, "No records loaded")
	} else {
		names := make([]string, len(r.Sources))
		for i, src := range r.Sources {
			names[i] = src.ID
		}
		fmt.Fprintf(w, "%d records from %s (%s to %s, %d complete months)\n",
			r.Coverage.Records, strings.Join(names, ", "),
			r.Coverage.Range.Start.Format("2006-01-02"), r.Coverage.Range.End.Format("2006-01-02"),
			len(r.Coverage.CompleteMonths))
	}

	if len(r.AutoExcluded) > 0 {
		fmt.Fprintf(w, "Auto-excluded %d item(s) with large amounts: %s\n", len(r.AutoExcluded), strings.Join(r.AutoExcluded, ", "))
	}
	for _, warning := range r.Warnings {
		fmt.Fprintln(w, text.FgYellow.Sprint("warning: "+warning.String()))
	}
	fmt.Fprintln(w)
}

// PrintTotalsTable outputs the grouped totals with the averages as footer
func PrintTotalsTable(w io.Writer, r Report, opts OutputOptions) {
	selected := selectedSet(opts.Selected)

	t := newTable(w)
	t.AppendHeader(table.Row{"Period", "Total", "Selected"})
	for _, e := range r.Totals.Entries() {
		mark := ""
		if selected[e.Key] {
			mark = text.FgGreen.Sprint("*")
		}
		t.AppendRow(table.Row{e.Key, formatAmount(opts.Currency, e.Total), mark})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{text.Bold.Sprint("Average (all)"), text.Bold.Sprint(formatAmount(opts.Currency, r.Averages.Total)), ""})
	t.AppendFooter(table.Row{
		text.Bold.Sprintf("Average (selected, %d)", r.Averages.SelectedCount),
		text.Bold.Sprint(formatAmount(opts.Currency, r.Averages.Selected)),
		"",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignCenter},
	})
	t.Render()
}

// PrintExcludedItemsTable outputs the excluded items registry
func PrintExcludedItemsTable(w io.Writer, r Report) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Item", "Reason", "Custom Excluded"})
	for _, item := range r.ExcludedItems {
		reason := string(item.Kind)
		switch item.Kind {
		case KindDefault:
			reason = text.FgHiBlack.Sprint(reason)
		case KindLargeAmount:
			reason = text.FgYellow.Sprint(reason)
		case KindNone:
			reason = text.FgHiBlack.Sprint("-")
		}
		custom := "no"
		if !item.Toggleable {
			custom = text.FgHiBlack.Sprint("always")
		} else if item.CustomExcluded {
			custom = text.FgRed.Sprint("yes")
		}
		t.AppendRow(table.Row{item.Key, reason, custom})
	}
	t.Render()
}

// PrintRawTable outputs the filtered records with their original columns
func PrintRawTable(w io.Writer, r Report, opts OutputOptions) {
	headers := r.Headers
	if len(headers) == 0 {
		headers = []string{ColumnDate, ColumnType, ColumnDetails, ColumnAmount}
	}

	t := newTable(w)
	header := table.Row{"ID", "Source"}
	for _, h := range headers {
		header = append(header, h)
	}
	header = append(header, "Excluded")
	t.AppendHeader(header)

	amountCol := slices.Index(headers, ColumnAmount)
	for _, row := range r.RawRows {
		rec := row.Record
		cells := table.Row{rec.ID.String()[:shortIDLen], rec.SourceID}
		for i, h := range headers {
			if i == amountCol {
				cells = append(cells, formatAmount(opts.Currency, rec.Amount))
				continue
			}
			cells = append(cells, rec.Row[h])
		}
		cells = append(cells, exclusionFlags(row))
		t.AppendRow(cells)
	}
	if amountCol >= 0 {
		t.SetColumnConfigs([]table.ColumnConfig{{Number: amountCol + 3, Align: text.AlignRight}})
	}
	t.Render()
	fmt.Fprintf(w, "%d row(s)\n", len(r.RawRows))
}

func exclusionFlags(row RawRow) string {
	var flags []string
	if row.RowExcluded {
		flags = append(flags, "row")
	}
	if row.ItemExcluded {
		flags = append(flags, "item")
	}
	if len(flags) == 0 {
		return ""
	}
	return text.FgRed.Sprint(strings.Join(flags, ","))
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// formatAmount highlights not-a-number totals so they stand out as errors
func formatAmount(c Currency, v float64) string {
	if math.IsNaN(v) {
		return text.FgRed.Sprint(c.Format(v))
	}
	return c.Format(v)
}

func formatPlain(v float64) string {
	return PlainCurrency().Format(v)
}

func selectedSet(keys []string) map[string]bool {
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = true
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
