package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"

	"github.com/gigurra/statement-stats/internal"
	"github.com/gigurra/statement-stats/internal/logging"
	"github.com/gigurra/statement-stats/internal/store"
)

type Params struct {
	Files        []string `descr:"Statement files to add (format:path or path; format by extension: .csv, .xlsx, .json)" positional:"true" optional:"true"`
	Source       string   `descr:"Format for files without a format: prefix (csv, xlsx, simple-json)" optional:"true"`
	Config       string   `descr:"Settings store: file path, sqlite://path, postgres://... or memory: (default ~/.statement-stats/settings.yaml)" optional:"true"`
	EnvFile      string   `descr:"dotenv file read before the environment" default:".env"`
	Remove       []string `descr:"Remove a previously added source by file name" optional:"true"`
	GroupBy      string   `descr:"Group totals by week or month" alts:"week,month" strict:"true" optional:"true"`
	ExcludeLarge string   `descr:"Exclude amounts above the threshold from totals" alts:"true,false" strict:"true" optional:"true"`
	Threshold    string   `descr:"Large amount threshold, a positive number" optional:"true"`
	ToggleItem   []string `descr:"Toggle custom exclusion of an item key (<Type>_<Details>)" optional:"true"`
	ToggleRow    []string `descr:"Toggle exclusion of a single record by ID or ID prefix" optional:"true"`
	Reset        bool     `descr:"Clear custom exclusions and restore the large amount defaults" default:"false"`
	Select       []string `descr:"Period keys to include in the selected average" optional:"true"`
	View         string   `descr:"What to show" alts:"totals,excluded,raw,all" strict:"true" default:"totals"`
	Search       string   `descr:"Raw view: case-insensitive search in all columns" optional:"true"`
	PositiveOnly bool     `descr:"Raw view: only positive amounts" default:"false"`
	LargeOnly    bool     `descr:"Raw view: only large amounts" default:"false"`
	Output       string   `descr:"Output format" alts:"table,json" strict:"true" default:"table"`
	Currency     string   `descr:"Currency code for formatting (e.g. NZD, SEK, USD), 'auto' to detect from the system locale" optional:"true"`
}

func main() {
	boa.NewCmdT[Params]("statement-stats").
		WithShort("Period totals of bank statement spending").
		WithLong("Sums bank statement transactions per week or month, excluding internal transfers, chosen item categories, single rows and large amounts. Added files and settings are remembered between runs.").
		WithRunFunc(func(params *Params) {
			if err := run(context.Background(), params, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func run(ctx context.Context, params *Params, w io.Writer) error {
	appCfg, err := internal.LoadAppConfig(params.EnvFile)
	if err != nil {
		return err
	}
	logger := logging.Setup(logging.DefaultConfig())

	location := appCfg.Store
	if params.Config != "" {
		location = params.Config
	}
	st, err := store.Open(ctx, location, logger)
	if err != nil {
		return fmt.Errorf("opening settings store: %w", err)
	}
	defer st.Close()

	session := internal.NewSession(ctx, internal.SessionOptions{
		Store:      st,
		Thresholds: appCfg.Thresholds(),
		Logger:     logger,
	})
	warnings := session.Restore(ctx)

	for _, name := range params.Remove {
		if err := session.RemoveSource(ctx, name); err != nil {
			return err
		}
	}

	var autoExcluded []string
	if len(params.Files) > 0 {
		files, err := internal.WithDefaultFormat(params.Files, params.Source)
		if err != nil {
			return err
		}
		res, err := session.Ingest(ctx, files)
		if err != nil {
			return err
		}
		warnings = append(warnings, res.Warnings...)
		autoExcluded = res.AutoExcluded
	}

	if err := applySettings(ctx, session, params); err != nil {
		return err
	}

	currency := resolveCurrency(params.Currency, appCfg.Currency)

	var rawFilter *internal.RawFilter
	if params.View == "raw" || params.View == "all" {
		rawFilter = &internal.RawFilter{
			Search:       params.Search,
			PositiveOnly: params.PositiveOnly,
			LargeOnly:    params.LargeOnly,
		}
	}
	report := internal.BuildReport(session, params.Select, rawFilter)
	report.Warnings = warnings
	report.AutoExcluded = autoExcluded

	opts := internal.OutputOptions{Currency: currency, Selected: params.Select}
	if params.Output == "json" {
		return internal.PrintJSON(w, report, opts)
	}

	internal.PrintSummary(w, report)
	switch params.View {
	case "excluded":
		internal.PrintExcludedItemsTable(w, report)
	case "raw":
		internal.PrintRawTable(w, report, opts)
	case "all":
		internal.PrintTotalsTable(w, report, opts)
		fmt.Fprintln(w)
		internal.PrintExcludedItemsTable(w, report)
		fmt.Fprintln(w)
		internal.PrintRawTable(w, report, opts)
	default:
		internal.PrintTotalsTable(w, report, opts)
	}
	return nil
}

// applySettings runs the requested settings changes in a fixed order. An
// invalid threshold is reported and the current one kept.
func applySettings(ctx context.Context, session *internal.Session, params *Params) error {
	if params.Reset {
		session.ResetSettings(ctx)
	}
	if params.GroupBy != "" {
		if err := session.SetGroupBy(ctx, params.GroupBy); err != nil {
			return err
		}
	}
	switch params.ExcludeLarge {
	case "true":
		session.SetExcludeLargeAmount(ctx, true)
	case "false":
		session.SetExcludeLargeAmount(ctx, false)
	}
	if params.Threshold != "" {
		if err := session.SetLargeAmountThreshold(ctx, params.Threshold); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v, keeping %v\n", err, session.Config().LargeAmount().Threshold)
		}
	}
	for _, key := range params.ToggleItem {
		if !session.ToggleItem(ctx, key) {
			fmt.Fprintf(os.Stderr, "Warning: %q is excluded by default and cannot be toggled\n", key)
		}
	}
	for _, ref := range params.ToggleRow {
		if _, err := session.ToggleRow(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}

// resolveCurrency picks the flag over the environment; "auto" detects the
// currency of the system locale and falls back to plain numbers.
func resolveCurrency(flag, env string) internal.Currency {
	code := flag
	if code == "" {
		code = env
	}
	if strings.EqualFold(code, "auto") {
		code = internal.DetectSystemCurrency()
	}
	return internal.GetCurrency(code)
}
