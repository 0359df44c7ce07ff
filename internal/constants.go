package internal

import "errors"

var (
	ErrInvalidGroupBy   = errors.New("invalid grouping mode")
	ErrInvalidThreshold = errors.New("invalid large amount threshold")
	ErrUnknownSource    = errors.New("unknown source")
	ErrDuplicateSource  = errors.New("duplicate source name in batch")
	ErrMissingColumn    = errors.New("missing required column")
)

// DefaultExcludedItems are item keys that are always excluded from totals.
// Toggling one of them is a no-op.
var DefaultExcludedItems = []string{
	"Salary_New Zealand Post",
	"Payment_Tiger Fintech Nz Ltd",
	"Payment_Milford Cash Fund",
	"Direct Debit_Milford Cash Fund",
	"Direct Debit_Smart Gold (Gld)",
	"Payment_Seedfintechlimited",
	"Payment_Interactive Broker",
	"Term Deposit Break_",
	"Automatic Payment_Serious Saver",
}

var defaultExcludedSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(DefaultExcludedItems))
	for _, k := range DefaultExcludedItems {
		m[k] = struct{}{}
	}
	return m
}()

// IsDefaultExcluded reports whether key belongs to DefaultExcludedItems
func IsDefaultExcluded(key string) bool {
	_, ok := defaultExcludedSet[key]
	return ok
}

const (
	DefaultAutoExcludeThreshold        = 1000.0
	DefaultDisplayLargeAmountThreshold = 1000.0
	DefaultLargeAmountThreshold        = 1000.0
	DefaultRawLargeAmountThreshold     = 100.0
)

// Thresholds holds the independent amount thresholds of the pipeline.
// They share values by default but are separate decision points.
type Thresholds struct {
	// AutoExclude: newly ingested records at or above it get their item
	// key added to the custom exclusion set.
	AutoExclude float64
	// DisplayLargeAmount: item keys with a record at or above it are listed
	// and classified as large-amount in the excluded items registry.
	DisplayLargeAmount float64
	// DefaultLargeAmount is the initial user-configurable aggregation threshold.
	DefaultLargeAmount float64
	// RawLargeAmount is the "large only" filter of the raw record view.
	RawLargeAmount float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		AutoExclude:        DefaultAutoExcludeThreshold,
		DisplayLargeAmount: DefaultDisplayLargeAmountThreshold,
		DefaultLargeAmount: DefaultLargeAmountThreshold,
		RawLargeAmount:     DefaultRawLargeAmountThreshold,
	}
}

// WithDefaults replaces every unset (zero or negative) threshold with its
// default, leaving the others as given.
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	orDefault := func(v, def float64) float64 {
		if v <= 0 {
			return def
		}
		return v
	}
	return Thresholds{
		AutoExclude:        orDefault(t.AutoExclude, d.AutoExclude),
		DisplayLargeAmount: orDefault(t.DisplayLargeAmount, d.DisplayLargeAmount),
		DefaultLargeAmount: orDefault(t.DefaultLargeAmount, d.DefaultLargeAmount),
		RawLargeAmount:     orDefault(t.RawLargeAmount, d.RawLargeAmount),
	}
}

// Columns read from statement files
const (
	ColumnDate    = "Date"
	ColumnAmount  = "Amount"
	ColumnType    = "Type"
	ColumnDetails = "Details"
)

// hiddenColumns are dropped from the display header set but kept in row data
var hiddenColumns = map[string]bool{
	"ForeignCurrencyAmount": true,
	"ConversionCharge":      true,
}
