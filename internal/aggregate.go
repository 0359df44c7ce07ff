package internal

import (
	"math"
	"slices"
	"strings"
	"time"
)

const bucketDateLayout = "2006-01-02"

// Bucket is the period a record is summed into
type Bucket struct {
	Start time.Time
	End   time.Time
}

// Key renders the bucket as "<start>-<end>" in yyyy-mm-dd form. Keys sort
// chronologically as plain strings.
func (b Bucket) Key() string {
	return b.Start.Format(bucketDateLayout) + "-" + b.End.Format(bucketDateLayout)
}

// BucketFor returns the period containing t: Monday to Sunday for weeks,
// first to last calendar day for months.
func BucketFor(t time.Time, groupBy GroupBy) Bucket {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch groupBy {
	case GroupByMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return Bucket{Start: start, End: start.AddDate(0, 1, -1)}
	default:
		sinceMonday := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -sinceMonday)
		return Bucket{Start: start, End: start.AddDate(0, 0, 6)}
	}
}

// PeriodTotal is the summed amount of one bucket
type PeriodTotal struct {
	Key   string  `yaml:"key" json:"key"`
	Total float64 `yaml:"total" json:"total"`
}

// GroupedTotals maps bucket keys to summed amounts, ordered by key descending.
// Periods without contributing records are absent.
type GroupedTotals struct {
	entries []PeriodTotal
	index   map[string]int
}

func newGroupedTotals(sums map[string]float64) GroupedTotals {
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int { return strings.Compare(b, a) })

	g := GroupedTotals{
		entries: make([]PeriodTotal, len(keys)),
		index:   make(map[string]int, len(keys)),
	}
	for i, k := range keys {
		g.entries[i] = PeriodTotal{Key: k, Total: sums[k]}
		g.index[k] = i
	}
	return g
}

// Entries returns the buckets in descending key order
func (g GroupedTotals) Entries() []PeriodTotal {
	return slices.Clone(g.entries)
}

func (g GroupedTotals) Keys() []string {
	keys := make([]string, len(g.entries))
	for i, e := range g.entries {
		keys[i] = e.Key
	}
	return keys
}

func (g GroupedTotals) Values() []float64 {
	vals := make([]float64, len(g.entries))
	for i, e := range g.entries {
		vals[i] = e.Total
	}
	return vals
}

func (g GroupedTotals) Get(key string) (float64, bool) {
	i, ok := g.index[key]
	if !ok {
		return 0, false
	}
	return g.entries[i].Total, true
}

func (g GroupedTotals) Len() int { return len(g.entries) }

// Invalid returns the keys whose total is not a number
func (g GroupedTotals) Invalid() []string {
	var keys []string
	for _, e := range g.entries {
		if math.IsNaN(e.Total) {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

// Aggregate sums the amounts of included records per period
func Aggregate(records []TransactionRecord, cfg Config) GroupedTotals {
	items := cfg.ItemExclusions()
	sums := make(map[string]float64)
	for _, rec := range records {
		if !ShouldInclude(rec, cfg.excludedRows, items, cfg.largeAmount) {
			continue
		}
		sums[BucketFor(rec.Date, cfg.groupBy).Key()] += rec.Amount
	}
	return newGroupedTotals(sums)
}
