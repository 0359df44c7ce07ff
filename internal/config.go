package internal

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/google/uuid"
)

// Config is the user-adjustable exclusion and grouping state. It is an
// immutable value: every transition returns a new Config and leaves the
// receiver untouched.
type Config struct {
	groupBy      GroupBy
	customItems  map[string]struct{}
	largeAmount  LargeAmountPolicy
	excludedRows map[RecordID]struct{}
}

// NewConfig returns the built-in defaults: weekly grouping, no custom
// exclusions, large amount exclusion enabled at the given threshold.
func NewConfig(defaultThreshold float64) Config {
	return Config{
		groupBy:     GroupByWeek,
		largeAmount: LargeAmountPolicy{Enabled: true, Threshold: defaultThreshold},
	}
}

func (c Config) GroupBy() GroupBy { return c.groupBy }
func (c Config) LargeAmount() LargeAmountPolicy { return c.largeAmount }

// CustomExcludedItems returns the user-toggleable excluded item keys, sorted
func (c Config) CustomExcludedItems() []string {
	return slices.Sorted(maps.Keys(c.customItems))
}

func (c Config) IsCustomExcluded(key string) bool {
	_, ok := c.customItems[key]
	return ok
}

// IsItemExcluded tests membership in the union of default and custom exclusions
func (c Config) IsItemExcluded(key string) bool {
	return IsDefaultExcluded(key) || c.IsCustomExcluded(key)
}

// ItemExclusions returns the union of default and custom exclusions
func (c Config) ItemExclusions() map[string]struct{} {
	out := make(map[string]struct{}, len(defaultExcludedSet)+len(c.customItems))
	maps.Copy(out, defaultExcludedSet)
	maps.Copy(out, c.customItems)
	return out
}

func (c Config) IsRowExcluded(id RecordID) bool {
	_, ok := c.excludedRows[id]
	return ok
}

// ExcludedRows returns the explicitly excluded record IDs, sorted
func (c Config) ExcludedRows() []RecordID {
	ids := slices.Collect(maps.Keys(c.excludedRows))
	slices.SortFunc(ids, func(a, b RecordID) int { return bytes.Compare(a[:], b[:]) })
	return ids
}

// WithGroupBy switches the grouping mode
func (c Config) WithGroupBy(g GroupBy) (Config, error) {
	if _, err := ParseGroupBy(string(g)); err != nil {
		return c, err
	}
	c.groupBy = g
	return c, nil
}

func (c Config) WithExcludeLargeAmount(enabled bool) Config {
	c.largeAmount.Enabled = enabled
	return c
}

// WithLargeAmountThreshold sets the aggregation threshold. Non-finite or
// non-positive values are rejected and the receiver is returned unchanged.
func (c Config) WithLargeAmountThreshold(v float64) (Config, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return c, fmt.Errorf("%w: %v", ErrInvalidThreshold, v)
	}
	c.largeAmount.Threshold = v
	return c, nil
}

// ParseThreshold parses user input for the large amount threshold
func ParseThreshold(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidThreshold, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%w: %q must be a positive number", ErrInvalidThreshold, s)
	}
	return v, nil
}

// ToggleItem flips custom exclusion of an item key. Default excluded keys
// cannot be toggled; the receiver is returned unchanged for them.
func (c Config) ToggleItem(key string) Config {
	if IsDefaultExcluded(key) {
		return c
	}
	items := maps.Clone(c.customItems)
	if items == nil {
		items = map[string]struct{}{}
	}
	if _, ok := items[key]; ok {
		delete(items, key)
	} else {
		items[key] = struct{}{}
	}
	c.customItems = items
	return c
}

// WithAutoExcluded adds item keys to the custom exclusion set. Default keys
// are skipped so the two sets stay disjoint.
func (c Config) WithAutoExcluded(keys ...string) Config {
	var items map[string]struct{}
	for _, k := range keys {
		if IsDefaultExcluded(k) || c.IsCustomExcluded(k) {
			continue
		}
		if items == nil {
			items = maps.Clone(c.customItems)
			if items == nil {
				items = map[string]struct{}{}
			}
		}
		items[k] = struct{}{}
	}
	if items != nil {
		c.customItems = items
	}
	return c
}

// ToggleRow flips the explicit exclusion of a single record
func (c Config) ToggleRow(id RecordID) Config {
	rows := maps.Clone(c.excludedRows)
	if rows == nil {
		rows = map[RecordID]struct{}{}
	}
	if _, ok := rows[id]; ok {
		delete(rows, id)
	} else {
		rows[id] = struct{}{}
	}
	c.excludedRows = rows
	return c
}

// Reset clears custom exclusions and restores the large amount policy.
// Grouping mode and row exclusions are kept.
func (c Config) Reset(defaultThreshold float64) Config {
	c.customItems = nil
	c.largeAmount = LargeAmountPolicy{Enabled: true, Threshold: defaultThreshold}
	return c
}

// Fingerprint identifies the aggregation-relevant content of the config
func (c Config) Fingerprint() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%t|%v|", c.groupBy, c.largeAmount.Enabled, math.Float64bits(c.largeAmount.Threshold))
	for _, k := range c.CustomExcludedItems() {
		fmt.Fprintf(h, "%q,", k)
	}
	h.Write([]byte("|"))
	for _, id := range c.ExcludedRows() {
		h.Write(id[:])
	}
	return h.Sum64()
}

// Equal reports whether two configs hold the same state
func (c Config) Equal(o Config) bool {
	return c.groupBy == o.groupBy &&
		c.largeAmount == o.largeAmount &&
		slices.Equal(c.CustomExcludedItems(), o.CustomExcludedItems()) &&
		slices.Equal(c.ExcludedRows(), o.ExcludedRows())
}

// SettingsVersion is the current version of the persisted settings snapshot
const SettingsVersion = 1

// Settings is the persisted form of a Config plus the list of loaded sources
type Settings struct {
	Version              int      `yaml:"version" json:"version"`
	GroupBy              string   `yaml:"group_by" json:"group_by"`
	CustomExcludedItems  []string `yaml:"custom_excluded_items" json:"custom_excluded_items"`
	ExcludeLargeAmount   bool     `yaml:"exclude_large_amount" json:"exclude_large_amount"`
	LargeAmountThreshold float64  `yaml:"large_amount_threshold" json:"large_amount_threshold"`
	ExcludedRows         []string `yaml:"excluded_rows,omitempty" json:"excluded_rows,omitempty"`
	Sources              []string `yaml:"sources,omitempty" json:"sources,omitempty"`
}

// DefaultSettings mirrors NewConfig
func DefaultSettings(defaultThreshold float64) Settings {
	return NewConfig(defaultThreshold).Settings(nil)
}

// Settings converts the config into its persisted form
func (c Config) Settings(sources []string) Settings {
	s := Settings{
		Version:              SettingsVersion,
		GroupBy:              string(c.groupBy),
		CustomExcludedItems:  c.CustomExcludedItems(),
		ExcludeLargeAmount:   c.largeAmount.Enabled,
		LargeAmountThreshold: c.largeAmount.Threshold,
		Sources:              slices.Clone(sources),
	}
	if s.CustomExcludedItems == nil {
		s.CustomExcludedItems = []string{}
	}
	for _, id := range c.ExcludedRows() {
		s.ExcludedRows = append(s.ExcludedRows, id.String())
	}
	return s
}

// Config rebuilds a Config from persisted settings. Invalid values fall
// back to the defaults individually instead of failing the whole load.
func (s Settings) Config(defaultThreshold float64) (Config, []error) {
	c := NewConfig(defaultThreshold)
	var errs []error

	if s.GroupBy != "" {
		g, err := ParseGroupBy(s.GroupBy)
		if err != nil {
			errs = append(errs, err)
		} else {
			c.groupBy = g
		}
	}

	c.largeAmount.Enabled = s.ExcludeLargeAmount
	if s.LargeAmountThreshold != 0 {
		if next, err := c.WithLargeAmountThreshold(s.LargeAmountThreshold); err != nil {
			errs = append(errs, err)
		} else {
			c = next
		}
	}

	for _, k := range s.CustomExcludedItems {
		if IsDefaultExcluded(k) {
			continue
		}
		if c.customItems == nil {
			c.customItems = map[string]struct{}{}
		}
		c.customItems[k] = struct{}{}
	}

	for _, raw := range s.ExcludedRows {
		id, err := uuid.Parse(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("excluded row %q: %w", raw, err))
			continue
		}
		if c.excludedRows == nil {
			c.excludedRows = map[RecordID]struct{}{}
		}
		c.excludedRows[id] = struct{}{}
	}

	return c, errs
}
