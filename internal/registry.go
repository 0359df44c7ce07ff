package internal

import (
	"math"
	"slices"
)

// ExclusionKind is the reason an item key is listed as excluded
type ExclusionKind string

const (
	KindDefault     ExclusionKind = "default"
	KindLargeAmount ExclusionKind = "large-amount"
	KindCustom      ExclusionKind = "custom"
	KindNone        ExclusionKind = ""
)

// ExcludedItem is one row of the excluded items registry
type ExcludedItem struct {
	Key            string
	Kind           ExclusionKind
	CustomExcluded bool // currently in the custom exclusion set
	Toggleable     bool // false for default excluded keys
}

// ListExcludedItems returns the sorted, deduplicated union of the item
// exclusion set and the keys of every record at or above the display
// threshold.
func ListExcludedItems(records []TransactionRecord, itemExclusions map[string]struct{}, displayThreshold float64) []string {
	set := make(map[string]struct{}, len(itemExclusions))
	for k := range itemExclusions {
		set[k] = struct{}{}
	}
	for _, rec := range records {
		if math.Abs(rec.Amount) >= displayThreshold {
			set[rec.ItemKey] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// largeAmountKeys returns item keys having at least one record at or above threshold
func largeAmountKeys(records []TransactionRecord, threshold float64) map[string]bool {
	out := map[string]bool{}
	for _, rec := range records {
		if math.Abs(rec.Amount) >= threshold {
			out[rec.ItemKey] = true
		}
	}
	return out
}

// Classify returns the display classification of an item key. Precedence:
// default, then large-amount (any record of the key), then custom.
func Classify(key string, records []TransactionRecord, cfg Config, displayThreshold float64) ExclusionKind {
	return classify(key, largeAmountKeys(records, displayThreshold), cfg)
}

func classify(key string, large map[string]bool, cfg Config) ExclusionKind {
	switch {
	case IsDefaultExcluded(key):
		return KindDefault
	case large[key]:
		return KindLargeAmount
	case cfg.IsCustomExcluded(key):
		return KindCustom
	}
	return KindNone
}

// BuildExcludedItems builds the full registry view for a record set and config
func BuildExcludedItems(records []TransactionRecord, cfg Config, displayThreshold float64) []ExcludedItem {
	keys := ListExcludedItems(records, cfg.ItemExclusions(), displayThreshold)
	large := largeAmountKeys(records, displayThreshold)

	items := make([]ExcludedItem, len(keys))
	for i, key := range keys {
		items[i] = ExcludedItem{
			Key:            key,
			Kind:           classify(key, large, cfg),
			CustomExcluded: cfg.IsCustomExcluded(key),
			Toggleable:     !IsDefaultExcluded(key),
		}
	}
	return items
}
