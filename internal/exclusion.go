package internal

import "math"

// ShouldInclude decides whether a record participates in aggregation.
// A record is excluded by an explicit row exclusion, by its item key being
// excluded (default or custom), or by the enabled large amount policy.
func ShouldInclude(rec TransactionRecord, rowExclusions map[RecordID]struct{}, itemExclusions map[string]struct{}, policy LargeAmountPolicy) bool {
	if _, ok := rowExclusions[rec.ID]; ok {
		return false
	}
	if _, ok := itemExclusions[rec.ItemKey]; ok {
		return false
	}
	if policy.Enabled && math.Abs(rec.Amount) > policy.Threshold {
		return false
	}
	return true
}

// Includes applies ShouldInclude with the exclusion state of a Config
func (c Config) Includes(rec TransactionRecord) bool {
	return ShouldInclude(rec, c.excludedRows, c.ItemExclusions(), c.largeAmount)
}

// AutoExcludedKeys returns, in first-seen order, the item keys of records
// whose absolute amount reaches the auto exclusion threshold.
func AutoExcludedKeys(records []TransactionRecord, threshold float64) []string {
	seen := map[string]bool{}
	var keys []string
	for _, rec := range records {
		if math.Abs(rec.Amount) >= threshold && !seen[rec.ItemKey] {
			seen[rec.ItemKey] = true
			keys = append(keys, rec.ItemKey)
		}
	}
	return keys
}
