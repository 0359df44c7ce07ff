package internal

// Average returns the arithmetic mean of values, or 0 for no values
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// TotalAverage is the mean over all buckets
func TotalAverage(totals GroupedTotals) float64 {
	return Average(totals.Values())
}

// SelectedAverage is the mean over the selected buckets. Keys that are not
// present in totals (e.g. kept from before a regroup) are ignored.
func SelectedAverage(totals GroupedTotals, selected []string) float64 {
	seen := make(map[string]bool, len(selected))
	var values []float64
	for _, key := range selected {
		if seen[key] {
			continue
		}
		seen[key] = true
		if v, ok := totals.Get(key); ok {
			values = append(values, v)
		}
	}
	return Average(values)
}

// Averages is the summary shown next to the totals table
type Averages struct {
	Total    float64
	Selected float64
	// SelectedCount is the number of selected keys present in the totals
	SelectedCount int
}

func ComputeAverages(totals GroupedTotals, selected []string) Averages {
	count := 0
	seen := map[string]bool{}
	for _, key := range selected {
		if _, ok := totals.Get(key); ok && !seen[key] {
			seen[key] = true
			count++
		}
	}
	return Averages{
		Total:         TotalAverage(totals),
		Selected:      SelectedAverage(totals, selected),
		SelectedCount: count,
	}
}
