package internal

import "time"

// Coverage describes the time span of the loaded records
type Coverage struct {
	Range          DateRange
	CompleteMonths []string // yyyy-mm
	Records        int
}

// AnalyzeDataCoverage returns complete months and the date range of records.
func AnalyzeDataCoverage(records []TransactionRecord) Coverage {
	if len(records) == 0 {
		return Coverage{}
	}

	minDate := records[0].Date
	maxDate := records[0].Date
	for _, rec := range records {
		if rec.Date.Before(minDate) {
			minDate = rec.Date
		}
		if rec.Date.After(maxDate) {
			maxDate = rec.Date
		}
	}

	// A month is complete if it lies before the month of maxDate, or if
	// maxDate is the last day of its month.
	var completeMonths []string
	current := time.Date(minDate.Year(), minDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	endMonth := time.Date(maxDate.Year(), maxDate.Month(), 1, 0, 0, 0, 0, time.UTC)

	for !current.After(endMonth) {
		lastDayOfMonth := current.AddDate(0, 1, -1).Day()
		if current.Before(endMonth) || maxDate.Day() == lastDayOfMonth {
			completeMonths = append(completeMonths, current.Format("2006-01"))
		}
		current = current.AddDate(0, 1, 0)
	}

	return Coverage{
		Range:          DateRange{Start: minDate, End: maxDate},
		CompleteMonths: completeMonths,
		Records:        len(records),
	}
}
