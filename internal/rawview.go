package internal

import (
	"math"
	"slices"
	"strings"
)

// RawFilter narrows the raw record listing
type RawFilter struct {
	Search       string // case-insensitive, matched against every original column
	PositiveOnly bool
	LargeOnly    bool
}

// RawRow is a record as shown in the raw listing
type RawRow struct {
	Record       TransactionRecord
	RowExcluded  bool
	ItemExcluded bool
}

// FilterRecords applies the raw view filter and sorts by date, newest first.
// Records on the same date keep their ingestion order.
func FilterRecords(records []TransactionRecord, cfg Config, filter RawFilter, largeThreshold float64) []RawRow {
	search := strings.ToLower(filter.Search)

	var rows []RawRow
	for _, rec := range records {
		if search != "" && !rowContains(rec.Row, search) {
			continue
		}
		if filter.PositiveOnly && !(rec.Amount > 0) {
			continue
		}
		if filter.LargeOnly && !(math.Abs(rec.Amount) > largeThreshold) {
			continue
		}
		rows = append(rows, RawRow{
			Record:       rec,
			RowExcluded:  cfg.IsRowExcluded(rec.ID),
			ItemExcluded: cfg.IsItemExcluded(rec.ItemKey),
		})
	}

	slices.SortStableFunc(rows, func(a, b RawRow) int {
		return b.Record.Date.Compare(a.Record.Date)
	})
	return rows
}

func rowContains(row map[string]string, lowerTerm string) bool {
	for _, v := range row {
		if strings.Contains(strings.ToLower(v), lowerTerm) {
			return true
		}
	}
	return false
}
