package internal

import "testing"

func TestAnalyzeDataCoverage(t *testing.T) {
	tests := []struct {
		name                   string
		records                []TransactionRecord
		expectedCompleteMonths int
		expectedStartDate      string
		expectedEndDate        string
	}{
		{
			name: "four months, last incomplete",
			records: []TransactionRecord{
				{Date: date("2025-09-15")},
				{Date: date("2025-10-15")},
				{Date: date("2025-11-15")},
				{Date: date("2025-12-15")},
				{Date: date("2026-01-10")}, // incomplete month
			},
			expectedCompleteMonths: 4, // Sep, Oct, Nov, Dec
			expectedStartDate:      "2025-09-15",
			expectedEndDate:        "2026-01-10",
		},
		{
			name: "month ends on last day - complete",
			records: []TransactionRecord{
				{Date: date("2025-01-31")}, // last day of Jan
				{Date: date("2025-01-15")},
			},
			expectedCompleteMonths: 1,
			expectedStartDate:      "2025-01-15",
			expectedEndDate:        "2025-01-31",
		},
		{
			name:                   "no records",
			records:                nil,
			expectedCompleteMonths: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cov := AnalyzeDataCoverage(tt.records)
			if len(cov.CompleteMonths) != tt.expectedCompleteMonths {
				t.Errorf("expected %d complete months, got %d: %v", tt.expectedCompleteMonths, len(cov.CompleteMonths), cov.CompleteMonths)
			}
			if cov.Records != len(tt.records) {
				t.Errorf("expected %d records, got %d", len(tt.records), cov.Records)
			}
			if tt.expectedStartDate != "" && cov.Range.Start.Format("2006-01-02") != tt.expectedStartDate {
				t.Errorf("expected start %s, got %s", tt.expectedStartDate, cov.Range.Start.Format("2006-01-02"))
			}
			if tt.expectedEndDate != "" && cov.Range.End.Format("2006-01-02") != tt.expectedEndDate {
				t.Errorf("expected end %s, got %s", tt.expectedEndDate, cov.Range.End.Format("2006-01-02"))
			}
		})
	}
}
