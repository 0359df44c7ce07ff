package internal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordID is the stable identity of a transaction record.
type RecordID = uuid.UUID

// recordNamespace scopes the name-based record identities of this tool
var recordNamespace = uuid.MustParse("6f1c7e0a-2b9d-5c43-9a8e-4d2f1b7c3e55")

// NewRecordID derives the identity of the row-th data row of a source.
// The same source and row always produce the same ID, so removing other
// sources never shifts it.
func NewRecordID(sourceID string, row int) RecordID {
	return uuid.NewSHA1(recordNamespace, fmt.Appendf(nil, "%s\x00%d", sourceID, row))
}

// TransactionRecord is one ingested bank statement row
type TransactionRecord struct {
	ID       RecordID
	Date     time.Time
	Amount   float64
	ItemKey  string            // "<Type>_<Details>"
	SourceID string            // file the record came from
	Row      map[string]string // all original columns, verbatim
}

// ItemKeyFor builds the composite item category key of a row
func ItemKeyFor(typ, details string) string {
	return typ + "_" + details
}

type GroupBy string

const (
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

// ParseGroupBy validates a grouping mode name
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(s) {
	case GroupByWeek, GroupByMonth:
		return GroupBy(s), nil
	}
	return "", fmt.Errorf("%w: %q (expected week or month)", ErrInvalidGroupBy, s)
}

// LargeAmountPolicy excludes records whose absolute amount exceeds Threshold
type LargeAmountPolicy struct {
	Enabled   bool
	Threshold float64
}

type DateRange struct {
	Start time.Time
	End   time.Time
}

// RowWarning reports a row that was rejected during ingestion
type RowWarning struct {
	Source string
	Row    int // 1-based data row, header excluded
	Field  string
	Value  string
}

func (w RowWarning) String() string {
	return fmt.Sprintf("%s row %d: invalid %s %q", w.Source, w.Row, w.Field, w.Value)
}

// Source is an ingested file
type Source struct {
	ID   string `json:"id"` // base name, used for removal
	Path string `json:"path"`
}
