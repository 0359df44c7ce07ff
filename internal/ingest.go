package internal

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// StatementDateLayout is the dd/mm/yyyy layout of bank exports. Single
// digit days and months are accepted too.
const StatementDateLayout = "2/1/2006"

// amountPrefix matches the longest leading decimal literal of a string
var amountPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount parses the leading numeric prefix of s, ignoring trailing
// garbage ("12.5 NZD" → 12.5). Returns NaN when s has no numeric prefix.
func ParseAmount(s string) float64 {
	s = strings.TrimLeft(s, " \t\r\n")
	for _, inf := range []string{"Infinity", "+Infinity"} {
		if strings.HasPrefix(s, inf) {
			return math.Inf(1)
		}
	}
	if strings.HasPrefix(s, "-Infinity") {
		return math.Inf(-1)
	}
	m := amountPrefix.FindString(s)
	if m == "" {
		return math.NaN()
	}
	// on exponent overflow ParseFloat returns ±Inf along with the error
	v, _ := strconv.ParseFloat(m, 64)
	return v
}

// ParseStatementDate parses a dd/mm/yyyy date. Impossible calendar dates
// such as 31/02/2024 are rejected.
func ParseStatementDate(s string) (time.Time, error) {
	t, err := time.Parse(StatementDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// BuildRecords converts the raw rows of one source into records. Rows with
// an invalid date or a non-finite amount are rejected with a warning.
func BuildRecords(sourceID string, table RawTable) ([]TransactionRecord, []RowWarning) {
	var records []TransactionRecord
	var warnings []RowWarning

	for i, row := range table.Rows {
		rowNum := i + 1

		date, err := ParseStatementDate(row[ColumnDate])
		if err != nil {
			warnings = append(warnings, RowWarning{Source: sourceID, Row: rowNum, Field: ColumnDate, Value: row[ColumnDate]})
			continue
		}

		amount := ParseAmount(row[ColumnAmount])
		if math.IsNaN(amount) || math.IsInf(amount, 0) {
			warnings = append(warnings, RowWarning{Source: sourceID, Row: rowNum, Field: ColumnAmount, Value: row[ColumnAmount]})
			continue
		}

		records = append(records, TransactionRecord{
			ID:       NewRecordID(sourceID, rowNum),
			Date:     date,
			Amount:   amount,
			ItemKey:  ItemKeyFor(row[ColumnType], row[ColumnDetails]),
			SourceID: sourceID,
			Row:      row,
		})
	}

	return records, warnings
}

// DisplayHeaders returns the header set shown for raw rows
func DisplayHeaders(header []string) []string {
	var out []string
	for _, h := range header {
		if !hiddenColumns[h] {
			out = append(out, h)
		}
	}
	return out
}

// SourceID returns the identity of a file: its base name
func SourceID(path string) string {
	return filepath.Base(path)
}

// ParsedSource is the parse result of one file
type ParsedSource struct {
	Source   Source
	Header   []string
	Records  []TransactionRecord
	Warnings []RowWarning
	RowCount int // raw data rows, rejected ones included
}

// ParseFiles parses all file arguments concurrently and returns once every
// file is done, in argument order. If any file fails, no result is returned.
func ParseFiles(ctx context.Context, args []string) ([]ParsedSource, error) {
	results := make([]ParsedSource, len(args))

	g, ctx := errgroup.WithContext(ctx)
	for i, arg := range args {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			parser, path, err := ResolveParser(arg)
			if err != nil {
				return err
			}
			table, err := parser.Parse(path)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}

			src := Source{ID: SourceID(path), Path: arg}
			records, warnings := BuildRecords(src.ID, table)
			results[i] = ParsedSource{
				Source:   src,
				Header:   table.Header,
				Records:  records,
				Warnings: warnings,
				RowCount: len(table.Rows),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
