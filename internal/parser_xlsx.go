package internal

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads a statement from the first sheet of an Excel export.
// Banks often put a title block above the table, so the header row is the
// first row that contains both a Date and an Amount cell.
func ParseXLSX(path string) (RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return RawTable{}, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return RawTable{}, fmt.Errorf("no sheets found in file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return RawTable{}, fmt.Errorf("reading sheet: %w", err)
	}
	return tableFromRows(rows)
}

func tableFromRows(rows [][]string) (RawTable, error) {
	if len(rows) == 0 {
		return RawTable{}, nil
	}

	headerRow := -1
	for i, row := range rows {
		hasDate, hasAmount := false, false
		for _, cell := range row {
			switch strings.TrimSpace(cell) {
			case ColumnDate:
				hasDate = true
			case ColumnAmount:
				hasAmount = true
			}
		}
		if hasDate && hasAmount {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return RawTable{}, fmt.Errorf("%w: no header row with %s and %s", ErrMissingColumn, ColumnDate, ColumnAmount)
	}

	header := make([]string, len(rows[headerRow]))
	for i, cell := range rows[headerRow] {
		header[i] = strings.TrimSpace(cell)
	}

	table := RawTable{Header: header}
	for _, row := range rows[headerRow+1:] {
		if isBlank(row) {
			continue
		}
		table.Rows = append(table.Rows, rowDict(header, row))
	}
	return table, nil
}
