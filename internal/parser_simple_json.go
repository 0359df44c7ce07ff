package internal

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
)

// SimpleJSONFormat is a minimal JSON format for importing statements
// Example:
//
//	{
//	  "transactions": [
//	    {"date": "10/01/2024", "type": "Payment", "details": "Coffee", "amount": -4.5},
//	    {"date": "12/01/2024", "type": "Salary", "details": "Acme", "amount": 2500,
//	     "extra": {"Reference": "JAN"}}
//	  ]
//	}
//
// Dates use the same dd/mm/yyyy layout as the bank CSV exports.
type SimpleJSONFormat struct {
	Transactions []SimpleJSONTransaction `json:"transactions"`
}

type SimpleJSONTransaction struct {
	Date    string            `json:"date"`
	Type    string            `json:"type"`
	Details string            `json:"details"`
	Amount  json.Number       `json:"amount"`
	Extra   map[string]string `json:"extra,omitempty"` // passed through as extra columns
}

// ParseSimpleJSON parses a JSON file in the simple JSON format
func ParseSimpleJSON(path string) (RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RawTable{}, fmt.Errorf("reading file: %w", err)
	}

	var jsonData SimpleJSONFormat
	if err := json.Unmarshal(data, &jsonData); err != nil {
		return RawTable{}, fmt.Errorf("parsing JSON: %w", err)
	}
	if len(jsonData.Transactions) == 0 {
		return RawTable{}, nil
	}

	header := []string{ColumnDate, ColumnAmount, ColumnType, ColumnDetails}
	seen := map[string]bool{}
	for _, h := range header {
		seen[h] = true
	}

	table := RawTable{}
	for _, tx := range jsonData.Transactions {
		row := map[string]string{
			ColumnDate:    tx.Date,
			ColumnAmount:  formatJSONAmount(tx.Amount),
			ColumnType:    tx.Type,
			ColumnDetails: tx.Details,
		}
		for _, k := range slices.Sorted(maps.Keys(tx.Extra)) {
			if _, builtin := row[k]; builtin {
				continue
			}
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
			row[k] = tx.Extra[k]
		}
		table.Rows = append(table.Rows, row)
	}
	table.Header = header

	for _, row := range table.Rows {
		for _, h := range header {
			if _, ok := row[h]; !ok {
				row[h] = ""
			}
		}
	}
	return table, nil
}

func formatJSONAmount(n json.Number) string {
	if f, err := n.Float64(); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return n.String()
}
