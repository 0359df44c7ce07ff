package internal

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"12.5", 12.5},
		{"-45.00", -45},
		{"+3", 3},
		{".5", 0.5},
		{"5.", 5},
		{"  7.25", 7.25},
		{"12.5 NZD", 12.5},
		{"1e3", 1000},
		{"2e", 2},
		{"1,234.00", 1},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"1e999", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseAmount(tt.input); got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	for _, input := range []string{"", "abc", "$12", "-", "."} {
		if got := ParseAmount(input); !math.IsNaN(got) {
			t.Errorf("ParseAmount(%q) = %v, want NaN", input, got)
		}
	}
}

func TestParseStatementDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"10/01/2024", "2024-01-10", false},
		{"1/2/2024", "2024-02-01", false},
		{" 29/02/2024 ", "2024-02-29", false},
		{"31/02/2024", "", true},
		{"2024-01-10", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatementDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.Format("2006-01-02") != tt.want {
				t.Errorf("got %s, want %s", got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestBuildRecords(t *testing.T) {
	table := RawTable{
		Header: []string{"Date", "Amount", "Type", "Details", "ForeignCurrencyAmount"},
		Rows: []map[string]string{
			{"Date": "10/01/2024", "Amount": "-4.50", "Type": "Payment", "Details": "Coffee", "ForeignCurrencyAmount": "3 USD"},
			{"Date": "31/02/2024", "Amount": "10", "Type": "Payment", "Details": "Bad date"},
			{"Date": "11/01/2024", "Amount": "n/a", "Type": "Payment", "Details": "Bad amount"},
			{"Date": "12/01/2024", "Amount": "20", "Type": "Term Deposit Break", "Details": ""},
		},
	}

	records, warnings := BuildRecords("jan.csv", table)

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ItemKey != "Payment_Coffee" || records[0].Amount != -4.5 {
		t.Errorf("unexpected first record %+v", records[0])
	}
	if records[1].ItemKey != "Term Deposit Break_" {
		t.Errorf("empty details should keep the separator, got %q", records[1].ItemKey)
	}
	if records[0].Row["ForeignCurrencyAmount"] != "3 USD" {
		t.Error("hidden columns must stay in the row data")
	}
	if records[0].ID != NewRecordID("jan.csv", 1) || records[1].ID != NewRecordID("jan.csv", 4) {
		t.Error("record IDs should derive from source and row number")
	}

	want := []RowWarning{
		{Source: "jan.csv", Row: 2, Field: "Date", Value: "31/02/2024"},
		{Source: "jan.csv", Row: 3, Field: "Amount", Value: "n/a"},
	}
	if !slices.Equal(warnings, want) {
		t.Errorf("got warnings %v, want %v", warnings, want)
	}
}

func TestNewRecordID_Stable(t *testing.T) {
	if NewRecordID("a.csv", 1) != NewRecordID("a.csv", 1) {
		t.Error("IDs must be deterministic")
	}
	if NewRecordID("a.csv", 1) == NewRecordID("a.csv", 2) || NewRecordID("a.csv", 1) == NewRecordID("b.csv", 1) {
		t.Error("IDs must differ by source and row")
	}
}

func TestDisplayHeaders(t *testing.T) {
	got := DisplayHeaders([]string{"Date", "ForeignCurrencyAmount", "Amount", "ConversionCharge", "Details"})
	if !slices.Equal(got, []string{"Date", "Amount", "Details"}) {
		t.Errorf("got %v", got)
	}
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.json")
	writeFile(t, a, "Date,Amount,Type,Details\n10/01/2024,-4.50,Payment,Coffee\n")
	writeFile(t, b, `{"transactions": [{"date": "11/01/2024", "type": "Payment", "details": "Lunch", "amount": -12}]}`)

	parsed, err := ParseFiles(context.Background(), []string{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed) != 2 || parsed[0].Source.ID != "a.csv" || parsed[1].Source.ID != "b.json" {
		t.Fatalf("results should follow argument order: %+v", parsed)
	}
	if parsed[1].Records[0].ItemKey != "Payment_Lunch" {
		t.Errorf("unexpected record %+v", parsed[1].Records[0])
	}
}

func TestParseFiles_AnyFailureFailsAll(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	writeFile(t, a, "Date,Amount,Type,Details\n10/01/2024,-4.50,Payment,Coffee\n")

	parsed, err := ParseFiles(context.Background(), []string{a, filepath.Join(dir, "missing.csv")})
	if err == nil {
		t.Fatal("expected error")
	}
	if parsed != nil {
		t.Errorf("expected no results, got %+v", parsed)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
