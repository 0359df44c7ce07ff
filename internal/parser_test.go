package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestIsKnownParser(t *testing.T) {
	// Register a test parser
	RegisterParser("test-format", ParserFunc(func(path string) (RawTable, error) {
		return RawTable{}, nil
	}))

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"known parser", "test-format", true},
		{"built-in parser", "xlsx", true},
		{"unknown parser", "unknown-format", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsKnownParser(tt.input)
			if got != tt.expected {
				t.Errorf("IsKnownParser(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseFileArg(t *testing.T) {
	// Register a test parser for these tests
	RegisterParser("test-format", ParserFunc(func(path string) (RawTable, error) {
		return RawTable{}, nil
	}))

	tests := []struct {
		name           string
		input          string
		expectedFormat string
		expectedPath   string
	}{
		{
			name:           "with known format prefix",
			input:          "test-format:data.json",
			expectedFormat: "test-format",
			expectedPath:   "data.json",
		},
		{
			name:           "with built-in format prefix",
			input:          "xlsx:bank.xlsx",
			expectedFormat: "xlsx",
			expectedPath:   "bank.xlsx",
		},
		{
			name:           "no prefix",
			input:          "data.json",
			expectedFormat: "",
			expectedPath:   "data.json",
		},
		{
			name:           "unknown prefix treated as path",
			input:          "unknown:data.json",
			expectedFormat: "",
			expectedPath:   "unknown:data.json",
		},
		{
			name:           "windows path with drive letter",
			input:          "C:\\Users\\test\\data.xlsx",
			expectedFormat: "",
			expectedPath:   "C:\\Users\\test\\data.xlsx",
		},
		{
			name:           "path with colon but not a parser",
			input:          "foo:bar:baz.json",
			expectedFormat: "",
			expectedPath:   "foo:bar:baz.json",
		},
		{
			name:           "format prefix with path containing spaces",
			input:          "test-format:path with spaces/file.json",
			expectedFormat: "test-format",
			expectedPath:   "path with spaces/file.json",
		},
		{
			name:           "format prefix with absolute path",
			input:          "test-format:/home/user/data.json",
			expectedFormat: "test-format",
			expectedPath:   "/home/user/data.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotFormat, gotPath := ParseFileArg(tt.input)
			if gotFormat != tt.expectedFormat {
				t.Errorf("ParseFileArg(%q) format = %q, want %q", tt.input, gotFormat, tt.expectedFormat)
			}
			if gotPath != tt.expectedPath {
				t.Errorf("ParseFileArg(%q) path = %q, want %q", tt.input, gotPath, tt.expectedPath)
			}
		})
	}
}

func TestResolveParser(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPath string
		wantErr  bool
	}{
		{"csv by extension", "statements/jan.csv", "statements/jan.csv", false},
		{"extension is case insensitive", "JAN.CSV", "JAN.CSV", false},
		{"xlsx by extension", "jan.xlsx", "jan.xlsx", false},
		{"json by extension", "jan.json", "jan.json", false},
		{"prefix wins over extension", "csv:export.txt", "export.txt", false},
		{"unknown extension", "export.txt", "export.txt", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, path, err := ResolveParser(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveParser(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if path != tt.wantPath {
				t.Errorf("path = %q, want %q", path, tt.wantPath)
			}
			if !tt.wantErr && p == nil {
				t.Error("expected a parser")
			}
		})
	}
}

func TestWithDefaultFormat(t *testing.T) {
	got, err := WithDefaultFormat([]string{"a.txt", "xlsx:b.xlsx"}, "csv")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"csv:a.txt", "xlsx:b.xlsx"}) {
		t.Errorf("got %v", got)
	}

	same, _ := WithDefaultFormat([]string{"a.csv"}, "")
	if !slices.Equal(same, []string{"a.csv"}) {
		t.Errorf("empty format should keep arguments, got %v", same)
	}

	if _, err := WithDefaultFormat([]string{"a.csv"}, "nope"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestReadCSV(t *testing.T) {
	input := "\ufeffDate,Amount,Type,Details,Particulars\n" +
		"10/01/2024,-4.50,Payment,Coffee Cart,\"Flat white, large\"\n" +
		"\n" +
		"11/01/2024,2500,Salary,Acme\n"

	table, err := readCSV(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(table.Header, []string{"Date", "Amount", "Type", "Details", "Particulars"}) {
		t.Errorf("unexpected header %q", table.Header)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows (blank line skipped), got %d", len(table.Rows))
	}
	if table.Rows[0]["Particulars"] != "Flat white, large" {
		t.Errorf("quoted cell: got %q", table.Rows[0]["Particulars"])
	}
	if v, ok := table.Rows[1]["Particulars"]; !ok || v != "" {
		t.Errorf("short rows should be padded, got %q (present %v)", v, ok)
	}
}

func TestReadCSV_HeaderBOM(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no bom", "Date,Amount,Type,Details"},
		{"utf-8 bom", "\uFEFFDate,Amount,Type,Details"},
		{"bom and padding", "\uFEFF Date ,Amount,Type,Details"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := readCSV(strings.NewReader(tt.header + "\n10/01/2024,-4.50,Payment,Coffee\n"))
			if err != nil {
				t.Fatal(err)
			}
			if table.Header[0] != "Date" {
				t.Errorf("Header[0] = %q, want %q", table.Header[0], "Date")
			}
			if table.Rows[0]["Date"] != "10/01/2024" {
				t.Errorf("date cell not found under the cleaned header: %v", table.Rows[0])
			}
		})
	}
}

func TestParseCSV_FileWithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	writeFile(t, path, "\uFEFFDate,Amount,Type,Details\n10/01/2024,-4.50,Payment,Coffee\n")

	table, err := ParseCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	records, warnings := BuildRecords(SourceID(path), table)
	if len(warnings) != 0 || len(records) != 1 {
		t.Fatalf("expected 1 record and no warnings, got %d and %v", len(records), warnings)
	}
	if records[0].ItemKey != "Payment_Coffee" {
		t.Errorf("unexpected item key %q", records[0].ItemKey)
	}
}

func TestReadCSV_Empty(t *testing.T) {
	table, err := readCSV(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Header) != 0 || len(table.Rows) != 0 {
		t.Errorf("expected empty table, got %+v", table)
	}
}

// createTestXLSX creates a statement workbook with a title block above the table
func createTestXLSX(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	f.SetCellValue(sheet, "A1", "Account statement")
	f.SetCellValue(sheet, "A3", "Date")
	f.SetCellValue(sheet, "B3", "Amount")
	f.SetCellValue(sheet, "C3", "Type")
	f.SetCellValue(sheet, "D3", "Details")

	for i, r := range rows {
		row := i + 4
		for j, v := range r {
			f.SetCellValue(sheet, fmt.Sprintf("%c%d", 'A'+j, row), v)
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to create test xlsx: %v", err)
	}
}

func TestParseXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.xlsx")
	createTestXLSX(t, path, [][]string{
		{"10/01/2024", "-4.5", "Payment", "Coffee"},
		{"11/01/2024", "2500", "Salary", "Acme"},
	})

	table, err := ParseXLSX(path)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(table.Header, []string{"Date", "Amount", "Type", "Details"}) {
		t.Errorf("unexpected header %q", table.Header)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[1]["Details"] != "Acme" || table.Rows[0]["Amount"] != "-4.5" {
		t.Errorf("unexpected rows %v", table.Rows)
	}
}

func TestTableFromRows_MissingHeader(t *testing.T) {
	_, err := tableFromRows([][]string{{"Foo", "Bar"}, {"1", "2"}})
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func TestParseSimpleJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.json")
	data := `{"transactions": [
		{"date": "10/01/2024", "type": "Payment", "details": "Coffee", "amount": -4.5},
		{"date": "12/01/2024", "type": "Salary", "details": "Acme", "amount": 2500, "extra": {"Reference": "JAN"}}
	]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := ParseSimpleJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(table.Header, []string{"Date", "Amount", "Type", "Details", "Reference"}) {
		t.Errorf("unexpected header %q", table.Header)
	}
	if table.Rows[0]["Amount"] != "-4.5" || table.Rows[0]["Reference"] != "" {
		t.Errorf("unexpected first row %v", table.Rows[0])
	}
	if table.Rows[1]["Reference"] != "JAN" {
		t.Errorf("extra columns should pass through, got %v", table.Rows[1])
	}
}

func TestAbsFileArg(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	abs := filepath.Join(wd, "jan.csv")

	tests := []struct {
		input string
		want  string
	}{
		{"jan.csv", abs},
		{"csv:jan.csv", "csv:" + abs},
		{"simple-json:" + abs, "simple-json:" + abs},
		{abs, abs},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := AbsFileArg(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("AbsFileArg(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
