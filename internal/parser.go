package internal

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// RawTable is the untyped content of a statement file: a header and one
// dictionary per data row keyed by header name.
type RawTable struct {
	Header []string
	Rows   []map[string]string
}

// Parser parses statement files into raw rows
type Parser interface {
	Parse(path string) (RawTable, error)
}

// ParserFunc is a function that implements Parser
type ParserFunc func(path string) (RawTable, error)

func (f ParserFunc) Parse(path string) (RawTable, error) {
	return f(path)
}

// parsers is the registry of available parsers
var parsers = map[string]Parser{}

// extensions maps file extensions to parser names
var extensions = map[string]string{}

// RegisterParser registers a parser with the given name and the file
// extensions it handles by default
func RegisterParser(name string, p Parser, exts ...string) {
	parsers[name] = p
	for _, ext := range exts {
		extensions[strings.ToLower(ext)] = name
	}
}

// GetParser returns the parser for the given source type
func GetParser(source string) (Parser, error) {
	p, ok := parsers[source]
	if !ok {
		return nil, fmt.Errorf("unknown source type: %s (available: %v)", source, AvailableSources())
	}
	return p, nil
}

// AvailableSources returns a sorted list of registered source types
func AvailableSources() []string {
	var sources []string
	for name := range parsers {
		sources = append(sources, name)
	}
	sort.Strings(sources)
	return sources
}

// IsKnownParser returns true if the name is a registered parser
func IsKnownParser(name string) bool {
	_, ok := parsers[name]
	return ok
}

// ParseFileArg parses a file argument that may have a format prefix.
// Returns (format, path). If no valid prefix, format is empty.
// Example: "simple-json:data.json" → ("simple-json", "data.json")
// Example: "C:\path\file.xlsx" → ("", "C:\path\file.xlsx")
func ParseFileArg(arg string) (format, path string) {
	idx := strings.Index(arg, ":")
	if idx == -1 {
		return "", arg
	}
	prefix := arg[:idx]
	if IsKnownParser(prefix) {
		return prefix, arg[idx+1:]
	}
	return "", arg
}

// ResolveParser picks the parser for a file argument: the explicit format
// prefix if any, otherwise the file extension.
func ResolveParser(arg string) (Parser, string, error) {
	format, path := ParseFileArg(arg)
	if format == "" {
		format = extensions[strings.ToLower(filepath.Ext(path))]
	}
	if format == "" {
		return nil, path, fmt.Errorf("cannot tell the format of %s (use one of %v as prefix, e.g. csv:%s)", path, AvailableSources(), path)
	}
	p, err := GetParser(format)
	if err != nil {
		return nil, path, err
	}
	return p, path, nil
}

// WithDefaultFormat prefixes every argument that has no format prefix with
// format. An empty format leaves the arguments to extension detection.
func WithDefaultFormat(args []string, format string) ([]string, error) {
	if format == "" {
		return args, nil
	}
	if !IsKnownParser(format) {
		return nil, fmt.Errorf("unknown source type: %s (available: %v)", format, AvailableSources())
	}
	out := make([]string, len(args))
	for i, arg := range args {
		if f, _ := ParseFileArg(arg); f == "" {
			arg = format + ":" + arg
		}
		out[i] = arg
	}
	return out, nil
}

// AbsFileArg makes the path of a file argument absolute, keeping a format
// prefix. Persisted sources must resolve from any working directory.
func AbsFileArg(arg string) (string, error) {
	format, path := ParseFileArg(arg)
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	if format == "" {
		return abs, nil
	}
	return format + ":" + abs, nil
}

func init() {
	RegisterParser("csv", ParserFunc(ParseCSV), ".csv")
	RegisterParser("xlsx", ParserFunc(ParseXLSX), ".xlsx")
	RegisterParser("simple-json", ParserFunc(ParseSimpleJSON), ".json")
}
