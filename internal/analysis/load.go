package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyInput indicates the input has no header or no data rows.
var ErrEmptyInput = errors.New("no data rows")

// LoadError indicates the input file is missing, unreadable, malformed or empty.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load failed"
	}
	return fmt.Sprintf("failed to load %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads a dataset, choosing the reader by file extension.
func Load(path string, opt Options) (*Table, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return LoadXLSX(path, opt)
	}
	return LoadCSV(path, opt)
}

// LoadCSV parses a delimited text file into a Table.
func LoadCSV(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("open csv: %w", err)}
	}
	defer f.Close()

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("read header: %w", ErrEmptyInput)}
		}
		return nil, &LoadError{Path: path, Err: fmt.Errorf("read header: %w", err)}
	}
	var records [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &LoadError{Path: path, Err: fmt.Errorf("read row %d: %w", len(records)+1, err)}
		}
		records = append(records, rec)
	}
	t, err := fromRecords(filepath.Base(path), header, records, opt)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return t, nil
}

// fromRecords builds a typed table from a header and raw string rows.
func fromRecords(name string, header []string, records [][]string, opt Options) (*Table, error) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	names := uniqueNames(header)
	ncol := len(names)
	if ncol == 0 {
		return nil, fmt.Errorf("read header: %w", ErrEmptyInput)
	}
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}
	raw := make([][]string, ncol)
	for j := range raw {
		raw[j] = make([]string, len(records))
	}
	for i, rec := range records {
		if len(rec) > ncol {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", i+1, ncol, len(rec))
		}
		for j, v := range rec {
			raw[j][i] = v
		}
	}
	cols := make([]Column, ncol)
	for j := range cols {
		kind := inferKind(raw[j], opt)
		cols[j] = Column{Name: names[j], Kind: kind, Values: convertCells(raw[j], kind, opt)}
	}
	return NewTable(name, cols)
}

// uniqueNames fills blank header names and suffixes duplicates with .1, .2, ...
func uniqueNames(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	next := make(map[string]int)
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[name] {
			base := name
			for {
				next[base]++
				name = fmt.Sprintf("%s.%d", base, next[base])
				if !used[name] {
					break
				}
			}
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
