package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Options controls how tabular input is loaded.
type Options struct {
	// Delimiter for CSV. If 0, picks '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Sheet selects the worksheet for .xlsx input; empty means the first sheet.
	Sheet string
	// Numeric parsing locale. DecimalSeparator 0 means '.'.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; stripped before parsing when set
}

// DefaultOptions returns reasonable defaults for loading a dataset.
func DefaultOptions() Options {
	return Options{DecimalSeparator: '.'}
}

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric  Kind = "numeric"
	KindText     Kind = "text"
	KindDatetime Kind = "datetime"
	KindBoolean  Kind = "boolean"
)

// Column is one named column of typed cell values. A nil value is a null.
// Non-null values are float64 for numeric columns, bool for boolean columns,
// time.Time for datetime columns and string for text columns.
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// Nulls returns the number of null cells in the column.
func (c *Column) Nulls() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// Numbers returns the non-null values of a numeric column in row order.
func (c *Column) Numbers() []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if x, ok := v.(float64); ok {
			out = append(out, x)
		}
	}
	return out
}

// HasClock reports whether any datetime value carries a time of day.
func (c *Column) HasClock() bool {
	if c.Kind != KindDatetime {
		return false
	}
	for _, v := range c.Values {
		if t, ok := v.(time.Time); ok {
			if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
				return true
			}
		}
	}
	return false
}

// Table is a loaded dataset held column-major. Every column has exactly
// NumRows values.
type Table struct {
	Name    string
	Columns []Column
	rows    int
}

// NewTable builds a table from typed columns. All columns must have the same
// length and unique names.
func NewTable(name string, cols []Column) (*Table, error) {
	t := &Table{Name: name, Columns: cols}
	seen := make(map[string]struct{}, len(cols))
	for i, c := range cols {
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if i == 0 {
			t.rows = len(c.Values)
			continue
		}
		if len(c.Values) != t.rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", c.Name, len(c.Values), t.rows)
		}
	}
	return t, nil
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.Columns) }

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.Columns))
	for j := range t.Columns {
		out[j] = t.Columns[j].Values[i]
	}
	return out
}

// NumericColumns returns the indexes of numeric columns in column order.
func (t *Table) NumericColumns() []int {
	var idx []int
	for i, c := range t.Columns {
		if c.Kind == KindNumeric {
			idx = append(idx, i)
		}
	}
	return idx
}

// Summary is the one-line load status.
func (t *Table) Summary() string {
	return fmt.Sprintf("Loaded %s with %d rows and %d columns", t.Name, t.rows, len(t.Columns))
}

// Preview renders the schema and the first n rows as a markdown table.
func (t *Table) Preview(n int) string {
	var b strings.Builder
	b.WriteString("[DATASET]\n")
	if t.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", t.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", t.rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(t.Columns)))

	b.WriteString("[SCHEMA]\n")
	for i := range t.Columns {
		c := &t.Columns[i]
		b.WriteString(fmt.Sprintf("- %s: %s (missing %d)\n", safeName(c.Name), c.Kind, c.Nulls()))
	}
	if n <= 0 || t.rows == 0 || len(t.Columns) == 0 {
		return b.String()
	}
	if n > t.rows {
		n = t.rows
	}
	b.WriteString("\n[HEAD]\n")
	b.WriteString("| ")
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(safeName(c.Name)))
	}
	b.WriteString(" |\n| ")
	for i := range t.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for r := 0; r < n; r++ {
		b.WriteString("| ")
		for i := range t.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := FormatValue(t.Columns[i].Values[r])
			if len(val) > 80 {
				val = val[:77] + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
	if n < t.rows {
		b.WriteString(fmt.Sprintf("\n(showing %d of %d rows)\n", n, t.rows))
	}
	return b.String()
}

// FormatValue renders a cell value the way it is shown to a reader. Nulls
// render as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
