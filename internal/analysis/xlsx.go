package analysis

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads one worksheet of an .xlsx workbook into a Table. The first
// row is the header. If opt.Sheet is empty the first sheet is used.
func LoadXLSX(path string, opt Options) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("open xlsx: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("open xlsx: %w", ErrEmptyInput)}
	}
	target := sheets[0]
	if opt.Sheet != "" {
		target = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				target = s
				break
			}
		}
		if target == "" {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
				opt.Sheet, filepath.Base(path), strings.Join(sheets, ", "))}
		}
	}
	// Raw values keep numbers unformatted; cellTyper restores booleans and dates.
	rows, err := f.GetRows(target, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("read sheet %s: %w", target, err)}
	}
	ct, err := newCellTyper(f, target)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	// GetRows omits trailing empty rows but keeps interior ones as empty slices.
	var body [][]string
	for i := 1; i < len(rows); i++ {
		r := rows[i]
		if len(r) == 0 {
			continue
		}
		for j, v := range r {
			if r[j], err = ct.text(j+1, i+1, v); err != nil {
				return nil, &LoadError{Path: path, Err: fmt.Errorf("read sheet %s: %w", target, err)}
			}
		}
		body = append(body, r)
	}
	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	name := filepath.Base(path)
	if opt.Sheet != "" {
		name = fmt.Sprintf("%s (sheet: %s)", name, target)
	}
	t, err := fromRecords(name, header, body, opt)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return t, nil
}

// cellTyper turns raw cell values back into text the type inference
// understands: booleans arrive as 1/0 and dates as serial numbers.
type cellTyper struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	dates    map[int]bool // style id -> has a date number format
}

func newCellTyper(f *excelize.File, sheet string) (*cellTyper, error) {
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, fmt.Errorf("read workbook properties: %w", err)
	}
	ct := &cellTyper{f: f, sheet: sheet, dates: make(map[int]bool)}
	if props.Date1904 != nil {
		ct.date1904 = *props.Date1904
	}
	return ct, nil
}

func (c *cellTyper) text(col, row int, raw string) (string, error) {
	if raw == "" {
		return raw, nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	typ, err := c.f.GetCellType(c.sheet, cell)
	if err != nil {
		return "", fmt.Errorf("cell %s type: %w", cell, err)
	}
	switch typ {
	case excelize.CellTypeBool:
		switch raw {
		case "1":
			return "true", nil
		case "0":
			return "false", nil
		}
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		isDate, err := c.dateStyled(cell)
		if err != nil || !isDate {
			return raw, err
		}
		serial, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw, nil
		}
		t, err := excelize.ExcelDateToTime(serial, c.date1904)
		if err != nil {
			return raw, nil
		}
		return FormatValue(t), nil
	}
	return raw, nil
}

func (c *cellTyper) dateStyled(cell string) (bool, error) {
	id, err := c.f.GetCellStyle(c.sheet, cell)
	if err != nil {
		return false, fmt.Errorf("cell %s style: %w", cell, err)
	}
	if id == 0 {
		return false, nil
	}
	if d, ok := c.dates[id]; ok {
		return d, nil
	}
	st, err := c.f.GetStyle(id)
	if err != nil {
		return false, fmt.Errorf("style %d: %w", id, err)
	}
	d := isDateNumFmt(st)
	c.dates[id] = d
	return d, nil
}

// isDateNumFmt reports whether a style formats numbers as dates or times.
// Built-in ids 14-22 and 45-47 are dates, as are the East Asian ids 27-36 and 50-58.
func isDateNumFmt(st *excelize.Style) bool {
	if st.CustomNumFmt != nil {
		return isDateFormatCode(*st.CustomNumFmt)
	}
	n := st.NumFmt
	return (n >= 14 && n <= 22) || (n >= 27 && n <= 36) || (n >= 45 && n <= 47) || (n >= 50 && n <= 58)
}

// isDateFormatCode looks for date or time tokens outside quoted text,
// bracketed sections and escaped characters.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	quoted, bracket := false, false
	lower := strings.ToLower(code)
	for i := 0; i < len(lower); i++ {
		ch := lower[i]
		switch {
		case quoted:
			quoted = ch != '"'
		case bracket:
			bracket = ch != ']'
		case ch == '"':
			quoted = true
		case ch == '[':
			bracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		default:
			b.WriteByte(ch)
		}
	}
	s := strings.ReplaceAll(b.String(), "general", "")
	return strings.ContainsAny(s, "ydh") || strings.Contains(s, "mm:ss")
}
