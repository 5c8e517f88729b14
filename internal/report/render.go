package report

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/KaramelBytes/tabreport/internal/analysis"
	"github.com/xuri/excelize/v2"
)

// Column width sizing: only the header and the first widthSampleRows data
// rows are measured, so a long value further down can end up truncated.
const (
	widthSampleRows = 10
	widthFloor      = 10
	minColWidth     = 12
	maxColWidth     = 30
)

const headerFill = "366092"

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

type styleKind int

const (
	styleHeader styleKind = iota
	styleData
	styleHeading
	styleNotice
)

type styleKey struct {
	kind   styleKind
	align  string
	numFmt string
	size   float64
}

type renderer struct {
	f      *excelize.File
	styles map[styleKey]int
}

// Workbook renders the report into a new excelize file. The caller must
// Close it.
func (r *Report) Workbook() (*excelize.File, error) {
	if len(r.Sheets) == 0 {
		return nil, fmt.Errorf("render: report has no sheets")
	}
	f := excelize.NewFile()
	rd := &renderer{f: f, styles: make(map[styleKey]int)}
	for i := range r.Sheets {
		s := &r.Sheets[i]
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("rename sheet %s: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("add sheet %s: %w", s.Name, err)
		}
		if err := rd.sheet(s); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("render sheet %s: %w", s.Name, err)
		}
	}
	f.SetActiveSheet(0)
	props := &excelize.DocProperties{
		Title:      "Report for " + r.Source,
		Creator:    "tabreport",
		Identifier: r.ID,
	}
	if !r.GeneratedAt.IsZero() {
		props.Created = r.GeneratedAt.UTC().Format(time.RFC3339)
	}
	if err := f.SetDocProps(props); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("set document properties: %w", err)
	}
	return f, nil
}

func (rd *renderer) sheet(s *Sheet) error {
	for _, t := range []*Text{s.Title, s.Section} {
		if t == nil {
			continue
		}
		if err := rd.text(s.Name, t, styleKey{kind: styleHeading, size: t.Size}); err != nil {
			return err
		}
	}
	if s.Grid != nil {
		if err := rd.grid(s.Name, s.Grid); err != nil {
			return err
		}
		for j, w := range columnWidths(s.Grid) {
			col, err := excelize.ColumnNumberToName(s.Grid.Col + j)
			if err != nil {
				return err
			}
			if err := rd.f.SetColWidth(s.Name, col, col, w); err != nil {
				return fmt.Errorf("set width %s: %w", col, err)
			}
		}
	} else if err := rd.f.SetColWidth(s.Name, "A", "A", minColWidth); err != nil {
		return fmt.Errorf("set width A: %w", err)
	}
	if s.Notice != nil {
		if err := rd.text(s.Name, s.Notice, styleKey{kind: styleNotice}); err != nil {
			return err
		}
	}
	if s.Chart != nil {
		if err := rd.chart(s.Name, s.Chart); err != nil {
			return err
		}
	}
	return nil
}

func (rd *renderer) text(sheet string, t *Text, key styleKey) error {
	if err := rd.f.SetCellValue(sheet, t.Cell, t.Value); err != nil {
		return fmt.Errorf("set %s: %w", t.Cell, err)
	}
	id, err := rd.style(key)
	if err != nil {
		return err
	}
	if err := rd.f.SetCellStyle(sheet, t.Cell, t.Cell, id); err != nil {
		return fmt.Errorf("style %s: %w", t.Cell, err)
	}
	if t.Span <= 1 {
		return nil
	}
	col, row, err := excelize.CellNameToCoordinates(t.Cell)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(col+t.Span-1, row)
	if err != nil {
		return err
	}
	if err := rd.f.MergeCell(sheet, t.Cell, end); err != nil {
		return fmt.Errorf("merge %s:%s: %w", t.Cell, end, err)
	}
	return nil
}

func (rd *renderer) grid(sheet string, g *Grid) error {
	for j, h := range g.Header {
		cell, err := excelize.CoordinatesToCellName(g.Col+j, g.Row)
		if err != nil {
			return err
		}
		if err := rd.f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("set %s: %w", cell, err)
		}
	}
	for i, row := range g.Rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(g.Col+j, g.Row+1+i)
			if err != nil {
				return err
			}
			if err := setValue(rd.f, sheet, cell, v); err != nil {
				return err
			}
		}
	}

	ncol := len(g.Header)
	if ncol == 0 {
		return nil
	}
	first, _ := excelize.CoordinatesToCellName(g.Col, g.Row)
	last, _ := excelize.CoordinatesToCellName(g.Col+ncol-1, g.Row)
	id, err := rd.style(styleKey{kind: styleHeader, align: g.HeaderAlign})
	if err != nil {
		return err
	}
	if err := rd.f.SetCellStyle(sheet, first, last, id); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if len(g.Rows) == 0 {
		return nil
	}
	for j := 0; j < ncol; j++ {
		top, _ := excelize.CoordinatesToCellName(g.Col+j, g.Row+1)
		bottom, _ := excelize.CoordinatesToCellName(g.Col+j, g.Row+len(g.Rows))
		id, err := rd.style(styleKey{kind: styleData, align: g.DataAlign, numFmt: g.DateFormats[j]})
		if err != nil {
			return err
		}
		if err := rd.f.SetCellStyle(sheet, top, bottom, id); err != nil {
			return fmt.Errorf("style %s:%s: %w", top, bottom, err)
		}
	}
	return nil
}

func (rd *renderer) chart(sheet string, c *Chart) error {
	ch := &excelize.Chart{
		Type:   excelize.Col,
		Title:  []excelize.RichTextRun{{Text: c.Title}},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: c.XTitle}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: c.YTitle}}},
		Legend: excelize.ChartLegend{Position: "right"},
	}
	for _, s := range c.Series {
		ch.Series = append(ch.Series, excelize.ChartSeries{Name: s.Name, Values: s.Values})
	}
	if err := rd.f.AddChart(sheet, c.Anchor, ch); err != nil {
		return fmt.Errorf("add chart: %w", err)
	}
	return nil
}

func (rd *renderer) style(k styleKey) (int, error) {
	if id, ok := rd.styles[k]; ok {
		return id, nil
	}
	st := &excelize.Style{}
	switch k.kind {
	case styleHeader:
		st.Font = &excelize.Font{Family: "Arial", Size: 12, Bold: true, Color: "FFFFFF"}
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}}
		st.Border = thinBorder
	case styleData:
		st.Font = &excelize.Font{Family: "Arial", Size: 10}
		st.Border = thinBorder
	case styleHeading:
		st.Font = &excelize.Font{Bold: true, Size: k.size}
	case styleNotice:
		st.Font = &excelize.Font{Family: "Arial", Size: 10}
	}
	if k.align != "" {
		st.Alignment = &excelize.Alignment{Horizontal: k.align}
	}
	if k.numFmt != "" {
		nf := k.numFmt
		st.CustomNumFmt = &nf
	}
	id, err := rd.f.NewStyle(st)
	if err != nil {
		return 0, fmt.Errorf("new style: %w", err)
	}
	rd.styles[k] = id
	return id, nil
}

// setValue writes one typed cell. Nulls leave the cell empty.
func setValue(f *excelize.File, sheet, cell string, v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case string, float64, int, bool, time.Time:
		if err := f.SetCellValue(sheet, cell, x); err != nil {
			return fmt.Errorf("set %s: %w", cell, err)
		}
		return nil
	default:
		return fmt.Errorf("set %s: unsupported cell value type %T", cell, v)
	}
}

// columnWidths sizes each grid column to its longest header or sampled cell,
// clamped to [minColWidth, maxColWidth].
func columnWidths(g *Grid) []float64 {
	out := make([]float64, len(g.Header))
	sample := g.Rows
	if len(sample) > widthSampleRows {
		sample = sample[:widthSampleRows]
	}
	for j, h := range g.Header {
		longest := max(widthFloor, utf8.RuneCountInString(h))
		for _, row := range sample {
			if j < len(row) {
				longest = max(longest, utf8.RuneCountInString(cellText(row[j])))
			}
		}
		out[j] = float64(min(max(longest+2, minColWidth), maxColWidth))
	}
	return out
}

func cellText(v any) string {
	if i, ok := v.(int); ok {
		return strconv.Itoa(i)
	}
	return analysis.FormatValue(v)
}
