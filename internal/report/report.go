// Package report turns a loaded table into a styled multi-sheet workbook.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/KaramelBytes/tabreport/internal/analysis"
	"github.com/montanaflynn/stats"
)

// Sheet names, in the order they appear in a report.
const (
	SheetRawData = "Raw Data"
	SheetSummary = "Summary Statistics"
	SheetProfile = "Pivot Analysis"
	SheetCharts  = "Charts & Visualizations"
)

// Placeholder notices written when a stage has nothing to show.
const (
	NoticeNoNumeric        = "No numeric columns found for statistics"
	NoticeNotEnoughNumeric = "Not enough numeric columns for chart generation"
)

// NotApplicable marks a statistic that cannot be computed.
const NotApplicable = "N/A"

// Flags selects the optional sheets and the overwrite policy.
type Flags struct {
	IncludeCharts  bool
	IncludeSummary bool
	IncludeProfile bool
	// Overwrite replaces an existing destination file; when false, Save fails
	// with ErrDestinationExists.
	Overwrite bool
}

// AllSheets enables every optional sheet and overwriting.
func AllSheets() Flags {
	return Flags{IncludeCharts: true, IncludeSummary: true, IncludeProfile: true, Overwrite: true}
}

// Report is the in-memory document: an ordered list of sheets.
type Report struct {
	ID          string
	GeneratedAt time.Time
	Source      string
	Sheets      []Sheet
}

// Sheet is one named page. Any of its parts may be absent.
type Sheet struct {
	Name    string
	Title   *Text
	Section *Text
	Grid    *Grid
	Notice  *Text
	Chart   *Chart
}

// Text is a single styled cell, optionally merged across Span columns.
type Text struct {
	Cell  string
	Value string
	Size  float64 // bold heading size; 0 renders with the data font
	Span  int
}

// Grid is a header row followed by data rows, anchored at (Row, Col), 1-based.
type Grid struct {
	Row, Col    int
	Header      []string
	Rows        [][]any
	HeaderAlign string
	DataAlign   string
	// DateFormats maps a grid column index to the number format of its time values.
	DateFormats map[int]string
}

// Chart is a clustered column chart whose series reference cells of its sheet.
type Chart struct {
	Anchor string
	Title  string
	XTitle string
	YTitle string
	Series []Series
}

// Series is one chart series: a header cell for its name and a value range.
type Series struct {
	Name   string
	Values string
}

// SheetNames returns the sheet names in order.
func (r *Report) SheetNames() []string {
	out := make([]string, len(r.Sheets))
	for i, s := range r.Sheets {
		out[i] = s.Name
	}
	return out
}

// Sheet returns the named sheet, or nil.
func (r *Report) Sheet(name string) *Sheet {
	for i := range r.Sheets {
		if r.Sheets[i].Name == name {
			return &r.Sheets[i]
		}
	}
	return nil
}

// Build assembles the report for t. Sheets are always ordered raw data,
// statistics, profile, charts; disabled ones are skipped.
func Build(t *analysis.Table, flags Flags, now time.Time) (*Report, error) {
	if t == nil {
		return nil, &NoTableLoadedError{}
	}
	r := &Report{GeneratedAt: now, Source: t.Name}
	r.Sheets = append(r.Sheets, rawDataSheet(t, now))
	if flags.IncludeSummary {
		r.Sheets = append(r.Sheets, summarySheet(t))
	}
	if flags.IncludeProfile {
		r.Sheets = append(r.Sheets, profileSheet(t))
	}
	if flags.IncludeCharts {
		r.Sheets = append(r.Sheets, chartSheet(t))
	}
	return r, nil
}

func rawDataSheet(t *analysis.Table, now time.Time) Sheet {
	g := &Grid{
		Row: 3, Col: 1,
		Header:      t.ColumnNames(),
		Rows:        make([][]any, t.NumRows()),
		HeaderAlign: "center",
		DataAlign:   "left",
	}
	for i := range g.Rows {
		g.Rows[i] = t.Row(i)
	}
	for j := range t.Columns {
		c := &t.Columns[j]
		if c.Kind != analysis.KindDatetime {
			continue
		}
		if g.DateFormats == nil {
			g.DateFormats = make(map[int]string)
		}
		g.DateFormats[j] = "yyyy-mm-dd"
		if c.HasClock() {
			g.DateFormats[j] = "yyyy-mm-dd hh:mm:ss"
		}
	}
	return Sheet{
		Name:  SheetRawData,
		Title: &Text{Cell: "A1", Value: "Raw Data Export - " + now.Format("2006-01-02 15:04"), Size: 14, Span: t.NumCols()},
		Grid:  g,
	}
}

func summarySheet(t *analysis.Table) Sheet {
	desc := analysis.Describe(t)
	if len(desc) == 0 {
		return Sheet{Name: SheetSummary, Notice: &Text{Cell: "A1", Value: NoticeNoNumeric}}
	}
	g := &Grid{Row: 3, Col: 1, Header: []string{"Statistic"}}
	for _, d := range desc {
		g.Header = append(g.Header, d.Name)
	}
	for i, name := range analysis.StatNames {
		row := []any{name}
		for _, d := range desc {
			row = append(row, displayStat(d.Values()[i]))
		}
		g.Rows = append(g.Rows, row)
	}
	return Sheet{
		Name:  SheetSummary,
		Title: &Text{Cell: "A1", Value: "Summary Statistics", Size: 16, Span: len(desc) + 1},
		Grid:  g,
	}
}

// displayStat rounds to two decimals; undefined values become NotApplicable.
func displayStat(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotApplicable
	}
	// Floats at or above 2^52 are whole numbers already. Round scales by 100
	// first, which would overflow to Inf near math.MaxFloat64.
	if math.Abs(v) >= 1<<52 {
		return v
	}
	r, err := stats.Round(v, 2)
	if err != nil || math.IsInf(r, 0) {
		return NotApplicable
	}
	return r
}

func profileSheet(t *analysis.Table) Sheet {
	g := &Grid{Row: 5, Col: 1, Header: []string{"Column Name", "Data Type", "Unique Values", "Null Count"}}
	for _, p := range analysis.Profile(t) {
		g.Rows = append(g.Rows, []any{p.Name, string(p.Kind), p.Distinct, p.Nulls})
	}
	return Sheet{
		Name:    SheetProfile,
		Title:   &Text{Cell: "A1", Value: "Data Analysis Summary", Size: 16, Span: 4},
		Section: &Text{Cell: "A3", Value: "Column Analysis", Size: 14},
		Grid:    g,
	}
}

func chartSheet(t *analysis.Table) Sheet {
	s := Sheet{
		Name:  SheetCharts,
		Title: &Text{Cell: "A1", Value: "Data Visualizations", Size: 16, Span: 8},
	}
	sample, ok := analysis.SampleChart(t, analysis.ChartSampleRows)
	if !ok {
		s.Notice = &Text{Cell: "A5", Value: NoticeNotEnoughNumeric}
		return s
	}
	const headerRow = 5
	s.Grid = &Grid{Row: headerRow, Col: 1, Header: sample.Columns, Rows: sample.Values}
	ch := &Chart{
		Anchor: "E5",
		Title:  fmt.Sprintf("Comparison: %s vs %s", sample.Columns[0], sample.Columns[1]),
		XTitle: "Records",
		YTitle: "Values",
	}
	last := headerRow + len(sample.Values)
	for j := range sample.Columns {
		col := string(rune('A' + j))
		ch.Series = append(ch.Series, Series{
			Name:   fmt.Sprintf("'%s'!$%s$%d", SheetCharts, col, headerRow),
			Values: fmt.Sprintf("'%s'!$%s$%d:$%s$%d", SheetCharts, col, headerRow+1, col, last),
		})
	}
	s.Chart = ch
	return s
}
