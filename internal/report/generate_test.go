package report

import (
	"archive/zip"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KaramelBytes/tabreport/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testGenerator() *Generator {
	return &Generator{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return fixedNow },
		NewID:  func() string { return "run-1" },
	}
}

func openBook(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func hasChart(t *testing.T, path string) bool {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == "xl/charts/chart1.xml" {
			return true
		}
	}
	return false
}

func TestGenerateRoundTripsRawData(t *testing.T) {
	tbl := table(t, num("A", 1.0, 2.0), text("B", "x", "y"))
	dest := filepath.Join(t.TempDir(), "out.xlsx")

	r, err := testGenerator().Generate(tbl, dest, AllSheets())
	require.NoError(t, err)
	assert.Equal(t, "run-1", r.ID)

	f := openBook(t, dest)
	assert.Equal(t, []string{SheetRawData, SheetSummary, SheetProfile, SheetCharts}, f.GetSheetList())

	want := map[string]string{
		"A1": "Raw Data Export - 2025-06-01 14:30",
		"A3": "A", "B3": "B",
		"A4": "1", "B4": "x",
		"A5": "2", "B5": "y",
	}
	for cell, v := range want {
		got, err := f.GetCellValue(SheetRawData, cell)
		require.NoError(t, err)
		assert.Equal(t, v, got, cell)
	}

	got, err := f.GetCellValue(SheetSummary, "A4")
	require.NoError(t, err)
	assert.Equal(t, "count", got)
	got, err = f.GetCellValue(SheetSummary, "B5")
	require.NoError(t, err)
	assert.Equal(t, "1.5", got)

	got, err = f.GetCellValue(SheetCharts, "A5")
	require.NoError(t, err)
	assert.Equal(t, NoticeNotEnoughNumeric, got)
	assert.False(t, hasChart(t, dest))

	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "run-1", props.Identifier)
	assert.Equal(t, "Report for input.csv", props.Title)
}

func TestGenerateWritesChart(t *testing.T) {
	tbl := table(t, num("a", 1.0, 2.0, 3.0), num("b", 2.0, 4.0, 6.0))
	dest := filepath.Join(t.TempDir(), "chart.xlsx")
	_, err := testGenerator().Generate(tbl, dest, Flags{IncludeCharts: true, Overwrite: true})
	require.NoError(t, err)
	assert.True(t, hasChart(t, dest))

	f := openBook(t, dest)
	got, err := f.GetCellValue(SheetCharts, "B8")
	require.NoError(t, err)
	assert.Equal(t, "6", got)
}

func TestGenerateDateCells(t *testing.T) {
	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	tbl := table(t, analysis.Column{Name: "when", Kind: analysis.KindDatetime, Values: []any{day}})
	dest := filepath.Join(t.TempDir(), "dates.xlsx")
	_, err := testGenerator().Generate(tbl, dest, Flags{Overwrite: true})
	require.NoError(t, err)

	f := openBook(t, dest)
	got, err := f.GetCellValue(SheetRawData, "A4")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", got)
}

func TestGenerateIsIdempotent(t *testing.T) {
	tbl := table(t, num("a", 1.0, 2.0, 3.0), num("b", 2.0, nil, 6.0), text("c", "x", "y", nil))
	dir := t.TempDir()
	first := filepath.Join(dir, "one.xlsx")
	second := filepath.Join(dir, "two.xlsx")
	gen := testGenerator()
	_, err := gen.Generate(tbl, first, AllSheets())
	require.NoError(t, err)
	_, err = gen.Generate(tbl, second, AllSheets())
	require.NoError(t, err)

	a, b := openBook(t, first), openBook(t, second)
	require.Equal(t, a.GetSheetList(), b.GetSheetList())
	for _, name := range a.GetSheetList() {
		ra, err := a.GetRows(name)
		require.NoError(t, err)
		rb, err := b.GetRows(name)
		require.NoError(t, err)
		assert.Equal(t, ra, rb, name)
	}
}

func TestGenerateOverwritePolicy(t *testing.T) {
	tbl := table(t, num("a", 1.0, 2.0))
	dest := filepath.Join(t.TempDir(), "existing.xlsx")
	require.NoError(t, os.WriteFile(dest, []byte("keep me"), 0o644))

	flags := AllSheets()
	flags.Overwrite = false
	_, err := testGenerator().Generate(tbl, dest, flags)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDestinationExists)
	var rge *ReportGenerationError
	require.ErrorAs(t, err, &rge)
	assert.Equal(t, dest, rge.Dest)
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(b))

	flags.Overwrite = true
	_, err = testGenerator().Generate(tbl, dest, flags)
	require.NoError(t, err)
	f := openBook(t, dest)
	assert.Equal(t, SheetRawData, f.GetSheetList()[0])
}

func TestGenerateWithoutTable(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "none.xlsx")
	_, err := testGenerator().Generate(nil, dest, AllSheets())
	var nt *NoTableLoadedError
	require.True(t, errors.As(err, &nt))
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSaveUnsupportedValueWritesNothing(t *testing.T) {
	r := &Report{Source: "x.csv", Sheets: []Sheet{{
		Name: SheetRawData,
		Grid: &Grid{Row: 1, Col: 1, Header: []string{"h"}, Rows: [][]any{{struct{}{}}}},
	}}}
	dest := filepath.Join(t.TempDir(), "bad.xlsx")
	err := r.Save(dest, true)
	require.Error(t, err)
	var rge *ReportGenerationError
	require.ErrorAs(t, err, &rge)
	assert.Equal(t, "render", rge.Stage)
	assert.Contains(t, err.Error(), "unsupported cell value type struct {}")
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateHugeStatsWritesFiniteCells(t *testing.T) {
	tbl := table(t, num("big", 1e307, 1e307))
	dest := filepath.Join(t.TempDir(), "big.xlsx")
	_, err := testGenerator().Generate(tbl, dest, Flags{IncludeSummary: true, Overwrite: true})
	require.NoError(t, err)

	f := openBook(t, dest)
	for _, cell := range []string{"B5", "B11"} {
		got, err := f.GetCellValue(SheetSummary, cell)
		require.NoError(t, err)
		assert.NotContains(t, got, "Inf", cell)
		assert.NotEmpty(t, got, cell)
	}
}

func TestGenerateUnwritableDestination(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "missing", "out.xlsx")
	tbl := table(t, num("a", 1.0, 2.0))

	_, err := testGenerator().Generate(tbl, dest, AllSheets())
	require.Error(t, err)
	var rge *ReportGenerationError
	require.ErrorAs(t, err, &rge)
	assert.Equal(t, "write", rge.Stage)
	assert.Equal(t, dest, rge.Dest)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
