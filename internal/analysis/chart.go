package analysis

// ChartSampleRows caps how many leading rows feed the comparison chart.
const ChartSampleRows = 10

// ChartSample is the chart input: up to two numeric columns and their first
// rows. Values are float64 or nil for nulls.
type ChartSample struct {
	Columns []string
	Values  [][]any // row-major, one entry per column
}

// SampleChart takes the first rows of the first two numeric columns. It
// returns false when the table has fewer than two numeric columns.
func SampleChart(t *Table, rows int) (*ChartSample, bool) {
	idx := t.NumericColumns()
	if len(idx) < 2 {
		return nil, false
	}
	idx = idx[:2]
	n := t.NumRows()
	if rows > 0 && rows < n {
		n = rows
	}
	s := &ChartSample{Columns: make([]string, len(idx)), Values: make([][]any, n)}
	for j, ci := range idx {
		s.Columns[j] = t.Columns[ci].Name
	}
	for r := 0; r < n; r++ {
		row := make([]any, len(idx))
		for j, ci := range idx {
			row[j] = t.Columns[ci].Values[r]
		}
		s.Values[r] = row
	}
	return s, true
}
