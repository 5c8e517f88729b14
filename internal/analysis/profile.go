package analysis

import "time"

// ColumnProfile is the per-column metadata shown in the column analysis.
type ColumnProfile struct {
	Name     string
	Kind     Kind
	Distinct int
	Nulls    int
}

// Profile describes every column of the table, in column order.
func Profile(t *Table) []ColumnProfile {
	out := make([]ColumnProfile, 0, len(t.Columns))
	for i := range t.Columns {
		c := &t.Columns[i]
		distinct := make(map[any]struct{})
		nulls := 0
		for _, v := range c.Values {
			if v == nil {
				nulls++
				continue
			}
			distinct[distinctKey(v)] = struct{}{}
		}
		out = append(out, ColumnProfile{Name: c.Name, Kind: c.Kind, Distinct: len(distinct), Nulls: nulls})
	}
	return out
}

// distinctKey maps a value to a comparable key; times compare by instant.
func distinctKey(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UnixNano()
	}
	return v
}
