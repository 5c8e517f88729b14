package analysis

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// nullTokens are cell texts treated as missing values.
var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"-NaN": {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
	"<NA>": {},
}

func isNull(s string) bool {
	_, ok := nullTokens[strings.TrimSpace(s)]
	return ok
}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

func parseTimeMaybe(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	dec := opt.DecimalSeparator
	if dec == 0 {
		dec = '.'
	}
	if thou := opt.ThousandsSeparator; thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// inferKind classifies a column from its raw cells. Only non-null cells
// vote; the first rule every non-null cell satisfies wins, in the order
// numeric, boolean, datetime. Anything else, including a column with no
// values at all, is text.
func inferKind(cells []string, opt Options) Kind {
	var seen, num, boolean, dt int
	for _, raw := range cells {
		if isNull(raw) {
			continue
		}
		v := strings.TrimSpace(raw)
		seen++
		if _, ok := parseNumeric(v, opt); ok {
			num++
		}
		if _, ok := parseBool(v); ok {
			boolean++
		}
		if _, ok := parseTimeMaybe(v); ok {
			dt++
		}
	}
	switch {
	case seen == 0:
		return KindText
	case num == seen:
		return KindNumeric
	case boolean == seen:
		return KindBoolean
	case dt == seen:
		return KindDatetime
	default:
		return KindText
	}
}

// convertCells turns raw cells into typed values for the given kind.
func convertCells(cells []string, kind Kind, opt Options) []any {
	out := make([]any, len(cells))
	for i, raw := range cells {
		if isNull(raw) {
			continue
		}
		v := strings.TrimSpace(raw)
		switch kind {
		case KindNumeric:
			x, _ := parseNumeric(v, opt)
			out[i] = x
		case KindBoolean:
			b, _ := parseBool(v)
			out[i] = b
		case KindDatetime:
			t, _ := parseTimeMaybe(v)
			out[i] = t
		default:
			out[i] = raw
		}
	}
	return out
}
