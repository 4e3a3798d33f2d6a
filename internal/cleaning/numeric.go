package cleaning

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// parseNumber reads a cell as a float, tolerating surrounding whitespace
// and thousands separators ("1,250.00").
func parseNumber(s string) (float64, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, false
	}
	trimmed = strings.ReplaceAll(trimmed, ",", "")
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// formatNumber renders a repaired value back into the table with the
// shortest exact decimal representation, keeping output stable across runs.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// numericValues extracts the parseable values of a column, sorted
// ascending.
func numericValues(cells []string) []float64 {
	var out []float64
	for _, cell := range cells {
		if v, ok := parseNumber(cell); ok {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// median of a sorted slice; false when empty.
func median(sorted []float64) (float64, bool) {
	n := len(sorted)
	if n == 0 {
		return 0, false
	}
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, true
}

// percentile uses the nearest-rank definition on a sorted slice. The
// nearest-rank form keeps the outlier bounds stable when the extreme tail
// itself is rewritten, which is what makes a second cleaning pass a no-op.
func percentile(sorted []float64, p float64) (float64, bool) {
	n := len(sorted)
	if n == 0 {
		return 0, false
	}
	rank := int(math.Ceil(p / 100 * float64(n)))
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sorted[rank-1], true
}

// iqrFence returns the classic reporting fence (Q1-1.5*IQR, Q3+1.5*IQR);
// false when the column has no parseable values.
func iqrFence(sorted []float64) (lower, upper float64, ok bool) {
	q1, ok1 := percentile(sorted, 25)
	q3, ok3 := percentile(sorted, 75)
	if !ok1 || !ok3 {
		return 0, 0, false
	}
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr, true
}
