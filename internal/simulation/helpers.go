package simulation

import (
	"strconv"
	"strings"
	"time"

	"github.com/uaepulse/pulse-backend/internal/cleaning"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

// indexColumn builds a key-to-value map from two columns of a table. Nil
// tables and blank keys index nothing.
func indexColumn(t *table.Table, keyCol, valueCol string) map[string]string {
	if t == nil {
		return map[string]string{}
	}
	out := make(map[string]string, t.Len())
	for i := 0; i < t.Len(); i++ {
		key := strings.TrimSpace(t.Cell(i, keyCol))
		if key != "" {
			out[key] = t.Cell(i, valueCol)
		}
	}
	return out
}

func parseFloat(s string) float64 {
	trimmed := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return v
}

func numCell(t *table.Table, row int, col string) float64 {
	return parseFloat(t.Cell(row, col))
}

// parseDay reads a timestamp cell and truncates it to midnight UTC so span
// arithmetic counts calendar days.
func parseDay(s string) (time.Time, bool) {
	ts, ok := cleaning.ParseTimestamp(s)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), true
}

// safeDiv guards the percentage math: a zero denominator yields zero
// rather than Inf/NaN.
func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
