package exporter

import (
	"strconv"
	"time"
)

// formatPrice formats a dollar value for CSV output with exactly 3 decimal
// places, the precision fuel prices are published at.
func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// formatPct formats a nullable fractional change. Undefined metrics
// serialize as an empty cell so spreadsheet consumers see a blank, not a
// fake zero.
func formatPct(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

// formatDate formats a record date for CSV output.
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
