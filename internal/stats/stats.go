// Package stats turns grouped query results into the summary blocks returned
// next to list pages. Everything here is a pure function of its input.
package stats

import (
	"math"
	"strings"

	"github.com/fleetpulse/fleetpulse/internal/query"
)

// Distribution maps each grouped value to its count under a lowercase key.
// Values with a zero count are left out; rows with an empty value are skipped.
func Distribution(rows []query.GroupCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		if r.Count == 0 || r.Value == "" {
			continue
		}
		out[strings.ToLower(r.Value)] += r.Count
	}
	return out
}

// Total sums the counts of every row
func Total(rows []query.GroupCount) int64 {
	var n int64
	for _, r := range rows {
		n += r.Count
	}
	return n
}

// CountOf returns the count recorded for value, matched case-insensitively
func CountOf(rows []query.GroupCount, value string) int64 {
	var n int64
	for _, r := range rows {
		if strings.EqualFold(r.Value, value) {
			n += r.Count
		}
	}
	return n
}

// Average reports an aggregate average, or 0 when no row contributed
func Average(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return Round1(*v)
}

// Ratio divides sum by count, or returns 0 when nothing contributed
func Ratio(sum *float64, count int64) float64 {
	if sum == nil || count <= 0 {
		return 0
	}
	return Round1(*sum / float64(count))
}

// Percent returns part as a percentage of whole, or 0 when whole is zero
func Percent(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return Round1(float64(part) * 100 / float64(whole))
}

// Round1 rounds to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
