// Package analytics derives summaries from the loosely-typed result sets the
// AI/SQL service returns: descriptive statistics over a single column, a
// human-readable synopsis of a whole result set, and client-side filtering.
package analytics

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/YashwanthKamireddi/Float-Deck/internal/models"
)

// Stats holds descriptive statistics for one numeric column.
type Stats struct {
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	StdDev float64
	Count  int
}

// ExtractNumericValues returns the finite numeric values of one column.
// Result schemas are dynamic, so non-numeric, NaN and missing entries are
// dropped silently rather than reported as errors.
func ExtractNumericValues(rows []models.ResultRow, key string) []float64 {
	var values []float64
	for _, row := range rows {
		raw, ok := row[key]
		if !ok {
			continue
		}
		if v, ok := numericValue(raw); ok {
			values = append(values, v)
		}
	}
	return values
}

// ComputeStats returns descriptive statistics for values, or nil for empty
// input as an explicit "no data" signal. The standard deviation uses the
// population formula (divide by N). The input slice is not mutated.
func ComputeStats(values []float64) *Stats {
	if len(values) == 0 {
		return nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var variance float64
	for _, v := range sorted {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(sorted))

	n := len(sorted)
	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return &Stats{
		Mean:   mean,
		Median: median,
		Min:    sorted[0],
		Max:    sorted[n-1],
		StdDev: math.Sqrt(variance),
		Count:  n,
	}
}

// numericValue coerces the scalar shapes the service emits into a finite
// float64.
func numericValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, isFinite(v)
	case float32:
		return float64(v), isFinite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil && isFinite(f)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		return f, err == nil && isFinite(f)
	default:
		return 0, false
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
