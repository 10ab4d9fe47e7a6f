package analytics

import (
	"strings"

	"github.com/YashwanthKamireddi/Float-Deck/internal/models"
)

// FilterByFloat returns the rows whose float ID equals id, matching the same
// candidate keys the synopsis uses. An empty id is a passthrough. The source
// result set is never mutated; a derived slice is returned, empty (not nil
// error) when nothing matches.
func FilterByFloat(rows []models.ResultRow, id string) []models.ResultRow {
	id = strings.TrimSpace(id)
	if id == "" {
		return rows
	}
	filtered := make([]models.ResultRow, 0, len(rows))
	for _, row := range rows {
		if rowFloatID(row) == id {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// FilterByRange keeps rows whose value for key falls inside [min, max],
// bounds inclusive. A nil bound is open; swapped bounds are normalized rather
// than rejected. When any bound is set, rows without a finite numeric value
// for the key are excluded.
func FilterByRange(rows []models.ResultRow, key string, min, max *float64) []models.ResultRow {
	if min == nil && max == nil {
		return rows
	}
	lo, hi := min, max
	if lo != nil && hi != nil && *lo > *hi {
		lo, hi = hi, lo
	}

	filtered := make([]models.ResultRow, 0, len(rows))
	for _, row := range rows {
		raw, ok := row[key]
		if !ok {
			continue
		}
		v, ok := numericValue(raw)
		if !ok {
			continue
		}
		if lo != nil && v < *lo {
			continue
		}
		if hi != nil && v > *hi {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// NumericBounds computes the [min, max] of a numeric column to seed a range
// filter. ok is false when the column is absent or has no finite values, in
// which case range filtering is "unavailable" rather than an error.
func NumericBounds(rows []models.ResultRow, key string) (min, max float64, ok bool) {
	values := ExtractNumericValues(rows, key)
	if len(values) == 0 {
		return 0, 0, false
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, true
}

func rowFloatID(row models.ResultRow) string {
	for _, key := range floatIDKeys {
		raw, ok := row[key]
		if !ok || raw == nil {
			continue
		}
		if id := idString(raw); id != "" {
			return id
		}
	}
	return ""
}
