package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/YashwanthKamireddi/Float-Deck/internal/models"
)

// DefaultSampleLimit caps how many distinct float IDs a synopsis samples.
// The distinct count itself is always computed over the full result set.
const DefaultSampleLimit = 12

// Candidate keys scanned in priority order when extracting entity IDs.
var floatIDKeys = []string{"float_id", "float", "id"}

// Candidate keys scanned when extracting the date window.
var dateKeys = []string{"profile_date", "observation_date", "date", "time"}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Synopsis is a derived, ephemeral summary of a query result set. It is
// recomputed whenever the result set's signature changes and never persisted
// beyond the session.
type Synopsis struct {
	RowCount       int
	Columns        []string
	FloatCount     int
	SampleFloats   []string
	EarliestDate   *time.Time
	LatestDate     *time.Time
	NumericColumns []string
	Signature      string
}

// Summarize derives a synopsis from a result set, or nil when it is empty.
// The column list is taken from the first row; the schema is assumed uniform
// across rows.
func Summarize(rows []models.ResultRow) *Synopsis {
	return SummarizeN(rows, DefaultSampleLimit)
}

// SummarizeN is Summarize with an explicit cap on the sampled float IDs.
func SummarizeN(rows []models.ResultRow, sampleLimit int) *Synopsis {
	if len(rows) == 0 {
		return nil
	}

	columns := columnList(rows[0])
	ids := distinctFloatIDs(rows)

	sample := ids
	if sampleLimit >= 0 && len(sample) > sampleLimit {
		sample = sample[:sampleLimit]
	}

	earliest, latest := dateWindow(rows)

	var numeric []string
	for _, col := range columns {
		if len(ExtractNumericValues(rows, col)) > 0 {
			numeric = append(numeric, col)
		}
	}

	return &Synopsis{
		RowCount:       len(rows),
		Columns:        columns,
		FloatCount:     len(ids),
		SampleFloats:   sample,
		EarliestDate:   earliest,
		LatestDate:     latest,
		NumericColumns: numeric,
		Signature:      Signature(rows),
	}
}

// Signature is a cheap content fingerprint (row count + column list +
// distinct-float count) used to detect whether a result set is materially the
// same for idempotent re-summarization. Equal inputs yield equal signatures;
// it is order-insensitive by construction and not a cryptographic hash.
func Signature(rows []models.ResultRow) string {
	if len(rows) == 0 {
		return "0||0"
	}
	columns := columnList(rows[0])
	return fmt.Sprintf("%d|%s|%d", len(rows), strings.Join(columns, ","), len(distinctFloatIDs(rows)))
}

// Headline renders the synopsis as a single sentence for the chat transcript.
func (s *Synopsis) Headline() string {
	if s == nil {
		return "No rows to summarize."
	}
	parts := []string{fmt.Sprintf("%d row(s) across %d column(s)", s.RowCount, len(s.Columns))}
	if s.FloatCount > 0 {
		part := fmt.Sprintf("%d distinct float(s)", s.FloatCount)
		if len(s.SampleFloats) > 0 {
			part += fmt.Sprintf(" such as %s", s.SampleFloats[0])
		}
		parts = append(parts, part)
	}
	if s.EarliestDate != nil && s.LatestDate != nil {
		parts = append(parts, fmt.Sprintf("spanning %s to %s",
			s.EarliestDate.Format("2006-01-02"), s.LatestDate.Format("2006-01-02")))
	}
	return strings.Join(parts, ", ") + "."
}

func columnList(row models.ResultRow) []string {
	columns := make([]string, 0, len(row))
	for key := range row {
		columns = append(columns, key)
	}
	sort.Strings(columns)
	return columns
}

// distinctFloatIDs dedupes float IDs preserving first-seen order. The first
// candidate key present anywhere in the result set wins.
func distinctFloatIDs(rows []models.ResultRow) []string {
	for _, key := range floatIDKeys {
		ids := distinctStrings(rows, key)
		if len(ids) > 0 {
			return ids
		}
	}
	return nil
}

func distinctStrings(rows []models.ResultRow, key string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, row := range rows {
		raw, ok := row[key]
		if !ok || raw == nil {
			continue
		}
		id := idString(raw)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// idString renders an entity ID as clean digits. JSON decoding hands numeric
// float_id columns over as float64, and %v would print a 7-digit ARGO id in
// scientific notation.
func idString(raw any) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", raw))
	}
}

func dateWindow(rows []models.ResultRow) (earliest, latest *time.Time) {
	for _, row := range rows {
		for _, key := range dateKeys {
			raw, ok := row[key]
			if !ok || raw == nil {
				continue
			}
			parsed, ok := parseDate(raw)
			if !ok {
				continue
			}
			if earliest == nil || parsed.Before(*earliest) {
				t := parsed
				earliest = &t
			}
			if latest == nil || parsed.After(*latest) {
				t := parsed
				latest = &t
			}
		}
	}
	return earliest, latest
}

func parseDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
