package models

import "time"

// Float status buckets derived from last contact age.
const (
	StatusActive   = "active"
	StatusDelayed  = "delayed"
	StatusInactive = "inactive"
	StatusUnknown  = "unknown"
)

// Float is one ARGO float as surfaced by the catalog endpoint. LastContact is
// an ISO-8601 string or nil; coordinates are only present when valid, callers
// must never coerce unknown positions to 0.
type Float struct {
	ID          string      `json:"id"`
	Lat         float64     `json:"lat"`
	Lon         float64     `json:"lon"`
	LastContact *string     `json:"last_contact"`
	Temperature *float64    `json:"temperature"`
	Salinity    *float64    `json:"salinity"`
	Trajectory  [][]float64 `json:"trajectory"`
	Status      string      `json:"status"`
}

// TrajectoryPoint is a single historical fix along a float's path.
type TrajectoryPoint struct {
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	Timestamp   string   `json:"timestamp"`
	Temperature *float64 `json:"temperature"`
	Salinity    *float64 `json:"salinity"`
	Pressure    *float64 `json:"pressure"`
}

// TimeSeriesPoint carries one or more scalar readings at a timestamp.
type TimeSeriesPoint struct {
	Timestamp   *string  `json:"timestamp"`
	Temperature *float64 `json:"temperature"`
	Salinity    *float64 `json:"salinity"`
	Pressure    *float64 `json:"pressure"`
}

// TimeSeriesPayload is the /timeseries response envelope.
type TimeSeriesPayload struct {
	Data     []TimeSeriesPoint `json:"data"`
	SQLQuery *string           `json:"sqlQuery"`
}

// Profile is a vertical snapshot of one variable. Depth and Values are
// parallel; a nil value means the sample exists but the reading is missing.
// Depth increases monotonically by convention, not enforced.
type Profile struct {
	Depth        []float64      `json:"depth"`
	Values       []*float64     `json:"values"`
	QualityFlags []any          `json:"quality_flags"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// QualityMetric is one entry of a float's QA report. Order-insignificant.
type QualityMetric struct {
	Metric      string  `json:"metric"`
	Value       float64 `json:"value"`
	Unit        *string `json:"unit,omitempty"`
	Flag        *string `json:"flag,omitempty"`
	Description *string `json:"description,omitempty"`
}

// FleetStats is the /api/stats aggregate.
type FleetStats struct {
	TotalFloats int     `json:"total_floats"`
	LastUpdated *string `json:"last_updated,omitempty"`
	Dataset     *string `json:"dataset,omitempty"`
}

// ResultRow is a loosely-typed record from the AI/SQL service. Column sets
// vary per query; every extraction site guards types at runtime.
type ResultRow map[string]any

// Message is one display message in the chat transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
	Title   string `json:"title,omitempty"`
}

// AskResponse is the normalized /api/ask payload. Exactly one of Rows or Text
// is populated depending on whether result_data was an array or a string.
type AskResponse struct {
	SQLQuery *string        `json:"sql_query"`
	Rows     []ResultRow    `json:"-"`
	Text     string         `json:"-"`
	Messages []Message      `json:"messages,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Error    *string        `json:"error"`
}

// WelcomeSnapshot is the last-known-good welcome result persisted between
// sessions.
type WelcomeSnapshot struct {
	Data     []ResultRow `json:"data"`
	SQLQuery string      `json:"sqlQuery"`
}

// FloatFilters narrows the catalog query. Nil/empty fields are ignored.
type FloatFilters struct {
	FloatIDs  []string
	Status    []string
	Start     *time.Time
	End       *time.Time
	Parameter string // reserved for parameter-specific filtering
}
