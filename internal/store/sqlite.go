// Package store persists ARGO profile rows in SQLite and serves the
// read-side queries behind the dashboard endpoints, plus the small key-value
// table backing the welcome snapshot cache.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/YashwanthKamireddi/Float-Deck/internal/models"
)

// ErrUnsupportedVariable is returned for profile/timeseries variables outside
// the supported set.
var ErrUnsupportedVariable = errors.New("unsupported variable")

var supportedVariables = map[string]bool{
	"temperature": true,
	"salinity":    true,
	"pressure":    true,
}

// Contact-age thresholds for deriving a float's status.
const (
	activeWindow  = 30 * 24 * time.Hour
	delayedWindow = 90 * 24 * time.Hour
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// ProfileRow is one depth sample of one profile.
type ProfileRow struct {
	FloatID     string
	ProfileDate time.Time
	Latitude    sql.NullFloat64
	Longitude   sql.NullFloat64
	Pressure    sql.NullFloat64
	Temperature sql.NullFloat64
	Salinity    sql.NullFloat64
}

// InsertProfileRows writes a batch of profile rows in one transaction.
func (s *Store) InsertProfileRows(rows []ProfileRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO argo_profiles (float_id, profile_date, latitude, longitude, pressure, temperature, salinity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row.FloatID, row.ProfileDate.UTC(), row.Latitude, row.Longitude, row.Pressure, row.Temperature, row.Salinity); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert profile row for %s: %w", row.FloatID, err)
		}
	}
	return tx.Commit()
}

// FleetStats computes the fleet aggregate for the dashboard header.
func (s *Store) FleetStats() (models.FleetStats, error) {
	var total int
	if err := s.db.QueryRow("SELECT COUNT(DISTINCT float_id) FROM argo_profiles").Scan(&total); err != nil {
		return models.FleetStats{}, fmt.Errorf("count floats: %w", err)
	}

	var lastUpdated sql.NullTime
	if err := s.db.QueryRow("SELECT MAX(profile_date) FROM argo_profiles").Scan(&lastUpdated); err != nil {
		return models.FleetStats{}, fmt.Errorf("max profile date: %w", err)
	}

	stats := models.FleetStats{TotalFloats: total}
	if lastUpdated.Valid {
		updated := lastUpdated.Time.UTC().Format(time.RFC3339)
		stats.LastUpdated = &updated
	}
	dataset := "ARGO operational subset"
	stats.Dataset = &dataset
	return stats, nil
}

// FloatCatalog returns the latest fix per float, newest contact first. The
// status filter is applied after status derivation, matching how statuses are
// computed rather than stored.
func (s *Store) FloatCatalog(filters models.FloatFilters, limit int) ([]models.Float, error) {
	if limit <= 0 {
		limit = 200
	}

	conditions := []string{"latitude IS NOT NULL", "longitude IS NOT NULL"}
	var args []any
	if len(filters.FloatIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filters.FloatIDs)), ",")
		conditions = append(conditions, fmt.Sprintf("float_id IN (%s)", placeholders))
		for _, id := range filters.FloatIDs {
			args = append(args, id)
		}
	}
	if filters.Start != nil {
		conditions = append(conditions, "profile_date >= ?")
		args = append(args, filters.Start.UTC())
	}
	if filters.End != nil {
		conditions = append(conditions, "profile_date <= ?")
		args = append(args, filters.End.UTC())
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		WITH latest AS (
			SELECT float_id, profile_date, latitude, longitude, temperature, salinity,
			       ROW_NUMBER() OVER (PARTITION BY float_id ORDER BY profile_date DESC) AS rnk
			FROM argo_profiles
			WHERE %s
		)
		SELECT float_id, MAX(profile_date) AS last_contact,
		       AVG(temperature), AVG(salinity), MAX(latitude), MAX(longitude)
		FROM latest
		WHERE rnk = 1
		GROUP BY float_id
		ORDER BY last_contact DESC
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var catalog []models.Float
	for rows.Next() {
		var (
			id          string
			lastContact sql.NullTime
			temp, sal   sql.NullFloat64
			lat, lon    sql.NullFloat64
		)
		if err := rows.Scan(&id, &lastContact, &temp, &sal, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}

		status := s.statusFor(lastContact)
		if !matchStatus(filters.Status, status) {
			continue
		}

		f := models.Float{
			ID:         id,
			Status:     status,
			Trajectory: [][]float64{},
		}
		if lat.Valid {
			f.Lat = lat.Float64
		}
		if lon.Valid {
			f.Lon = lon.Float64
		}
		if lastContact.Valid {
			contact := lastContact.Time.UTC().Format(time.RFC3339)
			f.LastContact = &contact
		}
		if temp.Valid {
			v := temp.Float64
			f.Temperature = &v
		}
		if sal.Valid {
			v := sal.Float64
			f.Salinity = &v
		}
		catalog = append(catalog, f)
	}
	return catalog, rows.Err()
}

// Profile returns the latest profile's depth/value arrays for one variable.
func (s *Store) Profile(floatID, variable string) (models.Profile, error) {
	if !supportedVariables[variable] {
		return models.Profile{}, fmt.Errorf("%w: %q", ErrUnsupportedVariable, variable)
	}

	rows, err := s.db.Query(`
		SELECT pressure, temperature, salinity
		FROM argo_profiles
		WHERE float_id = ?
		  AND profile_date = (
			SELECT profile_date FROM argo_profiles
			WHERE float_id = ?
			ORDER BY profile_date DESC
			LIMIT 1
		  )
		ORDER BY pressure ASC
		LIMIT 500
	`, floatID, floatID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("query profile: %w", err)
	}
	defer rows.Close()

	profile := models.Profile{
		Depth:        []float64{},
		Values:       []*float64{},
		QualityFlags: []any{},
	}
	sampleCount := 0
	for rows.Next() {
		var pressure, temperature, salinity sql.NullFloat64
		if err := rows.Scan(&pressure, &temperature, &salinity); err != nil {
			return models.Profile{}, fmt.Errorf("scan profile row: %w", err)
		}

		depth := 0.0
		if pressure.Valid {
			depth = pressure.Float64
		}
		profile.Depth = append(profile.Depth, depth)

		var picked sql.NullFloat64
		switch variable {
		case "temperature":
			picked = temperature
		case "salinity":
			picked = salinity
		case "pressure":
			picked = pressure
		}
		if picked.Valid {
			v := picked.Float64
			profile.Values = append(profile.Values, &v)
			sampleCount++
		} else {
			profile.Values = append(profile.Values, nil)
		}
	}
	if err := rows.Err(); err != nil {
		return models.Profile{}, err
	}

	profile.Metadata = map[string]any{
		"variable":     variable,
		"sample_count": sampleCount,
	}
	return profile, nil
}

// TimeSeries returns one point per profile (depth samples averaged) for the
// newest limit profiles, in chronological order.
func (s *Store) TimeSeries(floatID, variable string, limit int) (models.TimeSeriesPayload, error) {
	if !supportedVariables[variable] {
		return models.TimeSeriesPayload{}, fmt.Errorf("%w: %q", ErrUnsupportedVariable, variable)
	}
	if limit <= 0 {
		limit = 60
	}

	rows, err := s.db.Query(`
		SELECT profile_date, AVG(temperature), AVG(salinity), AVG(pressure)
		FROM argo_profiles
		WHERE float_id = ?
		GROUP BY profile_date
		ORDER BY profile_date DESC
		LIMIT ?
	`, floatID, limit)
	if err != nil {
		return models.TimeSeriesPayload{}, fmt.Errorf("query time series: %w", err)
	}
	defer rows.Close()

	var points []models.TimeSeriesPoint
	for rows.Next() {
		var (
			when            sql.NullTime
			temp, sal, pres sql.NullFloat64
		)
		if err := rows.Scan(&when, &temp, &sal, &pres); err != nil {
			return models.TimeSeriesPayload{}, fmt.Errorf("scan time series row: %w", err)
		}

		var point models.TimeSeriesPoint
		if when.Valid {
			ts := when.Time.UTC().Format(time.RFC3339)
			point.Timestamp = &ts
		}
		point.Temperature = nullableFloat(temp)
		point.Salinity = nullableFloat(sal)
		point.Pressure = nullableFloat(pres)
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return models.TimeSeriesPayload{}, err
	}

	reversePoints(points)
	return models.TimeSeriesPayload{Data: points}, nil
}

// Trajectory returns one surface fix per profile for the newest limit
// profiles, in chronological order, skipping profiles without coordinates.
func (s *Store) Trajectory(floatID string, limit int) ([]models.TrajectoryPoint, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT MAX(latitude), MAX(longitude), profile_date, AVG(temperature), AVG(salinity), MIN(pressure)
		FROM argo_profiles
		WHERE float_id = ?
		  AND latitude IS NOT NULL AND longitude IS NOT NULL
		GROUP BY profile_date
		ORDER BY profile_date DESC
		LIMIT ?
	`, floatID, limit)
	if err != nil {
		return nil, fmt.Errorf("query trajectory: %w", err)
	}
	defer rows.Close()

	var points []models.TrajectoryPoint
	for rows.Next() {
		var (
			lat, lon        sql.NullFloat64
			when            sql.NullTime
			temp, sal, pres sql.NullFloat64
		)
		if err := rows.Scan(&lat, &lon, &when, &temp, &sal, &pres); err != nil {
			return nil, fmt.Errorf("scan trajectory row: %w", err)
		}
		if !lat.Valid || !lon.Valid || !when.Valid {
			continue
		}

		points = append(points, models.TrajectoryPoint{
			Lat:         lat.Float64,
			Lon:         lon.Float64,
			Timestamp:   when.Time.UTC().Format(time.RFC3339),
			Temperature: nullableFloat(temp),
			Salinity:    nullableFloat(sal),
			Pressure:    nullableFloat(pres),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// QualityReport computes per-variable completeness percentages for a float.
// An unknown float yields an empty report, not an error.
func (s *Store) QualityReport(floatID string) ([]models.QualityMetric, error) {
	var total, tempCount, salCount, presCount int
	err := s.db.QueryRow(`
		SELECT COUNT(*), COUNT(temperature), COUNT(salinity), COUNT(pressure)
		FROM argo_profiles
		WHERE float_id = ?
	`, floatID).Scan(&total, &tempCount, &salCount, &presCount)
	if err != nil {
		return nil, fmt.Errorf("query quality counts: %w", err)
	}
	if total == 0 {
		return []models.QualityMetric{}, nil
	}

	percent := "percent"
	ratio := func(count int) float64 {
		return math.Round(float64(count)/float64(total)*100*100) / 100
	}
	mk := func(metric string, count int, desc string) models.QualityMetric {
		d := desc
		return models.QualityMetric{Metric: metric, Value: ratio(count), Unit: &percent, Description: &d}
	}
	return []models.QualityMetric{
		mk("temperature_completeness", tempCount, "Percentage of measurements with valid temperature readings."),
		mk("salinity_completeness", salCount, "Percentage of measurements with valid salinity readings."),
		mk("pressure_completeness", presCount, "Percentage of measurements with valid pressure readings."),
	}, nil
}

// Snapshot KV, implementing the fetch client's SnapshotStore. Reads are
// best-effort: a query failure is logged and treated as a miss.

func (s *Store) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM snapshots WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		log.Printf("warning: read snapshot %q: %v", key, err)
		return "", false
	}
	return value, true
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, s.now().UTC())
	return err
}

func (s *Store) Clear(key string) error {
	_, err := s.db.Exec("DELETE FROM snapshots WHERE key = ?", key)
	return err
}

func (s *Store) statusFor(lastContact sql.NullTime) string {
	if !lastContact.Valid {
		return models.StatusUnknown
	}
	age := s.now().UTC().Sub(lastContact.Time.UTC())
	switch {
	case age <= activeWindow:
		return models.StatusActive
	case age <= delayedWindow:
		return models.StatusDelayed
	default:
		return models.StatusInactive
	}
}

func matchStatus(filter []string, candidate string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, want := range filter {
		if strings.EqualFold(strings.TrimSpace(want), candidate) {
			return true
		}
	}
	return false
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func reversePoints(points []models.TimeSeriesPoint) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}
