package api

import (
	"time"

	"github.com/YashwanthKamireddi/Float-Deck/internal/models"
)

// Sample payloads served when the database is unavailable. These keep the
// dashboard responsive in demo environments without a populated store.

func sampleStats(now time.Time) models.FleetStats {
	updated := now.UTC().Add(-48 * time.Hour).Format(time.RFC3339)
	dataset := "Sample data (offline)"
	return models.FleetStats{TotalFloats: 6, LastUpdated: &updated, Dataset: &dataset}
}

func sampleCatalog(now time.Time) []models.Float {
	base := now.UTC().Add(-24 * time.Hour)
	mk := func(id string, lat, lon float64, age time.Duration, temp, sal float64, status string) models.Float {
		contact := base.Add(-age).Format(time.RFC3339)
		t, s := temp, sal
		return models.Float{
			ID: id, Lat: lat, Lon: lon,
			LastContact: &contact,
			Temperature: &t, Salinity: &s,
			Trajectory: [][]float64{},
			Status:     status,
		}
	}
	return []models.Float{
		mk("5905612", -33.5, 151.3, 0, 15.4, 35.1, models.StatusActive),
		mk("5905613", -12.1, 145.2, 3*24*time.Hour, 12.9, 34.7, models.StatusActive),
		mk("5905614", 2.5, -150.8, 12*24*time.Hour, 10.2, 34.9, models.StatusDelayed),
		mk("3901774", 46.5, -17.8, 2*24*time.Hour, 9.1, 35.4, models.StatusActive),
		mk("2902273", 14.2, -38.6, 24*time.Hour, 20.3, 36.1, models.StatusActive),
		mk("3901621", -47.8, 12.4, 50*24*time.Hour, 6.4, 34.6, models.StatusInactive),
	}
}

func sampleProfile(variable string) models.Profile {
	depths := []float64{0, 25, 50, 100, 200, 400, 800, 1000}
	byVariable := map[string][]float64{
		"temperature": {18.2, 16.9, 15.3, 12.1, 8.2, 5.4, 3.9, 3.5},
		"salinity":    {35.2, 35.3, 35.1, 34.9, 34.8, 34.7, 34.6, 34.5},
		"pressure":    depths,
	}
	raw, ok := byVariable[variable]
	if !ok {
		raw = depths
	}
	values := make([]*float64, len(raw))
	for i := range raw {
		v := raw[i]
		values[i] = &v
	}
	return models.Profile{
		Depth:        depths,
		Values:       values,
		QualityFlags: []any{},
		Metadata:     map[string]any{"variable": variable, "sample_count": len(values)},
	}
}

func sampleTimeSeries(variable string, now time.Time) models.TimeSeriesPayload {
	base := now.UTC()
	points := make([]models.TimeSeriesPoint, 0, 6)
	for idx := 0; idx < 6; idx++ {
		ts := base.Add(-time.Duration(idx*5) * 24 * time.Hour).Format(time.RFC3339)
		point := models.TimeSeriesPoint{Timestamp: &ts}
		switch variable {
		case "salinity":
			v := 34.5 + float64(idx)*0.01
			point.Salinity = &v
		case "pressure":
			v := 10.0 + float64(idx)*2.0
			point.Pressure = &v
		default:
			v := 12.0 + float64(idx)*0.1
			point.Temperature = &v
		}
		points = append(points, point)
	}
	return models.TimeSeriesPayload{Data: points}
}

func sampleTrajectory(now time.Time) []models.TrajectoryPoint {
	base := now.UTC()
	lats := []float64{-33.5, -33.45, -33.4, -33.35, -33.3}
	lons := []float64{151.3, 151.32, 151.35, 151.37, 151.4}
	points := make([]models.TrajectoryPoint, 0, len(lats))
	for idx := range lats {
		temp := 15.0 - float64(idx)*0.1
		sal := 35.0 + float64(idx)*0.01
		pres := 5.0 + float64(idx)*0.5
		points = append(points, models.TrajectoryPoint{
			Lat:         lats[idx],
			Lon:         lons[idx],
			Timestamp:   base.Add(-time.Duration(idx) * 24 * time.Hour).Format(time.RFC3339),
			Temperature: &temp,
			Salinity:    &sal,
			Pressure:    &pres,
		})
	}
	return points
}

func sampleQuality() []models.QualityMetric {
	percent := "percent"
	mk := func(metric string, value float64, desc string) models.QualityMetric {
		d := desc
		return models.QualityMetric{Metric: metric, Value: value, Unit: &percent, Description: &d}
	}
	return []models.QualityMetric{
		mk("temperature_completeness", 98.2, "Sample completeness for temperature readings."),
		mk("salinity_completeness", 96.4, "Sample completeness for salinity readings."),
		mk("pressure_completeness", 99.9, "Sample completeness for pressure readings."),
	}
}
