package ingest

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/YashwanthKamireddi/Float-Deck/internal/metrics"
	"github.com/YashwanthKamireddi/Float-Deck/internal/store"
)

type sampleFloat struct {
	id          string
	lat, lon    float64
	contactAge  time.Duration
	surfaceTemp float64
	surfaceSal  float64
}

var sampleFleet = []sampleFloat{
	{"5905612", -33.5, 151.3, 24 * time.Hour, 15.4, 35.1},
	{"5905613", -12.1, 145.2, 4 * 24 * time.Hour, 12.9, 34.7},
	{"5905614", 2.5, -150.8, 13 * 24 * time.Hour, 10.2, 34.9},
	{"3901774", 46.5, -17.8, 3 * 24 * time.Hour, 9.1, 35.4},
	{"2902273", 14.2, -38.6, 2 * 24 * time.Hour, 20.3, 36.1},
	{"3901621", -47.8, 12.4, 51 * 24 * time.Hour, 6.4, 34.6},
}

var sampleDepths = []float64{0, 25, 50, 100, 200, 400, 800, 1000}

// SeedSamples populates the store with a deterministic six-float demo fleet:
// six profiles per float, ten days apart, with plausible temperature and
// salinity gradients and a slow north-east drift. Lets the dashboard run end
// to end without a GDAC ingest.
func SeedSamples(st *store.Store, now time.Time) error {
	var rows []store.ProfileRow
	for _, f := range sampleFleet {
		latest := now.UTC().Add(-f.contactAge)
		for cycle := 0; cycle < 6; cycle++ {
			date := latest.Add(-time.Duration(cycle*10) * 24 * time.Hour)
			lat := f.lat - float64(cycle)*0.05
			lon := f.lon - float64(cycle)*0.02
			for _, depth := range sampleDepths {
				rows = append(rows, store.ProfileRow{
					FloatID:     f.id,
					ProfileDate: date,
					Latitude:    sql.NullFloat64{Float64: lat, Valid: true},
					Longitude:   sql.NullFloat64{Float64: lon, Valid: true},
					Pressure:    sql.NullFloat64{Float64: depth, Valid: true},
					Temperature: sql.NullFloat64{Float64: tempAtDepth(f.surfaceTemp, depth), Valid: true},
					Salinity:    sql.NullFloat64{Float64: salinityAtDepth(f.surfaceSal, depth), Valid: true},
				})
			}
		}
	}

	if err := st.InsertProfileRows(rows); err != nil {
		return fmt.Errorf("seed samples: %w", err)
	}
	metrics.ProfilesIngested.WithLabelValues("seed").Add(float64(len(rows)))
	return nil
}

// tempAtDepth decays the surface temperature toward a 2.5°C deep-water floor.
func tempAtDepth(surface, depth float64) float64 {
	deep := 2.5
	frac := depth / 1000
	if frac > 1 {
		frac = 1
	}
	return surface - (surface-deep)*frac
}

// salinityAtDepth drifts salinity slightly fresher with depth.
func salinityAtDepth(surface, depth float64) float64 {
	return surface - depth*0.0006
}
