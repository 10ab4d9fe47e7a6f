package geo

import (
	"math"
	"testing"

	"github.com/YashwanthKamireddi/Float-Deck/internal/models"
)

func TestHaversineIdentity(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{-33.5, 151.3},
		{89.9, -179.9},
	}
	for _, p := range points {
		if d := HaversineKm(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("HaversineKm(%v, %v, same) = %v, want 0", p[0], p[1], d)
		}
	}
}

func TestHaversineSymmetry(t *testing.T) {
	d1 := HaversineKm(-33.5, 151.3, -12.1, 145.2)
	d2 := HaversineKm(-12.1, 145.2, -33.5, 151.3)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Sydney to Brisbane, roughly 730 km great-circle.
	d := HaversineKm(-33.87, 151.21, -27.47, 153.03)
	if d < 700 || d > 760 {
		t.Errorf("Sydney-Brisbane distance = %v km, want ~730", d)
	}
}

func TestHaversineNaNPropagates(t *testing.T) {
	if d := HaversineKm(math.NaN(), 0, 0, 0); !math.IsNaN(d) {
		t.Errorf("HaversineKm with NaN input = %v, want NaN", d)
	}
}

func TestTrajectoryDistance(t *testing.T) {
	tests := []struct {
		name   string
		points []models.TrajectoryPoint
		want   float64
	}{
		{"nil", nil, 0},
		{"empty", []models.TrajectoryPoint{}, 0},
		{"single point", []models.TrajectoryPoint{{Lat: -33.5, Lon: 151.3}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrajectoryDistanceKm(tt.points); got != tt.want {
				t.Errorf("TrajectoryDistanceKm = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrajectoryDistanceSumsSegments(t *testing.T) {
	points := []models.TrajectoryPoint{
		{Lat: -33.5, Lon: 151.3},
		{Lat: -33.4, Lon: 151.35},
		{Lat: -33.3, Lon: 151.4},
	}
	total := TrajectoryDistanceKm(points)
	seg1 := HaversineKm(-33.5, 151.3, -33.4, 151.35)
	seg2 := HaversineKm(-33.4, 151.35, -33.3, 151.4)
	if math.Abs(total-(seg1+seg2)) > 1e-9 {
		t.Errorf("total = %v, want %v", total, seg1+seg2)
	}
	if total <= 0 {
		t.Errorf("total = %v, want > 0", total)
	}
}

func TestValidCoords(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"origin", 0, 0, true},
		{"poles", 90, 180, true},
		{"negative bounds", -90, -180, true},
		{"lat too big", 90.1, 0, false},
		{"lon too big", 0, 180.1, false},
		{"NaN lat", math.NaN(), 0, false},
		{"inf lon", 0, math.Inf(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidCoords(tt.lat, tt.lon); got != tt.want {
				t.Errorf("ValidCoords(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
			}
		})
	}
}
