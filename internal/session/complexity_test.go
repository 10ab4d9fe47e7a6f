package session

import (
	"strings"
	"testing"
)

func TestScoreComplexity(t *testing.T) {
	cfg := DefaultScoringConfig()
	tests := []struct {
		name     string
		question string
		want     int
	}{
		{"empty", "", 0},
		{"whitespace only", "   ", 0},
		{"simple", "show me all floats", 0},
		{"single keyword", "what is the average temperature", 2},
		{"keywords plus comparison", "average salinity group by float_id having count > 5", 7},
		{"comparison word", "profiles between 10 and 20 metres", 1},
		{"punctuation heavy", "temp(0,100);sal(30,40)", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreComplexity(tt.question, cfg); got != tt.want {
				t.Errorf("ScoreComplexity(%q) = %d, want %d", tt.question, got, tt.want)
			}
		})
	}
}

func TestScoreComplexityLongQuestion(t *testing.T) {
	cfg := DefaultScoringConfig()
	long := strings.TrimSpace(strings.Repeat("measure depth ", 10))
	if len(long) < cfg.LongLength {
		t.Fatalf("fixture too short: %d", len(long))
	}
	if got := ScoreComplexity(long, cfg); got != cfg.LengthPoints {
		t.Errorf("long question score = %d, want %d", got, cfg.LengthPoints)
	}
}

func TestScoreComplexityCaseInsensitive(t *testing.T) {
	cfg := DefaultScoringConfig()
	if got := ScoreComplexity("AVERAGE temperature GROUP BY float", cfg); got != 4 {
		t.Errorf("uppercase score = %d, want 4", got)
	}
}

func TestScoreComplexityIsPure(t *testing.T) {
	cfg := DefaultScoringConfig()
	const q = "average temperature having depth > 500"
	first := ScoreComplexity(q, cfg)
	for i := 0; i < 5; i++ {
		if got := ScoreComplexity(q, cfg); got != first {
			t.Fatalf("score changed across calls: %d then %d", first, got)
		}
	}
}
