package session

import (
	"regexp"
	"strings"
)

// ScoringConfig tunes the query-complexity heuristic. The keyword lists and
// thresholds are configuration, not a guaranteed-correct classifier; the only
// contract is a monotonic signal over the submitted text.
type ScoringConfig struct {
	Keywords          []string
	KeywordPoints     int
	ComparisonPattern *regexp.Regexp
	ComparisonPoints  int
	LongLength        int
	LengthPoints      int
	PunctuationRatio  float64
	PunctuationPoints int
	ExpertThreshold   int
}

var defaultComparisonPattern = regexp.MustCompile(`[<>]=?|\b(between|greater than|less than|at least|at most)\b`)

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Keywords: []string{
			"group by", "join", "having", "union", "partition",
			"window", "subquery", "aggregate", "average", "stddev",
			"percentile", "correlation",
		},
		KeywordPoints:     2,
		ComparisonPattern: defaultComparisonPattern,
		ComparisonPoints:  1,
		LongLength:        120,
		LengthPoints:      1,
		PunctuationRatio:  0.05,
		PunctuationPoints: 1,
		ExpertThreshold:   6,
	}
}

// ScoreComplexity maps a question to an integer complexity delta. Pure
// function of its inputs; the session accumulates the deltas and promotes the
// UI to expert mode once the configured threshold is crossed.
func ScoreComplexity(question string, cfg ScoringConfig) int {
	text := strings.ToLower(strings.TrimSpace(question))
	if text == "" {
		return 0
	}

	score := 0
	for _, kw := range cfg.Keywords {
		if strings.Contains(text, kw) {
			score += cfg.KeywordPoints
		}
	}
	if cfg.ComparisonPattern != nil && cfg.ComparisonPattern.MatchString(text) {
		score += cfg.ComparisonPoints
	}
	if len(text) >= cfg.LongLength && cfg.LongLength > 0 {
		score += cfg.LengthPoints
	}
	if punctuationRatio(text) >= cfg.PunctuationRatio && cfg.PunctuationRatio > 0 {
		score += cfg.PunctuationPoints
	}
	return score
}

func punctuationRatio(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	count := 0
	for _, r := range text {
		switch r {
		case ',', ';', '(', ')', '%', '=', '<', '>':
			count++
		}
	}
	return float64(count) / float64(len(text))
}
