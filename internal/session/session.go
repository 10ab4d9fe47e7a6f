// Package session owns the top-level dashboard state: the chat transcript,
// the current result set and its synopsis, the selected float's detail, and
// the guided/expert UI mode. All fetch effects are guarded by a request
// generation so a reset or re-query invalidates whatever was in flight.
package session

import (
	"context"
	"sync"

	"github.com/YashwanthKamireddi/Float-Deck/internal/analytics"
	"github.com/YashwanthKamireddi/Float-Deck/internal/client"
	"github.com/YashwanthKamireddi/Float-Deck/internal/geo"
	"github.com/YashwanthKamireddi/Float-Deck/internal/models"
)

const trajectoryLimit = 50

// Backend is the slice of the fetch client the session uses. *client.Client
// satisfies it; tests substitute fakes.
type Backend interface {
	Ask(ctx context.Context, question string) *models.AskResponse
	WelcomeLoad(ctx context.Context) *client.WelcomeResult
	FleetStats(ctx context.Context) models.FleetStats
	FloatCatalog(ctx context.Context, filters models.FloatFilters) []models.Float
	Profile(ctx context.Context, floatID, variable string) models.Profile
	TimeSeries(ctx context.Context, floatID, variable string) models.TimeSeriesPayload
	Trajectory(ctx context.Context, floatID string, limit int) []models.TrajectoryPoint
	QualityReport(ctx context.Context, floatID string) []models.QualityMetric
	Status() (client.BackendStatus, string)
}

// FloatDetail bundles the four per-float views fetched on selection.
type FloatDetail struct {
	FloatID    string
	Profile    models.Profile
	Series     models.TimeSeriesPayload
	Trajectory []models.TrajectoryPoint
	Quality    []models.QualityMetric
	DistanceKm float64
}

type Session struct {
	backend Backend
	scoring ScoringConfig

	mu         sync.Mutex
	gen        uint64
	rows       []models.ResultRow
	sqlQuery   string
	synopsis   *analytics.Synopsis
	messages   []models.Message
	source     client.WelcomeSource
	modeScore  int
	expert     bool
	selectedID string
	detail     *FloatDetail
}

func New(backend Backend) *Session {
	return &Session{
		backend: backend,
		scoring: DefaultScoringConfig(),
	}
}

// SetScoringConfig overrides the complexity heuristic tuning.
func (s *Session) SetScoringConfig(cfg ScoringConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scoring = cfg
}

// Welcome runs the resilient initial load and installs the result set unless
// the session was reset while the load was in flight.
func (s *Session) Welcome(ctx context.Context) *client.WelcomeResult {
	gen := s.generation()
	res := s.backend.WelcomeLoad(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil
	}
	s.rows = res.Rows
	s.sqlQuery = res.SQLQuery
	s.source = res.Source
	s.refreshSynopsisLocked()
	return res
}

// Ask submits a free-text prompt. The complexity delta is accumulated at
// submission time; the response's effects (transcript append, result-set
// replacement) are dropped when the captured generation is stale.
func (s *Session) Ask(ctx context.Context, question string) []models.Message {
	s.mu.Lock()
	s.modeScore += ScoreComplexity(question, s.scoring)
	if s.modeScore >= s.scoring.ExpertThreshold {
		s.expert = true
	}
	gen := s.gen
	s.mu.Unlock()

	resp := s.backend.Ask(ctx, question)
	msgs := NormalizeMessages(resp)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil
	}
	s.messages = append(s.messages, models.Message{Role: "user", Content: question})
	s.messages = append(s.messages, msgs...)
	if resp != nil && resp.Rows != nil {
		s.rows = resp.Rows
		s.sqlQuery = ""
		if resp.SQLQuery != nil {
			s.sqlQuery = *resp.SQLQuery
		}
		s.source = client.SourceLive
		s.refreshSynopsisLocked()
	}
	return msgs
}

// SelectFloat fetches the four detail views concurrently. Each fetch has its
// own fallback, so a partial failure never blocks the others. The combined
// detail is discarded when the selection is stale.
func (s *Session) SelectFloat(ctx context.Context, floatID string) *FloatDetail {
	gen := s.generation()
	detail := &FloatDetail{FloatID: floatID}

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		detail.Profile = s.backend.Profile(ctx, floatID, "temperature")
	}()
	go func() {
		defer wg.Done()
		detail.Series = s.backend.TimeSeries(ctx, floatID, "temperature")
	}()
	go func() {
		defer wg.Done()
		detail.Trajectory = s.backend.Trajectory(ctx, floatID, trajectoryLimit)
	}()
	go func() {
		defer wg.Done()
		detail.Quality = s.backend.QualityReport(ctx, floatID)
	}()
	wg.Wait()

	detail.DistanceKm = geo.TrajectoryDistanceKm(detail.Trajectory)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil
	}
	s.selectedID = floatID
	s.detail = detail
	return detail
}

// Reset discards the transcript, result set, selection and mode score, and
// bumps the generation so in-flight responses are ignored on completion.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.rows = nil
	s.sqlQuery = ""
	s.synopsis = nil
	s.messages = nil
	s.source = ""
	s.modeScore = 0
	s.expert = false
	s.selectedID = ""
	s.detail = nil
}

// Rows returns the current result set. The slice is shared; callers treat it
// as read-only (filters derive new views, they never mutate).
func (s *Session) Rows() []models.ResultRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

func (s *Session) SQLQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sqlQuery
}

func (s *Session) Synopsis() *analytics.Synopsis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synopsis
}

func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) Source() client.WelcomeSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// ExpertMode reports whether the accumulated complexity score crossed the
// threshold that promotes the UI from guided to expert mode.
func (s *Session) ExpertMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expert
}

func (s *Session) Detail() *FloatDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detail
}

func (s *Session) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// refreshSynopsisLocked recomputes the synopsis only when the result set's
// signature changed; equal-content result sets keep the existing one.
func (s *Session) refreshSynopsisLocked() {
	sig := analytics.Signature(s.rows)
	if s.synopsis != nil && s.synopsis.Signature == sig {
		return
	}
	s.synopsis = analytics.Summarize(s.rows)
}
