package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/YashwanthKamireddi/Float-Deck/internal/models"
	"github.com/YashwanthKamireddi/Float-Deck/internal/store"
)

const maxQuestionLength = 600

type askRequest struct {
	Question string `json:"question"`
}

// handleAsk forwards the question to the configured external AI service. The
// AI pipeline itself (schema inference, SQL generation, retrieval) lives
// upstream; this server only relays the documented contract.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "POST only.")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Request body must be JSON with a question field.")
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Question cannot be empty.")
		return
	}
	if len(question) > maxQuestionLength {
		writeDetail(w, http.StatusUnprocessableEntity, "Question is too long.")
		return
	}

	if s.upstreamAsk == "" {
		writeDetail(w, http.StatusServiceUnavailable, "AI service is not configured on this deployment.")
		return
	}

	payload, _ := json.Marshal(askRequest{Question: question})
	upstreamReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost, s.upstreamAsk+"/api/ask", bytes.NewReader(payload))
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Failed to build upstream request.")
		return
	}
	upstreamReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(upstreamReq)
	if err != nil {
		log.Printf("warning: ask upstream unreachable: %v", err)
		writeDetail(w, http.StatusBadGateway, "AI service is unreachable.")
		return
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]any{}

	dbOK := true
	if _, err := s.store.FleetStats(); err != nil {
		dbOK = false
		checks["database"] = map[string]any{"ok": false, "detail": err.Error()}
	} else {
		checks["database"] = map[string]any{"ok": true, "detail": "Connected to SQLite"}
	}

	upstreamOK := s.upstreamAsk != ""
	detail := "Not configured"
	if upstreamOK {
		detail = s.upstreamAsk
	}
	checks["ai_upstream"] = map[string]any{"ok": upstreamOK, "detail": detail}

	status := "ok"
	if !dbOK || !upstreamOK {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status, "checks": checks})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.FleetStats()
	if err != nil {
		log.Printf("warning: falling back to sample stats: %v", err)
		stats = sampleStats(s.now())
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleFloats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := models.FloatFilters{
		FloatIDs:  splitCSV(q.Get("float_ids")),
		Status:    splitCSV(q.Get("status")),
		Parameter: q.Get("parameter"),
	}

	var badTime bool
	filters.Start, badTime = parseTimeParam(q.Get("start"))
	if badTime {
		writeDetail(w, http.StatusBadRequest, "Invalid datetime format: "+q.Get("start"))
		return
	}
	filters.End, badTime = parseTimeParam(q.Get("end"))
	if badTime {
		writeDetail(w, http.StatusBadRequest, "Invalid datetime format: "+q.Get("end"))
		return
	}

	limit := 200
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			writeDetail(w, http.StatusBadRequest, "limit must be between 1 and 1000.")
			return
		}
		limit = parsed
	}

	catalog, err := s.store.FloatCatalog(filters, limit)
	if err != nil {
		log.Printf("warning: falling back to sample float catalog: %v", err)
		catalog = sampleCatalog(s.now())
	}
	if catalog == nil {
		catalog = []models.Float{}
	}
	writeJSON(w, http.StatusOK, catalog)
}

// handleFloatSubresource routes /api/floats/{id}/{profiles|timeseries|quality|trajectory}.
func (s *Server) handleFloatSubresource(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/floats/"), "/"), "/")
	if len(parts) < 2 || parts[0] == "" {
		writeDetail(w, http.StatusNotFound, "Unknown float resource.")
		return
	}
	floatID := parts[0]

	switch parts[1] {
	case "profiles":
		if len(parts) != 3 {
			writeDetail(w, http.StatusNotFound, "Profile variable is required.")
			return
		}
		s.serveProfile(w, floatID, parts[2])
	case "timeseries":
		variable := r.URL.Query().Get("variable")
		if variable == "" {
			variable = "temperature"
		}
		s.serveTimeSeries(w, floatID, variable, intParam(r, "limit", 60))
	case "quality":
		s.serveQuality(w, floatID)
	case "trajectory":
		s.serveTrajectory(w, floatID, intParam(r, "limit", 50))
	default:
		writeDetail(w, http.StatusNotFound, "Unknown float resource.")
	}
}

func (s *Server) serveProfile(w http.ResponseWriter, floatID, variable string) {
	profile, err := s.store.Profile(floatID, variable)
	if errors.Is(err, store.ErrUnsupportedVariable) {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("warning: falling back to sample profile for %s: %v", floatID, err)
		profile = sampleProfile(variable)
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) serveTimeSeries(w http.ResponseWriter, floatID, variable string, limit int) {
	payload, err := s.store.TimeSeries(floatID, variable, limit)
	if errors.Is(err, store.ErrUnsupportedVariable) {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("warning: falling back to sample time series for %s: %v", floatID, err)
		payload = sampleTimeSeries(variable, s.now())
	}
	if payload.Data == nil {
		payload.Data = []models.TimeSeriesPoint{}
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) serveQuality(w http.ResponseWriter, floatID string) {
	report, err := s.store.QualityReport(floatID)
	if err != nil {
		log.Printf("warning: falling back to sample quality metrics for %s: %v", floatID, err)
		report = sampleQuality()
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) serveTrajectory(w http.ResponseWriter, floatID string, limit int) {
	points, err := s.store.Trajectory(floatID, limit)
	if err != nil {
		log.Printf("warning: falling back to sample trajectory for %s: %v", floatID, err)
		points = sampleTrajectory(s.now())
	}
	if points == nil {
		points = []models.TrajectoryPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseTimeParam returns (nil, true) for malformed input so the handler can
// reject it, and (nil, false) for absent input.
func parseTimeParam(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, false
		}
	}
	return nil, true
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
