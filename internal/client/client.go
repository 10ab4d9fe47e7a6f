// Package client fetches dashboard resources from the FloatAI backend with
// graceful degradation: every resource method resolves to a renderable value,
// falling back to a deterministic sample payload when the backend is
// unreachable, returns a bad status, or emits unparsable JSON. Callers never
// branch on success versus fallback.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"

	"github.com/YashwanthKamireddi/Float-Deck/internal/httputil"
	"github.com/YashwanthKamireddi/Float-Deck/internal/metrics"
	"github.com/YashwanthKamireddi/Float-Deck/internal/models"
)

const (
	welcomeMaxAttempts = 3
	welcomeSnapshotKey = "floatai.welcome.v1"

	// Issued once at startup to seed the dashboard with recent activity.
	welcomeQuestion = "Show the 50 most recent ARGO profiles with float id, profile date, latitude and longitude"
)

// errNetwork marks transport-level failures so the status indicator can
// distinguish "couldn't connect" from "backend answered badly".
var errNetwork = errors.New("backend unreachable")

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	snapshots  SnapshotStore
	newBackOff func() backoff.BackOff
	status     *StatusTracker
	now        func() time.Time
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httputil.NewClient(),
		snapshots:  NewMemorySnapshotStore(),
		newBackOff: func() backoff.BackOff { return NewQuadraticBackOff() },
		status:     NewStatusTracker(),
		now:        time.Now,
	}
}

// SetAPIKey configures the shared key sent as x-api-key on every request.
func (c *Client) SetAPIKey(key string) {
	c.apiKey = key
}

// SetSnapshotStore swaps the last-known-good persistence backend.
func (c *Client) SetSnapshotStore(store SnapshotStore) {
	c.snapshots = store
}

// SetHTTPClient overrides the underlying HTTP client.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// SetBackOff overrides the welcome-load retry policy, mainly so tests can run
// without real delays.
func (c *Client) SetBackOff(factory func() backoff.BackOff) {
	c.newBackOff = factory
}

// Status reports the backend availability indicator.
func (c *Client) Status() (BackendStatus, string) {
	return c.status.Status()
}

// FleetStats returns the fleet aggregate, or the sample aggregate when the
// backend cannot serve it.
func (c *Client) FleetStats(ctx context.Context) models.FleetStats {
	const resource = "stats"
	body, err := c.get(ctx, "/api/stats", resource)
	if err != nil {
		return fallback(resource, err, c.fallbackStats())
	}
	var stats models.FleetStats
	if err := json.Unmarshal(body, &stats); err != nil {
		c.status.recordDegraded("stats payload was not valid JSON")
		return fallback(resource, err, c.fallbackStats())
	}
	c.recordSuccess(resource, stats.TotalFloats > 0)
	return stats
}

// FloatCatalog returns the float catalog matching filters, or the fixed
// six-float sample fleet on failure.
func (c *Client) FloatCatalog(ctx context.Context, filters models.FloatFilters) []models.Float {
	const resource = "catalog"
	body, err := c.get(ctx, "/api/floats"+catalogQuery(filters), resource)
	if err != nil {
		return fallback(resource, err, c.fallbackFleet())
	}
	var floats []models.Float
	if err := json.Unmarshal(body, &floats); err != nil {
		c.status.recordDegraded("catalog payload was not valid JSON")
		return fallback(resource, err, c.fallbackFleet())
	}
	c.recordSuccess(resource, len(floats) > 0)
	return floats
}

// Profile returns a vertical profile for one float and variable.
func (c *Client) Profile(ctx context.Context, floatID, variable string) models.Profile {
	const resource = "profile"
	path := fmt.Sprintf("/api/floats/%s/profiles/%s", url.PathEscape(floatID), url.PathEscape(variable))
	body, err := c.get(ctx, path, resource)
	if err != nil {
		return fallback(resource, err, c.fallbackProfile(variable))
	}
	var profile models.Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		c.status.recordDegraded("profile payload was not valid JSON")
		return fallback(resource, err, c.fallbackProfile(variable))
	}
	c.recordSuccess(resource, len(profile.Depth) > 0)
	return profile
}

// TimeSeries returns the recent time series of one variable for a float.
func (c *Client) TimeSeries(ctx context.Context, floatID, variable string) models.TimeSeriesPayload {
	const resource = "timeseries"
	path := fmt.Sprintf("/api/floats/%s/timeseries?variable=%s", url.PathEscape(floatID), url.QueryEscape(variable))
	body, err := c.get(ctx, path, resource)
	if err != nil {
		return fallback(resource, err, c.fallbackTimeSeries(variable))
	}
	var payload models.TimeSeriesPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.status.recordDegraded("time series payload was not valid JSON")
		return fallback(resource, err, c.fallbackTimeSeries(variable))
	}
	c.recordSuccess(resource, len(payload.Data) > 0)
	return payload
}

// Trajectory returns up to limit recent fixes for a float.
func (c *Client) Trajectory(ctx context.Context, floatID string, limit int) []models.TrajectoryPoint {
	const resource = "trajectory"
	path := fmt.Sprintf("/api/floats/%s/trajectory?limit=%d", url.PathEscape(floatID), limit)
	body, err := c.get(ctx, path, resource)
	if err != nil {
		return fallback(resource, err, c.fallbackTrajectory())
	}
	var points []models.TrajectoryPoint
	if err := json.Unmarshal(body, &points); err != nil {
		c.status.recordDegraded("trajectory payload was not valid JSON")
		return fallback(resource, err, c.fallbackTrajectory())
	}
	c.recordSuccess(resource, len(points) > 0)
	return points
}

// QualityReport returns the QA metrics for a float.
func (c *Client) QualityReport(ctx context.Context, floatID string) []models.QualityMetric {
	const resource = "quality"
	path := fmt.Sprintf("/api/floats/%s/quality", url.PathEscape(floatID))
	body, err := c.get(ctx, path, resource)
	if err != nil {
		return fallback(resource, err, c.fallbackQuality())
	}
	var report []models.QualityMetric
	if err := json.Unmarshal(body, &report); err != nil {
		c.status.recordDegraded("quality payload was not valid JSON")
		return fallback(resource, err, c.fallbackQuality())
	}
	c.recordSuccess(resource, len(report) > 0)
	return report
}

// Ask sends a free-text question to the AI endpoint. On failure it resolves
// to a response that carries an error message instead of propagating one.
func (c *Client) Ask(ctx context.Context, question string) *models.AskResponse {
	const resource = "ask"
	resp, err := c.ask(ctx, question)
	if err != nil {
		return fallback(resource, err, c.fallbackAsk())
	}
	empty := resp.Error == nil && resp.Rows == nil && resp.Text == "" && len(resp.Messages) == 0
	c.recordSuccess(resource, !empty)
	return resp
}

// WelcomeSource identifies where the initial dashboard data came from.
type WelcomeSource string

const (
	SourceLive    WelcomeSource = "live"
	SourceCache   WelcomeSource = "cache"
	SourceOffline WelcomeSource = "offline"
)

// WelcomeResult is the outcome of the initial load.
type WelcomeResult struct {
	Rows     []models.ResultRow
	SQLQuery string
	Source   WelcomeSource
}

// WelcomeLoad performs the initial "welcome" query with bounded retry: up to
// three attempts with quadratic backoff, stopping at the first structurally
// valid response (no error field, array result, non-null SQL text). When all
// attempts fail it falls back to the persisted last-known-good snapshot, and
// only without one does it report an explicit offline state.
func (c *Client) WelcomeLoad(ctx context.Context) *WelcomeResult {
	var resp *models.AskResponse
	operation := func() error {
		metrics.WelcomeAttempts.Inc()
		r, err := c.ask(ctx, welcomeQuestion)
		if err != nil {
			return err
		}
		if r.Error != nil {
			return fmt.Errorf("backend reported: %s", *r.Error)
		}
		if r.SQLQuery == nil {
			return errors.New("response missing sql_query")
		}
		if r.Rows == nil {
			return errors.New("result_data is not an array")
		}
		resp = r
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), welcomeMaxAttempts-1), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		log.Printf("warning: welcome load failed after %d attempts: %v", welcomeMaxAttempts, err)
		if snap, ok := c.loadSnapshot(); ok {
			c.status.recordDegraded("serving cached welcome data")
			return &WelcomeResult{Rows: snap.Data, SQLQuery: snap.SQLQuery, Source: SourceCache}
		}
		c.status.recordOffline("no connection and no cached data")
		return &WelcomeResult{Rows: []models.ResultRow{}, Source: SourceOffline}
	}

	c.saveSnapshot(resp)
	c.recordSuccess("welcome", len(resp.Rows) > 0)
	return &WelcomeResult{Rows: resp.Rows, SQLQuery: *resp.SQLQuery, Source: SourceLive}
}

// ask issues the POST and normalizes the heterogeneous response shape. Unlike
// the resource methods it surfaces errors, so WelcomeLoad can drive retries.
func (c *Client) ask(ctx context.Context, question string) (*models.AskResponse, error) {
	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return nil, fmt.Errorf("encode question: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ask", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.status.recordOffline("couldn't connect to the FloatAI backend")
		return nil, fmt.Errorf("%w: %v", errNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.status.recordDegraded(fmt.Sprintf("ask returned status %d", resp.StatusCode))
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ask: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	out, err := parseAskResponse(body)
	if err != nil {
		c.status.recordDegraded("ask payload was not valid JSON")
		return nil, err
	}
	return out, nil
}

// parseAskResponse tolerates the shapes the service emits: result_data may be
// an array of records, a bare string, or null; messages and metadata are
// optional.
func parseAskResponse(body []byte) (*models.AskResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("ask: response is not valid JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, errors.New("ask: response is not a JSON object")
	}

	out := &models.AskResponse{}

	if sq := doc.Get("sql_query"); sq.Type == gjson.String {
		s := sq.String()
		out.SQLQuery = &s
	}
	if e := doc.Get("error"); e.Type == gjson.String && e.String() != "" {
		s := e.String()
		out.Error = &s
	}

	switch rd := doc.Get("result_data"); {
	case rd.IsArray():
		rows := make([]models.ResultRow, 0, int(rd.Get("#").Int()))
		rd.ForEach(func(_, item gjson.Result) bool {
			if obj, ok := item.Value().(map[string]any); ok {
				rows = append(rows, models.ResultRow(obj))
			}
			return true
		})
		out.Rows = rows
	case rd.Type == gjson.String:
		out.Text = rd.String()
	}

	doc.Get("messages").ForEach(func(_, m gjson.Result) bool {
		out.Messages = append(out.Messages, models.Message{
			Role:    m.Get("role").String(),
			Content: m.Get("content").String(),
			Type:    m.Get("type").String(),
			Title:   m.Get("title").String(),
		})
		return true
	})

	if md := doc.Get("metadata"); md.IsObject() {
		if m, ok := md.Value().(map[string]any); ok {
			out.Metadata = m
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path, resource string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.status.recordOffline("couldn't connect to the FloatAI backend")
		return nil, fmt.Errorf("%w: %v", errNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.status.recordDegraded(fmt.Sprintf("%s returned status %d", resource, resp.StatusCode))
		return nil, fmt.Errorf("fetch %s: status %d", resource, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) recordSuccess(resource string, nonempty bool) {
	metrics.FetchTotal.WithLabelValues(resource, "ok").Inc()
	if nonempty {
		c.status.recordOperational()
	} else {
		c.status.recordDegraded(resource + " query succeeded but returned no data")
	}
}

// fallback logs the failure, counts it, and hands back the resource's fixed
// payload so the UI always has renderable data.
func fallback[T any](resource string, err error, value T) T {
	log.Printf("warning: %s fetch failed, serving fallback data: %v", resource, err)
	metrics.FetchTotal.WithLabelValues(resource, "fallback").Inc()
	metrics.FallbackTotal.WithLabelValues(resource).Inc()
	return value
}

func (c *Client) loadSnapshot() (*models.WelcomeSnapshot, bool) {
	raw, ok := c.snapshots.Get(welcomeSnapshotKey)
	if !ok {
		return nil, false
	}
	var snap models.WelcomeSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Printf("warning: discarding unreadable welcome snapshot: %v", err)
		return nil, false
	}
	return &snap, true
}

// saveSnapshot persists the last-known-good welcome result. Best-effort:
// failures are logged, never propagated.
func (c *Client) saveSnapshot(resp *models.AskResponse) {
	snap := models.WelcomeSnapshot{Data: resp.Rows}
	if resp.SQLQuery != nil {
		snap.SQLQuery = *resp.SQLQuery
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		log.Printf("warning: encode welcome snapshot: %v", err)
		return
	}
	if err := c.snapshots.Set(welcomeSnapshotKey, string(raw)); err != nil {
		log.Printf("warning: persist welcome snapshot: %v", err)
	}
}

func catalogQuery(filters models.FloatFilters) string {
	q := url.Values{}
	if len(filters.FloatIDs) > 0 {
		q.Set("float_ids", strings.Join(filters.FloatIDs, ","))
	}
	if len(filters.Status) > 0 {
		q.Set("status", strings.Join(filters.Status, ","))
	}
	if filters.Start != nil {
		q.Set("start", filters.Start.Format(time.RFC3339))
	}
	if filters.End != nil {
		q.Set("end", filters.End.Format(time.RFC3339))
	}
	if filters.Parameter != "" {
		q.Set("parameter", filters.Parameter)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
