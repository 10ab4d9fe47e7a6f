package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/YashwanthKamireddi/Float-Deck/internal/models"
)

// newTestClient points a client at url with a zero-delay retry policy so
// welcome tests run instantly.
func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c := New(url)
	c.SetBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} })
	return c
}

// deadServer returns a base URL that refuses connections.
func deadServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestQuadraticBackOffSequence(t *testing.T) {
	b := NewQuadraticBackOff()
	want := []time.Duration{400 * time.Millisecond, 1600 * time.Millisecond, 3600 * time.Millisecond}
	for i, w := range want {
		if got := b.NextBackOff(); got != w {
			t.Errorf("delay %d = %v, want %v", i+1, got, w)
		}
	}
	b.Reset()
	if got := b.NextBackOff(); got != 400*time.Millisecond {
		t.Errorf("delay after Reset = %v, want 400ms", got)
	}
}

func TestCatalogFallbackOnNetworkFailure(t *testing.T) {
	c := newTestClient(t, deadServer(t))

	floats := c.FloatCatalog(context.Background(), models.FloatFilters{})
	if len(floats) != 6 {
		t.Fatalf("fallback fleet has %d floats, want 6", len(floats))
	}
	var seed *models.Float
	for i := range floats {
		if floats[i].ID == "5905612" {
			seed = &floats[i]
		}
	}
	if seed == nil {
		t.Fatal("fallback fleet missing float 5905612")
	}
	if seed.Lat != -33.5 || seed.Lon != 151.3 || seed.Status != models.StatusActive {
		t.Errorf("float 5905612 = (%v, %v) %s, want (-33.5, 151.3) active", seed.Lat, seed.Lon, seed.Status)
	}

	if status, _ := c.Status(); status != StatusOffline {
		t.Errorf("status after network failure = %s, want offline", status)
	}
}

func TestProfileFallbackShape(t *testing.T) {
	c := newTestClient(t, deadServer(t))

	p := c.Profile(context.Background(), "5905612", "temperature")
	wantDepth := []float64{0, 200, 500, 1000}
	wantValues := []float64{20.2, 15.1, 8.3, 4.2}
	if len(p.Depth) != len(wantDepth) {
		t.Fatalf("depth axis has %d entries, want %d", len(p.Depth), len(wantDepth))
	}
	for i := range wantDepth {
		if p.Depth[i] != wantDepth[i] {
			t.Errorf("depth[%d] = %v, want %v", i, p.Depth[i], wantDepth[i])
		}
		if p.Values[i] == nil || *p.Values[i] != wantValues[i] {
			t.Errorf("values[%d] = %v, want %v", i, p.Values[i], wantValues[i])
		}
	}
	if p.QualityFlags == nil {
		t.Error("quality flags nil, want empty slice")
	}
}

func TestFallbacksOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	if stats := c.FleetStats(context.Background()); stats.TotalFloats != 6 {
		t.Errorf("fallback stats total = %d, want 6", stats.TotalFloats)
	}
	if points := c.Trajectory(context.Background(), "5905612", 50); len(points) != 5 {
		t.Errorf("fallback trajectory has %d points, want 5", len(points))
	}
	if report := c.QualityReport(context.Background(), "5905612"); len(report) != 3 {
		t.Errorf("fallback quality has %d metrics, want 3", len(report))
	}
	if status, _ := c.Status(); status != StatusDegraded {
		t.Errorf("status after 500s = %s, want degraded", status)
	}
}

func TestFallbackOnBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	series := c.TimeSeries(context.Background(), "5905612", "salinity")
	if len(series.Data) != 6 {
		t.Errorf("fallback series has %d points, want 6", len(series.Data))
	}
	if status, _ := c.Status(); status != StatusDegraded {
		t.Errorf("status after parse failure = %s, want degraded", status)
	}
}

func TestAskFallbackOnBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	resp := c.Ask(context.Background(), "average temperature")
	if resp.Error == nil {
		t.Fatal("fallback ask response has no error message")
	}
	if status, _ := c.Status(); status != StatusDegraded {
		t.Errorf("status after ask parse failure = %s, want degraded", status)
	}
}

func TestLiveFetchSendsAPIKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		json.NewEncoder(w).Encode(models.FleetStats{TotalFloats: 42})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.SetAPIKey("secret")
	stats := c.FleetStats(context.Background())
	if stats.TotalFloats != 42 {
		t.Errorf("live stats total = %d, want 42", stats.TotalFloats)
	}
	if gotKey != "secret" {
		t.Errorf("x-api-key = %q, want secret", gotKey)
	}
	if status, _ := c.Status(); status != StatusOperational {
		t.Errorf("status after live fetch = %s, want operational", status)
	}
}

func TestEmptySuccessDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	floats := c.FloatCatalog(context.Background(), models.FloatFilters{})
	if len(floats) != 0 {
		t.Errorf("live empty catalog returned %d floats", len(floats))
	}
	if status, _ := c.Status(); status != StatusDegraded {
		t.Errorf("status after empty result = %s, want degraded", status)
	}
}

func TestWelcomeLoadRetriesThenSucceeds(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"sql_query":"SELECT 1","result_data":[{"float_id":"5905612","temperature":20.5}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got := c.WelcomeLoad(context.Background())

	if attempts.Load() != 3 {
		t.Errorf("server saw %d attempts, want exactly 3", attempts.Load())
	}
	if got.Source != SourceLive {
		t.Errorf("source = %s, want live", got.Source)
	}
	if len(got.Rows) != 1 || got.SQLQuery != "SELECT 1" {
		t.Errorf("result = %+v, want 1 row and SELECT 1", got)
	}

	// A successful welcome persists the snapshot.
	if _, ok := c.loadSnapshot(); !ok {
		t.Error("welcome snapshot not persisted after success")
	}
}

func TestWelcomeLoadGivesUpAfterThreeAttempts(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got := c.WelcomeLoad(context.Background())
	if attempts.Load() != 3 {
		t.Errorf("server saw %d attempts, want exactly 3", attempts.Load())
	}
	if got.Source != SourceOffline {
		t.Errorf("source = %s, want offline", got.Source)
	}
	if got.Rows == nil || len(got.Rows) != 0 {
		t.Errorf("rows = %v, want empty non-nil slice", got.Rows)
	}
}

func TestWelcomeLoadServesCachedSnapshot(t *testing.T) {
	c := newTestClient(t, deadServer(t))
	snap, _ := json.Marshal(models.WelcomeSnapshot{
		Data:     []models.ResultRow{{"float_id": "5905612"}},
		SQLQuery: "SELECT cached",
	})
	if err := c.snapshots.Set(welcomeSnapshotKey, string(snap)); err != nil {
		t.Fatal(err)
	}

	got := c.WelcomeLoad(context.Background())
	if got.Source != SourceCache {
		t.Errorf("source = %s, want cache", got.Source)
	}
	if len(got.Rows) != 1 || got.SQLQuery != "SELECT cached" {
		t.Errorf("cached result = %+v", got)
	}
}

func TestWelcomeLoadRejectsInvalidShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"error field set", `{"sql_query":"SELECT 1","result_data":[],"error":"model refused"}`},
		{"missing sql_query", `{"result_data":[{"a":1}]}`},
		{"string result_data", `{"sql_query":"SELECT 1","result_data":"42 rows"}`},
		{"null result_data", `{"sql_query":"SELECT 1","result_data":null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			got := c.WelcomeLoad(context.Background())
			if got.Source != SourceOffline {
				t.Errorf("source = %s, want offline for structurally invalid response", got.Source)
			}
		})
	}
}

func TestParseAskResponse(t *testing.T) {
	t.Run("array result", func(t *testing.T) {
		resp, err := parseAskResponse([]byte(`{
			"sql_query": "SELECT * FROM argo_profiles",
			"result_data": [{"float_id": "5905612", "temperature": 20.5}],
			"messages": [{"role": "assistant", "content": "done", "type": "text"}],
			"metadata": {"row_count": 1}
		}`))
		if err != nil {
			t.Fatal(err)
		}
		if resp.SQLQuery == nil || *resp.SQLQuery != "SELECT * FROM argo_profiles" {
			t.Errorf("sql_query = %v", resp.SQLQuery)
		}
		if len(resp.Rows) != 1 || resp.Rows[0]["float_id"] != "5905612" {
			t.Errorf("rows = %v", resp.Rows)
		}
		if len(resp.Messages) != 1 || resp.Messages[0].Content != "done" {
			t.Errorf("messages = %v", resp.Messages)
		}
		if resp.Metadata["row_count"] != float64(1) {
			t.Errorf("metadata = %v", resp.Metadata)
		}
	})

	t.Run("string result", func(t *testing.T) {
		resp, err := parseAskResponse([]byte(`{"result_data": "The average is 15.2"}`))
		if err != nil {
			t.Fatal(err)
		}
		if resp.Rows != nil {
			t.Errorf("rows = %v, want nil", resp.Rows)
		}
		if resp.Text != "The average is 15.2" {
			t.Errorf("text = %q", resp.Text)
		}
	})

	t.Run("null result keeps rows nil", func(t *testing.T) {
		resp, err := parseAskResponse([]byte(`{"result_data": null, "error": "no data"}`))
		if err != nil {
			t.Fatal(err)
		}
		if resp.Rows != nil {
			t.Errorf("rows = %v, want nil", resp.Rows)
		}
		if resp.Error == nil || *resp.Error != "no data" {
			t.Errorf("error = %v", resp.Error)
		}
	})

	t.Run("not json", func(t *testing.T) {
		if _, err := parseAskResponse([]byte("nope")); err == nil {
			t.Error("want error for invalid JSON")
		}
	})

	t.Run("not an object", func(t *testing.T) {
		if _, err := parseAskResponse([]byte("[1,2,3]")); err == nil {
			t.Error("want error for non-object JSON")
		}
	})
}

func TestAskFallbackCarriesErrorMessage(t *testing.T) {
	c := newTestClient(t, deadServer(t))
	resp := c.Ask(context.Background(), "average temperature?")
	if resp.Error == nil {
		t.Fatal("fallback ask response has no error message")
	}
	if len(resp.Messages) != 1 || resp.Messages[0].Type != "error" {
		t.Errorf("fallback messages = %v, want one error message", resp.Messages)
	}
}

func TestStatusTrackerTransitions(t *testing.T) {
	tr := NewStatusTracker()
	if s, _ := tr.Status(); s != StatusOperational {
		t.Errorf("initial status = %s, want operational", s)
	}

	tr.recordDegraded("partial")
	if s, detail := tr.Status(); s != StatusDegraded || detail != "partial" {
		t.Errorf("after degrade: %s %q", s, detail)
	}

	tr.recordOffline("gone")
	tr.recordDegraded("should not override offline")
	if s, detail := tr.Status(); s != StatusOffline || detail != "gone" {
		t.Errorf("offline not sticky: %s %q", s, detail)
	}

	tr.recordOperational()
	if s, _ := tr.Status(); s != StatusOperational {
		t.Errorf("success did not restore operational: %s", s)
	}
}

func TestMemorySnapshotStore(t *testing.T) {
	s := NewMemorySnapshotStore()
	if _, ok := s.Get("k"); ok {
		t.Error("empty store reported a value")
	}
	if err := s.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	if v, ok := s.Get("k"); !ok || v != "v" {
		t.Errorf("Get = %q, %v", v, ok)
	}
	if err := s.Clear("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get("k"); ok {
		t.Error("value survived Clear")
	}
}
