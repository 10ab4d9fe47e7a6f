// Package api serves the FloatAI dashboard HTTP endpoints from the profile
// store, falling back to fixed sample payloads whenever the store cannot
// answer, so the endpoints degrade the same way the fetch client expects.
package api

import (
	"context"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/YashwanthKamireddi/Float-Deck/internal/httputil"
	"github.com/YashwanthKamireddi/Float-Deck/internal/metrics"
	"github.com/YashwanthKamireddi/Float-Deck/internal/store"
)

const rateLimitWindow = time.Minute

type Server struct {
	store       *store.Store
	port        string
	apiKey      string
	rateLimit   int
	upstreamAsk string
	httpClient  *http.Client

	rateMu    sync.Mutex
	rateCache map[string][]time.Time
	now       func() time.Time
}

func NewServer(st *store.Store, port string) *Server {
	return &Server{
		store:      st,
		port:       port,
		rateLimit:  60,
		httpClient: httputil.NewClient(),
		rateCache:  make(map[string][]time.Time),
		now:        time.Now,
	}
}

// SetAPIKey enables shared-key auth on all /api routes.
func (s *Server) SetAPIKey(key string) {
	s.apiKey = key
}

// SetRateLimit overrides the per-IP requests-per-minute cap.
func (s *Server) SetRateLimit(limit int) {
	if limit > 0 {
		s.rateLimit = limit
	}
}

// SetUpstreamAsk configures the external AI service /api/ask is proxied to.
// Without it the handler reports the service as unconfigured.
func (s *Server) SetUpstreamAsk(baseURL string) {
	s.upstreamAsk = strings.TrimRight(baseURL, "/")
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ask", s.guard(s.handleAsk))
	mux.HandleFunc("/api/health", s.guard(s.handleHealth))
	mux.HandleFunc("/api/stats", s.guard(s.handleStats))
	mux.HandleFunc("/api/floats", s.guard(s.handleFloats))
	mux.HandleFunc("/api/floats/", s.guard(s.handleFloatSubresource))
	mux.Handle("/metrics", promhttp.Handler())
	return s.logRequests(mux)
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// guard applies shared-key auth and the per-IP rate limit ahead of a handler.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("x-api-key") != s.apiKey {
			writeDetail(w, http.StatusUnauthorized, "Invalid or missing API key.")
			return
		}
		if !s.allow(clientIP(r)) {
			writeDetail(w, http.StatusTooManyRequests, "Rate limit exceeded. Try again shortly.")
			return
		}
		next(w, r)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		duration := time.Since(start)
		metrics.APIRequestDuration.WithLabelValues(r.URL.Path).Observe(duration.Seconds())
		log.Printf("HTTP %s %s completed in %s", r.Method, r.URL.Path, duration)
	})
}

// allow implements a per-IP sliding window over the last minute.
func (s *Server) allow(key string) bool {
	now := s.now()
	windowStart := now.Add(-rateLimitWindow)

	s.rateMu.Lock()
	defer s.rateMu.Unlock()

	history := s.rateCache[key]
	kept := history[:0]
	for _, ts := range history {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= s.rateLimit {
		s.rateCache[key] = kept
		return false
	}
	s.rateCache[key] = append(kept, now)
	return true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
