// Package testserver provides a fake SeatGeek API for E2E tests.
package testserver

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Server wraps httptest.Server with request recording and failure
// injection.
type Server struct {
	*httptest.Server
	mu       sync.Mutex
	requests []*RecordedRequest
	failures map[string]int
}

// RecordedRequest stores request details for verification.
type RecordedRequest struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Time    time.Time
}

// New serves catalogue at /events, /events/{id}, /venues and
// /venues/{id}.
func New(catalogue *Catalogue) *Server {
	s := &Server{
		requests: make([]*RecordedRequest, 0),
		failures: make(map[string]int),
	}

	routes := map[string]http.HandlerFunc{
		"/events":  listHandler("events", catalogue.Events),
		"/events/": detailHandler("/events/", catalogue.Events),
		"/venues":  listHandler("venues", catalogue.Venues),
		"/venues/": detailHandler("/venues/", catalogue.Venues),
	}

	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, s.recordingWrapper(handler))
	}

	s.Server = httptest.NewServer(mux)
	return s
}

// recordingWrapper records the request and applies injected failures.
func (s *Server) recordingWrapper(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, &RecordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.Query(),
			Headers: r.Header.Clone(),
			Time:    time.Now(),
		})
		fail := s.failures[r.URL.Path] > 0
		if fail {
			s.failures[r.URL.Path]--
		}
		s.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		h(w, r)
	}
}

// FailNext makes the next n requests for path answer 503.
func (s *Server) FailNext(path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = n
}

// LastRequest returns the last recorded request.
func (s *Server) LastRequest() *RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

// Requests returns all recorded requests.
func (s *Server) Requests() []*RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*RecordedRequest, len(s.requests))
	copy(result, s.requests)
	return result
}

// RequestCount returns the number of recorded requests.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// PagesRequested returns the page parameters sent to a listing path, in
// order.
func (s *Server) PagesRequested(path string) []int {
	var pages []int
	for _, r := range s.Requests() {
		if r.Path != path || r.Query.Get("page") == "" {
			continue
		}
		page, _ := strconv.Atoi(r.Query.Get("page"))
		pages = append(pages, page)
	}
	return pages
}

// ClearRequests clears recorded requests.
func (s *Server) ClearRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = s.requests[:0]
}
