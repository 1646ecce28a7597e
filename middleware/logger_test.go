package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"radio-artwork-go/logcolors"
	"radio-artwork-go/stats"
)

func TestGetStatusColor(t *testing.T) {
	tests := []struct {
		statusCode int
		expected   string
	}{
		{http.StatusOK, logcolors.Green},
		{http.StatusNoContent, logcolors.Green},
		{http.StatusFound, logcolors.Cyan},
		{http.StatusNotFound, logcolors.Yellow},
		{http.StatusUnprocessableEntity, logcolors.Yellow},
		{http.StatusTooManyRequests, logcolors.Yellow},
		{http.StatusInternalServerError, logcolors.Red},
		{http.StatusBadGateway, logcolors.Red},
		{100, logcolors.Reset},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.statusCode), func(t *testing.T) {
			if got := getStatusColor(tt.statusCode); got != tt.expected {
				t.Errorf("getStatusColor(%d) = %q, want %q", tt.statusCode, got, tt.expected)
			}
		})
	}
}

func TestResponseRecorder_DefaultStatusCode(t *testing.T) {
	rec := NewResponseRecorder(httptest.NewRecorder())

	if rec.StatusCode != http.StatusOK {
		t.Errorf("Expected default status %d, got %d", http.StatusOK, rec.StatusCode)
	}
	if rec.BodySize != 0 {
		t.Errorf("Expected empty body, got %d bytes", rec.BodySize)
	}
}

func TestResponseRecorder_FirstStatusWins(t *testing.T) {
	w := httptest.NewRecorder()
	rec := NewResponseRecorder(w)

	rec.WriteHeader(http.StatusNotFound)
	rec.WriteHeader(http.StatusInternalServerError)

	if rec.StatusCode != http.StatusNotFound {
		t.Errorf("Expected recorded status %d, got %d", http.StatusNotFound, rec.StatusCode)
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected underlying status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestResponseRecorder_WriteImpliesOK(t *testing.T) {
	w := httptest.NewRecorder()
	rec := NewResponseRecorder(w)

	rec.Write([]byte(`{"artwork_url":`))
	rec.Write([]byte(`"https://img.example.com/a.jpg"}`))
	rec.WriteHeader(http.StatusTeapot)

	if rec.StatusCode != http.StatusOK {
		t.Errorf("Expected status %d after body write, got %d", http.StatusOK, rec.StatusCode)
	}
	expected := len(`{"artwork_url":"https://img.example.com/a.jpg"}`)
	if rec.BodySize != expected {
		t.Errorf("Expected body size %d, got %d", expected, rec.BodySize)
	}
	if w.Body.Len() != expected {
		t.Errorf("Expected %d bytes passed through, got %d", expected, w.Body.Len())
	}
}

func TestResponseRecorder_Flush(t *testing.T) {
	w := httptest.NewRecorder()
	rec := NewResponseRecorder(w)

	var _ http.Flusher = rec
	rec.Flush()

	if !w.Flushed {
		t.Error("Expected Flush to reach the underlying writer")
	}
}

func TestLoggingMiddleware_RecordsStats(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		statusCode int
		counter    func(s *stats.Stats) int64
		class      func(s *stats.Stats) int64
	}{
		{
			name:       "artwork hit",
			path:       "/artwork",
			statusCode: http.StatusOK,
			counter:    func(s *stats.Stats) int64 { return s.ArtworkRequests.Load() },
			class:      func(s *stats.Stats) int64 { return s.Status2xx.Load() },
		},
		{
			name:       "artwork timeout",
			path:       "/artwork",
			statusCode: http.StatusNotFound,
			counter:    func(s *stats.Stats) int64 { return s.ArtworkRequests.Load() },
			class:      func(s *stats.Stats) int64 { return s.Status4xx.Load() },
		},
		{
			name:       "cache lookup",
			path:       "/cache/lookup",
			statusCode: http.StatusOK,
			counter:    func(s *stats.Stats) int64 { return s.CacheRequests.Load() },
			class:      func(s *stats.Stats) int64 { return s.Status2xx.Load() },
		},
		{
			name:       "health failure",
			path:       "/health",
			statusCode: http.StatusServiceUnavailable,
			counter:    func(s *stats.Stats) int64 { return s.HealthRequests.Load() },
			class:      func(s *stats.Stats) int64 { return s.Status5xx.Load() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stats.Get()
			totalBefore := s.TotalRequests.Load()
			counterBefore := tt.counter(s)
			classBefore := tt.class(s)

			handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))

			if w.Code != tt.statusCode {
				t.Errorf("Expected status %d, got %d", tt.statusCode, w.Code)
			}
			if got := s.TotalRequests.Load() - totalBefore; got < 1 {
				t.Errorf("Expected total requests to grow, delta %d", got)
			}
			if got := tt.counter(s) - counterBefore; got < 1 {
				t.Errorf("Expected endpoint counter to grow, delta %d", got)
			}
			if got := tt.class(s) - classBefore; got < 1 {
				t.Errorf("Expected status class counter to grow, delta %d", got)
			}
		})
	}
}

func TestLoggingMiddleware_LongPollTiming(t *testing.T) {
	s := stats.Get()

	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.Write([]byte("{}"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/artwork", nil))

	if got := s.MaxResponseTime(); got < 20*time.Millisecond {
		t.Errorf("Expected max response time of at least 20ms, got %v", got)
	}
}
