package middleware

import (
	"net/http"
	"time"

	"radio-artwork-go/logcolors"
	"radio-artwork-go/stats"

	log "github.com/sirupsen/logrus"
)

// ResponseRecorder wraps http.ResponseWriter to capture the status code and body size
type ResponseRecorder struct {
	http.ResponseWriter
	StatusCode  int
	BodySize    int
	wroteHeader bool
}

// NewResponseRecorder creates a recorder defaulting to 200 OK
func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, StatusCode: http.StatusOK}
}

func (r *ResponseRecorder) WriteHeader(statusCode int) {
	if !r.wroteHeader {
		r.StatusCode = statusCode
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *ResponseRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	n, err := r.ResponseWriter.Write(b)
	r.BodySize += n
	return n, err
}

// Flush passes through so long-polling handlers can flush
func (r *ResponseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func getStatusColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return logcolors.Green
	case statusCode >= 300 && statusCode < 400:
		return logcolors.Cyan
	case statusCode >= 400 && statusCode < 500:
		return logcolors.Yellow
	case statusCode >= 500:
		return logcolors.Red
	default:
		return logcolors.Reset
	}
}

// LoggingMiddleware logs every request and records its status and latency in stats
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := NewResponseRecorder(w)

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		s := stats.Get()
		s.RecordRequest(r.URL.Path)
		s.RecordStatusCode(rec.StatusCode)
		s.RecordResponseTime(duration, r.URL.Path)

		color := getStatusColor(rec.StatusCode)
		log.Infof("%s %s %s %s%d%s %dB %v", logcolors.LogHTTP, r.Method, r.URL.Path,
			color, rec.StatusCode, logcolors.Reset, rec.BodySize, duration)
	})
}
