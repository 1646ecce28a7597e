package main

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	cacheOnlyModeKey contextKey = "cacheOnlyMode"
	rateLimitTypeKey contextKey = "rateLimitType"
)

// ArtworkResponse is the success body of /artwork
type ArtworkResponse struct {
	ArtworkURL string `json:"artwork_url"`
	Key        string `json:"key"`
}

// CachePerformance contains resolver cache statistics
type CachePerformance struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Joins   int64   `json:"joins"`
	HitRate float64 `json:"hit_rate_percent"`
}

// CacheDumpResponse is the response format for /cache endpoint
type CacheDumpResponse struct {
	NumberOfKeys int               `json:"number_of_keys"`
	SizeInKB     int               `json:"size_kb"`
	Pending      int               `json:"pending_keys"`
	InFlight     int               `json:"in_flight_keys"`
	Performance  CachePerformance  `json:"performance"`
	Cache        map[string]string `json:"cache"`
}

// CacheLookupResponse is the response format for /cache/lookup
type CacheLookupResponse struct {
	Key        string `json:"key"`
	Cached     bool   `json:"cached"`
	ArtworkURL string `json:"artwork_url,omitempty"`
}

// httpWaiter is a waiter bound to one /artwork request.
// It stays valid while the request context is alive.
type httpWaiter struct {
	id     string
	ctx    context.Context
	result chan string
}

func newHTTPWaiter(ctx context.Context) *httpWaiter {
	return &httpWaiter{
		id:     uuid.New().String(),
		ctx:    ctx,
		result: make(chan string, 1),
	}
}

func (w *httpWaiter) Valid() bool {
	return w.ctx.Err() == nil
}

// deliver hands over a result without blocking; only the first one is kept
func (w *httpWaiter) deliver(artworkURL string) bool {
	select {
	case w.result <- artworkURL:
		return true
	default:
		return false
	}
}
