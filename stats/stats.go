package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

// Rejection reasons for requests that never reach the cache
const (
	RejectInvalidWaiter = "invalid_waiter"
	RejectIneligible    = "ineligible"
	RejectNotParseable  = "not_parseable"
)

const maxInt64 = int64(^uint64(0) >> 1)

// Stats holds all server statistics with atomic counters
type Stats struct {
	// Server info
	StartTime time.Time

	// Request counters
	TotalRequests   atomic.Int64
	ArtworkRequests atomic.Int64
	CacheRequests   atomic.Int64
	StatsRequests   atomic.Int64
	HealthRequests  atomic.Int64
	OtherRequests   atomic.Int64

	// Resolver outcomes
	ResolverRequests      atomic.Int64
	RejectedInvalidWaiter atomic.Int64
	RejectedIneligible    atomic.Int64
	RejectedNotParseable  atomic.Int64
	CacheHits             atomic.Int64
	CacheMisses           atomic.Int64
	Joins                 atomic.Int64 // Requests attached to an in-flight lookup
	LookupsDispatched     atomic.Int64
	LookupsResolved       atomic.Int64 // Lookups that produced a URL
	LookupsEmpty          atomic.Int64
	Notifications         atomic.Int64
	SkippedWaiters        atomic.Int64 // Waiters invalid by the time their result arrived
	Panics                atomic.Int64

	emptyReasons sync.Map // reason -> *atomic.Int64

	// Rate limiting
	RateLimitNormal   atomic.Int64 // Requests served under normal rate limit
	RateLimitCached   atomic.Int64 // Requests served under cached-only tier
	RateLimitExceeded atomic.Int64 // Requests rejected (429)

	// Response status codes
	Status2xx atomic.Int64
	Status4xx atomic.Int64
	Status5xx atomic.Int64

	// Response time tracking (in microseconds for precision)
	totalResponseTime atomic.Int64
	responseCount     atomic.Int64
	minResponseTime   atomic.Int64
	maxResponseTime   atomic.Int64

	// Artwork endpoint response times (microseconds)
	artworkResponseTime  atomic.Int64
	artworkResponseCount atomic.Int64
}

// Global stats instance
var global = New()

// New returns an empty Stats starting now
func New() *Stats {
	s := &Stats{StartTime: time.Now()}
	s.minResponseTime.Store(maxInt64)
	return s
}

// Get returns the global stats instance
func Get() *Stats {
	return global
}

// RecordRequest records a request to a specific endpoint
func (s *Stats) RecordRequest(endpoint string) {
	s.TotalRequests.Add(1)
	switch endpoint {
	case "/artwork":
		s.ArtworkRequests.Add(1)
	case "/cache", "/cache/lookup":
		s.CacheRequests.Add(1)
	case "/stats":
		s.StatsRequests.Add(1)
	case "/health":
		s.HealthRequests.Add(1)
	default:
		s.OtherRequests.Add(1)
	}
}

// RecordResolverRequest counts a call into the resolver
func (s *Stats) RecordResolverRequest() {
	s.ResolverRequests.Add(1)
}

// RecordRejection records a request dropped before reaching the cache
func (s *Stats) RecordRejection(reason string) {
	switch reason {
	case RejectInvalidWaiter:
		s.RejectedInvalidWaiter.Add(1)
	case RejectIneligible:
		s.RejectedIneligible.Add(1)
	case RejectNotParseable:
		s.RejectedNotParseable.Add(1)
	}
}

// RecordCacheHit records a cache hit
func (s *Stats) RecordCacheHit() {
	s.CacheHits.Add(1)
}

// RecordCacheMiss records a cache miss
func (s *Stats) RecordCacheMiss() {
	s.CacheMisses.Add(1)
}

// RecordJoin records a waiter attached to a lookup already in flight
func (s *Stats) RecordJoin() {
	s.Joins.Add(1)
}

// RecordDispatch records a new outbound lookup
func (s *Stats) RecordDispatch() {
	s.LookupsDispatched.Add(1)
}

// RecordResolved records a lookup that produced an artwork URL
func (s *Stats) RecordResolved() {
	s.LookupsResolved.Add(1)
}

// RecordEmpty records a lookup that resolved without artwork, keyed by failure reason
func (s *Stats) RecordEmpty(reason string) {
	s.LookupsEmpty.Add(1)
	s.emptyCounter(reason).Add(1)
}

func (s *Stats) emptyCounter(reason string) *atomic.Int64 {
	counter, _ := s.emptyReasons.LoadOrStore(reason, &atomic.Int64{})
	return counter.(*atomic.Int64)
}

// EmptyReasons returns a copy of the per-reason empty lookup counts
func (s *Stats) EmptyReasons() map[string]int64 {
	out := make(map[string]int64)
	s.emptyReasons.Range(func(key, value any) bool {
		out[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})
	return out
}

// RecordNotification records a result delivered to a waiter
func (s *Stats) RecordNotification() {
	s.Notifications.Add(1)
}

// RecordSkippedWaiter records a waiter that went away before its result arrived
func (s *Stats) RecordSkippedWaiter() {
	s.SkippedWaiters.Add(1)
}

// RecordPanic records a recovered panic in a lookup or a waiter callback
func (s *Stats) RecordPanic() {
	s.Panics.Add(1)
}

// RecordRateLimit records rate limit tier usage
func (s *Stats) RecordRateLimit(tier string) {
	switch tier {
	case "normal":
		s.RateLimitNormal.Add(1)
	case "cached":
		s.RateLimitCached.Add(1)
	case "exceeded":
		s.RateLimitExceeded.Add(1)
	}
}

// RecordStatusCode records a response status code
func (s *Stats) RecordStatusCode(code int) {
	switch {
	case code >= 200 && code < 300:
		s.Status2xx.Add(1)
	case code >= 400 && code < 500:
		s.Status4xx.Add(1)
	case code >= 500:
		s.Status5xx.Add(1)
	}
}

// RecordResponseTime records a response time
func (s *Stats) RecordResponseTime(duration time.Duration, endpoint string) {
	us := duration.Microseconds()

	s.totalResponseTime.Add(us)
	s.responseCount.Add(1)

	// Update min/max atomically
	for {
		current := s.minResponseTime.Load()
		if us >= current || s.minResponseTime.CompareAndSwap(current, us) {
			break
		}
	}
	for {
		current := s.maxResponseTime.Load()
		if us <= current || s.maxResponseTime.CompareAndSwap(current, us) {
			break
		}
	}

	if endpoint == "/artwork" {
		s.artworkResponseTime.Add(us)
		s.artworkResponseCount.Add(1)
	}
}

// Uptime returns the server uptime
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// CacheHitRate returns the cache hit rate as a percentage
func (s *Stats) CacheHitRate() float64 {
	hits := s.CacheHits.Load()
	misses := s.CacheMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// AvgResponseTime returns the average response time
func (s *Stats) AvgResponseTime() time.Duration {
	count := s.responseCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(s.totalResponseTime.Load()/count) * time.Microsecond
}

// MinResponseTime returns the minimum response time
func (s *Stats) MinResponseTime() time.Duration {
	min := s.minResponseTime.Load()
	if min == maxInt64 {
		return 0
	}
	return time.Duration(min) * time.Microsecond
}

// MaxResponseTime returns the maximum response time
func (s *Stats) MaxResponseTime() time.Duration {
	return time.Duration(s.maxResponseTime.Load()) * time.Microsecond
}

// AvgArtworkResponseTime returns the average response time for artwork requests
func (s *Stats) AvgArtworkResponseTime() time.Duration {
	count := s.artworkResponseCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(s.artworkResponseTime.Load()/count) * time.Microsecond
}

// Snapshot returns a point-in-time snapshot of all stats
func (s *Stats) Snapshot() map[string]interface{} {
	uptime := s.Uptime()

	emptyByReason := make(map[string]interface{})
	for reason, count := range s.EmptyReasons() {
		emptyByReason[reason] = count
	}

	return map[string]interface{}{
		"server": map[string]interface{}{
			"start_time":     s.StartTime.Format(time.RFC3339),
			"uptime":         uptime.String(),
			"uptime_seconds": int64(uptime.Seconds()),
		},
		"requests": map[string]interface{}{
			"total":   s.TotalRequests.Load(),
			"artwork": s.ArtworkRequests.Load(),
			"cache":   s.CacheRequests.Load(),
			"stats":   s.StatsRequests.Load(),
			"health":  s.HealthRequests.Load(),
			"other":   s.OtherRequests.Load(),
		},
		"resolver": map[string]interface{}{
			"requests": s.ResolverRequests.Load(),
			"rejected": map[string]interface{}{
				RejectInvalidWaiter: s.RejectedInvalidWaiter.Load(),
				RejectIneligible:    s.RejectedIneligible.Load(),
				RejectNotParseable:  s.RejectedNotParseable.Load(),
			},
			"joins":           s.Joins.Load(),
			"dispatched":      s.LookupsDispatched.Load(),
			"resolved":        s.LookupsResolved.Load(),
			"empty":           s.LookupsEmpty.Load(),
			"empty_by_reason": emptyByReason,
			"notifications":   s.Notifications.Load(),
			"skipped_waiters": s.SkippedWaiters.Load(),
			"panics":          s.Panics.Load(),
		},
		"cache": map[string]interface{}{
			"hits":     s.CacheHits.Load(),
			"misses":   s.CacheMisses.Load(),
			"hit_rate": s.CacheHitRate(),
		},
		"rate_limiting": map[string]interface{}{
			"normal_tier": s.RateLimitNormal.Load(),
			"cached_tier": s.RateLimitCached.Load(),
			"exceeded":    s.RateLimitExceeded.Load(),
		},
		"responses": map[string]interface{}{
			"2xx": s.Status2xx.Load(),
			"4xx": s.Status4xx.Load(),
			"5xx": s.Status5xx.Load(),
		},
		"response_times": map[string]interface{}{
			"avg":         s.AvgResponseTime().String(),
			"min":         s.MinResponseTime().String(),
			"max":         s.MaxResponseTime().String(),
			"avg_artwork": s.AvgArtworkResponseTime().String(),
		},
	}
}
