package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "radio_artwork"

// Collector exposes a Stats instance as Prometheus metrics.
// Values are read from the atomic counters at scrape time.
type Collector struct {
	stats *Stats

	requests        *prometheus.Desc
	rejections      *prometheus.Desc
	cacheLookups    *prometheus.Desc
	joins           *prometheus.Desc
	dispatched      *prometheus.Desc
	resolved        *prometheus.Desc
	empty           *prometheus.Desc
	notifications   *prometheus.Desc
	skippedWaiters  *prometheus.Desc
	panics          *prometheus.Desc
	rateLimit       *prometheus.Desc
	responses       *prometheus.Desc
	avgResponseTime *prometheus.Desc
	uptime          *prometheus.Desc
}

// NewCollector creates a Collector reading from s
func NewCollector(s *Stats) *Collector {
	return &Collector{
		stats: s,
		requests: prometheus.NewDesc(prometheus.BuildFQName(namespace, "http", "requests_total"),
			"HTTP requests by endpoint.", []string{"endpoint"}, nil),
		rejections: prometheus.NewDesc(prometheus.BuildFQName(namespace, "resolver", "rejected_total"),
			"Artwork requests dropped before reaching the cache.", []string{"reason"}, nil),
		cacheLookups: prometheus.NewDesc(prometheus.BuildFQName(namespace, "cache", "lookups_total"),
			"Cache lookups by result.", []string{"result"}, nil),
		joins: prometheus.NewDesc(prometheus.BuildFQName(namespace, "resolver", "joins_total"),
			"Requests attached to a lookup already in flight.", nil, nil),
		dispatched: prometheus.NewDesc(prometheus.BuildFQName(namespace, "lookup", "dispatched_total"),
			"Outbound artwork lookups started.", nil, nil),
		resolved: prometheus.NewDesc(prometheus.BuildFQName(namespace, "lookup", "resolved_total"),
			"Outbound artwork lookups that produced a URL.", nil, nil),
		empty: prometheus.NewDesc(prometheus.BuildFQName(namespace, "lookup", "empty_total"),
			"Outbound artwork lookups that produced nothing, by reason.", []string{"reason"}, nil),
		notifications: prometheus.NewDesc(prometheus.BuildFQName(namespace, "resolver", "notifications_total"),
			"Results delivered to waiters.", nil, nil),
		skippedWaiters: prometheus.NewDesc(prometheus.BuildFQName(namespace, "resolver", "skipped_waiters_total"),
			"Waiters that were no longer valid when their result arrived.", nil, nil),
		panics: prometheus.NewDesc(prometheus.BuildFQName(namespace, "resolver", "panics_total"),
			"Recovered panics in lookups or waiter callbacks.", nil, nil),
		rateLimit: prometheus.NewDesc(prometheus.BuildFQName(namespace, "ratelimit", "requests_total"),
			"Inbound requests by rate limit tier.", []string{"tier"}, nil),
		responses: prometheus.NewDesc(prometheus.BuildFQName(namespace, "http", "responses_total"),
			"HTTP responses by status class.", []string{"class"}, nil),
		avgResponseTime: prometheus.NewDesc(prometheus.BuildFQName(namespace, "http", "response_time_avg_seconds"),
			"Average HTTP response time.", nil, nil),
		uptime: prometheus.NewDesc(prometheus.BuildFQName(namespace, "server", "uptime_seconds"),
			"Seconds since the server started.", nil, nil),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.rejections
	ch <- c.cacheLookups
	ch <- c.joins
	ch <- c.dispatched
	ch <- c.resolved
	ch <- c.empty
	ch <- c.notifications
	ch <- c.skippedWaiters
	ch <- c.panics
	ch <- c.rateLimit
	ch <- c.responses
	ch <- c.avgResponseTime
	ch <- c.uptime
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats

	counter := func(desc *prometheus.Desc, v int64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), labels...)
	}

	counter(c.requests, s.ArtworkRequests.Load(), "artwork")
	counter(c.requests, s.CacheRequests.Load(), "cache")
	counter(c.requests, s.StatsRequests.Load(), "stats")
	counter(c.requests, s.HealthRequests.Load(), "health")
	counter(c.requests, s.OtherRequests.Load(), "other")

	counter(c.rejections, s.RejectedInvalidWaiter.Load(), RejectInvalidWaiter)
	counter(c.rejections, s.RejectedIneligible.Load(), RejectIneligible)
	counter(c.rejections, s.RejectedNotParseable.Load(), RejectNotParseable)

	counter(c.cacheLookups, s.CacheHits.Load(), "hit")
	counter(c.cacheLookups, s.CacheMisses.Load(), "miss")

	counter(c.joins, s.Joins.Load())
	counter(c.dispatched, s.LookupsDispatched.Load())
	counter(c.resolved, s.LookupsResolved.Load())
	for reason, v := range s.EmptyReasons() {
		counter(c.empty, v, reason)
	}
	counter(c.notifications, s.Notifications.Load())
	counter(c.skippedWaiters, s.SkippedWaiters.Load())
	counter(c.panics, s.Panics.Load())

	counter(c.rateLimit, s.RateLimitNormal.Load(), "normal")
	counter(c.rateLimit, s.RateLimitCached.Load(), "cached")
	counter(c.rateLimit, s.RateLimitExceeded.Load(), "exceeded")

	counter(c.responses, s.Status2xx.Load(), "2xx")
	counter(c.responses, s.Status4xx.Load(), "4xx")
	counter(c.responses, s.Status5xx.Load(), "5xx")

	ch <- prometheus.MustNewConstMetric(c.avgResponseTime, prometheus.GaugeValue, s.AvgResponseTime().Seconds())
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, s.Uptime().Seconds())
}

// Register adds a collector for s to reg
func Register(reg prometheus.Registerer, s *Stats) error {
	return reg.Register(NewCollector(s))
}
