package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"radio-artwork-go/config"
	"radio-artwork-go/logcolors"
	"radio-artwork-go/middleware"
	"radio-artwork-go/services/artwork"
	"radio-artwork-go/services/providers"
	"radio-artwork-go/services/providers/discogs"
	"radio-artwork-go/stats"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

func setupLogging(level string) {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		log.Warnf("%s Unknown LOG_LEVEL %q, using info", logcolors.LogConfig, level)
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}

// registerProviders adds every artwork provider to the global registry
func registerProviders(cfg config.Config) {
	providers.Register(discogs.NewProvider(discogs.Config{
		BaseURL:   cfg.Configuration.DiscogsBaseURL,
		UserAgent: cfg.Configuration.DiscogsUserAgent,
		Timeout:   cfg.LookupTimeout(),
		Token:     config.DiscogsToken,
	}))
	log.Infof("%s Registered providers: %s", logcolors.LogServer, strings.Join(providers.List(), ", "))
}

// newResolver builds the resolver for the configured provider, delivering results to HTTP waiters
func newResolver(cfg config.Config) (*artwork.Resolver, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Configuration.ArtworkProvider))
	provider, err := providers.Get(name)
	if err != nil {
		return nil, fmt.Errorf("artwork provider %q: %w", name, err)
	}

	filter := artwork.NewFilter(cfg.Configuration.EligibleHosts)
	log.Infof("%s Using provider %s for hosts %v", logcolors.LogResolver, provider.Name(), filter.Hosts())

	return artwork.NewResolver(artwork.Config{
		Provider:   provider,
		OnResolved: deliverArtwork,
		Filter:     filter,
		Stats:      stats.Get(),
	})
}

// deliverArtwork is the resolver callback for waiters created by HTTP handlers
func deliverArtwork(w artwork.Waiter, artworkURL string) {
	hw, ok := w.(*httpWaiter)
	if !ok {
		log.Warnf("%s Unexpected waiter type %T", logcolors.LogWaiter, w)
		return
	}
	if hw.deliver(artworkURL) {
		log.Debugf("%s %s received %s", logcolors.LogWaiter, logcolors.Waiter(hw.id), artworkURL)
	}
}

// openStatsStore loads persisted counters and starts auto-save. It returns nil when persistence is disabled.
func openStatsStore(cfg config.Config) *stats.Store {
	path := strings.TrimSpace(cfg.Configuration.StatsDBPath)
	if path == "" {
		return nil
	}

	store, err := stats.NewStore(path, stats.Get())
	if err != nil {
		log.Warnf("%s Stats persistence disabled: %v", logcolors.LogStats, err)
		return nil
	}
	if err := store.Load(); err != nil {
		log.Warnf("%s %v", logcolors.LogStats, err)
	}
	store.StartAutoSave(cfg.StatsSaveInterval())
	return store
}

func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := stats.Register(reg, stats.Get()); err != nil {
		log.Warnf("%s Failed to register stats collector: %v", logcolors.LogStats, err)
	}
	return reg
}

func limitMiddleware(next http.Handler, limiter *middleware.IPRateLimiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A valid API key bypasses rate limits
		if middleware.IsAuthenticated(r.Context()) {
			w.Header().Set("X-RateLimit-Bypass", "true")
			ctx := context.WithValue(r.Context(), rateLimitTypeKey, "bypass")
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		ip := middleware.ClientIP(r)
		tier, limiters := limiter.Allow(ip)
		stats.Get().RecordRateLimit(string(tier))

		switch tier {
		case middleware.TierNormal:
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.GetNormalLimit()))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", limiters.GetNormalTokens()))
			ctx := context.WithValue(r.Context(), rateLimitTypeKey, string(tier))
			next.ServeHTTP(w, r.WithContext(ctx))

		case middleware.TierCached:
			// Cached tier allows, but only for cached responses
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.GetCachedLimit()))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", limiters.GetCachedTokens()))
			log.Debugf("%s IP %s exceeded normal tier, using cached tier", logcolors.LogRateLimit, ip)
			ctx := context.WithValue(r.Context(), cacheOnlyModeKey, true)
			ctx = context.WithValue(ctx, rateLimitTypeKey, string(tier))
			next.ServeHTTP(w, r.WithContext(ctx))

		default:
			log.Warnf("%s IP %s exceeded both rate limit tiers", logcolors.LogRateLimit, ip)
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.GetCachedLimit()))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Type", string(tier))
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	})
}
