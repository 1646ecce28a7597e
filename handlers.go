package main

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"radio-artwork-go/config"
	"radio-artwork-go/logcolors"
	"radio-artwork-go/stats"

	log "github.com/sirupsen/logrus"
)

// artworkParams reads stream, title and station from the query string
func artworkParams(r *http.Request) (streamURL *url.URL, nowPlaying, station string, errMsg string) {
	q := r.URL.Query()
	rawStream := strings.TrimSpace(q.Get("stream"))
	nowPlaying = q.Get("title")
	station = q.Get("station")

	if rawStream == "" || strings.TrimSpace(nowPlaying) == "" {
		return nil, "", "", "stream and title query parameters are required"
	}

	streamURL, err := url.Parse(rawStream)
	if err != nil {
		return nil, "", "", "stream is not a valid URL"
	}
	return streamURL, nowPlaying, station, ""
}

func getArtwork(w http.ResponseWriter, r *http.Request) {
	streamURL, nowPlaying, station, errMsg := artworkParams(r)
	if errMsg != "" {
		Respond(w, r).Error(http.StatusUnprocessableEntity, map[string]interface{}{"error": errMsg})
		return
	}

	provider := artworkResolver.ProviderName()
	key, cachedURL, cached := artworkResolver.CachedFor(streamURL, nowPlaying, station)

	// Check if we're in cache-only mode (rate limit tier 2)
	if cacheOnly, _ := r.Context().Value(cacheOnlyModeKey).(bool); cacheOnly {
		if cached {
			stats.Get().RecordCacheHit()
			Respond(w, r).SetCacheStatus("HIT").SetProvider(provider).JSON(ArtworkResponse{ArtworkURL: cachedURL, Key: key})
			return
		}
		stats.Get().RecordCacheMiss()
		stats.Get().RecordRateLimit("exceeded")
		log.Debugf("%s Cache-only mode but nothing cached for %q", logcolors.LogCacheArtwork, key)
		Respond(w, r).SetCacheStatus("MISS").SetRetryAfter(60).Error(http.StatusTooManyRequests, map[string]interface{}{
			"error":   "Rate limit exceeded. This request requires cached artwork, but none is available for this track.",
			"message": "Please try again later or reduce your request rate.",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), conf.ArtworkWaitTimeout())
	defer cancel()

	waiter := newHTTPWaiter(ctx)
	artworkResolver.RequestArtwork(waiter, streamURL, nowPlaying, station)

	if key == "" {
		// Ineligible stream or unparseable text: the resolver dropped it
		Respond(w, r).SetRequestID(waiter.id).Error(http.StatusNotFound, map[string]interface{}{
			"error": "Artwork is not available for this stream",
		})
		return
	}

	cacheStatus := "MISS"
	if cached {
		cacheStatus = "HIT"
	} else {
		log.Debugf("%s %s waiting for %q", logcolors.LogWaiter, logcolors.Waiter(waiter.id), key)
	}

	select {
	case artworkURL := <-waiter.result:
		Respond(w, r).SetCacheStatus(cacheStatus).SetProvider(provider).SetRequestID(waiter.id).
			JSON(ArtworkResponse{ArtworkURL: artworkURL, Key: key})
	case <-ctx.Done():
		if r.Context().Err() != nil {
			// Client went away
			return
		}
		Respond(w, r).SetCacheStatus("MISS").SetProvider(provider).SetRequestID(waiter.id).
			Error(http.StatusNotFound, map[string]interface{}{
				"error": "Artwork not available for this track",
				"key":   key,
			})
	}
}

func isAuthorized(r *http.Request) bool {
	token := conf.Configuration.CacheAccessToken
	return token != "" && r.Header.Get("Authorization") == token
}

func getCacheDump(w http.ResponseWriter, r *http.Request) {
	if !isAuthorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	snapshot := artworkResolver.Snapshot()
	_, pending, inFlight := artworkResolver.Sizes()

	size := 0
	for key, value := range snapshot {
		size += len(key) + len(value)
	}

	s := stats.Get()
	Respond(w, r).JSON(CacheDumpResponse{
		NumberOfKeys: len(snapshot),
		SizeInKB:     size / 1024,
		Pending:      pending,
		InFlight:     inFlight,
		Performance: CachePerformance{
			Hits:    s.CacheHits.Load(),
			Misses:  s.CacheMisses.Load(),
			Joins:   s.Joins.Load(),
			HitRate: s.CacheHitRate(),
		},
		Cache: snapshot,
	})
}

func cacheLookup(w http.ResponseWriter, r *http.Request) {
	streamURL, nowPlaying, station, errMsg := artworkParams(r)
	if errMsg != "" {
		Respond(w, r).Error(http.StatusUnprocessableEntity, map[string]interface{}{"error": errMsg})
		return
	}

	key, artworkURL, ok := artworkResolver.CachedFor(streamURL, nowPlaying, station)
	if key == "" {
		Respond(w, r).Error(http.StatusUnprocessableEntity, map[string]interface{}{
			"error": "stream is not eligible or title is not parseable",
		})
		return
	}

	status := "MISS"
	if ok {
		status = "HIT"
	}
	Respond(w, r).SetCacheStatus(status).JSON(CacheLookupResponse{Key: key, Cached: ok, ArtworkURL: artworkURL})
}

func getStats(w http.ResponseWriter, r *http.Request) {
	if !isAuthorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	snapshot := stats.Get().Snapshot()

	cached, pending, inFlight := artworkResolver.Sizes()
	snapshot["resolver_state"] = map[string]interface{}{
		"provider":  artworkResolver.ProviderName(),
		"cached":    cached,
		"pending":   pending,
		"in_flight": inFlight,
	}

	Respond(w, r).JSON(snapshot)
}

func getHealthStatus(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":   "ok",
		"provider": artworkResolver.ProviderName(),
	}

	// Without a token every lookup resolves empty
	if config.DiscogsToken() == "" {
		health["status"] = "degraded"
		health["error"] = "no Discogs token configured"
	}

	if isAuthorized(r) {
		cached, pending, inFlight := artworkResolver.Sizes()
		health["cached"] = cached
		health["pending"] = pending
		health["in_flight"] = inFlight
	}

	Respond(w, r).JSON(health)
}

// setDiscogsToken replaces the Discogs token at runtime. The next lookup uses it.
func setDiscogsToken(w http.ResponseWriter, r *http.Request) {
	if !isAuthorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		Respond(w, r).Error(http.StatusBadRequest, map[string]interface{}{"error": "invalid form body"})
		return
	}

	token := strings.TrimSpace(r.PostForm.Get("token"))
	config.SetDiscogsToken(token)

	if token == "" {
		log.Warnf("%s Discogs token cleared, lookups disabled", logcolors.LogConfig)
	} else {
		log.Infof("%s Discogs token updated", logcolors.LogConfig)
	}

	Respond(w, r).JSON(map[string]interface{}{"configured": token != ""})
}

func helpHandler(w http.ResponseWriter, r *http.Request) {
	Respond(w, r).JSON(map[string]interface{}{
		"help": "Use /artwork to get cover artwork for what a radio stream is playing. " +
			"Provide the stream URL, the now playing text and optionally the station name. " +
			"Example: /artwork?stream=https%3A%2F%2Flisten.di.fm%2Fpublic3&title=Daft%20Punk%20-%20One%20More%20Time",
		"endpoints": map[string]string{
			"/artwork":              "Resolve artwork (waits for a pending lookup)",
			"/cache":                "Dump resolved artwork (requires Authorization)",
			"/cache/lookup":         "Check the cache for a stream and title without a lookup",
			"/stats":                "Server and resolver statistics (requires Authorization)",
			"/health":               "Health status",
			"/metrics":              "Prometheus metrics",
			"/config/discogs-token": "POST token=... to replace the Discogs token (requires Authorization)",
		},
	})
}
