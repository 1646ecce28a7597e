package artwork

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"radio-artwork-go/logcolors"
	"radio-artwork-go/services/providers"
	"radio-artwork-go/stats"

	log "github.com/sirupsen/logrus"
)

var errInvalidArtworkURL = errors.New("provider returned an invalid artwork URL")

// Config configures a Resolver
type Config struct {
	Provider   providers.Provider // performs the outbound lookup
	OnResolved ResolvedFunc       // receives every successful result
	Filter     *Filter            // nil uses DefaultHosts
	Stats      *stats.Stats       // nil uses stats.Get()
}

// Resolver coalesces artwork requests per track.
//
// At most one lookup per canonical key is in flight. Every waiter registered while it
// runs is notified, in request order, once it succeeds. Successful URLs are cached for
// the lifetime of the Resolver; empty results are not, so the next request retries.
type Resolver struct {
	provider   providers.Provider
	onResolved ResolvedFunc
	filter     *Filter
	stats      *stats.Stats

	mu       sync.Mutex
	cache    map[string]string
	pending  map[string][]Waiter
	inFlight map[string]struct{}

	lookups sync.WaitGroup
}

// NewResolver creates a Resolver
func NewResolver(cfg Config) (*Resolver, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("artwork resolver requires a provider")
	}
	if cfg.OnResolved == nil {
		return nil, fmt.Errorf("artwork resolver requires a result callback")
	}
	if cfg.Filter == nil {
		cfg.Filter = NewFilter(nil)
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.Get()
	}

	return &Resolver{
		provider:   cfg.Provider,
		onResolved: cfg.OnResolved,
		filter:     cfg.Filter,
		stats:      cfg.Stats,
		cache:      make(map[string]string),
		pending:    make(map[string][]Waiter),
		inFlight:   make(map[string]struct{}),
	}, nil
}

// ProviderName returns the name of the provider lookups are sent to
func (r *Resolver) ProviderName() string {
	return r.provider.Name()
}

// RequestArtwork asks for the artwork of whatever is playing on streamURL.
//
// It never blocks on the network. Invalid waiters, ineligible streams and text without
// an artist and title are dropped silently. A cached result is delivered before
// RequestArtwork returns; otherwise w is queued and notified when a lookup succeeds.
func (r *Resolver) RequestArtwork(w Waiter, streamURL *url.URL, nowPlaying, station string) {
	r.stats.RecordResolverRequest()

	if !r.isValid(w) {
		r.stats.RecordRejection(stats.RejectInvalidWaiter)
		return
	}
	if !r.filter.IsEligible(streamURL) {
		r.stats.RecordRejection(stats.RejectIneligible)
		return
	}
	track, err := DeriveArtistTitle(nowPlaying, station)
	if err != nil {
		r.stats.RecordRejection(stats.RejectNotParseable)
		return
	}
	key := track.Key()

	r.mu.Lock()
	if cached, ok := r.cache[key]; ok && cached != "" {
		r.mu.Unlock()
		r.stats.RecordCacheHit()
		r.notify(w, cached)
		return
	}

	r.pending[key] = append(r.pending[key], w)
	if _, busy := r.inFlight[key]; busy {
		waiting := len(r.pending[key])
		r.mu.Unlock()
		r.stats.RecordCacheMiss()
		r.stats.RecordJoin()
		log.Debugf("%s Joined lookup for %q (%d waiting)", logcolors.LogResolver, key, waiting)
		return
	}

	r.inFlight[key] = struct{}{}
	r.lookups.Add(1)
	r.mu.Unlock()

	r.stats.RecordCacheMiss()
	r.stats.RecordDispatch()
	log.Debugf("%s Dispatching %s lookup for %q", logcolors.LogResolver, r.provider.Name(), key)

	go r.lookup(key, track)
}

// lookup runs one provider query and resolves key exactly once, panics included
func (r *Resolver) lookup(key string, track Track) {
	defer r.lookups.Done()

	var (
		result    string
		lookupErr error
	)
	defer func() {
		if rec := recover(); rec != nil {
			r.stats.RecordPanic()
			log.Errorf("%s Lookup for %q panicked: %v", logcolors.LogLookup, key, rec)
			result = ""
			lookupErr = fmt.Errorf("%w: lookup panicked: %v", providers.ErrTransport, rec)
		}
		r.resolveKey(key, result, lookupErr)
	}()

	artworkURL, err := r.provider.FetchArtwork(context.Background(), track.Artist, track.Title)
	if err != nil {
		lookupErr = err
		return
	}
	if !isValidArtworkURL(artworkURL) {
		lookupErr = fmt.Errorf("%w: %q", errInvalidArtworkURL, artworkURL)
		return
	}
	result = artworkURL
}

// resolveKey is the only place a key leaves the in-flight set.
// An empty result drops the waiters without notifying them and caches nothing.
func (r *Resolver) resolveKey(key, result string, lookupErr error) {
	r.mu.Lock()
	delete(r.inFlight, key)
	if result != "" {
		r.cache[key] = result
	}
	waiters := r.pending[key]
	delete(r.pending, key)
	r.mu.Unlock()

	if result == "" {
		reason := emptyReason(lookupErr)
		r.stats.RecordEmpty(reason)
		if reason == "transport" {
			log.Warnf("%s No artwork for %q: %v", logcolors.LogLookup, key, lookupErr)
		} else {
			log.Debugf("%s No artwork for %q (%s), dropping %d waiter(s)", logcolors.LogLookup, key, reason, len(waiters))
		}
		return
	}

	r.stats.RecordResolved()
	log.Infof("%s Resolved %q -> %s (%d waiter(s))", logcolors.LogArtwork, key, result, len(waiters))

	for _, w := range waiters {
		r.notify(w, result)
	}
}

// notify delivers a result to one waiter. A panicking or invalid waiter never affects the others.
func (r *Resolver) notify(w Waiter, artworkURL string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.stats.RecordPanic()
			log.Errorf("%s Waiter callback panicked: %v", logcolors.LogWaiter, rec)
		}
	}()

	if !w.Valid() {
		r.stats.RecordSkippedWaiter()
		return
	}
	r.onResolved(w, artworkURL)
	r.stats.RecordNotification()
}

func (r *Resolver) isValid(w Waiter) (valid bool) {
	if w == nil {
		return false
	}
	defer func() {
		if rec := recover(); rec != nil {
			valid = false
		}
	}()
	return w.Valid()
}

// Cached returns the artwork URL stored for a canonical key
func (r *Resolver) Cached(key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	artworkURL, ok := r.cache[key]
	return artworkURL, ok && artworkURL != ""
}

// CachedFor applies the same eligibility and parsing as RequestArtwork and returns the
// cached URL, if any, without dispatching a lookup. key is empty when the request
// would have been rejected.
func (r *Resolver) CachedFor(streamURL *url.URL, nowPlaying, station string) (key, artworkURL string, ok bool) {
	if !r.filter.IsEligible(streamURL) {
		return "", "", false
	}
	track, err := DeriveArtistTitle(nowPlaying, station)
	if err != nil {
		return "", "", false
	}
	key = track.Key()
	artworkURL, ok = r.Cached(key)
	return key, artworkURL, ok
}

// Snapshot returns a copy of every cached key and URL
func (r *Resolver) Snapshot() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.cache))
	for k, v := range r.cache {
		out[k] = v
	}
	return out
}

// Sizes returns the number of cached keys, keys with pending waiters and lookups in flight
func (r *Resolver) Sizes() (cached, pending, inFlight int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache), len(r.pending), len(r.inFlight)
}

// Wait blocks until every dispatched lookup has resolved.
// Callers must stop issuing requests first.
func (r *Resolver) Wait() {
	r.lookups.Wait()
}

func emptyReason(err error) string {
	if errors.Is(err, errInvalidArtworkURL) {
		return "invalid_url"
	}
	if err == nil {
		return "no_artwork"
	}
	return providers.Classify(err)
}

// isValidArtworkURL accepts absolute URLs with a scheme and a host
func isValidArtworkURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
