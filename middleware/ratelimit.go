package middleware

import (
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"radio-artwork-go/logcolors"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Tier is the rate limit tier a request was admitted under
type Tier string

const (
	TierNormal   Tier = "normal"   // may trigger an artwork lookup
	TierCached   Tier = "cached"   // may only be answered from the resolver cache
	TierExceeded Tier = "exceeded" // rejected
)

// LimiterPair holds both normal and cached tier limiters for an IP
type LimiterPair struct {
	Normal *rate.Limiter
	Cached *rate.Limiter

	lastSeen time.Time
}

// GetNormalTokens returns the number of tokens available in the normal tier
func (lp *LimiterPair) GetNormalTokens() int {
	return int(math.Floor(lp.Normal.Tokens()))
}

// GetCachedTokens returns the number of tokens available in the cached tier
func (lp *LimiterPair) GetCachedTokens() int {
	return int(math.Floor(lp.Cached.Tokens()))
}

// IPRateLimiter manages two-tier rate limiting per IP
type IPRateLimiter struct {
	ips         map[string]*LimiterPair
	mu          *sync.RWMutex
	normalRate  rate.Limit
	normalBurst int
	cachedRate  rate.Limit
	cachedBurst int
}

// GetNormalLimit returns the normal tier burst limit
func (i *IPRateLimiter) GetNormalLimit() int {
	return i.normalBurst
}

// GetCachedLimit returns the cached tier burst limit
func (i *IPRateLimiter) GetCachedLimit() int {
	return i.cachedBurst
}

// NewIPRateLimiter creates a new two-tier rate limiter
func NewIPRateLimiter(normalRate rate.Limit, normalBurst int, cachedRate rate.Limit, cachedBurst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:         make(map[string]*LimiterPair),
		mu:          &sync.RWMutex{},
		normalRate:  normalRate,
		normalBurst: normalBurst,
		cachedRate:  cachedRate,
		cachedBurst: cachedBurst,
	}
}

// AddIP creates fresh limiters for ip, replacing any existing pair
func (i *IPRateLimiter) AddIP(ip string) *LimiterPair {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.addLocked(ip)
}

func (i *IPRateLimiter) addLocked(ip string) *LimiterPair {
	pair := &LimiterPair{
		Normal:   rate.NewLimiter(i.normalRate, i.normalBurst),
		Cached:   rate.NewLimiter(i.cachedRate, i.cachedBurst),
		lastSeen: time.Now(),
	}
	i.ips[ip] = pair
	return pair
}

// GetLimiter returns the limiters for ip, creating them on first use
func (i *IPRateLimiter) GetLimiter(ip string) *LimiterPair {
	i.mu.Lock()
	defer i.mu.Unlock()

	pair, exists := i.ips[ip]
	if !exists {
		return i.addLocked(ip)
	}
	pair.lastSeen = time.Now()
	return pair
}

// Allow consumes a token for ip from the normal tier, falling back to the cached tier
func (i *IPRateLimiter) Allow(ip string) (Tier, *LimiterPair) {
	pair := i.GetLimiter(ip)
	if pair.Normal.Allow() {
		return TierNormal, pair
	}
	if pair.Cached.Allow() {
		return TierCached, pair
	}
	return TierExceeded, pair
}

// Len returns the number of tracked IPs
func (i *IPRateLimiter) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.ips)
}

// Prune forgets IPs not seen for longer than idle and returns how many were removed
func (i *IPRateLimiter) Prune(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	i.mu.Lock()
	defer i.mu.Unlock()

	removed := 0
	for ip, pair := range i.ips {
		if pair.lastSeen.Before(cutoff) {
			delete(i.ips, ip)
			removed++
		}
	}
	return removed
}

// StartPruning prunes idle IPs every interval until stop is closed
func (i *IPRateLimiter) StartPruning(interval, idle time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := i.Prune(idle); n > 0 {
					log.Debugf("%s Pruned %d idle client(s)", logcolors.LogRateLimit, n)
				}
			case <-stop:
				return
			}
		}
	}()
}

// ClientIP returns the remote IP of r without the port
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
