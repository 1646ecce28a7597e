package config

import (
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

var conf = mustLoad()

var (
	tokenMu       sync.RWMutex
	tokenOverride *string
)

type Config struct {
	Configuration struct {
		Port                      string `envconfig:"PORT" default:"8080"`
		LogLevel                  string `envconfig:"LOG_LEVEL" default:"info"`
		RateLimitPerSecond        int    `envconfig:"RATE_LIMIT_PER_SECOND" default:"2"`
		RateLimitBurstLimit       int    `envconfig:"RATE_LIMIT_BURST_LIMIT" default:"5"`
		CachedRateLimitPerSecond  int    `envconfig:"CACHED_RATE_LIMIT_PER_SECOND" default:"10"`
		CachedRateLimitBurstLimit int    `envconfig:"CACHED_RATE_LIMIT_BURST_LIMIT" default:"20"`
		CacheAccessToken          string `envconfig:"CACHE_ACCESS_TOKEN" default:""`
		APIKey                    string `envconfig:"API_KEY" default:""`
		APIKeyRequired            bool   `envconfig:"API_KEY_REQUIRED" default:"false"`

		CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

		// Artwork resolution
		ArtworkProvider        string   `envconfig:"ARTWORK_PROVIDER" default:"discogs"`
		EligibleHosts          []string `envconfig:"ELIGIBLE_HOSTS" default:"di.fm,digitallyimported"`
		ArtworkWaitTimeoutSecs int      `envconfig:"ARTWORK_WAIT_TIMEOUT_SECS" default:"10"` // How long /artwork waits for a pending lookup

		// Discogs API Configuration
		DiscogsToken      string `envconfig:"DISCOGS_TOKEN" default:""`
		DiscogsBaseURL    string `envconfig:"DISCOGS_BASE_URL" default:"https://api.discogs.com/database/search"`
		DiscogsUserAgent  string `envconfig:"DISCOGS_USER_AGENT" default:"RadioArtwork/1.0 +https://github.com/radio-artwork-go"`
		LookupTimeoutSecs int    `envconfig:"LOOKUP_TIMEOUT_SECS" default:"15"` // Transport timeout for a single lookup

		// Counter persistence, disabled when the path is empty
		StatsDBPath           string `envconfig:"STATS_DB_PATH" default:""`
		StatsSaveIntervalSecs int    `envconfig:"STATS_SAVE_INTERVAL_SECS" default:"300"`
	}
}

// load loads the configuration from the environment.
func load() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Warnf("Error loading env config: %v", err)
	}

	cfg := Config{}
	err = envconfig.Process("", &cfg)
	return cfg, err
}

func mustLoad() Config {
	c, err := load()
	if err != nil {
		log.WithError(err).Warnf("Unable to load configuration")
	}

	return c
}

func Get() Config {
	return conf
}

// DiscogsToken returns the trimmed Discogs token.
// It is read on every call so lookups pick up a token set after startup via SetDiscogsToken.
func DiscogsToken() string {
	tokenMu.RLock()
	defer tokenMu.RUnlock()
	if tokenOverride != nil {
		return strings.TrimSpace(*tokenOverride)
	}
	return strings.TrimSpace(conf.Configuration.DiscogsToken)
}

// SetDiscogsToken replaces the Discogs token at runtime. An empty token disables lookups.
func SetDiscogsToken(token string) {
	tokenMu.Lock()
	defer tokenMu.Unlock()
	tokenOverride = &token
}

// LookupTimeout returns the transport timeout for artwork lookups
func (c Config) LookupTimeout() time.Duration {
	if c.Configuration.LookupTimeoutSecs <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Configuration.LookupTimeoutSecs) * time.Second
}

// StatsSaveInterval returns how often counters are written to the stats store
func (c Config) StatsSaveInterval() time.Duration {
	if c.Configuration.StatsSaveIntervalSecs <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Configuration.StatsSaveIntervalSecs) * time.Second
}

// ArtworkWaitTimeout returns how long an HTTP caller waits for a resolution
func (c Config) ArtworkWaitTimeout() time.Duration {
	if c.Configuration.ArtworkWaitTimeoutSecs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Configuration.ArtworkWaitTimeoutSecs) * time.Second
}
