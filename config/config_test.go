package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestConfigDefaultValues(t *testing.T) {
	// Clear any existing env vars that might interfere
	envVars := []string{
		"PORT",
		"RATE_LIMIT_PER_SECOND",
		"RATE_LIMIT_BURST_LIMIT",
		"CACHED_RATE_LIMIT_PER_SECOND",
		"CACHED_RATE_LIMIT_BURST_LIMIT",
		"ARTWORK_PROVIDER",
		"ELIGIBLE_HOSTS",
		"ARTWORK_WAIT_TIMEOUT_SECS",
		"DISCOGS_TOKEN",
		"DISCOGS_BASE_URL",
		"LOOKUP_TIMEOUT_SECS",
		"STATS_DB_PATH",
	}

	// Store original values
	originalValues := make(map[string]string)
	for _, key := range envVars {
		originalValues[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	defer func() {
		// Restore original values
		for key, value := range originalValues {
			if value != "" {
				os.Setenv(key, value)
			}
		}
	}()

	cfg, err := load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{
			name:     "Port default",
			got:      cfg.Configuration.Port,
			expected: "8080",
		},
		{
			name:     "RateLimitPerSecond default",
			got:      cfg.Configuration.RateLimitPerSecond,
			expected: 2,
		},
		{
			name:     "RateLimitBurstLimit default",
			got:      cfg.Configuration.RateLimitBurstLimit,
			expected: 5,
		},
		{
			name:     "CachedRateLimitPerSecond default",
			got:      cfg.Configuration.CachedRateLimitPerSecond,
			expected: 10,
		},
		{
			name:     "CachedRateLimitBurstLimit default",
			got:      cfg.Configuration.CachedRateLimitBurstLimit,
			expected: 20,
		},
		{
			name:     "ArtworkProvider default",
			got:      cfg.Configuration.ArtworkProvider,
			expected: "discogs",
		},
		{
			name:     "ArtworkWaitTimeoutSecs default",
			got:      cfg.Configuration.ArtworkWaitTimeoutSecs,
			expected: 10,
		},
		{
			name:     "DiscogsToken default",
			got:      cfg.Configuration.DiscogsToken,
			expected: "",
		},
		{
			name:     "DiscogsBaseURL default",
			got:      cfg.Configuration.DiscogsBaseURL,
			expected: "https://api.discogs.com/database/search",
		},
		{
			name:     "LookupTimeoutSecs default",
			got:      cfg.Configuration.LookupTimeoutSecs,
			expected: 15,
		},
		{
			name:     "StatsDBPath default",
			got:      cfg.Configuration.StatsDBPath,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}

	expectedHosts := []string{"di.fm", "digitallyimported"}
	if !reflect.DeepEqual(cfg.Configuration.EligibleHosts, expectedHosts) {
		t.Errorf("Expected EligibleHosts %v, got %v", expectedHosts, cfg.Configuration.EligibleHosts)
	}
}

func TestConfigEnvironmentOverrides(t *testing.T) {
	os.Setenv("PORT", "9090")
	os.Setenv("RATE_LIMIT_PER_SECOND", "5")
	os.Setenv("CACHE_ACCESS_TOKEN", "test_token_123")
	os.Setenv("ELIGIBLE_HOSTS", "di.fm,radiotunes,jazzradio")
	os.Setenv("DISCOGS_TOKEN", "abc")
	os.Setenv("LOOKUP_TIMEOUT_SECS", "3")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("RATE_LIMIT_PER_SECOND")
		os.Unsetenv("CACHE_ACCESS_TOKEN")
		os.Unsetenv("ELIGIBLE_HOSTS")
		os.Unsetenv("DISCOGS_TOKEN")
		os.Unsetenv("LOOKUP_TIMEOUT_SECS")
	}()

	cfg, err := load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Configuration.Port != "9090" {
		t.Errorf("Expected Port '9090', got %q", cfg.Configuration.Port)
	}
	if cfg.Configuration.RateLimitPerSecond != 5 {
		t.Errorf("Expected RateLimitPerSecond 5, got %d", cfg.Configuration.RateLimitPerSecond)
	}
	if cfg.Configuration.CacheAccessToken != "test_token_123" {
		t.Errorf("Expected CacheAccessToken 'test_token_123', got %q", cfg.Configuration.CacheAccessToken)
	}
	if len(cfg.Configuration.EligibleHosts) != 3 || cfg.Configuration.EligibleHosts[2] != "jazzradio" {
		t.Errorf("Expected three eligible hosts ending in jazzradio, got %v", cfg.Configuration.EligibleHosts)
	}
	if cfg.Configuration.DiscogsToken != "abc" {
		t.Errorf("Expected DiscogsToken 'abc', got %q", cfg.Configuration.DiscogsToken)
	}
	if cfg.LookupTimeout() != 3*time.Second {
		t.Errorf("Expected LookupTimeout 3s, got %v", cfg.LookupTimeout())
	}
}

func TestGet(t *testing.T) {
	cfg := Get()

	if cfg.Configuration.RateLimitPerSecond == 0 && cfg.Configuration.RateLimitBurstLimit == 0 {
		t.Error("Expected Get() to return initialized config, got zero values")
	}
}

func TestMustLoad(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("mustLoad() panicked: %v", r)
		}
	}()

	cfg := mustLoad()

	if cfg.Configuration.RateLimitPerSecond <= 0 {
		t.Error("Expected mustLoad to return valid config with positive RateLimitPerSecond")
	}
}

func TestTimeoutFallbacks(t *testing.T) {
	var cfg Config

	if cfg.LookupTimeout() != 15*time.Second {
		t.Errorf("Expected zero LookupTimeoutSecs to fall back to 15s, got %v", cfg.LookupTimeout())
	}
	if cfg.ArtworkWaitTimeout() != 10*time.Second {
		t.Errorf("Expected zero ArtworkWaitTimeoutSecs to fall back to 10s, got %v", cfg.ArtworkWaitTimeout())
	}

	if cfg.StatsSaveInterval() != 5*time.Minute {
		t.Errorf("Expected zero StatsSaveIntervalSecs to fall back to 5m, got %v", cfg.StatsSaveInterval())
	}

	cfg.Configuration.ArtworkWaitTimeoutSecs = 2
	if cfg.ArtworkWaitTimeout() != 2*time.Second {
		t.Errorf("Expected ArtworkWaitTimeout 2s, got %v", cfg.ArtworkWaitTimeout())
	}
}

func TestSetDiscogsToken(t *testing.T) {
	defer func() {
		tokenMu.Lock()
		tokenOverride = nil
		tokenMu.Unlock()
	}()

	SetDiscogsToken("  runtime-token  ")
	if got := DiscogsToken(); got != "runtime-token" {
		t.Errorf("Expected trimmed runtime token, got %q", got)
	}

	SetDiscogsToken("")
	if got := DiscogsToken(); got != "" {
		t.Errorf("Expected empty token after clearing, got %q", got)
	}
}
