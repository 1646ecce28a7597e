package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"radio-artwork-go/logcolors"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	statsBucketName = "stats"
	statsKey        = "server_stats"
)

// Store persists counters so they accumulate across restarts.
// Only counters are stored; resolved artwork is never written to disk.
type Store struct {
	db       *bolt.DB
	dbPath   string
	stats    *Stats
	mu       sync.Mutex
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// PersistedStats represents the stats data that gets persisted to disk
type PersistedStats struct {
	TotalRequests   int64 `json:"total_requests"`
	ArtworkRequests int64 `json:"artwork_requests"`
	CacheRequests   int64 `json:"cache_requests"`
	StatsRequests   int64 `json:"stats_requests"`
	HealthRequests  int64 `json:"health_requests"`
	OtherRequests   int64 `json:"other_requests"`

	ResolverRequests      int64            `json:"resolver_requests"`
	RejectedInvalidWaiter int64            `json:"rejected_invalid_waiter"`
	RejectedIneligible    int64            `json:"rejected_ineligible"`
	RejectedNotParseable  int64            `json:"rejected_not_parseable"`
	CacheHits             int64            `json:"cache_hits"`
	CacheMisses           int64            `json:"cache_misses"`
	Joins                 int64            `json:"joins"`
	LookupsDispatched     int64            `json:"lookups_dispatched"`
	LookupsResolved       int64            `json:"lookups_resolved"`
	LookupsEmpty          int64            `json:"lookups_empty"`
	EmptyReasons          map[string]int64 `json:"empty_reasons"`
	Notifications         int64            `json:"notifications"`
	SkippedWaiters        int64            `json:"skipped_waiters"`
	Panics                int64            `json:"panics"`

	RateLimitNormal   int64 `json:"rate_limit_normal"`
	RateLimitCached   int64 `json:"rate_limit_cached"`
	RateLimitExceeded int64 `json:"rate_limit_exceeded"`
	Status2xx         int64 `json:"status_2xx"`
	Status4xx         int64 `json:"status_4xx"`
	Status5xx         int64 `json:"status_5xx"`

	// Response time tracking
	TotalResponseTime    int64 `json:"total_response_time"`
	ResponseCount        int64 `json:"response_count"`
	MinResponseTime      int64 `json:"min_response_time"`
	MaxResponseTime      int64 `json:"max_response_time"`
	ArtworkResponseTime  int64 `json:"artwork_response_time"`
	ArtworkResponseCount int64 `json:"artwork_response_count"`

	// Metadata
	LastSaved    time.Time `json:"last_saved"`
	FirstStarted time.Time `json:"first_started"`
}

// NewStore creates a new stats store for s with a dedicated BoltDB file
func NewStore(dbPath string, s *Stats) (*Store, error) {
	// Create directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open stats database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(statsBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create stats bucket: %w", err)
	}

	store := &Store{
		db:       db,
		dbPath:   dbPath,
		stats:    s,
		stopChan: make(chan struct{}),
	}

	log.Infof("%s Stats store initialized at %s", logcolors.LogStats, dbPath)
	return store, nil
}

// Load reads persisted stats from disk and applies them to the store's Stats
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var persisted PersistedStats
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(statsBucketName))
		if b == nil {
			return nil
		}

		data := b.Get([]byte(statsKey))
		if data == nil {
			return nil // No persisted stats yet
		}

		found = true
		return json.Unmarshal(data, &persisted)
	})
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	if !found {
		return nil
	}

	st := s.stats

	st.TotalRequests.Store(persisted.TotalRequests)
	st.ArtworkRequests.Store(persisted.ArtworkRequests)
	st.CacheRequests.Store(persisted.CacheRequests)
	st.StatsRequests.Store(persisted.StatsRequests)
	st.HealthRequests.Store(persisted.HealthRequests)
	st.OtherRequests.Store(persisted.OtherRequests)
	st.ResolverRequests.Store(persisted.ResolverRequests)
	st.RejectedInvalidWaiter.Store(persisted.RejectedInvalidWaiter)
	st.RejectedIneligible.Store(persisted.RejectedIneligible)
	st.RejectedNotParseable.Store(persisted.RejectedNotParseable)
	st.CacheHits.Store(persisted.CacheHits)
	st.CacheMisses.Store(persisted.CacheMisses)
	st.Joins.Store(persisted.Joins)
	st.LookupsDispatched.Store(persisted.LookupsDispatched)
	st.LookupsResolved.Store(persisted.LookupsResolved)
	st.LookupsEmpty.Store(persisted.LookupsEmpty)
	st.Notifications.Store(persisted.Notifications)
	st.SkippedWaiters.Store(persisted.SkippedWaiters)
	st.Panics.Store(persisted.Panics)
	st.RateLimitNormal.Store(persisted.RateLimitNormal)
	st.RateLimitCached.Store(persisted.RateLimitCached)
	st.RateLimitExceeded.Store(persisted.RateLimitExceeded)
	st.Status2xx.Store(persisted.Status2xx)
	st.Status4xx.Store(persisted.Status4xx)
	st.Status5xx.Store(persisted.Status5xx)
	st.totalResponseTime.Store(persisted.TotalResponseTime)
	st.responseCount.Store(persisted.ResponseCount)
	st.artworkResponseTime.Store(persisted.ArtworkResponseTime)
	st.artworkResponseCount.Store(persisted.ArtworkResponseCount)

	// Only update min/max if we have valid persisted values
	if persisted.MinResponseTime > 0 && persisted.MinResponseTime < maxInt64 {
		st.minResponseTime.Store(persisted.MinResponseTime)
	}
	if persisted.MaxResponseTime > 0 {
		st.maxResponseTime.Store(persisted.MaxResponseTime)
	}

	for reason, count := range persisted.EmptyReasons {
		counter := st.emptyCounter(reason)
		counter.Store(count)
	}

	// Preserve the original first start time if available
	if !persisted.FirstStarted.IsZero() {
		st.StartTime = persisted.FirstStarted
	}

	log.Infof("%s Loaded persisted stats (total requests: %d, first started: %s)",
		logcolors.LogStats, persisted.TotalRequests, persisted.FirstStarted.Format(time.RFC3339))

	return nil
}

// Save persists current stats to disk
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats

	persisted := PersistedStats{
		TotalRequests:         st.TotalRequests.Load(),
		ArtworkRequests:       st.ArtworkRequests.Load(),
		CacheRequests:         st.CacheRequests.Load(),
		StatsRequests:         st.StatsRequests.Load(),
		HealthRequests:        st.HealthRequests.Load(),
		OtherRequests:         st.OtherRequests.Load(),
		ResolverRequests:      st.ResolverRequests.Load(),
		RejectedInvalidWaiter: st.RejectedInvalidWaiter.Load(),
		RejectedIneligible:    st.RejectedIneligible.Load(),
		RejectedNotParseable:  st.RejectedNotParseable.Load(),
		CacheHits:             st.CacheHits.Load(),
		CacheMisses:           st.CacheMisses.Load(),
		Joins:                 st.Joins.Load(),
		LookupsDispatched:     st.LookupsDispatched.Load(),
		LookupsResolved:       st.LookupsResolved.Load(),
		LookupsEmpty:          st.LookupsEmpty.Load(),
		EmptyReasons:          st.EmptyReasons(),
		Notifications:         st.Notifications.Load(),
		SkippedWaiters:        st.SkippedWaiters.Load(),
		Panics:                st.Panics.Load(),
		RateLimitNormal:       st.RateLimitNormal.Load(),
		RateLimitCached:       st.RateLimitCached.Load(),
		RateLimitExceeded:     st.RateLimitExceeded.Load(),
		Status2xx:             st.Status2xx.Load(),
		Status4xx:             st.Status4xx.Load(),
		Status5xx:             st.Status5xx.Load(),
		TotalResponseTime:     st.totalResponseTime.Load(),
		ResponseCount:         st.responseCount.Load(),
		MinResponseTime:       st.minResponseTime.Load(),
		MaxResponseTime:       st.maxResponseTime.Load(),
		ArtworkResponseTime:   st.artworkResponseTime.Load(),
		ArtworkResponseCount:  st.artworkResponseCount.Load(),
		LastSaved:             time.Now(),
		FirstStarted:          st.StartTime,
	}

	data, err := json.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(statsBucketName))
		if b == nil {
			return fmt.Errorf("stats bucket not found")
		}
		return b.Put([]byte(statsKey), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}

	return nil
}

// StartAutoSave begins periodic saving of stats
func (s *Store) StartAutoSave(interval time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.Save(); err != nil {
					log.Warnf("%s Failed to auto-save stats: %v", logcolors.LogStats, err)
				}
			case <-s.stopChan:
				return
			}
		}
	}()
	log.Infof("%s Started auto-save with interval %v", logcolors.LogStats, interval)
}

// Close saves stats and closes the database
func (s *Store) Close() error {
	// Signal auto-save goroutine to stop
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()

	// Final save before closing
	if err := s.Save(); err != nil {
		log.Warnf("%s Failed to save stats on close: %v", logcolors.LogStats, err)
	} else {
		log.Infof("%s Stats saved on shutdown", logcolors.LogStats)
	}

	return s.db.Close()
}
