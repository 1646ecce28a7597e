package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"radio-artwork-go/config"
	"radio-artwork-go/logcolors"
	"radio-artwork-go/middleware"
	"radio-artwork-go/services/artwork"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var conf = config.Get()

var artworkResolver *artwork.Resolver

func init() {
	setupLogging(conf.Configuration.LogLevel)
}

func main() {
	registerProviders(conf)

	resolver, err := newResolver(conf)
	if err != nil {
		log.Fatalf("%s %v", logcolors.LogServer, err)
	}
	artworkResolver = resolver

	if config.DiscogsToken() == "" {
		log.Warnf("%s DISCOGS_TOKEN is not set, artwork lookups will resolve empty", logcolors.LogConfig)
	}

	statsStore := openStatsStore(conf)

	router := mux.NewRouter()
	setupRoutes(router, newMetricsRegistry())

	c := cors.New(cors.Options{
		AllowedOrigins: conf.Configuration.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "X-API-Key"},
		ExposedHeaders: []string{"X-Cache-Status", "X-Provider", "X-Request-ID", "X-RateLimit-Type", "X-RateLimit-Remaining"},
	})

	limiter := middleware.NewIPRateLimiter(
		rate.Limit(conf.Configuration.RateLimitPerSecond), conf.Configuration.RateLimitBurstLimit,
		rate.Limit(conf.Configuration.CachedRateLimitPerSecond), conf.Configuration.CachedRateLimitBurstLimit,
	)
	stopPruning := make(chan struct{})
	limiter.StartPruning(time.Minute, 10*time.Minute, stopPruning)

	apiKeyAuth := middleware.APIKeyMiddleware(conf.Configuration.APIKey, conf.Configuration.APIKeyRequired,
		[]string{"/", "/health", "/metrics"})

	// cors -> rate limit -> api key -> logging, outermost last
	handler := middleware.LoggingMiddleware(apiKeyAuth(limitMiddleware(c.Handler(router), limiter)))

	srv := &http.Server{
		Addr:              ":" + conf.Configuration.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("%s Server listening on port %s", logcolors.LogServer, conf.Configuration.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("%s %v", logcolors.LogServer, err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Infof("%s Shutting down", logcolors.LogServer)
	close(stopPruning)

	ctx, cancel := context.WithTimeout(context.Background(), conf.ArtworkWaitTimeout()+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnf("%s Shutdown: %v", logcolors.LogServer, err)
	}

	// Let running lookups fill the cache counters before the final save
	done := make(chan struct{})
	go func() {
		artworkResolver.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warnf("%s Lookups still in flight at exit", logcolors.LogResolver)
	}

	if statsStore != nil {
		if err := statsStore.Close(); err != nil {
			log.Warnf("%s %v", logcolors.LogStats, err)
		}
	}
}
