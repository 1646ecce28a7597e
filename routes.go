package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all HTTP routes for the API
func setupRoutes(router *mux.Router, reg *prometheus.Registry) {
	router.HandleFunc("/artwork", getArtwork).Methods(http.MethodGet)

	// Cache inspection endpoints
	router.HandleFunc("/cache", getCacheDump).Methods(http.MethodGet)
	router.HandleFunc("/cache/lookup", cacheLookup).Methods(http.MethodGet)

	// Runtime configuration
	router.HandleFunc("/config/discogs-token", setDiscogsToken).Methods(http.MethodPost)

	// Health, stats and metrics endpoints
	router.HandleFunc("/health", getHealthStatus)
	router.HandleFunc("/stats", getStats)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Help endpoint
	router.HandleFunc("/", helpHandler)
}
