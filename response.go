package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"radio-artwork-go/middleware"
)

// APIResponse sets the standard artwork headers and writes a JSON body.
// X-Auth-Mode and X-RateLimit-Type come from the request context.
type APIResponse struct {
	w           http.ResponseWriter
	r           *http.Request
	cacheStatus string
	provider    string
	requestID   string
	retryAfter  int
}

// Respond creates a response helper from request context
func Respond(w http.ResponseWriter, r *http.Request) *APIResponse {
	return &APIResponse{w: w, r: r}
}

// SetCacheStatus sets X-Cache-Status (HIT or MISS)
func (a *APIResponse) SetCacheStatus(status string) *APIResponse {
	a.cacheStatus = status
	return a
}

// SetProvider sets X-Provider
func (a *APIResponse) SetProvider(provider string) *APIResponse {
	a.provider = provider
	return a
}

// SetRequestID sets X-Request-ID, the waiter id of an /artwork call
func (a *APIResponse) SetRequestID(id string) *APIResponse {
	a.requestID = id
	return a
}

// SetRetryAfter sets Retry-After in seconds. Zero leaves it unset.
func (a *APIResponse) SetRetryAfter(seconds int) *APIResponse {
	a.retryAfter = seconds
	return a
}

func (a *APIResponse) writeHeaders() {
	h := a.w.Header()
	h.Set("Content-Type", "application/json")

	optional := map[string]string{
		"X-Cache-Status": a.cacheStatus,
		"X-Provider":     a.provider,
		"X-Request-ID":   a.requestID,
	}
	for name, value := range optional {
		if value != "" {
			h.Set(name, value)
		}
	}
	if a.retryAfter > 0 {
		h.Set("Retry-After", strconv.Itoa(a.retryAfter))
	}

	if middleware.IsAuthenticated(a.r.Context()) {
		h.Set("X-Auth-Mode", "authenticated")
	}
	if rateLimitType, ok := a.r.Context().Value(rateLimitTypeKey).(string); ok && rateLimitType != "" {
		h.Set("X-RateLimit-Type", rateLimitType)
	}
}

func (a *APIResponse) write(statusCode int, data interface{}) error {
	a.writeHeaders()
	a.w.WriteHeader(statusCode)
	return json.NewEncoder(a.w).Encode(data)
}

// JSON writes data with 200 OK
func (a *APIResponse) JSON(data interface{}) error {
	return a.write(http.StatusOK, data)
}

// Error writes data with statusCode
func (a *APIResponse) Error(statusCode int, data interface{}) error {
	return a.write(statusCode, data)
}
