package providers

import (
	"errors"
	"fmt"
	"testing"
)

func TestProviderError_Error(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		message  string
		err      error
		expected string
	}{
		{
			name:     "Without wrapped error",
			provider: "discogs",
			message:  "search failed",
			err:      nil,
			expected: "discogs: search failed",
		},
		{
			name:     "With wrapped error",
			provider: "discogs",
			message:  "request failed",
			err:      errors.New("connection timeout"),
			expected: "discogs: request failed: connection timeout",
		},
		{
			name:     "Empty provider name",
			provider: "",
			message:  "some error",
			err:      nil,
			expected: ": some error",
		},
		{
			name:     "Empty message with wrapped error",
			provider: "discogs",
			message:  "",
			err:      errors.New("underlying error"),
			expected: "discogs: : underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := &ProviderError{
				Provider: tt.provider,
				Message:  tt.message,
				Err:      tt.err,
			}
			result := pe.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	t.Run("With wrapped sentinel", func(t *testing.T) {
		pe := NewProviderError("discogs", "status 500", ErrTransport)

		if pe.Unwrap() != ErrTransport {
			t.Errorf("Unwrap() = %v, expected %v", pe.Unwrap(), ErrTransport)
		}
		if !errors.Is(pe, ErrTransport) {
			t.Error("errors.Is should find the wrapped sentinel")
		}
	})

	t.Run("Without wrapped error", func(t *testing.T) {
		pe := NewProviderError("discogs", "no underlying", nil)

		if pe.Unwrap() != nil {
			t.Errorf("Unwrap() = %v, expected nil", pe.Unwrap())
		}
	})
}

func TestProviderError_ErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", NewProviderError("discogs", "test error", nil))

	var target *ProviderError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should match ProviderError")
	}

	if target.Provider != "discogs" {
		t.Errorf("Provider = %q, expected %q", target.Provider, "discogs")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, "ok"},
		{"unauthenticated", NewProviderError("discogs", "no token", ErrUnauthenticated), "unauthenticated"},
		{"transport", NewProviderError("discogs", "status 503", ErrTransport), "transport"},
		{"malformed", NewProviderError("discogs", "bad json", ErrMalformedResponse), "malformed_response"},
		{"no artwork", NewProviderError("discogs", "empty results", ErrNoArtwork), "no_artwork"},
		{"unknown error", errors.New("context deadline exceeded"), "transport"},
		{"double wrapped", fmt.Errorf("outer: %w", NewProviderError("discogs", "x", ErrNoArtwork)), "no_artwork"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.expected {
				t.Errorf("Classify(%v) = %q, expected %q", tt.err, got, tt.expected)
			}
		})
	}
}
