package providers

import "errors"

// Failure classes for an artwork lookup. All of them resolve the lookup empty.
var (
	// ErrUnauthenticated means no API token is configured; no request was made
	ErrUnauthenticated = errors.New("no API token configured")

	// ErrTransport covers network errors and non-success HTTP statuses
	ErrTransport = errors.New("transport failure")

	// ErrMalformedResponse means the payload could not be decoded into the expected structure
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNoArtwork means the response was well formed but carried no usable image
	ErrNoArtwork = errors.New("no artwork found")
)

// ProviderError represents an error from a provider with additional context
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Provider + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Message:  message,
		Err:      err,
	}
}

// Classify maps an error returned by a provider to a short reason label.
// Unknown errors are reported as "transport".
func Classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrNoArtwork):
		return "no_artwork"
	default:
		return "transport"
	}
}
