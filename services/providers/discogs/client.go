package discogs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"radio-artwork-go/logcolors"
	"radio-artwork-go/services/providers"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultSearchURL is the Discogs database search endpoint
	DefaultSearchURL = "https://api.discogs.com/database/search"

	// Request defaults
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "RadioArtwork/1.0 +https://github.com/radio-artwork-go"
	maxRedirects     = 10
	maxBodyBytes     = 1 << 20
)

var errInsecureRedirect = errors.New("refusing redirect to a less secure scheme")

// newHTTPClient builds the client used for searches.
// Redirects are only followed when they do not downgrade from https to http.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout:       timeout,
		CheckRedirect: noLessSafeRedirect,
	}
}

func noLessSafeRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	prev := via[len(via)-1]
	if prev.URL.Scheme == "https" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s -> %s", errInsecureRedirect, prev.URL.Host, req.URL.String())
	}
	return nil
}

// buildSearchURL adds the artist/track query to the search endpoint, constrained to the first release
func buildSearchURL(baseURL, artist, title string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid search URL %q: %w", baseURL, err)
	}

	params := u.Query()
	params.Set("artist", artist)
	params.Set("track", title)
	params.Set("type", "release")
	params.Set("per_page", "1")
	params.Set("page", "1")
	u.RawQuery = params.Encode()

	return u.String(), nil
}

// search issues one GET against the search endpoint and decodes the payload
func (p *DiscogsProvider) search(ctx context.Context, token, artist, title string) (*SearchResponse, error) {
	requestURL, err := buildSearchURL(p.baseURL, artist, title)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", providers.ErrTransport, err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")
	// Discogs expects a content type even on body-less requests
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Discogs token="+token)

	log.Debugf("%s Searching: %s - %s", logcolors.ProviderPrefix(ProviderName), artist, title)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", providers.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: API returned status %d", providers.ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", providers.ErrTransport, err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", providers.ErrMalformedResponse, err)
	}

	return &searchResp, nil
}
