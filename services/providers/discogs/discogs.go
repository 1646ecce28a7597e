package discogs

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"radio-artwork-go/logcolors"
	"radio-artwork-go/services/providers"

	log "github.com/sirupsen/logrus"
)

// ProviderName is the identifier for the Discogs provider
const ProviderName = "discogs"

// Config configures a DiscogsProvider
type Config struct {
	BaseURL   string        // search endpoint, DefaultSearchURL when empty
	UserAgent string        // sent on every request
	Timeout   time.Duration // transport timeout for one search
	// Token is called before every lookup; an empty result skips the request
	Token      func() string
	HTTPClient *http.Client // optional, overrides Timeout and the redirect policy
}

// DiscogsProvider implements the providers.Provider interface for Discogs release artwork
type DiscogsProvider struct {
	baseURL    string
	userAgent  string
	token      func() string
	httpClient *http.Client
}

// NewProvider creates a new Discogs provider instance
func NewProvider(cfg Config) *DiscogsProvider {
	p := &DiscogsProvider{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		token:      cfg.Token,
		httpClient: cfg.HTTPClient,
	}
	if p.baseURL == "" {
		p.baseURL = DefaultSearchURL
	}
	if p.userAgent == "" {
		p.userAgent = defaultUserAgent
	}
	if p.httpClient == nil {
		p.httpClient = newHTTPClient(cfg.Timeout)
	}
	return p
}

// Name returns the provider identifier
func (p *DiscogsProvider) Name() string {
	return ProviderName
}

// FetchArtwork searches Discogs for the first release matching artist and title
// and returns its cover image, or its thumbnail when no cover is set.
func (p *DiscogsProvider) FetchArtwork(ctx context.Context, artist, title string) (string, error) {
	token := ""
	if p.token != nil {
		token = strings.TrimSpace(p.token())
	}
	if token == "" {
		return "", providers.NewProviderError(ProviderName, "lookup skipped", providers.ErrUnauthenticated)
	}

	searchResp, err := p.search(ctx, token, artist, title)
	if err != nil {
		return "", providers.NewProviderError(ProviderName, "search failed", err)
	}

	if len(searchResp.Results) == 0 {
		return "", providers.NewProviderError(ProviderName,
			fmt.Sprintf("no releases found for: %s - %s", artist, title), providers.ErrNoArtwork)
	}

	imageURL := strings.TrimSpace(searchResp.Results[0].ImageURL())
	if imageURL == "" {
		return "", providers.NewProviderError(ProviderName,
			fmt.Sprintf("release %d has no image", searchResp.Results[0].ID), providers.ErrNoArtwork)
	}

	log.Debugf("%s Found artwork for %s - %s: %s", logcolors.ProviderPrefix(ProviderName), artist, title, imageURL)
	return imageURL, nil
}
