package artwork

import (
	"net/url"
	"strings"
)

// DefaultHosts are the host substrings of the stream providers artwork is looked up for
var DefaultHosts = []string{"di.fm", "digitallyimported"}

// Filter decides which streams may trigger an artwork lookup.
// A stream is eligible when its host contains one of the configured substrings, case-insensitively.
type Filter struct {
	hosts []string
}

// NewFilter creates a Filter for the given host substrings.
// Blank entries are ignored; when nothing is left DefaultHosts is used.
func NewFilter(hosts []string) *Filter {
	f := &Filter{}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			f.hosts = append(f.hosts, h)
		}
	}
	if len(f.hosts) == 0 {
		f.hosts = append(f.hosts, DefaultHosts...)
	}
	return f
}

// Hosts returns a copy of the configured host substrings
func (f *Filter) Hosts() []string {
	out := make([]string, len(f.hosts))
	copy(out, f.hosts)
	return out
}

// IsEligible reports whether streamURL belongs to a supported provider
func (f *Filter) IsEligible(streamURL *url.URL) bool {
	if f == nil || streamURL == nil {
		return false
	}

	host := strings.ToLower(streamURL.Hostname())
	if host == "" {
		return false
	}

	for _, h := range f.hosts {
		if strings.Contains(host, h) {
			return true
		}
	}
	return false
}
