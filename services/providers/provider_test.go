package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

type fixedProvider struct {
	name       string
	artworkURL string
}

func (p *fixedProvider) Name() string { return p.name }

func (p *fixedProvider) FetchArtwork(ctx context.Context, artist, title string) (string, error) {
	if p.artworkURL == "" {
		return "", NewProviderError(p.name, "nothing for "+artist+" - "+title, ErrNoArtwork)
	}
	return p.artworkURL, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&fixedProvider{name: "Discogs", artworkURL: "http://img/1"})

	tests := []struct {
		lookup string
		found  bool
	}{
		{"discogs", true},
		{"DISCOGS", true},
		{"  discogs ", true},
		{"deezer", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.lookup), func(t *testing.T) {
			p, err := r.Get(tt.lookup)
			if tt.found {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if p.Name() != "Discogs" {
					t.Errorf("Expected the registered provider, got %s", p.Name())
				}
				return
			}
			if !errors.Is(err, ErrProviderNotFound) {
				t.Errorf("Expected ErrProviderNotFound, got %v", err)
			}
			if r.Has(tt.lookup) {
				t.Errorf("Has(%q) should be false", tt.lookup)
			}
		})
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(&fixedProvider{name: "discogs", artworkURL: "http://img/old"})
	r.Register(&fixedProvider{name: "discogs", artworkURL: "http://img/new"})

	p, err := r.Get("discogs")
	if err != nil {
		t.Fatalf("Failed to get provider: %v", err)
	}
	got, err := p.FetchArtwork(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "http://img/new" {
		t.Errorf("Expected http://img/new, got %s", got)
	}
	if len(r.List()) != 1 {
		t.Errorf("Expected a single entry, got %v", r.List())
	}
}

func TestRegistry_ListSorted(t *testing.T) {
	if names := NewRegistry().List(); len(names) != 0 {
		t.Errorf("Expected empty list, got %v", names)
	}

	r := NewRegistry()
	r.Register(&fixedProvider{name: "musicbrainz"})
	r.Register(&fixedProvider{name: "Deezer"})
	r.Register(&fixedProvider{name: "discogs"})

	names := r.List()
	expected := []string{"deezer", "discogs", "musicbrainz"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %d names, got %v", len(expected), names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("names[%d] = %q, expected %q", i, names[i], expected[i])
		}
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				r.Register(&fixedProvider{name: fmt.Sprintf("provider-%d", id)})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.List()
				r.Get("provider-0")
			}
		}()
	}
	wg.Wait()

	if len(r.List()) != 10 {
		t.Errorf("Expected 10 providers after concurrent registration, got %d", len(r.List()))
	}
}

func TestGlobalRegistry(t *testing.T) {
	if GetRegistry() != GetRegistry() {
		t.Error("GetRegistry should return the same instance")
	}

	Register(&fixedProvider{name: "global-test-provider", artworkURL: "http://img"})
	if !Has("global-test-provider") {
		t.Error("Expected global registry to contain registered provider")
	}
	if _, err := Get("definitely-not-registered"); !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("Expected ErrProviderNotFound, got %v", err)
	}
	found := false
	for _, name := range List() {
		if name == "global-test-provider" {
			found = true
		}
	}
	if !found {
		t.Error("Expected List to include the registered provider")
	}
}
