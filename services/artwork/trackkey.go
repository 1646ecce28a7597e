package artwork

import (
	"errors"
	"strings"
)

const separator = " - "

// ErrNotParseable is returned when no artist and title can be derived from the now playing text
var ErrNotParseable = errors.New("now playing text is not parseable")

// Track is an artist/title pair, both trimmed and non-empty
type Track struct {
	Artist string
	Title  string
}

// Key returns the canonical lookup key for the track
func (t Track) Key() string {
	return CanonicalKey(t.Artist, t.Title)
}

// CanonicalKey builds the lookup key: case-folded, trimmed, single separator.
// No other normalization is applied.
func CanonicalKey(artist, title string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimSpace(artist) + separator + strings.TrimSpace(title)))
}

// DeriveArtistTitle extracts the artist and title from a now playing string.
//
// "Artist - Title" splits on every separator: the first segment is the artist and
// the rest, joined back with the separator, is the title. Text without a separator
// is used as the title with station as the artist.
func DeriveArtistTitle(nowPlaying, station string) (Track, error) {
	text := strings.TrimSpace(nowPlaying)

	var t Track
	if strings.Contains(text, separator) {
		parts := strings.Split(text, separator)
		t.Artist = strings.TrimSpace(parts[0])
		t.Title = strings.TrimSpace(strings.Join(parts[1:], separator))
	} else if st := strings.TrimSpace(station); st != "" && text != "" {
		t.Artist = st
		t.Title = text
	}

	if t.Artist == "" || t.Title == "" {
		return Track{}, ErrNotParseable
	}
	return t, nil
}
