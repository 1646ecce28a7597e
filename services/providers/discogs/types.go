package discogs

// SearchResponse is the subset of the Discogs database search payload used for artwork
type SearchResponse struct {
	Pagination *Pagination    `json:"pagination,omitempty"`
	Results    []SearchResult `json:"results"`
}

// Pagination mirrors the pagination block Discogs returns with every search
type Pagination struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Items   int `json:"items"`
}

// SearchResult is a single release hit
type SearchResult struct {
	ID         int    `json:"id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	CoverImage string `json:"cover_image"`
	Thumb      string `json:"thumb"`
}

// ImageURL returns the primary cover image, falling back to the thumbnail.
// Empty when neither is set.
func (r SearchResult) ImageURL() string {
	if r.CoverImage != "" {
		return r.CoverImage
	}
	return r.Thumb
}
