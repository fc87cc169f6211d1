// Package discogs provides a rate-limited client for the Discogs API, used
// to fill release-level metadata (EAN, cover art, label, year) for
// recordings that carry a catalog number.
package discogs

// searchResponse represents a Discogs database search response
type searchResponse struct {
	Results []searchResult `json:"results"`
}

// searchResult is one entry from a Discogs database search
type searchResult struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	CatNo   string   `json:"catno,omitempty"`
	Country string   `json:"country,omitempty"`
	Year    string   `json:"year,omitempty"`
	Labels  []string `json:"label,omitempty"`
}

// release represents a full Discogs release
type release struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Country     string       `json:"country,omitempty"`
	Released    string       `json:"released,omitempty"`
	Year        int          `json:"year,omitempty"`
	Labels      []label      `json:"labels,omitempty"`
	Images      []image      `json:"images,omitempty"`
	Identifiers []identifier `json:"identifiers,omitempty"`
}

type label struct {
	Name  string `json:"name"`
	CatNo string `json:"catno,omitempty"`
}

type image struct {
	Type string `json:"type,omitempty"`
	URI  string `json:"uri,omitempty"`
}

type identifier struct {
	Type  string `json:"type,omitempty"`
	Value string `json:"value,omitempty"`
}
