// Package enrichment maps free-text composer and work names to canonical
// names and external identifiers via rate-limited lookup services. A lookup
// miss or failure never fails the pipeline: the record falls back to the raw
// text and the miss is reported as a soft warning.
package enrichment

import "context"

// ArtistInfo is the canonical form of an artist resolved by a lookup service.
type ArtistInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortName  string `json:"sort_name,omitempty"`
	Type      string `json:"type,omitempty"`
	Country   string `json:"country,omitempty"`
	BirthYear *int   `json:"birth_year,omitempty"`
	DeathYear *int   `json:"death_year,omitempty"`
}

// WorkInfo is the canonical form of a musical work resolved by a lookup
// service.
type WorkInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ComposerID   string `json:"composer_id,omitempty"`
	ComposerName string `json:"composer_name,omitempty"`
}

// ReleaseInfo carries release-level metadata from a catalog service.
type ReleaseInfo struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Year          *int   `json:"year,omitempty"`
	EAN           string `json:"ean,omitempty"`
	CoverURL      string `json:"cover_url,omitempty"`
	Label         string `json:"label,omitempty"`
	CatalogNumber string `json:"catalog_number,omitempty"`
}

// Client is the boundary to an external name-authority service. A nil result
// with a nil error means "not found"; an error means an I/O-level failure,
// which the enricher treats the same as a miss.
type Client interface {
	SearchArtist(ctx context.Context, name, artistType string) (*ArtistInfo, error)
	SearchWork(ctx context.Context, title, composerHint string) (*WorkInfo, error)
	GetArtistInfo(ctx context.Context, externalID string) (*ArtistInfo, error)
}

// ReleaseFinder is the optional boundary to a release catalog service such
// as Discogs.
type ReleaseFinder interface {
	FindRelease(ctx context.Context, catalogNumber, label, artist string) (*ReleaseInfo, error)
}
