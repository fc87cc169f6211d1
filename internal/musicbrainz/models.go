// Package musicbrainz provides a rate-limited client for the MusicBrainz
// web service, used to standardize composer names and work titles.
package musicbrainz

// artistSearchResponse represents a MusicBrainz artist search response
type artistSearchResponse struct {
	Artists []Artist `json:"artists"`
	Count   int      `json:"count"`
}

// Artist represents a MusicBrainz artist
type Artist struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	SortName string   `json:"sort-name,omitempty"`
	Type     string   `json:"type,omitempty"`
	Country  string   `json:"country,omitempty"`
	Score    int      `json:"score,omitempty"`
	LifeSpan LifeSpan `json:"life-span,omitempty"`
}

// LifeSpan represents an artist's life span; Begin and End are dates in
// "YYYY", "YYYY-MM" or "YYYY-MM-DD" form.
type LifeSpan struct {
	Begin string `json:"begin,omitempty"`
	End   string `json:"end,omitempty"`
	Ended bool   `json:"ended,omitempty"`
}

// workSearchResponse represents a MusicBrainz work search response
type workSearchResponse struct {
	Works []Work `json:"works"`
	Count int    `json:"count"`
}

// Work represents a MusicBrainz work
type Work struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Type      string     `json:"type,omitempty"`
	Language  string     `json:"language,omitempty"`
	Score     int        `json:"score,omitempty"`
	Relations []Relation `json:"relations,omitempty"`
}

// Relation represents a MusicBrainz work relation
type Relation struct {
	TypeID string         `json:"type-id,omitempty"`
	Type   string         `json:"type,omitempty"`
	Artist RelationArtist `json:"artist,omitempty"`
}

// RelationArtist is the artist referenced by a work relation
type RelationArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// composerRelationTypeID is the MusicBrainz relation type for "composer".
const composerRelationTypeID = "ea6f0698-6782-30d6-b16d-293081b66774"
