package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores an ordered list of strings as a JSON text column.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

// Composer represents a classical composer
type Composer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"not null;index" json:"name"`
	CanonicalName *string   `gorm:"index" json:"canonical_name,omitempty"`
	BirthYear     *int      `json:"birth_year,omitempty"`
	DeathYear     *int      `json:"death_year,omitempty"`
	ExternalID    *string   `gorm:"uniqueIndex" json:"external_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Work represents a musical work by a composer
type Work struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ComposerID     uint      `gorm:"not null;index" json:"composer_id"`
	Composer       Composer  `gorm:"foreignKey:ComposerID" json:"composer,omitempty"`
	Title          string    `gorm:"not null" json:"title"`
	CanonicalTitle *string   `json:"canonical_title,omitempty"`
	ExternalID     *string   `gorm:"uniqueIndex" json:"external_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Recording represents one recording of a work. Repeated ingestion of the
// same recording creates additional rows; the table is a scrape log, not a
// deduplicated catalog.
type Recording struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	WorkID        *uint      `gorm:"index" json:"work_id,omitempty"`
	Work          *Work      `gorm:"foreignKey:WorkID" json:"work,omitempty"`
	Title         string     `gorm:"not null" json:"title"`
	Performers    StringList `gorm:"type:text" json:"performers"`
	Label         string     `json:"label,omitempty"`
	CatalogNumber string     `json:"catalog_number,omitempty"`
	ReleaseYear   *int       `json:"release_year,omitempty"`
	EAN           string     `json:"ean,omitempty"`
	CoverURL      string     `json:"cover_url,omitempty"`
	DiscogsID     *int64     `json:"discogs_id,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	InLibrary     bool       `gorm:"default:false" json:"in_library"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
