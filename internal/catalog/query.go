package catalog

import (
	"context"
	"strings"

	"github.com/arjenvw/repertoire/internal/database"
)

// DefaultQueryLimit bounds queries that do not ask for a limit.
const DefaultQueryLimit = 100

// Filter narrows a recordings query. String filters are case-insensitive
// substring matches, ANDed together; empty fields impose no constraint.
type Filter struct {
	Composer  string
	Work      string
	Label     string
	InLibrary *bool
	Limit     int
}

// Stats summarizes the collection.
type Stats struct {
	TotalRecordings int64 `json:"total_recordings"`
	InLibrary       int64 `json:"in_library"`
	UniqueComposers int64 `json:"unique_composers"`
}

// Recordings returns recordings matching the filter with their work and
// composer joined. Read-only.
func (s *Store) Recordings(ctx context.Context, f Filter) ([]database.Recording, error) {
	q := s.db.WithContext(ctx).
		Model(&database.Recording{}).
		Preload("Work").
		Preload("Work.Composer")

	if f.Composer != "" {
		pattern := contains(f.Composer)
		q = q.Where(
			"work_id IN (SELECT works.id FROM works JOIN composers ON composers.id = works.composer_id"+
				" WHERE LOWER(composers.name) LIKE ? OR LOWER(COALESCE(composers.canonical_name, '')) LIKE ?)",
			pattern, pattern,
		)
	}
	if f.Work != "" {
		pattern := contains(f.Work)
		q = q.Where(
			"(LOWER(recordings.title) LIKE ?"+
				" OR work_id IN (SELECT works.id FROM works"+
				" WHERE LOWER(works.title) LIKE ? OR LOWER(COALESCE(works.canonical_title, '')) LIKE ?))",
			pattern, pattern, pattern,
		)
	}
	if f.Label != "" {
		q = q.Where("LOWER(recordings.label) LIKE ?", contains(f.Label))
	}
	if f.InLibrary != nil {
		q = q.Where("recordings.in_library = ?", *f.InLibrary)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	var recordings []database.Recording
	if err := q.Order("recordings.id").Limit(limit).Find(&recordings).Error; err != nil {
		return nil, err
	}
	return recordings, nil
}

// GetStats returns collection-level statistics. Read-only.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats
	db := s.db.WithContext(ctx)

	if err := db.Model(&database.Recording{}).Count(&stats.TotalRecordings).Error; err != nil {
		return Stats{}, err
	}
	if err := db.Model(&database.Recording{}).Where("in_library = ?", true).Count(&stats.InLibrary).Error; err != nil {
		return Stats{}, err
	}
	err := db.Model(&database.Recording{}).
		Joins("JOIN works ON works.id = recordings.work_id").
		Distinct("works.composer_id").
		Count(&stats.UniqueComposers).Error
	if err != nil {
		return Stats{}, err
	}

	return stats, nil
}

func contains(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
