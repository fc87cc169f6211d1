// Package catalog persists enriched records into the relational store and
// serves filtered reads for the browsing UI.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/arjenvw/repertoire/internal/database"
	"github.com/arjenvw/repertoire/internal/enrichment"
)

// Store wraps the database for the persistence and query stages.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store over an open database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Upsert persists one enriched record in its own transaction. The composer
// and work are resolved by precedence (external ID, then canonical name,
// then raw name) and reused when found; the recording row is always
// inserted. Recordings are intentionally not deduplicated: the table mirrors
// a scrape log, and re-ingesting the same data creates additional rows.
func (s *Store) Upsert(ctx context.Context, rec enrichment.Record) (uint, error) {
	var recordingID uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		composer, err := resolveComposer(tx, rec.Composer)
		if err != nil {
			return fmt.Errorf("resolve composer: %w", err)
		}

		work, err := resolveWork(tx, composer.ID, rec.Work)
		if err != nil {
			return fmt.Errorf("resolve work: %w", err)
		}

		recording := buildRecording(rec)
		if work != nil {
			recording.WorkID = &work.ID
		}
		if err := tx.Create(&recording).Error; err != nil {
			return fmt.Errorf("insert recording: %w", err)
		}
		recordingID = recording.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return recordingID, nil
}

// SetInLibrary toggles the in-library flag on one recording.
func (s *Store) SetInLibrary(ctx context.Context, id uint, inLibrary bool) error {
	result := s.db.WithContext(ctx).
		Model(&database.Recording{}).
		Where("id = ?", id).
		Update("in_library", inLibrary)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// resolveComposer finds or creates the composer row for a resolution.
// Precedence: external ID, canonical name, raw name, insert. When an
// existing row is reused, canonical fields it is missing are backfilled
// from the resolution so a later, better-enriched ingestion improves the
// row instead of being ignored.
func resolveComposer(tx *gorm.DB, res enrichment.ComposerResolution) (*database.Composer, error) {
	var composer database.Composer

	lookups := []func() *gorm.DB{}
	if res.ExternalID != nil {
		lookups = append(lookups, func() *gorm.DB {
			return tx.Where("external_id = ?", *res.ExternalID)
		})
	}
	if res.CanonicalName != nil {
		lookups = append(lookups, func() *gorm.DB {
			return tx.Where("canonical_name = ?", *res.CanonicalName)
		})
	}
	lookups = append(lookups, func() *gorm.DB {
		return tx.Where("name = ?", res.Name)
	})

	for _, lookup := range lookups {
		err := lookup().First(&composer).Error
		if err == nil {
			return backfillComposer(tx, &composer, res)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	composer = database.Composer{
		Name:          res.Name,
		CanonicalName: res.CanonicalName,
		ExternalID:    res.ExternalID,
		BirthYear:     res.BirthYear,
		DeathYear:     res.DeathYear,
	}
	if err := tx.Create(&composer).Error; err != nil {
		return nil, err
	}
	return &composer, nil
}

func backfillComposer(tx *gorm.DB, composer *database.Composer, res enrichment.ComposerResolution) (*database.Composer, error) {
	updates := map[string]interface{}{}
	if composer.CanonicalName == nil && res.CanonicalName != nil {
		updates["canonical_name"] = *res.CanonicalName
		composer.CanonicalName = res.CanonicalName
	}
	if composer.ExternalID == nil && res.ExternalID != nil {
		updates["external_id"] = *res.ExternalID
		composer.ExternalID = res.ExternalID
	}
	if composer.BirthYear == nil && res.BirthYear != nil {
		updates["birth_year"] = *res.BirthYear
		composer.BirthYear = res.BirthYear
	}
	if composer.DeathYear == nil && res.DeathYear != nil {
		updates["death_year"] = *res.DeathYear
		composer.DeathYear = res.DeathYear
	}
	if len(updates) == 0 {
		return composer, nil
	}
	if err := tx.Model(composer).Updates(updates).Error; err != nil {
		return nil, err
	}
	return composer, nil
}

// resolveWork finds or creates the work row, scoped to the composer. Same
// precedence as composers. A nil resolution title yields no work (the
// recording stays orphaned).
func resolveWork(tx *gorm.DB, composerID uint, res enrichment.WorkResolution) (*database.Work, error) {
	if res.Title == "" {
		return nil, nil
	}

	var work database.Work

	lookups := []func() *gorm.DB{}
	if res.ExternalID != nil {
		lookups = append(lookups, func() *gorm.DB {
			return tx.Where("external_id = ?", *res.ExternalID)
		})
	}
	if res.CanonicalTitle != nil {
		lookups = append(lookups, func() *gorm.DB {
			return tx.Where("composer_id = ? AND canonical_title = ?", composerID, *res.CanonicalTitle)
		})
	}
	lookups = append(lookups, func() *gorm.DB {
		return tx.Where("composer_id = ? AND title = ?", composerID, res.Title)
	})

	for _, lookup := range lookups {
		err := lookup().First(&work).Error
		if err == nil {
			return backfillWork(tx, &work, res)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	work = database.Work{
		ComposerID:     composerID,
		Title:          res.Title,
		CanonicalTitle: res.CanonicalTitle,
		ExternalID:     res.ExternalID,
	}
	if err := tx.Create(&work).Error; err != nil {
		return nil, err
	}
	return &work, nil
}

func backfillWork(tx *gorm.DB, work *database.Work, res enrichment.WorkResolution) (*database.Work, error) {
	updates := map[string]interface{}{}
	if work.CanonicalTitle == nil && res.CanonicalTitle != nil {
		updates["canonical_title"] = *res.CanonicalTitle
		work.CanonicalTitle = res.CanonicalTitle
	}
	if work.ExternalID == nil && res.ExternalID != nil {
		updates["external_id"] = *res.ExternalID
		work.ExternalID = res.ExternalID
	}
	if len(updates) == 0 {
		return work, nil
	}
	if err := tx.Model(work).Updates(updates).Error; err != nil {
		return nil, err
	}
	return work, nil
}

// buildRecording maps an enriched record onto a recording row. Release
// metadata from the catalog service wins over the candidate's free text.
func buildRecording(rec enrichment.Record) database.Recording {
	cand := rec.Candidate

	recording := database.Recording{
		Title:         cand.Work,
		Performers:    database.StringList(cand.Performers),
		Label:         cand.Label,
		CatalogNumber: cand.CatalogNumber,
		Notes:         cand.Notes,
	}
	if cand.ReleaseYear != 0 {
		year := int(cand.ReleaseYear)
		recording.ReleaseYear = &year
	}

	if rel := rec.Release; rel != nil {
		if rel.Title != "" {
			recording.Title = rel.Title
		}
		if rel.Label != "" {
			recording.Label = rel.Label
		}
		if rel.CatalogNumber != "" {
			recording.CatalogNumber = rel.CatalogNumber
		}
		if rel.Year != nil {
			recording.ReleaseYear = rel.Year
		}
		recording.EAN = rel.EAN
		recording.CoverURL = rel.CoverURL
		id := rel.ID
		recording.DiscogsID = &id
	}

	return recording
}
