package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arjenvw/repertoire/internal/database"
	"github.com/arjenvw/repertoire/internal/enrichment"
	"github.com/arjenvw/repertoire/internal/extraction"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return NewStore(db)
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func enrichedMozart() enrichment.Record {
	return enrichment.Record{
		Candidate: extraction.Candidate{
			Composer:   "W.A. Mozart",
			Work:       "Sym 41",
			Performers: extraction.Performers{"Karl Böhm", "Berliner Philharmoniker"},
			Label:      "DG",
		},
		Composer: enrichment.ComposerResolution{
			Name:          "W.A. Mozart",
			CanonicalName: strPtr("Wolfgang Amadeus Mozart"),
			ExternalID:    strPtr("abc"),
			BirthYear:     intPtr(1756),
			DeathYear:     intPtr(1791),
		},
		Work: enrichment.WorkResolution{
			Title:          "Sym 41",
			CanonicalTitle: strPtr("Symphony No. 41 in C major, K. 551"),
			ExternalID:     strPtr("w-41"),
		},
	}
}

func TestUpsertCreatesComposerWorkRecording(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Upsert(ctx, enrichedMozart())
	require.NoError(t, err)
	require.NotZero(t, id)

	var composer database.Composer
	require.NoError(t, store.db.First(&composer, "name = ?", "W.A. Mozart").Error)
	require.NotNil(t, composer.CanonicalName)
	assert.Equal(t, "Wolfgang Amadeus Mozart", *composer.CanonicalName)
	require.NotNil(t, composer.ExternalID)
	assert.Equal(t, "abc", *composer.ExternalID)
	require.NotNil(t, composer.BirthYear)
	assert.Equal(t, 1756, *composer.BirthYear)

	var work database.Work
	require.NoError(t, store.db.First(&work, "composer_id = ?", composer.ID).Error)
	assert.Equal(t, "Sym 41", work.Title)
	require.NotNil(t, work.CanonicalTitle)
	assert.Equal(t, "Symphony No. 41 in C major, K. 551", *work.CanonicalTitle)

	var recording database.Recording
	require.NoError(t, store.db.First(&recording, id).Error)
	require.NotNil(t, recording.WorkID)
	assert.Equal(t, work.ID, *recording.WorkID)
	assert.Equal(t, database.StringList{"Karl Böhm", "Berliner Philharmoniker"}, recording.Performers)
	assert.False(t, recording.InLibrary)
}

func TestUpsertReusesComposerAndWork(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, enrichedMozart())
	require.NoError(t, err)
	_, err = store.Upsert(ctx, enrichedMozart())
	require.NoError(t, err)

	var composerCount, workCount, recordingCount int64
	store.db.Model(&database.Composer{}).Count(&composerCount)
	store.db.Model(&database.Work{}).Count(&workCount)
	store.db.Model(&database.Recording{}).Count(&recordingCount)

	assert.EqualValues(t, 1, composerCount, "same composer resolves to one row")
	assert.EqualValues(t, 1, workCount, "same work resolves to one row")
	// Recordings are never deduplicated; the table is a scrape log.
	assert.EqualValues(t, 2, recordingCount)
}

func TestUpsertUnenrichedRecordKeepsRawText(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := enrichment.Record{
		Candidate: extraction.Candidate{Composer: "Obscure Composer", Work: "Lost Opus"},
		Composer:  enrichment.ComposerResolution{Name: "Obscure Composer"},
		Work:      enrichment.WorkResolution{Title: "Lost Opus"},
		Misses:    []string{"composer lookup failed: Obscure Composer"},
	}
	_, err := store.Upsert(ctx, rec)
	require.NoError(t, err)

	var composer database.Composer
	require.NoError(t, store.db.First(&composer, "name = ?", "Obscure Composer").Error)
	assert.Nil(t, composer.CanonicalName)
	assert.Nil(t, composer.ExternalID)
}

func TestUpsertBackfillsCanonicalFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// First pass: the lookup missed, only the raw name is stored.
	raw := enrichment.Record{
		Candidate: extraction.Candidate{Composer: "W.A. Mozart", Work: "Sym 41"},
		Composer:  enrichment.ComposerResolution{Name: "W.A. Mozart"},
		Work:      enrichment.WorkResolution{Title: "Sym 41"},
	}
	_, err := store.Upsert(ctx, raw)
	require.NoError(t, err)

	// Second pass: the lookup succeeded; the existing row gains the
	// canonical fields instead of a duplicate being created.
	_, err = store.Upsert(ctx, enrichedMozart())
	require.NoError(t, err)

	var count int64
	store.db.Model(&database.Composer{}).Count(&count)
	assert.EqualValues(t, 1, count)

	var composer database.Composer
	require.NoError(t, store.db.First(&composer, "name = ?", "W.A. Mozart").Error)
	require.NotNil(t, composer.CanonicalName)
	assert.Equal(t, "Wolfgang Amadeus Mozart", *composer.CanonicalName)
	require.NotNil(t, composer.ExternalID)
	assert.Equal(t, "abc", *composer.ExternalID)
}

func TestUpsertResolvesComposerByExternalIDFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, enrichedMozart())
	require.NoError(t, err)

	// Different raw spelling, same external ID: must reuse the row.
	rec := enrichedMozart()
	rec.Candidate.Composer = "Mozart, W.A."
	rec.Composer.Name = "Mozart, W.A."
	_, err = store.Upsert(ctx, rec)
	require.NoError(t, err)

	var count int64
	store.db.Model(&database.Composer{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUpsertAppliesReleaseMetadata(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := enrichedMozart()
	rec.Candidate.CatalogNumber = "DGG 439-947-2"
	rec.Release = &enrichment.ReleaseInfo{
		ID:            445566,
		Title:         "Mozart: Late Symphonies",
		Year:          intPtr(1993),
		EAN:           "028943994728",
		CoverURL:      "http://img/front.jpg",
		Label:         "Deutsche Grammophon",
		CatalogNumber: "439 947-2",
	}

	id, err := store.Upsert(ctx, rec)
	require.NoError(t, err)

	var recording database.Recording
	require.NoError(t, store.db.First(&recording, id).Error)
	assert.Equal(t, "Mozart: Late Symphonies", recording.Title)
	assert.Equal(t, "Deutsche Grammophon", recording.Label)
	assert.Equal(t, "439 947-2", recording.CatalogNumber)
	require.NotNil(t, recording.ReleaseYear)
	assert.Equal(t, 1993, *recording.ReleaseYear)
	assert.Equal(t, "028943994728", recording.EAN)
	require.NotNil(t, recording.DiscogsID)
	assert.EqualValues(t, 445566, *recording.DiscogsID)
}

func TestSetInLibrary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Upsert(ctx, enrichedMozart())
	require.NoError(t, err)

	require.NoError(t, store.SetInLibrary(ctx, id, true))

	var recording database.Recording
	require.NoError(t, store.db.First(&recording, id).Error)
	assert.True(t, recording.InLibrary)

	err = store.SetInLibrary(ctx, 99999, true)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
