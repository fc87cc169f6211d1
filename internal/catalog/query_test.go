package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjenvw/repertoire/internal/enrichment"
	"github.com/arjenvw/repertoire/internal/extraction"
)

func seedCollection(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()

	records := []enrichment.Record{
		{
			Candidate: extraction.Candidate{Composer: "Ludwig van Beethoven", Work: "Symphony No. 5", Label: "DG"},
			Composer:  enrichment.ComposerResolution{Name: "Ludwig van Beethoven", CanonicalName: strPtr("Ludwig van Beethoven"), ExternalID: strPtr("lvb")},
			Work:      enrichment.WorkResolution{Title: "Symphony No. 5", CanonicalTitle: strPtr("Symphony no. 5 in C minor, op. 67")},
		},
		{
			Candidate: extraction.Candidate{Composer: "Ludwig van Beethoven", Work: "Symphony No. 9", Label: "Decca"},
			Composer:  enrichment.ComposerResolution{Name: "Ludwig van Beethoven", CanonicalName: strPtr("Ludwig van Beethoven"), ExternalID: strPtr("lvb")},
			Work:      enrichment.WorkResolution{Title: "Symphony No. 9"},
		},
		{
			Candidate: extraction.Candidate{Composer: "Gustav Mahler", Work: "Symphony No. 2", Label: "Decca"},
			Composer:  enrichment.ComposerResolution{Name: "Gustav Mahler", CanonicalName: strPtr("Gustav Mahler"), ExternalID: strPtr("gm")},
			Work:      enrichment.WorkResolution{Title: "Symphony No. 2"},
		},
	}
	for _, rec := range records {
		_, err := store.Upsert(ctx, rec)
		require.NoError(t, err)
	}
}

func TestRecordingsComposerFilterIsCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	seedCollection(t, store)

	recordings, err := store.Recordings(context.Background(), Filter{Composer: "beethoven"})
	require.NoError(t, err)
	require.Len(t, recordings, 2)
	for _, rec := range recordings {
		require.NotNil(t, rec.Work)
		assert.Equal(t, "Ludwig van Beethoven", rec.Work.Composer.Name)
	}
}

func TestRecordingsFiltersAreANDed(t *testing.T) {
	store := newTestStore(t)
	seedCollection(t, store)

	recordings, err := store.Recordings(context.Background(), Filter{
		Composer: "beethoven",
		Label:    "decca",
	})
	require.NoError(t, err)
	require.Len(t, recordings, 1)
	assert.Equal(t, "Symphony No. 9", recordings[0].Title)
}

func TestRecordingsWorkFilterMatchesCanonicalTitle(t *testing.T) {
	store := newTestStore(t)
	seedCollection(t, store)

	recordings, err := store.Recordings(context.Background(), Filter{Work: "c minor"})
	require.NoError(t, err)
	require.Len(t, recordings, 1)
	assert.Equal(t, "Symphony No. 5", recordings[0].Title)
}

func TestRecordingsNoFiltersReturnsEverything(t *testing.T) {
	store := newTestStore(t)
	seedCollection(t, store)

	recordings, err := store.Recordings(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, recordings, 3)
}

func TestRecordingsInLibraryFilter(t *testing.T) {
	store := newTestStore(t)
	seedCollection(t, store)
	ctx := context.Background()

	all, err := store.Recordings(ctx, Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, all)
	require.NoError(t, store.SetInLibrary(ctx, all[0].ID, true))

	inLib := true
	recordings, err := store.Recordings(ctx, Filter{InLibrary: &inLib})
	require.NoError(t, err)
	require.Len(t, recordings, 1)
	assert.Equal(t, all[0].ID, recordings[0].ID)
}

func TestRecordingsLimit(t *testing.T) {
	store := newTestStore(t)
	seedCollection(t, store)

	recordings, err := store.Recordings(context.Background(), Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, recordings, 2)
}

func TestGetStats(t *testing.T) {
	store := newTestStore(t)
	seedCollection(t, store)
	ctx := context.Background()

	all, err := store.Recordings(ctx, Filter{})
	require.NoError(t, err)
	require.NoError(t, store.SetInLibrary(ctx, all[0].ID, true))

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalRecordings)
	assert.EqualValues(t, 1, stats.InLibrary)
	assert.EqualValues(t, 2, stats.UniqueComposers)
}

func TestGetStatsEmptyCollection(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.GetStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.TotalRecordings)
	assert.EqualValues(t, 0, stats.InLibrary)
	assert.EqualValues(t, 0, stats.UniqueComposers)
}
