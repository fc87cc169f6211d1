package extraction

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCleanArray(t *testing.T) {
	raw := `[
		{"composer": "Ludwig van Beethoven", "work": "Symphony No. 5", "performers": ["Carlos Kleiber", "Wiener Philharmoniker"], "label": "DG", "catalog_number": "447 400-2", "release_year": 1975},
		{"composer": "Gustav Mahler", "work": "Das Lied von der Erde", "performers": "Otto Klemperer"}
	]`

	candidates, outcome := Parse(raw)
	require.Equal(t, StatusOK, outcome.Status)
	require.Len(t, candidates, 2)

	assert.Equal(t, "Ludwig van Beethoven", candidates[0].Composer)
	assert.Equal(t, "Symphony No. 5", candidates[0].Work)
	assert.Equal(t, Performers{"Carlos Kleiber", "Wiener Philharmoniker"}, candidates[0].Performers)
	assert.Equal(t, Year(1975), candidates[0].ReleaseYear)

	// A bare string performer is tolerated and wrapped.
	assert.Equal(t, Performers{"Otto Klemperer"}, candidates[1].Performers)
}

func TestParseArrayEmbeddedInProse(t *testing.T) {
	raw := `Here is the data you asked for:

[{"composer": "J.S. Bach", "work": "Goldberg Variations", "release_year": "1981"}]

Let me know if you need anything else!`

	candidates, outcome := Parse(raw)
	require.Equal(t, StatusOK, outcome.Status)
	require.Len(t, candidates, 1)
	assert.Equal(t, "J.S. Bach", candidates[0].Composer)
	assert.Equal(t, Year(1981), candidates[0].ReleaseYear)
}

func TestParseMarkdownFence(t *testing.T) {
	raw := "```json\n[{\"composer\": \"Haydn\", \"work\": \"Die Schöpfung\"}]\n```"

	candidates, outcome := Parse(raw)
	require.Equal(t, StatusOK, outcome.Status)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Haydn", candidates[0].Composer)
}

func TestParseSingleObject(t *testing.T) {
	raw := `{"composer": "Schubert", "work": "Winterreise", "performers": ["Dietrich Fischer-Dieskau"]}`

	candidates, outcome := Parse(raw)
	require.Equal(t, StatusOK, outcome.Status)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Winterreise", candidates[0].Work)
}

func TestParseEmptyArrayIsNotAFailure(t *testing.T) {
	candidates, outcome := Parse("[]")
	assert.Equal(t, StatusEmpty, outcome.Status)
	assert.NotNil(t, candidates)
	assert.Empty(t, candidates)
	assert.False(t, outcome.Failed())
}

func TestParseGarbageFails(t *testing.T) {
	candidates, outcome := Parse("I'm sorry, I could not find any recordings on that page.")
	assert.True(t, outcome.Failed())
	assert.Nil(t, candidates)
	assert.Contains(t, outcome.Reason, "sha256")
}

func TestParseEmptyInputFails(t *testing.T) {
	_, outcome := Parse("   \n\t ")
	assert.True(t, outcome.Failed())
}

func TestParseDropsInvalidElements(t *testing.T) {
	raw := `[
		{"composer": "Brahms", "work": "Ein deutsches Requiem"},
		{"composer": "", "work": "Orphaned Work"},
		{"composer": "Composer Without Work"},
		"not even an object"
	]`

	candidates, outcome := Parse(raw)
	assert.Equal(t, StatusPartial, outcome.Status)
	assert.Equal(t, 3, outcome.Dropped)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Brahms", candidates[0].Composer)
}

func TestParseAllElementsDroppedIsEmpty(t *testing.T) {
	candidates, outcome := Parse(`[{"composer": "", "work": ""}]`)
	assert.Equal(t, StatusPartial, outcome.Status)
	assert.Empty(t, candidates)
}

func TestParseBracketsInsideStrings(t *testing.T) {
	raw := `Noise ["stray" [ before: [{"composer": "Berio", "work": "Sinfonia [1968]"}] trailing`

	// The first '[' opens a span that never balances cleanly into JSON, so
	// the parse of the recovered span may fail; what matters is no panic and
	// a deterministic outcome.
	candidates, outcome := Parse(raw)
	if outcome.Status == StatusOK {
		require.Len(t, candidates, 1)
		assert.Equal(t, "Sinfonia [1968]", candidates[0].Work)
	} else {
		assert.True(t, outcome.Failed())
	}
}

func TestParseFailureReasonTruncatesInput(t *testing.T) {
	_, outcome := Parse(strings.Repeat("x", 5000))
	require.True(t, outcome.Failed())
	assert.Less(t, len(outcome.Reason), 300)
}

func TestParseFailureReasonStaysValidUTF8(t *testing.T) {
	// One leading byte shifts every 3-byte rune off the truncation boundary.
	_, outcome := Parse("x" + strings.Repeat("€", 200))
	require.True(t, outcome.Failed())
	assert.True(t, utf8.ValidString(outcome.Reason), "reason %q", outcome.Reason)
}

func TestTruncateOnRuneBoundary(t *testing.T) {
	out := truncate("x"+strings.Repeat("€", 80), 120)
	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasSuffix(out, "..."))
	// 120 bytes would land mid-rune; the cut backs up to the rune start.
	assert.Equal(t, "x"+strings.Repeat("€", 39)+"...", out)
}
