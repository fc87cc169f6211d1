package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjenvw/repertoire/internal/config"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Beethoven</title><style>body { color: red }</style></head>
<body>
<nav><p>Home / Composers / B</p></nav>
<article>
  <h1>Ludwig van Beethoven</h1>
  <p>Beethoven's nine symphonies remain the backbone of the orchestral repertoire.</p>
  <script>trackPageView("beethoven");</script>
  <div>The late string quartets, opp. 127 through 135, were long considered unplayable.</div>
  <p>ok</p>
</article>
<footer><p>All rights reserved, musicalifeiten.nl</p></footer>
</body>
</html>`

func testScraper(t *testing.T, baseURL string, throttle time.Duration) *Scraper {
	t.Helper()
	s, err := New(config.ScraperConfig{
		BaseURL:   baseURL,
		UserAgent: "Repertoire/0.1.0 (test)",
		Throttle:  throttle,
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)
	return s
}

func TestExtractParagraphsArticleOnly(t *testing.T) {
	paragraphs := ExtractParagraphs(samplePage)

	require.Len(t, paragraphs, 3)
	assert.Equal(t, "Ludwig van Beethoven", paragraphs[0])
	assert.Contains(t, paragraphs[1], "nine symphonies")
	assert.Contains(t, paragraphs[2], "string quartets")

	joined := strings.Join(paragraphs, "\n")
	assert.NotContains(t, joined, "trackPageView")
	assert.NotContains(t, joined, "color: red")
	assert.NotContains(t, joined, "All rights reserved")
	assert.NotContains(t, joined, "Home / Composers")
}

func TestExtractParagraphsDropsShortFragments(t *testing.T) {
	paragraphs := ExtractParagraphs(`<article><p>ok</p><p>short</p></article>`)
	assert.Empty(t, paragraphs)
}

func TestExtractParagraphsCollapsesWhitespace(t *testing.T) {
	paragraphs := ExtractParagraphs("<article><p>Symphony   no. 5\n\tin C minor</p></article>")
	require.Len(t, paragraphs, 1)
	assert.Equal(t, "Symphony no. 5 in C minor", paragraphs[0])
}

func TestExtractParagraphsGarbageInput(t *testing.T) {
	assert.Empty(t, ExtractParagraphs("<<<>>> not html at all <"))
	assert.Empty(t, ExtractParagraphs(""))
}

func TestFetchSetsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	s := testScraper(t, server.URL, 0)
	page, err := s.Fetch(context.Background(), server.URL+"/discographies/beethoven")
	require.NoError(t, err)

	assert.Equal(t, "Repertoire/0.1.0 (test)", gotUA)
	assert.Contains(t, page.HTML, "nine symphonies")
	assert.Len(t, page.Paragraphs(), 3)
}

func TestFetchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	s := testScraper(t, server.URL, 0)
	_, err := s.Fetch(context.Background(), server.URL+"/gone")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestFetchConnectionRefused(t *testing.T) {
	s := testScraper(t, "http://127.0.0.1:1", 0)
	_, err := s.Fetch(context.Background(), "http://127.0.0.1:1/")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.StatusCode)
	assert.NotNil(t, errors.Unwrap(fetchErr))
}

func TestFetchRandomUsesLetterIndex(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	s := testScraper(t, server.URL, 0)
	page, err := s.FetchRandom(context.Background(), "portretten")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/composers/by-name/"), "path %q", gotPath)
	assert.True(t, strings.HasSuffix(gotPath, "/"))
	assert.NotEmpty(t, page.HTML)
}

func TestFetchRandomUnknownRubric(t *testing.T) {
	s := testScraper(t, "http://example.invalid", 0)
	_, err := s.FetchRandom(context.Background(), "no-such-rubric")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "portretten")
}

func TestThrottleSpacesRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<article><p>throttle test paragraph</p></article>"))
	}))
	defer server.Close()

	s := testScraper(t, server.URL, 50*time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := s.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}
