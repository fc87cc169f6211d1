package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/arjenvw/repertoire/internal/enrichment"
)

// DefaultBaseURL is the MusicBrainz API base URL
const DefaultBaseURL = "https://musicbrainz.org/ws/2"

// Client handles communication with the MusicBrainz API. It implements
// enrichment.Client.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rateLimiter
	log         hclog.Logger
}

// rateLimiter enforces a minimum spacing between requests. The mutex is held
// across the sleep so that all callers targeting the service funnel through
// one paced dispatch path.
type rateLimiter struct {
	mu          sync.Mutex
	lastRequest time.Time
	interval    time.Duration
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if elapsed := time.Since(r.lastRequest); elapsed < r.interval {
		time.Sleep(r.interval - elapsed)
	}
	r.lastRequest = time.Now()
}

// Config configures a MusicBrainz client.
type Config struct {
	BaseURL   string
	UserAgent string
	// RateLimit is the request ceiling in requests per second.
	RateLimit float64
	Timeout   time.Duration
	Logger    hclog.Logger
}

// NewClient creates a new MusicBrainz API client
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = 1.0
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  cfg.UserAgent,
		rateLimiter: &rateLimiter{
			interval: time.Duration(float64(time.Second) / rateLimit),
		},
		log: log.Named("musicbrainz"),
	}
}

// SearchArtist searches for an artist by name. A nil result with nil error
// means no match.
func (c *Client) SearchArtist(ctx context.Context, name, artistType string) (*enrichment.ArtistInfo, error) {
	query := fmt.Sprintf("artist:%q", name)
	if artistType != "" {
		query += fmt.Sprintf(" AND type:%q", artistType)
	}

	var response artistSearchResponse
	if err := c.get(ctx, "/artist", url.Values{
		"query": {query},
		"limit": {"5"},
		"fmt":   {"json"},
	}, &response); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if len(response.Artists) == 0 {
		return nil, nil
	}
	// The first result is the best match.
	return mapArtist(&response.Artists[0]), nil
}

// SearchWork searches for a musical work, optionally narrowed by a composer
// name hint.
func (c *Client) SearchWork(ctx context.Context, title, composerHint string) (*enrichment.WorkInfo, error) {
	query := fmt.Sprintf("work:%q", title)
	if composerHint != "" {
		query += fmt.Sprintf(" AND artist:%q", composerHint)
	}

	var response workSearchResponse
	if err := c.get(ctx, "/work", url.Values{
		"query": {query},
		"limit": {"5"},
		"fmt":   {"json"},
	}, &response); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if len(response.Works) == 0 {
		return nil, nil
	}
	return mapWork(&response.Works[0]), nil
}

// GetArtistInfo fetches one artist by MusicBrainz ID. A nil result with nil
// error means the ID is unknown.
func (c *Client) GetArtistInfo(ctx context.Context, externalID string) (*enrichment.ArtistInfo, error) {
	var artist Artist
	err := c.get(ctx, "/artist/"+url.PathEscape(externalID), url.Values{
		"fmt": {"json"},
	}, &artist)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return mapArtist(&artist), nil
}

// notFoundError marks a 404 from the API, which is a miss rather than an
// I/O failure.
type notFoundError struct{ url string }

func (e *notFoundError) Error() string { return "not found: " + e.url }

func isNotFound(err error) bool {
	_, ok := err.(*notFoundError)
	return ok
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	// Rate limit the request
	c.rateLimiter.wait()

	requestURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.log.Debug("request", "url", requestURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &notFoundError{url: requestURL}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("MusicBrainz API error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func mapArtist(a *Artist) *enrichment.ArtistInfo {
	return &enrichment.ArtistInfo{
		ID:        a.ID,
		Name:      a.Name,
		SortName:  a.SortName,
		Type:      a.Type,
		Country:   a.Country,
		BirthYear: parseYear(a.LifeSpan.Begin),
		DeathYear: parseYear(a.LifeSpan.End),
	}
}

func mapWork(w *Work) *enrichment.WorkInfo {
	info := &enrichment.WorkInfo{
		ID:    w.ID,
		Title: w.Title,
	}
	for _, rel := range w.Relations {
		if rel.TypeID == composerRelationTypeID {
			info.ComposerID = rel.Artist.ID
			info.ComposerName = rel.Artist.Name
			break
		}
	}
	return info
}

// parseYear extracts the year from a "YYYY", "YYYY-MM" or "YYYY-MM-DD" date.
func parseYear(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return nil
	}
	return &year
}
