package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/hashicorp/go-hclog"

	"github.com/arjenvw/repertoire/internal/enrichment"
)

// DefaultBaseURL is the Discogs API base URL
const DefaultBaseURL = "https://api.discogs.com"

// Client handles communication with the Discogs API. It implements
// enrichment.ReleaseFinder.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	token       string
	userAgent   string
	rateLimiter *rateLimiter
	log         hclog.Logger
}

// rateLimiter enforces a minimum spacing between requests; the mutex is held
// across the sleep so calls to the service serialize.
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

// Config configures a Discogs client.
type Config struct {
	BaseURL   string
	Token     string
	UserAgent string
	// RateLimit is the request ceiling in requests per second.
	RateLimit float64
	Timeout   time.Duration
	Logger    hclog.Logger
}

// NewClient creates a new Discogs API client
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
		timeout = 30 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      cfg.Token,
		userAgent:  cfg.UserAgent,
		rateLimiter: &rateLimiter{
			interval: time.Duration(float64(time.Second) / rateLimit),
		},
		log: log.Named("discogs"),
	}
}

// FindRelease looks up the release matching a catalog number, preferring
// exact catalog and label matches. A nil result with nil error means no
// match.
func (c *Client) FindRelease(ctx context.Context, catalogNumber, labelName, artist string) (*enrichment.ReleaseInfo, error) {
	if catalogNumber == "" {
		return nil, nil
	}

	results, err := c.searchByCatalog(ctx, catalogNumber, labelName, artist)
	if err != nil {
		return nil, err
	}
	best := chooseBestResult(results, labelName, catalogNumber)
	if best == nil {
		c.log.Debug("no release match", "catalog_number", catalogNumber, "label", labelName)
		return nil, nil
	}

	detail, err := c.getRelease(ctx, best.ID)
	if err != nil {
		return nil, err
	}
	return mapRelease(detail), nil
}

func (c *Client) searchByCatalog(ctx context.Context, catalogNumber, labelName, artist string) ([]searchResult, error) {
	// Try the catalog number as given, then with punctuation stripped.
	variants := []string{catalogNumber}
	if stripped := stripPunctuation(catalogNumber); stripped != catalogNumber {
		variants = append(variants, stripped)
	}

	for _, variant := range variants {
		params := url.Values{
			"type":     {"release"},
			"per_page": {"20"},
			"catno":    {variant},
		}
		if labelName != "" {
			params.Set("label", labelName)
		}
		if artist != "" {
			params.Set("artist", artist)
		}

		var response searchResponse
		if err := c.get(ctx, "/database/search", params, &response); err != nil {
			return nil, err
		}
		if len(response.Results) > 0 {
			return response.Results, nil
		}
	}
	return nil, nil
}

func (c *Client) getRelease(ctx context.Context, id int64) (*release, error) {
	var detail release
	if err := c.get(ctx, fmt.Sprintf("/releases/%d", id), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	c.rateLimiter.wait()

	requestURL := c.baseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Discogs token="+c.token)
	}

	c.log.Debug("request", "url", requestURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Discogs API error: %d", resp.StatusCode)
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

// chooseBestResult ranks search results by exact catalog match, then label
// match, keeping the original order as tiebreak.
func chooseBestResult(results []searchResult, labelName, catalogNumber string) *searchResult {
	if len(results) == 0 {
		return nil
	}

	catNorm := normalizeCatalog(catalogNumber)
	labelNorm := strings.ToLower(strings.TrimSpace(labelName))

	score := func(r *searchResult) int {
		s := 0
		if catNorm == "" || normalizeCatalog(r.CatNo) != catNorm {
			s += 2
		}
		if labelNorm != "" {
			matched := false
			for _, l := range r.Labels {
				if strings.ToLower(strings.TrimSpace(l)) == labelNorm {
					matched = true
					break
				}
			}
			if !matched {
				s++
			}
		}
		return s
	}

	indexed := make([]int, len(results))
	for i := range indexed {
		indexed[i] = i
	}
	sort.SliceStable(indexed, func(a, b int) bool {
		return score(&results[indexed[a]]) < score(&results[indexed[b]])
	})
	return &results[indexed[0]]
}

func mapRelease(r *release) *enrichment.ReleaseInfo {
	info := &enrichment.ReleaseInfo{
		ID:       r.ID,
		Title:    r.Title,
		Year:     extractYear(r),
		EAN:      extractEAN(r),
		CoverURL: extractCover(r),
	}
	if len(r.Labels) > 0 {
		info.Label = r.Labels[0].Name
		info.CatalogNumber = r.Labels[0].CatNo
	}
	return info
}

func extractYear(r *release) *int {
	if len(r.Released) >= 4 {
		if year, err := strconv.Atoi(r.Released[:4]); err == nil {
			return &year
		}
	}
	if r.Year > 0 {
		year := r.Year
		return &year
	}
	return nil
}

// extractEAN returns the first barcode-like identifier with at least 12
// digits.
func extractEAN(r *release) string {
	for _, id := range r.Identifiers {
		switch strings.ToLower(id.Type) {
		case "barcode", "ean", "upc":
			digits := keepDigits(id.Value)
			if len(digits) >= 12 {
				return digits
			}
		}
	}
	return ""
}

func extractCover(r *release) string {
	for _, img := range r.Images {
		if img.Type == "primary" && img.URI != "" {
			return img.URI
		}
	}
	for _, img := range r.Images {
		if img.URI != "" {
			return img.URI
		}
	}
	return ""
}

func normalizeCatalog(value string) string {
	var b strings.Builder
	for _, ch := range strings.ToUpper(value) {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

func stripPunctuation(value string) string {
	return strings.NewReplacer(" ", "", "-", "", ".", "").Replace(value)
}

func keepDigits(value string) string {
	var b strings.Builder
	for _, ch := range value {
		if unicode.IsDigit(ch) {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
