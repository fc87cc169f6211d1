// Package scraper fetches pages from musicalifeiten.nl and extracts the
// article text that gets handed to an AI assistant for extraction.
package scraper

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arjenvw/repertoire/internal/config"
)

// Rubrics maps rubric names to their site paths.
var Rubrics = map[string]string{
	"portretten":          "/composers/portraits",
	"discografieen":       "/discographies",
	"mini_discografieen":  "/mini-discographies",
	"vergelijkingen":      "/comparisons",
	"mini_vergelijkingen": "/mini-comparisons",
}

// RubricNames returns the known rubric names, sorted.
func RubricNames() []string {
	names := make([]string, 0, len(Rubrics))
	for name := range Rubrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FetchError reports a failed page fetch. It is distinguishable from the
// other failure kinds so callers can tell "the site was unreachable" apart
// from "the page held no usable text".
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Page is one fetched source page.
type Page struct {
	URL  string
	HTML string
}

// Paragraphs extracts the page's article text.
func (p *Page) Paragraphs() []string { return ExtractParagraphs(p.HTML) }

// Scraper fetches pages with a polite User-Agent and a minimum delay
// between requests.
type Scraper struct {
	base      *url.URL
	client    *http.Client
	userAgent string

	mu       sync.Mutex
	throttle time.Duration
	lastReq  time.Time
}

// New creates a Scraper from configuration.
func New(cfg config.ScraperConfig) (*Scraper, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid scraper base URL %q: %w", cfg.BaseURL, err)
	}
	return &Scraper{
		base:      base,
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		throttle:  cfg.Throttle,
	}, nil
}

// FetchRandom fetches a random composer index page for the given rubric.
// The site organizes composers by first letter; a random letter page gives
// a different slice of the catalog on every scrape.
func (s *Scraper) FetchRandom(ctx context.Context, rubric string) (*Page, error) {
	if _, ok := Rubrics[rubric]; !ok {
		return nil, fmt.Errorf("unknown rubric %q (available: %s)", rubric, strings.Join(RubricNames(), ", "))
	}
	letter := string(rune('a' + rand.Intn(26)))
	ref := &url.URL{Path: fmt.Sprintf("/composers/by-name/%s/", letter)}
	return s.Fetch(ctx, s.base.ResolveReference(ref).String())
}

// Fetch fetches one URL, waiting out the inter-request throttle first.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	s.wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	return &Page{URL: pageURL, HTML: string(body)}, nil
}

// wait enforces the minimum delay between requests. The mutex is held
// across the sleep so concurrent callers queue up.
func (s *Scraper) wait() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.throttle > 0 && !s.lastReq.IsZero() {
		if elapsed := time.Since(s.lastReq); elapsed < s.throttle {
			time.Sleep(s.throttle - elapsed)
		}
	}
	s.lastReq = time.Now()
}
