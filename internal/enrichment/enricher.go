package enrichment

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/arjenvw/repertoire/internal/extraction"
)

// ComposerResolution is the enriched view of a candidate's composer field.
// Name always carries the raw input; the canonical fields stay nil on a
// lookup miss.
type ComposerResolution struct {
	Name          string  `json:"name"`
	CanonicalName *string `json:"canonical_name,omitempty"`
	ExternalID    *string `json:"external_id,omitempty"`
	BirthYear     *int    `json:"birth_year,omitempty"`
	DeathYear     *int    `json:"death_year,omitempty"`
}

// WorkResolution is the enriched view of a candidate's work field.
type WorkResolution struct {
	Title          string  `json:"title"`
	CanonicalTitle *string `json:"canonical_title,omitempty"`
	ExternalID     *string `json:"external_id,omitempty"`
}

// Record is a candidate after enrichment, ready for persistence.
type Record struct {
	Candidate extraction.Candidate `json:"candidate"`
	Composer  ComposerResolution   `json:"composer"`
	Work      WorkResolution       `json:"work"`
	Release   *ReleaseInfo         `json:"release,omitempty"`
	Misses    []string             `json:"misses,omitempty"`
}

// Missed reports whether any lookup degraded to raw text for this record.
func (r Record) Missed() bool { return len(r.Misses) > 0 }

// Options configures an Enricher.
type Options struct {
	// Releases enables release-level enrichment when a candidate carries a
	// catalog number. May be nil.
	Releases ReleaseFinder
	// Workers bounds how many candidates are enriched concurrently.
	Workers int
	Logger  hclog.Logger
}

// Enricher resolves candidate records against the lookup services.
type Enricher struct {
	client   Client
	releases ReleaseFinder
	workers  int
	log      hclog.Logger
}

// New creates an Enricher over the given lookup client. The client is
// normally wrapped with Cached by the caller; the enricher itself does not
// assume anything about caching.
func New(client Client, opts Options) *Enricher {
	workers := opts.Workers
	if workers < 1 {
		workers = 4
	}
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Enricher{
		client:   client,
		releases: opts.Releases,
		workers:  workers,
		log:      log.Named("enricher"),
	}
}

// EnrichAll enriches candidates concurrently, bounded by the worker count.
// The result slice matches the input order. It never returns an error: every
// failure degrades to the candidate's raw text.
func (e *Enricher) EnrichAll(ctx context.Context, candidates []extraction.Candidate) []Record {
	records := make([]Record, len(candidates))
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup

	for i, cand := range candidates {
		wg.Add(1)
		go func(i int, cand extraction.Candidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			records[i] = e.Enrich(ctx, cand)
		}(i, cand)
	}
	wg.Wait()

	return records
}

// Enrich resolves one candidate. Lookup misses and I/O failures fall back to
// the raw text and are recorded as soft misses.
func (e *Enricher) Enrich(ctx context.Context, cand extraction.Candidate) Record {
	rec := Record{
		Candidate: cand,
		Composer:  ComposerResolution{Name: cand.Composer},
		Work:      WorkResolution{Title: cand.Work},
	}

	artist, err := e.client.SearchArtist(ctx, cand.Composer, "Person")
	switch {
	case err != nil:
		e.log.Warn("composer lookup failed", "composer", cand.Composer, "error", err)
		rec.Misses = append(rec.Misses, "composer lookup failed: "+cand.Composer)
	case artist == nil:
		e.log.Debug("composer not found", "composer", cand.Composer)
		rec.Misses = append(rec.Misses, "composer not found: "+cand.Composer)
	default:
		rec.Composer.CanonicalName = &artist.Name
		if artist.ID != "" {
			id := artist.ID
			rec.Composer.ExternalID = &id
		}
		rec.Composer.BirthYear = artist.BirthYear
		rec.Composer.DeathYear = artist.DeathYear
	}

	// Prefer the canonical composer name as the search hint once we have it.
	hint := cand.Composer
	if rec.Composer.CanonicalName != nil {
		hint = *rec.Composer.CanonicalName
	}

	work, err := e.client.SearchWork(ctx, cand.Work, hint)
	switch {
	case err != nil:
		e.log.Warn("work lookup failed", "work", cand.Work, "error", err)
		rec.Misses = append(rec.Misses, "work lookup failed: "+cand.Work)
	case work == nil:
		e.log.Debug("work not found", "work", cand.Work)
		rec.Misses = append(rec.Misses, "work not found: "+cand.Work)
	default:
		rec.Work.CanonicalTitle = &work.Title
		if work.ID != "" {
			id := work.ID
			rec.Work.ExternalID = &id
		}
	}

	if e.releases != nil && cand.CatalogNumber != "" {
		release, err := e.releases.FindRelease(ctx, cand.CatalogNumber, cand.Label, hint)
		if err != nil {
			e.log.Warn("release lookup failed", "catalog_number", cand.CatalogNumber, "error", err)
			rec.Misses = append(rec.Misses, "release lookup failed: "+cand.CatalogNumber)
		} else if release != nil {
			rec.Release = release
		}
	}

	return rec
}
