// Package ingestion runs one scrape's worth of data through the explicit
// stage sequence: extract, enrich, persist. Each stage produces a typed
// outcome; nothing in here aborts the process.
package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/arjenvw/repertoire/internal/catalog"
	"github.com/arjenvw/repertoire/internal/enrichment"
	"github.com/arjenvw/repertoire/internal/extraction"
	"github.com/arjenvw/repertoire/internal/logger"
)

// RecordFailure reports one candidate that could not be persisted. The rest
// of the batch is unaffected.
type RecordFailure struct {
	Index    int    `json:"index"`
	Composer string `json:"composer"`
	Work     string `json:"work"`
	Reason   string `json:"reason"`
}

// Result summarizes one ingestion run.
type Result struct {
	BatchID      string             `json:"batch_id"`
	Outcome      extraction.Outcome `json:"outcome"`
	Received     int                `json:"received"`
	Saved        int                `json:"saved"`
	Dropped      int                `json:"dropped,omitempty"`
	LookupMisses int                `json:"lookup_misses,omitempty"`
	Failures     []RecordFailure    `json:"failures,omitempty"`
	SavedIDs     []uint             `json:"saved_ids,omitempty"`
}

// Failed reports whether the whole batch failed before any candidate could
// be processed.
func (r Result) Failed() bool { return r.Outcome.Failed() }

// Summary renders the user-facing one-liner, e.g.
// "saved 4 of 5 recordings; 1 lookup missed; 1 failed".
func (r Result) Summary() string {
	if r.Failed() {
		return "could not read any recordings from the response"
	}
	parts := []string{fmt.Sprintf("saved %d of %d recordings", r.Saved, r.Received)}
	if r.Dropped > 0 {
		parts = append(parts, fmt.Sprintf("%d dropped", r.Dropped))
	}
	if r.LookupMisses > 0 {
		parts = append(parts, fmt.Sprintf("%d lookup missed", r.LookupMisses))
	}
	if len(r.Failures) > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", len(r.Failures)))
	}
	return strings.Join(parts, "; ")
}

// Pipeline wires the stages over shared dependencies.
type Pipeline struct {
	enricher *enrichment.Enricher
	store    *catalog.Store
}

// New creates a Pipeline.
func New(enricher *enrichment.Enricher, store *catalog.Store) *Pipeline {
	return &Pipeline{enricher: enricher, store: store}
}

// IngestText runs raw AI-assistant output through all three stages.
func (p *Pipeline) IngestText(ctx context.Context, raw string) Result {
	candidates, outcome := extraction.Parse(raw)
	if outcome.Failed() {
		logger.Warn("ingestion batch unreadable: %s", outcome.Reason)
		return Result{BatchID: uuid.NewString(), Outcome: outcome}
	}
	return p.run(ctx, candidates, outcome)
}

// IngestCandidates runs pre-structured candidates (e.g. from the browser
// extension, which does its own AI extraction) through the enrich and
// persist stages. Candidates missing a composer or work are dropped, same
// as in the extraction stage.
func (p *Pipeline) IngestCandidates(ctx context.Context, candidates []extraction.Candidate) Result {
	valid := make([]extraction.Candidate, 0, len(candidates))
	dropped := 0
	for _, c := range candidates {
		c.Composer = strings.TrimSpace(c.Composer)
		c.Work = strings.TrimSpace(c.Work)
		if c.Composer == "" || c.Work == "" {
			dropped++
			continue
		}
		valid = append(valid, c)
	}

	outcome := extraction.Outcome{Status: extraction.StatusOK}
	switch {
	case dropped > 0:
		outcome = extraction.Outcome{Status: extraction.StatusPartial, Dropped: dropped}
	case len(valid) == 0:
		outcome = extraction.Outcome{Status: extraction.StatusEmpty}
	}
	return p.run(ctx, valid, outcome)
}

// run executes the enrich and persist stages. Each candidate's resolve and
// insert is an independent transaction; partial success is expected and
// reported through counts rather than an all-or-nothing error.
func (p *Pipeline) run(ctx context.Context, candidates []extraction.Candidate, outcome extraction.Outcome) Result {
	result := Result{
		BatchID:  uuid.NewString(),
		Outcome:  outcome,
		Received: len(candidates) + outcome.Dropped,
		Dropped:  outcome.Dropped,
	}
	if len(candidates) == 0 {
		logger.Info("ingestion %s: nothing to save", result.BatchID)
		return result
	}

	records := p.enricher.EnrichAll(ctx, candidates)

	for i, rec := range records {
		if rec.Missed() {
			result.LookupMisses++
		}
		id, err := p.store.Upsert(ctx, rec)
		if err != nil {
			logger.Error("ingestion %s: record %d (%s / %s) failed: %v",
				result.BatchID, i, rec.Composer.Name, rec.Work.Title, err)
			result.Failures = append(result.Failures, RecordFailure{
				Index:    i,
				Composer: rec.Composer.Name,
				Work:     rec.Work.Title,
				Reason:   err.Error(),
			})
			continue
		}
		result.Saved++
		result.SavedIDs = append(result.SavedIDs, id)
	}

	logger.Info("ingestion %s: %s", result.BatchID, result.Summary())
	return result
}
