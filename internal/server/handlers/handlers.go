// Package handlers contains HTTP request handlers organized by functionality.
package handlers

import (
	"github.com/arjenvw/repertoire/internal/catalog"
	"github.com/arjenvw/repertoire/internal/ingestion"
)

// Handlers bundles the dependencies the HTTP handlers need. Everything is
// injected; there is no global state.
type Handlers struct {
	pipeline *ingestion.Pipeline
	store    *catalog.Store
}

// New creates the handler set.
func New(pipeline *ingestion.Pipeline, store *catalog.Store) *Handlers {
	return &Handlers{pipeline: pipeline, store: store}
}
