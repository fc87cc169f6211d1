package main

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/arjenvw/repertoire/internal/catalog"
	"github.com/arjenvw/repertoire/internal/config"
	"github.com/arjenvw/repertoire/internal/database"
	"github.com/arjenvw/repertoire/internal/discogs"
	"github.com/arjenvw/repertoire/internal/enrichment"
	"github.com/arjenvw/repertoire/internal/ingestion"
	"github.com/arjenvw/repertoire/internal/musicbrainz"
)

// commandContext carries the loaded configuration and lazily-built
// application wiring shared by the subcommands.
type commandContext struct {
	configFlag *string
	cfg        *config.Config

	db       *gorm.DB
	store    *catalog.Store
	pipeline *ingestion.Pipeline
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// openStore opens the database and builds the catalog store.
func (c *commandContext) openStore() (*catalog.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	db, err := database.Open(c.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	c.db = db
	c.store = catalog.NewStore(db)
	return c.store, nil
}

// openPipeline builds the full ingestion pipeline: lookup clients, cache,
// enricher and store.
func (c *commandContext) openPipeline() (*ingestion.Pipeline, error) {
	if c.pipeline != nil {
		return c.pipeline, nil
	}
	store, err := c.openStore()
	if err != nil {
		return nil, err
	}

	client := enrichment.Cached(musicbrainz.NewClient(musicbrainz.Config{
		BaseURL:   c.cfg.MusicBrainz.BaseURL,
		UserAgent: c.cfg.MusicBrainz.UserAgent,
		RateLimit: c.cfg.MusicBrainz.RateLimit,
		Timeout:   c.cfg.MusicBrainz.Timeout,
	}))

	opts := enrichment.Options{Workers: c.cfg.Enrichment.Workers}
	if c.cfg.Discogs.Enabled {
		opts.Releases = discogs.NewClient(discogs.Config{
			BaseURL:   c.cfg.Discogs.BaseURL,
			Token:     c.cfg.Discogs.Token,
			UserAgent: c.cfg.Discogs.UserAgent,
			RateLimit: c.cfg.Discogs.RateLimit,
			Timeout:   c.cfg.Discogs.Timeout,
		})
	}

	c.pipeline = ingestion.New(enrichment.New(client, opts), store)
	return c.pipeline, nil
}
