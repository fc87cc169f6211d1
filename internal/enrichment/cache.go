package enrichment

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// cachedClient memoizes lookup results by exact query key for the lifetime
// of the process. A cache hit bypasses the wrapped client entirely, so it
// also skips that client's rate limiter. Concurrent identical queries share
// one in-flight request through the singleflight group. Misses ("not found")
// are cached; I/O errors are not, so a transient failure can be retried on
// the next ingestion.
type cachedClient struct {
	inner Client

	group   singleflight.Group
	mu      sync.RWMutex
	artists map[string]*ArtistInfo
	works   map[string]*WorkInfo
}

// Cached wraps a lookup client with the per-process memo cache. The cache is
// unbounded: the corpus is a personal collection and the keys are query
// strings, so eviction is not worth its complexity here.
func Cached(inner Client) Client {
	return &cachedClient{
		inner:   inner,
		artists: make(map[string]*ArtistInfo),
		works:   make(map[string]*WorkInfo),
	}
}

func (c *cachedClient) SearchArtist(ctx context.Context, name, artistType string) (*ArtistInfo, error) {
	key := "artist\x00" + name + "\x00" + artistType

	c.mu.RLock()
	cached, ok := c.artists[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		info, err := c.inner.SearchArtist(ctx, name, artistType)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.artists[key] = info
		c.mu.Unlock()
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ArtistInfo), nil
}

func (c *cachedClient) SearchWork(ctx context.Context, title, composerHint string) (*WorkInfo, error) {
	key := "work\x00" + title + "\x00" + composerHint

	c.mu.RLock()
	cached, ok := c.works[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		info, err := c.inner.SearchWork(ctx, title, composerHint)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.works[key] = info
		c.mu.Unlock()
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*WorkInfo), nil
}

func (c *cachedClient) GetArtistInfo(ctx context.Context, externalID string) (*ArtistInfo, error) {
	key := "artistinfo\x00" + externalID

	c.mu.RLock()
	cached, ok := c.artists[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		info, err := c.inner.GetArtistInfo(ctx, externalID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.artists[key] = info
		c.mu.Unlock()
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ArtistInfo), nil
}
