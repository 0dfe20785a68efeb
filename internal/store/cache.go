package store

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultVideoCacheSize is the default number of video metadata entries to
// keep in memory. Metadata rows are small; 512 entries covers a page of
// results many times over.
const DefaultVideoCacheSize = 512

// CachedVideoStore wraps a VideoStore with a TTL'd LRU so repeated pages
// of the same search don't refetch identical metadata. Entries expire, so
// view counts and titles drift no further than the TTL.
type CachedVideoStore struct {
	inner VideoStore
	cache *expirable.LRU[string, VideoMeta]
}

// Verify interface implementation at compile time
var _ VideoStore = (*CachedVideoStore)(nil)

// NewCachedVideoStore creates a cached store wrapping the given store.
func NewCachedVideoStore(inner VideoStore, size int, ttl time.Duration) *CachedVideoStore {
	if size <= 0 {
		size = DefaultVideoCacheSize
	}
	return &CachedVideoStore{
		inner: inner,
		cache: expirable.NewLRU[string, VideoMeta](size, nil, ttl),
	}
}

// GetVideos serves what it can from cache and fetches the rest in one
// inner batch. Ids missing from the inner store stay uncached, so a video
// indexed later is picked up immediately.
func (c *CachedVideoStore) GetVideos(ctx context.Context, ids []string) (map[string]VideoMeta, error) {
	if len(ids) == 0 {
		return map[string]VideoMeta{}, nil
	}

	videos := make(map[string]VideoMeta, len(ids))
	uncached := make([]string, 0, len(ids))

	// First pass: check cache for each id
	for _, id := range ids {
		if v, ok := c.cache.Get(id); ok {
			videos[id] = v
		} else {
			uncached = append(uncached, id)
		}
	}

	// If all cached, we're done
	if len(uncached) == 0 {
		return videos, nil
	}

	// Batch fetch uncached ids
	fetched, err := c.inner.GetVideos(ctx, uncached)
	if err != nil {
		return nil, err
	}

	for id, v := range fetched {
		videos[id] = v
		c.cache.Add(id, v)
	}

	return videos, nil
}

// PutVideos writes through to the inner store, then overwrites cached
// entries so readers never see rows older than the load.
func (c *CachedVideoStore) PutVideos(ctx context.Context, videos []VideoMeta) error {
	if err := c.inner.PutVideos(ctx, videos); err != nil {
		return err
	}
	for _, v := range videos {
		c.cache.Add(v.VideoID, v)
	}
	return nil
}

// VideoCount passes through to the inner store.
func (c *CachedVideoStore) VideoCount(ctx context.Context) (uint64, error) {
	return c.inner.VideoCount(ctx)
}

// Close purges the cache and closes the inner store.
func (c *CachedVideoStore) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}
