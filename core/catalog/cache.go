package catalog

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"effort-estimate/core/types"
)

const (
	cacheKeyActivities = "activities"
	cacheKeyDrivers    = "drivers"
	cacheKeyRisks      = "risks"
	cacheKeyPresets    = "presets"
)

// CachedSource wraps a Source with an in-process LRU so that repeated
// session loads do not refetch from the backing store. Catalogs are
// reference data for the duration of a session; Invalidate drops the
// cache when the backing store is known to have changed.
type CachedSource struct {
	inner Source
	cache *lru.Cache[string, any]
}

// NewCachedSource creates a caching wrapper around src
func NewCachedSource(src Source, size int) (*CachedSource, error) {
	if size <= 0 {
		size = 8
	}
	cache, err := lru.New[string, any](size)
	if err != nil {
		return nil, err
	}
	return &CachedSource{inner: src, cache: cache}, nil
}

// Invalidate drops all cached catalogs
func (c *CachedSource) Invalidate() {
	c.cache.Purge()
}

func (c *CachedSource) FetchActivities(ctx context.Context) ([]types.Activity, error) {
	if cached, ok := c.cache.Get(cacheKeyActivities); ok {
		return cached.([]types.Activity), nil
	}
	activities, err := c.inner.FetchActivities(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Add(cacheKeyActivities, activities)
	return activities, nil
}

func (c *CachedSource) FetchDrivers(ctx context.Context) ([]types.Driver, error) {
	if cached, ok := c.cache.Get(cacheKeyDrivers); ok {
		return cached.([]types.Driver), nil
	}
	drivers, err := c.inner.FetchDrivers(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Add(cacheKeyDrivers, drivers)
	return drivers, nil
}

func (c *CachedSource) FetchRisks(ctx context.Context) ([]types.Risk, error) {
	if cached, ok := c.cache.Get(cacheKeyRisks); ok {
		return cached.([]types.Risk), nil
	}
	risks, err := c.inner.FetchRisks(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Add(cacheKeyRisks, risks)
	return risks, nil
}

func (c *CachedSource) FetchPresets(ctx context.Context) ([]types.TechnologyPreset, error) {
	if cached, ok := c.cache.Get(cacheKeyPresets); ok {
		return cached.([]types.TechnologyPreset), nil
	}
	presets, err := c.inner.FetchPresets(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Add(cacheKeyPresets, presets)
	return presets, nil
}

var _ Source = (*CachedSource)(nil)
