package provider

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"serverrewards/internal/cache"
	"serverrewards/internal/model"
)

// CachedLookups caches item and kit lookups, which are read on every store
// render but change only when the host's content changes. Misses are not
// cached.
type CachedLookups struct {
	items Items
	kits  Kits
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedLookups wraps items and kits. Either may be nil.
func NewCachedLookups(items Items, kits Kits, c cache.Cache, ttl time.Duration) *CachedLookups {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedLookups{items: items, kits: kits, cache: c, ttl: ttl}
}

// Wrap replaces the Items and Kits members of s with cached versions.
func (c *CachedLookups) Wrap(s Set) Set {
	if c.items != nil {
		s.Items = cachedItems{c}
	}
	if c.kits != nil {
		s.Kits = cachedKits{c}
	}
	return s
}

// errNotCached keeps misses and failed host calls out of the cache.
var errNotCached = errors.New("not cached")

// load returns the cached value for key, computing it with fn on a miss.
// Only found values are cached; cache failures fall through to fn.
func load[T any](ctx context.Context, c *CachedLookups, key string, fn func() (T, bool)) (T, bool) {
	var computed T
	var found, called bool
	raw, err := c.cache.GetOrSet(ctx, key, c.ttl, func() ([]byte, error) {
		called = true
		computed, found = fn()
		if !found {
			return nil, errNotCached
		}
		return json.Marshal(computed)
	})
	if called {
		return computed, found
	}
	if err != nil {
		log.Printf("[CachedLookups] %s: %v", key, err)
		return fn()
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		_ = c.cache.Delete(ctx, key)
		return fn()
	}
	return v, true
}

// Invalidate drops every cached lookup.
func (c *CachedLookups) Invalidate(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

type cachedItems struct{ c *CachedLookups }

func (ci cachedItems) Definition(ctx context.Context, shortname string) (model.ItemDefinition, bool) {
	return load(ctx, ci.c, "item:"+strings.ToLower(shortname), func() (model.ItemDefinition, bool) {
		return ci.c.items.Definition(ctx, shortname)
	})
}

func (ci cachedItems) Definitions(ctx context.Context) []model.ItemDefinition {
	defs, _ := load(ctx, ci.c, "items", func() ([]model.ItemDefinition, bool) {
		defs := ci.c.items.Definitions(ctx)
		return defs, defs != nil
	})
	return defs
}

type cachedKits struct{ c *CachedLookups }

func (ck cachedKits) Kit(ctx context.Context, name string) (model.KitInfo, bool) {
	return load(ctx, ck.c, "kit:"+strings.ToLower(name), func() (model.KitInfo, bool) {
		return ck.c.kits.Kit(ctx, name)
	})
}

func (ck cachedKits) IsKit(ctx context.Context, name string) bool {
	_, ok := ck.Kit(ctx, name)
	return ok
}

func (ck cachedKits) Kits(ctx context.Context) []model.KitInfo {
	kits, _ := load(ctx, ck.c, "kits", func() ([]model.KitInfo, bool) {
		kits := ck.c.kits.Kits(ctx)
		return kits, kits != nil
	})
	return kits
}
