package bramble

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// GeometryCache parses each element asset once and hands out the same
// *ElementGeometry on every later call. Concurrent callers for a key that is
// still being parsed wait for that parse instead of starting another.
// Failures are not remembered, so a later call retries.
//
// Unlike the scene graph, GeometryCache is safe for concurrent use.
type GeometryCache struct {
	parser  Parser
	density TessellationConfig

	mu      sync.RWMutex
	entries map[string]*ElementGeometry
	group   singleflight.Group
}

// NewGeometryCache creates an empty cache that parses with p and tessellates
// with the densities of tc.
func NewGeometryCache(p Parser, tc TessellationConfig) *GeometryCache {
	return &GeometryCache{
		parser:  p,
		density: tc,
		entries: make(map[string]*ElementGeometry),
	}
}

// Lookup returns the geometry for key if it has already been built.
func (c *GeometryCache) Lookup(key string) (*ElementGeometry, bool) {
	c.mu.RLock()
	g, ok := c.entries[key]
	c.mu.RUnlock()
	return g, ok
}

// Len returns the number of cached geometries.
func (c *GeometryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Get returns the geometry for key, parsing data if the key is not cached yet.
func (c *GeometryCache) Get(key string, data []byte) (*ElementGeometry, error) {
	if g, ok := c.Lookup(key); ok {
		return g, nil
	}
	v, err, shared := c.group.Do(key, func() (any, error) {
		// A caller that lost the race with a finished parse lands here.
		if g, ok := c.Lookup(key); ok {
			return g, nil
		}
		return c.build(key, data)
	})
	if err != nil {
		logger.Warn("geometry parse failed", "key", key, "err", err)
		return nil, err
	}
	if shared {
		logger.Debug("geometry parse shared", "key", key)
	}
	return v.(*ElementGeometry), nil
}

// Load returns the geometry for key, fetching the asset from src only when
// the key is not cached.
func (c *GeometryCache) Load(key string, src AssetSource) (*ElementGeometry, error) {
	if g, ok := c.Lookup(key); ok {
		return g, nil
	}
	data, err := src.Asset(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnknownElement, key, err)
	}
	return c.Get(key, data)
}

func (c *GeometryCache) build(key string, data []byte) (*ElementGeometry, error) {
	root, err := c.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	density := c.density.Density(key)
	g, err := BuildGeometry(key, root, density)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = g
	c.mu.Unlock()
	logger.Debug("geometry parsed", "key", key, "density", density, "connectors", len(g.Connectors))
	return g, nil
}
