// Package btfcache memoizes the expensive, pure query paths (name lookup and
// field offset resolution) in front of a *btf.Index. It never mutates
// the wrapped index; it only remembers results it has already computed.
package btfcache

import (
	"sync"

	"github.com/alessandrogario/btfparse/pkg/btf/offset"
	"github.com/alessandrogario/btfparse/pkg/btf/types"
)

// Index is the subset of *btf.Index (package pkg/btf) that Cache needs to
// sit in front of.
type Index interface {
	IDOf(name string) (types.TypeID, error)
	OffsetOf(id types.TypeID, path string) (offset.FieldOffset, error)
}

type offsetKey struct {
	id   types.TypeID
	path string
}

// Cache wraps an Index with a memoization layer. The zero value is not
// usable; build one with New. A Cache is safe for concurrent use.
type Cache struct {
	underlying Index

	mu      sync.RWMutex
	ids     map[string]types.TypeID
	offsets map[offsetKey]offset.FieldOffset
}

// New wraps underlying in a Cache.
func New(underlying Index) *Cache {
	return &Cache{
		underlying: underlying,
		ids:        make(map[string]types.TypeID),
		offsets:    make(map[offsetKey]offset.FieldOffset),
	}
}

// IDOf returns the cached id for name, computing and storing it on first
// lookup. Errors are never cached, so a name that doesn't exist yet (or a
// transient lookup failure) is retried on the next call.
func (c *Cache) IDOf(name string) (types.TypeID, error) {
	c.mu.RLock()
	id, ok := c.ids[name]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}

	id, err := c.underlying.IDOf(name)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.ids[name] = id
	c.mu.Unlock()
	return id, nil
}

// OffsetOf returns the cached field offset for (id, path), computing and
// storing it on first lookup.
func (c *Cache) OffsetOf(id types.TypeID, path string) (offset.FieldOffset, error) {
	key := offsetKey{id: id, path: path}

	c.mu.RLock()
	fo, ok := c.offsets[key]
	c.mu.RUnlock()
	if ok {
		return fo, nil
	}

	fo, err := c.underlying.OffsetOf(id, path)
	if err != nil {
		return offset.FieldOffset{}, err
	}

	c.mu.Lock()
	c.offsets[key] = fo
	c.mu.Unlock()
	return fo, nil
}

// Len reports how many entries are currently memoized, for diagnostics.
func (c *Cache) Len() (ids int, offsets int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids), len(c.offsets)
}
