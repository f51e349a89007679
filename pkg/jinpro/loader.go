package jinpro

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sophloaf2019/jinpro/pkg/jinpro/errors"
)

// Loader resolves a template file name to its source text. Load returns a
// missing-component error when no template matches the name.
type Loader interface {
	Load(name string) (string, error)
}

// FSLoader loads templates from an ordered list of directories. The first
// directory containing the named file wins, which must match the lookup
// order of the external renderer so rendering through the engine is a
// drop-in replacement for rendering directly.
type FSLoader struct {
	SearchPaths []string
}

// NewFSLoader creates a loader over the given template directories.
func NewFSLoader(searchPaths ...string) *FSLoader {
	return &FSLoader{SearchPaths: searchPaths}
}

// Load reads the named template from the first search path that has it.
// Name resolution rejects paths that escape the search directories.
func (l *FSLoader) Load(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.NewMissingComponent(name, "")
	}
	for _, dir := range l.SearchPaths {
		data, err := os.ReadFile(filepath.Join(dir, clean))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
	}
	return "", errors.NewMissingComponent(name, "")
}

// CachingLoader wraps a Loader with an in-memory source cache keyed by
// template name. The cache can be disabled (dev mode) so every render
// observes the file system, or invalidated externally (the server's file
// watcher calls Invalidate when a template changes).
type CachingLoader struct {
	inner    Loader
	disabled bool

	mu      sync.RWMutex
	entries map[string]string
}

// NewCachingLoader creates a caching wrapper around inner. When disabled
// is true every Load passes through to inner.
func NewCachingLoader(inner Loader, disabled bool) *CachingLoader {
	return &CachingLoader{
		inner:    inner,
		disabled: disabled,
		entries:  make(map[string]string),
	}
}

// Load returns the cached source for name, loading and caching it on a
// miss. Load failures are not cached.
func (c *CachingLoader) Load(name string) (string, error) {
	if c.disabled {
		return c.inner.Load(name)
	}

	c.mu.RLock()
	src, ok := c.entries[name]
	c.mu.RUnlock()
	if ok {
		return src, nil
	}

	src, err := c.inner.Load(name)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[name] = src
	c.mu.Unlock()
	return src, nil
}

// Invalidate drops the cache entry for name, if present.
func (c *CachingLoader) Invalidate(name string) {
	c.mu.Lock()
	delete(c.entries, name)
	c.mu.Unlock()
}

// Clear drops every cached entry.
func (c *CachingLoader) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]string)
	c.mu.Unlock()
}

// Size returns the number of cached templates.
func (c *CachingLoader) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
