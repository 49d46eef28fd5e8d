package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// MemoryCache implements DataCache using in-memory storage
type MemoryCache struct {
	cache map[string][]types.OHLCV
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string][]types.OHLCV),
	}
}

// Get retrieves a copy of the cached data
func (c *MemoryCache) Get(key string) ([]types.OHLCV, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	data, exists := c.cache[key]
	if !exists {
		return nil, false
	}
	result := make([]types.OHLCV, len(data))
	copy(result, data)
	return result, true
}

// Set stores a copy of data
func (c *MemoryCache) Set(key string, data []types.OHLCV) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	cached := make([]types.OHLCV, len(data))
	copy(cached, data)
	c.cache[key] = cached
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string][]types.OHLCV)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CachedProvider wraps another DataProvider so a batch reading the same file
// for many strategies parses it once. Entries are keyed by path, size and
// modification time, so a rewritten file is parsed again.
type CachedProvider struct {
	provider DataProvider
	cache    DataCache
	log      logger.Scoped
}

// NewCachedProvider creates a new cached data provider
func NewCachedProvider(provider DataProvider, sink logger.Sink) *CachedProvider {
	return NewCachedProviderWithCache(provider, NewMemoryCache(), sink)
}

// NewCachedProviderWithCache creates a new cached data provider with custom cache
func NewCachedProviderWithCache(provider DataProvider, cache DataCache, sink logger.Sink) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    cache,
		log:      logger.For(sink, logger.StageData),
	}
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadData loads data with caching
func (p *CachedProvider) LoadData(source string) ([]types.OHLCV, error) {
	key := cacheKey(source)
	if cachedData, exists := p.cache.Get(key); exists {
		p.log.Debug("cache hit for %s", filepath.Base(source))
		return cachedData, nil
	}

	data, err := p.provider.LoadData(source)
	if err != nil {
		p.log.Error("failed to load data from %s: %v", filepath.Base(source), err)
		return nil, err
	}

	p.cache.Set(key, data)
	p.log.Debug("cached %s (%d records)", filepath.Base(source), len(data))
	return data, nil
}

// ClearCache clears all cached data
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}

// GetCacheSize returns the number of cached entries
func (p *CachedProvider) GetCacheSize() int {
	return p.cache.Size()
}

// cacheKey identifies one version of a file; a file that cannot be stat'ed
// is keyed by path alone and the provider reports the real error
func cacheKey(source string) string {
	info, err := os.Stat(source)
	if err != nil {
		return source
	}
	return fmt.Sprintf("%s@%d:%d", source, info.Size(), info.ModTime().UnixNano())
}
