package insight

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

// FileCache stores pattern insights as one JSON file per fingerprint with an
// absolute expiry. Reads of missing, corrupt, or expired entries are cache
// misses, never errors. Expired entries are removed lazily on read.
type FileCache struct {
	dir string
	ttl time.Duration

	// Per-key locks so concurrent lookups of different keys don't serialize.
	locks sync.Map // string -> *sync.RWMutex

	now func() time.Time
}

type cacheEntry struct {
	Value     *model.PatternInsight `json:"value"`
	CachedAt  float64               `json:"cached_at"`
	ExpiresAt float64               `json:"expires_at"`
}

// NewFileCache creates the cache directory if needed.
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "insight: create cache dir %s", dir)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &FileCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (c *FileCache) keyLock(key string) *sync.RWMutex {
	l, _ := c.locks.LoadOrStore(key, &sync.RWMutex{})
	return l.(*sync.RWMutex)
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Get returns the cached insight for a fingerprint, or nil on a miss.
func (c *FileCache) Get(key string) *model.PatternInsight {
	lock := c.keyLock(key)
	lock.RLock()
	raw, err := os.ReadFile(c.path(key))
	lock.RUnlock()
	if err != nil {
		return nil
	}

	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Value == nil {
		zap.L().Warn("insight: corrupt cache entry", zap.String("key", key))
		c.remove(key)
		return nil
	}

	if float64(c.now().Unix()) > entry.ExpiresAt {
		c.remove(key)
		return nil
	}
	return entry.Value
}

// Set stores an insight under a fingerprint. Last write wins.
func (c *FileCache) Set(key string, value *model.PatternInsight) {
	now := c.now()
	entry := cacheEntry{
		Value:     value,
		CachedAt:  float64(now.Unix()),
		ExpiresAt: float64(now.Add(c.ttl).Unix()),
	}
	raw, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		zap.L().Warn("insight: cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}

	lock := c.keyLock(key)
	lock.Lock()
	defer lock.Unlock()
	if err := os.WriteFile(c.path(key), raw, 0o644); err != nil {
		zap.L().Warn("insight: cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *FileCache) remove(key string) {
	lock := c.keyLock(key)
	lock.Lock()
	defer lock.Unlock()
	os.Remove(c.path(key))
}

// PurgeExpired walks the cache directory and removes every expired or
// unreadable entry. Returns the number of files removed.
func (c *FileCache) PurgeExpired() (int, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0, eris.Wrap(err, "insight: scan cache dir")
	}

	now := float64(c.now().Unix())
	removed := 0
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entry cacheEntry
		if err := json.Unmarshal(raw, &entry); err != nil || now > entry.ExpiresAt {
			if os.Remove(path) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Stats reports the cache location and entry count.
func (c *FileCache) Stats() (dir string, entries int) {
	matches, _ := filepath.Glob(filepath.Join(c.dir, "*.json"))
	return c.dir, len(matches)
}
