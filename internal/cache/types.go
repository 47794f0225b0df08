package cache

import (
	"errors"
	"fmt"
	"time"
)

// Common errors for cache operations
var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheClosed is returned after Close
	ErrCacheClosed = errors.New("cache is closed")
)

// CacheStats holds cache performance metrics
type CacheStats struct {
	// Configuration
	Capacity int64 // Maximum capacity in bytes

	// Current state
	Size      int64 // Current size on disk in bytes
	ItemCount int64 // Number of items in cache

	// Performance metrics
	Hits      int64   // Number of cache hits
	Misses    int64   // Number of cache misses
	Evictions int64   // Number of evictions
	HitRate   float64 // Calculated hit rate (hits / (hits + misses))

	// Timing
	LastAccess time.Time // Last access time
	LastEvict  time.Time // Last eviction time
}

// ClipKey identifies one decoded segment file. A change to the source file
// or to the output format produces a different key.
type ClipKey struct {
	Path       string
	Size       int64
	ModTime    time.Time
	SampleRate int
	Channels   int
}

// String returns the cache key.
func (k ClipKey) String() string {
	return fmt.Sprintf("%s|%d|%d|%d|%d", k.Path, k.Size, k.ModTime.UnixNano(), k.SampleRate, k.Channels)
}

// Cache is the store the segment loader uses for decoded PCM.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Stats() CacheStats
	Close() error
}
