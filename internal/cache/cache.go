// Package cache stores raw listing responses in memory and on disk.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/persona/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key from a listing URL
func CacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "persona:v1:" + hex.EncodeToString(hash[:])
}

// FromConfig builds the layered cache described by cfg, or nil when caching is disabled
func FromConfig(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}
