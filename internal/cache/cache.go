package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ppiankov/casefile/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey hashes the parts into a cache key. Parts are length-prefixed so
// ("ab", "c") and ("a", "bc") differ.
func CacheKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(strconv.Itoa(len(p))))
		h.Write([]byte{':'})
		h.Write([]byte(p))
	}
	return "casefile-scan-v1-" + hex.EncodeToString(h.Sum(nil))
}

// ScanCache stores document scans as JSON in an underlying cache
type ScanCache struct {
	cache Cache
	ttl   time.Duration
}

// NewScanCache wraps a byte cache
func NewScanCache(c Cache, ttl time.Duration) *ScanCache {
	return &ScanCache{cache: c, ttl: ttl}
}

// Get returns the cached scan; undecodable entries count as misses
func (s *ScanCache) Get(key string) (model.DocumentScan, bool) {
	var scan model.DocumentScan
	data, ok := s.cache.Get(key)
	if !ok {
		return scan, false
	}
	if err := json.Unmarshal(data, &scan); err != nil {
		return model.DocumentScan{}, false
	}
	return scan, true
}

// Put stores a scan
func (s *ScanCache) Put(key string, scan model.DocumentScan) error {
	data, err := json.Marshal(scan)
	if err != nil {
		return fmt.Errorf("marshal scan: %w", err)
	}
	return s.cache.Set(key, data, s.ttl)
}
