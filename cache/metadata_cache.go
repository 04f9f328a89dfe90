// Package cache holds the redis-backed caches in front of provider lookups.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/adampisula/musicdl-server/logger"
	"github.com/adampisula/musicdl-server/model"
)

// metadataTTL bounds how long a provider metadata response is reused before
// the provider is asked again. Persisted track metadata never goes through
// this cache; it is authoritative on its own.
const metadataTTL = time.Hour

// MetadataCache caches provider metadata responses keyed by canonical
// provider id. A nil client disables the cache; every call degrades to a miss.
type MetadataCache struct {
	client *redis.Client
}

// NewMetadataCache creates a metadata cache over the given Redis client,
// which may be nil.
func NewMetadataCache(client *redis.Client) *MetadataCache {
	return &MetadataCache{client: client}
}

func metadataKey(providerID string) string {
	return fmt.Sprintf("track:meta:%s", providerID)
}

// Get returns the cached metadata for the provider id, if present.
func (c *MetadataCache) Get(ctx context.Context, providerID string) (model.TrackMetadata, bool) {
	if c == nil || c.client == nil {
		return model.TrackMetadata{}, false
	}

	raw, err := c.client.Get(ctx, metadataKey(providerID)).Result()
	if err == redis.Nil {
		return model.TrackMetadata{}, false
	}
	if err != nil {
		logger.Warn("Metadata cache read failed", zap.Error(err))
		return model.TrackMetadata{}, false
	}

	var metadata model.TrackMetadata
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return model.TrackMetadata{}, false
	}
	return metadata, true
}

// Set stores metadata for the provider id. Failures only log; the cache is an
// optimization, never a source of truth.
func (c *MetadataCache) Set(ctx context.Context, providerID string, metadata model.TrackMetadata) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, metadataKey(providerID), raw, metadataTTL).Err(); err != nil {
		logger.Warn("Metadata cache write failed", zap.Error(err))
	}
}
