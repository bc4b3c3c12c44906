package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eventwish/wishadmin/internal/model"
)

// Cache key prefixes and TTLs.
const (
	shareKeyPrefix    = "share:"
	negCacheKeySuffix = ":neg"
	reportKeyPrefix   = "analytics:report:"

	// DefaultShareTTL is the TTL for cached share data. Kept short because
	// engagement counters mutate without invalidating this entry.
	DefaultShareTTL = 5 * time.Minute

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = 5 * time.Minute

	// DefaultReportTTL bounds how stale an analytics report may be.
	DefaultReportTTL = 60 * time.Second
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetShare retrieves a share from cache by short code.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetShare(ctx context.Context, shortCode string) (*model.CachedShare, error) {
	key := shareKeyPrefix + shortCode

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	cached := &model.CachedShare{
		ID:            result["id"],
		TemplateID:    result["template_id"],
		Title:         result["title"],
		RecipientName: result["recipient_name"],
		SenderName:    result["sender_name"],
		SharedVia:     result["shared_via"],
		Views:         result["views"],
		UniqueViews:   result["unique_views"],
		ShareCount:    result["share_count"],
		CreatedAt:     result["created_at"],
		UpdatedAt:     result["updated_at"],
	}

	return cached, nil
}

// SetShare stores a share in cache keyed by short code.
func (c *Cache) SetShare(ctx context.Context, shortCode string, share *model.Share) error {
	key := shareKeyPrefix + shortCode
	cached := share.ToCachedShare()

	fields := map[string]interface{}{
		"id":             cached.ID,
		"template_id":    cached.TemplateID,
		"title":          cached.Title,
		"recipient_name": cached.RecipientName,
		"sender_name":    cached.SenderName,
		"shared_via":     cached.SharedVia,
		"views":          cached.Views,
		"unique_views":   cached.UniqueViews,
		"share_count":    cached.ShareCount,
		"created_at":     cached.CreatedAt,
		"updated_at":     cached.UpdatedAt,
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, DefaultShareTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis hset failed: %w", err)
	}

	return nil
}

// DeleteShare removes a share from cache.
func (c *Cache) DeleteShare(ctx context.Context, shortCode string) error {
	key := shareKeyPrefix + shortCode
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// SetNegativeCache marks a short code as known-missing.
func (c *Cache) SetNegativeCache(ctx context.Context, shortCode string) error {
	key := shareKeyPrefix + shortCode + negCacheKeySuffix
	if err := c.client.Set(ctx, key, "1", NegativeCacheTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// IsNegativelyCached checks whether a short code is known-missing.
func (c *Cache) IsNegativelyCached(ctx context.Context, shortCode string) (bool, error) {
	key := shareKeyPrefix + shortCode + negCacheKeySuffix
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}

// GetAnalyticsReport retrieves a cached aggregate report for a window.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetAnalyticsReport(ctx context.Context, timeFilter string) (*model.AnalyticsReport, error) {
	key := reportKeyPrefix + timeFilter

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var report model.AnalyticsReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshal cached report: %w", err)
	}

	return &report, nil
}

// SetAnalyticsReport caches an aggregate report for its window.
// A non-positive ttl falls back to DefaultReportTTL.
func (c *Cache) SetAnalyticsReport(ctx context.Context, timeFilter string, report *model.AnalyticsReport, ttl time.Duration) error {
	key := reportKeyPrefix + timeFilter

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultReportTTL
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}
