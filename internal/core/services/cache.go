package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
	"github.com/custodia-labs/geovis/internal/logger"
)

// Cache key prefixes.
const (
	latestKeyPrefix     = "latest:"
	comparisonKeyPrefix = "comparison:"
)

func latestKey(queryID int64) string {
	return fmt.Sprintf("%s%d:", latestKeyPrefix, queryID)
}

func comparisonKey(filter domain.ComparisonFilter) string {
	var b strings.Builder
	b.WriteString(comparisonKeyPrefix)
	if filter.Category != nil {
		b.WriteString(filter.Category.String())
	}
	fmt.Fprintf(&b, ":%s:%s:%s", unixOrEmpty(filter.From), unixOrEmpty(filter.To), filter.Period)
	return b.String()
}

func unixOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d", t.Unix())
}

// cached serves key from cache or computes and stores it. Cache failures
// are logged and never fail the read.
func cached[T any](
	ctx context.Context,
	cache driven.ResultCache,
	key string,
	ttl time.Duration,
	compute func(context.Context) (T, error),
) (T, error) {
	if cache == nil {
		return compute(ctx)
	}

	raw, ok, err := cache.Get(ctx, key)
	switch {
	case err != nil:
		logger.Warn("cache get %s: %v", key, err)
	case ok:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			logger.Debug("cache hit %s", key)
			return v, nil
		}
		logger.Warn("cache entry %s is corrupt, recomputing", key)
	}

	v, err := compute(ctx)
	if err != nil {
		return v, err
	}
	store(ctx, cache, key, ttl, v)
	return v, nil
}

func store(ctx context.Context, cache driven.ResultCache, key string, ttl time.Duration, v any) {
	if cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Warn("cache encode %s: %v", key, err)
		return
	}
	if err := cache.Set(ctx, key, raw, ttl); err != nil {
		logger.Warn("cache set %s: %v", key, err)
	}
}

func invalidate(ctx context.Context, cache driven.ResultCache, prefixes ...string) {
	if cache == nil {
		return
	}
	for _, prefix := range prefixes {
		if err := cache.DeletePrefix(ctx, prefix); err != nil {
			logger.Warn("cache invalidate %s: %v", prefix, err)
		}
	}
}
