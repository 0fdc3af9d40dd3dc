package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"stocky-api/internal/cache"
	"stocky-api/pkg/metrics"

	"go.uber.org/zap"
)

// FallbackAnalyzer asks primary first and answers from fallback when it fails.
// A nil primary means no API key is configured.
type FallbackAnalyzer struct {
	primary  Analyzer
	fallback Analyzer
	log      *zap.Logger
}

func NewFallbackAnalyzer(primary, fallback Analyzer, log *zap.Logger) *FallbackAnalyzer {
	return &FallbackAnalyzer{primary: primary, fallback: fallback, log: log.Named("ai")}
}

func (f *FallbackAnalyzer) AnalyzeImage(ctx context.Context, filename string, data []byte) (*Analysis, error) {
	if f.primary == nil {
		return f.fallback.AnalyzeImage(ctx, filename, data)
	}

	a, err := f.primary.AnalyzeImage(ctx, filename, data)
	if err == nil {
		return a, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	f.log.Warn("vision api failed, using mock analyzer", zap.Error(err))
	return f.fallback.AnalyzeImage(ctx, filename, data)
}

// CachedAnalyzer memoises results by the SHA-256 of the image bytes
type CachedAnalyzer struct {
	inner Analyzer
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedAnalyzer(inner Analyzer, c cache.Cache, ttl time.Duration, log *zap.Logger) *CachedAnalyzer {
	return &CachedAnalyzer{inner: inner, cache: c, ttl: ttl, log: log.Named("ai-cache")}
}

func cacheKey(data []byte) string {
	sum := sha256.Sum256(data)
	return "ai:analysis:" + hex.EncodeToString(sum[:])
}

func (c *CachedAnalyzer) AnalyzeImage(ctx context.Context, filename string, data []byte) (*Analysis, error) {
	key := cacheKey(data)

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		c.log.Warn("cache read failed", zap.Error(err))
	} else if ok {
		var a Analysis
		if err := json.Unmarshal(raw, &a); err == nil {
			a.Cached = true
			metrics.AIAnalyses.WithLabelValues("cache").Inc()
			return &a, nil
		}
	}

	a, err := c.inner.AnalyzeImage(ctx, filename, data)
	if err != nil {
		return nil, err
	}

	// mock answers depend on the file name, so only API results are shared
	if a.Source == SourceAPI {
		raw, _ := json.Marshal(a)
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			c.log.Warn("cache write failed", zap.Error(err))
		}
	}
	return a, nil
}
