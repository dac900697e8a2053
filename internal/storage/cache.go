package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedStats looks up a previously cached stats payload. A cache problem is
// treated as a miss; the caller recomputes from PostgreSQL.
func (s *Service) CachedStats(ctx context.Context, key string) (*Stats, bool) {
	if s.Redis == nil {
		return nil, false
	}
	raw, err := s.Redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.Logger.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	var stats Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

// CacheStats stores a stats payload with a short TTL. Failures are logged
// and ignored.
func (s *Service) CacheStats(ctx context.Context, key string, stats *Stats, ttl time.Duration) {
	if s.Redis == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		s.Logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}
