package cache

import (
	"flashplan/config"

	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// InitializeCache builds the plan catalogue response cache. It returns
// nil when CACHE_TYPE is "none"; callers treat nil as "do not cache".
func InitializeCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.CacheType == "none" {
		logger.Info("Plan cache disabled")
		return nil, nil
	}

	c, err := cache.New(cache.Config{
		Type:          cfg.CacheType,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Plan cache initialized", zap.String("type", cfg.CacheType), zap.Duration("ttl", cfg.PlanCacheTTL))
	return c, nil
}
