package fetch

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
)

// CacheConfig holds the Redis read-through cache parameters.
type CacheConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`

	// KeyPrefix namespaces cache entries so several services can share one
	// Redis instance.
	KeyPrefix string `mapstructure:"key_prefix"`
}

type cachedFetcher struct {
	inner  Fetcher
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
	log    logging.Logger
}

// NewCachedFetcher decorates inner with a Redis read-through byte cache.
// A cache that is down or errors degrades to the inner fetcher: the cache
// must never be the reason a resource fails to load.
func NewCachedFetcher(inner Fetcher, cfg CacheConfig, log logging.Logger) Fetcher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "toxscope:fetch:"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &cachedFetcher{
		inner:  inner,
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		log:    log.Named("fetchcache"),
	}
}

// newCachedFetcherWithClient is the test seam: it accepts any redis.Cmdable.
func newCachedFetcherWithClient(inner Fetcher, rdb redis.Cmdable, prefix string, ttl time.Duration, log logging.Logger) Fetcher {
	return &cachedFetcher{inner: inner, rdb: rdb, prefix: prefix, ttl: ttl, log: log}
}

func (c *cachedFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	key := c.prefix + name

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		return data, nil
	}
	if err != redis.Nil {
		c.log.Warn("fetch cache read failed", logging.String("key", key), logging.Err(err))
	}

	data, err = c.inner.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("fetch cache write failed", logging.String("key", key), logging.Err(err))
	}
	return data, nil
}
