package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-optimizer/internal/domain"
	"route-optimizer/internal/platform/obs"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "geocode:"

type redisEntry struct {
	FullAddress string  `json:"full_address"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// RedisGeocodeCache stores geocode results as JSON strings with an expiry,
// so a shared cache can serve several service instances.
type RedisGeocodeCache struct {
	Client *redis.Client
	// TTL of each entry; zero keeps entries forever.
	TTL time.Duration
}

func NewRedisGeocodeCache(client *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{Client: client, TTL: ttl}
}

// Fetch cached locations for the given query keys.
func (r *RedisGeocodeCache) GetMany(
	ctx context.Context,
	keys []string,
) (_ map[string]domain.ResolvedLocation, err error) {
	defer obs.Time(ctx, "geocode.redis.GetMany")(&err)

	if r.Client == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := uniqueKeys(keys)
	if len(uniq) == 0 {
		return map[string]domain.ResolvedLocation{}, nil
	}

	redisKeys := make([]string, 0, len(uniq))
	for _, k := range uniq {
		redisKeys = append(redisKeys, redisKeyPrefix+k)
	}

	vals, err := r.Client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: mget: %w", err)
	}

	out := make(map[string]domain.ResolvedLocation, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// nil: key missing or expired.
			continue
		}

		var e redisEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("get geocode cache: decode %q: %w", uniq[i], err)
		}
		out[uniq[i]] = domain.ResolvedLocation{
			Address:     uniq[i],
			FullAddress: e.FullAddress,
			Coordinates: domain.Coordinates{Lat: e.Lat, Lon: e.Lon},
		}
	}

	return out, nil
}

// Store query -> location mappings in the cache.
func (r *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.ResolvedLocation) (err error) {
	defer obs.Time(ctx, "geocode.redis.PutMany")(&err)

	if r.Client == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	if len(results) == 0 {
		return nil
	}

	pipe := r.Client.TxPipeline()
	for key, loc := range results {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("insert geocode cache: empty address key")
		}

		b, err := json.Marshal(redisEntry{FullAddress: loc.FullAddress, Lat: loc.Lat, Lon: loc.Lon})
		if err != nil {
			return fmt.Errorf("insert geocode cache address=%q: encode: %w", key, err)
		}
		pipe.Set(ctx, redisKeyPrefix+key, b, r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert geocode cache: exec pipeline: %w", err)
	}

	return nil
}
