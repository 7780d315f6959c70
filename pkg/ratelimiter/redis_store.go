package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeScript refills and consumes in one round trip.
// KEYS[1] bucket hash; ARGV capacity, rate, interval_ms, now_ms, tokens, ttl_ms.
var consumeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local n = tonumber(ARGV[5])
local ttl = tonumber(ARGV[6])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'refill')
local tokens = tonumber(state[1])
local refill = tonumber(state[2])
if tokens == nil or refill == nil then
  tokens = capacity
  refill = now
end

local intervals = math.floor((now - refill) / interval)
local cap_intervals = math.floor(capacity / rate) + 1
if intervals > cap_intervals then intervals = cap_intervals end
if intervals > 0 then
  tokens = math.min(tokens + intervals * rate, capacity)
  refill = now
end

local remaining = tokens - n
tokens = math.max(remaining, -1)
redis.call('HSET', KEYS[1], 'tokens', tokens, 'refill', refill)
redis.call('PEXPIRE', KEYS[1], ttl)
return {remaining, refill}
`)

// RedisStore shares buckets between instances.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore stores buckets as hashes under prefix+key.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	now := time.Now().UnixMilli()
	interval := cfg.RefillInterval.Milliseconds()
	// Keep the hash until a drained bucket would be full again.
	ttl := interval * int64(cfg.Capacity/cfg.RefillRate+1)

	res, err := consumeScript.Run(ctx, s.client, []string{s.prefix + key},
		cfg.Capacity, cfg.RefillRate, interval, now, tokens, ttl).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("%w: unexpected script reply %v", ErrStoreUnavailable, res)
	}
	return int(res[0]), time.UnixMilli(res[1] + interval), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
