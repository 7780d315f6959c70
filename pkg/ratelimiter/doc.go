// Package ratelimiter counts events per key with a token bucket.
//
// A Bucket holds Capacity tokens and regains RefillRate tokens every
// RefillInterval. Each Allow call takes one token; a negative Remaining in
// the Result means the key has exhausted its budget.
//
//	b, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//	res, err := b.Allow(ctx, "user:42")
//	if !res.Allowed() {
//		// over budget
//	}
//
// MemoryStore keeps buckets in process. RedisStore shares them between
// instances through a Lua script so refill and consume happen atomically.
package ratelimiter
