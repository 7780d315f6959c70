// Package redis connects to the shared Redis instance.
//
// Redis is optional: it backs the cross-instance tenant cache and the
// mismatch counters when REDIS_URL is set.
//
//	cfg := config.MustLoad[redis.Config]()
//	if cfg.Enabled() {
//		client, err := redis.Connect(ctx, cfg)
//		if err != nil {
//			return err
//		}
//		defer client.Close()
//	}
//
// Errors wrap go-redis errors with errors.Join, so both the sentinel and the
// driver error match errors.Is.
package redis
