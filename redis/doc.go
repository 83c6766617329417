// Package redis provides a Redis-backed token cache for swiftkit built on
// go-redis.
//
// Store implements cache.Store, so several processes authenticating with the
// same identity share one token instead of each requesting their own:
//
//	client, err := redis.New(redis.Config{Enabled: true, Addr: "localhost:6379"}, log)
//	store := redis.NewStore(client, "swiftkit")
//	c, err := swift.New(ctx, config.Options{AuthURL: url, ..., Cache: store})
package redis
