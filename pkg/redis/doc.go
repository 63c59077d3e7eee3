// Package redis connects to Redis with go-redis/v9 and provides a small
// distributed lock used to serialize listing creation per seller.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	locker := redis.NewLocker(client, cfg)
//
//	unlock, err := locker.Lock(ctx, "listings:"+sellerID.String())
//	if err != nil {
//		return err
//	}
//	defer unlock()
//
// Healthcheck plugs into the readiness endpoint.
package redis
