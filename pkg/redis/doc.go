// Package redis connects to Redis with go-redis and exposes a ping probe
// suitable for readiness checks.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	ready := httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)}
//
// Connect retries the initial ping according to Config and reports
// ErrRedisNotReady joined with the last ping error when the server never
// answers.
package redis
