package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// InitRedis connects to Redis. A nil client is returned when Redis is not
// reachable; the cache then runs as a pass-through.
func InitRedis(ctx context.Context, addr string, log logrus.FieldLogger) *goredis.Client {
	client := goredis.NewClient(&goredis.Options{
		Addr: addr,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).WithField("addr", addr).Warn("Redis not available. Running without Redis.")
		_ = client.Close()
		return nil
	}

	log.WithField("addr", addr).Info("Redis connected successfully.")
	return client
}
