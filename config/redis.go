package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis connects the queue, cache and progress client. The pool must
// cover the blocking stream readers.
func InitRedis(s *Settings) error {
	val := s.RedisAddr
	if val == "" {
		val = os.Getenv("REDIS_URL")
	}
	if val == "" {
		return errors.New("REDIS_ADDR (or REDIS_URL) environment variable is not set")
	}

	var opt *redis.Options
	if strings.HasPrefix(val, "redis://") || strings.HasPrefix(val, "rediss://") {
		var err error
		if opt, err = redis.ParseURL(val); err != nil {
			return err
		}
	} else {
		opt = &redis.Options{Addr: val}
	}
	opt.PoolSize = s.RedisPoolSize
	opt.DialTimeout = s.RedisDialTimeout
	RedisClient = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), s.RedisDialTimeout+time.Second)
	defer cancel()
	return RedisClient.Ping(ctx).Err()
}
