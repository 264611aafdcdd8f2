package workers

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/yoockh/seopilot/internal/services"
)

func ProgressChannel(jobID string) string { return "seo_job:" + jobID + ":progress" }

// RedisProgress publishes job progress on a per-job Pub/Sub channel.
type RedisProgress struct {
	rdb *redis.Client
}

func NewRedisProgress(rdb *redis.Client) *RedisProgress {
	return &RedisProgress{rdb: rdb}
}

func (p *RedisProgress) Publish(ctx context.Context, ev services.ProgressEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, ProgressChannel(ev.JobID), string(b)).Err()
}
