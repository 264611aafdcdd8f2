package workers

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/yoockh/seopilot/internal/services"
)

const (
	ProductStream = "seo:products"
	SyncStream    = "catalog:sync"
)

var errBadMessage = errors.New("malformed stream message")

// RedisQueue enqueues work onto the Redis streams read by StreamPool.
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

func (q *RedisQueue) EnqueueProduct(ctx context.Context, t services.ProductTask) error {
	return q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: ProductStream,
		Values: map[string]any{"job_id": t.JobID, "product_id": t.ProductID, "llm_config_id": t.ConfigID},
	}).Err()
}

func (q *RedisQueue) EnqueueSync(ctx context.Context, storeID string) error {
	return q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: SyncStream,
		Values: map[string]any{"store_id": storeID},
	}).Err()
}

func ProductTaskFromMessage(msg redis.XMessage) (services.ProductTask, error) {
	t := services.ProductTask{
		JobID:     field(msg, "job_id"),
		ProductID: field(msg, "product_id"),
		ConfigID:  field(msg, "llm_config_id"),
	}
	if t.JobID == "" || t.ProductID == "" {
		return t, errBadMessage
	}
	return t, nil
}

// ProductHandler runs product tasks through the processor.
func ProductHandler(proc services.ProductProcessor) Handler {
	return func(ctx context.Context, msg redis.XMessage) error {
		task, err := ProductTaskFromMessage(msg)
		if err != nil {
			return err
		}
		return proc.Run(ctx, task)
	}
}

// SyncHandler runs store catalog syncs.
func SyncHandler(sync services.CatalogSyncService) Handler {
	return func(ctx context.Context, msg redis.XMessage) error {
		storeID := field(msg, "store_id")
		if storeID == "" {
			return errBadMessage
		}
		return sync.SyncStore(ctx, storeID)
	}
}
