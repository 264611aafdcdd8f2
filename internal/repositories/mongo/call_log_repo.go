package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yoockh/seopilot/internal/models"
)

const defaultCallLogLimit = 50

// CallLogRepository stores call logs as documents, for deployments that
// keep the high-volume audit trail out of Postgres.
type CallLogRepository interface {
	Create(ctx context.Context, l *models.LlmCallLog) error
	List(ctx context.Context, f models.CallLogFilter) ([]models.LlmCallLog, error)
}

type callLogRepo struct {
	col *mongo.Collection
}

func NewCallLogRepo(db *mongo.Database, collection string) CallLogRepository {
	return &callLogRepo{col: db.Collection(collection)}
}

func (r *callLogRepo) Create(ctx context.Context, l *models.LlmCallLog) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, l)
	return err
}

func (r *callLogRepo) List(ctx context.Context, f models.CallLogFilter) ([]models.LlmCallLog, error) {
	filter := bson.M{}
	if f.ProductID != "" {
		filter["product_id"] = f.ProductID
	}
	if f.JobID != "" {
		filter["seo_job_id"] = f.JobID
	}
	if f.AgentType != "" {
		filter["agent_type"] = f.AgentType
	}
	limit := int64(f.Limit)
	if limit <= 0 {
		limit = defaultCallLogLimit
	}

	cur, err := r.col.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.LlmCallLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
