package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CallLogCollection = "llm_call_logs"

func EnsureMongoIndexes(s *Settings) error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoClient.Database(s.MongoDB)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logs := db.Collection(CallLogCollection)
	_, err := logs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_product_created"),
		},
		{
			Keys:    bson.D{{Key: "seo_job_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_job_created"),
		},
		{
			Keys:    bson.D{{Key: "agent_type", Value: 1}, {Key: "success", Value: 1}},
			Options: options.Index().SetName("by_agent_success"),
		},
	})
	return err
}
