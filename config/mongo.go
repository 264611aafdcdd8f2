package config

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var MongoClient *mongo.Client

// InitMongo connects the optional call-log store.
func InitMongo(s *Settings) error {
	if s.MongoURI == "" {
		return errors.New("MONGO_URI environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*s.MongoTimeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(s.MongoURI).
		SetAppName("seopilot").
		SetServerSelectionTimeout(s.MongoTimeout).
		SetConnectTimeout(s.MongoTimeout).
		SetMaxPoolSize(s.MongoMaxPool).
		SetMinPoolSize(1).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return err
	}

	MongoClient = client
	return nil
}
