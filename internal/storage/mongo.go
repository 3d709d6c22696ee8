package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo wraps the client and selected database.
type Mongo struct {
	client *mongo.Client
	DB     *mongo.Database
}

// Connect opens a connection, verifies it with a ping, and creates the
// indexes the queries rely on.
func Connect(ctx context.Context, uri, databaseName string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	m := &Mongo{client: client, DB: client.Database(databaseName)}
	if err := m.createIndexes(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mongo) createIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "public_id", Value: 1}}, Options: unique},
		},
		"conversations": {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		},
		"quiz_results": {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "topic", Value: 1}}},
			{Keys: bson.D{{Key: "completed_at", Value: -1}}},
		},
		"learning_progress": {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		},
	}

	for coll, models := range indexes {
		if _, err := m.DB.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
