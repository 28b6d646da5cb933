package db

import (
	"context"
	"fmt"

	"moodlog/internal/auth"
	"moodlog/internal/jobs"
	"moodlog/internal/mood"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}
	return client.Database(database), nil
}

func EnsureMongoIndexes(ctx context.Context, mdb *mongo.Database) error {
	sets := map[string][]mongo.IndexModel{
		mood.Collection:      mood.Indexes(),
		auth.UsersCollection: auth.UserIndexes(),
		jobs.Collection:      jobs.Indexes(),
	}
	for coll, models := range sets {
		if _, err := mdb.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
