package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "jobs"

type MongoRepo struct {
	Coll *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{Coll: db.Collection(Collection)}
}

func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "runAt", Value: 1}}, Options: options.Index().SetName("status_runAt")},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "lockedAt", Value: 1}}, Options: options.Index().SetName("status_lockedAt")},
	}
}

func (r *MongoRepo) Enqueue(ctx context.Context, j *Job) error {
	j.ID = uuid.NewString()
	now := time.Now()
	j.CreatedAt, j.UpdatedAt = now, now
	_, err := r.Coll.InsertOne(ctx, j)
	return err
}

// Claim uses findOneAndUpdate so concurrent workers never receive the same job.
func (r *MongoRepo) Claim(ctx context.Context, workerID string, now time.Time) (*Job, error) {
	if _, err := r.Coll.UpdateMany(ctx,
		bson.D{
			{Key: "status", Value: StatusRunning},
			{Key: "lockedAt", Value: bson.D{{Key: "$lt", Value: now.Add(-staleLock)}}},
		},
		bson.D{
			{Key: "$set", Value: bson.D{{Key: "status", Value: StatusPending}, {Key: "updatedAt", Value: now}}},
			{Key: "$unset", Value: bson.D{{Key: "lockedBy", Value: ""}, {Key: "lockedAt", Value: ""}}},
		},
	); err != nil {
		return nil, err
	}

	var job Job
	err := r.Coll.FindOneAndUpdate(ctx,
		bson.D{
			{Key: "status", Value: StatusPending},
			{Key: "runAt", Value: bson.D{{Key: "$lte", Value: now}}},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: StatusRunning},
			{Key: "lockedBy", Value: workerID},
			{Key: "lockedAt", Value: now},
			{Key: "updatedAt", Value: now},
		}}},
		options.FindOneAndUpdate().
			SetSort(bson.D{{Key: "runAt", Value: 1}}).
			SetReturnDocument(options.After),
	).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *MongoRepo) set(ctx context.Context, id string, fields bson.D, unset ...string) error {
	update := bson.D{{Key: "$set", Value: append(fields, bson.E{Key: "updatedAt", Value: time.Now()})}}
	if len(unset) > 0 {
		u := bson.D{}
		for _, k := range unset {
			u = append(u, bson.E{Key: k, Value: ""})
		}
		update = append(update, bson.E{Key: "$unset", Value: u})
	}
	_, err := r.Coll.UpdateByID(ctx, id, update)
	return err
}

func (r *MongoRepo) MarkDone(ctx context.Context, id string) error {
	return r.set(ctx, id, bson.D{{Key: "status", Value: StatusDone}})
}

func (r *MongoRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	return r.set(ctx, id, bson.D{{Key: "status", Value: StatusFailed}, {Key: "lastError", Value: errMsg}})
}

func (r *MongoRepo) RetryLater(ctx context.Context, id string, attempts int, runAt time.Time, errMsg string) error {
	return r.set(ctx, id, bson.D{
		{Key: "status", Value: StatusPending},
		{Key: "attempts", Value: attempts},
		{Key: "runAt", Value: runAt},
		{Key: "lastError", Value: errMsg},
	}, "lockedBy", "lockedAt")
}

func (r *MongoRepo) CancelPending(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.Coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "userId", Value: userID}, {Key: "status", Value: StatusPending}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: StatusCancelled}, {Key: "updatedAt", Value: time.Now()}}}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
