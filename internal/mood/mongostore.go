package mood

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "moodentries"

type entryDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	Mood      int                `bson:"mood"`
	Tags      []string           `bson:"tags"`
	Notes     string             `bson:"notes"`
	Date      time.Time          `bson:"date"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d entryDoc) entry() Entry {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return Entry{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Mood:      d.Mood,
		Tags:      tags,
		Notes:     d.Notes,
		Date:      d.Date,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type MongoStore struct {
	Coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{Coll: db.Collection(Collection)}
}

// Indexes returns the index models the collection needs for FindSince.
func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetName("userId_date"),
	}}
}

func (s *MongoStore) Create(ctx context.Context, e *Entry) error {
	doc := entryDoc{
		ID:        primitive.NewObjectID(),
		UserID:    e.UserID,
		Mood:      e.Mood,
		Tags:      e.Tags,
		Notes:     e.Notes,
		Date:      e.Date,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if _, err := s.Coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	e.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) FindSince(ctx context.Context, userID string, since time.Time) ([]Entry, error) {
	filter := bson.D{
		{Key: "userId", Value: userID},
		{Key: "date", Value: bson.D{{Key: "$gte", Value: since}}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.Coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []entryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entry())
	}
	return out, nil
}
