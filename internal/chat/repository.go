package chat

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no conversation matches the lookup.
var ErrNotFound = errors.New("conversation not found")

type Repository interface {
	Create(ctx context.Context, c *Conversation) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Conversation, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit, skip int64) ([]Conversation, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	// AppendMessage adds one message atomically and advances updated_at,
	// so concurrent appends against the same conversation cannot lose
	// messages.
	AppendMessage(ctx context.Context, id primitive.ObjectID, msg Message) error
	SetTopic(ctx context.Context, id primitive.ObjectID, topic string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection("conversations")}
}

func (r *mongoRepo) Create(ctx context.Context, c *Conversation) error {
	now := time.Now().UTC()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, c)
	return err
}

func (r *mongoRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*Conversation, error) {
	var c Conversation
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *mongoRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, limit, skip int64) ([]Conversation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Conversation
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoRepo) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"user_id": userID})
}

func (r *mongoRepo) AppendMessage(ctx context.Context, id primitive.ObjectID, msg Message) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepo) SetTopic(ctx context.Context, id primitive.ObjectID, topic string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"topic": topic, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
