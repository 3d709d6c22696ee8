package user

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

type Repository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetByPublicID(ctx context.Context, publicID string) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdateStats(ctx context.Context, id primitive.ObjectID, stats Stats) error
}

type mongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection("users")}
}

func (r *mongoRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	var u User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *mongoRepo) GetByPublicID(ctx context.Context, publicID string) (*User, error) {
	var u User
	err := r.coll.FindOne(ctx, bson.M{"public_id": publicID}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *mongoRepo) Create(ctx context.Context, u *User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, u)
	return err
}

func (r *mongoRepo) UpdateStats(ctx context.Context, id primitive.ObjectID, stats Stats) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"stats": stats}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
