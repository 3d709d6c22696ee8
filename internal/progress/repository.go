package progress

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	// GetOrCreate returns the user's progress record, initializing an
	// empty one if none exists yet.
	GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*LearningProgress, error)
	Save(ctx context.Context, p *LearningProgress) error
}

type mongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection("learning_progress")}
}

func (r *mongoRepo) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*LearningProgress, error) {
	var p LearningProgress
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	p = LearningProgress{
		ID:     primitive.NewObjectID(),
		UserID: userID,
		Topics: make(map[string]TopicProgress),
	}
	if _, err := r.coll.InsertOne(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mongoRepo) Save(ctx context.Context, p *LearningProgress) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"user_id": p.UserID}, p, opts)
	return err
}
