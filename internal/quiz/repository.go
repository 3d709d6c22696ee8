package quiz

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrSessionNotFound is returned when a quiz ID does not resolve to a
// stored session.
var ErrSessionNotFound = errors.New("quiz session not found")

type Repository interface {
	SaveSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	SaveResult(ctx context.Context, r *Result) error
	ListResults(ctx context.Context, userID primitive.ObjectID, topic string, limit int64) ([]Result, error)
	Stats(ctx context.Context, userID primitive.ObjectID) (*AggregateStats, error)
	CountResults(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type mongoRepo struct {
	sessions *mongo.Collection
	results  *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepo{
		sessions: db.Collection("quiz_sessions"),
		results:  db.Collection("quiz_results"),
	}
}

func (r *mongoRepo) SaveSession(ctx context.Context, s *Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.sessions.InsertOne(ctx, s)
	return err
}

func (r *mongoRepo) GetSession(ctx context.Context, id string) (*Session, error) {
	var s Session
	err := r.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *mongoRepo) SaveResult(ctx context.Context, res *Result) error {
	if res.ID.IsZero() {
		res.ID = primitive.NewObjectID()
	}
	if res.CompletedAt.IsZero() {
		res.CompletedAt = time.Now().UTC()
	}
	_, err := r.results.InsertOne(ctx, res)
	return err
}

func (r *mongoRepo) ListResults(ctx context.Context, userID primitive.ObjectID, topic string, limit int64) ([]Result, error) {
	query := bson.M{"user_id": userID}
	if topic != "" {
		query["topic"] = topic
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "completed_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.results.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Result
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoRepo) Stats(ctx context.Context, userID primitive.ObjectID) (*AggregateStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"total_quizzes": bson.M{"$sum": 1},
			"average_score": bson.M{"$avg": "$percentage"},
			"topics":        bson.M{"$addToSet": "$topic"},
		}}},
	}

	cursor, err := r.results.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TotalQuizzes int      `bson:"total_quizzes"`
		AverageScore float64  `bson:"average_score"`
		Topics       []string `bson:"topics"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &AggregateStats{}, nil
	}
	return &AggregateStats{
		TotalQuizzes:  rows[0].TotalQuizzes,
		AverageScore:  roundTwo(rows[0].AverageScore),
		TopicsCovered: len(rows[0].Topics),
	}, nil
}

func (r *mongoRepo) CountResults(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.results.CountDocuments(ctx, bson.M{"user_id": userID})
}

func roundTwo(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
