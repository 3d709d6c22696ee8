package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stats are cumulative usage counters, mutated by every chat or quiz
// action.
type Stats struct {
	TotalLessons  int     `json:"total_lessons" bson:"total_lessons"`
	TotalQuizzes  int     `json:"total_quizzes" bson:"total_quizzes"`
	AverageScore  float64 `json:"average_score" bson:"average_score"`
	Streak        int     `json:"streak" bson:"streak"`
	TotalMessages int     `json:"total_messages" bson:"total_messages"`
}

type User struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PublicID      string             `json:"public_id" bson:"public_id"`
	Name          string             `json:"name" bson:"name"`
	LearningLevel string             `json:"learning_level" bson:"learning_level"`
	Stats         Stats              `json:"stats" bson:"stats"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}
