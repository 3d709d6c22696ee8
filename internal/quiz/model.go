package quiz

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Difficulty levels accepted for quiz generation.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question is a single multiple-choice question with its answer key.
type Question struct {
	Question      string            `json:"question" bson:"question"`
	Options       map[string]string `json:"options" bson:"options"`
	CorrectAnswer string            `json:"correct_answer" bson:"correct_answer"`
	Explanation   string            `json:"explanation" bson:"explanation"`
}

// Session is a generated quiz awaiting submission. The answer key stays
// server-side; the client only ever sees questions and options.
type Session struct {
	ID         string             `json:"id" bson:"_id"`
	UserID     primitive.ObjectID `json:"user_id" bson:"user_id"`
	Topic      string             `json:"topic" bson:"topic"`
	Difficulty string             `json:"difficulty" bson:"difficulty"`
	Questions  []Question         `json:"questions" bson:"questions"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// Result is a scored submission. Created once, never mutated afterward.
type Result struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID         primitive.ObjectID `json:"user_id" bson:"user_id"`
	Topic          string             `json:"topic" bson:"topic"`
	Questions      []Question         `json:"questions" bson:"questions"`
	Answers        map[string]string  `json:"answers" bson:"answers"`
	Score          int                `json:"score" bson:"score"`
	TotalQuestions int                `json:"total_questions" bson:"total_questions"`
	Percentage     float64            `json:"percentage" bson:"percentage"`
	Difficulty     string             `json:"difficulty" bson:"difficulty"`
	TimeSpent      int                `json:"time_spent" bson:"time_spent"`
	CompletedAt    time.Time          `json:"completed_at" bson:"completed_at"`
}

// AggregateStats summarizes a user's quiz history.
type AggregateStats struct {
	TotalQuizzes  int     `json:"total_quizzes"`
	AverageScore  float64 `json:"average_score"`
	TopicsCovered int     `json:"topics_covered"`
}
