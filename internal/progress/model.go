package progress

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Achievement keys unlocked by threshold crossings.
const (
	AchievementFirstQuiz      = "first_quiz"
	AchievementPerfectScore   = "perfect_score"
	AchievementQuizEnthusiast = "quiz_enthusiast"
)

// TopicProgress tracks per-topic counters.
type TopicProgress struct {
	LessonsCompleted int       `json:"lessons_completed" bson:"lessons_completed"`
	QuizzesTaken     int       `json:"quizzes_taken" bson:"quizzes_taken"`
	AverageScore     float64   `json:"average_score" bson:"average_score"`
	LastAccessed     time.Time `json:"last_accessed" bson:"last_accessed"`
}

// LearningProgress is one record per user, upserted on every chat or quiz
// action.
type LearningProgress struct {
	ID            primitive.ObjectID       `json:"id" bson:"_id,omitempty"`
	UserID        primitive.ObjectID       `json:"user_id" bson:"user_id"`
	Topics        map[string]TopicProgress `json:"topics" bson:"topics"`
	Achievements  []string                 `json:"achievements" bson:"achievements"`
	CurrentStreak int                      `json:"current_streak" bson:"current_streak"`
	LongestStreak int                      `json:"longest_streak" bson:"longest_streak"`
	LastActivity  time.Time                `json:"last_activity" bson:"last_activity"`
}

// UpdateTopic applies fn to the named topic's counters, creating the entry
// on first touch, and stamps the activity times.
func (p *LearningProgress) UpdateTopic(topic string, fn func(*TopicProgress)) {
	if p.Topics == nil {
		p.Topics = make(map[string]TopicProgress)
	}
	tp := p.Topics[topic]
	fn(&tp)
	now := time.Now().UTC()
	tp.LastAccessed = now
	p.Topics[topic] = tp
	p.LastActivity = now
}

// AddAchievement records an achievement once; repeats are no-ops.
func (p *LearningProgress) AddAchievement(key string) {
	for _, a := range p.Achievements {
		if a == key {
			return
		}
	}
	p.Achievements = append(p.Achievements, key)
}

// UpdateStreak advances the day-streak counters. Activity on a consecutive
// calendar day extends the streak; a gap resets it; same-day activity
// leaves it unchanged.
func (p *LearningProgress) UpdateStreak(now time.Time) {
	switch {
	case p.LastActivity.IsZero():
		p.CurrentStreak = 1
	default:
		days := calendarDaysBetween(p.LastActivity, now)
		switch {
		case days == 1:
			p.CurrentStreak++
		case days > 1:
			p.CurrentStreak = 1
		}
	}
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.LastActivity = now
}

func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
