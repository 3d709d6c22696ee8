package analytics

import (
	"context"

	"medlama-backend/internal/chat"
	"medlama-backend/internal/progress"
	"medlama-backend/internal/quiz"
	"medlama-backend/internal/user"
)

// Service aggregates counters across the user's stores for the dashboard.
type Service struct {
	conversations chat.Repository
	quizzes       quiz.Repository
	progress      progress.Repository
}

func NewService(conversations chat.Repository, quizzes quiz.Repository, prog progress.Repository) *Service {
	return &Service{
		conversations: conversations,
		quizzes:       quizzes,
		progress:      prog,
	}
}

type Report struct {
	User          UserSummary          `json:"user"`
	Conversations ConversationsSummary `json:"conversations"`
	Quizzes       *quiz.AggregateStats `json:"quizzes"`
	Progress      ProgressSummary      `json:"progress"`
}

type UserSummary struct {
	Name          string     `json:"name"`
	LearningLevel string     `json:"learning_level"`
	Stats         user.Stats `json:"stats"`
}

type ConversationsSummary struct {
	Total int64 `json:"total"`
}

type ProgressSummary struct {
	Topics        map[string]progress.TopicProgress `json:"topics"`
	Achievements  []string                          `json:"achievements"`
	CurrentStreak int                               `json:"current_streak"`
	LongestStreak int                               `json:"longest_streak"`
}

func (s *Service) Report(ctx context.Context, u *user.User) (*Report, error) {
	conversationCount, err := s.conversations.CountByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	quizStats, err := s.quizzes.Stats(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	prog, err := s.progress.GetOrCreate(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	achievements := prog.Achievements
	if achievements == nil {
		achievements = []string{}
	}

	return &Report{
		User: UserSummary{
			Name:          u.Name,
			LearningLevel: u.LearningLevel,
			Stats:         u.Stats,
		},
		Conversations: ConversationsSummary{Total: conversationCount},
		Quizzes:       quizStats,
		Progress: ProgressSummary{
			Topics:        prog.Topics,
			Achievements:  achievements,
			CurrentStreak: prog.CurrentStreak,
			LongestStreak: prog.LongestStreak,
		},
	}, nil
}
