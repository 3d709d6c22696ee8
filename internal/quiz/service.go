package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"medlama-backend/internal/ai"
	"medlama-backend/internal/httpapi"
	"medlama-backend/internal/platform/logger"
	"medlama-backend/internal/progress"
	"medlama-backend/internal/user"
)

const (
	defaultNumQuestions = 5
	maxNumQuestions     = 20
	secondsPerQuestion  = 120
)

type Service struct {
	repo     Repository
	aiClient ai.Client
	users    user.Repository
	progress progress.Repository
	log      *logger.Logger
}

func NewService(repo Repository, aiClient ai.Client, users user.Repository, prog progress.Repository, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		aiClient: aiClient,
		users:    users,
		progress: prog,
		log:      log,
	}
}

type GenerateInput struct {
	Topic        string `json:"topic"`
	NumQuestions int    `json:"num_questions"`
	Difficulty   string `json:"difficulty"`
}

// ClientQuestion is a question as the client sees it: no answer key.
type ClientQuestion struct {
	ID       int               `json:"id"`
	Question string            `json:"question"`
	Options  map[string]string `json:"options"`
}

type GenerateResult struct {
	QuizID       string           `json:"quiz_id"`
	Topic        string           `json:"topic"`
	Questions    []ClientQuestion `json:"questions"`
	NumQuestions int              `json:"num_questions"`
	Difficulty   string           `json:"difficulty"`
	TimeLimit    int              `json:"time_limit"`
}

// Generate asks the AI for a structured quiz and stores the full question
// set, answer key included, as a session keyed by quiz ID.
func (s *Service) Generate(ctx context.Context, u *user.User, in GenerateInput) (*GenerateResult, error) {
	topic := strings.TrimSpace(in.Topic)
	if topic == "" {
		return nil, httpapi.Validation("topic is required", map[string]string{"field": "topic"})
	}

	numQuestions := in.NumQuestions
	if numQuestions == 0 {
		numQuestions = defaultNumQuestions
	}
	if numQuestions < 1 || numQuestions > maxNumQuestions {
		return nil, httpapi.Validation(
			fmt.Sprintf("num_questions must be between 1 and %d", maxNumQuestions),
			map[string]string{"field": "num_questions"},
		)
	}

	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = DifficultyMedium
	}
	if difficulty != DifficultyEasy && difficulty != DifficultyMedium && difficulty != DifficultyHard {
		return nil, httpapi.Validation(
			fmt.Sprintf("invalid difficulty %q", in.Difficulty),
			map[string]string{"field": "difficulty"},
		)
	}

	result, err := s.aiClient.Generate(ctx, ai.GenerateRequest{
		Messages: []ai.ChatMessage{{
			Role:    ai.RoleUser,
			Content: ai.QuizPrompt(topic, numQuestions, difficulty),
		}},
		LearningLevel: u.LearningLevel,
	})
	if err != nil {
		s.log.Error("quiz generation failed", "topic", topic, "error", err)
		return nil, httpapi.AIService("failed to generate quiz")
	}

	questions, err := parseQuestions(result.Text)
	if err != nil || len(questions) == 0 {
		// The model did not produce parseable JSON; fall back to
		// placeholders rather than failing the whole request.
		s.log.Warn("quiz response not parseable, using placeholders", "topic", topic, "error", err)
		questions = placeholderQuestions(numQuestions)
	}

	session := &Session{
		ID:         uuid.New().String(),
		UserID:     u.ID,
		Topic:      topic,
		Difficulty: difficulty,
		Questions:  questions,
	}
	if err := s.repo.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	clientQuestions := make([]ClientQuestion, 0, len(questions))
	for idx, q := range questions {
		clientQuestions = append(clientQuestions, ClientQuestion{
			ID:       idx + 1,
			Question: q.Question,
			Options:  q.Options,
		})
	}

	return &GenerateResult{
		QuizID:       session.ID,
		Topic:        topic,
		Questions:    clientQuestions,
		NumQuestions: len(clientQuestions),
		Difficulty:   difficulty,
		TimeLimit:    len(clientQuestions) * secondsPerQuestion,
	}, nil
}

type SubmitInput struct {
	QuizID    string            `json:"quiz_id"`
	Answers   map[string]string `json:"answers"`
	TimeSpent int               `json:"time_spent"`
}

type SubmitResult struct {
	Score          int              `json:"score"`
	TotalQuestions int              `json:"total_questions"`
	Percentage     float64          `json:"percentage"`
	Results        []QuestionResult `json:"results"`
	Achievements   []string         `json:"achievements"`
	TimeSpent      int              `json:"time_spent"`
}

// Submit grades a submission against the stored session's answer key,
// persists the result, and updates user and progress counters.
func (s *Service) Submit(ctx context.Context, u *user.User, in SubmitInput) (*SubmitResult, error) {
	if in.QuizID == "" {
		return nil, httpapi.Validation("quiz_id is required", map[string]string{"field": "quiz_id"})
	}

	session, err := s.repo.GetSession(ctx, in.QuizID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, httpapi.NotFound("quiz")
		}
		return nil, err
	}
	if session.UserID != u.ID {
		return nil, httpapi.NotFound("quiz")
	}

	score, percentage, results := Score(session.Questions, in.Answers)
	percentage = roundTwo(percentage)

	quizResult := &Result{
		UserID:         u.ID,
		Topic:          session.Topic,
		Questions:      session.Questions,
		Answers:        in.Answers,
		Score:          score,
		TotalQuestions: len(session.Questions),
		Percentage:     percentage,
		Difficulty:     session.Difficulty,
		TimeSpent:      in.TimeSpent,
	}
	if err := s.repo.SaveResult(ctx, quizResult); err != nil {
		return nil, err
	}

	achievements := s.recordSubmission(ctx, u, session.Topic, percentage)

	return &SubmitResult{
		Score:          score,
		TotalQuestions: len(session.Questions),
		Percentage:     percentage,
		Results:        results,
		Achievements:   achievements,
		TimeSpent:      in.TimeSpent,
	}, nil
}

// recordSubmission updates counters and returns any newly earned
// achievement labels. Counter failures are logged, not surfaced; the
// submission itself already succeeded.
func (s *Service) recordSubmission(ctx context.Context, u *user.User, topic string, percentage float64) []string {
	prevQuizzes := u.Stats.TotalQuizzes

	stats := u.Stats
	stats.TotalQuizzes = prevQuizzes + 1
	stats.AverageScore = roundTwo((u.Stats.AverageScore*float64(prevQuizzes) + percentage) / float64(prevQuizzes+1))

	var achievements []string

	prog, err := s.progress.GetOrCreate(ctx, u.ID)
	if err != nil {
		s.log.Warn("failed to load progress", "error", err)
		prog = nil
	}

	if prog != nil {
		prog.UpdateStreak(time.Now().UTC())
		prog.UpdateTopic(topic, func(tp *progress.TopicProgress) {
			newAvg := (tp.AverageScore*float64(tp.QuizzesTaken) + percentage) / float64(tp.QuizzesTaken+1)
			tp.QuizzesTaken++
			tp.AverageScore = roundTwo(newAvg)
		})
		stats.Streak = prog.CurrentStreak

		if prevQuizzes == 0 {
			achievements = append(achievements, "First Quiz Completed!")
			prog.AddAchievement(progress.AchievementFirstQuiz)
		}
		if percentage == 100 {
			achievements = append(achievements, "Perfect Score!")
			prog.AddAchievement(progress.AchievementPerfectScore)
		}
		if percentage >= 90 {
			achievements = append(achievements, "Quiz Master!")
		}
		if prevQuizzes+1 >= 10 {
			achievements = append(achievements, "Quiz Enthusiast - 10 Quizzes!")
			prog.AddAchievement(progress.AchievementQuizEnthusiast)
		}

		if err := s.progress.Save(ctx, prog); err != nil {
			s.log.Warn("failed to save progress", "error", err)
		}
	}

	if err := s.users.UpdateStats(ctx, u.ID, stats); err != nil {
		s.log.Warn("failed to update user stats", "error", err)
	} else {
		u.Stats = stats
	}

	return achievements
}

type HistoryEntry struct {
	ID             string    `json:"id"`
	Topic          string    `json:"topic"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	Difficulty     string    `json:"difficulty"`
	TimeSpent      int       `json:"time_spent"`
	CompletedAt    time.Time `json:"completed_at"`
}

type History struct {
	Quizzes []HistoryEntry  `json:"quizzes"`
	Stats   *AggregateStats `json:"stats"`
}

func (s *Service) History(ctx context.Context, u *user.User, topic string, limit int64) (*History, error) {
	if limit <= 0 {
		limit = 20
	}
	results, err := s.repo.ListResults(ctx, u.ID, topic, limit)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.Stats(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, HistoryEntry{
			ID:             r.ID.Hex(),
			Topic:          r.Topic,
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			Percentage:     r.Percentage,
			Difficulty:     r.Difficulty,
			TimeSpent:      r.TimeSpent,
			CompletedAt:    r.CompletedAt,
		})
	}
	return &History{Quizzes: entries, Stats: stats}, nil
}

// parseQuestions extracts the first JSON array from the model output and
// decodes it as a question list.
func parseQuestions(text string) ([]Question, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var questions []Question
	if err := json.Unmarshal([]byte(text[start:end+1]), &questions); err != nil {
		return nil, fmt.Errorf("decode quiz JSON: %w", err)
	}
	return questions, nil
}

func placeholderQuestions(n int) []Question {
	questions := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, Question{
			Question: fmt.Sprintf("Question %d from quiz", i+1),
			Options: map[string]string{
				"A": "Option A", "B": "Option B", "C": "Option C", "D": "Option D",
			},
			CorrectAnswer: "A",
			Explanation:   "Explanation pending",
		})
	}
	return questions
}
