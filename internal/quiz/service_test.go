package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medlama-backend/internal/ai"
	"medlama-backend/internal/httpapi"
	"medlama-backend/internal/platform/logger"
	"medlama-backend/internal/progress"
	"medlama-backend/internal/user"
)

const quizJSON = `Here is your quiz:
[
  {"question": "Which chamber pumps blood to the body?", "options": {"A": "Left ventricle", "B": "Right ventricle", "C": "Left atrium", "D": "Right atrium"}, "correct_answer": "A", "explanation": "The left ventricle supplies the systemic circulation."},
  {"question": "Which valve sits between the left atrium and ventricle?", "options": {"A": "Tricuspid", "B": "Mitral", "C": "Aortic", "D": "Pulmonary"}, "correct_answer": "B", "explanation": "The mitral valve is the left atrioventricular valve."}
]`

type stubAI struct {
	response string
	err      error
}

func (s *stubAI) Generate(_ context.Context, _ ai.GenerateRequest) (*ai.GenerateResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ai.GenerateResult{Text: s.response, Model: "stub-model"}, nil
}

func (s *stubAI) GenerateStream(ctx context.Context, req ai.GenerateRequest, onToken func(string) error) (*ai.GenerateResult, error) {
	result, err := s.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := onToken(result.Text); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *stubAI) Ping(_ context.Context) error { return s.err }

type quizFixture struct {
	svc      *Service
	repo     Repository
	users    user.Repository
	progress progress.Repository
	user     *user.User
}

func newQuizFixture(t *testing.T, stub *stubAI) *quizFixture {
	t.Helper()
	repo := NewMemoryRepository()
	users := user.NewMemoryRepository()
	prog := progress.NewMemoryRepository()

	u := &user.User{Name: "Learner", LearningLevel: ai.LevelMedicalStudent}
	require.NoError(t, users.Create(context.Background(), u))

	return &quizFixture{
		svc:      NewService(repo, stub, users, prog, logger.NewNop()),
		repo:     repo,
		users:    users,
		progress: prog,
		user:     u,
	}
}

func TestGenerateQuiz(t *testing.T) {
	f := newQuizFixture(t, &stubAI{response: quizJSON})

	result, err := f.svc.Generate(context.Background(), f.user, GenerateInput{Topic: "Cardiology"})
	require.NoError(t, err)

	assert.NotEmpty(t, result.QuizID)
	assert.Equal(t, "Cardiology", result.Topic)
	assert.Equal(t, DifficultyMedium, result.Difficulty)
	assert.Equal(t, 2, result.NumQuestions)
	assert.Equal(t, 2*secondsPerQuestion, result.TimeLimit)

	require.Len(t, result.Questions, 2)
	assert.Equal(t, 1, result.Questions[0].ID)
	assert.Equal(t, "Which chamber pumps blood to the body?", result.Questions[0].Question)
	assert.Len(t, result.Questions[0].Options, 4)

	// The answer key stays server-side.
	session, err := f.repo.GetSession(context.Background(), result.QuizID)
	require.NoError(t, err)
	assert.Equal(t, "A", session.Questions[0].CorrectAnswer)
	assert.Equal(t, "B", session.Questions[1].CorrectAnswer)
}

func TestGenerateQuizValidation(t *testing.T) {
	f := newQuizFixture(t, &stubAI{response: quizJSON})
	ctx := context.Background()

	tests := []struct {
		name  string
		input GenerateInput
	}{
		{"missing topic", GenerateInput{}},
		{"too many questions", GenerateInput{Topic: "Cardiology", NumQuestions: 50}},
		{"negative questions", GenerateInput{Topic: "Cardiology", NumQuestions: -1}},
		{"bad difficulty", GenerateInput{Topic: "Cardiology", Difficulty: "impossible"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Generate(ctx, f.user, tt.input)
			var appErr *httpapi.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, httpapi.CodeValidation, appErr.Code)
		})
	}
}

func TestGenerateQuizPlaceholderFallback(t *testing.T) {
	f := newQuizFixture(t, &stubAI{response: "I cannot produce JSON today, sorry."})

	result, err := f.svc.Generate(context.Background(), f.user, GenerateInput{Topic: "Neurology", NumQuestions: 3})
	require.NoError(t, err)
	assert.Len(t, result.Questions, 3)
	assert.Equal(t, 3, result.NumQuestions)
}

func TestGenerateQuizAIFailure(t *testing.T) {
	f := newQuizFixture(t, &stubAI{err: errors.New("upstream timeout")})

	_, err := f.svc.Generate(context.Background(), f.user, GenerateInput{Topic: "Cardiology"})
	var appErr *httpapi.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, httpapi.CodeAIService, appErr.Code)
}

func TestSubmitQuiz(t *testing.T) {
	f := newQuizFixture(t, &stubAI{response: quizJSON})
	ctx := context.Background()

	generated, err := f.svc.Generate(ctx, f.user, GenerateInput{Topic: "Cardiology"})
	require.NoError(t, err)

	result, err := f.svc.Submit(ctx, f.user, SubmitInput{
		QuizID:    generated.QuizID,
		Answers:   map[string]string{"1": "A", "2": "C"},
		TimeSpent: 90,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 50.0, result.Percentage)
	assert.Equal(t, 90, result.TimeSpent)
	require.Len(t, result.Results, 2)
	assert.True(t, result.Results[0].Correct)
	assert.False(t, result.Results[1].Correct)
	assert.Contains(t, result.Achievements, "First Quiz Completed!")

	stored, err := f.users.GetByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Stats.TotalQuizzes)
	assert.Equal(t, 50.0, stored.Stats.AverageScore)

	prog, err := f.progress.GetOrCreate(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, prog.Topics["Cardiology"].QuizzesTaken)
	assert.Contains(t, prog.Achievements, progress.AchievementFirstQuiz)
}

func TestSubmitPerfectScore(t *testing.T) {
	f := newQuizFixture(t, &stubAI{response: quizJSON})
	ctx := context.Background()

	generated, err := f.svc.Generate(ctx, f.user, GenerateInput{Topic: "Cardiology"})
	require.NoError(t, err)

	result, err := f.svc.Submit(ctx, f.user, SubmitInput{
		QuizID:  generated.QuizID,
		Answers: map[string]string{"1": "A", "2": "B"},
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.Percentage)
	assert.Contains(t, result.Achievements, "Perfect Score!")
	assert.Contains(t, result.Achievements, "Quiz Master!")

	prog, err := f.progress.GetOrCreate(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Contains(t, prog.Achievements, progress.AchievementPerfectScore)
}

func TestSubmitUnknownQuiz(t *testing.T) {
	f := newQuizFixture(t, &stubAI{response: quizJSON})

	_, err := f.svc.Submit(context.Background(), f.user, SubmitInput{
		QuizID:  "b2e8f3be-2c40-44cd-a0f9-2d7133e2a0d4",
		Answers: map[string]string{"1": "A"},
	})
	var appErr *httpapi.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, httpapi.CodeNotFound, appErr.Code)
}

func TestSubmitForeignQuiz(t *testing.T) {
	f := newQuizFixture(t, &stubAI{response: quizJSON})
	ctx := context.Background()

	generated, err := f.svc.Generate(ctx, f.user, GenerateInput{Topic: "Cardiology"})
	require.NoError(t, err)

	other := &user.User{Name: "Other"}
	require.NoError(t, f.users.Create(ctx, other))

	_, err = f.svc.Submit(ctx, other, SubmitInput{QuizID: generated.QuizID, Answers: map[string]string{"1": "A"}})
	var appErr *httpapi.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, httpapi.CodeNotFound, appErr.Code)
}

func TestQuizHistory(t *testing.T) {
	f := newQuizFixture(t, &stubAI{response: quizJSON})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		generated, err := f.svc.Generate(ctx, f.user, GenerateInput{Topic: "Cardiology"})
		require.NoError(t, err)
		_, err = f.svc.Submit(ctx, f.user, SubmitInput{
			QuizID:  generated.QuizID,
			Answers: map[string]string{"1": "A", "2": "B"},
		})
		require.NoError(t, err)
	}

	history, err := f.svc.History(ctx, f.user, "", 10)
	require.NoError(t, err)
	assert.Len(t, history.Quizzes, 2)
	require.NotNil(t, history.Stats)
	assert.Equal(t, 2, history.Stats.TotalQuizzes)
	assert.Equal(t, 100.0, history.Stats.AverageScore)
	assert.Equal(t, 1, history.Stats.TopicsCovered)

	filtered, err := f.svc.History(ctx, f.user, "Neurology", 10)
	require.NoError(t, err)
	assert.Empty(t, filtered.Quizzes)
}

func TestParseQuestions(t *testing.T) {
	questions, err := parseQuestions(quizJSON)
	require.NoError(t, err)
	assert.Len(t, questions, 2)

	_, err = parseQuestions("no array here")
	assert.Error(t, err)

	_, err = parseQuestions("[not valid json]")
	assert.Error(t, err)
}
