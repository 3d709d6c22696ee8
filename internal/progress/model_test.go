package progress

import (
	"testing"
	"time"
)

func day(d int, hour int) time.Time {
	return time.Date(2025, time.March, d, hour, 0, 0, 0, time.UTC)
}

func TestUpdateStreak(t *testing.T) {
	tests := []struct {
		name        string
		last        time.Time
		current     int
		longest     int
		now         time.Time
		wantCurrent int
		wantLongest int
	}{
		{"first activity", time.Time{}, 0, 0, day(1, 10), 1, 1},
		{"same day unchanged", day(1, 9), 3, 5, day(1, 23), 3, 5},
		{"next day extends", day(1, 23), 3, 3, day(2, 1), 4, 4},
		{"gap resets", day(1, 10), 7, 7, day(5, 10), 1, 7},
		{"longest tracked", day(1, 10), 4, 4, day(2, 10), 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &LearningProgress{
				CurrentStreak: tt.current,
				LongestStreak: tt.longest,
				LastActivity:  tt.last,
			}
			p.UpdateStreak(tt.now)
			if p.CurrentStreak != tt.wantCurrent {
				t.Errorf("CurrentStreak = %d, want %d", p.CurrentStreak, tt.wantCurrent)
			}
			if p.LongestStreak != tt.wantLongest {
				t.Errorf("LongestStreak = %d, want %d", p.LongestStreak, tt.wantLongest)
			}
			if !p.LastActivity.Equal(tt.now) {
				t.Errorf("LastActivity = %v, want %v", p.LastActivity, tt.now)
			}
		})
	}
}

func TestAddAchievementIdempotent(t *testing.T) {
	p := &LearningProgress{}
	p.AddAchievement(AchievementFirstQuiz)
	p.AddAchievement(AchievementFirstQuiz)
	p.AddAchievement(AchievementPerfectScore)
	p.AddAchievement(AchievementFirstQuiz)
	if len(p.Achievements) != 2 {
		t.Fatalf("len(Achievements) = %d, want 2: %v", len(p.Achievements), p.Achievements)
	}
}

func TestUpdateTopicCreatesEntry(t *testing.T) {
	p := &LearningProgress{}
	p.UpdateTopic("Cardiology", func(tp *TopicProgress) {
		tp.LessonsCompleted++
	})
	tp, ok := p.Topics["Cardiology"]
	if !ok {
		t.Fatal("topic entry not created")
	}
	if tp.LessonsCompleted != 1 {
		t.Errorf("LessonsCompleted = %d, want 1", tp.LessonsCompleted)
	}
	if tp.LastAccessed.IsZero() || p.LastActivity.IsZero() {
		t.Error("activity timestamps not stamped")
	}

	p.UpdateTopic("Cardiology", func(tp *TopicProgress) {
		tp.QuizzesTaken++
	})
	tp = p.Topics["Cardiology"]
	if tp.LessonsCompleted != 1 || tp.QuizzesTaken != 1 {
		t.Errorf("counters = %+v, want lessons 1 and quizzes 1", tp)
	}
}
