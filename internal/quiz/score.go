package quiz

import "strconv"

// QuestionResult is the per-question breakdown of a scored submission.
type QuestionResult struct {
	QuestionID    int    `json:"question_id"`
	Question      string `json:"question"`
	Correct       bool   `json:"correct"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// Score grades answers against the question set. Answers are keyed by
// 1-based question number; missing or mismatched answers count as wrong.
// Pure and deterministic: the same inputs always yield the same result.
func Score(questions []Question, answers map[string]string) (score int, percentage float64, results []QuestionResult) {
	results = make([]QuestionResult, 0, len(questions))
	for idx, q := range questions {
		userAnswer := answers[strconv.Itoa(idx+1)]
		correct := userAnswer != "" && userAnswer == q.CorrectAnswer
		if correct {
			score++
		}
		results = append(results, QuestionResult{
			QuestionID:    idx + 1,
			Question:      q.Question,
			Correct:       correct,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}
	if len(questions) > 0 {
		percentage = float64(score) / float64(len(questions)) * 100
	}
	return score, percentage, results
}
