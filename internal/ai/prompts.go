package ai

import "fmt"

// Learning levels accepted by the API.
const (
	LevelBeginner       = "beginner"
	LevelHighSchool     = "high_school"
	LevelMedicalStudent = "medical_student"
	LevelDoctor         = "doctor"
)

// ValidLevel reports whether level is one of the accepted learning levels.
func ValidLevel(level string) bool {
	switch level {
	case LevelBeginner, LevelHighSchool, LevelMedicalStudent, LevelDoctor:
		return true
	}
	return false
}

const basePrompt = `You are MedLama, an expert AI medical tutor. Explain medical concepts clearly and accurately, ask follow-up questions to assess understanding, and include clinical relevance where it helps. Use structured responses with headings and bullet points. You are an educational tool, not a diagnostic tool; remind users to consult healthcare professionals for medical advice.`

var levelPrompts = map[string]string{
	LevelBeginner:       "Audience: complete beginner. Use simple explanations and everyday language; introduce medical terms only with plain definitions.",
	LevelHighSchool:     "Audience: high-school student. Add more detail and introduce standard medical terminology with short explanations.",
	LevelMedicalStudent: "Audience: medical student. Use professional terminology and clinical context freely.",
	LevelDoctor:         "Audience: practicing physician. Cover advanced concepts, mechanisms, and current research.",
}

// SystemPrompt returns the system instruction for the given learning
// level. Unknown levels fall back to the medical-student prompt.
func SystemPrompt(level string) string {
	lp, ok := levelPrompts[level]
	if !ok {
		lp = levelPrompts[LevelMedicalStudent]
	}
	return basePrompt + "\n\n" + lp
}

// QuizPrompt builds the instruction asking the model for a structured
// multiple-choice quiz as a strict JSON array.
func QuizPrompt(topic string, numQuestions int, difficulty string) string {
	return fmt.Sprintf(`Generate a medical education quiz on the topic: %s

Requirements:
- Create exactly %d multiple choice questions
- Difficulty level: %s
- Each question must have exactly 4 options (A, B, C, D)
- Include the correct answer for each question
- Provide a detailed explanation for each correct answer
- Focus on understanding and clinical application

Format your response as a JSON array with this exact structure:
[
  {
    "question": "Question text here?",
    "options": {
      "A": "First option",
      "B": "Second option",
      "C": "Third option",
      "D": "Fourth option"
    },
    "correct_answer": "A",
    "explanation": "Detailed explanation of why this is correct"
  }
]

Make questions clinically relevant and test understanding, not just memorization.`, topic, numQuestions, difficulty)
}

// VisualPrompt builds the instruction asking the model for an annotated
// ASCII diagram of a topic.
func VisualPrompt(topic string) string {
	return fmt.Sprintf(`Create a detailed visual description and ASCII diagram for: %s

Include:
1. A text-based diagram or flowchart using ASCII characters
2. Detailed labels and annotations
3. Step-by-step explanation of the visual
4. Key structures and their relationships
5. Clinical significance

Make it educational and easy to understand.`, topic)
}
