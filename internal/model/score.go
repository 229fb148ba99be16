package model

import "fmt"

// ComputeScore compares each answer to the matching question's correct option.
// Unanswered slots count as incorrect. A quiz with no questions is an error
// rather than a NaN percentage.
func ComputeScore(answers []int, questions []Question) (Score, error) {
	if len(questions) == 0 {
		return Score{}, ErrEmptyQuiz
	}
	if len(answers) != len(questions) {
		return Score{}, fmt.Errorf("answer set has %d slots for %d questions", len(answers), len(questions))
	}

	marks := 0
	for i, q := range questions {
		if q.IsCorrect(answers[i]) {
			marks++
		}
	}

	return Score{
		TotalMarks:      marks,
		TotalQuestions:  len(questions),
		PercentageScore: float64(marks) / float64(len(questions)) * 100,
	}, nil
}
