package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pavelanni/quizapp/internal/model"
)

// NewQuiz is the create-quiz request body. Questions may be empty.
type NewQuiz struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []model.Question `json:"questions,omitempty"`
}

type updateQuizRequest struct {
	Questions []model.Question `json:"questions"`
}

func (c *Client) ListQuizzes(ctx context.Context) ([]model.QuizSummary, error) {
	var quizzes []model.QuizSummary
	if err := c.doJSON(ctx, "list quizzes", http.MethodGet, "/quizzes", nil, &quizzes); err != nil {
		return nil, err
	}
	if quizzes == nil {
		quizzes = []model.QuizSummary{}
	}
	return quizzes, nil
}

func (c *Client) GetQuiz(ctx context.Context, id int64) (model.Quiz, error) {
	var quiz model.Quiz
	if err := c.doJSON(ctx, "get quiz", http.MethodGet, fmt.Sprintf("/quizzes/%d", id), nil, &quiz); err != nil {
		return model.Quiz{}, err
	}
	return quiz, nil
}

func (c *Client) CreateQuiz(ctx context.Context, quiz NewQuiz) (model.Quiz, error) {
	var created model.Quiz
	if err := c.doJSON(ctx, "create quiz", http.MethodPost, "/quizzes", quiz, &created); err != nil {
		return model.Quiz{}, err
	}
	return created, nil
}

// UpdateQuiz sends questions to an existing quiz. The service is expected to
// append them to the stored questions, not replace them.
func (c *Client) UpdateQuiz(ctx context.Context, id int64, questions []model.Question) (model.Quiz, error) {
	var updated model.Quiz
	path := fmt.Sprintf("/quizzes/%d", id)
	if err := c.doJSON(ctx, "update quiz", http.MethodPut, path, updateQuizRequest{Questions: questions}, &updated); err != nil {
		return model.Quiz{}, err
	}
	return updated, nil
}

func (c *Client) AddQuestion(ctx context.Context, quizID int64, question model.Question) (model.Question, error) {
	var created model.Question
	path := fmt.Sprintf("/quizzes/%d/questions", quizID)
	if err := c.doJSON(ctx, "add question", http.MethodPost, path, question, &created); err != nil {
		return model.Question{}, err
	}
	return created, nil
}

// SubmitScore records a completed attempt's score with the service.
func (c *Client) SubmitScore(ctx context.Context, quizID int64, score model.Score) error {
	return c.doJSON(ctx, "submit score", http.MethodPost, fmt.Sprintf("/%d/scores", quizID), score, nil)
}
