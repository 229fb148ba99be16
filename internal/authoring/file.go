package authoring

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pavelanni/quizapp/internal/model"
)

// QuizFile is the YAML layout accepted by LoadFile:
//
//	title: Capitals
//	description: European capitals
//	questions:
//	  - text: Capital of France?
//	    options: [Berlin, Paris, Madrid, Rome]
//	    correctAnswer: 1
type QuizFile struct {
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Questions   []model.Question `yaml:"questions"`
}

// ParseFile decodes a quiz file. Unknown keys are rejected.
func ParseFile(data []byte) (QuizFile, error) {
	var f QuizFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return QuizFile{}, errors.New("quiz file is empty")
		}
		return QuizFile{}, fmt.Errorf("parse quiz file: %w", err)
	}
	return f, nil
}

// Import stages every question of f. If any question is invalid nothing is
// staged. In create mode the file's title and description replace the draft's
// when present; in update mode they are ignored.
func (w *Workflow) Import(f QuizFile) (int, error) {
	for i, q := range f.Questions {
		if err := ValidateDraft(q); err != nil {
			return 0, fmt.Errorf("question %d: %w", i+1, err)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.mode == CreateMode {
		if f.Title != "" {
			w.title = f.Title
		}
		if f.Description != "" {
			w.description = f.Description
		}
	}
	for _, q := range f.Questions {
		w.staged = append(w.staged, cloneQuestion(q))
	}
	return len(f.Questions), nil
}

// LoadFile reads the YAML quiz file at path and stages its questions.
func (w *Workflow) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read quiz file: %w", err)
	}
	f, err := ParseFile(data)
	if err != nil {
		return 0, err
	}
	n, err := w.Import(f)
	if err != nil {
		return 0, err
	}
	w.logger.Info("imported quiz file", "path", path, "questions", n)
	return n, nil
}
