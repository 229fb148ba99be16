package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pavelanni/quizapp/internal/authoring"
	"github.com/pavelanni/quizapp/internal/i18n"
	"github.com/pavelanni/quizapp/internal/model"
)

// Create authors a new quiz.
func (a *App) Create(ctx context.Context) error {
	if err := a.ensureLogin(ctx); err != nil {
		return err
	}
	a.workflow.ClearSelection()

	title, err := a.prompt(ctx, "PromptTitle", nil)
	if err != nil {
		return err
	}
	description, err := a.prompt(ctx, "PromptDescription", nil)
	if err != nil {
		return err
	}
	if err := a.workflow.SetDetails(title, description); err != nil {
		return err
	}
	return a.draftLoop(ctx)
}

// Extend stages new questions for an existing quiz.
func (a *App) Extend(ctx context.Context, quizID int64) error {
	if err := a.ensureLogin(ctx); err != nil {
		return err
	}
	callCtx, cancel := a.callCtx(ctx)
	err := a.workflow.Select(callCtx, quizID)
	cancel()
	if err != nil {
		a.workflow.ClearSelection()
		a.showError(ctx, err, "ReadFailed")
		return err
	}

	title, description := a.workflow.Details()
	a.say(i18n.Td(ctx, "Extending", map[string]any{"ID": quizID, "Title": title}))
	if description != "" {
		a.say(description)
	}
	return a.draftLoop(ctx)
}

func (a *App) draftLoop(ctx context.Context) error {
	a.say(i18n.T(ctx, "CreateHelp"))
	for {
		fmt.Fprint(a.out, "draft> ")
		line, err := a.readLine()
		if err != nil {
			return err
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch strings.ToLower(args[0]) {
		case "help":
			a.say(i18n.T(ctx, "CreateHelp"))
		case "add":
			draft, err := a.promptQuestion(ctx)
			if err != nil {
				return err
			}
			if err := a.workflow.AddQuestion(draft); err != nil {
				a.showError(ctx, err, "WriteFailed")
				continue
			}
			a.say(i18n.Tp(ctx, "QuestionsStaged", len(a.workflow.Staged())))
		case "list":
			a.listStaged(ctx)
		case "remove":
			n := 0
			if len(args) == 2 {
				n, _ = strconv.Atoi(args[1])
			}
			if n <= 0 {
				a.say(i18n.Td(ctx, "Usage", map[string]any{"Usage": "remove <n>"}))
				continue
			}
			if err := a.workflow.RemoveQuestion(n - 1); err != nil {
				a.say(i18n.T(ctx, "InvalidChoice"))
				continue
			}
			a.say(i18n.Tp(ctx, "QuestionsStaged", len(a.workflow.Staged())))
		case "import":
			if len(args) != 2 {
				a.say(i18n.Td(ctx, "Usage", map[string]any{"Usage": "import <file>"}))
				continue
			}
			n, err := a.workflow.LoadFile(args[1])
			if err != nil {
				a.showError(ctx, err, "ReadFailed")
				continue
			}
			a.say(i18n.Tp(ctx, "Imported", n))
		case "submit":
			if _, err := a.submitDraft(ctx); err != nil {
				continue
			}
			return nil
		case "cancel":
			a.workflow.ClearSelection()
			a.say(i18n.T(ctx, "DraftDiscarded"))
			return nil
		default:
			a.say(i18n.T(ctx, "CreateHelp"))
		}
	}
}

// submitDraft sends the staged draft. A rejected session sends the user through
// login and relogged reports whether that succeeded; the draft is kept either
// way so it can be submitted again.
func (a *App) submitDraft(ctx context.Context) (relogged bool, err error) {
	mode, _ := a.workflow.Mode()
	callCtx, cancel := a.callCtx(ctx)
	quiz, err := a.workflow.Submit(callCtx)
	cancel()
	if err != nil {
		if a.reauthenticate(ctx, err) {
			a.say(i18n.Tp(ctx, "QuestionsStaged", len(a.workflow.Staged())))
			return true, err
		}
		a.showError(ctx, err, "WriteFailed")
		return false, err
	}

	if mode == authoring.CreateMode {
		a.say(i18n.Td(ctx, "QuizCreated", map[string]any{"ID": quiz.ID, "Title": quiz.Title}))
	} else {
		a.say(i18n.Td(ctx, "QuizUpdated", map[string]any{"ID": quiz.ID, "Total": len(quiz.Questions)}))
	}
	return false, nil
}

func (a *App) listStaged(ctx context.Context) {
	staged := a.workflow.Staged()
	if len(staged) == 0 {
		a.say(i18n.T(ctx, "NothingStaged"))
		return
	}
	for i, q := range staged {
		a.say(fmt.Sprintf("%d. %s", i+1, q.Text))
		for j, opt := range q.Options {
			marker := " "
			if q.CorrectAnswer != nil && *q.CorrectAnswer == j {
				marker = "*"
			}
			a.say(fmt.Sprintf("   %s %s) %s", marker, optionLetter(j), opt))
		}
	}
}

// promptQuestion reads a draft. An unreadable correct option leaves
// CorrectAnswer unset so validation reports it.
func (a *App) promptQuestion(ctx context.Context) (model.Question, error) {
	var q model.Question
	text, err := a.prompt(ctx, "PromptQuestion", nil)
	if err != nil {
		return q, err
	}
	q.Text = text
	for i := 0; i < model.OptionCount; i++ {
		opt, err := a.prompt(ctx, "PromptOption", map[string]any{"Letter": optionLetter(i)})
		if err != nil {
			return q, err
		}
		q.Options = append(q.Options, opt)
	}
	correct, err := a.prompt(ctx, "PromptCorrect", nil)
	if err != nil {
		return q, err
	}
	if idx, ok := parseOption(correct); ok {
		q.CorrectAnswer = model.IntPtr(idx)
	}
	return q, nil
}

// AddQuestion prompts for one question and appends it to quizID.
func (a *App) AddQuestion(ctx context.Context, quizID int64) error {
	if err := a.ensureLogin(ctx); err != nil {
		return err
	}
	draft, err := a.promptQuestion(ctx)
	if err != nil {
		return err
	}

	for retried := false; ; retried = true {
		callCtx, cancel := a.callCtx(ctx)
		_, err = authoring.AddToQuiz(callCtx, a.client, quizID, draft)
		cancel()
		if err == nil {
			a.say(i18n.Td(ctx, "QuestionAdded", map[string]any{"ID": quizID}))
			return nil
		}
		if retried || !a.reauthenticate(ctx, err) {
			break
		}
	}
	a.showError(ctx, err, "WriteFailed")
	return err
}

// Import stages the questions of a YAML file and submits them, creating a new
// quiz when quizID is 0 and extending quizID otherwise.
func (a *App) Import(ctx context.Context, path string, quizID int64) error {
	if err := a.ensureLogin(ctx); err != nil {
		return err
	}

	callCtx, cancel := a.callCtx(ctx)
	err := a.workflow.Select(callCtx, quizID)
	cancel()
	if err != nil {
		a.workflow.ClearSelection()
		a.showError(ctx, err, "ReadFailed")
		return err
	}

	n, err := a.workflow.LoadFile(path)
	if err != nil {
		a.workflow.ClearSelection()
		a.showError(ctx, err, "ReadFailed")
		return err
	}
	a.say(i18n.Tp(ctx, "Imported", n))

	relogged, err := a.submitDraft(ctx)
	if err != nil && relogged {
		_, err = a.submitDraft(ctx)
	}
	if err != nil {
		a.workflow.ClearSelection()
		return err
	}
	return nil
}
