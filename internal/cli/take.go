package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pavelanni/quizapp/internal/attempt"
	"github.com/pavelanni/quizapp/internal/i18n"
	"github.com/pavelanni/quizapp/internal/model"
)

func (a *App) Quizzes(ctx context.Context) error {
	callCtx, cancel := a.callCtx(ctx)
	defer cancel()
	quizzes, err := a.client.ListQuizzes(callCtx)
	if err != nil {
		a.showError(ctx, err, "ReadFailed")
		return err
	}
	if len(quizzes) == 0 {
		a.say(i18n.T(ctx, "NoQuizzes"))
		return nil
	}
	a.say(i18n.Tp(ctx, "QuizzesAvailable", len(quizzes)))
	for _, q := range quizzes {
		line := fmt.Sprintf("  #%d  %s", q.ID, q.Title)
		if q.Description != "" {
			line += " - " + q.Description
		}
		a.say(line)
	}
	return nil
}

// Take runs the quiz-taking screen for quizID. The score report continues in
// the background; call Finish before exiting to wait for it.
func (a *App) Take(ctx context.Context, quizID int64) error {
	opts := []attempt.Option{
		attempt.WithLogger(a.logger),
		attempt.WithReportTimeout(a.cfg.ReportTimeout),
	}
	if a.journal != nil {
		opts = append(opts, attempt.WithJournal(a.journal))
	}
	att := attempt.New(quizID, a.client, opts...)

	a.say(i18n.T(ctx, "LoadingQuiz"))
	callCtx, cancel := a.callCtx(ctx)
	err := att.Load(callCtx, a.client)
	cancel()
	switch {
	case errors.Is(err, model.ErrEmptyQuiz):
		a.say(i18n.T(ctx, "EmptyQuiz"))
		return err
	case err != nil:
		a.showError(ctx, err, "ReadFailed")
		return err
	}

	for {
		a.renderQuestion(ctx, att)
		fmt.Fprint(a.out, "> ")
		line, err := a.readLine()
		if err != nil {
			att.Close()
			return err
		}

		switch input := strings.ToLower(line); input {
		case "n":
			_ = att.Advance()
		case "p":
			_ = att.Retreat()
		case "q":
			att.Close()
			a.say(i18n.T(ctx, "AttemptAbandoned"))
			return nil
		case "s":
			score, err := att.Submit()
			if err != nil {
				return err
			}
			a.pending = append(a.pending, att)
			a.renderResult(ctx, att, score)
			return nil
		default:
			opt, ok := parseOption(input)
			if !ok {
				a.say(i18n.T(ctx, "InvalidChoice"))
				continue
			}
			if err := att.SelectCurrent(opt); err != nil {
				a.say(i18n.T(ctx, "InvalidChoice"))
			}
		}
	}
}

func (a *App) renderQuestion(ctx context.Context, att *attempt.Attempt) {
	q, ok := att.Current()
	if !ok {
		return
	}
	cursor := att.Cursor()
	selected := att.Answers()[cursor]

	fmt.Fprintln(a.out)
	a.say(i18n.Td(ctx, "QuestionHeader", map[string]any{
		"Number": cursor + 1,
		"Total":  len(att.Quiz().Questions),
	}))
	a.say(q.Text)
	for i, opt := range q.Options {
		marker := " "
		if i == selected {
			marker = "*"
		}
		a.say(fmt.Sprintf(" %s %s) %s", marker, optionLetter(i), opt))
	}
	a.say(i18n.T(ctx, "TakeHint"))
}

func (a *App) renderResult(ctx context.Context, att *attempt.Attempt, score model.Score) {
	fmt.Fprintln(a.out)
	a.say(i18n.Td(ctx, "ResultHeader", map[string]any{"Title": att.Quiz().Title}))
	a.say(i18n.Td(ctx, "ScoreLine", map[string]any{
		"Marks":   score.TotalMarks,
		"Total":   score.TotalQuestions,
		"Percent": fmt.Sprintf("%.2f", score.PercentageScore),
	}))

	items, err := att.Review()
	if err != nil {
		return
	}
	for i, item := range items {
		status := i18n.T(ctx, "ReviewWrong")
		switch {
		case item.Correct:
			status = i18n.T(ctx, "ReviewCorrect")
		case item.Selected == model.Unanswered:
			status = i18n.T(ctx, "ReviewUnanswered")
		}
		fmt.Fprintln(a.out)
		a.say(fmt.Sprintf("%d. %s [%s]", i+1, item.Question.Text, status))

		answer := i18n.T(ctx, "ReviewUnanswered")
		if item.Question.ValidOption(item.Selected) {
			answer = optionText(item.Question, item.Selected)
		}
		a.say("   " + i18n.Td(ctx, "YourAnswer", map[string]any{"Answer": answer}))
		if !item.Correct && item.Question.CorrectAnswer != nil {
			a.say("   " + i18n.Td(ctx, "CorrectAnswer", map[string]any{
				"Answer": optionText(item.Question, *item.Question.CorrectAnswer),
			}))
		}
	}
}

func optionText(q model.Question, i int) string {
	if !q.ValidOption(i) {
		return ""
	}
	return fmt.Sprintf("%s) %s", optionLetter(i), q.Options[i])
}
