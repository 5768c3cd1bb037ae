// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package quiz

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/coursecast/coursecast/internal/logging"
	"github.com/coursecast/coursecast/internal/models"
	"github.com/coursecast/coursecast/internal/store"
)

// fakeRepo is an in-memory Repository for tests.
type fakeRepo struct {
	quizzes  map[string]*models.Quiz // keyed by video id
	attempts []models.QuizAttempt
	videos   map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		quizzes: make(map[string]*models.Quiz),
		videos:  map[string]bool{"v1": true},
	}
}

func (f *fakeRepo) CreateQuiz(_ context.Context, quiz *models.Quiz) error {
	if _, ok := f.quizzes[quiz.VideoID]; ok {
		return store.ErrConflict
	}
	f.quizzes[quiz.VideoID] = quiz
	return nil
}

func (f *fakeRepo) GetQuizByVideo(_ context.Context, videoID string) (*models.Quiz, error) {
	quiz, ok := f.quizzes[videoID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return quiz, nil
}

func (f *fakeRepo) CreateAttempt(_ context.Context, attempt *models.QuizAttempt) error {
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *fakeRepo) ListAttemptsByUser(_ context.Context, userID string) ([]models.QuizAttempt, error) {
	var out []models.QuizAttempt
	for _, a := range f.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetVideo(_ context.Context, id string) (*models.Video, error) {
	if !f.videos[id] {
		return nil, store.ErrNotFound
	}
	return &models.Video{ID: id}, nil
}

func newTestService(f *fakeRepo) *Service {
	return NewService(f, logging.NewTestLogger(io.Discard))
}

func twoOptions(correctFirst bool) []OptionInput {
	return []OptionInput{
		{Text: "first", IsCorrect: correctFirst},
		{Text: "second", IsCorrect: !correctFirst},
	}
}

func TestCreateAssignsIdentifiers(t *testing.T) {
	f := newFakeRepo()
	svc := newTestService(f)

	quiz, err := svc.Create(context.Background(), "v1", []QuestionInput{
		{Text: "Q1", Options: twoOptions(true)},
		{Text: "Q2", Options: twoOptions(false)},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if quiz.ID == "" || quiz.VideoID != "v1" {
		t.Errorf("quiz = %+v, want assigned id and video v1", quiz)
	}
	for _, q := range quiz.Questions {
		if q.ID == "" {
			t.Error("question missing id")
		}
		for _, o := range q.Options {
			if o.ID == "" {
				t.Error("option missing id")
			}
		}
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name      string
		questions []QuestionInput
		wantErr   error
	}{
		{"empty bank", nil, ErrNoQuestions},
		{
			"single option",
			[]QuestionInput{{Text: "Q", Options: []OptionInput{{Text: "only", IsCorrect: true}}}},
			ErrTooFewOptions,
		},
		{
			"no correct option",
			[]QuestionInput{{Text: "Q", Options: []OptionInput{{Text: "a"}, {Text: "b"}}}},
			ErrCorrectCount,
		},
		{
			"two correct options",
			[]QuestionInput{{Text: "Q", Options: []OptionInput{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}}}},
			ErrCorrectCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakeRepo())
			if _, err := svc.Create(context.Background(), "v1", tt.questions); !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateUnknownVideo(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Create(context.Background(), "ghost", []QuestionInput{{Text: "Q", Options: twoOptions(true)}})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Create(unknown video) error = %v, want ErrNotFound", err)
	}
}

// seedQuiz installs a two-question quiz and returns the ids needed to submit.
func seedQuiz(t *testing.T, f *fakeRepo) (q1, q1Correct, q1Wrong, q2, q2Correct string) {
	t.Helper()
	svc := newTestService(f)
	quiz, err := svc.Create(context.Background(), "v1", []QuestionInput{
		{Text: "Q1", Options: twoOptions(true)},
		{Text: "Q2", Options: twoOptions(true)},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return quiz.Questions[0].ID,
		quiz.Questions[0].Options[0].ID,
		quiz.Questions[0].Options[1].ID,
		quiz.Questions[1].ID,
		quiz.Questions[1].Options[0].ID
}

func TestSubmitGrades(t *testing.T) {
	f := newFakeRepo()
	q1, q1Correct, _, q2, q2Correct := seedQuiz(t, f)
	svc := newTestService(f)

	attempt, err := svc.Submit(context.Background(), "u1", "v1", []AnswerInput{
		{QuestionID: q1, OptionID: q1Correct},
		{QuestionID: q2, OptionID: q2Correct},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if attempt.Score != 2 {
		t.Errorf("Score = %d, want 2", attempt.Score)
	}
	if attempt.Percentage != 100 {
		t.Errorf("Percentage = %v, want 100", attempt.Percentage)
	}
	if len(attempt.Answers) != 2 {
		t.Errorf("Answers len = %d, want 2", len(attempt.Answers))
	}
}

func TestSubmitDropsUnresolvablePairs(t *testing.T) {
	f := newFakeRepo()
	q1, q1Correct, _, _, _ := seedQuiz(t, f)
	svc := newTestService(f)

	// One correct pair plus one with a bad question id: score 1 of 2
	// questions, one graded answer, 50 percent.
	attempt, err := svc.Submit(context.Background(), "u1", "v1", []AnswerInput{
		{QuestionID: q1, OptionID: q1Correct},
		{QuestionID: "bogus", OptionID: "whatever"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if attempt.Score != 1 {
		t.Errorf("Score = %d, want 1", attempt.Score)
	}
	if len(attempt.Answers) != 1 {
		t.Errorf("Answers len = %d, want 1", len(attempt.Answers))
	}
	if attempt.Percentage != 50 {
		t.Errorf("Percentage = %v, want 50", attempt.Percentage)
	}
}

func TestSubmitUnresolvableOption(t *testing.T) {
	f := newFakeRepo()
	q1, _, _, q2, q2Correct := seedQuiz(t, f)
	svc := newTestService(f)

	attempt, err := svc.Submit(context.Background(), "u1", "v1", []AnswerInput{
		{QuestionID: q1, OptionID: "not-an-option"},
		{QuestionID: q2, OptionID: q2Correct},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if attempt.Score != 1 || len(attempt.Answers) != 1 {
		t.Errorf("attempt = score %d with %d answers, want score 1 with 1 answer", attempt.Score, len(attempt.Answers))
	}
}

func TestSubmitWrongAnswerRecorded(t *testing.T) {
	f := newFakeRepo()
	q1, _, q1Wrong, _, _ := seedQuiz(t, f)
	svc := newTestService(f)

	attempt, err := svc.Submit(context.Background(), "u1", "v1", []AnswerInput{
		{QuestionID: q1, OptionID: q1Wrong},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if attempt.Score != 0 {
		t.Errorf("Score = %d, want 0", attempt.Score)
	}
	if len(attempt.Answers) != 1 || attempt.Answers[0].IsCorrect {
		t.Errorf("Answers = %+v, want one incorrect graded answer", attempt.Answers)
	}
}

func TestSubmitNoQuizForVideo(t *testing.T) {
	svc := newTestService(newFakeRepo())

	if _, err := svc.Submit(context.Background(), "u1", "v1", nil); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Submit(no quiz) error = %v, want ErrNotFound", err)
	}
}

func TestAttemptsAreImmutableRecords(t *testing.T) {
	f := newFakeRepo()
	q1, q1Correct, _, _, _ := seedQuiz(t, f)
	svc := newTestService(f)
	ctx := context.Background()

	first, err := svc.Submit(ctx, "u1", "v1", []AnswerInput{{QuestionID: q1, OptionID: q1Correct}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	second, err := svc.Submit(ctx, "u1", "v1", []AnswerInput{{QuestionID: q1, OptionID: q1Correct}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if first.ID == second.ID {
		t.Error("two submissions produced the same attempt id")
	}

	attempts, err := svc.AttemptsByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("AttemptsByUser() error = %v", err)
	}
	if len(attempts) != 2 {
		t.Errorf("AttemptsByUser() len = %d, want 2", len(attempts))
	}
}
