// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

// Package quiz implements quiz authoring and the scoring engine. Authoring
// enforces the question-bank invariants; grading trusts the stored flags and
// never re-validates them, so a malformed stored quiz degrades gracefully.
package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/coursecast/coursecast/internal/models"
)

// Authoring validation errors. Handlers map these to InvalidArgument.
var (
	// ErrNoQuestions rejects a quiz with an empty question bank.
	ErrNoQuestions = errors.New("quiz: at least one question required")

	// ErrTooFewOptions rejects a question with fewer than two options.
	ErrTooFewOptions = errors.New("quiz: each question needs at least two options")

	// ErrCorrectCount rejects a question without exactly one correct option.
	ErrCorrectCount = errors.New("quiz: each question needs exactly one correct option")
)

// Repository is the slice of the document store the quiz service needs.
type Repository interface {
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuizByVideo(ctx context.Context, videoID string) (*models.Quiz, error)
	CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error
	ListAttemptsByUser(ctx context.Context, userID string) ([]models.QuizAttempt, error)
	GetVideo(ctx context.Context, id string) (*models.Video, error)
}

// Service exposes quiz authoring, retrieval, and grading.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a quiz service backed by repo.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "quiz").Logger(),
	}
}

// QuestionInput is one authored question with its options.
type QuestionInput struct {
	Text    string        `json:"text" validate:"required"`
	Options []OptionInput `json:"options" validate:"required,min=2,dive"`
}

// OptionInput is one authored answer option.
type OptionInput struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

// Create validates and persists the question bank for a video. Each video has
// at most one quiz; a second create returns store.ErrConflict. Identifiers are
// assigned here so the stored bank is self-contained for later grading.
func (s *Service) Create(ctx context.Context, videoID string, questions []QuestionInput) (*models.Quiz, error) {
	if _, err := s.repo.GetVideo(ctx, videoID); err != nil {
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}
	if err := validateQuestions(questions); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		Questions: make([]models.Question, 0, len(questions)),
	}
	for _, q := range questions {
		question := models.Question{
			ID:      uuid.NewString(),
			Text:    q.Text,
			Options: make([]models.Option, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			question.Options = append(question.Options, models.Option{
				ID:        uuid.NewString(),
				Text:      o.Text,
				IsCorrect: o.IsCorrect,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	if err := s.repo.CreateQuiz(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	s.logger.Info().Str("video_id", videoID).Int("questions", len(quiz.Questions)).Msg("quiz created")
	return quiz, nil
}

// validateQuestions enforces the authoring invariants: a non-empty bank,
// at least two options per question, exactly one marked correct.
func validateQuestions(questions []QuestionInput) error {
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	for i, q := range questions {
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d: %w", i, ErrTooFewOptions)
		}
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("question %d: %w", i, ErrCorrectCount)
		}
	}
	return nil
}

// GetByVideo returns the quiz attached to a video.
func (s *Service) GetByVideo(ctx context.Context, videoID string) (*models.Quiz, error) {
	return s.repo.GetQuizByVideo(ctx, videoID)
}

// AnswerInput pairs a question id with the option the learner selected.
type AnswerInput struct {
	QuestionID string `json:"question" validate:"required"`
	OptionID   string `json:"selectedOption" validate:"required"`
}

// Submit grades the submitted answers against the stored quiz and persists
// the result as an immutable attempt.
//
// Pairs whose question or option cannot be resolved in the stored bank are
// dropped silently: they appear in neither the answer record nor the score.
// The percentage divides by the stored question count, floored at one to
// guard a malformed zero-question bank.
func (s *Service) Submit(ctx context.Context, userID, videoID string, answers []AnswerInput) (*models.QuizAttempt, error) {
	quiz, err := s.repo.GetQuizByVideo(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("quiz for video %s: %w", videoID, err)
	}

	questions := make(map[string]*models.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		questions[quiz.Questions[i].ID] = &quiz.Questions[i]
	}

	var graded []models.SubmittedAnswer
	score := 0
	for _, a := range answers {
		question, ok := questions[a.QuestionID]
		if !ok {
			continue
		}
		option := findOption(question, a.OptionID)
		if option == nil {
			continue
		}
		if option.IsCorrect {
			score++
		}
		graded = append(graded, models.SubmittedAnswer{
			QuestionID: a.QuestionID,
			OptionID:   a.OptionID,
			IsCorrect:  option.IsCorrect,
		})
	}

	total := len(quiz.Questions)
	if total == 0 {
		total = 1
	}
	attempt := &models.QuizAttempt{
		ID:         uuid.NewString(),
		UserID:     userID,
		VideoID:    videoID,
		Answers:    graded,
		Score:      score,
		Percentage: float64(score) / float64(total) * 100,
	}

	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("persist attempt: %w", err)
	}
	s.logger.Info().
		Str("user_id", userID).
		Str("video_id", videoID).
		Int("score", score).
		Float64("percentage", attempt.Percentage).
		Msg("quiz attempt graded")
	return attempt, nil
}

// AttemptsByUser returns the user's attempt history, newest first.
func (s *Service) AttemptsByUser(ctx context.Context, userID string) ([]models.QuizAttempt, error) {
	return s.repo.ListAttemptsByUser(ctx, userID)
}

func findOption(q *models.Question, optionID string) *models.Option {
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return &q.Options[i]
		}
	}
	return nil
}
