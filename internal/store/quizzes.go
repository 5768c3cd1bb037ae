// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package store

import (
	"context"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/coursecast/coursecast/internal/models"
)

// CreateQuiz persists the question bank for a video. Each video has at most
// one quiz; a second create returns ErrConflict.
func (s *Store) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	quiz.CreatedAt = time.Now().UTC()
	key := quizKeyPrefix + quiz.VideoID
	return s.db.Update(func(txn *badger.Txn) error {
		present, err := exists(txn, key)
		if err != nil {
			return err
		}
		if present {
			return ErrConflict
		}
		return setJSON(txn, key, quiz)
	})
}

// GetQuizByVideo fetches the quiz attached to a video.
func (s *Store) GetQuizByVideo(ctx context.Context, videoID string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, quizKeyPrefix+videoID, &quiz)
	})
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// CreateAttempt persists an immutable quiz attempt. Attempts are never
// updated or deleted by this subsystem.
func (s *Store) CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	attempt.CreatedAt = time.Now().UTC()
	key := attemptKeyPrefix + attempt.UserID + ":" + attempt.ID
	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, key, attempt)
	})
}

// ListAttemptsByUser returns a user's quiz attempts, newest first.
func (s *Store) ListAttemptsByUser(ctx context.Context, userID string) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, attemptKeyPrefix+userID+":", func(_ string, val []byte) error {
			var attempt models.QuizAttempt
			if err := json.Unmarshal(val, &attempt); err != nil {
				return err
			}
			attempts = append(attempts, attempt)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(attempts, func(i, j int) bool {
		return attempts[i].CreatedAt.After(attempts[j].CreatedAt)
	})
	return attempts, nil
}
