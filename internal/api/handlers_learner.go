// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package api

import (
	"net/http"

	"github.com/coursecast/coursecast/internal/auth"
	"github.com/coursecast/coursecast/internal/models"
	"github.com/coursecast/coursecast/internal/progress"
)

// learnerDashboard bundles everything the learner landing page renders.
type learnerDashboard struct {
	Resume       []progress.VideoProgress `json:"resume"`
	Bookmarks    []models.Video           `json:"bookmarks"`
	WatchHistory []progress.WatchedVideo  `json:"watchHistory"`
	QuizAttempts []models.QuizAttempt     `json:"quizAttempts"`
}

// LearnerDashboard assembles the learner's resume list, bookmarks, watch
// history, and quiz attempts in a single response.
func (h *Handler) LearnerDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := auth.ClaimsFromContext(ctx)

	resume, err := h.progress.Resume(ctx, claims.UserID)
	if err != nil {
		respondStoreError(w, err, "user not found")
		return
	}

	bookmarks, err := h.resolveBookmarks(r, claims.UserID)
	if err != nil {
		respondStoreError(w, err, "user not found")
		return
	}

	history, err := h.progress.WatchHistory(ctx, claims.UserID)
	if err != nil {
		respondStoreError(w, err, "user not found")
		return
	}

	attempts, err := h.quiz.AttemptsByUser(ctx, claims.UserID)
	if err != nil {
		respondStoreError(w, err, "user not found")
		return
	}
	if attempts == nil {
		attempts = []models.QuizAttempt{}
	}

	respondSuccess(w, http.StatusOK, learnerDashboard{
		Resume:       resume,
		Bookmarks:    bookmarks,
		WatchHistory: history,
		QuizAttempts: attempts,
	})
}

// resolveBookmarks joins the caller's bookmarks with their video documents,
// skipping bookmarks whose video no longer exists.
func (h *Handler) resolveBookmarks(r *http.Request, userID string) ([]models.Video, error) {
	records, err := h.store.ListBookmarks(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []models.Video{}, nil
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.VideoID)
	}
	videos, err := h.store.GetVideos(r.Context(), ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.Video, 0, len(records))
	for _, rec := range records {
		if v, ok := videos[rec.VideoID]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}
