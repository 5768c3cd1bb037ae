// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursecast/coursecast/internal/auth"
	"github.com/coursecast/coursecast/internal/metrics"
	"github.com/coursecast/coursecast/internal/quiz"
)

type createQuizRequest struct {
	Questions []quiz.QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

// CreateQuiz attaches a question bank to one of the caller's videos. Only the
// video owner may author its quiz; a video has at most one quiz.
func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	video, err := h.store.GetVideo(r.Context(), videoID)
	if err != nil {
		respondStoreError(w, err, "video not found")
		return
	}
	claims := auth.ClaimsFromContext(r.Context())
	if video.OwnerID != claims.UserID {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "only the video owner can author its quiz", nil)
		return
	}

	var req createQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	created, err := h.quiz.Create(r.Context(), videoID, req.Questions)
	if err != nil {
		if isQuizValidationError(err) {
			respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error(), nil)
			return
		}
		respondStoreError(w, err, "video not found")
		return
	}
	respondSuccess(w, http.StatusCreated, created)
}

// GetQuiz returns the quiz attached to a video.
func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	q, err := h.quiz.GetByVideo(r.Context(), videoID)
	if err != nil {
		respondStoreError(w, err, "no quiz for this video")
		return
	}
	respondSuccess(w, http.StatusOK, q)
}

type submitQuizRequest struct {
	Answers []quiz.AnswerInput `json:"submittedAnswers" validate:"required,dive"`
}

// SubmitQuiz grades the caller's answers against the video's quiz and records
// an immutable attempt. Answer pairs that do not resolve in the stored bank
// are dropped silently.
func (h *Handler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	var req submitQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	attempt, err := h.quiz.Submit(r.Context(), claims.UserID, videoID, req.Answers)
	if err != nil {
		respondStoreError(w, err, "no quiz for this video")
		return
	}

	metrics.QuizAttemptsTotal.Inc()
	respondSuccess(w, http.StatusCreated, attempt)
}

// ListAttempts returns the caller's quiz attempt history, newest first.
func (h *Handler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	attempts, err := h.quiz.AttemptsByUser(r.Context(), claims.UserID)
	if err != nil {
		respondStoreError(w, err, "user not found")
		return
	}
	respondSuccess(w, http.StatusOK, attempts)
}
