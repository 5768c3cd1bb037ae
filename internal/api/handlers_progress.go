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
	"github.com/coursecast/coursecast/internal/progress"
)

type setProgressRequest struct {
	// Pointer so that an explicit 0 is distinguishable from a missing field.
	Percent *float64 `json:"progress" validate:"required"`
}

// SetProgress records the caller's completion percentage for a video.
// Out-of-range values are clamped; crossing the completion threshold promotes
// the video into the watch history atomically with the write.
func (h *Handler) SetProgress(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	if videoID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "videoID is required", nil)
		return
	}

	var req setProgressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	entry, err := h.progress.SetProgress(r.Context(), claims.UserID, videoID, *req.Percent)
	if err != nil {
		respondStoreError(w, err, "video not found")
		return
	}

	metrics.ProgressUpdatesTotal.Inc()
	if entry.Percent >= progress.CompletionThreshold {
		metrics.WatchHistoryPromotionsTotal.Inc()
	}
	respondSuccess(w, http.StatusOK, entry)
}

// GetProgress returns the caller's full progress sequence with resolved
// video metadata, in insertion order.
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	entries, err := h.progress.GetProgress(r.Context(), claims.UserID)
	if err != nil {
		respondStoreError(w, err, "user not found")
		return
	}
	respondSuccess(w, http.StatusOK, entries)
}

// ContinueWatching returns the caller's in-progress videos.
func (h *Handler) ContinueWatching(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	entries, err := h.progress.ContinueWatching(r.Context(), claims.UserID)
	if err != nil {
		respondStoreError(w, err, "user not found")
		return
	}
	respondSuccess(w, http.StatusOK, entries)
}

// WatchHistory returns the caller's watch history, oldest promotion first.
func (h *Handler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	history, err := h.progress.WatchHistory(r.Context(), claims.UserID)
	if err != nil {
		respondStoreError(w, err, "user not found")
		return
	}
	respondSuccess(w, http.StatusOK, history)
}
