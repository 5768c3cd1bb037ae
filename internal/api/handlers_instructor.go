// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursecast/coursecast/internal/auth"
	"github.com/coursecast/coursecast/internal/models"
)

// ChannelStats returns the caller's channel rollups. Individual rollup
// failures report zero rather than failing the whole response.
func (h *Handler) ChannelStats(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	respondSuccess(w, http.StatusOK, h.analytics.ChannelStats(r.Context(), claims.UserID))
}

// ChannelWatchTime returns the watch-time aggregate across the caller's
// videos.
func (h *Handler) ChannelWatchTime(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	watchTime, err := h.analytics.WatchTime(r.Context(), claims.UserID)
	if err != nil {
		respondStoreError(w, err, "user not found")
		return
	}
	respondSuccess(w, http.StatusOK, watchTime)
}

// ChannelVideos lists a channel's uploads, newest first. Instructors can
// inspect any channel's upload list here.
func (h *Handler) ChannelVideos(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if ok, err := h.store.UserExists(r.Context(), userID); err != nil {
		respondStoreError(w, err, "user not found")
		return
	} else if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
		return
	}

	videos, err := h.store.ListVideosByOwner(r.Context(), userID)
	if err != nil {
		respondStoreError(w, err, "user not found")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	respondSuccess(w, http.StatusOK, videos)
}

type likesByVideoRequest struct {
	VideoIDs []string `json:"videoIds" validate:"required,min=1"`
}

// LikesByVideo returns per-video like counts for the requested ids. Unknown
// ids report zero.
func (h *Handler) LikesByVideo(w http.ResponseWriter, r *http.Request) {
	var req likesByVideoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	counts, err := h.store.CountLikesByVideos(r.Context(), req.VideoIDs)
	if err != nil {
		respondStoreError(w, err, "videos not found")
		return
	}
	respondSuccess(w, http.StatusOK, counts)
}
