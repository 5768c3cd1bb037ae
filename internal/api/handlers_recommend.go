// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package api

import (
	"net/http"

	"github.com/coursecast/coursecast/internal/auth"
	"github.com/coursecast/coursecast/internal/metrics"
)

// GetRecommendations returns published videos matching the caller's
// interaction signals, best first. A caller with no interaction history
// gets an empty list.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	videos, err := h.recommend.Recommend(r.Context(), claims.UserID)
	if err != nil {
		respondStoreError(w, err, "user not found")
		return
	}

	metrics.RecommendationRequestsTotal.Inc()
	metrics.RecommendationResults.Observe(float64(len(videos)))
	respondSuccess(w, http.StatusOK, videos)
}
