// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package api

import (
	"net/http"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

type healthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health reports overall service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "store unavailable", err)
		return
	}
	respondSuccess(w, http.StatusOK, healthStatus{Status: "healthy", Version: Version})
}

// Liveness reports that the process is running. It never touches the store,
// so a wedged database does not get the process restarted.
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, healthStatus{Status: "alive", Version: Version})
}

// Readiness reports whether the service can take traffic.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "store unavailable", err)
		return
	}
	respondSuccess(w, http.StatusOK, healthStatus{Status: "ready", Version: Version})
}
