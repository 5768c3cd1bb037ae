// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

// Package api exposes the HTTP surface: chi routing, request decoding and
// validation, and the translation of service errors into the response
// envelope. Handlers hold no business logic beyond ownership checks; the
// domain services do the work.
package api

import (
	"context"
	"io"
	"time"

	"github.com/coursecast/coursecast/internal/analytics"
	"github.com/coursecast/coursecast/internal/auth"
	"github.com/coursecast/coursecast/internal/cache"
	"github.com/coursecast/coursecast/internal/progress"
	"github.com/coursecast/coursecast/internal/quiz"
	"github.com/coursecast/coursecast/internal/recommend"
	"github.com/coursecast/coursecast/internal/store"
)

// View-count deduplication window: repeat fetches of the same video by the
// same user within this window count one view.
const (
	viewDedupWindow   = 30 * time.Second
	viewDedupCapacity = 100000
)

// BlobStore uploads blobs to the external media store. *media.Client
// satisfies it; handler tests substitute a fake.
type BlobStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, blobURL string) error
}

// Handler carries the wired services for all HTTP handlers.
type Handler struct {
	store     *store.Store
	progress  *progress.Service
	recommend *recommend.Engine
	quiz      *quiz.Service
	analytics *analytics.Service
	jwt       *auth.JWTManager
	media     BlobStore
	views     *cache.Dedup
}

// NewHandler creates the handler set. media may be nil when no media store
// is configured; video creation then requires pre-uploaded URLs.
func NewHandler(
	st *store.Store,
	progressSvc *progress.Service,
	recommendEngine *recommend.Engine,
	quizSvc *quiz.Service,
	analyticsSvc *analytics.Service,
	jwtManager *auth.JWTManager,
	mediaStore BlobStore,
) *Handler {
	return &Handler{
		store:     st,
		progress:  progressSvc,
		recommend: recommendEngine,
		quiz:      quizSvc,
		analytics: analyticsSvc,
		jwt:       jwtManager,
		media:     mediaStore,
		views:     cache.NewDedup(viewDedupCapacity, viewDedupWindow),
	}
}
