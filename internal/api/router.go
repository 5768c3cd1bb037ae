// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coursecast/coursecast/internal/auth"
	"github.com/coursecast/coursecast/internal/middleware"
)

// adapt converts the HandlerFunc-form middleware used across the codebase to
// chi's http.Handler form.
func adapt(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// NewRouter assembles the full route tree.
//
// Three rate-limit tiers apply: a strict limiter on credential endpoints, the
// standard per-IP limiter on data endpoints, and a permissive limiter on
// health probes. All /api/v1 data routes are instrumented for Prometheus and
// require a Bearer token except registration and login.
func NewRouter(h *Handler, mw *ChiMiddleware) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.CORS())
	r.Use(adapt(middleware.RequestID))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimitHealth())
			r.Get("/health", h.Health)
			r.Get("/health/live", h.Liveness)
			r.Get("/health/ready", h.Readiness)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimitAuth())
			r.Use(adapt(middleware.PrometheusMetrics))
			r.Post("/users/register", h.Register)
			r.Post("/users/login", h.Login)
			r.Post("/users/refresh", h.Refresh)
		})

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())
			r.Use(adapt(middleware.PrometheusMetrics))
			r.Use(adapt(h.jwt.Authenticate))

			r.Get("/users/me", h.Me)
			r.Post("/users/bookmarks/{videoID}", h.AddBookmark)
			r.Delete("/users/bookmarks/{videoID}", h.RemoveBookmark)

			r.Patch("/progress/{videoID}", h.SetProgress)
			r.Get("/progress", h.GetProgress)
			r.Get("/progress/continue-watching", h.ContinueWatching)
			r.Get("/progress/history", h.WatchHistory)

			r.Get("/recommendations", h.GetRecommendations)

			r.Get("/quizzes/attempts", h.ListAttempts)
			r.Get("/quizzes/{videoID}", h.GetQuiz)
			r.Post("/quizzes/{videoID}/submit", h.SubmitQuiz)
			r.With(adapt(auth.RequireInstructor)).Post("/quizzes/{videoID}", h.CreateQuiz)

			r.Get("/learner/dashboard", h.LearnerDashboard)

			r.Route("/instructor", func(r chi.Router) {
				r.Use(adapt(auth.RequireInstructor))
				r.Get("/dashboard/stats", h.ChannelStats)
				r.Get("/dashboard/watch-time", h.ChannelWatchTime)
				r.Get("/dashboard/videos/{userID}", h.ChannelVideos)
				r.Post("/likes-by-video", h.LikesByVideo)
			})

			r.Get("/videos", h.ListVideos)
			r.With(adapt(auth.RequireInstructor)).Post("/videos", h.CreateVideo)
			r.Get("/videos/{id}", h.GetVideo)
			r.Patch("/videos/{id}", h.UpdateVideo)
			r.Delete("/videos/{id}", h.DeleteVideo)

			r.Post("/videos/{id}/comments", h.CreateComment)
			r.Get("/videos/{id}/comments", h.ListComments)
			r.Delete("/videos/{id}/comments/{commentID}", h.DeleteComment)

			r.Post("/likes/{targetType}/{targetID}", h.CreateLike)
			r.Delete("/likes/{targetType}/{targetID}", h.DeleteLike)

			r.Post("/subscriptions/{channelID}", h.Subscribe)
			r.Delete("/subscriptions/{channelID}", h.Unsubscribe)

			r.Post("/posts", h.CreatePost)
			r.Get("/posts", h.ListPosts)
			r.Patch("/posts/{id}", h.UpdatePost)
			r.Delete("/posts/{id}", h.DeletePost)
		})
	})

	return r
}
