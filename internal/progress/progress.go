// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

// Package progress implements the progress store and the continue-watching /
// resume selectors. Progress writes clamp the percentage to [0,100] and, when
// the clamped value crosses the completion threshold, promote the video into
// the user's watch history in the same storage transaction.
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coursecast/coursecast/internal/models"
	"github.com/coursecast/coursecast/internal/store"
)

// Thresholds for the derived views. ContinueWatching and Resume intentionally
// use different upper bounds; both call sites' literal behavior is preserved.
const (
	// CompletionThreshold is the percentage at or above which a video is
	// promoted into the watch history.
	CompletionThreshold = 95

	// continueWatchingUpper bounds the in-progress view (exclusive).
	continueWatchingUpper = 95

	// resumeUpper bounds the learner-dashboard resume view (exclusive).
	resumeUpper = 90
)

// Repository is the slice of the document store the progress service needs.
// *store.Store satisfies it; tests substitute an in-memory fake.
type Repository interface {
	UpsertProgress(ctx context.Context, userID, videoID string, percent float64, promote bool) (*models.ProgressEntry, error)
	ListProgress(ctx context.Context, userID string) ([]models.ProgressEntry, error)
	ListWatchHistory(ctx context.Context, userID string) ([]store.HistoryRecord, error)
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	GetVideos(ctx context.Context, ids []string) (map[string]*models.Video, error)
	UserExists(ctx context.Context, id string) (bool, error)
}

// VideoProgress is a progress entry joined with the display metadata of its
// video, as returned to clients.
type VideoProgress struct {
	VideoID    string            `json:"videoId"`
	Title      string            `json:"title"`
	Thumbnail  string            `json:"thumbnail"`
	Duration   string            `json:"duration"`
	Category   string            `json:"category"`
	Difficulty models.Difficulty `json:"difficulty"`
	Percent    float64           `json:"progress"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// WatchedVideo is a watch-history record joined with video display metadata.
type WatchedVideo struct {
	VideoID    string            `json:"videoId"`
	Title      string            `json:"title"`
	Thumbnail  string            `json:"thumbnail"`
	Duration   string            `json:"duration"`
	Category   string            `json:"category"`
	Difficulty models.Difficulty `json:"difficulty"`
	WatchedAt  time.Time         `json:"watchedAt"`
}

// Service exposes progress tracking and its derived views.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a progress service backed by repo.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "progress").Logger(),
	}
}

// clamp bounds percent to [0,100].
func clamp(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// SetProgress records the clamped completion percentage for (user, video).
// When the clamped value reaches the completion threshold the video is
// promoted into the watch history atomically with the percentage write.
// Unknown users and videos return store.ErrNotFound.
func (s *Service) SetProgress(ctx context.Context, userID, videoID string, percent float64) (*models.ProgressEntry, error) {
	ok, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
	}
	if _, err := s.repo.GetVideo(ctx, videoID); err != nil {
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}

	clamped := clamp(percent)
	promote := clamped >= CompletionThreshold

	entry, err := s.repo.UpsertProgress(ctx, userID, videoID, clamped, promote)
	if err != nil {
		return nil, fmt.Errorf("upsert progress: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("video_id", videoID).
		Float64("percent", clamped).
		Bool("promoted", promote).
		Msg("progress updated")
	return entry, nil
}

// GetProgress returns the user's full progress sequence in insertion order,
// with video metadata resolved. Entries whose video no longer resolves are
// skipped.
func (s *Service) GetProgress(ctx context.Context, userID string) ([]VideoProgress, error) {
	entries, err := s.repo.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return s.resolve(ctx, entries)
}

// ContinueWatching returns the in-progress view: entries strictly between
// zero and the continue-watching upper bound, in insertion order.
func (s *Service) ContinueWatching(ctx context.Context, userID string) ([]VideoProgress, error) {
	entries, err := s.repo.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	filtered := entries[:0:0]
	for _, e := range entries {
		if e.Percent > 0 && e.Percent < continueWatchingUpper {
			filtered = append(filtered, e)
		}
	}
	return s.resolve(ctx, filtered)
}

// Resume returns the learner-dashboard resume view: entries below the resume
// upper bound, in insertion order.
func (s *Service) Resume(ctx context.Context, userID string) ([]VideoProgress, error) {
	entries, err := s.repo.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	filtered := entries[:0:0]
	for _, e := range entries {
		if e.Percent < resumeUpper {
			filtered = append(filtered, e)
		}
	}
	return s.resolve(ctx, filtered)
}

// WatchHistory returns the user's watch history with video metadata resolved,
// oldest promotion first. History entries whose video no longer resolves are
// skipped.
func (s *Service) WatchHistory(ctx context.Context, userID string) ([]WatchedVideo, error) {
	records, err := s.repo.ListWatchHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list watch history: %w", err)
	}
	if len(records) == 0 {
		return []WatchedVideo{}, nil
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.VideoID)
	}
	videos, err := s.repo.GetVideos(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve videos: %w", err)
	}

	out := make([]WatchedVideo, 0, len(records))
	for _, r := range records {
		v, ok := videos[r.VideoID]
		if !ok {
			continue
		}
		out = append(out, WatchedVideo{
			VideoID:    v.ID,
			Title:      v.Title,
			Thumbnail:  v.Thumbnail,
			Duration:   v.Duration,
			Category:   v.Category,
			Difficulty: v.Difficulty,
			WatchedAt:  r.PromotedAt,
		})
	}
	return out, nil
}

// resolve joins progress entries with their video metadata, preserving the
// entries' order and silently skipping dangling video references.
func (s *Service) resolve(ctx context.Context, entries []models.ProgressEntry) ([]VideoProgress, error) {
	if len(entries) == 0 {
		return []VideoProgress{}, nil
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.VideoID)
	}
	videos, err := s.repo.GetVideos(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve videos: %w", err)
	}

	out := make([]VideoProgress, 0, len(entries))
	for _, e := range entries {
		v, ok := videos[e.VideoID]
		if !ok {
			s.logger.Debug().Str("video_id", e.VideoID).Msg("skipping dangling progress reference")
			continue
		}
		out = append(out, VideoProgress{
			VideoID:    v.ID,
			Title:      v.Title,
			Thumbnail:  v.Thumbnail,
			Duration:   v.Duration,
			Category:   v.Category,
			Difficulty: v.Difficulty,
			Percent:    e.Percent,
			UpdatedAt:  e.UpdatedAt,
		})
	}
	return out, nil
}
