// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

// Package analytics computes instructor-facing aggregates: watch time across
// a channel's videos and the channel stat rollups. All aggregates are derived
// on demand from the document store; nothing here is cached or mutated.
package analytics

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/coursecast/coursecast/internal/duration"
	"github.com/coursecast/coursecast/internal/models"
	"github.com/coursecast/coursecast/internal/store"
)

// Repository is the slice of the document store the aggregators need.
type Repository interface {
	ListVideosByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	ListProgressForVideos(ctx context.Context, videoIDs map[string]bool) ([]store.UserProgressRecord, error)
	SumViewsByOwner(ctx context.Context, ownerID string) (int64, error)
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	CountVideosByOwner(ctx context.Context, ownerID string) (int64, error)
	CountLikesByOwner(ctx context.Context, ownerID string) (int64, error)
	CountPostsByOwner(ctx context.Context, ownerID string) (int64, error)
}

// Service computes channel aggregates.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates an analytics service backed by repo.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "analytics").Logger(),
	}
}

// WatchTime is the watch-time aggregate for one channel.
type WatchTime struct {
	TotalWatchTimeHours    float64 `json:"totalWatchTimeHours"`
	AvgViewDurationSeconds int64   `json:"avgViewDurationSeconds"`
}

// ChannelStats is the per-channel rollup. Each field is computed
// independently; a failed rollup reports zero without blocking the rest.
type ChannelStats struct {
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalPosts       int64 `json:"totalPosts"`
}

// WatchTime aggregates watched seconds across every progress entry that
// references one of the owner's videos. Videos whose duration string does not
// parse are excluded from both the numerator and the entry count, so unknown
// durations never dilute the average. An owner with no videos short-circuits
// to zeros without scanning progress.
func (s *Service) WatchTime(ctx context.Context, ownerID string) (*WatchTime, error) {
	videos, err := s.repo.ListVideosByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return &WatchTime{}, nil
	}

	durations := make(map[string]int, len(videos))
	ids := make(map[string]bool, len(videos))
	for _, v := range videos {
		ids[v.ID] = true
		if secs, ok := duration.Parse(v.Duration); ok && secs > 0 {
			durations[v.ID] = secs
		}
	}

	records, err := s.repo.ListProgressForVideos(ctx, ids)
	if err != nil {
		return nil, err
	}

	var totalSeconds float64
	var countEntries int64
	for _, r := range records {
		secs, ok := durations[r.VideoID]
		if !ok {
			continue
		}
		percent := r.Percent
		if percent < 0 {
			percent = 0
		} else if percent > 100 {
			percent = 100
		}
		watched := percent / 100 * float64(secs)
		totalSeconds += watched
		if watched > 0 {
			countEntries++
		}
	}

	out := &WatchTime{
		TotalWatchTimeHours: math.Round(totalSeconds/3600*100) / 100,
	}
	if countEntries > 0 {
		out.AvgViewDurationSeconds = int64(math.Round(totalSeconds / float64(countEntries)))
	}
	return out, nil
}

// ChannelStats computes the five channel rollups. Rollups are independent: a
// failure in one is logged and reported as zero while the others proceed.
// With no intervening writes the result is identical across calls.
func (s *Service) ChannelStats(ctx context.Context, ownerID string) *ChannelStats {
	stats := &ChannelStats{}
	stats.TotalViews = s.rollup(ctx, ownerID, "views", s.repo.SumViewsByOwner)
	stats.TotalSubscribers = s.rollup(ctx, ownerID, "subscribers", s.repo.CountSubscribers)
	stats.TotalVideos = s.rollup(ctx, ownerID, "videos", s.repo.CountVideosByOwner)
	stats.TotalLikes = s.rollup(ctx, ownerID, "likes", s.repo.CountLikesByOwner)
	stats.TotalPosts = s.rollup(ctx, ownerID, "posts", s.repo.CountPostsByOwner)
	return stats
}

func (s *Service) rollup(ctx context.Context, ownerID, name string, fn func(context.Context, string) (int64, error)) int64 {
	n, err := fn(ctx, ownerID)
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", ownerID).Str("rollup", name).Msg("rollup failed, reporting zero")
		return 0
	}
	return n
}
