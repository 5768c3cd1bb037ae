// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

// Package recommend derives per-user video recommendations from watch
// progress and bookmarks. The engine is stateless; every request rebuilds the
// signal sets from the user's current interactions.
package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/coursecast/coursecast/internal/models"
	"github.com/coursecast/coursecast/internal/store"
)

const (
	// interactionThreshold is the progress percentage at or above which a
	// video counts as interacted for signal extraction.
	interactionThreshold = 90

	// maxResults caps the recommendation list.
	maxResults = 15
)

// DataProvider is the slice of the document store the engine needs.
// *store.Store satisfies it; tests substitute an in-memory fake.
type DataProvider interface {
	ListProgress(ctx context.Context, userID string) ([]models.ProgressEntry, error)
	ListBookmarks(ctx context.Context, userID string) ([]store.BookmarkRecord, error)
	GetVideos(ctx context.Context, ids []string) (map[string]*models.Video, error)
	ListPublishedVideos(ctx context.Context) ([]models.Video, error)
}

// Engine produces recommendations for one user at a time. Safe for
// concurrent use; it holds no per-request state.
type Engine struct {
	data   DataProvider
	logger zerolog.Logger
}

// NewEngine creates a recommendation engine backed by data.
func NewEngine(data DataProvider, logger zerolog.Logger) *Engine {
	return &Engine{
		data:   data,
		logger: logger.With().Str("component", "recommend").Logger(),
	}
}

// signals are the three independent metadata sets extracted from a user's
// interacted videos. A candidate must match all three.
type signals struct {
	tags         map[string]bool
	categories   map[string]bool
	difficulties map[models.Difficulty]bool
}

func (s signals) empty() bool {
	return len(s.tags) == 0 && len(s.categories) == 0 && len(s.difficulties) == 0
}

// Recommend returns up to maxResults published videos sharing tag, category,
// and difficulty signals with the user's interacted videos, excluding the
// interacted videos themselves. A user with no interactions gets an empty
// list without a catalog query. Ordering is views descending, id ascending on
// ties, so results are deterministic.
func (e *Engine) Recommend(ctx context.Context, userID string) ([]models.Video, error) {
	interacted, err := e.interactedVideoIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	sig, err := e.extractSignals(ctx, interacted)
	if err != nil {
		return nil, err
	}
	if sig.empty() {
		return []models.Video{}, nil
	}

	catalog, err := e.data.ListPublishedVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published videos: %w", err)
	}

	var candidates []models.Video
	for _, v := range catalog {
		if interacted[v.ID] {
			continue
		}
		if !matches(&v, sig) {
			continue
		}
		candidates = append(candidates, v)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Views != candidates[j].Views {
			return candidates[i].Views > candidates[j].Views
		}
		return candidates[i].ID < candidates[j].ID
	})
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	e.logger.Debug().
		Str("user_id", userID).
		Int("interacted", len(interacted)).
		Int("candidates", len(candidates)).
		Msg("recommendations computed")

	if candidates == nil {
		return []models.Video{}, nil
	}
	return candidates, nil
}

// interactedVideoIDs builds the interacted set: videos with progress at or
// above the interaction threshold, plus every bookmarked video.
func (e *Engine) interactedVideoIDs(ctx context.Context, userID string) (map[string]bool, error) {
	entries, err := e.data.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	bookmarks, err := e.data.ListBookmarks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	interacted := make(map[string]bool, len(entries)+len(bookmarks))
	for _, entry := range entries {
		if entry.Percent >= interactionThreshold {
			interacted[entry.VideoID] = true
		}
	}
	for _, b := range bookmarks {
		interacted[b.VideoID] = true
	}
	return interacted, nil
}

// extractSignals unions tags, categories, and difficulties across the
// interacted videos. Dangling video references contribute nothing.
func (e *Engine) extractSignals(ctx context.Context, interacted map[string]bool) (signals, error) {
	sig := signals{
		tags:         make(map[string]bool),
		categories:   make(map[string]bool),
		difficulties: make(map[models.Difficulty]bool),
	}
	if len(interacted) == 0 {
		return sig, nil
	}

	ids := make([]string, 0, len(interacted))
	for id := range interacted {
		ids = append(ids, id)
	}
	videos, err := e.data.GetVideos(ctx, ids)
	if err != nil {
		return signals{}, fmt.Errorf("resolve interacted videos: %w", err)
	}

	for _, v := range videos {
		for _, tag := range v.Tags {
			sig.tags[tag] = true
		}
		if v.Category != "" {
			sig.categories[v.Category] = true
		}
		if v.Difficulty != "" {
			sig.difficulties[v.Difficulty] = true
		}
	}
	return sig, nil
}

// matches reports whether the candidate shares at least one tag and has a
// category and difficulty drawn from the signal sets.
func matches(v *models.Video, sig signals) bool {
	tagHit := false
	for _, tag := range v.Tags {
		if sig.tags[tag] {
			tagHit = true
			break
		}
	}
	if !tagHit {
		return false
	}
	return sig.categories[v.Category] && sig.difficulties[v.Difficulty]
}
