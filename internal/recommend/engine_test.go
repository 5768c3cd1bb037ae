// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package recommend

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/coursecast/coursecast/internal/logging"
	"github.com/coursecast/coursecast/internal/models"
	"github.com/coursecast/coursecast/internal/store"
)

// fakeProvider is an in-memory DataProvider for tests.
type fakeProvider struct {
	progress     map[string][]models.ProgressEntry
	bookmarks    map[string][]store.BookmarkRecord
	videos       map[string]*models.Video
	catalogCalls int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		progress:  make(map[string][]models.ProgressEntry),
		bookmarks: make(map[string][]store.BookmarkRecord),
		videos:    make(map[string]*models.Video),
	}
}

func (f *fakeProvider) ListProgress(_ context.Context, userID string) ([]models.ProgressEntry, error) {
	return f.progress[userID], nil
}

func (f *fakeProvider) ListBookmarks(_ context.Context, userID string) ([]store.BookmarkRecord, error) {
	return f.bookmarks[userID], nil
}

func (f *fakeProvider) GetVideos(_ context.Context, ids []string) (map[string]*models.Video, error) {
	out := make(map[string]*models.Video, len(ids))
	for _, id := range ids {
		if v, ok := f.videos[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (f *fakeProvider) ListPublishedVideos(_ context.Context) ([]models.Video, error) {
	f.catalogCalls++
	var out []models.Video
	for _, v := range f.videos {
		if v.IsPublished {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeProvider) addVideo(v models.Video) {
	stored := v
	f.videos[v.ID] = &stored
}

func (f *fakeProvider) setProgress(userID, videoID string, percent float64) {
	f.progress[userID] = append(f.progress[userID], models.ProgressEntry{VideoID: videoID, Percent: percent})
}

func newTestEngine(f *fakeProvider) *Engine {
	return NewEngine(f, logging.NewTestLogger(io.Discard))
}

func TestRecommendNoInteractionsReturnsEmptyWithoutQuery(t *testing.T) {
	f := newFakeProvider()
	f.addVideo(models.Video{ID: "v1", IsPublished: true, Tags: []string{"x"}, Category: "music", Difficulty: models.DifficultyBeginner})
	e := newTestEngine(f)

	got, err := e.Recommend(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Recommend() = %v, want empty non-nil slice", got)
	}
	if f.catalogCalls != 0 {
		t.Errorf("catalog queried %d times, want 0 for empty signal sets", f.catalogCalls)
	}
}

func TestRecommendLowProgressDoesNotCount(t *testing.T) {
	f := newFakeProvider()
	f.addVideo(models.Video{ID: "v1", IsPublished: true, Tags: []string{"x"}, Category: "music", Difficulty: models.DifficultyBeginner})
	f.setProgress("u1", "v1", 89.9)
	e := newTestEngine(f)

	got, err := e.Recommend(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recommend() = %v, want empty for sub-threshold progress", got)
	}
}

func TestRecommendMatchesAllThreeSignals(t *testing.T) {
	f := newFakeProvider()
	seed := models.Video{ID: "seed", IsPublished: true, Tags: []string{"x"}, Category: "music", Difficulty: models.DifficultyBeginner}
	f.addVideo(seed)
	f.setProgress("u1", "seed", 95)

	f.addVideo(models.Video{ID: "match", IsPublished: true, Tags: []string{"x", "y"}, Category: "music", Difficulty: models.DifficultyBeginner})
	f.addVideo(models.Video{ID: "wrong-tag", IsPublished: true, Tags: []string{"z"}, Category: "music", Difficulty: models.DifficultyBeginner})
	f.addVideo(models.Video{ID: "wrong-category", IsPublished: true, Tags: []string{"x"}, Category: "cooking", Difficulty: models.DifficultyBeginner})
	f.addVideo(models.Video{ID: "wrong-difficulty", IsPublished: true, Tags: []string{"x"}, Category: "music", Difficulty: models.DifficultyAdvanced})
	f.addVideo(models.Video{ID: "unpublished", IsPublished: false, Tags: []string{"x"}, Category: "music", Difficulty: models.DifficultyBeginner})

	e := newTestEngine(f)
	got, err := e.Recommend(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "match" {
		t.Errorf("Recommend() = %v, want exactly [match]", ids(got))
	}
}

func TestRecommendExcludesInteractedAndBookmarked(t *testing.T) {
	f := newFakeProvider()
	f.addVideo(models.Video{ID: "watched", IsPublished: true, Tags: []string{"x"}, Category: "music", Difficulty: models.DifficultyBeginner})
	f.addVideo(models.Video{ID: "bookmarked", IsPublished: true, Tags: []string{"x"}, Category: "music", Difficulty: models.DifficultyBeginner})
	f.addVideo(models.Video{ID: "fresh", IsPublished: true, Tags: []string{"x"}, Category: "music", Difficulty: models.DifficultyBeginner})

	f.setProgress("u1", "watched", 100)
	f.bookmarks["u1"] = []store.BookmarkRecord{{VideoID: "bookmarked"}}

	e := newTestEngine(f)
	got, err := e.Recommend(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "fresh" {
		t.Errorf("Recommend() = %v, want exactly [fresh]", ids(got))
	}
}

func TestRecommendBookmarkAloneProvidesSignal(t *testing.T) {
	f := newFakeProvider()
	f.addVideo(models.Video{ID: "marked", IsPublished: true, Tags: []string{"x"}, Category: "music", Difficulty: models.DifficultyBeginner})
	f.addVideo(models.Video{ID: "similar", IsPublished: true, Tags: []string{"x"}, Category: "music", Difficulty: models.DifficultyBeginner})
	f.bookmarks["u1"] = []store.BookmarkRecord{{VideoID: "marked"}}

	e := newTestEngine(f)
	got, err := e.Recommend(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "similar" {
		t.Errorf("Recommend() = %v, want exactly [similar]", ids(got))
	}
}

func TestRecommendCapAndOrdering(t *testing.T) {
	f := newFakeProvider()
	f.addVideo(models.Video{ID: "seed", IsPublished: true, Tags: []string{"x"}, Category: "music", Difficulty: models.DifficultyBeginner})
	f.setProgress("u1", "seed", 100)

	// 20 matching candidates with distinct view counts.
	for i := 0; i < 20; i++ {
		f.addVideo(models.Video{
			ID:          fmt.Sprintf("c%02d", i),
			IsPublished: true,
			Tags:        []string{"x"},
			Category:    "music",
			Difficulty:  models.DifficultyBeginner,
			Views:       int64(i),
		})
	}

	e := newTestEngine(f)
	got, err := e.Recommend(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 15 {
		t.Fatalf("Recommend() len = %d, want cap of 15", len(got))
	}
	// Views descending: c19 first, down to c05.
	if got[0].ID != "c19" || got[14].ID != "c05" {
		t.Errorf("ordering = [%s ... %s], want [c19 ... c05]", got[0].ID, got[14].ID)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Views > got[i-1].Views {
			t.Fatalf("views not descending at %d: %d > %d", i, got[i].Views, got[i-1].Views)
		}
	}
}

func TestRecommendTieBreakByID(t *testing.T) {
	f := newFakeProvider()
	f.addVideo(models.Video{ID: "seed", IsPublished: true, Tags: []string{"x"}, Category: "music", Difficulty: models.DifficultyBeginner})
	f.setProgress("u1", "seed", 100)

	for _, id := range []string{"b", "a", "c"} {
		f.addVideo(models.Video{ID: id, IsPublished: true, Tags: []string{"x"}, Category: "music", Difficulty: models.DifficultyBeginner, Views: 7})
	}

	e := newTestEngine(f)
	got, err := e.Recommend(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("Recommend() order = %v, want %v", ids(got), want)
		}
	}
}

func ids(videos []models.Video) []string {
	out := make([]string, len(videos))
	for i, v := range videos {
		out[i] = v.ID
	}
	return out
}
