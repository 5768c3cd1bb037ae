// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package progress

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/coursecast/coursecast/internal/logging"
	"github.com/coursecast/coursecast/internal/models"
	"github.com/coursecast/coursecast/internal/store"
)

// fakeRepo is an in-memory Repository for tests.
type fakeRepo struct {
	users    map[string]bool
	videos   map[string]*models.Video
	progress map[string][]models.ProgressEntry // keyed by user, insertion order
	history  map[string][]store.HistoryRecord
	nextSeq  uint64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[string]bool),
		videos:   make(map[string]*models.Video),
		progress: make(map[string][]models.ProgressEntry),
		history:  make(map[string][]store.HistoryRecord),
	}
}

func (f *fakeRepo) UpsertProgress(_ context.Context, userID, videoID string, percent float64, promote bool) (*models.ProgressEntry, error) {
	entries := f.progress[userID]
	var entry *models.ProgressEntry
	for i := range entries {
		if entries[i].VideoID == videoID {
			entries[i].Percent = percent
			entries[i].UpdatedAt = time.Now().UTC()
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		f.nextSeq++
		entries = append(entries, models.ProgressEntry{
			VideoID:   videoID,
			Percent:   percent,
			Seq:       f.nextSeq,
			UpdatedAt: time.Now().UTC(),
		})
		f.progress[userID] = entries
		entry = &entries[len(entries)-1]
	}

	if promote {
		already := false
		for _, r := range f.history[userID] {
			if r.VideoID == videoID {
				already = true
				break
			}
		}
		if !already {
			f.history[userID] = append(f.history[userID], store.HistoryRecord{
				VideoID:    videoID,
				PromotedAt: time.Now().UTC(),
			})
		}
	}

	out := *entry
	return &out, nil
}

func (f *fakeRepo) ListProgress(_ context.Context, userID string) ([]models.ProgressEntry, error) {
	return append([]models.ProgressEntry(nil), f.progress[userID]...), nil
}

func (f *fakeRepo) ListWatchHistory(_ context.Context, userID string) ([]store.HistoryRecord, error) {
	return append([]store.HistoryRecord(nil), f.history[userID]...), nil
}

func (f *fakeRepo) GetVideo(_ context.Context, id string) (*models.Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (f *fakeRepo) GetVideos(_ context.Context, ids []string) (map[string]*models.Video, error) {
	out := make(map[string]*models.Video, len(ids))
	for _, id := range ids {
		if v, ok := f.videos[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (f *fakeRepo) UserExists(_ context.Context, id string) (bool, error) {
	return f.users[id], nil
}

func (f *fakeRepo) addVideo(id, title string) {
	f.videos[id] = &models.Video{
		ID:         id,
		Title:      title,
		Thumbnail:  "https://cdn.example.com/" + id + ".jpg",
		Duration:   "10:00",
		Category:   "music",
		Difficulty: models.DifficultyBeginner,
	}
}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, logging.NewTestLogger(io.Discard))
}

func TestSetProgressClamps(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"above range", 150, 100},
		{"below range", -10, 0},
		{"in range", 42.5, 42.5},
		{"zero", 0, 0},
		{"hundred", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.users["u1"] = true
			repo.addVideo("v1", "Intro")
			svc := newTestService(repo)

			entry, err := svc.SetProgress(context.Background(), "u1", "v1", tt.in)
			if err != nil {
				t.Fatalf("SetProgress() error = %v", err)
			}
			if entry.Percent != tt.want {
				t.Errorf("SetProgress(%v) stored %v, want %v", tt.in, entry.Percent, tt.want)
			}
		})
	}
}

func TestSetProgressUnknownUser(t *testing.T) {
	repo := newFakeRepo()
	repo.addVideo("v1", "Intro")
	svc := newTestService(repo)

	if _, err := svc.SetProgress(context.Background(), "ghost", "v1", 50); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("SetProgress(unknown user) error = %v, want ErrNotFound", err)
	}
}

func TestSetProgressUnknownVideo(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = true
	svc := newTestService(repo)

	if _, err := svc.SetProgress(context.Background(), "u1", "ghost", 50); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("SetProgress(unknown video) error = %v, want ErrNotFound", err)
	}
}

func TestSetProgressPromotionIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = true
	repo.addVideo("v1", "Intro")
	svc := newTestService(repo)
	ctx := context.Background()

	// Two consecutive writes at or above the threshold promote exactly once.
	if _, err := svc.SetProgress(ctx, "u1", "v1", 96); err != nil {
		t.Fatalf("SetProgress() error = %v", err)
	}
	if _, err := svc.SetProgress(ctx, "u1", "v1", 100); err != nil {
		t.Fatalf("SetProgress() error = %v", err)
	}

	history, err := svc.WatchHistory(ctx, "u1")
	if err != nil {
		t.Fatalf("WatchHistory() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("WatchHistory() len = %d, want 1", len(history))
	}
	if history[0].VideoID != "v1" {
		t.Errorf("WatchHistory()[0].VideoID = %q, want v1", history[0].VideoID)
	}
}

func TestSetProgressBelowThresholdDoesNotPromote(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = true
	repo.addVideo("v1", "Intro")
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.SetProgress(ctx, "u1", "v1", 94.9); err != nil {
		t.Fatalf("SetProgress() error = %v", err)
	}
	history, err := svc.WatchHistory(ctx, "u1")
	if err != nil {
		t.Fatalf("WatchHistory() error = %v", err)
	}
	if len(history) != 0 {
		t.Errorf("WatchHistory() len = %d, want 0", len(history))
	}
}

func TestGetProgressResolvesMetadataInOrder(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = true
	repo.addVideo("v1", "First")
	repo.addVideo("v2", "Second")
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.SetProgress(ctx, "u1", "v1", 30); err != nil {
		t.Fatalf("SetProgress() error = %v", err)
	}
	if _, err := svc.SetProgress(ctx, "u1", "v2", 60); err != nil {
		t.Fatalf("SetProgress() error = %v", err)
	}
	// Updating v1 must not move it in the sequence.
	if _, err := svc.SetProgress(ctx, "u1", "v1", 45); err != nil {
		t.Fatalf("SetProgress() error = %v", err)
	}

	got, err := svc.GetProgress(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProgress() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetProgress() len = %d, want 2", len(got))
	}
	if got[0].VideoID != "v1" || got[1].VideoID != "v2" {
		t.Errorf("order = [%s %s], want [v1 v2]", got[0].VideoID, got[1].VideoID)
	}
	if got[0].Title != "First" || got[0].Category != "music" || got[0].Duration != "10:00" {
		t.Errorf("metadata not resolved: %+v", got[0])
	}
	if got[0].Percent != 45 {
		t.Errorf("v1 percent = %v, want 45", got[0].Percent)
	}
}

func TestGetProgressSkipsDanglingVideo(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = true
	repo.addVideo("v1", "Kept")
	repo.addVideo("v2", "Deleted later")
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.SetProgress(ctx, "u1", "v1", 10); err != nil {
		t.Fatalf("SetProgress() error = %v", err)
	}
	if _, err := svc.SetProgress(ctx, "u1", "v2", 20); err != nil {
		t.Fatalf("SetProgress() error = %v", err)
	}
	delete(repo.videos, "v2")

	got, err := svc.GetProgress(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProgress() error = %v", err)
	}
	if len(got) != 1 || got[0].VideoID != "v1" {
		t.Errorf("GetProgress() = %+v, want only v1", got)
	}
}

func TestContinueWatchingBounds(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = true
	svc := newTestService(repo)
	ctx := context.Background()

	// percent -> expected presence in the continue-watching view
	cases := map[string]float64{
		"v0": 0,    // untouched, excluded
		"v1": 0.5,  // in progress
		"v2": 50,   // in progress
		"v3": 94.9, // in progress, just under the bound
		"v4": 95,   // complete for this view, excluded
		"v5": 100,  // excluded
	}
	for id, p := range cases {
		repo.addVideo(id, id)
		if _, err := svc.SetProgress(ctx, "u1", id, p); err != nil {
			t.Fatalf("SetProgress(%s) error = %v", id, err)
		}
	}

	got, err := svc.ContinueWatching(ctx, "u1")
	if err != nil {
		t.Fatalf("ContinueWatching() error = %v", err)
	}
	want := map[string]bool{"v1": true, "v2": true, "v3": true}
	if len(got) != len(want) {
		t.Fatalf("ContinueWatching() len = %d, want %d (%+v)", len(got), len(want), got)
	}
	for _, vp := range got {
		if !want[vp.VideoID] {
			t.Errorf("unexpected video %s in continue-watching view", vp.VideoID)
		}
	}
}

func TestResumeBounds(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = true
	svc := newTestService(repo)
	ctx := context.Background()

	cases := map[string]float64{
		"v0": 0,    // included: resume has no lower bound
		"v1": 89.9, // included
		"v2": 90,   // excluded
		"v3": 92,   // excluded even though continue-watching would keep it
	}
	for id, p := range cases {
		repo.addVideo(id, id)
		if _, err := svc.SetProgress(ctx, "u1", id, p); err != nil {
			t.Fatalf("SetProgress(%s) error = %v", id, err)
		}
	}

	got, err := svc.Resume(ctx, "u1")
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	want := map[string]bool{"v0": true, "v1": true}
	if len(got) != len(want) {
		t.Fatalf("Resume() len = %d, want %d (%+v)", len(got), len(want), got)
	}
	for _, vp := range got {
		if !want[vp.VideoID] {
			t.Errorf("unexpected video %s in resume view", vp.VideoID)
		}
	}
}

func TestViewsAreEmptyNotNil(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = true
	svc := newTestService(repo)
	ctx := context.Background()

	got, err := svc.GetProgress(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProgress() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("GetProgress() = %v, want empty non-nil slice", got)
	}

	history, err := svc.WatchHistory(ctx, "u1")
	if err != nil {
		t.Fatalf("WatchHistory() error = %v", err)
	}
	if history == nil || len(history) != 0 {
		t.Errorf("WatchHistory() = %v, want empty non-nil slice", history)
	}
}
