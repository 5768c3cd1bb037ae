// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package store

import (
	"context"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/coursecast/coursecast/internal/models"
)

// CreateVideo persists a new catalog entry and its owner index.
func (s *Store) CreateVideo(ctx context.Context, video *models.Video) error {
	now := time.Now().UTC()
	video.CreatedAt = now
	video.UpdatedAt = now

	return s.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, videoKeyPrefix+video.ID, video); err != nil {
			return err
		}
		return txn.Set([]byte(videoOwnerKeyPrefix+video.OwnerID+":"+video.ID), []byte(video.ID))
	})
}

// GetVideo fetches a video by id.
func (s *Store) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	var video models.Video
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, videoKeyPrefix+id, &video)
	})
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetVideos fetches several videos by id, skipping ids that do not resolve.
// The silent skip mirrors the selectors' behavior for dangling references.
func (s *Store) GetVideos(ctx context.Context, ids []string) (map[string]*models.Video, error) {
	out := make(map[string]*models.Video, len(ids))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			var video models.Video
			err := getJSON(txn, videoKeyPrefix+id, &video)
			if err == ErrNotFound {
				continue
			}
			if err != nil {
				return err
			}
			out[id] = &video
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateVideo overwrites an existing video document.
func (s *Store) UpdateVideo(ctx context.Context, video *models.Video) error {
	video.UpdatedAt = time.Now().UTC()
	return s.db.Update(func(txn *badger.Txn) error {
		ok, err := exists(txn, videoKeyPrefix+video.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return setJSON(txn, videoKeyPrefix+video.ID, video)
	})
}

// DeleteVideo removes a video and its owner index entry.
func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var video models.Video
		if err := getJSON(txn, videoKeyPrefix+id, &video); err != nil {
			return err
		}
		if err := txn.Delete([]byte(videoKeyPrefix + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(videoOwnerKeyPrefix + video.OwnerID + ":" + id))
	})
}

// IncrementViews bumps the view counter inside a single transaction, so
// concurrent views on the same video serialize at the storage layer.
func (s *Store) IncrementViews(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var video models.Video
		if err := getJSON(txn, videoKeyPrefix+id, &video); err != nil {
			return err
		}
		video.Views++
		video.UpdatedAt = time.Now().UTC()
		return setJSON(txn, videoKeyPrefix+id, &video)
	})
}

// ListVideosByOwner returns all videos uploaded by one owner, newest first.
func (s *Store) ListVideosByOwner(ctx context.Context, ownerID string) ([]models.Video, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, videoOwnerKeyPrefix+ownerID+":", func(_ string, val []byte) error {
			ids = append(ids, string(val))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	videos := make([]models.Video, 0, len(ids))
	err = s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			var video models.Video
			if err := getJSON(txn, videoKeyPrefix+id, &video); err != nil {
				if err == ErrNotFound {
					continue
				}
				return err
			}
			videos = append(videos, video)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortVideosNewestFirst(videos)
	return videos, nil
}

// ListPublishedVideos returns every published video in the catalog.
// The recommendation engine filters this set by signal overlap.
func (s *Store) ListPublishedVideos(ctx context.Context) ([]models.Video, error) {
	var videos []models.Video
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, videoKeyPrefix, func(_ string, val []byte) error {
			var video models.Video
			if err := json.Unmarshal(val, &video); err != nil {
				return err
			}
			if video.IsPublished {
				videos = append(videos, video)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return videos, nil
}

// CountVideosByOwner counts the owner index entries without loading videos.
func (s *Store) CountVideosByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		n, err = countPrefix(txn, videoOwnerKeyPrefix+ownerID+":")
		return err
	})
	return n, err
}

// SumViewsByOwner totals the view counters across one owner's videos.
func (s *Store) SumViewsByOwner(ctx context.Context, ownerID string) (int64, error) {
	videos, err := s.ListVideosByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	var total int64
	for i := range videos {
		total += videos[i].Views
	}
	return total, nil
}

func sortVideosNewestFirst(videos []models.Video) {
	sort.Slice(videos, func(i, j int) bool {
		return videos[i].CreatedAt.After(videos[j].CreatedAt)
	})
}
