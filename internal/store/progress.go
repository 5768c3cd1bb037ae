// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/coursecast/coursecast/internal/models"
)

// HistoryRecord marks a video as permanently watched by a user.
// Records are append-only; nothing in the store removes them.
type HistoryRecord struct {
	VideoID    string    `json:"videoId"`
	PromotedAt time.Time `json:"promotedAt"`
}

// BookmarkRecord marks a video bookmarked by a user.
type BookmarkRecord struct {
	VideoID   string    `json:"videoId"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserProgressRecord is a progress entry joined with its owning user,
// produced by cross-user scans for the watch-time aggregator.
type UserProgressRecord struct {
	UserID  string
	VideoID string
	Percent float64
}

// UpsertProgress writes the (user, video) progress record as a single keyed
// upsert. An existing record keeps its insertion seq; a new record is
// assigned the next per-user seq. When promote is true and the video is not
// yet in the user's watch history, a history record is appended in the same
// transaction — percentage update and promotion commit together or not at
// all.
//
// Two concurrent upserts for different videos of the same user touch
// disjoint keys and both survive; this replaces the original
// load-whole-user / mutate-list / save-whole-user pattern, which lost
// updates under that interleaving.
func (s *Store) UpsertProgress(ctx context.Context, userID, videoID string, percent float64, promote bool) (*models.ProgressEntry, error) {
	key := progressKeyPrefix + userID + ":" + videoID
	entry := &models.ProgressEntry{
		VideoID:   videoID,
		Percent:   percent,
		UpdatedAt: time.Now().UTC(),
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		var existing models.ProgressEntry
		switch err := getJSON(txn, key, &existing); {
		case err == nil:
			entry.Seq = existing.Seq
		case errors.Is(err, ErrNotFound):
			seq, err := nextSeq(txn, progressSeqKeyPrefix+userID)
			if err != nil {
				return err
			}
			entry.Seq = seq
		default:
			return err
		}

		if err := setJSON(txn, key, entry); err != nil {
			return err
		}

		if promote {
			historyKey := historyKeyPrefix + userID + ":" + videoID
			present, err := exists(txn, historyKey)
			if err != nil {
				return err
			}
			if !present {
				record := HistoryRecord{VideoID: videoID, PromotedAt: entry.UpdatedAt}
				if err := setJSON(txn, historyKey, &record); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListProgress returns a user's progress entries in insertion order.
func (s *Store) ListProgress(ctx context.Context, userID string) ([]models.ProgressEntry, error) {
	var entries []models.ProgressEntry
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, progressKeyPrefix+userID+":", func(_ string, val []byte) error {
			var entry models.ProgressEntry
			if err := json.Unmarshal(val, &entry); err != nil {
				return err
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	return entries, nil
}

// ListProgressForVideos scans all users' progress entries and returns those
// referencing one of the given videos. Used by the watch-time aggregator.
func (s *Store) ListProgressForVideos(ctx context.Context, videoIDs map[string]bool) ([]UserProgressRecord, error) {
	var records []UserProgressRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, progressKeyPrefix, func(key string, val []byte) error {
			// key = progress:{userID}:{videoID}
			rest := key[len(progressKeyPrefix):]
			sep := strings.IndexByte(rest, ':')
			if sep < 0 {
				return nil
			}
			userID, videoID := rest[:sep], rest[sep+1:]
			if !videoIDs[videoID] {
				return nil
			}

			var entry models.ProgressEntry
			if err := json.Unmarshal(val, &entry); err != nil {
				return err
			}
			records = append(records, UserProgressRecord{
				UserID:  userID,
				VideoID: videoID,
				Percent: entry.Percent,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListWatchHistory returns the user's watch history, oldest promotion first.
func (s *Store) ListWatchHistory(ctx context.Context, userID string) ([]HistoryRecord, error) {
	var records []HistoryRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, historyKeyPrefix+userID+":", func(_ string, val []byte) error {
			var record HistoryRecord
			if err := json.Unmarshal(val, &record); err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].PromotedAt.Equal(records[j].PromotedAt) {
			return records[i].VideoID < records[j].VideoID
		}
		return records[i].PromotedAt.Before(records[j].PromotedAt)
	})
	return records, nil
}

// InWatchHistory reports whether the video has been promoted for the user.
func (s *Store) InWatchHistory(ctx context.Context, userID, videoID string) (bool, error) {
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = exists(txn, historyKeyPrefix+userID+":"+videoID)
		return err
	})
	return found, err
}

// AddBookmark records a bookmark. Bookmarking twice returns ErrConflict.
func (s *Store) AddBookmark(ctx context.Context, userID, videoID string) error {
	key := bookmarkKeyPrefix + userID + ":" + videoID
	return s.db.Update(func(txn *badger.Txn) error {
		present, err := exists(txn, key)
		if err != nil {
			return err
		}
		if present {
			return ErrConflict
		}
		record := BookmarkRecord{VideoID: videoID, CreatedAt: time.Now().UTC()}
		return setJSON(txn, key, &record)
	})
}

// RemoveBookmark deletes a bookmark. Missing bookmarks return ErrNotFound.
func (s *Store) RemoveBookmark(ctx context.Context, userID, videoID string) error {
	key := bookmarkKeyPrefix + userID + ":" + videoID
	return s.db.Update(func(txn *badger.Txn) error {
		present, err := exists(txn, key)
		if err != nil {
			return err
		}
		if !present {
			return ErrNotFound
		}
		return txn.Delete([]byte(key))
	})
}

// ListBookmarks returns the user's bookmarked video ids, oldest first.
func (s *Store) ListBookmarks(ctx context.Context, userID string) ([]BookmarkRecord, error) {
	var records []BookmarkRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, bookmarkKeyPrefix+userID+":", func(_ string, val []byte) error {
			var record BookmarkRecord
			if err := json.Unmarshal(val, &record); err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].VideoID < records[j].VideoID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}
