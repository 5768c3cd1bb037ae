// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package store

import (
	"context"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/coursecast/coursecast/internal/models"
)

func likeKey(like *models.Like) string {
	return likeKeyPrefix + string(like.TargetType) + ":" + like.TargetID + ":" + like.LikedBy
}

func likeOwnerKey(like *models.Like) string {
	return likeOwnerKeyPrefix + like.OwnerID + ":" + string(like.TargetType) + ":" + like.TargetID + ":" + like.LikedBy
}

// CreateLike records a like for exactly one target. A second like from the
// same user on the same target returns ErrConflict.
func (s *Store) CreateLike(ctx context.Context, like *models.Like) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := likeKey(like)
		present, err := exists(txn, key)
		if err != nil {
			return err
		}
		if present {
			return ErrConflict
		}
		if err := setJSON(txn, key, like); err != nil {
			return err
		}
		return txn.Set([]byte(likeOwnerKey(like)), nil)
	})
}

// DeleteLike removes a like and its owner index entry.
func (s *Store) DeleteLike(ctx context.Context, likedBy string, targetType models.LikeTargetType, targetID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := likeKeyPrefix + string(targetType) + ":" + targetID + ":" + likedBy
		var like models.Like
		if err := getJSON(txn, key, &like); err != nil {
			return err
		}
		if err := txn.Delete([]byte(key)); err != nil {
			return err
		}
		return txn.Delete([]byte(likeOwnerKey(&like)))
	})
}

// CountLikesByTarget counts likes on a single target.
func (s *Store) CountLikesByTarget(ctx context.Context, targetType models.LikeTargetType, targetID string) (int64, error) {
	var n int64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		n, err = countPrefix(txn, likeKeyPrefix+string(targetType)+":"+targetID+":")
		return err
	})
	return n, err
}

// CountLikesByVideos counts likes per video for the given id list.
func (s *Store) CountLikesByVideos(ctx context.Context, videoIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(videoIDs))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range videoIDs {
			n, err := countPrefix(txn, likeKeyPrefix+string(models.LikeTargetVideo)+":"+id+":")
			if err != nil {
				return err
			}
			counts[id] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// CountLikesByOwner counts likes received by one content owner across
// video and post targets. Comment likes carry no owner linkage and are
// excluded from channel rollups.
func (s *Store) CountLikesByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, likeOwnerKeyPrefix+ownerID+":", func(key string, _ []byte) error {
			rest := key[len(likeOwnerKeyPrefix)+len(ownerID)+1:]
			targetType, _, ok := strings.Cut(rest, ":")
			if !ok {
				return nil
			}
			switch models.LikeTargetType(targetType) {
			case models.LikeTargetVideo, models.LikeTargetPost:
				n++
			}
			return nil
		})
	})
	return n, err
}
