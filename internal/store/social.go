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

	"github.com/coursecast/coursecast/internal/models"
)

// Subscribe records a subscription. Subscribing twice returns ErrConflict.
func (s *Store) Subscribe(ctx context.Context, subscriberID, channelID string) error {
	key := subscriptionKeyPrefix + channelID + ":" + subscriberID
	return s.db.Update(func(txn *badger.Txn) error {
		present, err := exists(txn, key)
		if err != nil {
			return err
		}
		if present {
			return ErrConflict
		}
		sub := models.Subscription{
			SubscriberID: subscriberID,
			ChannelID:    channelID,
			CreatedAt:    time.Now().UTC(),
		}
		return setJSON(txn, key, &sub)
	})
}

// Unsubscribe removes a subscription. Missing subscriptions return ErrNotFound.
func (s *Store) Unsubscribe(ctx context.Context, subscriberID, channelID string) error {
	key := subscriptionKeyPrefix + channelID + ":" + subscriberID
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

// CountSubscribers counts subscriptions where the channel is the given user.
func (s *Store) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	var n int64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		n, err = countPrefix(txn, subscriptionKeyPrefix+channelID+":")
		return err
	})
	return n, err
}

// CreatePost persists a post and its owner index.
func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	return s.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, postKeyPrefix+post.ID, post); err != nil {
			return err
		}
		return txn.Set([]byte(postOwnerKeyPrefix+post.OwnerID+":"+post.ID), []byte(post.ID))
	})
}

// GetPost fetches a post by id.
func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, postKeyPrefix+id, &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost overwrites an existing post.
func (s *Store) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC()
	return s.db.Update(func(txn *badger.Txn) error {
		ok, err := exists(txn, postKeyPrefix+post.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return setJSON(txn, postKeyPrefix+post.ID, post)
	})
}

// DeletePost removes a post and its owner index entry.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var post models.Post
		if err := getJSON(txn, postKeyPrefix+id, &post); err != nil {
			return err
		}
		if err := txn.Delete([]byte(postKeyPrefix + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(postOwnerKeyPrefix + post.OwnerID + ":" + id))
	})
}

// ListPostsByOwner returns one owner's posts, newest first.
func (s *Store) ListPostsByOwner(ctx context.Context, ownerID string) ([]models.Post, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, postOwnerKeyPrefix+ownerID+":", func(_ string, val []byte) error {
			ids = append(ids, string(val))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(ids))
	err = s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			var post models.Post
			if err := getJSON(txn, postKeyPrefix+id, &post); err != nil {
				if err == ErrNotFound {
					continue
				}
				return err
			}
			posts = append(posts, post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

// CountPostsByOwner counts the owner index entries without loading posts.
func (s *Store) CountPostsByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		n, err = countPrefix(txn, postOwnerKeyPrefix+ownerID+":")
		return err
	})
	return n, err
}

// CreateComment persists a comment and its video index.
func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	return s.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, commentKeyPrefix+comment.ID, comment); err != nil {
			return err
		}
		return txn.Set([]byte(videoCommentKeyPrefix+comment.VideoID+":"+comment.ID), []byte(comment.ID))
	})
}

// GetComment fetches a comment by id.
func (s *Store) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, commentKeyPrefix+id, &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment and its video index entry.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var comment models.Comment
		if err := getJSON(txn, commentKeyPrefix+id, &comment); err != nil {
			return err
		}
		if err := txn.Delete([]byte(commentKeyPrefix + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(videoCommentKeyPrefix + comment.VideoID + ":" + id))
	})
}

// ListCommentsByVideo returns a video's comments, oldest first.
func (s *Store) ListCommentsByVideo(ctx context.Context, videoID string) ([]models.Comment, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, videoCommentKeyPrefix+videoID+":", func(_ string, val []byte) error {
			ids = append(ids, string(val))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	comments := make([]models.Comment, 0, len(ids))
	err = s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			var comment models.Comment
			if err := getJSON(txn, commentKeyPrefix+id, &comment); err != nil {
				if err == ErrNotFound {
					continue
				}
				return err
			}
			comments = append(comments, comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}
