// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/coursecast/coursecast/internal/models"
)

// userDocument is the stored form of a user. The wire model strips the
// password hash from JSON, so the persisted document carries it in its own
// field; it never crosses the HTTP boundary.
type userDocument struct {
	models.User
	PasswordHash string `json:"passwordHash,omitempty"`
}

func newUserDocument(user *models.User) *userDocument {
	return &userDocument{User: *user, PasswordHash: user.PasswordHash}
}

func (d *userDocument) user() *models.User {
	u := d.User
	u.PasswordHash = d.PasswordHash
	return &u
}

// CreateUser persists a new user. Username and email must be unique; a
// duplicate returns ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	return s.db.Update(func(txn *badger.Txn) error {
		for _, idx := range []string{
			usernameKeyPrefix + user.Username,
			emailKeyPrefix + user.Email,
		} {
			taken, err := exists(txn, idx)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: user %s", ErrConflict, user.Username)
			}
		}

		if err := setJSON(txn, userKeyPrefix+user.ID, newUserDocument(user)); err != nil {
			return err
		}
		if err := txn.Set([]byte(usernameKeyPrefix+user.Username), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(emailKeyPrefix+user.Email), []byte(user.ID))
	})
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var doc userDocument
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKeyPrefix+id, &doc)
	})
	if err != nil {
		return nil, err
	}
	return doc.user(), nil
}

// GetUserByUsername resolves the username index and fetches the user.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var doc userDocument
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(usernameKeyPrefix + username))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}
		return getJSON(txn, userKeyPrefix+id, &doc)
	})
	if err != nil {
		return nil, err
	}
	return doc.user(), nil
}

// UpdateUser overwrites an existing user document.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	return s.db.Update(func(txn *badger.Txn) error {
		ok, err := exists(txn, userKeyPrefix+user.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return setJSON(txn, userKeyPrefix+user.ID, newUserDocument(user))
	})
}

// UserExists reports whether a user document is present.
func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = exists(txn, userKeyPrefix+id)
		return err
	})
	return found, err
}
