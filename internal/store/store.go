// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

// Package store implements the document store on BadgerDB.
//
// Every entity is a JSON document under a typed key prefix. Entities that
// the original data model embedded in the user document (progress entries,
// bookmarks, watch history) are stored as individually keyed records instead,
// so concurrent updates for different videos touch different keys and never
// race on a shared parent document. Badger transactions give the required
// atomicity for multi-key writes (progress upsert + watch-history promotion).
//
// Key layout:
//
//	user:{id}                                  User document
//	username:{username}                        -> user id (unique index)
//	email:{email}                              -> user id (unique index)
//	video:{id}                                 Video document
//	videoowner:{ownerID}:{videoID}             owner index
//	progress:{userID}:{videoID}                ProgressEntry document
//	progressseq:{userID}                       per-user insertion counter
//	history:{userID}:{videoID}                 watch-history record
//	bookmark:{userID}:{videoID}                bookmark record
//	quiz:{videoID}                             Quiz document
//	attempt:{userID}:{attemptID}               QuizAttempt document
//	like:{targetType}:{targetID}:{userID}      Like document
//	likeowner:{ownerID}:{targetType}:{targetID}:{userID}  owner index
//	sub:{channelID}:{subscriberID}             Subscription document
//	post:{id}                                  Post document
//	postowner:{ownerID}:{postID}               owner index
//	comment:{id}                               Comment document
//	videocomment:{videoID}:{commentID}         video index
package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/coursecast/coursecast/internal/logging"
)

// Sentinel errors returned by store operations. Handlers map these onto the
// HTTP error taxonomy (NOT_FOUND, CONFLICT, INTERNAL_ERROR).
var (
	// ErrNotFound indicates the referenced document does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrConflict indicates a unique-key violation (duplicate like,
	// duplicate subscription, username already taken).
	ErrConflict = errors.New("store: conflict")
)

// Key prefixes for BadgerDB storage.
const (
	userKeyPrefix         = "user:"
	usernameKeyPrefix     = "username:"
	emailKeyPrefix        = "email:"
	videoKeyPrefix        = "video:"
	videoOwnerKeyPrefix   = "videoowner:"
	progressKeyPrefix     = "progress:"
	progressSeqKeyPrefix  = "progressseq:"
	historyKeyPrefix      = "history:"
	bookmarkKeyPrefix     = "bookmark:"
	quizKeyPrefix         = "quiz:"
	attemptKeyPrefix      = "attempt:"
	likeKeyPrefix         = "like:"
	likeOwnerKeyPrefix    = "likeowner:"
	subscriptionKeyPrefix = "sub:"
	postKeyPrefix         = "post:"
	postOwnerKeyPrefix    = "postowner:"
	commentKeyPrefix      = "comment:"
	videoCommentKeyPrefix = "videocomment:"
)

// Store is the BadgerDB-backed document store shared by all repositories.
type Store struct {
	db *badger.DB
}

// Options configures how the store is opened.
type Options struct {
	// Path is the on-disk directory for Badger data. Ignored when InMemory.
	Path string

	// InMemory opens an ephemeral store. Used by tests and development mode.
	InMemory bool
}

// Open opens (or creates) the document store.
func Open(opts Options) (*Store, error) {
	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badger.DefaultOptions(opts.Path)
	}
	// Badger logs through its own interface; route it to zerolog.
	badgerOpts = badgerOpts.WithLogger(badgerLogger{})

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens an ephemeral store for tests.
func OpenInMemory() (*Store, error) {
	return Open(Options{InMemory: true})
}

// Close releases the underlying Badger database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunValueLogGC triggers one round of Badger value-log garbage collection.
// Badger returns ErrNoRewrite when there is nothing to reclaim; callers treat
// that as a clean no-op.
func (s *Store) RunValueLogGC(discardRatio float64) error {
	err := s.db.RunValueLogGC(discardRatio)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// Ping verifies the database can serve a read transaction. Used by the
// readiness probe.
func (s *Store) Ping() error {
	if s.db.IsClosed() {
		return errors.New("store: database closed")
	}
	return s.db.View(func(txn *badger.Txn) error { return nil })
}

// badgerLogger adapts Badger's logger interface to zerolog.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logging.Error().Msgf("badger: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logging.Warn().Msgf("badger: "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}

// getJSON reads the document at key into out. Returns ErrNotFound when the
// key is absent.
func getJSON(txn *badger.Txn, key string, out interface{}) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

// setJSON marshals doc and writes it at key.
func setJSON(txn *badger.Txn, key string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := txn.Set([]byte(key), data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// exists reports whether key is present.
func exists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	return true, nil
}

// scanPrefix iterates all documents under prefix, calling fn with each raw
// value. Iteration stops on the first error.
func scanPrefix(txn *badger.Txn, prefix string, fn func(key string, val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		key := string(item.Key())
		if err := item.Value(func(val []byte) error {
			return fn(key, val)
		}); err != nil {
			return err
		}
	}
	return nil
}

// countPrefix counts keys under prefix without loading values.
func countPrefix(txn *badger.Txn, prefix string) (int64, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var n int64
	for it.Rewind(); it.Valid(); it.Next() {
		n++
	}
	return n, nil
}

// nextSeq increments and returns the uint64 counter stored at key.
// The first call returns 1. Must run inside an update transaction.
func nextSeq(txn *badger.Txn, key string) (uint64, error) {
	var seq uint64
	item, err := txn.Get([]byte(key))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		seq = 0
	case err != nil:
		return 0, fmt.Errorf("get %s: %w", key, err)
	default:
		if err := item.Value(func(val []byte) error {
			if len(val) == 8 {
				seq = binary.BigEndian.Uint64(val)
			}
			return nil
		}); err != nil {
			return 0, err
		}
	}

	seq++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	if err := txn.Set([]byte(key), buf); err != nil {
		return 0, fmt.Errorf("set %s: %w", key, err)
	}
	return seq, nil
}
