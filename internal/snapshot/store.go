// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

// Package snapshot persists the last known task collection in BadgerDB so a
// restarted client can show something before the first list arrives.
//
// The cache is advisory. The initial list from the server always replaces
// whatever was loaded from it.
package snapshot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tasksync/internal/logging"
	"github.com/tomtom215/tasksync/internal/metrics"
	"github.com/tomtom215/tasksync/internal/models"
)

// ErrNoSnapshot is returned by Load when nothing has been saved for the
// store's scope.
var ErrNoSnapshot = errors.New("no snapshot stored")

const keyPrefix = "snapshot:"

// Snapshot is one saved collection.
type Snapshot struct {
	Tasks   []models.Task `json:"tasks"`
	SavedAt time.Time     `json:"saved_at"`
}

// Options configures Open.
type Options struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in memory (tests).
	InMemory bool

	// Scope separates snapshots of different servers sharing one directory,
	// typically the API base URL.
	Scope string
}

// Store is a BadgerDB-backed snapshot cache.
type Store struct {
	db  *badger.DB
	key []byte
}

// Open opens or creates the store.
func Open(opts Options) (*Store, error) {
	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts = bopts.WithLogger(newBadgerLogger())

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for snapshots: %w", err)
	}

	return &Store{
		db:  db,
		key: []byte(keyPrefix + strings.TrimRight(opts.Scope, "/")),
	}, nil
}

// Save replaces the stored collection.
func (s *Store) Save(tasks []models.Task) (err error) {
	defer func() { metrics.RecordCacheOperation("save", err) }()

	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(Snapshot{Tasks: tasks, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(s.key, data); err != nil {
			return fmt.Errorf("set snapshot: %w", err)
		}
		return nil
	})
}

// Load returns the stored collection or ErrNoSnapshot.
func (s *Store) Load() (snap *Snapshot, err error) {
	defer func() {
		if !errors.Is(err, ErrNoSnapshot) {
			metrics.RecordCacheOperation("load", err)
		}
	}()

	var out Snapshot
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's own logging through zerolog. Info and debug
// chatter is demoted to debug.
type badgerLogger struct {
	log zerolog.Logger
}

func newBadgerLogger() *badgerLogger {
	return &badgerLogger{log: logging.WithComponent("snapshot")}
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Msgf(strings.TrimSpace(format), args...)
}
