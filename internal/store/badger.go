// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// profileKeyPrefix namespaces profile cache keys inside the shared BadgerDB.
const profileKeyPrefix = "profile:"

// BadgerKV implements KV on BadgerDB for durable storage across restarts.
type BadgerKV struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a BadgerDB at path and wraps it as a KV.
// Badger's own chatty logger is disabled; failures surface as errors.
func OpenBadger(path string) (*BadgerKV, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &BadgerKV{db: db}, nil
}

// NewBadgerKV wraps an already-open BadgerDB.
func NewBadgerKV(db *badger.DB) *BadgerKV {
	return &BadgerKV{db: db}
}

// Get returns the value for key, or ErrKeyNotFound.
func (s *BadgerKV) Get(key string) (string, error) {
	var value string

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(profileKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrKeyNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}

		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if err != nil {
		return "", err
	}

	return value, nil
}

// Set stores a value.
func (s *BadgerKV) Set(key, value string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profileKeyPrefix+key), []byte(value))
	})
}

// SetBatch stores several values in one transaction.
func (s *BadgerKV) SetBatch(values map[string]string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for key, value := range values {
			if err := txn.Set([]byte(profileKeyPrefix+key), []byte(value)); err != nil {
				return fmt.Errorf("set %s: %w", key, err)
			}
		}
		return nil
	})
}

// DeleteBatch removes keys and writes replacements in one transaction, so a
// logout teardown is all-or-nothing.
func (s *BadgerKV) DeleteBatch(del []string, set map[string]string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range del {
			if err := txn.Delete([]byte(profileKeyPrefix + key)); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}
		for key, value := range set {
			if err := txn.Set([]byte(profileKeyPrefix+key), []byte(value)); err != nil {
				return fmt.Errorf("set %s: %w", key, err)
			}
		}
		return nil
	})
}

// Close closes the underlying BadgerDB.
func (s *BadgerKV) Close() error {
	return s.db.Close()
}
