// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package store

import "sync"

// MemoryKV implements KV with an in-memory map. It backs tests and can serve
// as an ephemeral cache when persistence is disabled.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Get returns the value for key, or ErrKeyNotFound.
func (s *MemoryKV) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Set stores a value.
func (s *MemoryKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// SetBatch stores several values atomically.
func (s *MemoryKV) SetBatch(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range values {
		s.data[key] = value
	}
	return nil
}

// DeleteBatch removes keys and writes replacements atomically.
func (s *MemoryKV) DeleteBatch(del []string, set map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range del {
		delete(s.data, key)
	}
	for key, value := range set {
		s.data[key] = value
	}
	return nil
}

// Close is a no-op for the in-memory KV.
func (s *MemoryKV) Close() error {
	return nil
}
