// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

// Package store implements the local profile cache: the persistent string
// key-value mapping that survives process restarts and holds the auth token,
// safe user object, quiz results, and bookmark set.
//
// The remote profile store is authoritative for everything in here; the cache
// exists so the UI has a best-known-local-state to render while syncs are in
// flight or failing.
package store

import (
	"errors"

	"github.com/goccy/go-json"

	"github.com/skilluphq/coursegraph/internal/models"
)

// ErrKeyNotFound is returned when a cache key has no value.
var ErrKeyNotFound = errors.New("store: key not found")

// Cache keys for the profile data the coordinator persists.
const (
	keyToken       = "token"
	keyUser        = "user"
	keyQuizResults = "quizResults"
	keyBookmarks   = "bookmarkedCourses"
	keyLoggedIn    = "isLoggedIn"
)

// profileKeys lists every key Clear removes. Kept in one place so logout
// teardown can never miss a key.
var profileKeys = []string{keyToken, keyUser, keyQuizResults, keyBookmarks}

// KV is the minimal persistent string mapping the profile cache is built on.
// BadgerKV is the production implementation; MemoryKV backs tests.
type KV interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(key string) (string, error)

	// Set stores a value.
	Set(key, value string) error

	// SetBatch stores several values in one atomic write.
	SetBatch(values map[string]string) error

	// DeleteBatch removes keys and optionally writes replacements, all in
	// one atomic operation.
	DeleteBatch(del []string, set map[string]string) error

	// Close releases the underlying storage.
	Close() error
}

// ProfileCache is the typed view over the KV the rest of the service uses.
type ProfileCache struct {
	kv KV
}

// NewProfileCache wraps a KV in the typed profile view.
func NewProfileCache(kv KV) *ProfileCache {
	return &ProfileCache{kv: kv}
}

// Token returns the cached auth token, if any.
func (c *ProfileCache) Token() (string, bool) {
	token, err := c.kv.Get(keyToken)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// SetToken stores the auth token.
func (c *ProfileCache) SetToken(token string) error {
	return c.kv.Set(keyToken, token)
}

// User returns the cached safe user object, or nil when none is cached.
func (c *ProfileCache) User() (*models.User, error) {
	raw, err := c.kv.Get(keyUser)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetUser stores the safe user object.
func (c *ProfileCache) SetUser(user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.kv.Set(keyUser, string(data))
}

// QuizResults returns the cached quiz record, or nil when none is cached or
// the cached value fails to parse. A corrupt record is treated as absent so
// recommendation code degrades to the rating fallback instead of erroring.
func (c *ProfileCache) QuizResults() *models.QuizResults {
	raw, err := c.kv.Get(keyQuizResults)
	if err != nil {
		return nil
	}

	var quiz models.QuizResults
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
		return nil
	}
	return &quiz
}

// SetQuizResults stores a quiz record.
func (c *ProfileCache) SetQuizResults(quiz *models.QuizResults) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return err
	}
	return c.kv.Set(keyQuizResults, string(data))
}

// Bookmarks returns the cached bookmark set, always normalized. A missing or
// corrupt value is an empty set, never an error.
func (c *ProfileCache) Bookmarks() []string {
	raw, err := c.kv.Get(keyBookmarks)
	if err != nil {
		return []string{}
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return []string{}
	}
	return models.CleanBookmarks(ids)
}

// SetBookmarks stores the bookmark set, normalizing and dropping junk ids
// before the write so the cache never holds "undefined"/"null" tokens.
func (c *ProfileCache) SetBookmarks(ids []string) error {
	data, err := json.Marshal(models.CleanBookmarks(ids))
	if err != nil {
		return err
	}
	return c.kv.Set(keyBookmarks, string(data))
}

// IsBookmarked reports whether the given id (any form) is in the cached set.
func (c *ProfileCache) IsBookmarked(id any) bool {
	normalized := models.NormalizeID(id)
	for _, b := range c.Bookmarks() {
		if b == normalized {
			return true
		}
	}
	return false
}

// LoggedIn reports whether the cache believes a session is active.
func (c *ProfileCache) LoggedIn() bool {
	v, err := c.kv.Get(keyLoggedIn)
	return err == nil && v == "true"
}

// SetSession stores the token and user in one atomic write and marks the
// session active.
func (c *ProfileCache) SetSession(token string, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.kv.SetBatch(map[string]string{
		keyToken:    token,
		keyUser:     string(data),
		keyLoggedIn: "true",
	})
}

// Clear removes every cached profile key and marks the session inactive, as
// a single logical operation. This is the logout / auth-error teardown path.
func (c *ProfileCache) Clear() error {
	return c.kv.DeleteBatch(profileKeys, map[string]string{keyLoggedIn: "false"})
}
