// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

// Package events provides the in-process event bus that decouples the profile
// sync coordinator from its observers (the websocket hub, logging, tests).
//
// The bus is a Watermill gochannel pub/sub: events never leave the process,
// but consumers get the same subscribe semantics they would against a broker.
package events

import (
	"time"
)

// Topics published on the bus.
const (
	// TopicProfileSynced fires after a successful full profile sync.
	TopicProfileSynced = "profile.synced"

	// TopicBookmarkToggled fires after a bookmark toggle settles (remote
	// confirmation or local-only fallback).
	TopicBookmarkToggled = "bookmark.toggled"

	// TopicQuizSaved fires after quiz results are persisted.
	TopicQuizSaved = "quiz.saved"

	// TopicSessionEnded fires on logout or terminal auth failure.
	TopicSessionEnded = "session.ended"
)

// ProfileSynced is the payload for TopicProfileSynced.
type ProfileSynced struct {
	UserID        string    `json:"userId,omitempty"`
	BookmarkCount int       `json:"bookmarkCount"`
	QuizCompleted bool      `json:"quizCompleted"`
	SyncedAt      time.Time `json:"syncedAt"`
}

// BookmarkToggled is the payload for TopicBookmarkToggled.
type BookmarkToggled struct {
	CourseID string `json:"courseId"`

	// Action is "add" or "remove".
	Action string `json:"action"`

	// RemoteConfirmed is false when the push failed and the optimistic
	// local set stands.
	RemoteConfirmed bool `json:"remoteConfirmed"`

	// Bookmarks is the resulting set.
	Bookmarks []string `json:"bookmarkedCourses"`
}

// QuizSaved is the payload for TopicQuizSaved.
type QuizSaved struct {
	// RemoteSaved is false when the record was only persisted locally.
	RemoteSaved bool      `json:"remoteSaved"`
	CompletedAt time.Time `json:"completedAt"`
}

// SessionEnded is the payload for TopicSessionEnded.
type SessionEnded struct {
	// Reason is "logout" or "auth_error".
	Reason string `json:"reason"`
}
