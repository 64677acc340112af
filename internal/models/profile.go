// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// User is the safe (password-free) user object held in the local profile
// cache. The remote profile store is authoritative for every field.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`

	// Learning progress counters, maintained server-side.
	CoursesExplored int     `json:"coursesExplored,omitempty"`
	QuizzesDone     int     `json:"quizzesCompleted,omitempty"`
	LearningHours   float64 `json:"learningHours,omitempty"`
}

// Answer is a single quiz answer: either one category token or a set of
// category tokens, depending on the question.
type Answer struct {
	// Value holds a single-choice answer. Empty when Values is set.
	Value string

	// Values holds a multi-choice answer.
	Values []string
}

// UnmarshalJSON accepts both a JSON string and a JSON array of strings,
// matching the two answer shapes the quiz UI produces.
func (a *Answer) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &a.Values)
	}
	return json.Unmarshal(data, &a.Value)
}

// MarshalJSON writes the answer back in the shape it arrived in.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Values != nil {
		return json.Marshal(a.Values)
	}
	return json.Marshal(a.Value)
}

// QuizResults is the immutable record produced by the quiz UI. A record
// without CompletedAt is in-progress and must not drive recommendations.
type QuizResults struct {
	// Answers maps question index (1-based) to the answer given.
	Answers map[int]Answer `json:"answers"`

	// CompletedAt marks the record as valid. Zero means incomplete.
	CompletedAt time.Time `json:"completedAt"`

	// Duration is how long the quiz took, in seconds.
	Duration int `json:"duration,omitempty"`
}

// Completed reports whether the quiz was finished.
func (q *QuizResults) Completed() bool {
	return q != nil && !q.CompletedAt.IsZero()
}

// UserStats carries the best-effort progress counters pushed to the remote
// store. Nil fields are left unchanged server-side.
type UserStats struct {
	CoursesExplored *int     `json:"coursesExplored,omitempty"`
	LearningHours   *float64 `json:"learningHours,omitempty"`
	StreakDays      *int     `json:"streakDays,omitempty"`
}

// NormalizeID canonicalizes a course identifier to its string form. Catalog
// ids arrive as numbers from some sources and strings from others; comparing
// them without canonicalization produces phantom bookmark mismatches.
func NormalizeID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		// JSON numbers decode as float64; catalog ids are integral.
		return strconv.FormatInt(int64(v), 10)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// CleanBookmarks normalizes every id to string form and drops entries that
// are blank or the literal tokens "undefined" and "null", which leak out of
// untyped upstream clients.
func CleanBookmarks(ids []string) []string {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == "undefined" || id == "null" {
			continue
		}
		clean = append(clean, id)
	}
	return clean
}
