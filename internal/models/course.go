// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

// Package models defines the shared domain types for Coursegraph: the course
// catalog records consumed by the recommendation engine and the user profile
// data reconciled by the profile sync coordinator.
package models

// Course type values.
const (
	CourseTypeFree = "free"
	CourseTypePaid = "paid"
)

// Course difficulty values. A course may also carry no difficulty at all.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Course is a catalog record. The catalog collaborator owns these; Coursegraph
// only ever reads a snapshot list per recommendation request.
type Course struct {
	// ID is the catalog identifier, canonicalized to a string.
	ID string `json:"id"`

	// Type is "free" or "paid".
	Type string `json:"type"`

	Title    string `json:"title"`
	Provider string `json:"provider,omitempty"`
	Platform string `json:"platform,omitempty"`

	// Topic is one of a small fixed vocabulary:
	// programming, design, business, marketing, data-mining.
	Topic string `json:"topic"`

	// Difficulty is beginner/intermediate/advanced, or empty when the
	// catalog has none recorded.
	Difficulty string `json:"difficulty,omitempty"`

	// Price is in catalog currency units. 0 = free.
	Price float64 `json:"price"`

	// Rating is the average user rating, higher is better.
	Rating float64 `json:"rating"`

	// Students is the enrollment count, used as a popularity signal.
	Students int `json:"students"`

	Duration    string `json:"duration,omitempty"`
	URL         string `json:"url,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Description string `json:"description,omitempty"`
}

// IsFree reports whether the course is free of charge.
func (c *Course) IsFree() bool {
	return c.Type == CourseTypeFree
}
