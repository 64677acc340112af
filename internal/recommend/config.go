// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package recommend

import "errors"

// Weights holds the additive scoring constants. These are tuned values, not a
// calibrated model; scores have no fixed range.
type Weights struct {
	// TopicMatch is added when the course topic is in the user's mapped
	// interest-topic set.
	TopicMatch float64

	// DifficultyMatch is added when the course difficulty sits in the
	// acceptable band for the user's skill level.
	DifficultyMatch float64

	// FreeBudgetMatch is added when the user wants free-only and the
	// course is free.
	FreeBudgetMatch float64

	// AffordableMatch is added when the course costs at most
	// AffordablePrice and the user's budget is not free-only.
	AffordableMatch float64

	// GoalMatch is added when the learning goal agrees with the course
	// difficulty (career-change wants beginner, skill-upgrade wants
	// anything but beginner).
	GoalMatch float64

	// RatingFactor multiplies the course rating.
	RatingFactor float64

	// PopularityBonus is added when enrollment exceeds PopularityFloor.
	PopularityBonus float64

	// AffordablePrice is the price ceiling for AffordableMatch.
	AffordablePrice float64

	// PopularityFloor is the enrollment count above which PopularityBonus
	// applies.
	PopularityFloor int
}

// DefaultWeights returns the production scoring constants.
func DefaultWeights() Weights {
	return Weights{
		TopicMatch:      50,
		DifficultyMatch: 30,
		FreeBudgetMatch: 20,
		AffordableMatch: 10,
		GoalMatch:       15,
		RatingFactor:    5,
		PopularityBonus: 10,
		AffordablePrice: 2000,
		PopularityFloor: 100000,
	}
}

// Validate checks the weights for values that would invert the ranking.
func (w Weights) Validate() error {
	if w.TopicMatch < 0 || w.DifficultyMatch < 0 || w.FreeBudgetMatch < 0 ||
		w.AffordableMatch < 0 || w.GoalMatch < 0 || w.PopularityBonus < 0 {
		return errors.New("scoring weights must be non-negative")
	}
	if w.RatingFactor < 0 {
		return errors.New("rating factor must be non-negative")
	}
	if w.AffordablePrice < 0 {
		return errors.New("affordable price must be non-negative")
	}
	if w.PopularityFloor < 0 {
		return errors.New("popularity floor must be non-negative")
	}
	return nil
}
