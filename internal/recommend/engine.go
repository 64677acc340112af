// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package recommend

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/skilluphq/coursegraph/internal/models"
)

// Note: this package depends only on internal/models to stay pure. Catalog
// access, profile caching, and metrics all live with the callers.

// Branch identifies which path produced a ranking. Fallback branches exist
// because an empty recommendation screen is a worse outcome than an imperfect
// match; the branch is surfaced so callers can tell the cases apart.
type Branch int

const (
	// BranchPreferences is the earned ranking: filter, score, sort.
	BranchPreferences Branch = iota
	// BranchNoQuiz means no completed quiz record was available.
	BranchNoQuiz
	// BranchOverconstrained means the filter rejected every course.
	BranchOverconstrained
	// BranchEmpty means there were no courses to rank.
	BranchEmpty
)

// String returns a metrics-friendly branch name.
func (b Branch) String() string {
	switch b {
	case BranchPreferences:
		return "preferences"
	case BranchNoQuiz:
		return "fallback_no_quiz"
	case BranchOverconstrained:
		return "fallback_overconstrained"
	case BranchEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// ScoredCourse is a catalog course plus its additive relevance score.
// Ephemeral: produced fresh per request, never persisted.
type ScoredCourse struct {
	models.Course

	// RelevanceScore is a relative ranking signal with no fixed range.
	// Zero on fallback branches.
	RelevanceScore float64 `json:"relevanceScore"`
}

// Ranking is an ordered course list, best first, plus the branch that
// produced it.
type Ranking struct {
	Courses []ScoredCourse `json:"courses"`
	Branch  Branch         `json:"-"`

	// Filtered is how many courses survived the preference filter. Equals
	// len(Courses) on the preferences branch; zero on fallbacks.
	Filtered int `json:"-"`
}

// Matcher ranks courses against quiz-derived preferences. It is stateless
// apart from its scoring weights and safe for concurrent use.
type Matcher struct {
	weights Weights
	logger  zerolog.Logger
}

// NewMatcher creates a matcher with the given scoring weights.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMatcher(weights Weights, logger zerolog.Logger) (*Matcher, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights: %w", err)
	}

	return &Matcher{
		weights: weights,
		logger:  logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// FilterCourses returns the subset of courses compatible with the
// preferences. A nil preferences value is the identity filter.
func (m *Matcher) FilterCourses(courses []models.Course, prefs *Preferences) []models.Course {
	if prefs == nil {
		return courses
	}

	topics := MapInterestToTopics(prefs.Interests)
	difficulties := MapSkillToDifficulty(prefs.SkillLevel)

	filtered := make([]models.Course, 0, len(courses))
	for i := range courses {
		if m.courseMatches(&courses[i], prefs, topics, difficulties) {
			filtered = append(filtered, courses[i])
		}
	}
	return filtered
}

// courseMatches applies the budget, topic, and difficulty constraints.
func (m *Matcher) courseMatches(course *models.Course, prefs *Preferences, topics map[string]struct{}, difficulties []string) bool {
	switch prefs.Budget {
	case BudgetFreeOnly:
		if !course.IsFree() {
			return false
		}
	case BudgetUnder500:
		// Boundary is inclusive: exactly 500 is kept.
		if course.Price > 500 {
			return false
		}
	case Budget500To2K:
		if course.Price < 500 || course.Price > 2000 {
			return false
		}
	}

	// An empty interest set imposes no topic constraint.
	if len(topics) > 0 {
		if _, ok := topics[course.Topic]; !ok {
			return false
		}
	}

	// Courses with no recorded difficulty always pass.
	if course.Difficulty != "" && !contains(difficulties, course.Difficulty) {
		return false
	}

	return true
}

// ScoreCourses computes the additive relevance score for each course. The
// score always starts at zero and is order-independent.
func (m *Matcher) ScoreCourses(courses []models.Course, prefs *Preferences) []ScoredCourse {
	topics := MapInterestToTopics(prefs.Interests)
	difficulties := MapSkillToDifficulty(prefs.SkillLevel)

	scored := make([]ScoredCourse, 0, len(courses))
	for i := range courses {
		scored = append(scored, ScoredCourse{
			Course:         courses[i],
			RelevanceScore: m.scoreCourse(&courses[i], prefs, topics, difficulties),
		})
	}
	return scored
}

// scoreCourse computes a single course's relevance score.
func (m *Matcher) scoreCourse(course *models.Course, prefs *Preferences, topics map[string]struct{}, difficulties []string) float64 {
	var score float64

	if _, ok := topics[course.Topic]; ok {
		score += m.weights.TopicMatch
	}

	if contains(difficulties, course.Difficulty) {
		score += m.weights.DifficultyMatch
	}

	if prefs.Budget == BudgetFreeOnly && course.IsFree() {
		score += m.weights.FreeBudgetMatch
	} else if course.Price <= m.weights.AffordablePrice && prefs.Budget != BudgetFreeOnly {
		score += m.weights.AffordableMatch
	}

	if prefs.LearningGoal == GoalCareerChange && course.Difficulty == models.DifficultyBeginner {
		score += m.weights.GoalMatch
	}
	if prefs.LearningGoal == GoalSkillUpgrade && course.Difficulty != models.DifficultyBeginner {
		score += m.weights.GoalMatch
	}

	score += course.Rating * m.weights.RatingFactor

	if course.Students > m.weights.PopularityFloor {
		score += m.weights.PopularityBonus
	}

	return score
}

// Recommendations produces a total ordering of the courses, best first.
//
// Degradation is deliberate and never an error: an empty input yields an
// empty ranking, a missing or unparseable quiz record yields the full input
// by rating, and an over-constrained filter also yields the full input by
// rating rather than an empty screen.
func (m *Matcher) Recommendations(courses []models.Course, quiz *models.QuizResults) Ranking {
	if len(courses) == 0 {
		m.logger.Debug().Msg("no courses to rank")
		return Ranking{Courses: []ScoredCourse{}, Branch: BranchEmpty}
	}

	if !quiz.Completed() {
		m.logger.Debug().Msg("no completed quiz record, ranking by rating")
		return Ranking{Courses: sortByRating(courses), Branch: BranchNoQuiz}
	}

	prefs, ok := ExtractPreferences(quiz)
	if !ok {
		m.logger.Warn().Msg("quiz record has no answers, ranking by rating")
		return Ranking{Courses: sortByRating(courses), Branch: BranchNoQuiz}
	}

	filtered := m.FilterCourses(courses, &prefs)
	if len(filtered) == 0 {
		m.logger.Debug().
			Str("budget", prefs.Budget).
			Strs("interests", prefs.Interests).
			Msg("preferences rejected every course, ranking full list by rating")
		return Ranking{Courses: sortByRating(courses), Branch: BranchOverconstrained}
	}

	scored := m.ScoreCourses(filtered, &prefs)

	// Stable sort keeps catalog order on ties so rankings are reproducible.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	return Ranking{Courses: scored, Branch: BranchPreferences, Filtered: len(filtered)}
}

// RecommendationsByType restricts a ranking to courses of the given type.
func (m *Matcher) RecommendationsByType(courses []models.Course, quiz *models.QuizResults, courseType string) Ranking {
	ranking := m.Recommendations(courses, quiz)

	byType := make([]ScoredCourse, 0, len(ranking.Courses))
	for _, c := range ranking.Courses {
		if c.Type == courseType {
			byType = append(byType, c)
		}
	}
	ranking.Courses = byType

	return ranking
}

// Summary is the condensed preference view shown on profile screens.
type Summary struct {
	SkillLevel   string   `json:"skillLevel"`
	Interests    []string `json:"interests"`
	Budget       string   `json:"budget"`
	LearningGoal string   `json:"learningGoal"`
}

// Summarize projects a completed quiz record into a Summary. The second
// return is false when no usable record exists.
func Summarize(quiz *models.QuizResults) (Summary, bool) {
	prefs, ok := ExtractPreferences(quiz)
	if !ok {
		return Summary{}, false
	}

	return Summary{
		SkillLevel:   prefs.SkillLevel,
		Interests:    prefs.Interests,
		Budget:       prefs.Budget,
		LearningGoal: prefs.LearningGoal,
	}, true
}

// sortByRating returns the courses wrapped as ScoredCourses, ordered by
// rating descending. Scores stay zero: rating order is the fallback signal.
func sortByRating(courses []models.Course) []ScoredCourse {
	ranked := make([]ScoredCourse, 0, len(courses))
	for i := range courses {
		ranked = append(ranked, ScoredCourse{Course: courses[i]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rating > ranked[j].Rating
	})

	return ranked
}

// contains reports whether s is in list.
func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
