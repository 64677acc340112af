// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package recommend

import (
	"github.com/skilluphq/coursegraph/internal/models"
)

// Quiz question indexes. The quiz UI stores answers keyed by these positions.
const (
	questionSkillLevel      = 1
	questionLearningGoal    = 2
	questionInterests       = 3
	questionLearningStyle   = 4
	questionTimeCommitment  = 5
	questionBudget          = 6
	questionExperience      = 7
	questionTools           = 8
	questionCertification   = 9
	questionSupportPref     = 10
)

// Budget answer tokens with filtering semantics. Any other token means no
// price constraint.
const (
	BudgetFreeOnly = "free-only"
	BudgetUnder500 = "under-500"
	Budget500To2K  = "500-2000"
)

// Learning goal tokens that influence scoring.
const (
	GoalCareerChange = "career-change"
	GoalSkillUpgrade = "skill-upgrade"
)

// Preferences is the structured projection of a quiz record. Every field is
// derived deterministically from the answers; absent answers take the
// documented defaults.
type Preferences struct {
	// SkillLevel defaults to "beginner" when unanswered.
	SkillLevel string

	LearningGoal          string
	Interests             []string
	LearningStyle         string
	TimeCommitment        string
	Budget                string
	Experience            string
	Tools                 []string
	CertificationInterest string
	SupportPreference     string

	// MaxWeeklyHours is derived from TimeCommitment. It is surfaced for
	// presentation but deliberately not used as a filter.
	MaxWeeklyHours int
}

// ExtractPreferences projects a quiz record into Preferences. The second
// return is false when the record is absent or has no answers mapping, in
// which case callers must fall back to an unpersonalized ranking.
func ExtractPreferences(quiz *models.QuizResults) (Preferences, bool) {
	if quiz == nil || quiz.Answers == nil {
		return Preferences{}, false
	}

	p := Preferences{
		SkillLevel:            singleAnswer(quiz, questionSkillLevel, "beginner"),
		LearningGoal:          singleAnswer(quiz, questionLearningGoal, ""),
		Interests:             multiAnswer(quiz, questionInterests),
		LearningStyle:         singleAnswer(quiz, questionLearningStyle, ""),
		TimeCommitment:        singleAnswer(quiz, questionTimeCommitment, ""),
		Budget:                singleAnswer(quiz, questionBudget, ""),
		Experience:            singleAnswer(quiz, questionExperience, ""),
		Tools:                 multiAnswer(quiz, questionTools),
		CertificationInterest: singleAnswer(quiz, questionCertification, ""),
		SupportPreference:     singleAnswer(quiz, questionSupportPref, ""),
	}
	p.MaxWeeklyHours = mapTimeToMaxHours(p.TimeCommitment)

	return p, true
}

// singleAnswer returns the single-choice answer for a question, or def when
// the question was not answered with a single token.
func singleAnswer(quiz *models.QuizResults, question int, def string) string {
	if a, ok := quiz.Answers[question]; ok && a.Value != "" {
		return a.Value
	}
	return def
}

// multiAnswer returns the multi-choice answer for a question, or an empty set.
func multiAnswer(quiz *models.QuizResults, question int) []string {
	if a, ok := quiz.Answers[question]; ok && a.Values != nil {
		return a.Values
	}
	return []string{}
}

// interestTopics maps each interest token to its canonical catalog topic.
// Unknown tokens contribute nothing.
var interestTopics = map[string]string{
	"web-dev":       "programming",
	"mobile-dev":    "programming",
	"data-science":  "programming",
	"devops":        "programming",
	"cybersecurity": "programming",
	"programming":   "programming",
	"design":        "design",
	"business":      "business",
	"marketing":     "marketing",
}

// MapInterestToTopics resolves interest tokens to the set of catalog topics
// they cover. Duplicates collapse; order is not significant.
func MapInterestToTopics(interests []string) map[string]struct{} {
	topics := make(map[string]struct{}, len(interests))
	for _, interest := range interests {
		if topic, ok := interestTopics[interest]; ok {
			topics[topic] = struct{}{}
		}
	}
	return topics
}

// skillDifficulties maps a self-reported skill level to the difficulties a
// course may carry and still suit the user.
var skillDifficulties = map[string][]string{
	"beginner":     {models.DifficultyBeginner},
	"some-basics":  {models.DifficultyBeginner, models.DifficultyIntermediate},
	"intermediate": {models.DifficultyIntermediate, models.DifficultyAdvanced},
	"advanced":     {models.DifficultyAdvanced},
	"expert":       {models.DifficultyAdvanced},
}

// MapSkillToDifficulty returns the acceptable difficulty tokens for a skill
// level. Unknown or absent levels default to beginner+intermediate.
func MapSkillToDifficulty(skillLevel string) []string {
	if d, ok := skillDifficulties[skillLevel]; ok {
		return d
	}
	return []string{models.DifficultyBeginner, models.DifficultyIntermediate}
}

// timeCommitmentHours maps a time-commitment answer to a weekly hour ceiling.
var timeCommitmentHours = map[string]int{
	"1-3-hours":  10,
	"4-7-hours":  20,
	"8-15-hours": 40,
	"15-plus":    999,
}

// mapTimeToMaxHours returns the weekly hour ceiling for a time-commitment
// answer, defaulting to unbounded.
func mapTimeToMaxHours(timeCommitment string) int {
	if h, ok := timeCommitmentHours[timeCommitment]; ok {
		return h
	}
	return 999
}
