// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package recommend

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/skilluphq/coursegraph/internal/models"
)

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := NewMatcher(DefaultWeights(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	return m
}

func TestRecommendationsEmptyInput(t *testing.T) {
	m := newTestMatcher(t)

	ranking := m.Recommendations(nil, completedQuiz(map[int]models.Answer{1: {Value: "beginner"}}))
	if len(ranking.Courses) != 0 {
		t.Errorf("empty input must yield empty ranking, got %d courses", len(ranking.Courses))
	}
	if ranking.Branch != BranchEmpty {
		t.Errorf("branch = %v, want %v", ranking.Branch, BranchEmpty)
	}

	ranking = m.Recommendations([]models.Course{}, nil)
	if len(ranking.Courses) != 0 || ranking.Branch != BranchEmpty {
		t.Errorf("empty slice must yield empty ranking regardless of quiz state")
	}
}

func TestRecommendationsFallbackSortByRating(t *testing.T) {
	m := newTestMatcher(t)
	courses := []models.Course{
		{ID: "a", Rating: 3},
		{ID: "b", Rating: 5},
		{ID: "c", Rating: 1},
	}

	ranking := m.Recommendations(courses, nil)

	if ranking.Branch != BranchNoQuiz {
		t.Fatalf("branch = %v, want %v", ranking.Branch, BranchNoQuiz)
	}
	gotOrder := []string{ranking.Courses[0].ID, ranking.Courses[1].ID, ranking.Courses[2].ID}
	wantOrder := []string{"b", "a", "c"}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("rating order = %v, want %v", gotOrder, wantOrder)
		}
	}
}

func TestRecommendationsIncompleteQuizFallsBack(t *testing.T) {
	m := newTestMatcher(t)
	courses := []models.Course{{ID: "a", Rating: 4}}

	// Answers present but no completedAt: not a valid record.
	quiz := &models.QuizResults{Answers: map[int]models.Answer{1: {Value: "beginner"}}}

	ranking := m.Recommendations(courses, quiz)
	if ranking.Branch != BranchNoQuiz {
		t.Errorf("branch = %v, want %v", ranking.Branch, BranchNoQuiz)
	}
}

func TestRecommendationsOverconstrainedFallsBackToFullList(t *testing.T) {
	m := newTestMatcher(t)
	courses := []models.Course{
		{ID: "a", Topic: "programming", Rating: 2},
		{ID: "b", Topic: "programming", Rating: 5},
	}
	quiz := completedQuiz(map[int]models.Answer{
		3: {Values: []string{"marketing"}},
	})

	ranking := m.Recommendations(courses, quiz)

	if ranking.Branch != BranchOverconstrained {
		t.Fatalf("branch = %v, want %v", ranking.Branch, BranchOverconstrained)
	}
	if len(ranking.Courses) != len(courses) {
		t.Fatalf("fallback must return the full original list, got %d of %d", len(ranking.Courses), len(courses))
	}
	if ranking.Courses[0].ID != "b" {
		t.Errorf("fallback must be rating-sorted, got %q first", ranking.Courses[0].ID)
	}
}

func TestScoreMonotonicInRating(t *testing.T) {
	m := newTestMatcher(t)
	prefs := Preferences{SkillLevel: "beginner", Interests: []string{"web-dev"}, Budget: BudgetFreeOnly}

	base := models.Course{Topic: "programming", Type: "free", Difficulty: "beginner", Rating: 3, Students: 1000}
	higher := base
	higher.Rating = 4.5

	scored := m.ScoreCourses([]models.Course{base, higher}, &prefs)
	if scored[1].RelevanceScore < scored[0].RelevanceScore {
		t.Errorf("higher rating scored lower: %v < %v", scored[1].RelevanceScore, scored[0].RelevanceScore)
	}
}

func TestFilterBudgetBoundaries(t *testing.T) {
	m := newTestMatcher(t)

	tests := []struct {
		name   string
		budget string
		price  float64
		ctype  string
		kept   bool
	}{
		{"under-500 keeps exactly 500", BudgetUnder500, 500, "paid", true},
		{"under-500 drops 501", BudgetUnder500, 501, "paid", false},
		{"500-2000 keeps exactly 500", Budget500To2K, 500, "paid", true},
		{"500-2000 keeps exactly 2000", Budget500To2K, 2000, "paid", true},
		{"500-2000 drops 499", Budget500To2K, 499, "paid", false},
		{"500-2000 drops 2001", Budget500To2K, 2001, "paid", false},
		{"free-only drops paid", BudgetFreeOnly, 0, "paid", false},
		{"free-only keeps free", BudgetFreeOnly, 0, "free", true},
		{"unknown budget imposes nothing", "whatever", 99999, "paid", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := Preferences{Budget: tt.budget}
			courses := []models.Course{{ID: "x", Type: tt.ctype, Price: tt.price}}

			got := m.FilterCourses(courses, &prefs)
			if kept := len(got) == 1; kept != tt.kept {
				t.Errorf("kept = %v, want %v", kept, tt.kept)
			}
		})
	}
}

func TestFilterDifficultyAndTopic(t *testing.T) {
	m := newTestMatcher(t)
	prefs := Preferences{SkillLevel: "beginner", Interests: []string{"web-dev"}}

	courses := []models.Course{
		{ID: "match", Topic: "programming", Difficulty: "beginner"},
		{ID: "wrong-topic", Topic: "design", Difficulty: "beginner"},
		{ID: "too-hard", Topic: "programming", Difficulty: "advanced"},
		{ID: "no-difficulty", Topic: "programming"},
	}

	got := m.FilterCourses(courses, &prefs)
	want := map[string]bool{"match": true, "no-difficulty": true}

	if len(got) != 2 {
		t.Fatalf("filtered %d courses, want 2", len(got))
	}
	for _, c := range got {
		if !want[c.ID] {
			t.Errorf("unexpected survivor %q", c.ID)
		}
	}
}

func TestFilterNilPreferencesIsIdentity(t *testing.T) {
	m := newTestMatcher(t)
	courses := []models.Course{{ID: "a"}, {ID: "b"}}

	got := m.FilterCourses(courses, nil)
	if len(got) != 2 {
		t.Errorf("nil preferences must not filter, got %d courses", len(got))
	}
}

// The worked scenario: beginner + web-dev + free-only against one matching
// free course and one paid design course. The match scores exactly
// 50 (topic) + 30 (difficulty) + 20 (free budget) + 20 (rating*5) = 120.
func TestRecommendationsScenario(t *testing.T) {
	m := newTestMatcher(t)

	quiz := completedQuiz(map[int]models.Answer{
		1: {Value: "beginner"},
		3: {Values: []string{"web-dev"}},
		6: {Value: "free-only"},
	})
	courses := []models.Course{
		{ID: "go-course", Topic: "programming", Type: "free", Difficulty: "beginner", Rating: 4, Students: 50000},
		{ID: "figma-course", Topic: "design", Type: "paid", Price: 999, Difficulty: "advanced", Rating: 5, Students: 200000},
	}

	ranking := m.Recommendations(courses, quiz)

	if ranking.Branch != BranchPreferences {
		t.Fatalf("branch = %v, want %v", ranking.Branch, BranchPreferences)
	}
	if len(ranking.Courses) != 1 {
		t.Fatalf("filtered result = %d courses, want exactly the free programming course", len(ranking.Courses))
	}
	if ranking.Courses[0].ID != "go-course" {
		t.Fatalf("survivor = %q, want go-course", ranking.Courses[0].ID)
	}
	if got := ranking.Courses[0].RelevanceScore; got != 120 {
		t.Errorf("score = %v, want 120", got)
	}
}

func TestRecommendationsStableTieBreak(t *testing.T) {
	m := newTestMatcher(t)

	quiz := completedQuiz(map[int]models.Answer{1: {Value: "beginner"}})
	// Identical scoring inputs: catalog order must be preserved.
	courses := []models.Course{
		{ID: "first", Topic: "programming", Type: "free", Difficulty: "beginner", Rating: 4},
		{ID: "second", Topic: "programming", Type: "free", Difficulty: "beginner", Rating: 4},
		{ID: "third", Topic: "programming", Type: "free", Difficulty: "beginner", Rating: 4},
	}

	for i := 0; i < 5; i++ {
		ranking := m.Recommendations(courses, quiz)
		for j, want := range []string{"first", "second", "third"} {
			if ranking.Courses[j].ID != want {
				t.Fatalf("run %d: position %d = %q, want %q", i, j, ranking.Courses[j].ID, want)
			}
		}
	}
}

func TestRecommendationsByType(t *testing.T) {
	m := newTestMatcher(t)
	courses := []models.Course{
		{ID: "a", Type: "free", Rating: 4},
		{ID: "b", Type: "paid", Rating: 5},
		{ID: "c", Type: "free", Rating: 2},
	}

	ranking := m.RecommendationsByType(courses, nil, "free")

	if len(ranking.Courses) != 2 {
		t.Fatalf("got %d free courses, want 2", len(ranking.Courses))
	}
	for _, c := range ranking.Courses {
		if c.Type != "free" {
			t.Errorf("course %q has type %q", c.ID, c.Type)
		}
	}
}

func TestGoalScoring(t *testing.T) {
	m := newTestMatcher(t)

	beginner := models.Course{Topic: "business", Type: "paid", Price: 100, Difficulty: "beginner", Rating: 0}
	advanced := beginner
	advanced.Difficulty = "advanced"

	careerChange := Preferences{LearningGoal: GoalCareerChange, SkillLevel: "some-basics"}
	scored := m.ScoreCourses([]models.Course{beginner, advanced}, &careerChange)
	if scored[0].RelevanceScore <= scored[1].RelevanceScore {
		t.Errorf("career-change should favor beginner: %v vs %v", scored[0].RelevanceScore, scored[1].RelevanceScore)
	}

	skillUpgrade := Preferences{LearningGoal: GoalSkillUpgrade, SkillLevel: "intermediate"}
	scored = m.ScoreCourses([]models.Course{beginner, advanced}, &skillUpgrade)
	if scored[1].RelevanceScore <= scored[0].RelevanceScore {
		t.Errorf("skill-upgrade should favor non-beginner: %v vs %v", scored[1].RelevanceScore, scored[0].RelevanceScore)
	}
}

func TestSummarize(t *testing.T) {
	quiz := completedQuiz(map[int]models.Answer{
		1: {Value: "advanced"},
		2: {Value: "skill-upgrade"},
		3: {Values: []string{"devops"}},
		6: {Value: "under-500"},
	})

	summary, ok := Summarize(quiz)
	if !ok {
		t.Fatal("summary should be available")
	}
	if summary.SkillLevel != "advanced" || summary.Budget != "under-500" || summary.LearningGoal != "skill-upgrade" {
		t.Errorf("summary = %+v", summary)
	}

	if _, ok := Summarize(nil); ok {
		t.Error("nil quiz must yield no summary")
	}
}

func TestWeightsValidate(t *testing.T) {
	w := DefaultWeights()
	if err := w.Validate(); err != nil {
		t.Errorf("default weights must validate: %v", err)
	}

	w.TopicMatch = -1
	if err := w.Validate(); err == nil {
		t.Error("negative weight must fail validation")
	}
}
