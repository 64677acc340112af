// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package models

import (
	"reflect"
	"testing"

	"github.com/goccy/go-json"
)

func TestAnswerUnmarshalSingleAndMulti(t *testing.T) {
	var q QuizResults
	raw := `{"answers":{"1":"beginner","3":["web-dev","design"]},"completedAt":"2026-02-11T10:00:00Z"}`

	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := q.Answers[1].Value; got != "beginner" {
		t.Errorf("answer 1 = %q, want beginner", got)
	}
	if got := q.Answers[3].Values; !reflect.DeepEqual(got, []string{"web-dev", "design"}) {
		t.Errorf("answer 3 = %v, want [web-dev design]", got)
	}
	if !q.Completed() {
		t.Error("record with completedAt should report Completed")
	}
}

func TestQuizResultsIncomplete(t *testing.T) {
	var q QuizResults
	if err := json.Unmarshal([]byte(`{"answers":{"1":"beginner"}}`), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Completed() {
		t.Error("record without completedAt should not report Completed")
	}

	var nilQuiz *QuizResults
	if nilQuiz.Completed() {
		t.Error("nil record should not report Completed")
	}
}

func TestAnswerMarshalRoundTrip(t *testing.T) {
	a := Answer{Values: []string{"python", "figma"}}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["python","figma"]` {
		t.Errorf("multi answer marshaled as %s", data)
	}

	data, err = json.Marshal(Answer{Value: "free-only"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"free-only"` {
		t.Errorf("single answer marshaled as %s", data)
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"abc123", "abc123"},
		{42, "42"},
		{int64(7), "7"},
		{float64(42), "42"},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := NormalizeID(tt.in); got != tt.want {
			t.Errorf("NormalizeID(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanBookmarks(t *testing.T) {
	in := []string{"12", "", "undefined", "null", "abc"}
	want := []string{"12", "abc"}

	if got := CleanBookmarks(in); !reflect.DeepEqual(got, want) {
		t.Errorf("CleanBookmarks(%v) = %v, want %v", in, got, want)
	}
}
