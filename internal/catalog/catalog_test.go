// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/skilluphq/coursegraph/internal/logging"
	"github.com/skilluphq/coursegraph/internal/models"
)

type fakeSource struct {
	mu      sync.Mutex
	calls   int
	courses []models.Course
	err     error
}

func (f *fakeSource) FetchCourses(context.Context) ([]models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.courses, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestCoursesCachesSnapshot(t *testing.T) {
	src := &fakeSource{courses: []models.Course{{ID: "c1", Title: "Go Basics"}}}
	cat := New(src, time.Minute, logging.NewTestLogger(io.Discard))

	for i := 0; i < 5; i++ {
		courses, err := cat.Courses(context.Background())
		if err != nil {
			t.Fatalf("Courses() error = %v", err)
		}
		if len(courses) != 1 || courses[0].ID != "c1" {
			t.Errorf("Courses() = %v, want [c1]", courses)
		}
	}

	if got := src.callCount(); got != 1 {
		t.Errorf("upstream fetches = %d, want 1", got)
	}
}

func TestCoursesServesStaleOnError(t *testing.T) {
	src := &fakeSource{courses: []models.Course{{ID: "c1"}}}
	cat := New(src, 10*time.Millisecond, logging.NewTestLogger(io.Discard))

	if _, err := cat.Courses(context.Background()); err != nil {
		t.Fatalf("initial Courses() error = %v", err)
	}

	src.mu.Lock()
	src.err = errors.New("upstream down")
	src.mu.Unlock()
	time.Sleep(20 * time.Millisecond)

	courses, err := cat.Courses(context.Background())
	if err != nil {
		t.Fatalf("Courses() error = %v, want stale snapshot", err)
	}
	if len(courses) != 1 || courses[0].ID != "c1" {
		t.Errorf("Courses() = %v, want stale [c1]", courses)
	}
}

func TestCoursesColdCacheError(t *testing.T) {
	src := &fakeSource{err: errors.New("upstream down")}
	cat := New(src, time.Minute, logging.NewTestLogger(io.Discard))

	if _, err := cat.Courses(context.Background()); err == nil {
		t.Error("Courses() error = nil on cold cache with failing upstream")
	}
}

func TestCourseLookup(t *testing.T) {
	src := &fakeSource{courses: []models.Course{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}}}
	cat := New(src, time.Minute, logging.NewTestLogger(io.Discard))

	course, ok, err := cat.Course(context.Background(), "2")
	if err != nil || !ok || course.Title != "B" {
		t.Errorf("Course(2) = %v, %v, %v; want B", course, ok, err)
	}

	_, ok, err = cat.Course(context.Background(), "missing")
	if err != nil || ok {
		t.Errorf("Course(missing) ok = %v, err = %v; want false, nil", ok, err)
	}
}

func TestHTTPSourceBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/courses" {
			t.Errorf("path = %s, want /api/courses", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": "c1", "title": "Go Basics", "rating": 4.5}]`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, logging.NewTestLogger(io.Discard))
	courses, err := src.FetchCourses(context.Background())
	if err != nil {
		t.Fatalf("FetchCourses() error = %v", err)
	}
	if len(courses) != 1 || courses[0].Rating != 4.5 {
		t.Errorf("courses = %v, want one course rated 4.5", courses)
	}
}

func TestHTTPSourceWrappedObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"courses": [{"id": "c1"}, {"id": "c2"}]}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, logging.NewTestLogger(io.Discard))
	courses, err := src.FetchCourses(context.Background())
	if err != nil {
		t.Fatalf("FetchCourses() error = %v", err)
	}
	if len(courses) != 2 {
		t.Errorf("len(courses) = %d, want 2", len(courses))
	}
}

func TestHTTPSourceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, logging.NewTestLogger(io.Discard))
	if _, err := src.FetchCourses(context.Background()); err == nil {
		t.Error("FetchCourses() error = nil, want status error")
	}
}
