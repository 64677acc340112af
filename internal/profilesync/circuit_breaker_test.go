// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package profilesync

import (
	"context"
	"errors"
	"net/http"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"
)

func TestCircuitBreakerOpensOnSustainedFailure(t *testing.T) {
	api := &fakeAPI{
		fetchFn: func(context.Context, string) (*ProfileData, error) {
			return nil, errors.New("connection refused")
		},
	}
	cbc := NewCircuitBreakerClient(api)

	// Ten straight failures exceeds the trip threshold.
	for i := 0; i < 10; i++ {
		_, err := cbc.FetchProfile(context.Background(), "tok")
		if err == nil {
			t.Fatalf("call %d: error = nil, want failure", i)
		}
		if errors.Is(err, gobreaker.ErrOpenState) {
			return // tripped, done
		}
	}
	t.Error("circuit never opened after sustained failures")
}

func TestCircuitBreakerRejectsWhenOpen(t *testing.T) {
	api := &fakeAPI{
		fetchFn: func(context.Context, string) (*ProfileData, error) {
			return nil, errors.New("connection refused")
		},
	}
	cbc := NewCircuitBreakerClient(api)

	for i := 0; i < 10; i++ {
		_, _ = cbc.FetchProfile(context.Background(), "tok")
	}

	fetchBefore, _ := api.calls()
	_, err := cbc.FetchProfile(context.Background(), "tok")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("error = %v, want ErrOpenState", err)
	}
	if fetchAfter, _ := api.calls(); fetchAfter != fetchBefore {
		t.Error("open circuit still forwarded the request upstream")
	}
}

func TestCircuitBreakerIgnoresAuthErrors(t *testing.T) {
	api := &fakeAPI{
		fetchFn: func(context.Context, string) (*ProfileData, error) {
			return nil, &APIError{StatusCode: http.StatusUnauthorized}
		},
	}
	cbc := NewCircuitBreakerClient(api)

	// Auth rejections are a session problem, not upstream health; they
	// must never open the circuit.
	for i := 0; i < 20; i++ {
		_, err := cbc.FetchProfile(context.Background(), "tok")
		if errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("call %d: circuit opened on auth errors", i)
		}
		if !IsAuthError(err) {
			t.Fatalf("call %d: error = %v, want auth error", i, err)
		}
	}
}

func TestCircuitBreakerPassesResultsThrough(t *testing.T) {
	api := &fakeAPI{
		fetchFn: func(context.Context, string) (*ProfileData, error) {
			return &ProfileData{Bookmarks: []string{"c1"}}, nil
		},
		pushFn: func(_ context.Context, _, courseID, _ string) ([]string, error) {
			return []string{courseID}, nil
		},
	}
	cbc := NewCircuitBreakerClient(api)

	data, err := cbc.FetchProfile(context.Background(), "tok")
	if err != nil || len(data.Bookmarks) != 1 {
		t.Errorf("FetchProfile() = %v, %v; want one bookmark", data, err)
	}

	ids, err := cbc.PushBookmark(context.Background(), "tok", "c2", ActionAdd)
	if err != nil || len(ids) != 1 || ids[0] != "c2" {
		t.Errorf("PushBookmark() = %v, %v; want [c2]", ids, err)
	}

	if err := cbc.PushBookmarkSet(context.Background(), "tok", []string{"c1"}); err != nil {
		t.Errorf("PushBookmarkSet() error = %v", err)
	}
}
