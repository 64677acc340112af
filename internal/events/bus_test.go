// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package events

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/skilluphq/coursegraph/internal/logging"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(logging.NewTestLogger(io.Discard))
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := bus.Subscribe(ctx, TopicBookmarkToggled)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	payload := BookmarkToggled{
		CourseID:        "course-1",
		Action:          "add",
		RemoteConfirmed: true,
		Bookmarks:       []string{"course-1"},
	}
	if err := bus.Publish(TopicBookmarkToggled, payload); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-messages:
		var got BookmarkToggled
		if err := json.Unmarshal(msg.Payload, &got); err != nil {
			t.Fatalf("Unmarshal payload: %v", err)
		}
		if got.CourseID != "course-1" || got.Action != "add" || !got.RemoteConfirmed {
			t.Errorf("payload = %+v, want %+v", got, payload)
		}
		if msg.UUID == "" {
			t.Error("message UUID is empty")
		}
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestBusMultipleSubscribers(t *testing.T) {
	bus := NewBus(logging.NewTestLogger(io.Discard))
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := bus.Subscribe(ctx, TopicSessionEnded)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	second, err := bus.Subscribe(ctx, TopicSessionEnded)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := bus.Publish(TopicSessionEnded, SessionEnded{Reason: "logout"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	receive := func(name string, ch <-chan *message.Message) {
		t.Helper()
		select {
		case msg := <-ch:
			var got SessionEnded
			if err := json.Unmarshal(msg.Payload, &got); err != nil {
				t.Fatalf("%s: unmarshal payload: %v", name, err)
			}
			if got.Reason != "logout" {
				t.Errorf("%s: Reason = %q, want %q", name, got.Reason, "logout")
			}
			msg.Ack()
		case <-time.After(2 * time.Second):
			t.Fatalf("%s: timed out waiting for message", name)
		}
	}

	receive("first", first)
	receive("second", second)
}

func TestBusSubscribeAfterClose(t *testing.T) {
	bus := NewBus(logging.NewTestLogger(io.Discard))
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := bus.Subscribe(context.Background(), TopicProfileSynced); err == nil {
		t.Error("Subscribe() after Close() returned nil error")
	}
}
