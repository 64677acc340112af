// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package websocket

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/skilluphq/coursegraph/internal/events"
)

// topicMessageTypes maps bus topics to the frame types UI clients see.
var topicMessageTypes = map[string]string{
	events.TopicProfileSynced:   MessageTypeProfileSynced,
	events.TopicBookmarkToggled: MessageTypeBookmarkUpdate,
	events.TopicQuizSaved:       MessageTypeQuizSaved,
	events.TopicSessionEnded:    MessageTypeSessionEnded,
}

// Subscriber bridges the in-process event bus to the hub: every coordinator
// event becomes a broadcast frame. Runs as a suture service.
type Subscriber struct {
	bus    *events.Bus
	hub    *Hub
	logger zerolog.Logger
}

// NewSubscriber creates the bus-to-hub bridge.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSubscriber(bus *events.Bus, hub *Hub, logger zerolog.Logger) *Subscriber {
	return &Subscriber{
		bus:    bus,
		hub:    hub,
		logger: logger.With().Str("component", "ws_subscriber").Logger(),
	}
}

// Serve consumes every mapped topic until ctx is cancelled.
func (s *Subscriber) Serve(ctx context.Context) error {
	for topic, messageType := range topicMessageTypes {
		messages, err := s.bus.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		go s.pump(topic, messageType, messages)
	}

	<-ctx.Done()
	return ctx.Err()
}

// String names the service in supervisor logs.
func (s *Subscriber) String() string {
	return "websocket.Subscriber"
}

func (s *Subscriber) pump(topic, messageType string, messages <-chan *message.Message) {
	for msg := range messages {
		var data any
		if err := json.Unmarshal(msg.Payload, &data); err != nil {
			s.logger.Error().Err(err).Str("topic", topic).Msg("Malformed event payload")
			msg.Ack()
			continue
		}
		s.hub.Broadcast(messageType, data)
		msg.Ack()
	}
}
