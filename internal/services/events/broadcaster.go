package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeRequestQueued     EventType = "request.queued"
	EventTypeRequestProcessing EventType = "request.processing"
	EventTypeRequestCompleted  EventType = "request.completed"
	EventTypeRequestFailed     EventType = "request.failed"
	EventTypeGameEvents        EventType = "game.events"
	EventTypeGameDeleted       EventType = "game.deleted"
)

// Event is one message on a game's channel. Domain events from an applied action
// travel together in Events.
type Event struct {
	Type      EventType       `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	GameID    string          `json:"game_id"`
	Action    game.ActionType `json:"action,omitempty"`
	Version   int             `json:"version,omitempty"`
	Events    []game.Event    `json:"events,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Broadcaster publishes events to Redis Pub/Sub for websocket distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Channel is the pub/sub channel of one game.
func Channel(gameID uuid.UUID) string {
	return "game-events:" + gameID.String()
}

func (b *Broadcaster) PublishRequestQueued(ctx context.Context, gameID uuid.UUID, requestID string, action game.ActionType) error {
	return b.Publish(ctx, gameID, Event{
		Type:      EventTypeRequestQueued,
		RequestID: requestID,
		Action:    action,
	})
}

func (b *Broadcaster) PublishRequestProcessing(ctx context.Context, gameID uuid.UUID, requestID string, action game.ActionType) error {
	return b.Publish(ctx, gameID, Event{
		Type:      EventTypeRequestProcessing,
		RequestID: requestID,
		Action:    action,
	})
}

// PublishRequestCompleted reports a successfully applied action together with its
// domain events.
func (b *Broadcaster) PublishRequestCompleted(ctx context.Context, gameID uuid.UUID, requestID string, action game.ActionType, version int, evs []game.Event) error {
	return b.Publish(ctx, gameID, Event{
		Type:      EventTypeRequestCompleted,
		RequestID: requestID,
		Action:    action,
		Version:   version,
		Events:    evs,
	})
}

func (b *Broadcaster) PublishRequestFailed(ctx context.Context, gameID uuid.UUID, requestID string, action game.ActionType, errorMsg string) error {
	return b.Publish(ctx, gameID, Event{
		Type:      EventTypeRequestFailed,
		RequestID: requestID,
		Action:    action,
		Error:     errorMsg,
	})
}

// PublishGameEvents sends domain events that did not come from a queued request,
// such as those of a new game.
func (b *Broadcaster) PublishGameEvents(ctx context.Context, gameID uuid.UUID, version int, evs []game.Event) error {
	if len(evs) == 0 {
		return nil
	}
	return b.Publish(ctx, gameID, Event{Type: EventTypeGameEvents, Version: version, Events: evs})
}

func (b *Broadcaster) PublishGameDeleted(ctx context.Context, gameID uuid.UUID) error {
	return b.Publish(ctx, gameID, Event{Type: EventTypeGameDeleted})
}

// Publish sends event on the game's channel.
func (b *Broadcaster) Publish(ctx context.Context, gameID uuid.UUID, event Event) error {
	channel := Channel(gameID)
	event.GameID = gameID.String()

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"request_id", event.RequestID,
		"events", len(event.Events),
	)
	return nil
}

// Subscribe listens on a game's channel. The caller closes the returned subscription.
func (b *Broadcaster) Subscribe(ctx context.Context, gameID uuid.UUID) (*redis.PubSub, error) {
	sub := b.redisClient.Subscribe(ctx, Channel(gameID))
	// Receive blocks until the subscription is confirmed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", Channel(gameID), err)
	}
	return sub, nil
}
