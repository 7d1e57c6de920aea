package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/game"
)

// Request is one queued player action.
type Request struct {
	RequestID   string      `json:"request_id"`
	GameStateID uuid.UUID   `json:"game_state_id"`
	Action      game.Action `json:"action"`
	EnqueuedAt  time.Time   `json:"enqueued_at"`

	// Attempts counts how often the request was put back because its game was locked.
	Attempts int `json:"attempts,omitempty"`
}

// NewRequest stamps a fresh request id and enqueue time.
func NewRequest(gameStateID uuid.UUID, action game.Action) *Request {
	return &Request{
		RequestID:   uuid.New().String(),
		GameStateID: gameStateID,
		Action:      action,
		EnqueuedAt:  time.Now(),
	}
}

// ToJSON converts the request to JSON bytes for Redis
func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	if req.GameStateID == uuid.Nil {
		return nil, fmt.Errorf("request %q has no game_state_id", req.RequestID)
	}
	return &req, nil
}
