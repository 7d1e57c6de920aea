package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jwebster45206/quest-engine/internal/handlers"
	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// ActionTimeout is max time to wait for a worker to finish a queued action
const ActionTimeout = 30 * time.Second

// apiError is a non-2xx response.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API returned %d: %s", e.Status, e.Message)
}

// doJSON sends body and decodes the response into out when the status is want.
func doJSON(ctx context.Context, client *http.Client, method, url string, body any, want int, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		var errResp handlers.ErrorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return &apiError{Status: resp.StatusCode, Message: errResp.Error}
		}
		return &apiError{Status: resp.StatusCode, Message: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// GetGameState retrieves the current gamestate
func GetGameState(ctx context.Context, client *http.Client, baseURL string, gameStateID uuid.UUID) (*state.GameState, error) {
	var gs state.GameState
	if err := doJSON(ctx, client, http.MethodGet, baseURL+"/v1/gamestate/"+gameStateID.String(), nil, http.StatusOK, &gs); err != nil {
		return nil, err
	}
	return &gs, nil
}

// GetJournal retrieves the quest log
func GetJournal(ctx context.Context, client *http.Client, baseURL string, gameStateID uuid.UUID) (*game.Journal, error) {
	var j game.Journal
	if err := doJSON(ctx, client, http.MethodGet, baseURL+"/v1/gamestate/"+gameStateID.String()+"/quests", nil, http.StatusOK, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// EventStream is an open websocket subscription to one game.
type EventStream struct {
	conn *websocket.Conn
}

// OpenEventStream subscribes to the game's events and waits for the "connected" hello,
// so nothing published afterwards is missed.
func OpenEventStream(ctx context.Context, baseURL string, gameStateID uuid.UUID) (*EventStream, error) {
	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/v1/gamestate/" + gameStateID.String() + "/events"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open event stream: %w", err)
	}
	s := &EventStream{conn: conn}
	if _, err := s.next(ActionTimeout); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("no hello on event stream: %w", err)
	}
	return s, nil
}

func (s *EventStream) Close() error {
	return s.conn.Close()
}

func (s *EventStream) next(timeout time.Duration) (events.Event, error) {
	var ev events.Event
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return ev, err
	}
	err := s.conn.ReadJSON(&ev)
	return ev, err
}

// WaitForRequest reads the stream until the request completes or fails.
func (s *EventStream) WaitForRequest(requestID string) (events.Event, error) {
	deadline := time.Now().Add(ActionTimeout)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return events.Event{}, fmt.Errorf("timeout waiting for request %s (waited %v)", requestID, ActionTimeout)
		}
		ev, err := s.next(left)
		if err != nil {
			return events.Event{}, fmt.Errorf("event stream: %w", err)
		}
		if ev.RequestID != requestID {
			continue
		}
		switch ev.Type {
		case events.EventTypeRequestCompleted, events.EventTypeRequestFailed:
			return ev, nil
		}
	}
}

// PostAction queues an action and returns its request id
func PostAction(ctx context.Context, client *http.Client, baseURL string, gameStateID uuid.UUID, a game.Action) (string, error) {
	var resp handlers.QueuedResponse
	url := baseURL + "/v1/gamestate/" + gameStateID.String() + "/actions"
	if err := doJSON(ctx, client, http.MethodPost, url, a, http.StatusAccepted, &resp); err != nil {
		return "", err
	}
	return resp.RequestID, nil
}
