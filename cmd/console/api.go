package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jwebster45206/quest-engine/internal/handlers"
	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// apiClient talks to the quest engine HTTP API.
type apiClient struct {
	http    *http.Client
	baseURL string
}

func (c *apiClient) testConnection() bool {
	resp, err := c.http.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// do sends body as JSON and decodes the response into out when the status matches.
func (c *apiClient) do(method, path string, body any, want int, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		return errors.New(errorResp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *apiClient) listCampaigns() ([]content.Summary, error) {
	var out []content.Summary
	err := c.do(http.MethodGet, "/v1/campaigns", nil, http.StatusOK, &out)
	return out, err
}

func (c *apiClient) createGame(campaignID string) (*handlers.GameResponse, error) {
	var out handlers.GameResponse
	req := handlers.CreateGameStateRequest{CampaignID: campaignID}
	if err := c.do(http.MethodPost, "/v1/gamestate", req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) getGameState(id uuid.UUID) (*state.GameState, error) {
	var out state.GameState
	if err := c.do(http.MethodGet, "/v1/gamestate/"+id.String(), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) getJournal(id uuid.UUID) (*game.Journal, error) {
	var out game.Journal
	if err := c.do(http.MethodGet, "/v1/gamestate/"+id.String()+"/quests", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) queueAction(id uuid.UUID, a game.Action) (*handlers.QueuedResponse, error) {
	var out handlers.QueuedResponse
	if err := c.do(http.MethodPost, "/v1/gamestate/"+id.String()+"/actions", a, http.StatusAccepted, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) dialogue(id uuid.UUID, req handlers.DialogueRequest) (*handlers.DialogueResponse, error) {
	var out handlers.DialogueResponse
	if err := c.do(http.MethodPost, "/v1/gamestate/"+id.String()+"/dialogue", req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) shop(id uuid.UUID, traderID string) (*handlers.ShopResponse, error) {
	var out handlers.ShopResponse
	if err := c.do(http.MethodGet, "/v1/gamestate/"+id.String()+"/shop/"+traderID, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) trade(id uuid.UUID, traderID string, req handlers.TradeRequest) (*handlers.ShopResponse, error) {
	var out handlers.ShopResponse
	if err := c.do(http.MethodPost, "/v1/gamestate/"+id.String()+"/shop/"+traderID, req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) inventory(id uuid.UUID, req handlers.InventoryRequest) (*handlers.InventoryResponse, error) {
	var out handlers.InventoryResponse
	if err := c.do(http.MethodPost, "/v1/gamestate/"+id.String()+"/inventory", req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) eventsURL(id uuid.UUID) string {
	u := c.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/v1/gamestate/" + id.String() + "/events"
}

// streamEvents delivers the game's events on the returned channel until ctx ends or the
// server closes the stream.
func (c *apiClient) streamEvents(ctx context.Context, id uuid.UUID) (<-chan events.Event, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.eventsURL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open event stream: %w", err)
	}

	out := make(chan events.Event, 16)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go func() {
		defer close(out)
		for {
			var ev events.Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
