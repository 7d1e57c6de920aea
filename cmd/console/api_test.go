package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/internal/handlers"
	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient(t *testing.T) {
	gameID := uuid.New()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/campaigns", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]content.Summary{{ID: "greywater", Name: "Greywater Hollow"}})
	})
	mux.HandleFunc("/v1/gamestate/"+gameID.String()+"/actions", func(w http.ResponseWriter, r *http.Request) {
		var a game.Action
		_ = json.NewDecoder(r.Body).Decode(&a)
		if a.Type != game.ActWait || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(handlers.ErrorResponse{Error: "bad action"})
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(handlers.QueuedResponse{RequestID: "r1", GameID: gameID.String(), Status: "queued"})
	})
	mux.HandleFunc("/v1/gamestate/"+gameID.String()+"/shop/marta_remedies", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("oops"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	api := &apiClient{http: srv.Client(), baseURL: srv.URL}
	assert.True(t, api.testConnection())

	list, err := api.listCampaigns()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "greywater", list[0].ID)

	q, err := api.queueAction(gameID, game.Action{Type: game.ActWait, DT: 5})
	require.NoError(t, err)
	assert.Equal(t, "r1", q.RequestID)

	_, err = api.queueAction(gameID, game.Action{Type: game.ActCrime})
	assert.EqualError(t, err, "bad action")

	_, err = api.shop(gameID, "marta_remedies")
	assert.ErrorContains(t, err, "status 500: oops")
}

func TestAPIClient_Unreachable(t *testing.T) {
	api := &apiClient{http: http.DefaultClient, baseURL: "http://127.0.0.1:1"}
	assert.False(t, api.testConnection())
}

func TestEventsURL(t *testing.T) {
	id := uuid.MustParse("6f1c1a52-5a5e-4d33-9d55-0f1e2d3c4b5a")
	api := &apiClient{baseURL: "http://localhost:8080"}
	assert.Equal(t, "ws://localhost:8080/v1/gamestate/"+id.String()+"/events", api.eventsURL(id))
	api.baseURL = "https://quests.example.com"
	assert.Equal(t, "wss://quests.example.com/v1/gamestate/"+id.String()+"/events", api.eventsURL(id))
}
