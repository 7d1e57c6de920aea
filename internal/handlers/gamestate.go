package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/internal/worker"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/queue"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// Enqueuer accepts actions for the worker pool.
type Enqueuer interface {
	EnqueueRequest(ctx context.Context, req *queue.Request) error
}

type GameStateHandler struct {
	processor       *worker.Processor
	queue           Enqueuer
	broadcaster     *events.Broadcaster
	defaultCampaign string
	logger          *slog.Logger
}

func NewGameStateHandler(processor *worker.Processor, q Enqueuer, broadcaster *events.Broadcaster, defaultCampaign string, logger *slog.Logger) *GameStateHandler {
	return &GameStateHandler{
		processor:       processor,
		queue:           q,
		broadcaster:     broadcaster,
		defaultCampaign: defaultCampaign,
		logger:          logger,
	}
}

// CreateGameStateRequest defines the request body for creating a new game state
type CreateGameStateRequest struct {
	CampaignID string `json:"campaign_id,omitempty"`
}

// GameResponse is a game together with the events that produced its latest change.
type GameResponse struct {
	Game   *state.GameState `json:"game"`
	Events []game.Event     `json:"events"`
}

// ServeHTTP routes
// POST   /v1/gamestate                    - new game
// GET    /v1/gamestate/{id}               - full game state
// DELETE /v1/gamestate/{id}               - delete game
// POST   /v1/gamestate/{id}/actions       - queue an action
// GET    /v1/gamestate/{id}/quests        - quest journal
// POST   /v1/gamestate/{id}/dialogue      - talk, choose or leave
// GET    /v1/gamestate/{id}/shop/{trader} - trader stock
// POST   /v1/gamestate/{id}/shop/{trader} - buy or sell
// POST   /v1/gamestate/{id}/inventory     - equip, unequip or use
// GET    /v1/gamestate/{id}/events        - websocket event stream
func (h *GameStateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/gamestate"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid game state ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game state ID format")
		return
	}
	log := h.logger.With("game_id", id)

	route := strings.Join(parts[1:], "/")
	switch {
	case route == "":
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}
	case route == "actions":
		h.only(w, r, http.MethodPost, func() { h.handleAction(w, r, id, log) })
	case route == "quests":
		h.only(w, r, http.MethodGet, func() { h.handleQuests(w, r, id) })
	case route == "dialogue":
		h.only(w, r, http.MethodPost, func() { h.handleDialogue(w, r, id, log) })
	case route == "inventory":
		h.only(w, r, http.MethodPost, func() { h.handleInventory(w, r, id, log) })
	case route == "events":
		h.only(w, r, http.MethodGet, func() { h.handleEvents(w, r, id, log) })
	case len(parts) == 3 && parts[1] == "shop" && parts[2] != "":
		switch r.Method {
		case http.MethodGet:
			h.handleShopStock(w, r, id, parts[2])
		case http.MethodPost:
			h.handleShopTrade(w, r, id, parts[2], log)
		default:
			writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, POST")
		}
	default:
		writeError(w, log, http.StatusNotFound, "Unknown game state resource: "+route)
	}
}

func (h *GameStateHandler) only(w http.ResponseWriter, r *http.Request, method string, next func()) {
	if r.Method != method {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only "+method+" is supported.")
		return
	}
	next()
}

func (h *GameStateHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateGameStateRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.CampaignID == "" {
		req.CampaignID = h.defaultCampaign
	}

	res, err := h.processor.NewGame(r.Context(), req.CampaignID)
	if err != nil {
		writeProcessError(w, h.logger, err, "Failed to create game")
		return
	}
	h.logger.Info("Game created", "game_id", res.State.ID, "campaign", req.CampaignID)
	writeJSON(w, h.logger, http.StatusCreated, GameResponse{Game: res.State, Events: res.Events})
}

func (h *GameStateHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, _, err := h.processor.Load(r.Context(), id)
	if err != nil {
		writeProcessError(w, h.logger, err, "Failed to load game")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, gs)
}

func (h *GameStateHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.processor.Delete(r.Context(), id); err != nil {
		writeProcessError(w, h.logger, err, "Failed to delete game")
		return
	}
	h.logger.Info("Game deleted", "game_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameStateHandler) handleQuests(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, eng, err := h.processor.Load(r.Context(), id)
	if err != nil {
		writeProcessError(w, h.logger, err, "Failed to load game")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, eng.Journal(gs))
}

// apply runs a synchronously and writes the error response when it fails.
func (h *GameStateHandler) apply(w http.ResponseWriter, r *http.Request, id uuid.UUID, a game.Action, log *slog.Logger) (*worker.Result, bool) {
	if err := a.Validate(); err != nil {
		writeError(w, log, http.StatusBadRequest, err.Error())
		return nil, false
	}
	res, err := h.processor.Apply(r.Context(), id, uuid.NewString(), a)
	if err != nil {
		writeProcessError(w, log, err, "Failed to apply action")
		return nil, false
	}
	return res, true
}
