package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/queue"
)

// QueuedResponse acknowledges an action handed to the workers. Its outcome arrives on
// the event stream under the same request id.
type QueuedResponse struct {
	RequestID string `json:"request_id"`
	GameID    string `json:"game_id"`
	Status    string `json:"status"`
}

func (h *GameStateHandler) handleAction(w http.ResponseWriter, r *http.Request, id uuid.UUID, log *slog.Logger) {
	var a game.Action
	if err := decodeBody(w, r, &a); err != nil {
		writeError(w, log, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := a.Validate(); err != nil {
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	}
	if _, _, err := h.processor.Load(r.Context(), id); err != nil {
		writeProcessError(w, log, err, "Failed to load game")
		return
	}

	req := queue.NewRequest(id, a)
	if err := h.queue.EnqueueRequest(r.Context(), req); err != nil {
		log.Error("Failed to enqueue action", "error", err, "action", a.Type)
		writeError(w, log, http.StatusInternalServerError, "Failed to queue action")
		return
	}
	if err := h.broadcaster.PublishRequestQueued(r.Context(), id, req.RequestID, a.Type); err != nil {
		log.Warn("Failed to publish queued event", "error", err, "request_id", req.RequestID)
	}

	log.Debug("Action queued", "request_id", req.RequestID, "action", a.Type)
	writeJSON(w, log, http.StatusAccepted, QueuedResponse{
		RequestID: req.RequestID,
		GameID:    id.String(),
		Status:    "queued",
	})
}
