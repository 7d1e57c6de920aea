package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jwebster45206/quest-engine/internal/services/events"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleEvents streams the game's channel to a websocket client, one JSON event per
// text message, starting with a "connected" event. The stream ends when the game is
// deleted or the client goes away.
func (h *GameStateHandler) handleEvents(w http.ResponseWriter, r *http.Request, id uuid.UUID, log *slog.Logger) {
	if _, _, err := h.processor.Load(r.Context(), id); err != nil {
		writeProcessError(w, log, err, "Failed to load game")
		return
	}

	sub, err := h.broadcaster.Subscribe(r.Context(), id)
	if err != nil {
		log.Error("Failed to subscribe to game events", "error", err)
		writeError(w, log, http.StatusInternalServerError, "Failed to subscribe to events")
		return
	}
	defer func() {
		if err := sub.Close(); err != nil {
			log.Error("Failed to close pubsub", "error", err)
		}
	}()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	log.Info("Event stream connected", "remote_addr", r.RemoteAddr)

	// Client messages are ignored; reading only detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	hello, _ := json.Marshal(events.Event{Type: "connected", GameID: id.String()})
	if !h.send(conn, websocket.TextMessage, hello, log) {
		return
	}

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()
	msgs := sub.Channel()

	for {
		select {
		case <-closed:
			log.Info("Event stream client disconnected")
			return
		case <-r.Context().Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if !h.send(conn, websocket.TextMessage, []byte(msg.Payload), log) {
				return
			}
			var ev events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err == nil && ev.Type == events.EventTypeGameDeleted {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game deleted")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteTimeout))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				log.Debug("Websocket ping failed", "error", err)
				return
			}
		}
	}
}

func (h *GameStateHandler) send(conn *websocket.Conn, kind int, data []byte, log *slog.Logger) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteMessage(kind, data); err != nil {
		log.Debug("Websocket write failed", "error", err)
		return false
	}
	return true
}
