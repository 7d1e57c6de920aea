package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/internal/services/queue"
	"github.com/jwebster45206/quest-engine/internal/worker"
	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	mux   *http.ServeMux
	store *storage.MockStorage
	queue *queue.ActionQueue
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := content.Load("../../data/campaigns/greywater")
	require.NoError(t, err)
	store := storage.NewMockStorage()
	store.AddCampaign(c)

	b := events.NewBroadcaster(rdb, logger)
	p := worker.NewProcessor(store, worker.NewEngines(store, logger), worker.NewLocker(rdb, 30*time.Second), b, logger)
	q := queue.NewActionQueue(queue.NewClientFrom(rdb, logger))

	mux := http.NewServeMux()
	mux.Handle("/health", NewHealthHandler(store, logger))
	campaigns := NewCampaignHandler(store, logger)
	mux.Handle("/v1/campaigns", campaigns)
	mux.Handle("/v1/campaigns/", campaigns)
	games := NewGameStateHandler(p, q, b, "greywater", logger)
	mux.Handle("/v1/gamestate", games)
	mux.Handle("/v1/gamestate/", games)

	return &testAPI{mux: mux, store: store, queue: q}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *testAPI) newGame(t *testing.T) uuid.UUID {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/v1/gamestate", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[GameResponse](t, rec).Game.ID
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{worker.ErrGameNotFound, http.StatusNotFound},
		{content.ErrNotFound, http.StatusNotFound},
		{worker.ErrGameBusy, http.StatusConflict},
		{game.ErrInvalidAction, http.StatusBadRequest},
		{game.ErrUnknownNPC, http.StatusNotFound},
		{game.ErrInvalidChoice, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHealthHandler(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	h := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "healthy", h.Components["storage"])

	a.store.SetPingError(errors.New("connection refused"))
	rec = a.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode[HealthResponse](t, rec).Status)

	rec = a.do(t, http.MethodPost, "/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCampaignHandler(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/v1/campaigns", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]content.Summary](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "greywater", list[0].ID)

	rec = a.do(t, http.MethodGet, "/v1/campaigns/greywater", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[CampaignDetail](t, rec)
	assert.Equal(t, "Greywater Hollow", d.Name)
	assert.NotEmpty(t, d.KeyQuests)
	assert.Positive(t, d.Templates)

	rec = a.do(t, http.MethodGet, "/v1/campaigns/atlantis", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGameStateHandler_CRUD(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/v1/gamestate", CreateGameStateRequest{CampaignID: "greywater"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[GameResponse](t, rec)
	id := created.Game.ID
	assert.Equal(t, "greywater", created.Game.CampaignID)
	assert.NotEmpty(t, created.Events)

	rec = a.do(t, http.MethodGet, "/v1/gamestate/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	gs := decode[state.GameState](t, rec)
	assert.Equal(t, id, gs.ID)
	assert.Equal(t, 30, gs.Inventory.Gold)

	rec = a.do(t, http.MethodDelete, "/v1/gamestate/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(t, http.MethodGet, "/v1/gamestate/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.do(t, http.MethodDelete, "/v1/gamestate/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGameStateHandler_BadRequests(t *testing.T) {
	a := newTestAPI(t)
	id := a.newGame(t).String()

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown campaign", http.MethodPost, "/v1/gamestate", CreateGameStateRequest{CampaignID: "atlantis"}, http.StatusNotFound},
		{"malformed create body", http.MethodPost, "/v1/gamestate", "{", http.StatusBadRequest},
		{"unknown create field", http.MethodPost, "/v1/gamestate", `{"scenario":"x"}`, http.StatusBadRequest},
		{"list not supported", http.MethodGet, "/v1/gamestate", nil, http.StatusMethodNotAllowed},
		{"bad id", http.MethodGet, "/v1/gamestate/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown game", http.MethodGet, "/v1/gamestate/" + uuid.NewString(), nil, http.StatusNotFound},
		{"unknown resource", http.MethodGet, "/v1/gamestate/" + id + "/weather", nil, http.StatusNotFound},
		{"patch not supported", http.MethodPatch, "/v1/gamestate/" + id, nil, http.StatusMethodNotAllowed},
		{"get actions", http.MethodGet, "/v1/gamestate/" + id + "/actions", nil, http.StatusMethodNotAllowed},
		{"unknown action type", http.MethodPost, "/v1/gamestate/" + id + "/actions", game.Action{Type: "fly"}, http.StatusBadRequest},
		{"action missing field", http.MethodPost, "/v1/gamestate/" + id + "/actions", game.Action{Type: game.ActTalk}, http.StatusBadRequest},
		{"action for unknown game", http.MethodPost, "/v1/gamestate/" + uuid.NewString() + "/actions", game.Action{Type: game.ActWait, DT: 1}, http.StatusNotFound},
		{"dialogue with two inputs", http.MethodPost, "/v1/gamestate/" + id + "/dialogue", `{"npc_id":"marta","leave":true}`, http.StatusBadRequest},
		{"dialogue with nothing", http.MethodPost, "/v1/gamestate/" + id + "/dialogue", `{}`, http.StatusBadRequest},
		{"choose without dialogue", http.MethodPost, "/v1/gamestate/" + id + "/dialogue", `{"choice":0}`, http.StatusConflict},
		{"talk to stranger", http.MethodPost, "/v1/gamestate/" + id + "/dialogue", DialogueRequest{NPCID: "stranger"}, http.StatusNotFound},
		{"bad trade op", http.MethodPost, "/v1/gamestate/" + id + "/shop/marta_remedies", TradeRequest{Op: "haggle", ItemID: "bread"}, http.StatusBadRequest},
		{"unknown trader stock", http.MethodGet, "/v1/gamestate/" + id + "/shop/nobody", nil, http.StatusNotFound},
		{"bad inventory op", http.MethodPost, "/v1/gamestate/" + id + "/inventory", InventoryRequest{Op: "juggle", ItemID: "bread"}, http.StatusBadRequest},
		{"equip unknown item", http.MethodPost, "/v1/gamestate/" + id + "/inventory", InventoryRequest{Op: "equip", ItemID: "excalibur"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			if rec.Code != http.StatusNoContent {
				assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
			}
		})
	}
}

func TestGameStateHandler_QueuesActions(t *testing.T) {
	a := newTestAPI(t)
	id := a.newGame(t)

	rec := a.do(t, http.MethodPost, "/v1/gamestate/"+id.String()+"/actions", game.Action{Type: game.ActWait, DT: 30})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	resp := decode[QueuedResponse](t, rec)
	assert.Equal(t, "queued", resp.Status)
	assert.Equal(t, id.String(), resp.GameID)

	req, err := a.queue.DequeueRequest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, resp.RequestID, req.RequestID)
	assert.Equal(t, game.ActWait, req.Action.Type)
	assert.Equal(t, 30.0, req.Action.DT)
}

func TestGameStateHandler_Quests(t *testing.T) {
	a := newTestAPI(t)
	id := a.newGame(t)

	rec := a.do(t, http.MethodGet, "/v1/gamestate/"+id.String()+"/quests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	j := decode[game.Journal](t, rec)
	require.NotNil(t, j.Key)
	assert.Equal(t, "report_to_captain", j.Key.ID)
	assert.True(t, j.Key.Available)
	assert.NotNil(t, j.Active)
}

func TestGameStateHandler_DialogueFlow(t *testing.T) {
	a := newTestAPI(t)
	id := a.newGame(t)
	path := "/v1/gamestate/" + id.String() + "/dialogue"

	rec := a.do(t, http.MethodPost, path, DialogueRequest{NPCID: "marta"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[DialogueResponse](t, rec)
	require.NotNil(t, resp.Dialogue)
	assert.Equal(t, "marta", resp.Dialogue.NPCID)
	assert.Contains(t, resp.Dialogue.Choices, "Open shop")
	assert.Equal(t, game.EventDialogueOpened, resp.Events[0].Type)

	shop := -1
	for i, c := range resp.Dialogue.Choices {
		if c == "Open shop" {
			shop = i
		}
	}
	rec = a.do(t, http.MethodPost, path, DialogueRequest{Choice: &shop})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp = decode[DialogueResponse](t, rec)
	assert.Nil(t, resp.Dialogue)
	var opened bool
	for _, ev := range resp.Events {
		opened = opened || ev.Type == game.EventShopOpened
	}
	assert.True(t, opened)

	rec = a.do(t, http.MethodPost, path, DialogueRequest{NPCID: "marta"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(t, http.MethodPost, path, DialogueRequest{Leave: true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[DialogueResponse](t, rec).Dialogue)
}

func TestGameStateHandler_Shop(t *testing.T) {
	a := newTestAPI(t)
	id := a.newGame(t)
	path := "/v1/gamestate/" + id.String() + "/shop/marta_remedies"

	rec := a.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stock := decode[ShopResponse](t, rec)
	assert.Equal(t, 30, stock.Gold)
	require.NotEmpty(t, stock.Listings)
	assert.Equal(t, "healing_potion", stock.Listings[0].ItemID)
	assert.Equal(t, 5, stock.Listings[0].Qty)

	rec = a.do(t, http.MethodPost, path, TradeRequest{Op: "buy", ItemID: "healing_potion"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	bought := decode[ShopResponse](t, rec)
	assert.Equal(t, 5, bought.Gold)
	assert.Equal(t, 4, bought.Listings[0].Qty)
	require.NotEmpty(t, bought.Events)
	assert.Equal(t, game.EventItemBought, bought.Events[0].Type)

	rec = a.do(t, http.MethodPost, path, TradeRequest{Op: "buy", ItemID: "healing_potion"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "gold")

	rec = a.do(t, http.MethodPost, path, TradeRequest{Op: "sell", ItemID: "bread"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 7, decode[ShopResponse](t, rec).Gold)
}

func TestGameStateHandler_Inventory(t *testing.T) {
	a := newTestAPI(t)
	id := a.newGame(t)
	path := "/v1/gamestate/" + id.String() + "/inventory"

	rec := a.do(t, http.MethodPost, path, InventoryRequest{Op: "use", ItemID: "bread"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[InventoryResponse](t, rec)
	assert.Equal(t, 100, resp.HP)
	assert.False(t, resp.Inventory.Has("bread"))
	assert.Equal(t, game.EventItemUsed, resp.Events[0].Type)

	rec = a.do(t, http.MethodPost, path, InventoryRequest{Op: "use", ItemID: "bread"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodPost, path, InventoryRequest{Op: "unequip", ItemID: "rusty_sword"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = a.do(t, http.MethodPost, path, InventoryRequest{Op: "unequip", ItemID: "rusty_sword"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = a.do(t, http.MethodPost, path, InventoryRequest{Op: "equip", ItemID: "rusty_sword"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestGameStateHandler_EventStream(t *testing.T) {
	a := newTestAPI(t)
	id := a.newGame(t)
	srv := httptest.NewServer(a.mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/gamestate/" + id.String() + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() events.Event {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
		var ev events.Event
		require.NoError(t, conn.ReadJSON(&ev))
		return ev
	}
	assert.Equal(t, events.EventType("connected"), read().Type)

	rec := a.do(t, http.MethodPost, "/v1/gamestate/"+id.String()+"/dialogue", DialogueRequest{NPCID: "marta"})
	require.Equal(t, http.StatusOK, rec.Code)

	ev := read()
	assert.Equal(t, events.EventTypeRequestCompleted, ev.Type)
	assert.Equal(t, game.ActTalk, ev.Action)
	assert.Equal(t, 1, ev.Version)
	require.NotEmpty(t, ev.Events)
	assert.Equal(t, game.EventDialogueOpened, ev.Events[0].Type)

	rec = a.do(t, http.MethodDelete, "/v1/gamestate/"+id.String(), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, events.EventTypeGameDeleted, read().Type)
}

func TestGameStateHandler_EventStreamUnknownGame(t *testing.T) {
	a := newTestAPI(t)
	rec := a.do(t, http.MethodGet, "/v1/gamestate/"+uuid.NewString()+"/events", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
