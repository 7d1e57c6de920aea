package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/shop"
)

// DialogueRequest sets exactly one of NPCID (start talking), Choice (pick an option)
// or Leave (end the conversation).
type DialogueRequest struct {
	NPCID  string `json:"npc_id,omitempty"`
	Choice *int   `json:"choice,omitempty"`
	Leave  bool   `json:"leave,omitempty"`
}

type DialogueResponse struct {
	Dialogue *game.DialogueView `json:"dialogue"`
	Events   []game.Event       `json:"events"`
}

func (h *GameStateHandler) handleDialogue(w http.ResponseWriter, r *http.Request, id uuid.UUID, log *slog.Logger) {
	var req DialogueRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, log, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	set := 0
	var a game.Action
	if req.NPCID != "" {
		set++
		a = game.Action{Type: game.ActTalk, NPCID: req.NPCID}
	}
	if req.Choice != nil {
		set++
		a = game.Action{Type: game.ActChoose, Choice: *req.Choice}
	}
	if req.Leave {
		set++
		a = game.Action{Type: game.ActEndDialogue}
	}
	if set != 1 {
		writeError(w, log, http.StatusBadRequest, "Exactly one of npc_id, choice or leave is required")
		return
	}

	res, ok := h.apply(w, r, id, a, log)
	if !ok {
		return
	}
	writeJSON(w, log, http.StatusOK, DialogueResponse{
		Dialogue: game.ViewOf(&res.State.Dialogue),
		Events:   res.Events,
	})
}

// ShopResponse is a trader's stock as the player sees it.
type ShopResponse struct {
	TraderID string         `json:"trader_id"`
	Gold     int            `json:"gold"`
	Listings []shop.Listing `json:"listings"`
	Events   []game.Event   `json:"events,omitempty"`
}

func (h *GameStateHandler) handleShopStock(w http.ResponseWriter, r *http.Request, id uuid.UUID, traderID string) {
	gs, eng, err := h.processor.Load(r.Context(), id)
	if err != nil {
		writeProcessError(w, h.logger, err, "Failed to load game")
		return
	}
	listings, err := eng.Listings(gs, traderID)
	if err != nil {
		writeProcessError(w, h.logger, err, "Failed to list stock")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, ShopResponse{TraderID: traderID, Gold: gs.Inventory.Gold, Listings: listings})
}

// TradeRequest buys or sells Qty units (default 1) of an item.
type TradeRequest struct {
	Op     string `json:"op"`
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty,omitempty"`
}

func (h *GameStateHandler) handleShopTrade(w http.ResponseWriter, r *http.Request, id uuid.UUID, traderID string, log *slog.Logger) {
	var req TradeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, log, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	a := game.Action{TraderID: traderID, ItemID: req.ItemID, Qty: req.Qty}
	switch req.Op {
	case "buy":
		a.Type = game.ActBuy
	case "sell":
		a.Type = game.ActSell
	default:
		writeError(w, log, http.StatusBadRequest, `op must be "buy" or "sell"`)
		return
	}

	res, ok := h.apply(w, r, id, a, log)
	if !ok {
		return
	}
	listings, err := res.Engine.Listings(res.State, traderID)
	if err != nil {
		writeProcessError(w, log, err, "Failed to list stock")
		return
	}
	writeJSON(w, log, http.StatusOK, ShopResponse{
		TraderID: traderID,
		Gold:     res.State.Inventory.Gold,
		Listings: listings,
		Events:   res.Events,
	})
}

// InventoryRequest equips, unequips or uses one item.
type InventoryRequest struct {
	Op     string `json:"op"`
	ItemID string `json:"item_id"`
}

type InventoryResponse struct {
	Inventory inventory.Inventory `json:"inventory"`
	HP        int                 `json:"hp"`
	Events    []game.Event        `json:"events"`
}

func (h *GameStateHandler) handleInventory(w http.ResponseWriter, r *http.Request, id uuid.UUID, log *slog.Logger) {
	var req InventoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, log, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	a := game.Action{ItemID: req.ItemID}
	switch req.Op {
	case "equip":
		a.Type = game.ActEquip
	case "unequip":
		a.Type = game.ActUnequip
	case "use":
		a.Type = game.ActUseItem
	default:
		writeError(w, log, http.StatusBadRequest, `op must be "equip", "unequip" or "use"`)
		return
	}

	res, ok := h.apply(w, r, id, a, log)
	if !ok {
		return
	}
	writeJSON(w, log, http.StatusOK, InventoryResponse{
		Inventory: res.State.Inventory,
		HP:        res.State.Player.HP(),
		Events:    res.Events,
	})
}
