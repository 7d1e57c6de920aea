package shop

import (
	"errors"
	"fmt"
	"math"

	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

type TraderType string

const (
	TraderBandit       TraderType = "bandit"
	TraderBlacksmith   TraderType = "blacksmith"
	TraderApothecary   TraderType = "apothecary"
	TraderTavernKeeper TraderType = "tavern_keeper"
	TraderFarmer       TraderType = "farmer"
)

const DefaultSellback = 0.5

// Refusal lines
const (
	RefuseHonest   = "What do you want? Get outta here."
	RefuseCriminal = "We don't serve your kind here."
	RefuseThief    = "You stole from me. Get lost before I call the guards!"
)

var (
	ErrRefused       = errors.New("trader refuses to deal")
	ErrOutOfStock    = errors.New("out of stock")
	ErrNotEnoughGold = errors.New("not enough gold")
	ErrNotOwned      = errors.New("item not in inventory")
	ErrLastWeapon    = errors.New("cannot sell your last weapon")
	ErrNotSellable   = errors.New("item cannot be sold")
	ErrUnknownItem   = errors.New("unknown item")
)

type StockEntry struct {
	ItemID     string `json:"item" yaml:"item"`
	Price      int    `json:"price,omitempty" yaml:"price,omitempty"`
	InitialQty int    `json:"qty" yaml:"qty"`
}

// Trader is a shop definition from campaign content.
type Trader struct {
	ID                 string       `json:"id" yaml:"id"`
	Name               string       `json:"name" yaml:"name"`
	Type               TraderType   `json:"type" yaml:"type"`
	Stock              []StockEntry `json:"stock" yaml:"stock"`
	SellbackMultiplier float64      `json:"sellback_multiplier,omitempty" yaml:"sellback_multiplier,omitempty"`
	RefusalText        string       `json:"refusal_text,omitempty" yaml:"refusal_text,omitempty"`
	// TheftBanOwner bans the player from a farmer once they steal from this owner.
	TheftBanOwner string `json:"theft_ban_owner,omitempty" yaml:"theft_ban_owner,omitempty"`
}

// Quantities is the live stock count per item id for one trader.
type Quantities map[string]int

func (t Trader) InitialQuantities() Quantities {
	q := make(Quantities, len(t.Stock))
	for _, s := range t.Stock {
		q[s.ItemID] = max(0, s.InitialQty)
	}
	return q
}

func (t Trader) IsBannedForTheft(tags *world.Tags) bool {
	return t.Type == TraderFarmer && t.TheftBanOwner != "" && tags != nil && tags.StoleFrom(t.TheftBanOwner)
}

// CanServe reports whether the trader deals with the player, and the refusal line if not.
func (t Trader) CanServe(tags *world.Tags) (bool, string) {
	criminal := tags != nil && tags.IsCriminal()
	switch t.Type {
	case TraderBandit:
		if !criminal {
			return false, RefuseHonest
		}
	case TraderBlacksmith, TraderApothecary, TraderTavernKeeper:
		if criminal {
			return false, RefuseCriminal
		}
	case TraderFarmer:
		if t.IsBannedForTheft(tags) {
			return false, RefuseThief
		}
	}
	return true, ""
}

// Price is the stock price for the item, else its base price; never below 1.
func (t Trader) Price(it inventory.Item) int {
	for _, s := range t.Stock {
		if s.ItemID == it.ID && s.Price > 0 {
			return s.Price
		}
	}
	return max(1, it.Price())
}

// SellPrice is what the trader pays for one unit.
func (t Trader) SellPrice(it inventory.Item) int {
	mult := t.SellbackMultiplier
	if mult <= 0 {
		mult = DefaultSellback
	}
	return max(1, int(math.Round(float64(t.Price(it))*mult)))
}

// Shop binds a trader to its live stock and the item catalog.
type Shop struct {
	Trader  Trader
	Qty     Quantities
	Catalog inventory.Catalog
	Tags    *world.Tags
}

// Buy moves one unit of itemID from the trader to inv and returns the price paid.
func (s *Shop) Buy(inv *inventory.Inventory, itemID string) (int, error) {
	if ok, line := s.Trader.CanServe(s.Tags); !ok {
		return 0, fmt.Errorf("%w: %s", ErrRefused, line)
	}
	it, ok := s.Catalog[itemID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	if s.Qty[itemID] <= 0 {
		return 0, ErrOutOfStock
	}
	price := s.Trader.Price(it)
	if !inv.SpendGold(price) {
		return 0, ErrNotEnoughGold
	}
	s.Qty[itemID]--
	inv.Add(it, 1)
	return price, nil
}

// Sell moves one unit of itemID from inv to the trader and returns the gold received.
func (s *Shop) Sell(inv *inventory.Inventory, itemID string) (int, error) {
	if ok, line := s.Trader.CanServe(s.Tags); !ok {
		return 0, fmt.Errorf("%w: %s", ErrRefused, line)
	}
	it, ok := s.Catalog[itemID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	if !inv.Has(itemID) {
		return 0, ErrNotOwned
	}
	if !it.Sellable() {
		return 0, ErrNotSellable
	}
	if it.IsWeapon() && !inv.HasOtherWeapon(s.Catalog, itemID) {
		return 0, ErrLastWeapon
	}
	price := s.Trader.SellPrice(it)
	inv.Remove(itemID, 1)
	inv.AddGold(price)
	if s.Qty == nil {
		s.Qty = Quantities{}
	}
	s.Qty[itemID]++
	return price, nil
}

// Listing is one row of the shop window.
type Listing struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
	Price  int    `json:"price"`
	Qty    int    `json:"qty"`
}

// Listings returns the stock in trader order followed by items sold back to the trader.
func (s *Shop) Listings() []Listing {
	seen := map[string]bool{}
	var out []Listing
	add := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		it, ok := s.Catalog[id]
		if !ok {
			return
		}
		out = append(out, Listing{ItemID: id, Name: it.Name, Price: s.Trader.Price(it), Qty: s.Qty[id]})
	}
	for _, e := range s.Trader.Stock {
		add(e.ItemID)
	}
	for _, id := range s.Catalog.IDs() {
		if s.Qty[id] > 0 {
			add(id)
		}
	}
	return out
}
