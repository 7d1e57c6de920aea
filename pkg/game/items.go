package game

import (
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/loot"
)

func (r *run) grant(itemID string, qty int) error {
	it, ok := r.c.Catalog().Get(itemID)
	if !ok {
		return fmt.Errorf("%w: %s", inventory.ErrUnknownItem, itemID)
	}
	r.gs.Inventory.Add(it, qty)
	r.emit(Event{Type: EventItemAdded, ItemID: itemID, Qty: qty, Message: it.Name})
	return nil
}

func (r *run) collect(itemID string, qty int) error {
	if err := r.grant(itemID, qty); err != nil {
		return err
	}
	for range qty {
		r.progress(r.gs.Quests.ReportCollect(itemID))
	}
	return nil
}

// steal takes an item from owner. Traders owned by that owner may ban the player.
func (r *run) steal(itemID, owner string, qty int) error {
	if err := r.grant(itemID, qty); err != nil {
		return err
	}
	r.gs.Tags.RecordTheft(owner)
	r.crime("stole " + r.c.ItemName(itemID))
	for range qty {
		r.progress(r.gs.Quests.ReportSteal(itemID))
	}
	return nil
}

func (r *run) openChest(id string) error {
	ch, ok := r.c.Chest(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChest, id)
	}
	if r.gs.Chests.IsOpened(ch.Key()) {
		return fmt.Errorf("%w: %s", loot.ErrAlreadyOpened, id)
	}
	res, err := r.gs.Chests.Open(ch, r.rng, r.c.ItemName)
	if err != nil {
		return err
	}
	for _, d := range res.Drops {
		if err := r.collect(d.ItemID, d.Qty); err != nil {
			return err
		}
	}
	if res.Gold > 0 {
		r.gs.Inventory.AddGold(res.Gold)
	}
	if res.Secret {
		r.gs.Activity.RegisterSecretFound()
	}
	r.emit(Event{Type: EventLootFound, Message: res.Summary, Gold: res.Gold})
	kind := r.gs.Dialogue.BeginOneLiner("Chest", res.Summary, "", r.gs.Clock+chestDuration, true)
	r.dialogueEvent(kind, "")
	return nil
}

// buy purchases up to qty units, stopping at the first failure after the first unit.
func (r *run) buy(traderID, itemID string, qty int) error {
	s, ok := r.gs.Shop(r.c, traderID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTrader, traderID)
	}
	bought, spent := 0, 0
	for range qty {
		price, err := s.Buy(&r.gs.Inventory, itemID)
		if err != nil {
			if bought == 0 {
				return err
			}
			break
		}
		bought++
		spent += price
	}
	r.emit(Event{Type: EventItemBought, TraderID: traderID, ItemID: itemID, Qty: bought, Gold: spent})
	return nil
}

func (r *run) sell(traderID, itemID string, qty int) error {
	s, ok := r.gs.Shop(r.c, traderID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTrader, traderID)
	}
	sold, earned := 0, 0
	for range qty {
		price, err := s.Sell(&r.gs.Inventory, itemID)
		if err != nil {
			if sold == 0 {
				return err
			}
			break
		}
		sold++
		earned += price
	}
	// selling may have removed an equipped item
	if err := r.gs.RefreshEquipment(r.c.Catalog()); err != nil {
		return err
	}
	r.emit(Event{Type: EventItemSold, TraderID: traderID, ItemID: itemID, Qty: sold, Gold: earned})
	return nil
}

func (r *run) equip(itemID string) error {
	cat := r.c.Catalog()
	swapped, err := r.gs.Inventory.Equip(cat, itemID)
	if err != nil {
		return err
	}
	if err := r.gs.RefreshEquipment(cat); err != nil {
		return err
	}
	r.emit(Event{Type: EventItemEquipped, ItemID: itemID, Message: swapped})
	return nil
}

func (r *run) unequip(itemID string) error {
	if !r.gs.Inventory.Unequip(itemID) {
		return fmt.Errorf("%w: %s", ErrNotEquipped, itemID)
	}
	return r.gs.RefreshEquipment(r.c.Catalog())
}

func (r *run) use(itemID string) error {
	heal, err := r.gs.Inventory.Use(r.c.Catalog(), itemID)
	if err != nil {
		return err
	}
	r.emit(Event{Type: EventItemUsed, ItemID: itemID, Qty: 1})
	if healed := r.gs.Player.Heal(heal); healed > 0 {
		r.emit(Event{Type: EventPlayerHealed, ItemID: itemID, Qty: healed, HP: r.gs.Player.HP()})
	}
	return nil
}
