package inventory

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownItem  = errors.New("unknown item")
	ErrNotOwned     = errors.New("item not in inventory")
	ErrNotEquipable = errors.New("item cannot be equipped")
	ErrNotUsable    = errors.New("item cannot be used")
)

type Slot struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Equipped bool   `json:"equipped,omitempty"`
}

// Inventory is the player's bag and purse. Item definitions are looked up in a Catalog
// passed to the methods that need them, so the inventory itself stays plain data.
type Inventory struct {
	Slots []Slot `json:"slots"`
	Gold  int    `json:"gold"`
}

// Add stores qty of it, topping up partial stacks before opening new ones.
func (inv *Inventory) Add(it Item, qty int) {
	if qty <= 0 {
		return
	}
	limit := it.StackLimit()
	if it.Stackable {
		for i := range inv.Slots {
			s := &inv.Slots[i]
			if s.ItemID != it.ID || s.Quantity >= limit {
				continue
			}
			n := min(limit-s.Quantity, qty)
			s.Quantity += n
			qty -= n
			if qty == 0 {
				return
			}
		}
	}
	for qty > 0 {
		n := min(limit, qty)
		inv.Slots = append(inv.Slots, Slot{ItemID: it.ID, Quantity: n})
		qty -= n
	}
}

// Remove takes qty from the first slot holding itemID, dropping the slot when it empties.
func (inv *Inventory) Remove(itemID string, qty int) bool {
	for i := range inv.Slots {
		if inv.Slots[i].ItemID != itemID {
			continue
		}
		inv.Slots[i].Quantity -= qty
		if inv.Slots[i].Quantity <= 0 {
			inv.Slots = slices.Delete(inv.Slots, i, i+1)
		}
		return true
	}
	return false
}

func (inv *Inventory) Count(itemID string) int {
	n := 0
	for _, s := range inv.Slots {
		if s.ItemID == itemID {
			n += s.Quantity
		}
	}
	return n
}

func (inv *Inventory) Has(itemID string) bool {
	return inv.Count(itemID) > 0
}

func (inv *Inventory) HasType(cat Catalog, t ItemType) bool {
	for _, s := range inv.Slots {
		if it, ok := cat[s.ItemID]; ok && it.Type == t {
			return true
		}
	}
	return false
}

func (inv *Inventory) AddGold(amount int) {
	if amount > 0 {
		inv.Gold += amount
	}
}

// SpendGold reports false and leaves the purse alone when there is not enough.
func (inv *Inventory) SpendGold(amount int) bool {
	if amount < 0 || inv.Gold < amount {
		return false
	}
	inv.Gold -= amount
	return true
}

// WeaponCount counts weapon units carried.
func (inv *Inventory) WeaponCount(cat Catalog) int {
	n := 0
	for _, s := range inv.Slots {
		if it, ok := cat[s.ItemID]; ok && it.IsWeapon() {
			n += s.Quantity
		}
	}
	return n
}

// HasOtherWeapon reports whether the player would still hold a weapon after giving up
// one unit of itemID.
func (inv *Inventory) HasOtherWeapon(cat Catalog, itemID string) bool {
	n := inv.WeaponCount(cat)
	if it, ok := cat[itemID]; ok && it.IsWeapon() && inv.Has(itemID) {
		n--
	}
	return n > 0
}

// ClearOnDeath drops everything except equipable items.
func (inv *Inventory) ClearOnDeath(cat Catalog) {
	inv.Slots = slices.DeleteFunc(inv.Slots, func(s Slot) bool {
		it, ok := cat[s.ItemID]
		return !ok || it.Type != TypeEquipable
	})
}

// Equip equips itemID, unequipping whatever held the same slot. It returns the id of
// the item that was swapped out, if any.
func (inv *Inventory) Equip(cat Catalog, itemID string) (string, error) {
	it, ok := cat[itemID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	if it.Type != TypeEquipable || it.Slot == "" {
		return "", fmt.Errorf("%w: %s", ErrNotEquipable, itemID)
	}
	idx := slices.IndexFunc(inv.Slots, func(s Slot) bool { return s.ItemID == itemID })
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrNotOwned, itemID)
	}
	if inv.Slots[idx].Equipped {
		return "", nil
	}

	var swapped string
	for i := range inv.Slots {
		s := &inv.Slots[i]
		if !s.Equipped {
			continue
		}
		if other, ok := cat[s.ItemID]; ok && other.Slot == it.Slot {
			s.Equipped = false
			swapped = s.ItemID
		}
	}
	inv.Slots[idx].Equipped = true
	return swapped, nil
}

func (inv *Inventory) Unequip(itemID string) bool {
	for i := range inv.Slots {
		if inv.Slots[i].ItemID == itemID && inv.Slots[i].Equipped {
			inv.Slots[i].Equipped = false
			return true
		}
	}
	return false
}

// Equipped returns the equipped item per slot.
func (inv *Inventory) Equipped(cat Catalog) map[EquipSlot]Item {
	out := make(map[EquipSlot]Item)
	for _, s := range inv.Slots {
		if !s.Equipped {
			continue
		}
		if it, ok := cat[s.ItemID]; ok {
			out[it.Slot] = it
		}
	}
	return out
}

// Bonuses sums armor and damage from equipped items.
func (inv *Inventory) Bonuses(cat Catalog) (armor, damage int) {
	for _, it := range inv.Equipped(cat) {
		armor += it.ArmorBonus
		damage += it.Damage
	}
	return armor, damage
}

// Use consumes one unit of a consumable and returns how much it heals.
func (inv *Inventory) Use(cat Catalog, itemID string) (int, error) {
	it, ok := cat[itemID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	if it.Type != TypeConsumable {
		return 0, fmt.Errorf("%w: %s", ErrNotUsable, itemID)
	}
	if !inv.Remove(itemID, 1) {
		return 0, fmt.Errorf("%w: %s", ErrNotOwned, itemID)
	}
	return it.HealAmount, nil
}
