package inventory

import (
	"fmt"
	"sort"
)

type ItemType string

const (
	TypeConsumable ItemType = "consumable"
	TypeEquipable  ItemType = "equipable"
	TypeQuest      ItemType = "quest"
	TypeTool       ItemType = "tool"
	TypeMaterial   ItemType = "material"
)

type EquipSlot string

const (
	SlotWeapon     EquipSlot = "weapon"
	SlotHelmet     EquipSlot = "helmet"
	SlotChestplate EquipSlot = "chestplate"
	SlotLeggings   EquipSlot = "leggings"
	SlotBoots      EquipSlot = "boots"
)

const (
	DefaultMaxStack  = 99
	DefaultBasePrice = 10
)

// Item is a static item definition from campaign content.
type Item struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Type        ItemType  `json:"type" yaml:"type"`
	Stackable   bool      `json:"stackable" yaml:"stackable"`
	MaxStack    int       `json:"max_stack,omitempty" yaml:"max_stack,omitempty"`
	HealAmount  int       `json:"heal_amount,omitempty" yaml:"heal_amount,omitempty"`
	Slot        EquipSlot `json:"slot,omitempty" yaml:"slot,omitempty"`
	Damage      int       `json:"damage,omitempty" yaml:"damage,omitempty"`
	ArmorBonus  int       `json:"armor_bonus,omitempty" yaml:"armor_bonus,omitempty"`
	BasePrice   int       `json:"base_price,omitempty" yaml:"base_price,omitempty"`
	// AllowSell is a pointer so content can leave it out and default to true.
	AllowSell *bool `json:"allow_sell,omitempty" yaml:"allow_sell,omitempty"`
	Starter   bool  `json:"starter,omitempty" yaml:"starter,omitempty"`
}

func (it Item) StackLimit() int {
	if !it.Stackable {
		return 1
	}
	if it.MaxStack <= 0 {
		return DefaultMaxStack
	}
	return it.MaxStack
}

func (it Item) Price() int {
	if it.BasePrice <= 0 {
		return DefaultBasePrice
	}
	return it.BasePrice
}

func (it Item) Sellable() bool {
	return it.AllowSell == nil || *it.AllowSell
}

func (it Item) IsWeapon() bool {
	return it.Type == TypeEquipable && it.Slot == SlotWeapon
}

// Catalog indexes item definitions by id.
type Catalog map[string]Item

func NewCatalog(items []Item) (Catalog, error) {
	c := make(Catalog, len(items))
	for _, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("item %q has no id", it.Name)
		}
		if _, dup := c[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %q", it.ID)
		}
		c[it.ID] = it
	}
	return c, nil
}

func (c Catalog) Get(id string) (Item, bool) {
	it, ok := c[id]
	return it, ok
}

// IDs returns the sorted item ids.
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Starters returns the items a new player begins with, sorted by id.
func (c Catalog) Starters() []Item {
	var out []Item
	for _, id := range c.IDs() {
		if c[id].Starter {
			out = append(out, c[id])
		}
	}
	return out
}
