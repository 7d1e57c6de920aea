package inventory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func no() *bool { b := false; return &b }

func testCatalog(t *testing.T) Catalog {
	t.Helper()
	cat, err := NewCatalog([]Item{
		{ID: "potion", Name: "Potion", Type: TypeConsumable, Stackable: true, MaxStack: 5, HealAmount: 20, BasePrice: 15},
		{ID: "arrow", Name: "Arrow", Type: TypeMaterial, Stackable: true},
		{ID: "sword", Name: "Sword", Type: TypeEquipable, Slot: SlotWeapon, Damage: 4, BasePrice: 40, Starter: true},
		{ID: "axe", Name: "Axe", Type: TypeEquipable, Slot: SlotWeapon, Damage: 6},
		{ID: "helm", Name: "Helm", Type: TypeEquipable, Slot: SlotHelmet, ArmorBonus: 2},
		{ID: "letter", Name: "Letter", Type: TypeQuest, AllowSell: no()},
	})
	require.NoError(t, err)
	return cat
}

func TestNewCatalog_Duplicates(t *testing.T) {
	_, err := NewCatalog([]Item{{ID: "a"}, {ID: "a"}})
	assert.Error(t, err)
	_, err = NewCatalog([]Item{{Name: "nameless"}})
	assert.Error(t, err)
}

func TestItemDefaults(t *testing.T) {
	cat := testCatalog(t)
	assert.Equal(t, DefaultMaxStack, cat["arrow"].StackLimit())
	assert.Equal(t, 1, cat["sword"].StackLimit())
	assert.Equal(t, DefaultBasePrice, cat["arrow"].Price())
	assert.True(t, cat["arrow"].Sellable())
	assert.False(t, cat["letter"].Sellable())
	assert.Equal(t, []Item{cat["sword"]}, cat.Starters())
}

func TestInventory_AddStacks(t *testing.T) {
	cat := testCatalog(t)
	var inv Inventory

	inv.Add(cat["potion"], 3)
	inv.Add(cat["potion"], 4)
	assert.Equal(t, []Slot{{ItemID: "potion", Quantity: 5}, {ItemID: "potion", Quantity: 2}}, inv.Slots)
	assert.Equal(t, 7, inv.Count("potion"))

	inv.Add(cat["sword"], 2)
	assert.Len(t, inv.Slots, 4, "non-stackables take a slot each")

	inv.Add(cat["arrow"], 0)
	assert.False(t, inv.Has("arrow"))
}

func TestInventory_Remove(t *testing.T) {
	cat := testCatalog(t)
	var inv Inventory
	inv.Add(cat["potion"], 6)

	assert.True(t, inv.Remove("potion", 5))
	assert.Equal(t, []Slot{{ItemID: "potion", Quantity: 1}}, inv.Slots)
	assert.False(t, inv.Remove("sword", 1))
}

func TestInventory_Gold(t *testing.T) {
	inv := Inventory{Gold: 10}
	assert.False(t, inv.SpendGold(11))
	assert.Equal(t, 10, inv.Gold)
	assert.True(t, inv.SpendGold(10))
	inv.AddGold(-5)
	assert.Equal(t, 0, inv.Gold)
}

func TestInventory_EquipSwapsSlot(t *testing.T) {
	cat := testCatalog(t)
	var inv Inventory
	inv.Add(cat["sword"], 1)
	inv.Add(cat["axe"], 1)
	inv.Add(cat["helm"], 1)
	inv.Add(cat["potion"], 1)

	swapped, err := inv.Equip(cat, "sword")
	require.NoError(t, err)
	assert.Empty(t, swapped)

	_, err = inv.Equip(cat, "helm")
	require.NoError(t, err)

	swapped, err = inv.Equip(cat, "axe")
	require.NoError(t, err)
	assert.Equal(t, "sword", swapped)

	armor, damage := inv.Bonuses(cat)
	assert.Equal(t, 2, armor)
	assert.Equal(t, 6, damage)

	_, err = inv.Equip(cat, "potion")
	assert.ErrorIs(t, err, ErrNotEquipable)
	_, err = inv.Equip(cat, "ghost")
	assert.ErrorIs(t, err, ErrUnknownItem)

	assert.True(t, inv.Unequip("axe"))
	assert.False(t, inv.Unequip("axe"))
	_, damage = inv.Bonuses(cat)
	assert.Equal(t, 0, damage)
}

func TestInventory_EquipNotOwned(t *testing.T) {
	cat := testCatalog(t)
	var inv Inventory
	_, err := inv.Equip(cat, "helm")
	assert.True(t, errors.Is(err, ErrNotOwned))
}

func TestInventory_Use(t *testing.T) {
	cat := testCatalog(t)
	var inv Inventory
	inv.Add(cat["potion"], 1)
	inv.Add(cat["helm"], 1)

	heal, err := inv.Use(cat, "potion")
	require.NoError(t, err)
	assert.Equal(t, 20, heal)
	assert.False(t, inv.Has("potion"))

	_, err = inv.Use(cat, "potion")
	assert.ErrorIs(t, err, ErrNotOwned)
	_, err = inv.Use(cat, "helm")
	assert.ErrorIs(t, err, ErrNotUsable)
}

func TestInventory_Weapons(t *testing.T) {
	cat := testCatalog(t)
	var inv Inventory
	inv.Add(cat["sword"], 1)
	assert.False(t, inv.HasOtherWeapon(cat, "sword"))
	assert.True(t, inv.HasOtherWeapon(cat, "potion"))

	inv.Add(cat["axe"], 1)
	assert.True(t, inv.HasOtherWeapon(cat, "sword"))
	assert.Equal(t, 2, inv.WeaponCount(cat))
}

func TestInventory_ClearOnDeath(t *testing.T) {
	cat := testCatalog(t)
	var inv Inventory
	inv.Add(cat["potion"], 3)
	inv.Add(cat["helm"], 1)
	inv.Add(cat["letter"], 1)

	inv.ClearOnDeath(cat)
	assert.Equal(t, []Slot{{ItemID: "helm", Quantity: 1}}, inv.Slots)
	assert.True(t, inv.HasType(cat, TypeEquipable))
	assert.False(t, inv.HasType(cat, TypeQuest))
}
