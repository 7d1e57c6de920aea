package game

import (
	"errors"

	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/loot"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/shop"
)

// ErrorKind sorts Apply errors for transports.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalid
	KindNotFound
	KindRefused
)

var (
	notFound = []error{
		ErrUnknownEnemy, ErrUnknownNPC, ErrUnknownTrader, ErrUnknownChest,
		ErrUnknownLocation, ErrUnknownCheckpoint,
		inventory.ErrUnknownItem, shop.ErrUnknownItem, quest.ErrQuestNotFound,
	}
	refused = []error{
		ErrEnemyDefeated, ErrNoDialogue, ErrInvalidChoice, ErrNotEquipped, ErrNothingToTurnIn, ErrNoOffer,
		inventory.ErrNotOwned, inventory.ErrNotEquipable, inventory.ErrNotUsable,
		shop.ErrRefused, shop.ErrOutOfStock, shop.ErrNotEnoughGold, shop.ErrNotOwned,
		shop.ErrLastWeapon, shop.ErrNotSellable,
		quest.ErrNoPendingOffer, quest.ErrWrongGiver, quest.ErrQuestIncomplete,
		loot.ErrAlreadyOpened,
	}
)

// Classify reports what kind of failure err is.
func Classify(err error) ErrorKind {
	if errors.Is(err, ErrInvalidAction) || errors.Is(err, ErrWrongCampaign) {
		return KindInvalid
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			return KindNotFound
		}
	}
	for _, target := range refused {
		if errors.Is(err, target) {
			return KindRefused
		}
	}
	return KindInternal
}
