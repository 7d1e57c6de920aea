package game

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/world"
)

// ActionType names something the host reports or the player asks for.
type ActionType string

const (
	ActTravel         ActionType = "travel"
	ActTeleport       ActionType = "teleport"
	ActWait           ActionType = "wait"
	ActReachLocation  ActionType = "reach_location"
	ActAttackEnemy    ActionType = "attack_enemy"
	ActKillEnemy      ActionType = "kill_enemy"
	ActAvoidFight     ActionType = "avoid_fight"
	ActTakeDamage     ActionType = "take_damage"
	ActCrime          ActionType = "crime"
	ActCollectItem    ActionType = "collect_item"
	ActStealItem      ActionType = "steal_item"
	ActOpenChest      ActionType = "open_chest"
	ActTalk           ActionType = "talk"
	ActChoose         ActionType = "choose"
	ActEndDialogue    ActionType = "end_dialogue"
	ActBuy            ActionType = "buy"
	ActSell           ActionType = "sell"
	ActEquip          ActionType = "equip"
	ActUnequip        ActionType = "unequip"
	ActUseItem        ActionType = "use_item"
	ActAcceptQuest    ActionType = "accept_quest"
	ActTurnInQuest    ActionType = "turn_in_quest"
	ActHelpVillagers  ActionType = "help_villagers"
	ActSetCheckpoint  ActionType = "set_checkpoint"
	ActRequestOffer   ActionType = "request_offer"
	ActDeclineOffer   ActionType = "decline_offer"
	ActAbandonQuest   ActionType = "abandon_quest"
	ActSetWorldFlag   ActionType = "set_flag"
	ActClearWorldFlag ActionType = "clear_flag"
)

var ErrInvalidAction = errors.New("invalid action")

// Action is one input to the engine. Only the fields its type needs are read.
type Action struct {
	Type ActionType `json:"type"`

	Position   *world.Vec3 `json:"position,omitempty"`
	DT         float64     `json:"dt,omitempty"` // seconds
	LocationID string      `json:"location_id,omitempty"`

	EnemyID  string `json:"enemy_id,omitempty"`
	NPCID    string `json:"npc_id,omitempty"`
	TraderID string `json:"trader_id,omitempty"`
	ItemID   string `json:"item_id,omitempty"`
	ChestID  string `json:"chest_id,omitempty"`
	QuestID  string `json:"quest_id,omitempty"`
	Owner    string `json:"owner,omitempty"`
	Flag     string `json:"flag,omitempty"`

	Qty    int `json:"qty,omitempty"`
	Amount int `json:"amount,omitempty"`
	Choice int `json:"choice,omitempty"`
}

// Validate checks the fields the action type requires.
func (a Action) Validate() error {
	need := func(name, v string) error {
		if v == "" {
			return fmt.Errorf("%w: %s requires %s", ErrInvalidAction, a.Type, name)
		}
		return nil
	}
	switch a.Type {
	case ActTravel, ActTeleport:
		if a.Position == nil {
			return fmt.Errorf("%w: %s requires position", ErrInvalidAction, a.Type)
		}
		if a.DT < 0 {
			return fmt.Errorf("%w: negative dt", ErrInvalidAction)
		}
	case ActWait:
		if a.DT <= 0 {
			return fmt.Errorf("%w: wait requires a positive dt", ErrInvalidAction)
		}
	case ActReachLocation:
		return need("location_id", a.LocationID)
	case ActAttackEnemy, ActKillEnemy:
		return need("enemy_id", a.EnemyID)
	case ActTakeDamage:
		if a.Amount <= 0 && a.EnemyID == "" {
			return fmt.Errorf("%w: take_damage requires amount or enemy_id", ErrInvalidAction)
		}
	case ActCollectItem, ActStealItem, ActEquip, ActUnequip, ActUseItem:
		return need("item_id", a.ItemID)
	case ActOpenChest:
		return need("chest_id", a.ChestID)
	case ActTalk, ActTurnInQuest:
		return need("npc_id", a.NPCID)
	case ActChoose:
		if a.Choice < 0 {
			return fmt.Errorf("%w: negative choice", ErrInvalidAction)
		}
	case ActBuy, ActSell:
		if err := need("trader_id", a.TraderID); err != nil {
			return err
		}
		return need("item_id", a.ItemID)
	case ActSetCheckpoint:
		return need("location_id", a.LocationID)
	case ActSetWorldFlag, ActClearWorldFlag:
		return need("flag", a.Flag)
	case ActAbandonQuest:
		return need("quest_id", a.QuestID)
	case ActAvoidFight, ActCrime, ActEndDialogue, ActAcceptQuest, ActHelpVillagers,
		ActRequestOffer, ActDeclineOffer:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAction, a.Type)
	}
	return nil
}
