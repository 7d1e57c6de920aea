package game

import (
	"github.com/jwebster45206/quest-engine/pkg/dialogue"
)

type EventType string

const (
	EventQuestOffered   EventType = "quest_offered"
	EventQuestAssigned  EventType = "quest_assigned"
	EventQuestProgress  EventType = "quest_progress"
	EventQuestCompleted EventType = "quest_completed"
	EventQuestFailed    EventType = "quest_failed"
	EventQuestTurnedIn  EventType = "quest_turned_in"
	EventQuestDeclined  EventType = "quest_declined"

	EventKeyBridgeState       EventType = "key_bridge_state"
	EventKeyAvailable         EventType = "key_available"
	EventKeyObjectiveComplete EventType = "key_objective_complete"
	EventKeyTurnedIn          EventType = "key_turned_in"
	EventKeyCompleted         EventType = "key_completed"
	EventKeyAllCompleted      EventType = "key_all_completed"

	EventItemAdded    EventType = "item_added"
	EventItemRemoved  EventType = "item_removed"
	EventItemBought   EventType = "item_bought"
	EventItemSold     EventType = "item_sold"
	EventItemEquipped EventType = "item_equipped"
	EventItemUsed     EventType = "item_used"
	EventGoldChanged  EventType = "gold_changed"

	EventDialogueOpened   EventType = "dialogue_opened"
	EventDialogueAdvanced EventType = "dialogue_advanced"
	EventDialogueClosed   EventType = "dialogue_closed"
	EventShopOpened       EventType = "shop_opened"

	EventEnemyDamaged  EventType = "enemy_damaged"
	EventEnemyKilled   EventType = "enemy_killed"
	EventPlayerDamaged EventType = "player_damaged"
	EventPlayerHealed  EventType = "player_healed"
	EventPlayerDied    EventType = "player_died"
	EventCrime         EventType = "crime_committed"
	EventLootFound     EventType = "loot_found"
	EventCheckpoint    EventType = "checkpoint_set"
)

// DialogueView is the conversation as a host renders it.
type DialogueView struct {
	NPCID   string   `json:"npc_id,omitempty"`
	NPCName string   `json:"npc_name"`
	Line    string   `json:"line"`
	Choices []string `json:"choices,omitempty"`
	// AutoClose is set for lines that disappear on their own.
	AutoClose bool `json:"auto_close,omitempty"`
}

// Event is one thing that happened while applying an action. Only the fields relevant
// to its type are set.
type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message,omitempty"`

	QuestID   string `json:"quest_id,omitempty"`
	QuestName string `json:"quest_name,omitempty"`
	KeyID     string `json:"key_id,omitempty"`
	ItemID    string `json:"item_id,omitempty"`
	NPCID     string `json:"npc_id,omitempty"`
	EnemyID   string `json:"enemy_id,omitempty"`
	TraderID  string `json:"trader_id,omitempty"`

	Qty         int `json:"qty,omitempty"`
	Gold        int `json:"gold,omitempty"`
	Current     int `json:"current,omitempty"`
	Required    int `json:"required,omitempty"`
	BridgesLeft int `json:"bridges_left,omitempty"`
	HP          int `json:"hp,omitempty"`

	Dialogue *DialogueView `json:"dialogue,omitempty"`
}

// ViewOf renders the open node of a session, or nil when nothing is open.
func ViewOf(s *dialogue.Session) *DialogueView {
	n := s.Node()
	if n == nil {
		return nil
	}
	v := &DialogueView{NPCID: s.OwnerID, NPCName: s.Def.NPCName, Line: n.Line, AutoClose: s.AutoCloseAt > 0}
	for _, c := range n.Choices {
		v.Choices = append(v.Choices, c.Label)
	}
	return v
}
