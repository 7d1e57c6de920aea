package main

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/stretchr/testify/assert"
)

func TestDescribeEvent(t *testing.T) {
	tests := []struct {
		ev   game.Event
		want string
	}{
		{game.Event{Type: game.EventQuestOffered, NPCID: "marta", QuestName: "Herb Run", Gold: 40}, "marta offers work: Herb Run (40 gold)"},
		{game.Event{Type: game.EventQuestProgress, QuestName: "Herb Run", Current: 2, Required: 5}, "Herb Run: 2/5"},
		{game.Event{Type: game.EventItemBought, ItemID: "healing_potion", Qty: 1, Gold: 25}, "Bought 1 healing_potion for 25 gold"},
		{game.Event{Type: game.EventItemAdded, ItemID: "bread"}, "+1 bread"},
		{game.Event{Type: game.EventDialogueOpened, Dialogue: &game.DialogueView{Line: "Marta: Mind the jars."}}, "Marta: Mind the jars."},
		{game.Event{Type: game.EventKeyBridgeState, Message: ""}, ""},
		{game.Event{Type: game.EventKeyTurnedIn, NPCID: "captain_ilse", Message: "Clear the Ridge"}, "Reported to captain_ilse: Clear the Ridge"},
		{game.Event{Type: "something_new", Message: "fallback"}, "fallback"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describeEvent(tt.ev), string(tt.ev.Type))
	}
}

func TestDescribeStreamEvent(t *testing.T) {
	lines := describeStreamEvent(events.Event{
		Type: events.EventTypeRequestCompleted,
		Events: []game.Event{
			{Type: game.EventItemUsed, ItemID: "bread"},
			{Type: game.EventKeyBridgeState},
		},
	})
	assert.Equal(t, []string{"Used bread"}, lines)

	lines = describeStreamEvent(events.Event{Type: events.EventTypeRequestFailed, Action: game.ActKillEnemy, Error: "unknown enemy"})
	assert.Equal(t, []string{"kill_enemy refused: unknown enemy"}, lines)

	assert.Nil(t, describeStreamEvent(events.Event{Type: events.EventTypeRequestQueued}))
}

func TestWriteDialogue(t *testing.T) {
	assert.Empty(t, writeDialogue(nil, 40))

	out := writeDialogue(&game.DialogueView{Line: "Marta: Mind the jars.", Choices: []string{"What grows around here?", "Goodbye."}}, 60)
	assert.Contains(t, out, "Mind the jars.")
	assert.Contains(t, out, "What grows around here?")
	assert.Contains(t, out, "2.")
}

func TestWriteMetadata(t *testing.T) {
	gs := &state.GameState{
		ID:         uuid.New(),
		CampaignID: "greywater",
		Inventory: inventory.Inventory{
			Gold:  30,
			Slots: []inventory.Slot{{ItemID: "rusty_sword", Quantity: 1, Equipped: true}},
		},
	}
	j := &game.Journal{
		Active: []*quest.DynamicQuest{{Name: "Herb Run", CurrentCount: 1, RequiredCount: 3}},
		Key:    &game.KeyStatus{KeyQuest: quest.KeyQuest{Title: "Report to the Captain"}, Available: true},
	}
	out := writeMetadata(gs, j)
	assert.Contains(t, out, "greywater")
	assert.Contains(t, out, "Gold: 30")
	assert.Contains(t, out, "rusty_sword x1 (equipped)")
	assert.Contains(t, out, "Report to the Captain (in progress)")
	assert.Contains(t, out, "Herb Run 1/3")
	assert.Contains(t, out, "No consumables left")
	assert.NotContains(t, out, "Wanted")
	assert.False(t, strings.Contains(out, "HP:"))

	j.Standing = game.Standing{Crimes: 2, Wanted: true, Good: true}
	j.HasConsumables = true
	out = writeJournal(j)
	assert.Contains(t, out, "Wanted (2 crimes)")
	assert.NotContains(t, out, "Friend of the village")
	assert.NotContains(t, out, "No consumables")
}
