package main

import (
	"testing"

	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand_Actions(t *testing.T) {
	tests := []struct {
		input string
		want  game.Action
	}{
		{"accept", game.Action{Type: game.ActAcceptQuest}},
		{"/decline", game.Action{Type: game.ActDeclineOffer}},
		{"ask marta", game.Action{Type: game.ActRequestOffer, NPCID: "marta"}},
		{"turnin captain_ilse", game.Action{Type: game.ActTurnInQuest, NPCID: "captain_ilse"}},
		{"wait 30", game.Action{Type: game.ActWait, DT: 30}},
		{"reach moon_ridge", game.Action{Type: game.ActReachLocation, LocationID: "moon_ridge"}},
		{"attack goblin_chief 7", game.Action{Type: game.ActAttackEnemy, EnemyID: "goblin_chief", Amount: 7}},
		{"kill goblin_chief", game.Action{Type: game.ActKillEnemy, EnemyID: "goblin_chief"}},
		{"collect moonpetal 3", game.Action{Type: game.ActCollectItem, ItemID: "moonpetal", Qty: 3}},
		{"collect moonpetal", game.Action{Type: game.ActCollectItem, ItemID: "moonpetal", Qty: 1}},
		{"steal bread farmer_joe", game.Action{Type: game.ActStealItem, ItemID: "bread", Owner: "farmer_joe", Qty: 1}},
		{"open cave_cache", game.Action{Type: game.ActOpenChest, ChestID: "cave_cache"}},
		{"hurt 5", game.Action{Type: game.ActTakeDamage, Amount: 5}},
		{"KILL goblin_chief", game.Action{Type: game.ActKillEnemy, EnemyID: "goblin_chief"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := parseCommand(tt.input, commandContext{})
			require.NoError(t, err)
			require.NotNil(t, c.action)
			assert.Equal(t, tt.want, *c.action)
		})
	}
}

func TestParseCommand_Travel(t *testing.T) {
	c, err := parseCommand("go 145 5 65", commandContext{})
	require.NoError(t, err)
	require.NotNil(t, c.action)
	require.NotNil(t, c.action.Position)
	assert.Equal(t, game.ActTravel, c.action.Type)
	assert.Equal(t, 145.0, c.action.Position.X)
	assert.Equal(t, 65.0, c.action.Position.Z)

	_, err = parseCommand("go north 5 65", commandContext{})
	assert.ErrorContains(t, err, "numbers")
}

func TestParseCommand_Dialogue(t *testing.T) {
	c, err := parseCommand("talk marta", commandContext{})
	require.NoError(t, err)
	require.NotNil(t, c.dialogue)
	assert.Equal(t, "marta", c.dialogue.NPCID)

	c, err = parseCommand("2", commandContext{inDialogue: true})
	require.NoError(t, err)
	require.NotNil(t, c.dialogue)
	require.NotNil(t, c.dialogue.Choice)
	assert.Equal(t, 1, *c.dialogue.Choice)

	c, err = parseCommand("choose 1", commandContext{})
	require.NoError(t, err)
	assert.Equal(t, 0, *c.dialogue.Choice)

	_, err = parseCommand("choose 0", commandContext{inDialogue: true})
	assert.Error(t, err)

	_, err = parseCommand("2", commandContext{})
	assert.ErrorContains(t, err, "unknown command")

	c, err = parseCommand("leave", commandContext{inDialogue: true})
	require.NoError(t, err)
	assert.True(t, c.dialogue.Leave)
}

func TestParseCommand_Shop(t *testing.T) {
	c, err := parseCommand("shop marta_remedies", commandContext{})
	require.NoError(t, err)
	assert.Equal(t, "marta_remedies", c.shop)
	assert.Nil(t, c.trade)

	_, err = parseCommand("buy healing_potion", commandContext{})
	assert.ErrorContains(t, err, "open a shop first")

	c, err = parseCommand("buy healing_potion 2", commandContext{trader: "marta_remedies"})
	require.NoError(t, err)
	require.NotNil(t, c.trade)
	assert.Equal(t, "marta_remedies", c.shop)
	assert.Equal(t, "buy", c.trade.Op)
	assert.Equal(t, 2, c.trade.Qty)

	_, err = parseCommand("sell bread -1", commandContext{trader: "marta_remedies"})
	assert.ErrorContains(t, err, "quantity")
}

func TestParseCommand_Inventory(t *testing.T) {
	for _, op := range []string{"equip", "unequip", "use"} {
		c, err := parseCommand(op+" rusty_sword", commandContext{})
		require.NoError(t, err)
		require.NotNil(t, c.inventory)
		assert.Equal(t, op, c.inventory.Op)
		assert.Equal(t, "rusty_sword", c.inventory.ItemID)
	}
}

func TestParseCommand_Errors(t *testing.T) {
	_, err := parseCommand("   ", commandContext{})
	assert.ErrorIs(t, err, errEmptyCommand)

	_, err = parseCommand("tlak marta", commandContext{})
	assert.ErrorContains(t, err, `did you mean "talk"`)

	_, err = parseCommand("xyzzy", commandContext{})
	assert.ErrorContains(t, err, "try help")

	_, err = parseCommand("talk", commandContext{})
	assert.ErrorContains(t, err, "usage: talk <npc>")

	_, err = parseCommand("wait 0", commandContext{})
	assert.ErrorIs(t, err, game.ErrInvalidAction)
}

func TestParseCommand_Local(t *testing.T) {
	for _, verb := range []string{"help", "quests", "state", "copy", "quit"} {
		c, err := parseCommand(verb, commandContext{})
		require.NoError(t, err)
		assert.Equal(t, verb, c.verb)
		assert.Nil(t, c.action)
		assert.Nil(t, c.dialogue)
	}
}

func TestSuggestCommand(t *testing.T) {
	assert.Equal(t, "quests", suggestCommand("qusts"))
	assert.Equal(t, "equip", suggestCommand("equp"))
	assert.Equal(t, "", suggestCommand("fireball"))
}

func TestHelpText(t *testing.T) {
	text := helpText()
	for _, c := range commands {
		assert.Contains(t, text, c.name)
	}
}
