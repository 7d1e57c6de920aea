package dialogue

import (
	"testing"

	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseDef() *Definition {
	return &Definition{
		ID:      "marta",
		NPCName: "Marta",
		Nodes: []Node{
			{ID: "start", Line: "Welcome.", Choices: []Choice{
				{Label: "Tell me about the town", Next: "town"},
				{Label: "Open shop", Action: ActionOpenShop},
				{Label: "Bye", Action: ActionClose},
			}},
			{ID: "town", Line: "It's quiet.", Choices: []Choice{
				{Label: "Back", Next: "start"},
				{Label: "Hmm", Next: "missing"},
			}},
		},
	}
}

func labels(n *Node) []string {
	var out []string
	for _, c := range n.Choices {
		out = append(out, c.Label)
	}
	return out
}

func TestCleanName(t *testing.T) {
	tests := map[string]string{
		"Guard(Clone)":  "Guard",
		"  Marta  ":     "Marta",
		"":              "NPC",
		"(Clone)":       "NPC",
		"Old (Clone) X": "Old  X",
	}
	for in, want := range tests {
		if got := CleanName(in); got != want {
			t.Errorf("CleanName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSession_Navigation(t *testing.T) {
	var s Session
	assert.Equal(t, EventOpened, s.Begin(baseDef(), "marta", "", 0))
	assert.Equal(t, "start", s.NodeID)

	c, ev, ok := s.Choose(0)
	require.True(t, ok)
	assert.Equal(t, "Tell me about the town", c.Label)
	assert.Equal(t, EventAdvanced, ev)
	assert.Equal(t, "town", s.Node().ID)

	_, _, ok = s.Choose(9)
	assert.False(t, ok, "out of range choice")

	_, ev, _ = s.Choose(1)
	assert.Equal(t, EventClosed, ev, "missing next node ends the conversation")
	assert.False(t, s.Active())
}

func TestSession_ServiceActionsClose(t *testing.T) {
	var s Session
	s.Begin(baseDef(), "marta", "", 0)
	c, ev, ok := s.Choose(1)
	require.True(t, ok)
	assert.Equal(t, ActionOpenShop, c.Action)
	assert.Equal(t, EventClosed, ev)
	assert.False(t, s.Active())
}

func TestSession_BeginTwiceAdvances(t *testing.T) {
	var s Session
	s.Begin(baseDef(), "marta", "", 0)
	assert.Equal(t, EventAdvanced, s.Begin(baseDef(), "marta", "town", 0))
	assert.Equal(t, EventClosed, s.Begin(baseDef(), "marta", "nowhere", 0))
}

func TestSession_OneLiner(t *testing.T) {
	var s Session
	s.BeginOneLiner("Guard", "Halt!", "guard", 0, false)
	require.True(t, s.Active())
	assert.Equal(t, []string{"OK"}, labels(s.Node()))

	s.BeginOneLiner("Guard", "Move along.", "guard", 12, false)
	assert.Empty(t, s.Node().Choices, "auto-closing lines have no button")
	assert.False(t, s.Tick(11))
	assert.True(t, s.Tick(12))
	assert.False(t, s.Active())

	s.BeginOneLiner("Guard", "...", "guard", 0, true)
	assert.Empty(t, s.Node().Choices)
}

func TestBuildForNPC_DoesNotMutateBase(t *testing.T) {
	base := baseDef()
	BuildForNPC(base, NPCContext{NPCID: "marta", NPCName: "Marta", HasTrader: true})
	assert.Len(t, base.Nodes, 2)
	assert.Len(t, base.Nodes[0].Choices, 3)
}

func TestBuildForNPC_ShopAndClose(t *testing.T) {
	def := BuildForNPC(baseDef(), NPCContext{NPCID: "marta", NPCName: "Marta", HasTrader: true})
	start := def.FindNode("start")
	assert.Equal(t, []string{"Tell me about the town", "Bye", "Open shop"}, labels(start))
	for _, id := range []string{NodeOffer, NodeAccept, NodeTurnIn, NodeKeyTalk, NodeKeyTurnIn} {
		assert.NotNil(t, def.FindNode(id), id)
	}

	noShop := BuildForNPC(baseDef(), NPCContext{NPCID: "marta", NPCName: "Marta"})
	assert.NotContains(t, labels(noShop.FindNode("start")), "Open shop")
}

func TestBuildForNPC_PendingOfferAndTurnIn(t *testing.T) {
	pending := &quest.DynamicQuest{ID: "p", Name: "Herbs", Type: quest.TypeCollect, GiverID: "marta",
		TargetItem: "herb", RequiredCount: 3, GoldReward: 20}
	done := &quest.DynamicQuest{ID: "d", Name: "Wolves", GiverID: "marta", Status: quest.StatusCompleted, GoldReward: 15}

	def := BuildForNPC(nil, NPCContext{NPCID: "marta", NPCName: "Marta(Clone)", Pending: pending, TurnIn: done})
	assert.Equal(t, "Marta", def.NPCName)
	start := def.FindNode("start")
	assert.Equal(t, []string{labelTurnIn, labelOffer, labelClose}, labels(start))
	assert.Equal(t, NodeAccept, start.Choices[1].Next)

	offer := def.FindNode(NodeOffer)
	assert.Equal(t, "Marta: I need 3 of herb.\nReward: +20g", offer.Line)
	assert.Equal(t, ActionAcceptQuest, offer.Choices[0].Action)

	assert.Equal(t, "Thanks for handling \"Wolves\".\nReward: +15g", def.FindNode(NodeTurnIn).Line)

	other := BuildForNPC(nil, NPCContext{NPCID: "bob", NPCName: "Bob", Pending: pending})
	assert.Equal(t, []string{labelClose}, labels(other.FindNode("start")))
	assert.Equal(t, "Others need your help, please act quickly.", other.FindNode(NodeOffer).Line)
}

func TestBuildForNPC_KeyGiverTalkShortCircuits(t *testing.T) {
	key := &quest.KeyQuest{ID: "meet", Title: "Meet", GiverID: "guard", Completion: quest.CompleteTalkToGiver}
	def := BuildForNPC(baseDef(), NPCContext{
		NPCID: "guard", NPCName: "Guard", HasTrader: true,
		Key: key, KeyAvailable: true,
	})
	start := def.FindNode("start")
	assert.Equal(t, "Guard: Hey, how can I help you?", start.Line)
	assert.Contains(t, labels(start), "Help Guard")
	assert.NotContains(t, labels(start), "Open shop")
	assert.Equal(t, ActionHelpKeyAndOffer, start.Choices[len(start.Choices)-1].Action)
}

func TestBuildForNPC_KeyTurnIn(t *testing.T) {
	key := &quest.KeyQuest{ID: "boss", Title: "Slay the boss", GiverID: "guard",
		Completion: quest.CompleteKillTarget, RequiresTurnIn: true}
	ctx := NPCContext{NPCID: "guard", NPCName: "Guard", Key: key, KeyAvailable: true}

	def := BuildForNPC(nil, ctx)
	assert.NotContains(t, labels(def.FindNode("start")), labelKeyTurnIn)

	ctx.KeyObjectiveDone = true
	def = BuildForNPC(nil, ctx)
	assert.Contains(t, labels(def.FindNode("start")), labelKeyTurnIn)
	assert.Equal(t, "Well done on \"Slay the boss\".", def.FindNode(NodeKeyTurnIn).Line)
}
