package dialogue

import (
	"fmt"
	"slices"

	"github.com/jwebster45206/quest-engine/pkg/quest"
)

// Auto node ids
const (
	NodeOffer     = "auto_offer"
	NodeAccept    = "auto_accept"
	NodeTurnIn    = "auto_turnin"
	NodeKeyTalk   = "auto_key_talk"
	NodeKeyTurnIn = "auto_key_turnin"
)

const (
	labelOffer     = "What do you need?"
	labelTurnIn    = "Here's the job done."
	labelShop      = "Open shop"
	labelKeyTurnIn = "Report back."
	labelClose     = "Close"
)

// NPCContext is what the builder needs to know about the NPC and the player's quests.
type NPCContext struct {
	NPCID     string
	NPCName   string
	HasTrader bool

	// Pending is the unaccepted offer, whoever its giver is.
	Pending *quest.DynamicQuest
	// LastAccepted is the most recently accepted dynamic quest.
	LastAccepted *quest.DynamicQuest
	// TurnIn is a completed dynamic quest this NPC can take back.
	TurnIn *quest.DynamicQuest

	Key              *quest.KeyQuest
	KeyAvailable     bool
	KeyObjectiveDone bool
}

func (c NPCContext) isKeyGiver() bool {
	return c.Key != nil && c.Key.GiverID != "" && c.Key.GiverID == c.NPCID
}

func (c NPCContext) hasPendingHere() bool {
	return c.Pending != nil && c.Pending.GiverID == c.NPCID
}

// BuildForNPC returns a copy of base with quest, shop and key-quest options injected for
// the current situation.
func BuildForNPC(base *Definition, ctx NPCContext) *Definition {
	var def *Definition
	if base != nil {
		def = base.Clone()
	} else {
		def = &Definition{NPCName: CleanName(ctx.NPCName), Start: DefaultStartNode}
	}
	if def.NPCName == "" {
		def.NPCName = CleanName(ctx.NPCName)
	}

	for _, id := range []string{def.StartNode(), NodeOffer, NodeAccept, NodeTurnIn, NodeKeyTalk, NodeKeyTurnIn} {
		ensureNode(def, id)
	}
	start := def.FindNode(def.StartNode())

	start.Choices = slices.DeleteFunc(start.Choices, func(c Choice) bool {
		switch c.Label {
		case labelOffer, labelTurnIn, labelShop, labelKeyTurnIn:
			return true
		}
		switch c.Action {
		case ActionHelpKeyAndOffer, ActionOpenShop, ActionAcceptQuest, ActionTurnInQuest,
			ActionReportKeyTalk, ActionTurnInKey:
			return true
		}
		return false
	})

	who := CleanName(ctx.NPCName)
	if ctx.isKeyGiver() && ctx.KeyAvailable && !ctx.KeyObjectiveDone &&
		ctx.Key.Completion == quest.CompleteTalkToGiver {
		start.Line = fmt.Sprintf("%s: Hey, how can I help you?", who)
		addChoiceUnique(start, "Help "+who, ActionHelpKeyAndOffer, NodeOffer)
		addChoiceUnique(start, labelClose, ActionClose, "")
		fillOffer(def, ctx)
		return def
	}

	fillOffer(def, ctx)
	fillAccept(def, ctx)
	fillTurnIn(def, ctx)
	fillKeyTalk(def, ctx)
	fillKeyTurnIn(def, ctx)

	if ctx.HasTrader {
		addChoiceUnique(start, labelShop, ActionOpenShop, "")
	}
	if ctx.TurnIn != nil && ctx.TurnIn.IsComplete() && ctx.TurnIn.GiverID == ctx.NPCID {
		addChoiceUnique(start, labelTurnIn, ActionTurnInQuest, NodeTurnIn)
	}
	if ctx.hasPendingHere() {
		addChoiceUnique(start, labelOffer, ActionOfferQuest, NodeAccept)
	}
	if ctx.isKeyGiver() && ctx.KeyAvailable && ctx.KeyObjectiveDone && ctx.Key.RequiresTurnIn {
		addChoiceUnique(start, labelKeyTurnIn, ActionTurnInKey, NodeKeyTurnIn)
	}
	addChoiceUnique(start, labelClose, ActionClose, "")
	return def
}

func fillOffer(def *Definition, ctx NPCContext) {
	n := def.FindNode(NodeOffer)
	if ctx.hasPendingHere() {
		n.Line = fmt.Sprintf("%s: %s%s", CleanName(ctx.NPCName), ctx.Pending.ShortDescription(), rewardSuffix(ctx.Pending))
		ensureChoice(n, "I'll take it.", ActionAcceptQuest, "")
		ensureChoice(n, "Maybe later.", ActionClose, "")
		return
	}
	n.Line = "Others need your help, please act quickly."
	ensureChoice(n, "OK", ActionClose, "")
}

func fillAccept(def *Definition, ctx NPCContext) {
	n := def.FindNode(NodeAccept)
	if q := ctx.LastAccepted; q != nil && q.GiverID == ctx.NPCID {
		n.Line = fmt.Sprintf("Quest accepted: %s\n%s", q.Name, q.ShortDescription())
	} else {
		n.Line = "Alright, noted."
	}
	ensureChoice(n, "OK", ActionClose, "")
}

func fillTurnIn(def *Definition, ctx NPCContext) {
	n := def.FindNode(NodeTurnIn)
	if q := ctx.TurnIn; q != nil && q.IsComplete() {
		n.Line = fmt.Sprintf("Thanks for handling %q.%s", q.Name, rewardSuffix(q))
	} else {
		n.Line = "You haven't completed the task yet."
	}
	ensureChoice(n, "OK", ActionClose, "")
}

func fillKeyTalk(def *Definition, ctx NPCContext) {
	n := def.FindNode(NodeKeyTalk)
	if ctx.Key != nil && ctx.KeyAvailable && ctx.isKeyGiver() && ctx.Key.Completion == quest.CompleteTalkToGiver {
		desc := ctx.Key.Description
		if desc == "" {
			desc = "Let's proceed."
		}
		n.Line = "Good. " + desc
	} else {
		n.Line = "..."
	}
	ensureChoice(n, "OK", ActionClose, "")
}

func fillKeyTurnIn(def *Definition, ctx NPCContext) {
	n := def.FindNode(NodeKeyTurnIn)
	if ctx.Key != nil && ctx.KeyAvailable && ctx.KeyObjectiveDone && ctx.isKeyGiver() {
		n.Line = fmt.Sprintf("Well done on %q.", ctx.Key.Title)
	} else {
		n.Line = "..."
	}
	ensureChoice(n, "OK", ActionClose, "")
}

func rewardSuffix(q *quest.DynamicQuest) string {
	if q.GoldReward <= 0 {
		return ""
	}
	return fmt.Sprintf("\nReward: +%dg", q.GoldReward)
}

func ensureNode(def *Definition, id string) *Node {
	if n := def.FindNode(id); n != nil {
		return n
	}
	def.Nodes = append(def.Nodes, Node{ID: id})
	return &def.Nodes[len(def.Nodes)-1]
}

func addChoiceUnique(n *Node, label string, a Action, next string) {
	for _, c := range n.Choices {
		if c.Action == a || c.Label == label {
			return
		}
	}
	n.Choices = append(n.Choices, Choice{Label: label, Action: a, Next: next})
}

// ensureChoice adds the choice or retargets an existing one with the same action or label.
func ensureChoice(n *Node, label string, a Action, next string) {
	for i := range n.Choices {
		if n.Choices[i].Action == a || n.Choices[i].Label == label {
			if next != "" {
				n.Choices[i].Next = next
			}
			return
		}
	}
	n.Choices = append(n.Choices, Choice{Label: label, Action: a, Next: next})
}
