package game

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/actor"
	"github.com/jwebster45206/quest-engine/pkg/dialogue"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

func (r *run) dialogueEvent(kind dialogue.EventKind, npcID string) {
	if kind == "" {
		return
	}
	if npcID == "" {
		npcID = r.gs.Dialogue.OwnerID
	}
	r.emit(Event{Type: EventType(kind), NPCID: npcID, Dialogue: ViewOf(&r.gs.Dialogue)})
}

// oneLiner shows a line that closes itself after d game seconds.
func (r *run) oneLiner(npc actor.NPC, line string, d float64) {
	kind := r.gs.Dialogue.BeginOneLiner(npc.Name, line, npc.ID, r.gs.Clock+d, true)
	r.dialogueEvent(kind, npc.ID)
}

func (r *run) talk(npcID string) error {
	npc, ok := r.c.NPC(npcID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNPC, npcID)
	}
	if r.gs.Dialogue.Active() {
		r.dialogueEvent(r.gs.Dialogue.End(), "")
	}

	delivered := r.gs.Quests.ReportDeliver(npcID, r.gs.Inventory.Has)
	for _, p := range delivered {
		if q := r.gs.Quests.Find(p.QuestID); q != nil && q.TargetItem != "" {
			r.gs.Inventory.Remove(q.TargetItem, 1)
			r.emit(Event{Type: EventItemRemoved, ItemID: q.TargetItem, Qty: 1, NPCID: npcID})
		}
	}
	r.progress(delivered)

	if r.refuses(npc) {
		r.oneLiner(npc, npc.Refusal(), refusalDuration)
		return nil
	}
	kind := r.gs.Dialogue.Begin(r.build(npc), npc.ID, "", 0)
	r.dialogueEvent(kind, npc.ID)
	return nil
}

// refuses applies the NPC's talk gates. Quest business always gets through.
func (r *run) refuses(npc actor.NPC) bool {
	if r.gs.Quests.CanTurnIn(npc.ID) != nil || r.gs.Quests.HasPendingFor(npc.ID) {
		return false
	}
	if k := r.keys.Current(); k != nil && r.keys.IsAvailable() && k.GiverID == npc.ID {
		return false
	}
	criminal := r.gs.Criminal()
	switch {
	case npc.RequireCriminal && !criminal:
		return true
	case npc.RefuseIfCriminal && criminal:
		return true
	case npc.RefuseIfBannedForTheft && npc.TraderID != "":
		t, ok := r.c.Trader(npc.TraderID)
		return ok && t.IsBannedForTheft(r.gs.Tags)
	}
	return false
}

// build assembles the NPC's conversation for the current quest situation.
func (r *run) build(npc actor.NPC) *dialogue.Definition {
	base, _ := r.c.Dialogue(npc.DialogueID)
	ctx := dialogue.NPCContext{
		NPCID:            npc.ID,
		NPCName:          npc.Name,
		HasTrader:        npc.TraderID != "",
		Pending:          r.gs.Quests.Pending,
		LastAccepted:     r.gs.Quests.Current(),
		TurnIn:           r.gs.Quests.CanTurnIn(npc.ID),
		Key:              r.keys.Current(),
		KeyAvailable:     r.keys.IsAvailable(),
		KeyObjectiveDone: r.gs.Keys.ObjectiveComplete,
	}
	return dialogue.BuildForNPC(base, ctx)
}

func (r *run) choose(i int) error {
	s := &r.gs.Dialogue
	if !s.Active() {
		return ErrNoDialogue
	}
	owner := s.OwnerID
	prev := s.Def
	choice, kind, ok := s.Choose(i)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidChoice, i)
	}
	r.dialogueEvent(kind, owner)

	npc, _ := r.c.NPC(owner)
	switch choice.Action {
	case dialogue.ActionOpenShop:
		r.openShop(npc)
	case dialogue.ActionOfferQuest:
		r.offerHere(npc)
	case dialogue.ActionHelpKeyAndOffer:
		if done, evs := r.keys.TryCompleteByTalking(owner); done {
			r.keyEvents(evs)
		}
		r.offerHere(npc)
	case dialogue.ActionAcceptQuest:
		if _, err := r.accept(); err != nil {
			return err
		}
		r.show(r.build(npc), owner, dialogue.NodeAccept)
	case dialogue.ActionTurnInQuest:
		if err := r.turnIn(owner); err != nil {
			return err
		}
		r.show(prev, owner, choice.Next)
	case dialogue.ActionTurnInKey:
		done, evs := r.keys.TryTurnIn(owner)
		if !done {
			return ErrNothingToTurnIn
		}
		r.keyEvents(evs)
		r.show(prev, owner, choice.Next)
	case dialogue.ActionReportKeyTalk:
		done, evs := r.keys.TryCompleteByTalking(owner)
		if !done {
			return ErrNothingToTurnIn
		}
		r.keyEvents(evs)
		r.show(prev, owner, choice.Next)
	}
	return nil
}

// show opens def at node when the node exists; it is a no-op otherwise.
func (r *run) show(def *dialogue.Definition, owner, node string) {
	if def == nil || def.FindNode(node) == nil {
		return
	}
	r.dialogueEvent(r.gs.Dialogue.Begin(def, owner, node, 0), owner)
}

// offerHere presents the pending offer from npc, pulling it over from another giver or
// generating one when needed.
func (r *run) offerHere(npc actor.NPC) {
	pending := r.gs.Quests.Pending
	switch {
	case pending != nil && pending.GiverID != npc.ID:
		if _, ok := r.c.Atlas.Giver(npc.ID); ok {
			pending.GiverID = npc.ID
		}
	case pending == nil:
		if !r.offer(npc.ID, "") {
			r.oneLiner(npc, "No work right now.", noWorkDuration)
			return
		}
	}
	r.show(r.build(npc), npc.ID, dialogue.NodeOffer)
}

func (r *run) openShop(npc actor.NPC) {
	t, ok := r.c.Trader(npc.TraderID)
	if !ok {
		return
	}
	if ok, line := t.CanServe(r.gs.Tags); !ok {
		r.oneLiner(npc, line, refusalDuration)
		return
	}
	r.emit(Event{Type: EventShopOpened, NPCID: npc.ID, TraderID: t.ID})
}

// accept takes the pending offer. Deliver quests hand over the parcel right away.
func (r *run) accept() (*quest.DynamicQuest, error) {
	q, err := r.gs.Quests.Accept(r.gs.Clock)
	if err != nil {
		return nil, err
	}
	r.gs.Markers.AddSimple(targetMarker(q.ID), r.targetPosition(q), world.IconQuestTarget)
	r.emit(Event{Type: EventQuestAssigned, QuestID: q.ID, QuestName: q.Name, NPCID: q.GiverID, Required: q.RequiredCount})
	if q.Type == quest.TypeDeliver && q.TargetItem != "" && !r.gs.Inventory.Has(q.TargetItem) {
		if err := r.grant(q.TargetItem, 1); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func (r *run) targetPosition(q *quest.DynamicQuest) world.Vec3 {
	if q.Type == quest.TypeDeliver {
		if g, ok := r.c.Atlas.Giver(q.DeliverTo); ok {
			return g.Position
		}
	}
	return q.TargetPosition
}

// turnIn hands a completed side quest back to its giver and counts it as a bridge.
func (r *run) turnIn(npcID string) error {
	q, err := r.gs.Quests.TurnIn(npcID, r.gs.Rewarder(r.c.Catalog()))
	if err != nil {
		return err
	}
	r.gs.Markers.Remove(targetMarker(q.ID))
	if g, ok := r.c.Atlas.Giver(npcID); ok && g.Tag == world.GiverTagTown {
		r.gs.Tags.HelpedVillagers = true
	}
	r.emit(Event{
		Type:      EventQuestTurnedIn,
		QuestID:   q.ID,
		QuestName: q.Name,
		NPCID:     npcID,
		Gold:      q.GoldReward,
		Message:   q.SuccessText,
	})
	r.keyEvents(r.keys.NotifyDynamicFinished())
	r.refill()
	return nil
}

// turnInAny turns in a side quest if npcID has one waiting, else the key quest.
func (r *run) turnInAny(npcID string) error {
	if r.gs.Quests.CanTurnIn(npcID) != nil {
		return r.turnIn(npcID)
	}
	if done, evs := r.keys.TryTurnIn(npcID); done {
		r.keyEvents(evs)
		return nil
	}
	if err := r.turnIn(npcID); !errors.Is(err, quest.ErrQuestNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s", ErrNothingToTurnIn, npcID)
}

func (r *run) requestOffer(npcID string) error {
	if q := r.gs.Quests.Pending; q != nil {
		r.emit(Event{Type: EventQuestOffered, QuestID: q.ID, QuestName: q.Name, NPCID: q.GiverID, Gold: q.GoldReward, Message: q.ShortDescription()})
		return nil
	}
	var tag string
	if k := r.keys.Current(); k != nil && r.gs.Keys.BridgesLeft > 0 {
		tag = k.ContextTag
	}
	if !r.offer(npcID, tag) {
		return ErrNoOffer
	}
	return nil
}

func (r *run) decline() error {
	q := r.gs.Quests.Pending
	if q == nil {
		return quest.ErrNoPendingOffer
	}
	r.gs.Quests.SetPendingOffer(nil)
	r.emit(Event{Type: EventQuestDeclined, QuestID: q.ID, QuestName: q.Name, NPCID: q.GiverID})
	return nil
}

func (r *run) abandon(id string) error {
	q, err := r.gs.Quests.Abandon(id)
	if err != nil {
		return err
	}
	r.gs.Markers.Remove(targetMarker(q.ID))
	r.emit(Event{Type: EventQuestFailed, QuestID: q.ID, QuestName: q.Name, NPCID: q.GiverID, Message: q.FailText})
	r.refill()
	return nil
}
