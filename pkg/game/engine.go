// Package game applies player actions to a game state. It owns no storage: callers load
// a state, apply actions and persist the result together with the returned events.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/generator"
	"github.com/jwebster45206/quest-engine/pkg/picker"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

var (
	ErrUnknownEnemy      = errors.New("unknown enemy")
	ErrUnknownNPC        = errors.New("unknown npc")
	ErrUnknownTrader     = errors.New("unknown trader")
	ErrUnknownChest      = errors.New("unknown chest")
	ErrUnknownLocation   = errors.New("unknown location")
	ErrUnknownCheckpoint = errors.New("unknown checkpoint")
	ErrEnemyDefeated     = errors.New("enemy already defeated")
	ErrNoDialogue        = errors.New("no open dialogue")
	ErrInvalidChoice     = errors.New("invalid dialogue choice")
	ErrNotEquipped       = errors.New("item is not equipped")
	ErrNothingToTurnIn   = errors.New("nothing to turn in")
	ErrNoOffer           = errors.New("no quest available")
	ErrWrongCampaign     = errors.New("game belongs to another campaign")
)

// Dialogue timings in game seconds.
const (
	refusalDuration  = 3.0
	noWorkDuration   = 3.0
	chestDuration    = 4.0
	allDoneDuration  = 8.0
	checkpointRadius = 5.0
)

// Engine runs the rules of one campaign. It is safe for concurrent use as long as each
// game state is only touched by one goroutine at a time.
type Engine struct {
	Campaign  *content.Campaign
	Generator *generator.Generator
	logger    *slog.Logger
}

func NewEngine(c *content.Campaign, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Campaign: c,
		Generator: &generator.Generator{
			Templates: c.Templates,
			Atlas:     &c.Atlas,
			Picker:    c.Picker,
		},
		logger: logger.With("campaign", c.ID),
	}
}

// NewGame creates a fresh game and starts the first key quest, or offers a side quest
// when the campaign has no key quests.
func (e *Engine) NewGame() (*state.GameState, []Event, error) {
	gs, err := state.New(e.Campaign)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create game state: %w", err)
	}
	r := e.begin(gs)
	r.keyEvents(r.keys.StartIfReady())
	r.refill()
	e.logger.Info("New game created", "game_id", gs.ID, "events", len(r.events))
	return gs, r.events, nil
}

// Apply runs one action. On error the state may be partially modified and should be
// discarded by the caller.
func (e *Engine) Apply(gs *state.GameState, a Action) ([]Event, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if gs.CampaignID != e.Campaign.ID {
		return nil, fmt.Errorf("%w: %s", ErrWrongCampaign, gs.CampaignID)
	}
	r := e.begin(gs)
	if err := r.apply(a); err != nil {
		e.logger.Debug("Action rejected", "game_id", gs.ID, "action", a.Type, "error", err)
		return nil, err
	}
	r.settle()

	gs.Version++
	gs.UpdatedAt = time.Now()
	e.logger.Debug("Action applied",
		"game_id", gs.ID,
		"action", a.Type,
		"version", gs.Version,
		"events", len(r.events))
	return r.events, nil
}

// run is the working set for one Apply call.
type run struct {
	e      *Engine
	c      *content.Campaign
	gs     *state.GameState
	rng    *rand.Rand
	keys   *quest.KeyTracker
	events []Event
}

func (e *Engine) begin(gs *state.GameState) *run {
	r := &run{e: e, c: e.Campaign, gs: gs, rng: gs.Rand()}
	if gs.History == nil {
		gs.History = picker.NewHistory(e.Campaign.Picker.HistorySize)
	} else if gs.History.Size != e.Campaign.Picker.HistorySize {
		gs.History.Resize(e.Campaign.Picker.HistorySize)
	}
	r.keys = &quest.KeyTracker{
		Keys:     e.Campaign.KeyQuests,
		Progress: &gs.Keys,
		Tags:     gs.Tags,
		Rand:     r.rng,
		CriminalGiver: func() string {
			g, _ := e.Campaign.Atlas.RandomGiver(r.rng, true)
			return g.ID
		},
	}
	return r
}

func (r *run) emit(ev Event) {
	r.events = append(r.events, ev)
}

func (r *run) apply(a Action) error {
	switch a.Type {
	case ActTravel:
		r.travel(*a.Position, a.DT)
	case ActTeleport:
		r.teleport(*a.Position, a.DT)
	case ActWait:
		r.gs.Activity.Advance(a.DT)
		r.gs.Clock += a.DT
	case ActReachLocation:
		return r.reachLocation(a.LocationID)
	case ActSetCheckpoint:
		return r.setCheckpoint(a.LocationID)
	case ActAttackEnemy:
		return r.attack(a.EnemyID, a.Amount)
	case ActKillEnemy:
		return r.kill(a.EnemyID)
	case ActAvoidFight:
		r.gs.Activity.RegisterFightAvoided()
	case ActTakeDamage:
		return r.takeDamage(a.EnemyID, a.Amount)
	case ActCrime:
		r.crime("")
	case ActHelpVillagers:
		r.gs.Tags.HelpedVillagers = true
	case ActCollectItem:
		return r.collect(a.ItemID, max(1, a.Qty))
	case ActStealItem:
		return r.steal(a.ItemID, a.Owner, max(1, a.Qty))
	case ActOpenChest:
		return r.openChest(a.ChestID)
	case ActTalk:
		return r.talk(a.NPCID)
	case ActChoose:
		return r.choose(a.Choice)
	case ActEndDialogue:
		if r.gs.Dialogue.Active() {
			r.dialogueEvent(r.gs.Dialogue.End(), "")
		}
	case ActBuy:
		return r.buy(a.TraderID, a.ItemID, max(1, a.Qty))
	case ActSell:
		return r.sell(a.TraderID, a.ItemID, max(1, a.Qty))
	case ActEquip:
		return r.equip(a.ItemID)
	case ActUnequip:
		return r.unequip(a.ItemID)
	case ActUseItem:
		return r.use(a.ItemID)
	case ActAcceptQuest:
		_, err := r.accept()
		return err
	case ActTurnInQuest:
		return r.turnInAny(a.NPCID)
	case ActRequestOffer:
		return r.requestOffer(a.NPCID)
	case ActDeclineOffer:
		return r.decline()
	case ActAbandonQuest:
		return r.abandon(a.QuestID)
	case ActSetWorldFlag:
		r.gs.Tags.SetFlag(a.Flag)
	case ActClearWorldFlag:
		r.gs.Tags.ClearFlag(a.Flag)
	}
	return nil
}

// settle runs the checks every action ends with: flag-gated key quests, quest
// timeouts and auto-closing dialogue.
func (r *run) settle() {
	r.keyEvents(r.keys.StartIfReady())

	failed := r.gs.Quests.FailTimedOut(r.gs.Clock)
	for _, q := range failed {
		r.gs.Markers.Remove(targetMarker(q.ID))
		r.emit(Event{Type: EventQuestFailed, QuestID: q.ID, QuestName: q.Name, NPCID: q.GiverID, Message: q.FailText})
	}
	if len(failed) > 0 {
		r.refill()
	}

	if r.gs.Dialogue.Tick(r.gs.Clock) {
		r.emit(Event{Type: EventDialogueClosed})
	}
}

// keyEvents turns tracker output into events, generating bridge offers on request.
func (r *run) keyEvents(evs []quest.KeyEvent) {
	for _, ev := range evs {
		switch ev.Kind {
		case quest.KeyBridgeState:
			r.emit(Event{Type: EventKeyBridgeState, KeyID: ev.KeyID, BridgesLeft: ev.BridgesLeft})
		case quest.KeyAvailable:
			k, _ := r.c.KeyQuest(ev.KeyID)
			r.markKey(k)
			r.emit(Event{Type: EventKeyAvailable, KeyID: ev.KeyID, NPCID: k.GiverID, Message: k.Title})
		case quest.KeyObjectiveComplete:
			// the target stays on the map, greyed out, until the quest completes
			r.gs.Markers.SetActive(keyMarker(ev.KeyID), false)
			r.emit(Event{Type: EventKeyObjectiveComplete, KeyID: ev.KeyID})
		case quest.KeyTurnedIn:
			k, _ := r.c.KeyQuest(ev.KeyID)
			r.emit(Event{Type: EventKeyTurnedIn, KeyID: ev.KeyID, NPCID: k.GiverID, Message: k.Title})
		case quest.KeyCompleted:
			r.gs.Markers.Remove(keyMarker(ev.KeyID))
			k, _ := r.c.KeyQuest(ev.KeyID)
			r.emit(Event{Type: EventKeyCompleted, KeyID: ev.KeyID, Message: k.Title})
		case quest.KeyAllCompleted:
			r.emit(Event{Type: EventKeyAllCompleted, KeyID: ev.KeyID, Message: "All main quests complete!"})
			kind := r.gs.Dialogue.BeginOneLiner("", "All main quests complete!", "", r.gs.Clock+allDoneDuration, true)
			r.dialogueEvent(kind, "")
			r.refill()
		case quest.KeyOfferBridge:
			if !r.offer(ev.Giver, ev.ContextTag) {
				// no template fits; skip the bridge rather than stall the story
				r.keyEvents(r.keys.NotifyDynamicFinished())
			}
		}
	}
}

// refill offers a side quest when the player has nothing to do: no offer, no accepted
// quest, and either no key story left or a bridge still owed.
func (r *run) refill() {
	if r.gs.Quests.Pending != nil || len(r.gs.Quests.Active) > 0 {
		return
	}
	switch {
	case len(r.c.KeyQuests) == 0 || r.gs.Keys.AllDone:
		r.offer("", "")
	case r.gs.Keys.Started && r.gs.Keys.BridgesLeft > 0:
		r.offer("", r.keys.Current().ContextTag)
	}
}

// offer generates a side quest and holds it as the pending offer.
func (r *run) offer(forcedGiver, contextTag string) bool {
	req := generator.Request{
		Activity:    &r.gs.Activity,
		Tags:        r.gs.Tags,
		History:     r.gs.History,
		Rand:        r.rng,
		ContextTag:  contextTag,
		ForcedGiver: forcedGiver,
	}
	if k := r.keys.Current(); k != nil && r.gs.Keys.BridgesLeft > 0 {
		i := r.gs.Keys.Index - 1
		switch {
		case r.keys.IsFirstBridge() && i >= 0 && i < len(r.c.KeyQuests):
			req.FollowUpTo = r.c.KeyQuests[i].Title
		case r.keys.IsFinalBridge():
			req.LeadsInto = k.Title
		}
	}
	q, res, err := r.e.Generator.Generate(req)
	if err != nil {
		r.e.logger.Warn("Failed to generate quest offer", "game_id", r.gs.ID, "error", err, "giver", forcedGiver)
		return false
	}
	r.gs.Quests.SetPendingOffer(q)
	r.e.logger.Debug("Quest offered",
		"game_id", r.gs.ID,
		"quest_type", res.Type,
		"giver", q.GiverID,
		"weights", res.Weights)
	r.emit(Event{
		Type:      EventQuestOffered,
		QuestID:   q.ID,
		QuestName: q.Name,
		NPCID:     q.GiverID,
		Gold:      q.GoldReward,
		Message:   q.ShortDescription(),
	})
	return true
}

func (r *run) markKey(k quest.KeyQuest) {
	var pos world.Vec3
	switch k.Completion {
	case quest.CompleteKillTarget:
		en, ok := r.gs.Enemies[k.TargetEnemy]
		if !ok {
			return
		}
		pos = en.Position
	case quest.CompleteReachLocation:
		loc, ok := r.c.Atlas.Location(k.TargetLocation)
		if !ok {
			return
		}
		pos = loc.Position
	default:
		g, ok := r.c.Atlas.Giver(k.GiverID)
		if !ok {
			return
		}
		pos = g.Position
	}
	r.gs.Markers.AddSimple(keyMarker(k.ID), pos, world.IconQuestTarget)
}

func targetMarker(questID string) string { return "q:" + questID + ":target" }

func keyMarker(keyID string) string { return "key:" + keyID }
