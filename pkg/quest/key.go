package quest

import (
	"math/rand/v2"

	"github.com/jwebster45206/quest-engine/pkg/world"
)

type CompletionType string

const (
	CompleteTalkToGiver   CompletionType = "talk_to_giver"
	CompleteKillTarget    CompletionType = "kill_target"
	CompleteReachLocation CompletionType = "reach_location"
)

// NextBridgeGiverRule chooses who offers the first bridge quest after a key quest is turned in.
type NextBridgeGiverRule string

const (
	BridgeGiverDefault    NextBridgeGiverRule = "default"
	BridgeGiverThisGiver  NextBridgeGiverRule = "use_this_key_giver"
	BridgeGiverReferenced NextBridgeGiverRule = "use_ref_id"
)

const DefaultReachRadius = 3.0

// KeyQuest is an authored main-story beat.
type KeyQuest struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	RequiredFlags   []string `json:"required_flags,omitempty" yaml:"required_flags,omitempty"`
	FlagsOnStart    []string `json:"flags_on_start,omitempty" yaml:"flags_on_start,omitempty"`
	FlagsOnComplete []string `json:"flags_on_complete,omitempty" yaml:"flags_on_complete,omitempty"`

	MinDynamicBetween int `json:"min_dynamic_between" yaml:"min_dynamic_between"`
	MaxDynamicBetween int `json:"max_dynamic_between" yaml:"max_dynamic_between"`

	GiverID    string `json:"giver_id,omitempty" yaml:"giver_id,omitempty"`
	ContextTag string `json:"context_tag,omitempty" yaml:"context_tag,omitempty"`

	Completion     CompletionType `json:"completion" yaml:"completion"`
	TargetEnemy    string         `json:"target_enemy,omitempty" yaml:"target_enemy,omitempty"`
	TargetLocation string         `json:"target_location,omitempty" yaml:"target_location,omitempty"`
	ReachRadius    float64        `json:"reach_radius,omitempty" yaml:"reach_radius,omitempty"`
	RequiresTurnIn bool           `json:"requires_turn_in" yaml:"requires_turn_in"`

	NextBridgeGiver      NextBridgeGiverRule `json:"next_bridge_giver,omitempty" yaml:"next_bridge_giver,omitempty"`
	NextBridgeGiverRefID string              `json:"next_bridge_giver_ref,omitempty" yaml:"next_bridge_giver_ref,omitempty"`
}

// KeyProgress is the persisted part of key-quest tracking.
type KeyProgress struct {
	Index             int    `json:"index"`
	Started           bool   `json:"started"`
	BridgesLeft       int    `json:"bridges_left"`
	BridgesTotal      int    `json:"bridges_total,omitempty"` // length of the current bridge chain
	ObjectiveComplete bool   `json:"objective_complete"`
	ForcedGiver       string `json:"forced_giver,omitempty"`
	AllDone           bool   `json:"all_done,omitempty"`
}

type KeyEventKind string

const (
	KeyBridgeState       KeyEventKind = "key_bridge_state"
	KeyAvailable         KeyEventKind = "key_available"
	KeyObjectiveComplete KeyEventKind = "key_objective_complete"
	KeyTurnedIn          KeyEventKind = "key_turned_in"
	KeyCompleted         KeyEventKind = "key_completed"
	KeyAllCompleted      KeyEventKind = "key_all_completed"
	// KeyOfferBridge asks the caller to generate a bridge offer, from Giver when set.
	KeyOfferBridge KeyEventKind = "key_offer_bridge"
)

type KeyEvent struct {
	Kind        KeyEventKind `json:"kind"`
	KeyID       string       `json:"key_id,omitempty"`
	BridgesLeft int          `json:"bridges_left,omitempty"`
	Giver       string       `json:"giver,omitempty"`
	ContextTag  string       `json:"context_tag,omitempty"`
}

// KeyTracker walks the ordered key quests. Progress is owned by the caller so it can
// be persisted; the tracker only mutates it.
type KeyTracker struct {
	Keys     []KeyQuest
	Progress *KeyProgress
	Tags     *world.Tags
	// Criminal picks a forced bridge giver for criminal players when no rule applies.
	CriminalGiver func() string
	Rand          *rand.Rand
}

func (t *KeyTracker) Current() *KeyQuest {
	if t.Progress.Index < 0 || t.Progress.Index >= len(t.Keys) {
		return nil
	}
	return &t.Keys[t.Progress.Index]
}

// IsFirstBridge reports whether the next bridge offer opens the chain.
func (t *KeyTracker) IsFirstBridge() bool {
	return t.Progress.BridgesLeft > 0 && t.Progress.BridgesLeft == t.Progress.BridgesTotal
}

// IsFinalBridge reports whether the next bridge offer is the last before the key quest.
func (t *KeyTracker) IsFinalBridge() bool {
	return t.Progress.BridgesLeft == 1
}

// IsAvailable reports whether all bridges before the current key quest are done.
func (t *KeyTracker) IsAvailable() bool {
	return t.Current() != nil && t.Progress.Started && t.Progress.BridgesLeft <= 0
}

func (t *KeyTracker) canStart(k *KeyQuest) bool {
	if t.Tags == nil {
		return true
	}
	return t.Tags.FlagsSatisfied(k.RequiredFlags)
}

// StartIfReady starts the current key quest when its flag requirements hold.
func (t *KeyTracker) StartIfReady() []KeyEvent {
	k := t.Current()
	if k == nil || t.Progress.Started || !t.canStart(k) {
		return nil
	}
	t.Progress.Started = true
	t.Progress.ObjectiveComplete = false
	t.setFlags(k.FlagsOnStart)

	if t.Progress.Index == 0 {
		t.Progress.BridgesLeft = 0
		t.Progress.BridgesTotal = 0
		return []KeyEvent{
			{Kind: KeyBridgeState, KeyID: k.ID},
			{Kind: KeyAvailable, KeyID: k.ID},
		}
	}

	left := k.MinDynamicBetween
	if k.MaxDynamicBetween > k.MinDynamicBetween && t.Rand != nil {
		left += t.Rand.IntN(k.MaxDynamicBetween - k.MinDynamicBetween + 1)
	}
	if left <= 0 {
		left = 1
	}
	t.Progress.BridgesLeft = left
	t.Progress.BridgesTotal = left

	forced := t.Progress.ForcedGiver
	t.Progress.ForcedGiver = ""
	if forced == "" && t.Tags != nil && t.Tags.IsCriminal() && t.CriminalGiver != nil {
		forced = t.CriminalGiver()
	}
	return []KeyEvent{
		{Kind: KeyBridgeState, KeyID: k.ID, BridgesLeft: left},
		{Kind: KeyOfferBridge, KeyID: k.ID, Giver: forced, ContextTag: k.ContextTag},
	}
}

// NotifyDynamicFinished counts down one bridge quest.
func (t *KeyTracker) NotifyDynamicFinished() []KeyEvent {
	k := t.Current()
	if k == nil || t.Progress.BridgesLeft <= 0 {
		return nil
	}
	t.Progress.BridgesLeft--
	evs := []KeyEvent{{Kind: KeyBridgeState, KeyID: k.ID, BridgesLeft: t.Progress.BridgesLeft}}
	if t.Progress.BridgesLeft <= 0 {
		return append(evs, KeyEvent{Kind: KeyAvailable, KeyID: k.ID})
	}
	return append(evs, KeyEvent{Kind: KeyOfferBridge, KeyID: k.ID, ContextTag: k.ContextTag})
}

func (t *KeyTracker) TryCompleteByTalking(npcID string) (bool, []KeyEvent) {
	k := t.Current()
	if k == nil || !t.IsAvailable() || k.Completion != CompleteTalkToGiver {
		return false, nil
	}
	if k.GiverID != "" && k.GiverID != npcID {
		return false, nil
	}
	return true, t.objectiveDone()
}

// NotifyEnemyKilled completes a kill-target key quest when enemyID is its target.
// An empty target accepts any kill.
func (t *KeyTracker) NotifyEnemyKilled(enemyID string) []KeyEvent {
	k := t.Current()
	if k == nil || !t.IsAvailable() || k.Completion != CompleteKillTarget {
		return nil
	}
	if k.TargetEnemy != "" && k.TargetEnemy != enemyID {
		return nil
	}
	return t.objectiveDone()
}

// TryCompleteByReach completes a reach-location key quest when pos is inside the radius
// around target.
func (t *KeyTracker) TryCompleteByReach(pos, target world.Vec3) []KeyEvent {
	k := t.Current()
	if k == nil || !t.IsAvailable() || k.Completion != CompleteReachLocation {
		return nil
	}
	radius := k.ReachRadius
	if radius <= 0 {
		radius = DefaultReachRadius
	}
	if pos.Distance(target) > radius {
		return nil
	}
	return t.objectiveDone()
}

// TryTurnIn hands the current key quest in to npcID.
func (t *KeyTracker) TryTurnIn(npcID string) (bool, []KeyEvent) {
	k := t.Current()
	if k == nil || !t.IsAvailable() {
		return false, nil
	}
	if k.RequiresTurnIn && !t.Progress.ObjectiveComplete {
		return false, nil
	}
	if k.GiverID != "" && k.GiverID != npcID {
		return false, nil
	}
	switch k.NextBridgeGiver {
	case BridgeGiverThisGiver:
		t.Progress.ForcedGiver = k.GiverID
	case BridgeGiverReferenced:
		t.Progress.ForcedGiver = k.NextBridgeGiverRefID
	}
	evs := []KeyEvent{{Kind: KeyTurnedIn, KeyID: k.ID}}
	return true, append(evs, t.CompleteCurrent()...)
}

// CompleteCurrent finishes the current key quest and starts the next when possible.
func (t *KeyTracker) CompleteCurrent() []KeyEvent {
	k := t.Current()
	if k == nil {
		return nil
	}
	t.setFlags(k.FlagsOnComplete)

	var evs []KeyEvent
	if t.Progress.Index == len(t.Keys)-1 {
		t.Progress.AllDone = true
		evs = append(evs, KeyEvent{Kind: KeyAllCompleted, KeyID: k.ID})
	}
	evs = append(evs, KeyEvent{Kind: KeyCompleted, KeyID: k.ID})

	t.Progress.Index++
	t.Progress.Started = false
	t.Progress.ObjectiveComplete = false
	t.Progress.BridgesLeft = 0
	t.Progress.BridgesTotal = 0
	return append(evs, t.StartIfReady()...)
}

func (t *KeyTracker) objectiveDone() []KeyEvent {
	if t.Progress.ObjectiveComplete {
		return nil
	}
	t.Progress.ObjectiveComplete = true
	k := t.Current()
	evs := []KeyEvent{{Kind: KeyObjectiveComplete, KeyID: k.ID}}
	if !k.RequiresTurnIn {
		evs = append(evs, t.CompleteCurrent()...)
	}
	return evs
}

func (t *KeyTracker) setFlags(flags []string) {
	if t.Tags == nil {
		return
	}
	for _, f := range flags {
		t.Tags.SetFlag(f)
	}
}
