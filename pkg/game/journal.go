package game

import (
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/shop"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// KeyStatus is the current key quest and how far the player is from it.
type KeyStatus struct {
	quest.KeyQuest
	Available         bool `json:"available"`
	BridgesLeft       int  `json:"bridges_left"`
	ObjectiveComplete bool `json:"objective_complete"`
}

// Standing is how the world sees the player.
type Standing struct {
	Crimes int `json:"crimes"`
	// Criminal also holds after attacking guards with no crime on record.
	Wanted   bool `json:"wanted"`
	Criminal bool `json:"criminal"`
	Good     bool `json:"good"`
}

// Journal is the player's quest log as shown by a host.
type Journal struct {
	Pending   *quest.DynamicQuest   `json:"pending,omitempty"`
	Active    []*quest.DynamicQuest `json:"active"`
	Completed []string              `json:"completed,omitempty"`
	Failed    []string              `json:"failed,omitempty"`
	Key       *KeyStatus            `json:"key,omitempty"`
	KeysDone  bool                  `json:"keys_done"`
	Standing  Standing              `json:"standing"`
	// HasConsumables tells a host whether the player carries anything usable.
	HasConsumables bool `json:"has_consumables"`
}

func (e *Engine) Journal(gs *state.GameState) Journal {
	j := Journal{
		Pending:   gs.Quests.Pending,
		Active:    gs.Quests.Active,
		Completed: gs.Quests.Completed,
		Failed:    gs.Quests.Failed,
		KeysDone:  gs.Keys.AllDone || len(e.Campaign.KeyQuests) == 0,
		Standing: Standing{
			Crimes:   gs.Activity.CrimesCommitted,
			Wanted:   gs.Activity.IsWanted(),
			Criminal: gs.Criminal(),
			Good:     gs.Tags != nil && gs.Tags.IsGood(),
		},
		HasConsumables: gs.Inventory.HasType(e.Campaign.Catalog(), inventory.TypeConsumable),
	}
	if j.Active == nil {
		j.Active = []*quest.DynamicQuest{}
	}
	t := quest.KeyTracker{Keys: e.Campaign.KeyQuests, Progress: &gs.Keys}
	if k := t.Current(); k != nil {
		j.Key = &KeyStatus{
			KeyQuest:          *k,
			Available:         t.IsAvailable(),
			BridgesLeft:       gs.Keys.BridgesLeft,
			ObjectiveComplete: gs.Keys.ObjectiveComplete,
		}
	}
	return j
}

// Listings is a trader's stock for this game.
func (e *Engine) Listings(gs *state.GameState, traderID string) ([]shop.Listing, error) {
	s, ok := gs.Shop(e.Campaign, traderID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTrader, traderID)
	}
	return s.Listings(), nil
}
