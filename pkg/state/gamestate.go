// Package state holds the persisted aggregate of one game in progress.
package state

import (
	"encoding/json"
	"fmt"
	"maps"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/activity"
	"github.com/jwebster45206/quest-engine/pkg/actor"
	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/dialogue"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/loot"
	"github.com/jwebster45206/quest-engine/pkg/picker"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/shop"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

// GameState is everything about a game that changes while it is played. Static content
// lives in the campaign it references.
type GameState struct {
	ID         uuid.UUID `json:"id"`
	CampaignID string    `json:"campaign_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	// Version counts applied actions.
	Version int `json:"version"`

	Clock      float64    `json:"clock"` // game-clock seconds
	Player     *actor.PC  `json:"player"`
	Position   world.Vec3 `json:"position"`
	Checkpoint string     `json:"checkpoint,omitempty"`
	Deaths     int        `json:"deaths,omitempty"`

	Inventory inventory.Inventory `json:"inventory"`
	Activity  activity.Tracker    `json:"activity"`
	Tags      *world.Tags         `json:"tags"`
	Markers   world.Markers       `json:"markers,omitempty"`

	Quests  quest.Log         `json:"quests"`
	Keys    quest.KeyProgress `json:"keys"`
	History *picker.History   `json:"history"`

	Shops    map[string]shop.Quantities `json:"shops,omitempty"`
	Dialogue dialogue.Session           `json:"dialogue"`
	Chests   loot.Opened                `json:"chests,omitempty"`
	Enemies  map[string]*actor.Enemy    `json:"enemies,omitempty"`

	RNG *Source `json:"rng"`
}

// New starts a game of campaign c: the player at the atlas spawn with starter items
// equipped, full trader stock and the campaign's enemies placed.
func New(c *content.Campaign) (*GameState, error) {
	id := uuid.New()
	now := time.Now()

	spec := c.Player
	spec.Attributes = maps.Clone(c.Player.Attributes)
	if spec.ID == "" {
		spec.ID = "player"
	}
	pc, err := actor.NewPCFromSpec(&spec)
	if err != nil {
		return nil, fmt.Errorf("failed to build player: %w", err)
	}

	gs := &GameState{
		ID:         id,
		CampaignID: c.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
		Player:     pc,
		Position:   c.Atlas.Spawn,
		Tags:       world.NewTags(),
		Markers:    world.Markers{},
		History:    picker.NewHistory(c.Picker.HistorySize),
		Shops:      make(map[string]shop.Quantities, len(c.Traders)),
		Chests:     loot.Opened{},
		Enemies:    make(map[string]*actor.Enemy, len(c.SpawnEnemies)),
		RNG:        SourceFromID(id),
	}
	spawn := c.Atlas.Spawn
	gs.Activity.LastPosition = &spawn

	cat := c.Catalog()
	gs.Inventory.Gold = c.StartGold
	for _, it := range cat.Starters() {
		gs.Inventory.Add(it, 1)
		if it.Type == inventory.TypeEquipable {
			if _, err := gs.Inventory.Equip(cat, it.ID); err != nil {
				return nil, fmt.Errorf("failed to equip starter %s: %w", it.ID, err)
			}
		}
	}
	if err := gs.RefreshEquipment(cat); err != nil {
		return nil, err
	}

	for _, t := range c.Traders {
		gs.Shops[t.ID] = t.InitialQuantities()
	}
	for _, s := range c.SpawnEnemies {
		stats, ok := c.Enemy(s.Template)
		if !ok {
			return nil, fmt.Errorf("spawn %s: unknown enemy %q", s.ID, s.Template)
		}
		gs.Enemies[s.ID] = actor.NewEnemy(s.ID, stats, s.Position)
	}
	for _, g := range c.Atlas.Givers {
		gs.Markers.AddSimple(g.ID, g.Position, world.IconQuestGiver)
	}
	return gs, nil
}

// UnmarshalJSON restores a saved game. Maps dropped as empty come back non-nil. The
// pick history is left to the engine, which sizes it from the campaign.
func (gs *GameState) UnmarshalJSON(data []byte) error {
	type plain GameState
	if err := json.Unmarshal(data, (*plain)(gs)); err != nil {
		return err
	}
	if gs.Tags == nil {
		gs.Tags = world.NewTags()
	}
	if gs.Markers == nil {
		gs.Markers = world.Markers{}
	}
	if gs.Shops == nil {
		gs.Shops = map[string]shop.Quantities{}
	}
	if gs.Chests == nil {
		gs.Chests = loot.Opened{}
	}
	if gs.Enemies == nil {
		gs.Enemies = map[string]*actor.Enemy{}
	}
	return nil
}

// Rand draws from the game's persisted source.
func (gs *GameState) Rand() *rand.Rand {
	if gs.RNG == nil {
		gs.RNG = SourceFromID(gs.ID)
	}
	return gs.RNG.Rand()
}

func (gs *GameState) Criminal() bool {
	return gs.Tags != nil && gs.Tags.IsCriminal()
}

// RefreshEquipment folds the equipped items' bonuses into the player.
func (gs *GameState) RefreshEquipment(cat inventory.Catalog) error {
	armor, damage := gs.Inventory.Bonuses(cat)
	if err := gs.Player.ApplyEquipment(armor, damage); err != nil {
		return fmt.Errorf("failed to apply equipment: %w", err)
	}
	return nil
}

// Shop binds a trader to this game's stock and tags.
func (gs *GameState) Shop(c *content.Campaign, traderID string) (*shop.Shop, bool) {
	t, ok := c.Trader(traderID)
	if !ok {
		return nil, false
	}
	if gs.Shops == nil {
		gs.Shops = make(map[string]shop.Quantities)
	}
	qty, ok := gs.Shops[traderID]
	if !ok {
		qty = t.InitialQuantities()
		gs.Shops[traderID] = qty
	}
	return &shop.Shop{Trader: t, Qty: qty, Catalog: c.Catalog(), Tags: gs.Tags}, true
}

// Rewarder pays quest rewards into the player's inventory.
func (gs *GameState) Rewarder(cat inventory.Catalog) quest.Rewarder {
	return rewarder{inv: &gs.Inventory, cat: cat}
}

type rewarder struct {
	inv *inventory.Inventory
	cat inventory.Catalog
}

func (r rewarder) AddGold(amount int) {
	r.inv.AddGold(amount)
}

func (r rewarder) GrantItem(itemID string, qty int) error {
	it, ok := r.cat.Get(itemID)
	if !ok {
		return fmt.Errorf("%w: %s", inventory.ErrUnknownItem, itemID)
	}
	r.inv.Add(it, qty)
	return nil
}
