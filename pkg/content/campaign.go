// Package content loads campaign definitions: items, enemies, NPCs, traders, dialogue,
// quest templates, key quests, the world atlas, chests and picker tuning.
package content

import (
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/actor"
	"github.com/jwebster45206/quest-engine/pkg/dialogue"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/loot"
	"github.com/jwebster45206/quest-engine/pkg/picker"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/shop"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

// Campaign is the static content a game is played against.
type Campaign struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Player      actor.PCSpec  `json:"player" yaml:"player"`
	StartGold   int           `json:"start_gold,omitempty" yaml:"start_gold,omitempty"`
	Picker      picker.Config `json:"picker" yaml:"picker"`
	// SpawnEnemies lists enemies placed in the world when a game starts.
	SpawnEnemies []EnemySpawn `json:"spawn_enemies,omitempty" yaml:"spawn_enemies,omitempty"`

	Items     []inventory.Item      `json:"items" yaml:"items"`
	Enemies   []actor.EnemyStats    `json:"enemies" yaml:"enemies"`
	NPCs      []actor.NPC           `json:"npcs" yaml:"npcs"`
	Traders   []shop.Trader         `json:"traders" yaml:"traders"`
	Dialogues []dialogue.Definition `json:"dialogues" yaml:"dialogues"`
	Templates []quest.Template      `json:"templates" yaml:"templates"`
	KeyQuests []quest.KeyQuest      `json:"key_quests" yaml:"key_quests"`
	Atlas     world.Atlas           `json:"atlas" yaml:"atlas"`
	Chests    []loot.Chest          `json:"chests,omitempty" yaml:"chests,omitempty"`

	catalog inventory.Catalog
}

// EnemySpawn places one enemy instance from a template.
type EnemySpawn struct {
	ID       string     `json:"id" yaml:"id"`
	Template string     `json:"template" yaml:"template"`
	Position world.Vec3 `json:"position" yaml:"position"`
}

// Index builds lookup tables. It must be called after the lists are populated; Load does it.
func (c *Campaign) Index() error {
	cat, err := inventory.NewCatalog(c.Items)
	if err != nil {
		return fmt.Errorf("campaign %s: %w", c.ID, err)
	}
	c.catalog = cat
	return nil
}

// Catalog returns the item catalog, indexing lazily for campaigns built in code.
func (c *Campaign) Catalog() inventory.Catalog {
	if c.catalog == nil {
		cat, _ := inventory.NewCatalog(c.Items)
		c.catalog = cat
	}
	return c.catalog
}

// ItemName resolves an item id to its display name, falling back to the id.
func (c *Campaign) ItemName(id string) string {
	if it, ok := c.Catalog().Get(id); ok && it.Name != "" {
		return it.Name
	}
	return id
}

func (c *Campaign) Enemy(id string) (actor.EnemyStats, bool) {
	for _, e := range c.Enemies {
		if e.ID == id {
			return e, true
		}
	}
	return actor.EnemyStats{}, false
}

func (c *Campaign) NPC(id string) (actor.NPC, bool) {
	for _, n := range c.NPCs {
		if n.ID == id {
			return n, true
		}
	}
	return actor.NPC{}, false
}

func (c *Campaign) Trader(id string) (shop.Trader, bool) {
	for _, t := range c.Traders {
		if t.ID == id {
			return t, true
		}
	}
	return shop.Trader{}, false
}

func (c *Campaign) Dialogue(id string) (*dialogue.Definition, bool) {
	for i := range c.Dialogues {
		if c.Dialogues[i].ID == id {
			return &c.Dialogues[i], true
		}
	}
	return nil, false
}

func (c *Campaign) Chest(id string) (loot.Chest, bool) {
	for _, ch := range c.Chests {
		if ch.Key() == id {
			return ch, true
		}
	}
	return loot.Chest{}, false
}

func (c *Campaign) KeyQuest(id string) (quest.KeyQuest, bool) {
	for _, k := range c.KeyQuests {
		if k.ID == id {
			return k, true
		}
	}
	return quest.KeyQuest{}, false
}

// Summary is the listing entry for a campaign.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (c *Campaign) Summary() Summary {
	return Summary{ID: c.ID, Name: c.Name, Description: c.Description}
}
