// Package loot rolls the contents of secret chests.
package loot

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/world"
)

const (
	MinRolls     = 1
	MaxRolls     = 10
	MaxBonusGold = 1000

	// minWeight keeps zero-weight entries pickable.
	minWeight = 0.0001

	questChestPrefix = "quest_chest_"
)

var (
	ErrAlreadyOpened = errors.New("chest already opened")
	ErrUnknownChest  = errors.New("unknown chest")
)

// Entry is one line of a chest's loot table.
type Entry struct {
	ItemID string  `json:"item" yaml:"item"`
	Min    int     `json:"min" yaml:"min"`
	Max    int     `json:"max" yaml:"max"`
	Chance float64 `json:"chance" yaml:"chance"`
	Weight float64 `json:"weight" yaml:"weight"`
}

func (e Entry) weight() float64 {
	return max(minWeight, e.Weight)
}

// Chest is a placed container opened at most once per game.
type Chest struct {
	ID              string     `json:"id" yaml:"id"`
	Position        world.Vec3 `json:"position" yaml:"position"`
	Rolls           int        `json:"rolls" yaml:"rolls"`
	AllowDuplicates *bool      `json:"allow_duplicates,omitempty" yaml:"allow_duplicates,omitempty"`
	Entries         []Entry    `json:"entries" yaml:"entries"`
	BonusGold       int        `json:"bonus_gold,omitempty" yaml:"bonus_gold,omitempty"`
	CountAsSecret   *bool      `json:"count_as_secret,omitempty" yaml:"count_as_secret,omitempty"`
	// QuestID marks a chest placed for a quest; its id is derived from the quest when unset.
	QuestID string `json:"quest_id,omitempty" yaml:"quest_id,omitempty"`
}

// Key is the id the chest is remembered by once opened.
func (c Chest) Key() string {
	if c.ID != "" {
		return c.ID
	}
	if c.QuestID != "" {
		return questChestPrefix + c.QuestID
	}
	return ""
}

func (c Chest) rolls() int {
	return min(MaxRolls, max(MinRolls, c.Rolls))
}

func (c Chest) duplicates() bool {
	return c.AllowDuplicates == nil || *c.AllowDuplicates
}

// IsSecret reports whether opening the chest counts as finding a secret.
func (c Chest) IsSecret() bool {
	return c.CountAsSecret == nil || *c.CountAsSecret
}

func (c Chest) Validate() error {
	if c.Key() == "" {
		return errors.New("chest has no id")
	}
	if c.BonusGold < 0 || c.BonusGold > MaxBonusGold {
		return fmt.Errorf("chest %s: bonus gold %d out of range [0,%d]", c.Key(), c.BonusGold, MaxBonusGold)
	}
	for i, e := range c.Entries {
		if e.ItemID == "" {
			return fmt.Errorf("chest %s: entry %d has no item", c.Key(), i)
		}
		if e.Chance < 0 || e.Chance > 1 {
			return fmt.Errorf("chest %s: entry %d chance %v out of range [0,1]", c.Key(), i, e.Chance)
		}
	}
	return nil
}

// Drop is an item stack granted by a chest.
type Drop struct {
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

// Result is what a chest gave the player.
type Result struct {
	ChestID string `json:"chest_id"`
	Drops   []Drop `json:"drops,omitempty"`
	Gold    int    `json:"gold,omitempty"`
	Summary string `json:"summary"`
	Secret  bool   `json:"secret,omitempty"`
}

// Roll draws the chest's loot without recording it as opened. name resolves item ids to
// display names for the summary; nil uses the ids.
func (c Chest) Roll(rng *rand.Rand, name func(itemID string) string) Result {
	pool := make([]Entry, 0, len(c.Entries))
	for _, e := range c.Entries {
		if e.ItemID != "" {
			pool = append(pool, e)
		}
	}

	res := Result{ChestID: c.Key(), Secret: c.IsSecret()}
	index := map[string]int{}
	for range c.rolls() {
		var candidates []int
		for i, e := range pool {
			if rng.Float64() <= min(1, max(0, e.Chance)) {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			continue
		}

		total := 0.0
		for _, i := range candidates {
			total += pool[i].weight()
		}
		pick := rng.Float64() * total
		chosen := candidates[0]
		acc := 0.0
		for _, i := range candidates {
			acc += pool[i].weight()
			if pick <= acc {
				chosen = i
				break
			}
		}

		e := pool[chosen]
		lo := max(1, e.Min)
		hi := max(e.Min, e.Max)
		amount := lo
		if hi > lo {
			amount = lo + rng.IntN(hi-lo+1)
		}

		if j, ok := index[e.ItemID]; ok {
			res.Drops[j].Qty += amount
		} else {
			index[e.ItemID] = len(res.Drops)
			res.Drops = append(res.Drops, Drop{ItemID: e.ItemID, Qty: amount})
		}

		if !c.duplicates() {
			pool = append(pool[:chosen], pool[chosen+1:]...)
		}
	}

	if c.BonusGold > 0 {
		res.Gold = c.BonusGold
	}
	res.Summary = summarize(res, name)
	return res
}

func summarize(res Result, name func(string) string) string {
	var parts []string
	for _, d := range res.Drops {
		n := d.ItemID
		if name != nil {
			n = name(d.ItemID)
		}
		parts = append(parts, fmt.Sprintf("%dx %s", d.Qty, n))
	}
	if res.Gold > 0 {
		parts = append(parts, fmt.Sprintf("%d gold", res.Gold))
	}
	if len(parts) == 0 {
		return "You found nothing."
	}
	return "You found " + strings.Join(parts, ", ") + "."
}

// Opened is the set of chest keys opened in a game.
type Opened map[string]bool

// Open rolls c and marks it opened. A chest can only be opened once per game.
func (o Opened) Open(c Chest, rng *rand.Rand, name func(string) string) (Result, error) {
	key := c.Key()
	if key == "" {
		return Result{}, ErrUnknownChest
	}
	if o[key] {
		return Result{}, ErrAlreadyOpened
	}
	o[key] = true
	return c.Roll(rng, name), nil
}

func (o Opened) IsOpened(key string) bool {
	return o[key]
}
