package world

import (
	"math/rand/v2"
	"slices"
	"strings"
)

// LocationCategory groups quest locations by how they are used by templates.
type LocationCategory string

const (
	CategoryTown   LocationCategory = "town"
	CategoryRemote LocationCategory = "remote"
	CategorySecret LocationCategory = "secret"
	CategoryBandit LocationCategory = "bandit"
)

// ParseCategory maps a template's world tag onto a category. Unknown tags return false.
func ParseCategory(tag string) (LocationCategory, bool) {
	switch LocationCategory(strings.ToLower(strings.TrimSpace(tag))) {
	case CategoryTown:
		return CategoryTown, true
	case CategoryRemote:
		return CategoryRemote, true
	case CategorySecret:
		return CategorySecret, true
	case CategoryBandit:
		return CategoryBandit, true
	}
	return "", false
}

// Giver tags
const (
	GiverTagTown   = "town"
	GiverTagBandit = "bandit"
)

// Location is a named point of interest quests can be anchored to.
type Location struct {
	ID       string           `json:"id" yaml:"id"`
	Name     string           `json:"name" yaml:"name"`
	Category LocationCategory `json:"category" yaml:"category"`
	Position Vec3             `json:"position" yaml:"position"`
	Radius   float64          `json:"radius,omitempty" yaml:"radius,omitempty"`
}

// Contains reports whether p is inside the location's radius (2 units when unset).
func (l Location) Contains(p Vec3) bool {
	r := l.Radius
	if r <= 0 {
		r = 2
	}
	return l.Position.Distance(p) <= r
}

// Giver is an NPC that can hand out dynamic quests.
type Giver struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Tag      string `json:"tag" yaml:"tag"` // "town" or "bandit"
	Position Vec3   `json:"position" yaml:"position"`
}

// Tags is the mutable world-state record: reputation booleans and story flags.
type Tags struct {
	PlayerWanted     bool            `json:"player_wanted,omitempty"`
	AttackedGuards   bool            `json:"attacked_guards,omitempty"`
	HelpedVillagers  bool            `json:"helped_villagers,omitempty"`
	Flags            map[string]bool `json:"flags,omitempty"`
	StolenFromOwners []string        `json:"stolen_from_owners,omitempty"`
}

func NewTags() *Tags {
	return &Tags{Flags: make(map[string]bool)}
}

func (t *Tags) IsCriminal() bool {
	return t.PlayerWanted || t.AttackedGuards
}

func (t *Tags) IsGood() bool {
	return t.HelpedVillagers && !t.PlayerWanted
}

func (t *Tags) SetFlag(tag string) {
	if tag == "" {
		return
	}
	if t.Flags == nil {
		t.Flags = make(map[string]bool)
	}
	t.Flags[tag] = true
}

func (t *Tags) ClearFlag(tag string) {
	if tag == "" {
		return
	}
	delete(t.Flags, tag)
}

func (t *Tags) HasFlag(tag string) bool {
	if tag == "" {
		return false
	}
	return t.Flags[tag]
}

// FlagsSatisfied checks a requirement list where "!flag" means the flag must be absent.
func (t *Tags) FlagsSatisfied(required []string) bool {
	for _, f := range required {
		if f == "" {
			continue
		}
		if name, negated := strings.CutPrefix(f, "!"); negated {
			if t.HasFlag(name) {
				return false
			}
			continue
		}
		if !t.HasFlag(f) {
			return false
		}
	}
	return true
}

// RecordTheft remembers the owner so traders can ban the player later.
func (t *Tags) RecordTheft(owner string) {
	if owner == "" || slices.Contains(t.StolenFromOwners, owner) {
		return
	}
	t.StolenFromOwners = append(t.StolenFromOwners, owner)
}

func (t *Tags) StoleFrom(owner string) bool {
	return owner != "" && slices.Contains(t.StolenFromOwners, owner)
}

// Atlas is the static layout of a campaign world.
type Atlas struct {
	Locations   []Location   `json:"locations" yaml:"locations"`
	Givers      []Giver      `json:"givers" yaml:"givers"`
	Checkpoints []Checkpoint `json:"checkpoints,omitempty" yaml:"checkpoints,omitempty"`
	Spawn       Vec3         `json:"spawn" yaml:"spawn"`
}

func (a *Atlas) Location(id string) (Location, bool) {
	for _, l := range a.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}

func (a *Atlas) Giver(id string) (Giver, bool) {
	for _, g := range a.Givers {
		if g.ID == id {
			return g, true
		}
	}
	return Giver{}, false
}

// RandomLocation returns a random location of the category.
func (a *Atlas) RandomLocation(rng *rand.Rand, c LocationCategory) (Location, bool) {
	var pool []Location
	for _, l := range a.Locations {
		if l.Category == c {
			pool = append(pool, l)
		}
	}
	if len(pool) == 0 {
		return Location{}, false
	}
	return pool[rng.IntN(len(pool))], true
}

// AnyLocation tries town, remote, bandit then secret, the fallback order quests use.
func (a *Atlas) AnyLocation(rng *rand.Rand) (Location, bool) {
	for _, c := range []LocationCategory{CategoryTown, CategoryRemote, CategoryBandit, CategorySecret} {
		if l, ok := a.RandomLocation(rng, c); ok {
			return l, true
		}
	}
	return Location{}, false
}

// RandomGiver picks a bandit giver for criminals and a town giver otherwise.
func (a *Atlas) RandomGiver(rng *rand.Rand, criminal bool) (Giver, bool) {
	want := GiverTagTown
	if criminal {
		want = GiverTagBandit
	}
	return a.RandomGiverWithTag(rng, want)
}

func (a *Atlas) RandomGiverWithTag(rng *rand.Rand, tag string) (Giver, bool) {
	var pool []Giver
	for _, g := range a.Givers {
		if strings.EqualFold(g.Tag, tag) {
			pool = append(pool, g)
		}
	}
	if len(pool) == 0 {
		return Giver{}, false
	}
	return pool[rng.IntN(len(pool))], true
}
