package content

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

// Problem is one validation finding.
type Problem struct {
	Where   string `json:"where"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	return p.Where + ": " + p.Message
}

// ValidationError collects every problem found in a campaign.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	return fmt.Sprintf("campaign has %d problem(s):\n%s", len(e.Problems), strings.Join(lines, "\n"))
}

type validator struct {
	problems []Problem
}

func (v *validator) addf(where, format string, args ...any) {
	v.problems = append(v.problems, Problem{Where: where, Message: fmt.Sprintf(format, args...)})
}

// ref records a dangling reference with the closest known id as a hint.
func (v *validator) ref(where, kind, id string, known map[string]bool) {
	if id == "" || known[id] {
		return
	}
	msg := fmt.Sprintf("unknown %s %q", kind, id)
	if s := Suggest(id, keys(known)); s != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", s)
	}
	v.addf(where, "%s", msg)
}

// Validate checks ids are unique and every cross reference resolves.
func (c *Campaign) Validate() error {
	v := &validator{}

	items := ids(c.Items, func(it inventory.Item) string { return it.ID })
	enemies := map[string]bool{}
	npcs := map[string]bool{}
	traders := map[string]bool{}
	dialogues := map[string]bool{}
	locations := map[string]bool{}
	spawns := map[string]bool{}

	if c.Name == "" {
		v.addf("campaign", "missing name")
	}
	if len(c.Items) != len(items) {
		v.addf("items", "duplicate or empty item ids")
	}
	for _, it := range c.Items {
		where := "item " + it.ID
		switch it.Type {
		case inventory.TypeConsumable, inventory.TypeQuest, inventory.TypeTool, inventory.TypeMaterial:
		case inventory.TypeEquipable:
			if it.Slot == "" {
				v.addf(where, "equipable item needs a slot")
			}
		default:
			v.addf(where, "unknown item type %q", it.Type)
		}
	}

	for _, e := range c.Enemies {
		unique(v, "enemy", e.ID, enemies)
		if e.MaxHealth <= 0 {
			v.addf("enemy "+e.ID, "max_health must be positive")
		}
		v.ref("enemy "+e.ID, "loot item", e.LootDrop, items)
	}
	for _, s := range c.SpawnEnemies {
		unique(v, "spawn", s.ID, spawns)
		v.ref("spawn "+s.ID, "enemy", s.Template, enemies)
	}
	for _, d := range c.Dialogues {
		unique(v, "dialogue", d.ID, dialogues)
		nodes := map[string]bool{}
		for _, n := range d.Nodes {
			nodes[n.ID] = true
		}
		if !nodes[d.StartNode()] {
			v.addf("dialogue "+d.ID, "start node %q missing", d.StartNode())
		}
		for _, n := range d.Nodes {
			for _, ch := range n.Choices {
				v.ref(fmt.Sprintf("dialogue %s node %s", d.ID, n.ID), "node", ch.Next, nodes)
			}
		}
	}
	for _, t := range c.Traders {
		unique(v, "trader", t.ID, traders)
		for _, s := range t.Stock {
			v.ref("trader "+t.ID, "item", s.ItemID, items)
		}
	}
	for _, n := range c.NPCs {
		unique(v, "npc", n.ID, npcs)
		v.ref("npc "+n.ID, "dialogue", n.DialogueID, dialogues)
		v.ref("npc "+n.ID, "trader", n.TraderID, traders)
	}
	for _, l := range c.Atlas.Locations {
		unique(v, "location", l.ID, locations)
		if _, ok := world.ParseCategory(string(l.Category)); !ok {
			v.addf("location "+l.ID, "unknown category %q", l.Category)
		}
	}
	for _, g := range c.Atlas.Givers {
		v.ref("giver", "npc", g.ID, npcs)
		if g.Tag != world.GiverTagTown && g.Tag != world.GiverTagBandit {
			v.addf("giver "+g.ID, "tag must be %q or %q", world.GiverTagTown, world.GiverTagBandit)
		}
	}

	enemyRefs := union(enemies, spawns)
	templates := map[string]bool{}
	for _, t := range c.Templates {
		where := "template " + t.ID
		unique(v, "template", t.ID, templates)
		if !t.Type.Valid() {
			v.addf(where, "unknown quest type %q", t.Type)
		}
		v.ref(where, "item", t.RequiredItem, items)
		v.ref(where, "enemy", t.TargetEnemy, enemyRefs)
		v.ref(where, "npc", t.DeliverTo, npcs)
		for _, r := range t.ItemRewards {
			v.ref(where, "reward item", r, items)
		}
		if t.WorldTag != "" {
			if _, ok := world.ParseCategory(t.WorldTag); !ok {
				v.addf(where, "unknown world tag %q", t.WorldTag)
			}
		}
		switch t.Type {
		case quest.TypeCollect, quest.TypeSteal, quest.TypeDeliver:
			if t.RequiredItem == "" {
				v.addf(where, "%s quests need required_item", t.Type)
			}
		}
		if t.Type == quest.TypeDeliver && t.DeliverTo == "" {
			v.addf(where, "deliver quests need deliver_to")
		}
	}

	keyQuests := map[string]bool{}
	for _, k := range c.KeyQuests {
		where := "key quest " + k.ID
		unique(v, "key quest", k.ID, keyQuests)
		v.ref(where, "npc", k.GiverID, npcs)
		switch k.Completion {
		case quest.CompleteTalkToGiver:
			if k.GiverID == "" {
				v.addf(where, "talk completion needs giver_id")
			}
		case quest.CompleteKillTarget:
			v.ref(where, "enemy", k.TargetEnemy, enemyRefs)
		case quest.CompleteReachLocation:
			if k.TargetLocation == "" {
				v.addf(where, "reach completion needs target_location")
			}
			v.ref(where, "location", k.TargetLocation, locations)
		default:
			v.addf(where, "unknown completion %q", k.Completion)
		}
		if k.MaxDynamicBetween < k.MinDynamicBetween {
			v.addf(where, "max_dynamic_between below min_dynamic_between")
		}
		if k.NextBridgeGiver == quest.BridgeGiverReferenced {
			v.ref(where, "npc", k.NextBridgeGiverRefID, npcs)
		}
	}

	chests := map[string]bool{}
	for _, ch := range c.Chests {
		if err := ch.Validate(); err != nil {
			v.addf("chests", "%v", err)
			continue
		}
		unique(v, "chest", ch.Key(), chests)
		for _, e := range ch.Entries {
			v.ref("chest "+ch.Key(), "item", e.ItemID, items)
		}
	}

	if err := c.Picker.Validate(); err != nil {
		v.addf("picker", "%v", err)
	}

	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

// Suggest returns the candidate closest to s by edit distance, or "" when nothing is
// close enough to be a plausible typo.
func Suggest(s string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(strings.ToLower(s), strings.ToLower(c))
		if bestDist < 0 || d < bestDist || (d == bestDist && c < best) {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(s)/3) {
		return ""
	}
	return best
}

func unique(v *validator, kind, id string, seen map[string]bool) {
	if id == "" {
		v.addf(kind, "missing id")
		return
	}
	if seen[id] {
		v.addf(kind+" "+id, "duplicate id")
	}
	seen[id] = true
}

func ids[T any](list []T, id func(T) string) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, x := range list {
		if k := id(x); k != "" {
			out[k] = true
		}
	}
	return out
}

func union(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
