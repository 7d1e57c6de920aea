// Package generator turns quest templates into concrete dynamic quests, using the
// weighted picker to decide which type of quest the player gets next.
package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/activity"
	"github.com/jwebster45206/quest-engine/pkg/picker"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

var ErrNoTemplate = errors.New("no suitable quest template")

// fallbackOffset places a quest anchor ahead of the player when the atlas has no locations.
var fallbackOffset = world.Vec3{Z: 25}

type Generator struct {
	Templates []quest.Template
	Atlas     *world.Atlas
	Picker    picker.Config
}

// Request carries the player state one generation reads and updates.
type Request struct {
	Activity    *activity.Tracker
	Tags        *world.Tags
	History     *picker.History
	Rand        *rand.Rand
	ContextTag  string
	ForcedGiver string
	// FollowUpTo and LeadsInto are key quest titles appended to the description.
	FollowUpTo string
	LeadsInto  string
}

// Generate builds the next dynamic quest. On success the pick is recorded in the
// history and the player's quest timer is reset.
func (g *Generator) Generate(req Request) (*quest.DynamicQuest, picker.Result, error) {
	criminal := req.Tags != nil && req.Tags.IsCriminal()
	var counters activity.Counters
	if req.Activity != nil {
		counters = req.Activity.Counters
	}
	persona := activity.PersonaOf(counters, criminal)

	pools := make(map[quest.Type][]quest.Template)
	for _, t := range g.Templates {
		if t.Allows(persona, criminal) {
			pools[t.Type] = append(pools[t.Type], t)
		}
	}
	var eligible []quest.Type
	for _, t := range quest.AllTypes {
		if len(pools[t]) > 0 {
			eligible = append(eligible, t)
		}
	}
	if len(eligible) == 0 {
		return nil, picker.Result{}, ErrNoTemplate
	}

	in := picker.Input{Counters: counters, Criminal: criminal, History: req.History}
	for len(eligible) > 0 {
		in.Eligible = eligible
		res, err := picker.Pick(g.Picker, in, req.Rand)
		if err != nil {
			return nil, picker.Result{}, err
		}

		tmpl, giver, ok := g.choose(pools[res.Type], req, criminal)
		if !ok {
			// nothing of this type can be placed; redirect to the others
			eligible = slices.DeleteFunc(eligible, func(t quest.Type) bool { return t == res.Type })
			continue
		}

		q := g.build(tmpl, giver, req)
		if req.History != nil {
			req.History.Push(res.Type)
		}
		if req.Activity != nil {
			req.Activity.ResetQuestTimer()
		}
		return q, res, nil
	}
	return nil, picker.Result{}, ErrNoTemplate
}

// choose picks a template from pool, preferring ones tagged with the request context,
// and a giver for it.
func (g *Generator) choose(pool []quest.Template, req Request, criminal bool) (quest.Template, world.Giver, bool) {
	var preferred, rest []quest.Template
	for _, t := range pool {
		if t.HasContext(req.ContextTag) {
			preferred = append(preferred, t)
		} else {
			rest = append(rest, t)
		}
	}
	for _, group := range [][]quest.Template{preferred, rest} {
		order := req.Rand.Perm(len(group))
		for _, i := range order {
			t := group[i]
			if giver, ok := g.pickGiver(t, req, criminal); ok {
				return t, giver, true
			}
		}
	}
	return quest.Template{}, world.Giver{}, false
}

func (g *Generator) pickGiver(t quest.Template, req Request, criminal bool) (world.Giver, bool) {
	if g.Atlas == nil {
		return world.Giver{}, false
	}
	if req.ForcedGiver != "" {
		if giver, ok := g.Atlas.Giver(req.ForcedGiver); ok {
			return giver, true
		}
	}
	if t.GiverTag != "" {
		if giver, ok := g.Atlas.RandomGiverWithTag(req.Rand, t.GiverTag); ok {
			return giver, true
		}
	}
	if giver, ok := g.Atlas.RandomGiver(req.Rand, criminal); ok {
		return giver, true
	}
	return g.Atlas.RandomGiver(req.Rand, !criminal)
}

func (g *Generator) pickLocation(t quest.Template, req Request) (world.Location, bool) {
	switch {
	case t.RemoteLocation:
		if loc, ok := g.Atlas.RandomLocation(req.Rand, world.CategoryRemote); ok {
			return loc, true
		}
	case t.WorldTag != "":
		if c, ok := world.ParseCategory(t.WorldTag); ok {
			if loc, ok := g.Atlas.RandomLocation(req.Rand, c); ok {
				return loc, true
			}
		}
	}
	return g.Atlas.AnyLocation(req.Rand)
}

func (g *Generator) build(t quest.Template, giver world.Giver, req Request) *quest.DynamicQuest {
	q := &quest.DynamicQuest{
		ID:            uuid.New().String(),
		TemplateID:    t.ID,
		Type:          t.Type,
		Status:        quest.StatusInactive,
		ContextTag:    req.ContextTag,
		GiverID:       giver.ID,
		AreaRadius:    t.AreaRadius,
		TargetItem:    t.RequiredItem,
		TargetEnemy:   t.TargetEnemy,
		DeliverTo:     t.DeliverTo,
		RequiredCount: max(1, t.BaseTargetAmount),
		TimeLimit:     t.TimeLimit,
		GoldReward:    t.GoldReward,
		ItemRewards:   slices.Clone(t.ItemRewards),
		IntroText:     t.IntroText,
		SuccessText:   t.SuccessText,
		FailText:      t.FailText,
	}
	if t.DifficultyWeight > 0 {
		q.GoldReward = int(math.Round(float64(t.GoldReward) * t.DifficultyWeight))
	}
	if q.Type == quest.TypeExplore && q.AreaRadius <= 0 {
		q.AreaRadius = quest.DefaultExploreRadius
	}
	if q.Type == quest.TypeDeliver && q.AreaRadius <= 0 {
		q.AreaRadius = quest.DefaultDeliverRadius
	}

	place := "nearby"
	if loc, ok := g.pickLocation(t, req); ok {
		q.LocationID = loc.ID
		q.TargetPosition = loc.Position
		place = loc.Name
	} else {
		anchor := giver.Position
		if req.Activity != nil && req.Activity.LastPosition != nil {
			anchor = *req.Activity.LastPosition
		}
		q.TargetPosition = anchor.Add(fallbackOffset)
	}

	var flavor string
	if len(t.FlavorLines) > 0 {
		flavor = t.FlavorLines[req.Rand.IntN(len(t.FlavorLines))]
	}
	q.Name, q.Description = t.Render(quest.Tokens{Giver: giver.Name, Flavor: flavor, Place: place})

	switch {
	case req.FollowUpTo != "":
		q.Description += fmt.Sprintf("\nFollow-up to: %s", req.FollowUpTo)
	case req.LeadsInto != "":
		q.Description += fmt.Sprintf("\nLeads into: %s", req.LeadsInto)
	}
	return q
}
