package generator

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/jwebster45206/quest-engine/pkg/activity"
	"github.com/jwebster45206/quest-engine/pkg/picker"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAtlas() *world.Atlas {
	return &world.Atlas{
		Locations: []world.Location{
			{ID: "square", Name: "Town Square", Category: world.CategoryTown, Position: world.Vec3{X: 1}},
			{ID: "ridge", Name: "Wolf Ridge", Category: world.CategoryRemote, Position: world.Vec3{X: 200}},
			{ID: "camp", Name: "Bandit Camp", Category: world.CategoryBandit, Position: world.Vec3{X: -150}},
		},
		Givers: []world.Giver{
			{ID: "marta", Name: "marta", Tag: world.GiverTagTown},
			{ID: "knife", Name: "knife", Tag: world.GiverTagBandit},
		},
	}
}

func testTemplates() []quest.Template {
	return []quest.Template{
		{ID: "wolves", Type: quest.TypeKill, Verb: "cull", TargetNoun: "wolves", TargetEnemy: "wolf",
			BaseTargetAmount: 3, GoldReward: 30, RemoteLocation: true},
		{ID: "scout", Type: quest.TypeExplore, Verb: "scout", TargetNoun: "the ridge", WorldTag: "remote",
			FlavorLines: []string{"Strange lights were seen."}},
		{ID: "herbs", Type: quest.TypeCollect, Verb: "gather", TargetNoun: "herbs", RequiredItem: "herb",
			BaseTargetAmount: 4, ContextTags: []string{"mayor"}},
		{ID: "heist", Type: quest.TypeSteal, Verb: "lift", TargetNoun: "the ledger", CriminalOnly: true,
			GiverTag: world.GiverTagBandit, WorldTag: "town"},
	}
}

func newRequest(seed uint64) Request {
	return Request{
		Activity: &activity.Tracker{},
		Tags:     world.NewTags(),
		History:  picker.NewHistory(12),
		Rand:     rand.New(rand.NewPCG(seed, seed+1)),
	}
}

func TestGenerate_HonestPlayer(t *testing.T) {
	g := &Generator{Templates: testTemplates(), Atlas: testAtlas(), Picker: picker.DefaultConfig()}

	for seed := range uint64(50) {
		req := newRequest(seed)
		req.Activity.TimeSinceLastQuest = 40
		q, res, err := g.Generate(req)
		require.NoError(t, err)

		assert.NotEqual(t, quest.TypeSteal, q.Type, "criminal-only template offered to honest player")
		assert.NotContains(t, res.Weights, quest.TypeSteal)
		assert.NotContains(t, res.Weights, quest.TypeDeliver, "types without templates are ineligible")
		assert.Equal(t, "marta", q.GiverID)
		assert.Equal(t, quest.StatusInactive, q.Status)
		assert.NotEmpty(t, q.ID)
		assert.Equal(t, 1, req.History.Len())
		assert.Equal(t, 0.0, req.Activity.TimeSinceLastQuest, "quest timer should reset")
	}
}

func TestGenerate_CriminalGetsBanditGiver(t *testing.T) {
	g := &Generator{
		Templates: []quest.Template{testTemplates()[3]},
		Atlas:     testAtlas(),
		Picker:    picker.DefaultConfig(),
	}
	req := newRequest(3)
	req.Tags.PlayerWanted = true

	q, _, err := g.Generate(req)
	require.NoError(t, err)
	assert.Equal(t, quest.TypeSteal, q.Type)
	assert.Equal(t, "knife", q.GiverID)
	assert.Equal(t, "square", q.LocationID)
	assert.Equal(t, "Lift The Ledger For Knife", q.Name)
}

func TestGenerate_BuildsFromTemplate(t *testing.T) {
	g := &Generator{Templates: []quest.Template{testTemplates()[0]}, Atlas: testAtlas(), Picker: picker.DefaultConfig()}
	req := newRequest(1)
	req.FollowUpTo = "Meet the guard"

	q, _, err := g.Generate(req)
	require.NoError(t, err)
	assert.Equal(t, "Cull Wolves For Marta", q.Name)
	assert.Equal(t, "ridge", q.LocationID)
	assert.Equal(t, world.Vec3{X: 200}, q.TargetPosition)
	assert.Equal(t, 3, q.RequiredCount)
	assert.Equal(t, "wolf", q.TargetEnemy)
	assert.Equal(t, 30, q.GoldReward)
	assert.True(t, strings.HasSuffix(q.Description, "Follow-up to: Meet the guard"))
}

func TestGenerate_ContextTagPreferred(t *testing.T) {
	templates := []quest.Template{
		{ID: "plain", Type: quest.TypeCollect, Verb: "gather", TargetNoun: "stones"},
		testTemplates()[2],
	}
	g := &Generator{Templates: templates, Atlas: testAtlas(), Picker: picker.DefaultConfig()}

	for seed := range uint64(20) {
		req := newRequest(seed)
		req.ContextTag = "Mayor"
		q, _, err := g.Generate(req)
		require.NoError(t, err)
		assert.Equal(t, "herbs", q.TemplateID)
	}
}

func TestGenerate_RedirectsWhenTypeCannotBePlaced(t *testing.T) {
	atlas := testAtlas()
	atlas.Givers = []world.Giver{{ID: "marta", Name: "marta", Tag: world.GiverTagTown}}
	templates := []quest.Template{
		{ID: "only-bandits", Type: quest.TypeKill, GiverTag: "bandit"},
		{ID: "scout", Type: quest.TypeExplore},
	}
	// the kill template still falls back to the town giver, so strip that too
	g := &Generator{Templates: templates, Atlas: &world.Atlas{Locations: atlas.Locations}, Picker: picker.DefaultConfig()}
	_, _, err := g.Generate(newRequest(9))
	assert.ErrorIs(t, err, ErrNoTemplate, "no givers at all means nothing can be placed")

	g.Atlas = atlas
	q, _, err := g.Generate(newRequest(9))
	require.NoError(t, err)
	assert.Equal(t, "marta", q.GiverID)
}

func TestGenerate_ForcedGiver(t *testing.T) {
	g := &Generator{Templates: testTemplates()[:3], Atlas: testAtlas(), Picker: picker.DefaultConfig()}
	req := newRequest(4)
	req.ForcedGiver = "knife"

	q, _, err := g.Generate(req)
	require.NoError(t, err)
	assert.Equal(t, "knife", q.GiverID)
}

func TestGenerate_FallbackAnchorWithoutLocations(t *testing.T) {
	atlas := testAtlas()
	atlas.Locations = nil
	g := &Generator{Templates: testTemplates()[:1], Atlas: atlas, Picker: picker.DefaultConfig()}
	req := newRequest(2)
	pos := world.Vec3{X: 5, Z: 5}
	req.Activity.LastPosition = &pos

	q, _, err := g.Generate(req)
	require.NoError(t, err)
	assert.Equal(t, world.Vec3{X: 5, Z: 30}, q.TargetPosition)
	assert.Empty(t, q.LocationID)
}

func TestGenerate_NoTemplates(t *testing.T) {
	g := &Generator{Templates: []quest.Template{testTemplates()[3]}, Atlas: testAtlas(), Picker: picker.DefaultConfig()}
	_, _, err := g.Generate(newRequest(1))
	assert.ErrorIs(t, err, ErrNoTemplate)
}
