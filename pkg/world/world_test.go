package world

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTags_FlagsSatisfied(t *testing.T) {
	tags := NewTags()
	tags.SetFlag("met_guard")

	tests := []struct {
		name     string
		required []string
		want     bool
	}{
		{"no requirements", nil, true},
		{"present flag", []string{"met_guard"}, true},
		{"missing flag", []string{"met_mayor"}, false},
		{"negated absent flag", []string{"!met_mayor"}, true},
		{"negated present flag", []string{"!met_guard"}, false},
		{"mixed", []string{"met_guard", "!bandits_joined"}, true},
		{"empty entries ignored", []string{"", "met_guard"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tags.FlagsSatisfied(tt.required); got != tt.want {
				t.Errorf("FlagsSatisfied(%v) = %v, want %v", tt.required, got, tt.want)
			}
		})
	}
}

func TestTags_CriminalAndGood(t *testing.T) {
	tags := NewTags()
	assert.False(t, tags.IsCriminal())

	tags.HelpedVillagers = true
	assert.True(t, tags.IsGood())

	tags.AttackedGuards = true
	assert.True(t, tags.IsCriminal())
	assert.True(t, tags.IsGood(), "attacking guards alone does not make the player wanted")

	tags.PlayerWanted = true
	assert.False(t, tags.IsGood())
}

func TestTags_RecordTheft(t *testing.T) {
	tags := NewTags()
	tags.RecordTheft("Farmer Joe")
	tags.RecordTheft("Farmer Joe")
	tags.RecordTheft("")

	assert.Equal(t, []string{"Farmer Joe"}, tags.StolenFromOwners)
	assert.True(t, tags.StoleFrom("Farmer Joe"))
	assert.False(t, tags.StoleFrom("Mayor"))
}

func TestAtlas_RandomGiver(t *testing.T) {
	atlas := &Atlas{
		Givers: []Giver{
			{ID: "smith", Tag: "Town"},
			{ID: "boss", Tag: "bandit"},
		},
	}
	rng := rand.New(rand.NewPCG(1, 2))

	g, ok := atlas.RandomGiver(rng, false)
	assert.True(t, ok)
	assert.Equal(t, "smith", g.ID)

	g, ok = atlas.RandomGiver(rng, true)
	assert.True(t, ok)
	assert.Equal(t, "boss", g.ID)

	empty := &Atlas{}
	_, ok = empty.RandomGiver(rng, true)
	assert.False(t, ok)
}

func TestAtlas_AnyLocationFallbackOrder(t *testing.T) {
	atlas := &Atlas{
		Locations: []Location{
			{ID: "cave", Category: CategorySecret},
			{ID: "camp", Category: CategoryBandit},
		},
	}
	rng := rand.New(rand.NewPCG(3, 4))

	l, ok := atlas.AnyLocation(rng)
	assert.True(t, ok)
	assert.Equal(t, "camp", l.ID, "bandit camps come before secret locations")
}

func TestMarkers(t *testing.T) {
	ms := Markers{}

	assert.True(t, ms.AddSimple("q:1:giver", Vec3{X: 1}, IconQuestGiver))
	assert.False(t, ms.AddSimple("q:1:giver", Vec3{X: 2}, IconQuestGiver), "position-only update is not structural")
	assert.Equal(t, 2.0, ms["q:1:giver"].Position.X)

	assert.True(t, ms.SetActive("q:1:giver", false))
	assert.False(t, ms.SetActive("q:1:giver", false))
	assert.False(t, ms.SetActive("missing", true))

	assert.True(t, ms.Remove("q:1:giver"))
	assert.False(t, ms.Remove("q:1:giver"))
	assert.False(t, ms.AddSimple("", Vec3{}, IconCustom))
}

func TestClosestCheckpoint(t *testing.T) {
	cps := []Checkpoint{
		{ID: "gate", Position: Vec3{X: 10}},
		{ID: "bridge", Position: Vec3{X: -3}},
		{ID: "ridge", Position: Vec3{Z: 50}},
	}

	cp, ok := ClosestCheckpoint(cps, Vec3{X: -1})
	assert.True(t, ok)
	assert.Equal(t, "bridge", cp.ID)

	_, ok = ClosestCheckpoint(nil, Vec3{})
	assert.False(t, ok)

	atlas := &Atlas{Checkpoints: cps, Spawn: Vec3{Y: 1}}
	assert.Equal(t, Vec3{X: 10}, atlas.SpawnPoint("gate"))
	assert.Equal(t, Vec3{Y: 1}, atlas.SpawnPoint("gone"))
}

func TestLocation_Contains(t *testing.T) {
	l := Location{Position: Vec3{X: 0}}
	assert.True(t, l.Contains(Vec3{X: 1.5}))
	assert.False(t, l.Contains(Vec3{X: 2.5}))

	l.Radius = 8
	assert.True(t, l.Contains(Vec3{X: 7}))
}
