package content

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDir = "../../data/campaigns/greywater"

func TestLoad_SampleCampaign(t *testing.T) {
	c, err := Load(sampleDir)
	require.NoError(t, err)

	assert.Equal(t, "greywater", c.ID)
	assert.Equal(t, "Greywater Hollow", c.Name)
	assert.Equal(t, 30, c.StartGold)
	assert.Equal(t, "Wanderer", c.Player.Name)
	assert.NotEmpty(t, c.Items)
	assert.NotEmpty(t, c.Templates)
	assert.Len(t, c.KeyQuests, 3)
	assert.Len(t, c.Atlas.Givers, 4)

	// picker.yaml overrides some fields and keeps the rest.
	assert.Equal(t, 10, c.Picker.HistorySize)
	assert.Equal(t, 0.5, c.Picker.BaseWeights[quest.TypeSteal])
	assert.Equal(t, 1.0, c.Picker.BaseWeights[quest.TypeExplore])
	assert.Equal(t, 0.35, c.Picker.RepeatPenalty)

	assert.NoError(t, c.Validate())

	it, ok := c.Catalog().Get("healing_potion")
	require.True(t, ok)
	assert.Equal(t, 35, it.HealAmount)
	assert.Equal(t, "Spider Silk", c.ItemName("spider_silk"))
	assert.Equal(t, "nope", c.ItemName("nope"))

	_, ok = c.NPC("knife")
	assert.True(t, ok)
	_, ok = c.Trader("brannoc_forge")
	assert.True(t, ok)
	_, ok = c.Dialogue("ilse_talk")
	assert.True(t, ok)
	_, ok = c.Chest("cave_cache")
	assert.True(t, ok)
	_, ok = c.KeyQuest("clear_the_ridge")
	assert.True(t, ok)
}

func TestLoadFS_SectionsAppendToManifest(t *testing.T) {
	fsys := fstest.MapFS{
		"mini/campaign.yaml": {Data: []byte(`
name: Mini
items:
  - {id: bread, name: Bread, type: consumable}
`)},
		"mini/items.yaml": {Data: []byte(`
- {id: sword, name: Sword, type: equipable, slot: weapon}
`)},
	}
	c, err := LoadFS(fsys, "mini")
	require.NoError(t, err)
	assert.Equal(t, "mini", c.ID)
	assert.Len(t, c.Items, 2)
	assert.Equal(t, 12, c.Picker.HistorySize, "defaults survive without picker.yaml")
}

func TestLoadFS_Errors(t *testing.T) {
	fsys := fstest.MapFS{
		"typo/campaign.yaml": {Data: []byte("name: Typo\nstart_goldd: 3\n")},
		"dup/campaign.yaml":  {Data: []byte("name: Dup\n")},
		"dup/items.yaml":     {Data: []byte("- {id: a, type: tool}\n- {id: a, type: tool}\n")},
	}

	_, err := LoadFS(fsys, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = LoadFS(fsys, "typo")
	assert.ErrorContains(t, err, "start_goldd")

	_, err = LoadFS(fsys, "dup")
	assert.ErrorContains(t, err, "duplicate item id")
}

func TestList(t *testing.T) {
	fsys := fstest.MapFS{
		"b/campaign.yaml":   {Data: []byte("name: Bee\n")},
		"a/campaign.yaml":   {Data: []byte("name: Ay\ndescription: first\n")},
		"broken/items.yaml": {Data: []byte("[]")},
		"README.md":         {Data: []byte("hi")},
	}
	got, err := List(fsys)
	require.NoError(t, err)
	assert.Equal(t, []Summary{
		{ID: "a", Name: "Ay", Description: "first"},
		{ID: "b", Name: "Bee"},
	}, got)
}

func TestValidate_DanglingReferences(t *testing.T) {
	fsys := fstest.MapFS{
		"bad/campaign.yaml": {Data: []byte(`
name: Bad
items:
  - {id: iron_sword, name: Iron Sword, type: equipable, slot: weapon}
  - {id: herb, type: material}
npcs:
  - {id: marta, name: Marta, trader: marta_shop}
traders:
  - id: marta_shop
    type: apothecary
    stock:
      - {item: iron_swrod, qty: 1}
templates:
  - {id: t1, name: T1, type: collect, required_item: hreb}
  - {id: t2, name: T2, type: dance}
key_quests:
  - {id: k1, title: K1, completion: talk_to_giver, giver_id: mrata}
  - {id: k2, title: K2, completion: reach_location, target_location: nowhere, min_dynamic_between: 3, max_dynamic_between: 1}
atlas:
  givers:
    - {id: marta, name: Marta, tag: pirate}
`)},
	}
	c, err := LoadFS(fsys, "bad")
	require.NoError(t, err)

	err = c.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	msgs := make([]string, len(verr.Problems))
	for i, p := range verr.Problems {
		msgs[i] = p.String()
	}
	all := strings.Join(msgs, "\n")
	assert.Contains(t, all, `trader marta_shop: unknown item "iron_swrod" (did you mean "iron_sword"?)`)
	assert.Contains(t, all, `template t1: unknown item "hreb" (did you mean "herb"?)`)
	assert.Contains(t, all, `template t2: unknown quest type "dance"`)
	assert.Contains(t, all, `key quest k1: unknown npc "mrata" (did you mean "marta"?)`)
	assert.Contains(t, all, `key quest k2: unknown location "nowhere"`)
	assert.Contains(t, all, "max_dynamic_between below min_dynamic_between")
	assert.Contains(t, all, `giver marta: tag must be "town" or "bandit"`)
}

func TestSuggest(t *testing.T) {
	cands := []string{"marta", "brannoc", "captain_ilse"}
	assert.Equal(t, "marta", Suggest("Marta", cands))
	assert.Equal(t, "brannoc", Suggest("branoc", cands))
	assert.Equal(t, "", Suggest("zzzzzzzz", cands))
	assert.Equal(t, "", Suggest("x", nil))
}

func TestSchema(t *testing.T) {
	data, err := SchemaJSON()
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, string(data), "Quest Engine Campaign")
	assert.Contains(t, string(data), "key_quests")
}
