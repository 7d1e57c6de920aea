package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDir_Greywater(t *testing.T) {
	assert.NoError(t, validateDir("../../data/campaigns/greywater"))
}

func TestValidateDir_BadName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "River-Town")
	require.NoError(t, os.Mkdir(dir, 0o755))
	err := validateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snake_case")
}

func TestValidateDir_DanglingReference(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tiny")
	require.NoError(t, os.Mkdir(dir, 0o755))
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("campaign.yaml", "name: Tiny\n")
	write("npcs.yaml", "- {id: smith, name: Smith, tag: town, trader: smithy_shop}\n")
	write("traders.yaml", "- {id: smithy_shp, name: Smithy, type: blacksmith}\n")

	err := validateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "smithy_shp"`)
}

func TestIDProblems(t *testing.T) {
	c := &content.Campaign{
		Items: []inventory.Item{{ID: "good_item"}, {ID: "Bad-Item"}},
	}
	problems := idProblems(c)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "Bad-Item")
}

func TestIsValidCampaignDir(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"greywater", true},
		{"river_town", true},
		{"x.river_town", true},
		{"river-town", false},
		{"RiverTown", false},
		{"_river", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isValidCampaignDir(tt.name), tt.name)
	}
}
