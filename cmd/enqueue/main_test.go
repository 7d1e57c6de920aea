package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest(t *testing.T) {
	id := uuid.New()

	req, err := buildRequest(id.String(), `{"type":"kill_enemy","enemy_id":"cave_spider"}`)
	require.NoError(t, err)
	assert.Equal(t, id, req.GameStateID)
	assert.Equal(t, game.ActKillEnemy, req.Action.Type)
	assert.Equal(t, "cave_spider", req.Action.EnemyID)
	assert.NotEmpty(t, req.RequestID)

	_, err = buildRequest("nope", `{"type":"wait","dt":1}`)
	assert.ErrorContains(t, err, "invalid -game")

	_, err = buildRequest(id.String(), `{"type":`)
	assert.ErrorContains(t, err, "invalid -action")

	_, err = buildRequest(id.String(), `{"type":"open_chest"}`)
	assert.ErrorIs(t, err, game.ErrInvalidAction)
}
