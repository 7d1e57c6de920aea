package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// Storage combines game state persistence (Redis) with campaign loading (filesystem).
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// GameState operations. LoadGameState returns nil, nil for an unknown id.
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	// Campaign operations. GetCampaign wraps content.ErrNotFound for an unknown id.
	ListCampaigns(ctx context.Context) ([]content.Summary, error)
	GetCampaign(ctx context.Context, id string) (*content.Campaign, error)
}
