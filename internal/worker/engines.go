package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

// Engines builds one game.Engine per campaign and keeps it for the life of the process.
type Engines struct {
	store  storage.Storage
	logger *slog.Logger

	mu   sync.Mutex
	byID map[string]*game.Engine
}

func NewEngines(store storage.Storage, logger *slog.Logger) *Engines {
	return &Engines{store: store, logger: logger, byID: make(map[string]*game.Engine)}
}

func (e *Engines) Get(ctx context.Context, campaignID string) (*game.Engine, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if eng, ok := e.byID[campaignID]; ok {
		return eng, nil
	}
	c, err := e.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	eng := game.NewEngine(c, e.logger)
	e.byID[campaignID] = eng
	return eng, nil
}
