package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

var ErrGameNotFound = errors.New("game not found")

// DefaultLockWait is how long synchronous callers wait for a busy game.
const DefaultLockWait = 2 * time.Second

// Result is a game after an action together with the events the action produced.
type Result struct {
	State  *state.GameState
	Events []game.Event
	Engine *game.Engine
}

// Processor loads a game, applies an action through its campaign engine, saves the
// game and publishes the outcome. API handlers and the queue worker share it.
type Processor struct {
	store       storage.Storage
	engines     *Engines
	locker      *Locker
	broadcaster *events.Broadcaster
	logger      *slog.Logger
	LockWait    time.Duration
}

func NewProcessor(store storage.Storage, engines *Engines, locker *Locker, broadcaster *events.Broadcaster, logger *slog.Logger) *Processor {
	return &Processor{
		store:       store,
		engines:     engines,
		locker:      locker,
		broadcaster: broadcaster,
		logger:      logger,
		LockWait:    DefaultLockWait,
	}
}

// NewGame creates and saves a fresh game in campaignID.
func (p *Processor) NewGame(ctx context.Context, campaignID string) (*Result, error) {
	eng, err := p.engines.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	gs, evs, err := eng.NewGame()
	if err != nil {
		return nil, err
	}
	if err := p.store.SaveGameState(ctx, gs.ID, gs); err != nil {
		return nil, err
	}
	if err := p.broadcaster.PublishGameEvents(ctx, gs.ID, gs.Version, evs); err != nil {
		p.logger.Warn("Failed to publish new game events", "game_id", gs.ID, "error", err)
	}
	return &Result{State: gs, Events: evs, Engine: eng}, nil
}

// Load returns a game and the engine of its campaign.
func (p *Processor) Load(ctx context.Context, gameID uuid.UUID) (*state.GameState, *game.Engine, error) {
	gs, err := p.store.LoadGameState(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	if gs == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	eng, err := p.engines.Get(ctx, gs.CampaignID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load campaign %s: %w", gs.CampaignID, err)
	}
	return gs, eng, nil
}

// Apply runs a under the game lock, waiting up to LockWait for it.
func (p *Processor) Apply(ctx context.Context, gameID uuid.UUID, requestID string, a game.Action) (*Result, error) {
	release, err := p.locker.Lock(ctx, gameID, p.LockWait)
	if err != nil {
		return nil, err
	}
	defer release()
	return p.ApplyLocked(ctx, gameID, requestID, a)
}

// ApplyLocked runs a on a game whose lock the caller holds. A rejected action leaves
// the stored game untouched.
func (p *Processor) ApplyLocked(ctx context.Context, gameID uuid.UUID, requestID string, a game.Action) (*Result, error) {
	log := p.logger.With("game_id", gameID, "request_id", requestID, "action", a.Type)
	start := time.Now()

	res, err := p.apply(ctx, gameID, a)
	if err != nil {
		if game.Classify(err) == game.KindInternal && !errors.Is(err, ErrGameNotFound) {
			log.Error("Failed to process action", "error", err)
		} else {
			log.Info("Action rejected", "error", err)
		}
		if pubErr := p.broadcaster.PublishRequestFailed(ctx, gameID, requestID, a.Type, err.Error()); pubErr != nil {
			log.Error("Failed to publish failure event", "error", pubErr)
		}
		return nil, err
	}

	if err := p.broadcaster.PublishRequestCompleted(ctx, gameID, requestID, a.Type, res.State.Version, res.Events); err != nil {
		log.Error("Failed to publish completion event", "error", err)
	}
	log.Info("Action processed",
		"version", res.State.Version,
		"events", len(res.Events),
		"duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

func (p *Processor) apply(ctx context.Context, gameID uuid.UUID, a game.Action) (*Result, error) {
	gs, eng, err := p.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	evs, err := eng.Apply(gs, a)
	if err != nil {
		return nil, err
	}
	if err := p.store.SaveGameState(ctx, gameID, gs); err != nil {
		return nil, err
	}
	return &Result{State: gs, Events: evs, Engine: eng}, nil
}

// Delete removes a game and tells its subscribers.
func (p *Processor) Delete(ctx context.Context, gameID uuid.UUID) error {
	release, err := p.locker.Lock(ctx, gameID, p.LockWait)
	if err != nil {
		return err
	}
	defer release()

	gs, err := p.store.LoadGameState(ctx, gameID)
	if err != nil {
		return err
	}
	if gs == nil {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if err := p.store.DeleteGameState(ctx, gameID); err != nil {
		return err
	}
	if err := p.broadcaster.PublishGameDeleted(ctx, gameID); err != nil {
		p.logger.Warn("Failed to publish game deletion", "game_id", gameID, "error", err)
	}
	return nil
}
