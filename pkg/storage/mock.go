package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// MockStorage is an in-memory Storage for tests. Game states are stored as JSON so
// callers never share a pointer with the store.
type MockStorage struct {
	mu         sync.RWMutex
	gamestates map[uuid.UUID][]byte
	campaigns  map[string]*content.Campaign
	pingError  error
	saveError  error
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		gamestates: make(map[uuid.UUID][]byte),
		campaigns:  make(map[string]*content.Campaign),
	}
}

// AddCampaign registers a campaign under its id.
func (m *MockStorage) AddCampaign(c *content.Campaign) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns[c.ID] = c
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError makes every SaveGameState call fail with err.
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	if gs == nil {
		return errors.New("gamestate cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("failed to marshal gamestate: %w", err)
	}
	m.gamestates[id] = data
	return nil
}

func (m *MockStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	m.mu.RLock()
	data, ok := m.gamestates[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var gs state.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gamestate: %w", err)
	}
	return &gs, nil
}

func (m *MockStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.gamestates, id)
	return nil
}

// GameStateCount reports how many game states are stored.
func (m *MockStorage) GameStateCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.gamestates)
}

func (m *MockStorage) ListCampaigns(ctx context.Context) ([]content.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]content.Summary, 0, len(m.campaigns))
	for _, c := range m.campaigns {
		out = append(out, c.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockStorage) GetCampaign(ctx context.Context, id string) (*content.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", content.ErrNotFound, id)
	}
	return c, nil
}
