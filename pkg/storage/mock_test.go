package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

func loadGreywater(t *testing.T) *content.Campaign {
	t.Helper()
	c, err := content.Load("../../data/campaigns/greywater")
	if err != nil {
		t.Fatalf("Failed to load campaign: %v", err)
	}
	return c
}

func TestMockStorage_SaveAndLoadGameState(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	gs, err := state.New(loadGreywater(t))
	if err != nil {
		t.Fatalf("Failed to create gamestate: %v", err)
	}
	gs.Clock = 12

	if err := m.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("Failed to save gamestate: %v", err)
	}
	gs.Clock = 99 // not visible to the store

	loaded, err := m.LoadGameState(ctx, gs.ID)
	if err != nil {
		t.Fatalf("Failed to load gamestate: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil gamestate")
	}
	if loaded.Clock != 12 {
		t.Errorf("Expected clock 12, got %v", loaded.Clock)
	}
	if m.GameStateCount() != 1 {
		t.Errorf("Expected 1 stored gamestate, got %d", m.GameStateCount())
	}

	if err := m.DeleteGameState(ctx, gs.ID); err != nil {
		t.Fatalf("Failed to delete gamestate: %v", err)
	}
	loaded, _ = m.LoadGameState(ctx, gs.ID)
	if loaded != nil {
		t.Error("Gamestate should be nil after deletion")
	}
}

func TestMockStorage_LoadNonExistentGameState(t *testing.T) {
	loaded, err := NewMockStorage().LoadGameState(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Expected no error for non-existent gamestate, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for non-existent gamestate")
	}
}

func TestMockStorage_Campaigns(t *testing.T) {
	m := NewMockStorage()
	m.AddCampaign(loadGreywater(t))
	ctx := context.Background()

	list, err := m.ListCampaigns(ctx)
	if err != nil || len(list) != 1 || list[0].ID != "greywater" {
		t.Fatalf("Unexpected campaign list %v (err %v)", list, err)
	}
	if _, err := m.GetCampaign(ctx, "greywater"); err != nil {
		t.Errorf("Expected campaign, got %v", err)
	}
	if _, err := m.GetCampaign(ctx, "missing"); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMockStorage_Errors(t *testing.T) {
	m := NewMockStorage()
	boom := errors.New("boom")
	m.SetPingError(boom)
	m.SetSaveError(boom)

	if err := m.Ping(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Expected ping error, got %v", err)
	}
	gs := &state.GameState{ID: uuid.New()}
	if err := m.SaveGameState(context.Background(), gs.ID, gs); !errors.Is(err, boom) {
		t.Errorf("Expected save error, got %v", err)
	}
	if err := m.SaveGameState(context.Background(), gs.ID, nil); err == nil {
		t.Error("Expected error for nil gamestate")
	}
}
