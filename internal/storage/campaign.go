package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/content"
)

func (r *RedisStorage) campaignsDir() string {
	return filepath.Join(r.dataDir, "campaigns")
}

func (r *RedisStorage) ListCampaigns(ctx context.Context) ([]content.Summary, error) {
	list, err := content.List(os.DirFS(r.campaignsDir()))
	if err != nil {
		r.logger.Error("Failed to list campaigns", "dir", r.campaignsDir(), "error", err)
		return nil, err
	}
	return list, nil
}

// GetCampaign loads a campaign directory once and serves it from memory afterwards.
// The campaign id is always the directory name.
func (r *RedisStorage) GetCampaign(ctx context.Context, id string) (*content.Campaign, error) {
	if id == "" || id == "." || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, fmt.Errorf("%w: %q", content.ErrNotFound, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.campaigns[id]; ok {
		return c, nil
	}

	c, err := content.Load(filepath.Join(r.campaignsDir(), id))
	if err != nil {
		return nil, err
	}
	if c.ID != id {
		r.logger.Warn("Campaign manifest id differs from directory, using directory", "manifest_id", c.ID, "dir", id)
		c.ID = id
	}
	r.campaigns[id] = c
	r.logger.Info("Campaign loaded", "campaign", id, "templates", len(c.Templates), "key_quests", len(c.KeyQuests))
	return c, nil
}
